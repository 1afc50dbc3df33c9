package nlp

import (
	"sort"
	"strings"

	"github.com/cobrancabot/cobrancabot-go/internal/model"
)

// SemanticScorer scores text against hand-built semantic vectors per intent.
// It is robust to phrasing the pattern scorer's literal keywords miss, and
// doubles as fallback-cascade level 1.
type SemanticScorer struct {
	patterns []SemanticPattern
}

// SemanticPattern is a weighted bag of concepts describing one way of
// expressing an intent.
type SemanticPattern struct {
	Name            string
	Intent          model.IntentCategory
	Concepts        map[string]float64
	ContextTriggers []string
}

// SemanticMatch is the score of one pattern against a message.
type SemanticMatch struct {
	Pattern SemanticPattern
	Score   float64
}

const triggerBonus = 0.05

func defaultSemanticPatterns() []SemanticPattern {
	return []SemanticPattern{
		{
			Name:   "pedido_boleto",
			Intent: model.IntentInvoiceRequest,
			Concepts: map[string]float64{
				"boleto": 0.3, "fatura": 0.3, "via": 0.15, "enviar": 0.15,
				"mandar": 0.15, "preciso": 0.1, "receber": 0.1,
			},
			ContextTriggers: []string{"email", "whatsapp", "pix", "codigo"},
		},
		{
			Name:   "consulta_valor",
			Intent: model.IntentInvoiceValueInquiry,
			Concepts: map[string]float64{
				"quanto": 0.3, "valor": 0.3, "devo": 0.2, "total": 0.15,
				"saldo": 0.15, "divida": 0.15,
			},
			ContextTriggers: []string{"atualizado", "hoje", "juros"},
		},
		{
			Name:   "consulta_vencimento",
			Intent: model.IntentDueDateInquiry,
			Concepts: map[string]float64{
				"quando": 0.25, "vence": 0.3, "vencimento": 0.3, "data": 0.2,
				"prazo": 0.2, "dia": 0.1,
			},
			ContextTriggers: []string{"atrasar", "atrasado", "multa"},
		},
		{
			Name:   "negociacao_parcelas",
			Intent: model.IntentInstallmentNegotiation,
			Concepts: map[string]float64{
				"parcelar": 0.3, "dividir": 0.25, "vezes": 0.2, "acordo": 0.2,
				"condicao": 0.15, "negociar": 0.25, "entrada": 0.1,
			},
			ContextTriggers: []string{"cartao", "boleto", "mensal"},
		},
		{
			Name:   "negociacao_desconto",
			Intent: model.IntentDiscountNegotiation,
			Concepts: map[string]float64{
				"desconto": 0.35, "vista": 0.2, "abatimento": 0.25,
				"juros": 0.15, "menos": 0.15, "reduzir": 0.15,
			},
			ContextTriggers: []string{"hoje", "agora", "quitar"},
		},
		{
			Name:   "pagamento_feito",
			Intent: model.IntentPaymentConfirmation,
			Concepts: map[string]float64{
				"paguei": 0.35, "pago": 0.2, "pix": 0.2, "comprovante": 0.25,
				"transferi": 0.25, "quitei": 0.3, "ontem": 0.1,
			},
			ContextTriggers: []string{"banco", "app", "recibo"},
		},
		{
			Name:   "recusa_pagamento",
			Intent: model.IntentNegation,
			Concepts: map[string]float64{
				"nao": 0.25, "pagar": 0.2, "nada": 0.2, "nunca": 0.2,
				"recuso": 0.25, "absurdo": 0.15,
			},
			ContextTriggers: []string{"advogado", "procon", "justica"},
		},
		{
			Name:   "cobranca_indevida",
			Intent: model.IntentUndueChargeComplaint,
			Concepts: map[string]float64{
				"indevida": 0.3, "reconheco": 0.25, "comprei": 0.2,
				"contratei": 0.2, "erro": 0.2, "engano": 0.2, "cobranca": 0.15,
			},
			ContextTriggers: []string{"golpe", "fraude", "cancelar"},
		},
		{
			Name:   "valor_errado",
			Intent: model.IntentIncorrectValueComplaint,
			Concepts: map[string]float64{
				"errado": 0.3, "incorreto": 0.3, "caro": 0.2, "maior": 0.2,
				"diferente": 0.2, "combinado": 0.15, "valor": 0.15,
			},
			ContextTriggers: []string{"contrato", "acordado", "juros"},
		},
		{
			Name:   "saudacao",
			Intent: model.IntentGreeting,
			Concepts: map[string]float64{
				"oi": 0.3, "ola": 0.3, "bom": 0.2, "dia": 0.2, "tarde": 0.2,
				"noite": 0.2, "tudo": 0.1, "bem": 0.1,
			},
		},
		{
			Name:   "despedida",
			Intent: model.IntentFarewell,
			Concepts: map[string]float64{
				"tchau": 0.35, "ate": 0.2, "obrigado": 0.25, "valeu": 0.25,
				"abraco": 0.2,
			},
		},
		{
			Name:   "pedido_esclarecimento",
			Intent: model.IntentClarificationRequest,
			Concepts: map[string]float64{
				"entendi": 0.3, "assim": 0.2, "explicar": 0.25, "como": 0.15,
				"duvida": 0.25, "confuso": 0.2,
			},
		},
	}
}

// NewSemanticScorer builds a scorer over the built-in semantic patterns.
func NewSemanticScorer() *SemanticScorer {
	return &SemanticScorer{patterns: defaultSemanticPatterns()}
}

// Similarity scores one pattern against normalized text:
// (Σ weights of concepts present) / (Σ all weights), plus a flat bonus per
// matched context trigger, clamped to 1.0.
func (s *SemanticScorer) Similarity(normalized string, p SemanticPattern) float64 {
	var present, total float64
	for concept, w := range p.Concepts {
		total += w
		if containsWord(normalized, concept) {
			present += w
		}
	}
	if total == 0 {
		return 0
	}
	score := present / total
	for _, trig := range p.ContextTriggers {
		if containsWord(normalized, trig) {
			score += triggerBonus
		}
	}
	return model.Clamp01(score)
}

// BestMatch returns the highest-scoring pattern for the text, with every
// per-pattern score available for cluster reporting.
func (s *SemanticScorer) BestMatch(normalized string) (SemanticMatch, []SemanticMatch) {
	all := make([]SemanticMatch, 0, len(s.patterns))
	for _, p := range s.patterns {
		all = append(all, SemanticMatch{Pattern: p, Score: s.Similarity(normalized, p)})
	}
	sort.SliceStable(all, func(i, j int) bool { return all[i].Score > all[j].Score })
	return all[0], all
}

// Clusters names the semantic patterns scoring above the threshold.
func (s *SemanticScorer) Clusters(matches []SemanticMatch, threshold float64) []string {
	var out []string
	for _, m := range matches {
		if m.Score >= threshold {
			out = append(out, m.Pattern.Name)
		}
	}
	return out
}

// discourseMarkerSet groups connective markers by function.
var discourseMarkerSet = map[string][]string{
	"contrast":    {"mas", "porem", "so que", "entretanto"},
	"conclusion":  {"entao", "portanto", "enfim"},
	"addition":    {"e tambem", "alem disso", "tambem"},
	"explanation": {"porque", "pois", "ja que"},
	"hedge":       {"tipo", "acho que", "talvez", "sei la"},
}

// DiscourseMarkers lists the marker groups present in normalized text.
func DiscourseMarkers(normalized string) []string {
	var out []string
	for group, markers := range discourseMarkerSet {
		for _, m := range markers {
			hit := false
			if strings.ContainsRune(m, ' ') {
				hit = strings.Contains(normalized, m)
			} else {
				hit = containsWord(normalized, m)
			}
			if hit {
				out = append(out, group)
				break
			}
		}
	}
	sort.Strings(out)
	return out
}

// LinguisticComplexity estimates how hard a message is to read: token count,
// average word length and lexical variety, blended to [0,1].
func LinguisticComplexity(normalized string) float64 {
	tokens := strings.Fields(normalized)
	if len(tokens) == 0 {
		return 0
	}
	var chars int
	unique := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		chars += len(t)
		unique[t] = struct{}{}
	}
	avgLen := float64(chars) / float64(len(tokens))
	variety := float64(len(unique)) / float64(len(tokens))

	length := float64(len(tokens)) / 40.0
	if length > 1 {
		length = 1
	}
	wordSize := (avgLen - 3) / 5.0
	if wordSize < 0 {
		wordSize = 0
	}
	if wordSize > 1 {
		wordSize = 1
	}
	return model.Clamp01(0.5*length + 0.3*wordSize + 0.2*variety)
}

// PragmaticInference derives soft pragmatic signals from surface form.
func PragmaticInference(normalized string) map[string]float64 {
	out := map[string]float64{}
	if strings.Contains(normalized, "por favor") || containsWord(normalized, "obrigado") || containsWord(normalized, "obrigada") {
		out["politeness"] = 0.8
	}
	if strings.Contains(normalized, "?") {
		out["information_seeking"] = 0.7
	}
	if strings.Contains(normalized, "!") {
		out["emphasis"] = 0.6
	}
	if containsWord(normalized, "quero") || containsWord(normalized, "preciso") {
		out["directness"] = 0.7
	}
	return out
}
