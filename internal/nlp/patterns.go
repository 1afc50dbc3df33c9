package nlp

import (
	"regexp"
	"strings"
	"sync"

	"github.com/cobrancabot/cobrancabot-go/internal/model"
)

// PatternScorer scores normalized text against the weighted pattern sets of
// every intent category. The tables are data: adding an intent or a pattern
// never requires touching scoring code.
type PatternScorer struct {
	sets map[model.IntentCategory][]intentPattern
}

type intentPattern struct {
	keyword string
	weight  float64
}

// intentPatternSets is the knowledge base: per intent, (pattern, weight)
// pairs matched against normalized text. Multi-word patterns are substring
// matches; single words match on word boundaries.
var intentPatternSets = map[model.IntentCategory][]intentPattern{
	model.IntentInvoiceRequest: {
		{"segunda via", 3.0}, {"boleto", 2.5}, {"fatura", 2.5},
		{"codigo de barras", 3.0}, {"linha digitavel", 3.0},
		{"pix copia e cola", 3.0}, {"manda a conta", 2.5},
		{"enviar o boleto", 3.0}, {"cade", 1.5}, {"conta", 1.0},
		{"me manda", 1.5}, {"preciso do boleto", 3.0},
	},
	model.IntentInvoiceValueInquiry: {
		{"quanto devo", 3.0}, {"quanto esta", 2.5}, {"quanto ficou", 2.5},
		{"qual o valor", 3.0}, {"valor da fatura", 3.0}, {"valor total", 2.5},
		{"saldo devedor", 3.0}, {"quanto", 1.5}, {"valor", 1.5},
		{"total da divida", 3.0},
	},
	model.IntentDueDateInquiry: {
		{"quando vence", 3.0}, {"data de vencimento", 3.0}, {"vencimento", 2.5},
		{"ate quando", 2.5}, {"qual o prazo", 2.5}, {"prazo", 1.5},
		{"vence quando", 3.0}, {"dia do vencimento", 3.0}, {"vence", 1.5},
	},
	model.IntentInstallmentNegotiation: {
		{"parcelar", 3.0}, {"parcelamento", 3.0}, {"dividir", 2.5},
		{"em vezes", 2.5}, {"em quantas vezes", 3.0}, {"entrada", 1.5},
		{"prestacao", 2.0}, {"fazer um acordo", 3.0}, {"acordo", 2.0},
		{"parcela", 2.0}, {"negociar", 2.5},
	},
	model.IntentDiscountNegotiation: {
		{"desconto", 3.0}, {"abatimento", 3.0}, {"a vista", 2.5},
		{"baixar o valor", 3.0}, {"reduzir", 2.0}, {"melhorar esse valor", 3.0},
		{"proposta", 2.0}, {"tirar os juros", 3.0}, {"sem juros", 2.5},
		{"pagar menos", 2.5},
	},
	model.IntentPaymentConfirmation: {
		{"ja paguei", 3.0}, {"paguei", 2.5}, {"pago", 1.5}, {"quitei", 3.0},
		{"comprovante", 2.5}, {"transferi", 2.5}, {"fiz o pix", 3.0},
		{"via pix", 2.5}, {"efetuei o pagamento", 3.0}, {"ja foi pago", 3.0},
		{"ta pago", 2.5},
	},
	model.IntentUndueChargeComplaint: {
		{"cobranca indevida", 3.0}, {"nao reconheco", 3.0}, {"nao comprei", 2.5},
		{"nunca contratei", 3.0}, {"cobrando errado", 2.5}, {"nao devo", 2.5},
		{"nao fiz essa compra", 3.0}, {"golpe", 2.0}, {"nao e minha", 2.0},
	},
	model.IntentIncorrectValueComplaint: {
		{"valor errado", 3.0}, {"valor incorreto", 3.0}, {"veio mais caro", 2.5},
		{"cobranca maior", 2.5}, {"diferente do combinado", 3.0},
		{"valor abusivo", 2.5}, {"juros abusivos", 2.5}, {"mais do que devia", 2.5},
		{"esse valor esta errado", 3.0},
	},
	model.IntentGreeting: {
		{"bom dia", 3.0}, {"boa tarde", 3.0}, {"boa noite", 3.0},
		{"oi", 2.0}, {"ola", 2.0}, {"e ai", 1.5}, {"tudo bem", 1.5},
		{"tudo bom", 1.5},
	},
	model.IntentFarewell: {
		{"tchau", 3.0}, {"ate mais", 3.0}, {"ate logo", 3.0},
		{"falou", 2.0}, {"abraco", 2.0}, {"ate amanha", 2.5},
		{"tenha um bom dia", 2.5}, {"obrigado", 1.0},
	},
	model.IntentAffirmation: {
		{"sim", 2.5}, {"claro", 2.5}, {"com certeza", 3.0}, {"pode ser", 2.5},
		{"beleza", 2.0}, {"fechado", 2.5}, {"combinado", 2.5}, {"ok", 2.0},
		{"isso mesmo", 2.5}, {"perfeito", 2.0}, {"aceito", 2.5},
	},
	model.IntentNegation: {
		{"nao", 2.0}, {"nunca", 2.5}, {"jamais", 2.5}, {"negativo", 2.5},
		{"de jeito nenhum", 3.0}, {"nem pensar", 3.0}, {"recuso", 2.5},
	},
	model.IntentClarificationRequest: {
		{"nao entendi", 3.0}, {"como assim", 3.0}, {"o que", 1.5},
		{"pode explicar", 3.0}, {"repete", 2.0}, {"nao ficou claro", 3.0},
		{"que isso", 1.5}, {"explica melhor", 3.0},
	},
}

// shortTextKeywords boosts category scores on terse input (≤3 tokens),
// where pattern coverage is weaker.
var shortTextKeywords = map[string]struct {
	intent model.IntentCategory
	boost  float64
}{
	"boleto":      {model.IntentInvoiceRequest, 0.35},
	"fatura":      {model.IntentInvoiceRequest, 0.35},
	"conta":       {model.IntentInvoiceRequest, 0.25},
	"valor":       {model.IntentInvoiceValueInquiry, 0.35},
	"quanto":      {model.IntentInvoiceValueInquiry, 0.35},
	"vencimento":  {model.IntentDueDateInquiry, 0.35},
	"prazo":       {model.IntentDueDateInquiry, 0.3},
	"parcelar":    {model.IntentInstallmentNegotiation, 0.35},
	"acordo":      {model.IntentInstallmentNegotiation, 0.3},
	"desconto":    {model.IntentDiscountNegotiation, 0.35},
	"paguei":      {model.IntentPaymentConfirmation, 0.4},
	"pago":        {model.IntentPaymentConfirmation, 0.3},
	"comprovante": {model.IntentPaymentConfirmation, 0.35},
	"sim":         {model.IntentAffirmation, 0.35},
	"ok":          {model.IntentAffirmation, 0.3},
	"beleza":      {model.IntentAffirmation, 0.3},
	"nao":         {model.IntentNegation, 0.35},
	"oi":          {model.IntentGreeting, 0.3},
	"ola":         {model.IntentGreeting, 0.3},
}

// Entity presence boosts.
var (
	moneyBoostIntents = []model.IntentCategory{
		model.IntentInvoiceValueInquiry, model.IntentPaymentConfirmation,
		model.IntentInstallmentNegotiation, model.IntentDiscountNegotiation,
	}
	dateBoostIntents = []model.IntentCategory{
		model.IntentDueDateInquiry, model.IntentPaymentConfirmation,
	}
)

// Emotion boosts toward related intents.
var emotionIntentBoosts = map[model.EmotionalState][]model.IntentCategory{
	model.EmotionFrustrated: {model.IntentUndueChargeComplaint, model.IntentIncorrectValueComplaint},
	model.EmotionUrgent:     {model.IntentInvoiceRequest, model.IntentInvoiceValueInquiry},
	model.EmotionConfused:   {model.IntentClarificationRequest},
}

const (
	entityBoost   = 0.15
	emotionBoost  = 0.1
	confusedBoost = 0.2
)

// NewPatternScorer builds a scorer over the built-in knowledge base.
func NewPatternScorer() *PatternScorer {
	return &PatternScorer{sets: intentPatternSets}
}

// Score computes the raw intent score map for a message: per intent,
// Σ(weight × matchCount) normalized by pattern-list length, clamped to [0,1],
// then short-text, entity and emotion boosts applied.
func (s *PatternScorer) Score(normalized string, entities []model.ExtractedEntity, emotion model.EmotionalState) map[model.IntentCategory]float64 {
	scores := make(map[model.IntentCategory]float64, len(s.sets))
	for intent, patterns := range s.sets {
		var sum float64
		for _, p := range patterns {
			sum += p.weight * float64(countMatches(normalized, p.keyword))
		}
		scores[intent] = model.Clamp01(sum / float64(len(patterns)))
	}

	if len(strings.Fields(normalized)) <= 3 {
		for _, tok := range strings.Fields(normalized) {
			tok = strings.TrimRight(tok, "!?.,;:")
			if b, ok := shortTextKeywords[tok]; ok {
				scores[b.intent] = model.Clamp01(scores[b.intent] + b.boost)
			}
		}
	}

	for _, ent := range entities {
		switch ent.Type {
		case model.EntityMoney:
			for _, it := range moneyBoostIntents {
				scores[it] = model.Clamp01(scores[it] + entityBoost)
			}
		case model.EntityDate:
			for _, it := range dateBoostIntents {
				scores[it] = model.Clamp01(scores[it] + entityBoost)
			}
		}
	}

	if boosted, ok := emotionIntentBoosts[emotion.Base()]; ok {
		boost := emotionBoost
		if emotion.Base() == model.EmotionConfused {
			boost = confusedBoost
		}
		for _, it := range boosted {
			scores[it] = model.Clamp01(scores[it] + boost)
		}
	}

	return scores
}

// countMatches counts keyword occurrences. Single words match on word
// boundaries so "oi" does not fire inside "depois"; phrases use plain
// substring counting.
func countMatches(text, keyword string) int {
	if strings.ContainsRune(keyword, ' ') {
		return strings.Count(text, keyword)
	}
	return len(wordRe(keyword).FindAllStringIndex(text, -1))
}

var (
	wordReMu    sync.Mutex
	wordReCache = map[string]*regexp.Regexp{}
)

func wordRe(word string) *regexp.Regexp {
	wordReMu.Lock()
	defer wordReMu.Unlock()
	re, ok := wordReCache[word]
	if !ok {
		re = regexp.MustCompile(`\b` + regexp.QuoteMeta(word) + `\b`)
		wordReCache[word] = re
	}
	return re
}

// containsWord reports a whole-word hit in text.
func containsWord(text, word string) bool {
	return wordRe(word).MatchString(text)
}
