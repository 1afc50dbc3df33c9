package nlp

import (
	"strings"

	"github.com/cobrancabot/cobrancabot-go/internal/model"
)

// EmotionAnalyzer classifies the dominant emotion, temporal frame and
// negation of a normalized message via weighted keyword scoring.
type EmotionAnalyzer struct {
	patterns map[model.EmotionalState][]weightedPattern
}

type weightedPattern struct {
	keyword string
	weight  float64
}

// Category amplifiers bias the analyzer toward escalation-worthy states.
var emotionAmplifier = map[model.EmotionalState]float64{
	model.EmotionAngry:      2.5,
	model.EmotionUrgent:     2.0,
	model.EmotionFrustrated: 1.5,
}

func defaultEmotionPatterns() map[model.EmotionalState][]weightedPattern {
	return map[model.EmotionalState][]weightedPattern{
		model.EmotionAngry: {
			{"absurdo", 0.5}, {"palhacada", 0.5}, {"vergonha", 0.5},
			{"ridiculo", 0.5}, {"revoltado", 0.5}, {"raiva", 0.5},
			{"odeio", 0.5}, {"inadmissivel", 0.5}, {"lixo", 0.4},
			{"vou processar", 0.5}, {"procon", 0.4},
		},
		model.EmotionFrustrated: {
			{"de novo", 0.4}, {"ja falei", 0.5}, {"ja disse", 0.5},
			{"toda vez", 0.4}, {"cansado", 0.4}, {"cansada", 0.4},
			{"nao aguento", 0.5}, {"sempre a mesma coisa", 0.5},
			{"ninguem resolve", 0.5}, {"de saco cheio", 0.5},
		},
		model.EmotionUrgent: {
			{"urgente", 0.5}, {"urgencia", 0.5}, {"agora", 0.3},
			{"imediatamente", 0.5}, {"rapido", 0.4}, {"hoje ainda", 0.5},
			{"o quanto antes", 0.5}, {"pra ontem", 0.5},
		},
		model.EmotionAnxious: {
			{"preocupado", 0.5}, {"preocupada", 0.5}, {"medo", 0.4},
			{"nervoso", 0.4}, {"nervosa", 0.4}, {"aflito", 0.5},
			{"nome sujo", 0.5}, {"negativado", 0.5}, {"serasa", 0.4},
			{"spc", 0.4}, {"desesperado", 0.5},
		},
		model.EmotionPositive: {
			{"obrigado", 0.4}, {"obrigada", 0.4}, {"otimo", 0.4},
			{"perfeito", 0.4}, {"maravilha", 0.4}, {"show", 0.3},
			{"top", 0.3}, {"excelente", 0.4}, {"valeu", 0.3},
		},
		model.EmotionNegative: {
			{"ruim", 0.4}, {"pessimo", 0.5}, {"problema", 0.3},
			{"chateado", 0.4}, {"chateada", 0.4}, {"decepcionado", 0.5},
			{"horrivel", 0.5},
		},
		model.EmotionRelieved: {
			{"ufa", 0.5}, {"ainda bem", 0.5}, {"que alivio", 0.5},
			{"gracas a deus", 0.5}, {"menos mal", 0.4},
		},
		model.EmotionConfused: {
			{"nao entendi", 0.5}, {"como assim", 0.5}, {"confuso", 0.5},
			{"confusa", 0.5}, {"nao sei", 0.3}, {"que historia e essa", 0.5},
			{"nao faco ideia", 0.4},
		},
	}
}

// Intensity adverbs that, combined with a Frustrated/Urgent reading,
// upgrade the state to its escalated variant.
var intensityAdverbs = []string{"muito", "demais", "extremamente", "totalmente", "completamente", "absurdamente"}

// NewEmotionAnalyzer builds an analyzer with the built-in pattern tables.
func NewEmotionAnalyzer() *EmotionAnalyzer {
	return &EmotionAnalyzer{patterns: defaultEmotionPatterns()}
}

// Analyze returns the dominant emotional state of a message. Keyword scoring
// runs over the normalized text; raw is consulted for repeated-punctuation
// escalation, which normalization collapses away.
// Ties resolve to the highest weighted sum; all-zero sums resolve to Neutral.
func (a *EmotionAnalyzer) Analyze(normalized, raw string) model.EmotionalState {
	scores := make(map[model.EmotionalState]float64, len(a.patterns))
	for state, pats := range a.patterns {
		var sum float64
		for _, p := range pats {
			sum += p.weight * float64(strings.Count(normalized, p.keyword))
		}
		if amp, ok := emotionAmplifier[state]; ok {
			sum *= amp
		}
		scores[state] = sum
	}

	top := model.EmotionNeutral
	var best float64
	for _, state := range []model.EmotionalState{
		model.EmotionAngry, model.EmotionUrgent, model.EmotionFrustrated,
		model.EmotionAnxious, model.EmotionNegative, model.EmotionConfused,
		model.EmotionRelieved, model.EmotionPositive,
	} {
		if scores[state] > best {
			best = scores[state]
			top = state
		}
	}
	if best == 0 {
		return model.EmotionNeutral
	}
	return a.escalate(normalized, raw, top)
}

// escalate upgrades Frustrated and Urgent when repeated punctuation or
// intensity adverbs signal a hotter register.
func (a *EmotionAnalyzer) escalate(normalized, raw string, state model.EmotionalState) model.EmotionalState {
	hot := strings.Contains(raw, "!!") || strings.Count(raw, "!") >= 2 ||
		strings.Count(raw, "?") >= 3
	if !hot {
		for _, adv := range intensityAdverbs {
			if containsWord(normalized, adv) {
				hot = true
				break
			}
		}
	}
	if !hot {
		return state
	}
	switch state {
	case model.EmotionFrustrated:
		return model.EmotionVeryFrustrated
	case model.EmotionUrgent:
		return model.EmotionExtremelyUrgent
	}
	return state
}

// Temporal pattern groups. First group with a hit wins; default Present.
var temporalGroups = []struct {
	frame    model.TemporalFrame
	keywords []string
}{
	{model.FramePast, []string{
		"paguei", "quitei", "transferi", "efetuei", "ja pagei", "ja foi pago",
		"ontem", "anteontem", "semana passada", "mes passado", "ja fiz",
		"ja mandei", "ja enviei", "tinha pago",
	}},
	{model.FrameFuture, []string{
		"vou pagar", "irei", "vou fazer", "amanha", "semana que vem",
		"mes que vem", "pretendo", "prometo", "assim que", "quando receber",
		"depois de amanha", "vou ver", "vou resolver",
	}},
	{model.FramePresent, []string{
		"estou", "agora", "neste momento", "hoje", "to pagando", "estou pagando",
	}},
}

// TemporalFrame classifies the time reference of normalized text.
func (a *EmotionAnalyzer) TemporalFrame(normalized string) model.TemporalFrame {
	for _, g := range temporalGroups {
		for _, kw := range g.keywords {
			if strings.Contains(normalized, kw) {
				return g.frame
			}
		}
	}
	return model.FramePresent
}

// Negation categories. Strength is the fraction of categories matched,
// a soft signal for the resolver, never a hard intent flip.
var negationGroups = []struct {
	name     string
	keywords []string
}{
	{"absolute", []string{"nao vou", "nunca", "jamais", "de jeito nenhum", "de forma alguma"}},
	{"partial", []string{"nao posso", "nao consigo", "ainda nao", "nao da", "nao tenho como"}},
	{"conditional", []string{"so se", "a menos que", "talvez nao", "se der", "depende"}},
	{"emphatic", []string{"nada disso", "nem pensar", "nem a pau", "nem ferrando", "nem morto"}},
}

// NegationResult describes detected negation in a message.
type NegationResult struct {
	Negated    bool
	Strength   float64  // fraction of negation categories matched
	Categories []string // which categories matched
}

// Negation detects negation patterns in normalized text.
func (a *EmotionAnalyzer) Negation(normalized string) NegationResult {
	var res NegationResult
	for _, g := range negationGroups {
		for _, kw := range g.keywords {
			if strings.Contains(normalized, kw) {
				res.Negated = true
				res.Categories = append(res.Categories, g.name)
				break
			}
		}
	}
	if !res.Negated {
		// A bare "nao" still counts as negation, at minimal strength.
		if containsWord(normalized, "nao") {
			res.Negated = true
			res.Categories = append(res.Categories, "bare")
		}
	}
	if res.Negated {
		res.Strength = float64(len(res.Categories)) / float64(len(negationGroups))
		if res.Strength > 1 {
			res.Strength = 1
		}
	}
	return res
}
