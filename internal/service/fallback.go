package service

import (
	"regexp"
	"strings"

	"github.com/cobrancabot/cobrancabot-go/internal/model"
	"github.com/cobrancabot/cobrancabot-go/internal/nlp"
	"go.uber.org/zap"
)

// Fallback level names on the wire.
const (
	LevelSemanticSimilarity    = "semantic_similarity"
	LevelKeywordExtraction     = "keyword_extraction"
	LevelPatternMatching       = "pattern_matching"
	LevelConversationalContext = "conversational_context"
	LevelIntelligentGuess      = "intelligent_guess"
	LevelEmergency             = "emergency"
)

// FallbackOutcome is the decision of one cascade run.
type FallbackOutcome struct {
	Intent               model.IntentCategory
	Confidence           float64
	Level                string
	RequiresConfirmation bool
}

// FallbackCascade is the five-level degradation state machine. Levels run in
// strict ascending order with independent thresholds; the first level whose
// confidence clears its threshold wins. Exhaustion yields the emergency
// outcome, never an error.
type FallbackCascade struct {
	semantic *nlp.SemanticScorer
	levels   []fallbackLevel
	logger   *zap.Logger
}

type fallbackLevel struct {
	name      string
	threshold float64
	run       func(normalized string, convo convoContext) (model.IntentCategory, float64)
}

// NewFallbackCascade builds the cascade over the shared semantic scorer.
func NewFallbackCascade(semantic *nlp.SemanticScorer, logger *zap.Logger) *FallbackCascade {
	c := &FallbackCascade{semantic: semantic, logger: logger}
	c.levels = []fallbackLevel{
		{LevelSemanticSimilarity, 0.6, c.bySemanticSimilarity},
		{LevelKeywordExtraction, 0.4, c.byKeywordOverlap},
		{LevelPatternMatching, 0.3, c.byEmergencyPatterns},
		{LevelConversationalContext, 0.2, c.byConversationalContext},
		{LevelIntelligentGuess, 0.1, c.byIntelligentGuess},
	}
	return c
}

// Run walks the cascade for a message that the primary pipeline could not
// classify confidently (or that made it throw).
func (c *FallbackCascade) Run(normalized string, convo convoContext) FallbackOutcome {
	for _, level := range c.levels {
		intent, confidence := level.run(normalized, convo)
		if confidence > level.threshold {
			c.logger.Debug("fallback level cleared",
				zap.String("level", level.name),
				zap.String("intent", string(intent)),
				zap.Float64("confidence", confidence))
			return FallbackOutcome{
				Intent:               intent,
				Confidence:           confidence,
				Level:                level.name,
				RequiresConfirmation: level.name == LevelIntelligentGuess,
			}
		}
	}
	c.logger.Warn("fallback cascade exhausted")
	return FallbackOutcome{
		Intent:               model.IntentClarificationRequest,
		Confidence:           0.1,
		Level:                LevelEmergency,
		RequiresConfirmation: true,
	}
}

// Level 1: best semantic pattern mapped straight to its intent.
func (c *FallbackCascade) bySemanticSimilarity(normalized string, _ convoContext) (model.IntentCategory, float64) {
	best, _ := c.semantic.BestMatch(normalized)
	return best.Pattern.Intent, best.Score
}

// fallbackKeywords is the small curated per-intent keyword set for level 2.
var fallbackKeywords = map[model.IntentCategory][]string{
	model.IntentInvoiceRequest:         {"boleto", "fatura", "via", "conta", "codigo"},
	model.IntentInvoiceValueInquiry:    {"valor", "quanto", "total", "saldo", "devo"},
	model.IntentDueDateInquiry:         {"vencimento", "vence", "prazo", "data", "dia"},
	model.IntentInstallmentNegotiation: {"parcelar", "acordo", "dividir", "vezes", "negociar"},
	model.IntentDiscountNegotiation:    {"desconto", "vista", "abatimento", "juros", "menos"},
	model.IntentPaymentConfirmation:    {"paguei", "pago", "pix", "comprovante", "quitei"},
	model.IntentGreeting:               {"oi", "ola", "dia", "tarde", "noite"},
}

// Level 2: overlap ratio between message tokens and each intent's keywords.
func (c *FallbackCascade) byKeywordOverlap(normalized string, _ convoContext) (model.IntentCategory, float64) {
	tokens := make(map[string]struct{})
	for _, t := range strings.Fields(normalized) {
		tokens[strings.TrimRight(t, "!?.,;:")] = struct{}{}
	}
	best := model.IntentUnknown
	var bestRatio float64
	for _, intent := range model.AllIntents {
		keywords, ok := fallbackKeywords[intent]
		if !ok {
			continue
		}
		hits := 0
		for _, kw := range keywords {
			if _, found := tokens[kw]; found {
				hits++
			}
		}
		ratio := float64(hits) / float64(len(keywords))
		if ratio > bestRatio {
			bestRatio = ratio
			best = intent
		}
	}
	return best, bestRatio
}

// Level 3: one minimal emergency regex per core intent.
var emergencyRules = []struct {
	re     *regexp.Regexp
	intent model.IntentCategory
}{
	{regexp.MustCompile(`segunda via|boleto|fatura`), model.IntentInvoiceRequest},
	{regexp.MustCompile(`quanto|valor`), model.IntentInvoiceValueInquiry},
	{regexp.MustCompile(`venc`), model.IntentDueDateInquiry},
	{regexp.MustCompile(`parcel|acordo`), model.IntentInstallmentNegotiation},
	{regexp.MustCompile(`desconto`), model.IntentDiscountNegotiation},
	{regexp.MustCompile(`pag(uei|o)|pix`), model.IntentPaymentConfirmation},
	{regexp.MustCompile(`\b(oi|ola)\b|bom dia|boa (tarde|noite)`), model.IntentGreeting},
}

func (c *FallbackCascade) byEmergencyPatterns(normalized string, _ convoContext) (model.IntentCategory, float64) {
	for _, rule := range emergencyRules {
		if rule.re.MatchString(normalized) {
			return rule.intent, 0.5
		}
	}
	return model.IntentUnknown, 0
}

// Level 4: reuse the last recorded intent, discounted.
func (c *FallbackCascade) byConversationalContext(_ string, convo convoContext) (model.IntentCategory, float64) {
	if !convo.hasLast {
		return model.IntentUnknown, 0
	}
	return convo.lastIntent.Intent, convo.lastIntent.Confidence * 0.8
}

// Level 5: educated guess from surface shape alone. Always low confidence,
// always flagged for confirmation by the caller.
func (c *FallbackCascade) byIntelligentGuess(normalized string, _ convoContext) (model.IntentCategory, float64) {
	switch {
	case len(strings.Fields(normalized)) <= 2:
		return model.IntentInvoiceRequest, 0.3
	case strings.Contains(normalized, "?"):
		return model.IntentInvoiceValueInquiry, 0.35
	default:
		return model.IntentInvoiceRequest, 0.2
	}
}
