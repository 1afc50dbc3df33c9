package service

import (
	"sort"
	"strings"

	"github.com/cobrancabot/cobrancabot-go/internal/memory"
	"github.com/cobrancabot/cobrancabot-go/internal/model"
	"github.com/cobrancabot/cobrancabot-go/internal/nlp"
)

const (
	continuityBoost    = 0.15
	negotiationBoost   = 0.1
	semanticBoostCut   = 0.7
	lowScoreFloor      = 0.3
	guessConfidence    = 0.25
	firstTurnCoherence = 0.8
)

// convoContext is an immutable snapshot of conversation memory, taken under
// the key lock before the pipeline runs. The pipeline never touches live
// memory, so an abandoned (timed out) run cannot race a later one.
type convoContext struct {
	recentIntents       []model.IntentCategory
	lastIntent          memory.IntentRecord
	hasLast             bool
	negotiationActive   bool
	messageCount        int
	avgConfidence       float64
	repeatedFrustration bool
	repeatedUrgency     bool
}

func snapshotConversation(c *memory.Conversation) convoContext {
	last, ok := c.LastIntent()
	return convoContext{
		recentIntents:       c.RecentIntents(3),
		lastIntent:          last,
		hasLast:             ok,
		negotiationActive:   c.NegotiationActive,
		messageCount:        c.MessageCount,
		avgConfidence:       c.RunningAvgConfidence,
		repeatedFrustration: c.RepeatedEmotion(model.EmotionFrustrated, 2) || c.RepeatedEmotion(model.EmotionAngry, 2),
		repeatedUrgency:     c.RepeatedEmotion(model.EmotionUrgent, 2),
	}
}

// intentPredecessors encodes which prior-turn intents make a candidate more
// likely this turn: asking for an invoice naturally precedes asking its
// value or due date, a value inquiry precedes negotiation, and so on.
var intentPredecessors = map[model.IntentCategory][]model.IntentCategory{
	model.IntentInvoiceValueInquiry:    {model.IntentInvoiceRequest},
	model.IntentDueDateInquiry:         {model.IntentInvoiceRequest, model.IntentInvoiceValueInquiry},
	model.IntentPaymentConfirmation:    {model.IntentInvoiceRequest, model.IntentDueDateInquiry},
	model.IntentInstallmentNegotiation: {model.IntentInvoiceValueInquiry},
	model.IntentDiscountNegotiation:    {model.IntentInstallmentNegotiation, model.IntentInvoiceValueInquiry},
	model.IntentAffirmation:            {model.IntentInstallmentNegotiation, model.IntentDiscountNegotiation},
}

// intentSimilarityPairs is the static similarity matrix used for coherence.
// Symmetric; unlisted pairs default to 0.2, identical intents to 1.0.
var intentSimilarityPairs = map[[2]model.IntentCategory]float64{
	{model.IntentInvoiceRequest, model.IntentInvoiceValueInquiry}:           0.7,
	{model.IntentInvoiceRequest, model.IntentDueDateInquiry}:                0.7,
	{model.IntentInvoiceRequest, model.IntentPaymentConfirmation}:           0.5,
	{model.IntentInvoiceValueInquiry, model.IntentDueDateInquiry}:           0.6,
	{model.IntentInvoiceValueInquiry, model.IntentDiscountNegotiation}:      0.6,
	{model.IntentInvoiceValueInquiry, model.IntentInstallmentNegotiation}:   0.6,
	{model.IntentInstallmentNegotiation, model.IntentDiscountNegotiation}:   0.8,
	{model.IntentInstallmentNegotiation, model.IntentAffirmation}:           0.5,
	{model.IntentDiscountNegotiation, model.IntentAffirmation}:              0.5,
	{model.IntentUndueChargeComplaint, model.IntentIncorrectValueComplaint}: 0.8,
	{model.IntentUndueChargeComplaint, model.IntentNegation}:                0.5,
	{model.IntentGreeting, model.IntentFarewell}:                            0.4,
	{model.IntentPaymentConfirmation, model.IntentFarewell}:                 0.4,
	{model.IntentClarificationRequest, model.IntentInvoiceValueInquiry}:     0.4,
}

func intentSimilarity(a, b model.IntentCategory) float64 {
	if a == b {
		return 1.0
	}
	if v, ok := intentSimilarityPairs[[2]model.IntentCategory{a, b}]; ok {
		return v
	}
	if v, ok := intentSimilarityPairs[[2]model.IntentCategory{b, a}]; ok {
		return v
	}
	return 0.2
}

// resolve merges pattern scores, semantic similarity, entity presence and
// memory-derived continuity into a ranked classification.
func (s *ClassifierService) resolve(
	normalized string,
	entities []model.ExtractedEntity,
	emotion model.EmotionalState,
	frame model.TemporalFrame,
	neg nlp.NegationResult,
	best nlp.SemanticMatch,
	all []nlp.SemanticMatch,
	convo convoContext,
) *model.ClassificationResult {
	scores := s.patterns.Score(normalized, entities, emotion)
	rawMax := maxScore(scores)

	// Continuity: the previous turn's intent boosts its known successors.
	if convo.hasLast {
		for candidate, preds := range intentPredecessors {
			for _, p := range preds {
				if p == convo.lastIntent.Intent {
					scores[candidate] = model.Clamp01(scores[candidate] + continuityBoost)
					break
				}
			}
		}
	}
	if convo.negotiationActive {
		scores[model.IntentDiscountNegotiation] = model.Clamp01(scores[model.IntentDiscountNegotiation] + negotiationBoost)
		scores[model.IntentAffirmation] = model.Clamp01(scores[model.IntentAffirmation] + negotiationBoost)
	}

	primary, confidence := argmax(scores)

	// Negation is a soft signal: strong absolute negation caps a
	// payment-confirmation reading instead of inverting it.
	if neg.Negated && neg.Strength >= 0.5 && primary == model.IntentPaymentConfirmation {
		if hasCategory(neg.Categories, "absolute") && confidence > 0.4 {
			confidence = 0.4
		}
	}

	secondary := detectSecondaryIntents(s.patterns, normalized, primary)

	// Semantic boost when the best pattern agrees with (or is close to) the
	// pattern-scored primary.
	if best.Score > semanticBoostCut && intentSimilarity(best.Pattern.Intent, primary) >= 0.5 {
		confidence = model.Clamp01(confidence + 0.2*best.Score)
	}

	coherence := firstTurnCoherence
	if len(convo.recentIntents) > 0 {
		var sum float64
		for _, prev := range convo.recentIntents {
			sum += intentSimilarity(primary, prev)
		}
		coherence = sum / float64(len(convo.recentIntents))
	}

	complexity := nlp.LinguisticComplexity(normalized)
	entitySignal := float64(len(entities)) * 0.2
	if entitySignal > 1 {
		entitySignal = 1
	}
	certainty := 0.3*confidence + 0.2*best.Score + 0.2*coherence +
		0.15*(1-complexity) + 0.15*entitySignal

	// Last-resort keyword guess when nothing scored. Still the primary path,
	// not the fallback cascade.
	if rawMax < lowScoreFloor && confidence < lowScoreFloor {
		primary, confidence = keywordGuess(normalized)
	}

	return &model.ClassificationResult{
		PrimaryIntent:        primary,
		Confidence:           model.Clamp01(confidence),
		Entities:             entities,
		TemporalFrame:        frame,
		EmotionalState:       emotion,
		Negation:             neg.Negated,
		NegationStrength:     neg.Strength,
		SecondaryIntents:     secondary,
		SemanticSimilarity:   best.Score,
		ContextualCoherence:  model.Clamp01(coherence),
		LinguisticComplexity: complexity,
		Certainty:            model.Clamp01(certainty),
		AlternativeIntents:   rankedAlternatives(scores, primary),
		SemanticClusters:     s.semantic.Clusters(all, 0.5),
		DiscourseMarkers:     nlp.DiscourseMarkers(normalized),
		PragmaticInference:   nlp.PragmaticInference(normalized),
	}
}

// Connector-based multi-intent detection: an invoice noun joined to a
// negotiation noun ("manda o boleto e queria parcelar") marks a secondary
// intent, then generic connector splitting catches the rest.
var (
	invoiceNouns     = []string{"boleto", "fatura", "conta", "divida"}
	negotiationNouns = []string{"parcelar", "desconto", "acordo", "negociar", "dividir"}
	connectors       = []string{" e ", " mas ", " tambem ", " alem disso ", " ai "}
)

func detectSecondaryIntents(scorer *nlp.PatternScorer, normalized string, primary model.IntentCategory) []model.IntentCategory {
	var out []model.IntentCategory
	add := func(it model.IntentCategory) {
		if it == primary {
			return
		}
		for _, have := range out {
			if have == it {
				return
			}
		}
		out = append(out, it)
	}

	hasConnector := false
	for _, c := range connectors {
		if strings.Contains(normalized, c) {
			hasConnector = true
			break
		}
	}
	if hasConnector && containsAny(normalized, invoiceNouns) && containsAny(normalized, negotiationNouns) {
		if primary.IsNegotiation() {
			add(model.IntentInvoiceRequest)
		} else {
			add(model.IntentInstallmentNegotiation)
		}
	}

	// Generic split: score each connector-delimited segment independently.
	for _, c := range connectors {
		if !strings.Contains(normalized, c) {
			continue
		}
		for _, seg := range strings.Split(normalized, c) {
			seg = strings.TrimSpace(seg)
			if len(strings.Fields(seg)) < 2 {
				continue
			}
			segScores := scorer.Score(seg, nil, model.EmotionNeutral)
			it, sc := argmax(segScores)
			if sc >= 0.3 {
				add(it)
			}
		}
	}
	return out
}

// keywordGuess is the step-9 safety net for unscoreable text.
func keywordGuess(normalized string) (model.IntentCategory, float64) {
	if containsAny(normalized, []string{"boleto", "fatura", "conta", "pagar", "pagamento"}) {
		return model.IntentInvoiceRequest, guessConfidence
	}
	if containsAny(normalized, []string{"valor", "quanto", "total", "saldo"}) {
		return model.IntentInvoiceValueInquiry, guessConfidence
	}
	return model.IntentClarificationRequest, guessConfidence
}

func containsAny(text string, words []string) bool {
	for _, w := range words {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}

func hasCategory(categories []string, want string) bool {
	for _, c := range categories {
		if c == want {
			return true
		}
	}
	return false
}

// argmax picks the highest-scoring intent deterministically: ties resolve by
// the fixed AllIntents order, so identical inputs always yield the same
// primary intent.
func argmax(scores map[model.IntentCategory]float64) (model.IntentCategory, float64) {
	best := model.IntentUnknown
	var bestScore float64
	for _, intent := range model.AllIntents {
		if scores[intent] > bestScore {
			bestScore = scores[intent]
			best = intent
		}
	}
	return best, bestScore
}

func maxScore(scores map[model.IntentCategory]float64) float64 {
	var m float64
	for _, v := range scores {
		if v > m {
			m = v
		}
	}
	return m
}

func rankedAlternatives(scores map[model.IntentCategory]float64, primary model.IntentCategory) []model.ScoredIntent {
	out := make([]model.ScoredIntent, 0, len(scores))
	for _, intent := range model.AllIntents {
		if intent == primary || scores[intent] <= 0 {
			continue
		}
		out = append(out, model.ScoredIntent{Intent: intent, Score: scores[intent]})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	if len(out) > 5 {
		out = out[:5]
	}
	return out
}
