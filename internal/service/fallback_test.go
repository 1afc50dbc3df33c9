package service

import (
	"testing"

	"github.com/cobrancabot/cobrancabot-go/internal/memory"
	"github.com/cobrancabot/cobrancabot-go/internal/model"
	"github.com/cobrancabot/cobrancabot-go/internal/nlp"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func newCascade() *FallbackCascade {
	return NewFallbackCascade(nlp.NewSemanticScorer(), zap.NewNop())
}

func TestCascadeLevelOrder(t *testing.T) {
	c := newCascade()
	names := make([]string, 0, len(c.levels))
	for _, l := range c.levels {
		names = append(names, l.name)
	}
	assert.Equal(t, []string{
		LevelSemanticSimilarity,
		LevelKeywordExtraction,
		LevelPatternMatching,
		LevelConversationalContext,
		LevelIntelligentGuess,
	}, names)
}

func TestCascadeSemanticLevel(t *testing.T) {
	c := newCascade()
	out := c.Run("nao vou pagar nada disso, isso e um absurdo", convoContext{})
	assert.Equal(t, LevelSemanticSimilarity, out.Level)
	assert.Equal(t, model.IntentNegation, out.Intent)
	assert.False(t, out.RequiresConfirmation)
}

func TestCascadeConversationalContext(t *testing.T) {
	c := newCascade()
	// Gibberish defeats levels 1-3; the last recorded intent carries the day.
	out := c.Run("zzz qqq www kkk", convoContext{
		hasLast:    true,
		lastIntent: memory.IntentRecord{Intent: model.IntentDueDateInquiry, Confidence: 0.9},
	})
	assert.Equal(t, LevelConversationalContext, out.Level)
	assert.Equal(t, model.IntentDueDateInquiry, out.Intent)
	assert.InDelta(t, 0.72, out.Confidence, 1e-9, "prior confidence discounted by 0.8")
}

func TestCascadeIntelligentGuess(t *testing.T) {
	c := newCascade()

	out := c.Run("zzz", convoContext{})
	assert.Equal(t, LevelIntelligentGuess, out.Level)
	assert.Equal(t, model.IntentInvoiceRequest, out.Intent)
	assert.True(t, out.RequiresConfirmation)

	out = c.Run("zzz qqq www kkk ppp?", convoContext{})
	assert.Equal(t, LevelIntelligentGuess, out.Level)
	assert.Equal(t, model.IntentInvoiceValueInquiry, out.Intent, "question marks hint at a value inquiry")
}

func TestCascadeEmergency(t *testing.T) {
	c := newCascade()
	// Force total exhaustion.
	for i := range c.levels {
		c.levels[i].threshold = 1.1
	}
	out := c.Run("qualquer coisa", convoContext{})
	assert.Equal(t, LevelEmergency, out.Level)
	assert.Equal(t, model.IntentClarificationRequest, out.Intent)
	assert.True(t, out.RequiresConfirmation)
}

func TestCascadeKeywordOverlap(t *testing.T) {
	c := newCascade()
	intent, ratio := c.byKeywordOverlap("quanto devo de valor total", convoContext{})
	assert.Equal(t, model.IntentInvoiceValueInquiry, intent)
	assert.InDelta(t, 0.8, ratio, 1e-9)
}
