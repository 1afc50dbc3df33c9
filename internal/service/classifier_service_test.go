package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/cobrancabot/cobrancabot-go/internal/config"
	"github.com/cobrancabot/cobrancabot-go/internal/memory"
	"github.com/cobrancabot/cobrancabot-go/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestClassifier(t *testing.T) (*ClassifierService, *memory.Store) {
	t.Helper()
	logger := zap.NewNop()
	store := memory.NewStore(nil, logger)
	composer := NewResponseService(logger)
	cfg := config.EngineConfig{AcceptanceThreshold: 0.45, Timeout: 5 * time.Second}
	return NewClassifierService(store, composer, cfg, logger), store
}

func TestClassifyGreeting(t *testing.T) {
	s, _ := newTestClassifier(t)

	resp := s.Classify(context.Background(), "5511999990001", "Oi, bom dia!", "Maria")
	assert.Equal(t, string(model.IntentGreeting), resp.Intent)
	assert.GreaterOrEqual(t, resp.Confidence, 0.45)
	assert.Empty(t, resp.FallbackLevel)
	assert.False(t, resp.RequiresConfirmation)
	assert.NotEmpty(t, resp.Text)
}

func TestClassifyPaymentConfirmation(t *testing.T) {
	s, _ := newTestClassifier(t)

	resp, result := s.process(convoContext{}, "já paguei ontem via pix, R$ 150,50", "")
	require.NotNil(t, result)
	assert.Equal(t, model.IntentPaymentConfirmation, result.PrimaryIntent)
	assert.Equal(t, model.FramePast, result.TemporalFrame)
	assert.Empty(t, resp.FallbackLevel)

	var money *model.ExtractedEntity
	for i := range result.Entities {
		if result.Entities[i].Type == model.EntityMoney {
			money = &result.Entities[i]
		}
	}
	require.NotNil(t, money, "expected a money entity")
	assert.Equal(t, "150.50", money.NormalizedValue)
	assert.Equal(t, 2, resp.EntitiesDetected)
}

func TestClassifyAngryRefusal(t *testing.T) {
	s, _ := newTestClassifier(t)

	resp, result := s.process(convoContext{}, "não vou pagar nada disso, isso é um absurdo", "")
	require.NotNil(t, result)
	assert.True(t, result.Negation)
	assert.Contains(t, []model.EmotionalState{model.EmotionAngry, model.EmotionFrustrated, model.EmotionVeryFrustrated},
		result.EmotionalState)
	assert.True(t, resp.Escalate)
}

func TestClassifyTotalFunction(t *testing.T) {
	s, _ := newTestClassifier(t)
	key := "5511999990002"

	inputs := []string{
		"",
		"   ",
		"👍🙏✨",
		"?????",
		strings.Repeat("preciso muito resolver essa pendencia do boleto ", 200),
		"\x00\xff\xfe",
	}
	for _, in := range inputs {
		resp := s.Classify(context.Background(), key, in, "")
		assert.GreaterOrEqual(t, resp.Confidence, 0.0, "input %q", in)
		assert.LessOrEqual(t, resp.Confidence, 1.0, "input %q", in)
		assert.NotEmpty(t, resp.Text, "input %q", in)
	}
}

func TestEmptyMessageGoesToIntelligentGuess(t *testing.T) {
	s, _ := newTestClassifier(t)

	// Fresh conversation: nothing for levels 1-4 to work with.
	resp := s.Classify(context.Background(), "5511999990003", "   ", "")
	assert.Equal(t, LevelIntelligentGuess, resp.FallbackLevel)
	assert.True(t, resp.RequiresConfirmation)
}

func TestMemoryBoundedAfterSixtyMessages(t *testing.T) {
	s, store := newTestClassifier(t)
	key := "5511999990004"

	for i := 0; i < 60; i++ {
		s.Classify(context.Background(), key, "bom dia, cade meu boleto?", "")
	}

	conv, release := store.Acquire(context.Background(), key)
	defer release()
	assert.LessOrEqual(t, len(conv.IntentHistory), 50)
	assert.LessOrEqual(t, len(conv.EmotionalJourney), 50)
	assert.Equal(t, 60, conv.MessageCount)
}

func TestDeterministicPrimaryIntentAcrossMemoryStates(t *testing.T) {
	s, _ := newTestClassifier(t)
	text := "quero parcelar a divida em 3 vezes e fazer um acordo"

	_, fresh := s.process(convoContext{}, text, "")
	_, warmed := s.process(convoContext{
		hasLast:       true,
		lastIntent:    memory.IntentRecord{Intent: model.IntentInvoiceRequest, Confidence: 0.9},
		recentIntents: []model.IntentCategory{model.IntentGreeting, model.IntentInvoiceRequest},
		messageCount:  2,
	}, text, "")

	require.NotNil(t, fresh)
	require.NotNil(t, warmed)
	assert.Equal(t, fresh.PrimaryIntent, warmed.PrimaryIntent)
	// Coherence may differ with history; the chosen intent may not.
	assert.NotEqual(t, fresh.ContextualCoherence, warmed.ContextualCoherence)
}

func TestContinuityBoost(t *testing.T) {
	s, _ := newTestClassifier(t)
	text := "e quanto ficou?"

	_, fresh := s.process(convoContext{}, text, "")
	_, warmed := s.process(convoContext{
		hasLast:       true,
		lastIntent:    memory.IntentRecord{Intent: model.IntentInvoiceRequest, Confidence: 0.9},
		recentIntents: []model.IntentCategory{model.IntentInvoiceRequest},
		messageCount:  1,
	}, text, "")

	assert.Greater(t, warmed.Confidence, fresh.Confidence,
		"a prior invoice request should boost a value inquiry")
	assert.Equal(t, model.IntentInvoiceValueInquiry, warmed.PrimaryIntent)
}

func TestCancelledContextSkipsMemoryCommit(t *testing.T) {
	s, store := newTestClassifier(t)
	key := "5511999990005"

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	resp := s.Classify(ctx, key, "bom dia", "")
	assert.Equal(t, LevelEmergency, resp.FallbackLevel)

	conv, release := store.Acquire(context.Background(), key)
	defer release()
	assert.Zero(t, conv.MessageCount, "no partial memory update on cancellation")
}

func TestSecondaryIntentDetection(t *testing.T) {
	s, _ := newTestClassifier(t)

	resp, result := s.process(convoContext{}, "me manda o boleto e queria parcelar a divida", "")
	require.NotNil(t, result)
	assert.NotEmpty(t, result.SecondaryIntents)
	assert.Equal(t, len(result.SecondaryIntents), resp.MultipleIntents)
}

func TestHighConfidenceTurnsAreLearned(t *testing.T) {
	s, store := newTestClassifier(t)
	key := "5511999990006"

	s.Classify(context.Background(), key, "já paguei ontem via pix, R$ 150,50", "")

	conv, release := store.Acquire(context.Background(), key)
	defer release()
	assert.NotEmpty(t, conv.LearnedPatterns)
}
