package memory

import (
	"context"
	"testing"
	"time"

	"github.com/cobrancabot/cobrancabot-go/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func result(intent model.IntentCategory, confidence, coherence float64) *model.ClassificationResult {
	return &model.ClassificationResult{
		PrimaryIntent:       intent,
		Confidence:          confidence,
		EmotionalState:      model.EmotionNeutral,
		ContextualCoherence: coherence,
	}
}

func TestRingBufferCaps(t *testing.T) {
	c := NewConversation()
	now := time.Now()
	for i := 0; i < 60; i++ {
		c.Update(result(model.IntentInvoiceRequest, 0.9, 0.8), "mensagem", now)
	}
	assert.Len(t, c.IntentHistory, 50)
	assert.Len(t, c.EmotionalJourney, 50)
	assert.Len(t, c.Snippets, 50)
	assert.Equal(t, 60, c.MessageCount)
}

func TestContextSwitchDetection(t *testing.T) {
	c := NewConversation()
	now := time.Now()

	c.Update(result(model.IntentGreeting, 0.9, 0.8), "oi", now)
	assert.Empty(t, c.ContextSwitches, "first message never counts as a switch")

	c.Update(result(model.IntentPaymentConfirmation, 0.9, 0.3), "paguei", now)
	assert.Len(t, c.ContextSwitches, 1)

	// Switch timestamps are capped at 20, oldest evicted first.
	for i := 0; i < 30; i++ {
		c.Update(result(model.IntentGreeting, 0.9, 0.1), "oi", now)
	}
	assert.Len(t, c.ContextSwitches, 20)
}

func TestRunningAverageConfidence(t *testing.T) {
	c := NewConversation()
	now := time.Now()

	c.Update(result(model.IntentGreeting, 0.8, 0.8), "oi", now)
	assert.InDelta(t, 0.8, c.RunningAvgConfidence, 1e-9)

	c.Update(result(model.IntentGreeting, 0.4, 0.8), "oi", now)
	assert.InDelta(t, 0.6, c.RunningAvgConfidence, 1e-9, "smoothing is (old + new) / 2")
}

func TestLearnThresholdAndCap(t *testing.T) {
	c := NewConversation()
	now := time.Now()

	c.Learn(result(model.IntentGreeting, 0.8, 0.8), now)
	assert.Empty(t, c.LearnedPatterns, "confidence must exceed 0.8")

	for i := 0; i < 25; i++ {
		c.Learn(result(model.IntentGreeting, 0.9, 0.8), now)
	}
	key := string(model.IntentGreeting) + "|" + string(model.EmotionNeutral)
	assert.Len(t, c.LearnedPatterns[key], 20)
}

func TestSnippetTruncation(t *testing.T) {
	c := NewConversation()
	long := make([]rune, 500)
	for i := range long {
		long[i] = 'a'
	}
	c.Update(result(model.IntentGreeting, 0.9, 0.8), string(long), time.Now())
	assert.Len(t, []rune(c.Snippets[0]), 80)
}

func TestNegotiationFlag(t *testing.T) {
	c := NewConversation()
	now := time.Now()

	c.Update(result(model.IntentInstallmentNegotiation, 0.9, 0.8), "parcelar", now)
	assert.True(t, c.NegotiationActive)

	c.Update(result(model.IntentAffirmation, 0.9, 0.8), "sim", now)
	assert.True(t, c.NegotiationActive, "affirmation keeps a negotiation open")

	c.Update(result(model.IntentGreeting, 0.9, 0.8), "oi", now)
	assert.False(t, c.NegotiationActive)
}

func TestStoreAcquireCreatesLazily(t *testing.T) {
	s := NewStore(nil, zap.NewNop())

	conv, release := s.Acquire(context.Background(), "5511999990000")
	require.NotNil(t, conv)
	conv.MessageCount = 7
	release()

	again, release := s.Acquire(context.Background(), "5511999990000")
	defer release()
	assert.Equal(t, 7, again.MessageCount)
}

func TestStoreSerializesPerKey(t *testing.T) {
	s := NewStore(nil, zap.NewNop())

	_, release := s.Acquire(context.Background(), "key-a")

	acquired := make(chan struct{})
	go func() {
		_, r := s.Acquire(context.Background(), "key-a")
		close(acquired)
		r()
	}()

	select {
	case <-acquired:
		t.Fatal("second acquire for the same key must block")
	case <-time.After(50 * time.Millisecond):
	}

	// A different key is not blocked.
	_, releaseB := s.Acquire(context.Background(), "key-b")
	releaseB()

	release()
	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatal("second acquire should proceed after release")
	}
}

type failingHook struct{}

func (failingHook) Load(context.Context, string) (*Conversation, error) {
	return nil, assert.AnError
}
func (failingHook) Save(context.Context, string, *Conversation) error {
	return assert.AnError
}

func TestStoreSurvivesFailingHook(t *testing.T) {
	s := NewStore(failingHook{}, zap.NewNop())

	conv, release := s.Acquire(context.Background(), "key")
	require.NotNil(t, conv, "a failing hook falls back to a fresh conversation")
	release()

	assert.NotPanics(t, func() { s.Persist(context.Background(), "key", conv) })
}
