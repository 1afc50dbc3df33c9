package memory

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/cobrancabot/cobrancabot-go/internal/model"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestHook(t *testing.T, ttl time.Duration) *RedisHook {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisHook(client, ttl)
}

func TestRedisHookRoundTrip(t *testing.T) {
	hook := newTestHook(t, 0)
	ctx := context.Background()

	conv := NewConversation()
	conv.Update(&model.ClassificationResult{
		PrimaryIntent:       model.IntentInvoiceRequest,
		Confidence:          0.9,
		EmotionalState:      model.EmotionUrgent,
		ContextualCoherence: 0.8,
	}, "cade meu boleto", time.Now())

	require.NoError(t, hook.Save(ctx, "5511988887777", conv))

	loaded, err := hook.Load(ctx, "5511988887777")
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, 1, loaded.MessageCount)
	require.Len(t, loaded.IntentHistory, 1)
	assert.Equal(t, model.IntentInvoiceRequest, loaded.IntentHistory[0].Intent)
	assert.Equal(t, model.EmotionUrgent, loaded.EmotionalJourney[0].Emotion)
	assert.Equal(t, []string{"cade meu boleto"}, loaded.Snippets)
}

func TestRedisHookMissingKey(t *testing.T) {
	hook := newTestHook(t, 0)

	loaded, err := hook.Load(context.Background(), "nope")
	require.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestRedisHookIntegratesWithStore(t *testing.T) {
	hook := newTestHook(t, time.Hour)
	ctx := context.Background()

	conv := NewConversation()
	conv.MessageCount = 3
	require.NoError(t, hook.Save(ctx, "key", conv))

	s := NewStore(hook, zap.NewNop())
	loaded, release := s.Acquire(ctx, "key")
	defer release()
	assert.Equal(t, 3, loaded.MessageCount)
	assert.NotNil(t, loaded.LearnedPatterns, "loaded conversations get a usable learned-pattern map")
}
