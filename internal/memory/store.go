package memory

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// PersistenceHook lets conversation memory survive process restarts.
// The store works correctly with a nil hook (process-local memory only).
type PersistenceHook interface {
	Load(ctx context.Context, key string) (*Conversation, error)
	Save(ctx context.Context, key string, c *Conversation) error
}

// Store is a concurrency-safe keyed store of conversation memory.
// Each key owns its own lock: Acquire serializes all work for one
// conversation while leaving other keys fully parallel.
type Store struct {
	mu      sync.Mutex
	entries map[string]*entry
	hook    PersistenceHook
	logger  *zap.Logger
}

type entry struct {
	mu   sync.Mutex
	conv *Conversation
}

// NewStore creates a store. hook may be nil.
func NewStore(hook PersistenceHook, logger *zap.Logger) *Store {
	return &Store{
		entries: make(map[string]*entry),
		hook:    hook,
		logger:  logger,
	}
}

// Acquire returns the conversation for key, creating it lazily, and locks
// the key until the returned release func is called. On first access with a
// persistence hook configured, the hook is consulted before creating an
// empty conversation. Acquire never fails.
func (s *Store) Acquire(ctx context.Context, key string) (*Conversation, func()) {
	s.mu.Lock()
	e, ok := s.entries[key]
	if !ok {
		e = &entry{}
		s.entries[key] = e
	}
	s.mu.Unlock()

	e.mu.Lock()
	if e.conv == nil {
		e.conv = s.load(ctx, key)
	}
	return e.conv, e.mu.Unlock
}

// Persist saves the conversation through the hook, best effort. A failing
// hook is logged and otherwise ignored: persistence is an optimization,
// never a correctness requirement.
func (s *Store) Persist(ctx context.Context, key string, c *Conversation) {
	if s.hook == nil {
		return
	}
	if err := s.hook.Save(ctx, key, c); err != nil {
		s.logger.Warn("conversation save failed",
			zap.String("key", key),
			zap.Error(err))
	}
}

func (s *Store) load(ctx context.Context, key string) *Conversation {
	if s.hook != nil {
		conv, err := s.hook.Load(ctx, key)
		if err != nil {
			s.logger.Warn("conversation load failed, starting fresh",
				zap.String("key", key),
				zap.Error(err))
		} else if conv != nil {
			if conv.LearnedPatterns == nil {
				conv.LearnedPatterns = make(map[string][]LearnedPattern)
			}
			return conv
		}
	}
	return NewConversation()
}
