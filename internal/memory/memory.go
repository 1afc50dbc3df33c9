package memory

import (
	"time"

	"github.com/cobrancabot/cobrancabot-go/internal/model"
)

const (
	// Hard caps. Ring buffers never exceed these; oldest entries evicted first.
	maxHistory         = 50
	maxContextSwitches = 20
	maxLearnedPerKey   = 20

	snippetLen         = 80
	learnThreshold     = 0.8
	coherenceSwitchMin = 0.4
)

// IntentRecord is one classified turn in the conversation.
type IntentRecord struct {
	Intent     model.IntentCategory `json:"intent"`
	Confidence float64              `json:"confidence"`
	Timestamp  time.Time            `json:"timestamp"`
}

// EmotionRecord is one observed emotional state.
type EmotionRecord struct {
	Emotion    model.EmotionalState `json:"emotion"`
	Confidence float64              `json:"confidence"`
	Timestamp  time.Time            `json:"timestamp"`
}

// LearnedPattern captures the shape of a high-confidence classification so
// later turns of the same (intent, emotion) pair can be recognized faster.
type LearnedPattern struct {
	SemanticClusters []string  `json:"semanticClusters"`
	EntityCount      int       `json:"entityCount"`
	DiscourseMarkers []string  `json:"discourseMarkers"`
	Confidence       float64   `json:"confidence"`
	Timestamp        time.Time `json:"timestamp"`
}

// Conversation is the bounded rolling state for one conversation key.
// It is not safe for concurrent use on its own; the Store serializes access
// per key.
type Conversation struct {
	IntentHistory        []IntentRecord              `json:"intentHistory"`
	EmotionalJourney     []EmotionRecord             `json:"emotionalJourney"`
	Snippets             []string                    `json:"snippets"`
	ContextSwitches      []time.Time                 `json:"contextSwitches"`
	MessageCount         int                         `json:"messageCount"`
	RunningAvgConfidence float64                     `json:"runningAvgConfidence"`
	NegotiationActive    bool                        `json:"negotiationActive"`
	LearnedPatterns      map[string][]LearnedPattern `json:"learnedPatterns,omitempty"`
}

// NewConversation returns an empty conversation memory.
func NewConversation() *Conversation {
	return &Conversation{
		LearnedPatterns: make(map[string][]LearnedPattern),
	}
}

// Update appends one classified turn to every ring buffer, records a context
// switch when coherence dropped below the switch threshold, and folds the new
// confidence into the running average as (old + new) / 2.
func (c *Conversation) Update(result *model.ClassificationResult, rawText string, now time.Time) {
	c.IntentHistory = appendBounded(c.IntentHistory, IntentRecord{
		Intent:     result.PrimaryIntent,
		Confidence: result.Confidence,
		Timestamp:  now,
	}, maxHistory)
	c.EmotionalJourney = appendBounded(c.EmotionalJourney, EmotionRecord{
		Emotion:    result.EmotionalState,
		Confidence: result.Confidence,
		Timestamp:  now,
	}, maxHistory)
	c.Snippets = appendBounded(c.Snippets, truncate(rawText, snippetLen), maxHistory)

	if c.MessageCount > 0 && result.ContextualCoherence < coherenceSwitchMin {
		c.ContextSwitches = appendBounded(c.ContextSwitches, now, maxContextSwitches)
	}

	if c.MessageCount == 0 {
		c.RunningAvgConfidence = result.Confidence
	} else {
		c.RunningAvgConfidence = (c.RunningAvgConfidence + result.Confidence) / 2
	}
	c.MessageCount++

	c.NegotiationActive = result.PrimaryIntent.IsNegotiation() ||
		(c.NegotiationActive && result.PrimaryIntent == model.IntentAffirmation)
}

// Learn stores a learned pattern for (intent, emotion) when the
// classification was confident enough. Bounded per key.
func (c *Conversation) Learn(result *model.ClassificationResult, now time.Time) {
	if result.Confidence <= learnThreshold {
		return
	}
	if c.LearnedPatterns == nil {
		c.LearnedPatterns = make(map[string][]LearnedPattern)
	}
	key := string(result.PrimaryIntent) + "|" + string(result.EmotionalState)
	c.LearnedPatterns[key] = appendBounded(c.LearnedPatterns[key], LearnedPattern{
		SemanticClusters: result.SemanticClusters,
		EntityCount:      len(result.Entities),
		DiscourseMarkers: result.DiscourseMarkers,
		Confidence:       result.Confidence,
		Timestamp:        now,
	}, maxLearnedPerKey)
}

// LastIntent returns the most recent intent record, if any.
func (c *Conversation) LastIntent() (IntentRecord, bool) {
	if len(c.IntentHistory) == 0 {
		return IntentRecord{}, false
	}
	return c.IntentHistory[len(c.IntentHistory)-1], true
}

// RecentIntents returns up to n most recent intents, newest last.
func (c *Conversation) RecentIntents(n int) []model.IntentCategory {
	h := c.IntentHistory
	if len(h) > n {
		h = h[len(h)-n:]
	}
	out := make([]model.IntentCategory, 0, len(h))
	for _, r := range h {
		out = append(out, r.Intent)
	}
	return out
}

// RepeatedEmotion reports whether the given base emotion appeared in at
// least count of the recent records.
func (c *Conversation) RepeatedEmotion(emotion model.EmotionalState, count int) bool {
	hits := 0
	for _, r := range c.EmotionalJourney {
		if r.Emotion.Base() == emotion {
			hits++
			if hits >= count {
				return true
			}
		}
	}
	return false
}

func appendBounded[T any](buf []T, v T, limit int) []T {
	buf = append(buf, v)
	if len(buf) > limit {
		buf = buf[len(buf)-limit:]
	}
	return buf
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
