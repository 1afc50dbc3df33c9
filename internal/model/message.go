package model

import "time"

// Response is the engine's reply for one inbound message.
// The field set matches the webhook wire contract; Escalate is included
// because the messaging dispatcher routes on it.
type Response struct {
	Text                 string  `json:"text"`
	Intent               string  `json:"intent"`
	Confidence           float64 `json:"confidence"`
	EntitiesDetected     int     `json:"entities_detected"`
	EmotionalState       string  `json:"emotional_state"`
	MultipleIntents      int     `json:"multiple_intents"`
	Escalate             bool    `json:"escalate"`
	FallbackLevel        string  `json:"fallback_level,omitempty"`
	RequiresConfirmation bool    `json:"requires_confirmation"`
}

// InboundMessage is the webhook payload delivered by the channel layer.
type InboundMessage struct {
	Phone string `json:"phone" binding:"required"`
	Text  string `json:"text"`
	Name  string `json:"name,omitempty"`
}

// WebhookReply wraps a Response with delivery metadata.
type WebhookReply struct {
	MessageID string    `json:"messageId"`
	Phone     string    `json:"phone"`
	Reply     Response  `json:"reply"`
	Timestamp time.Time `json:"timestamp"`
}

// ConsoleMessage is pushed to connected agent consoles.
// Type is ESCALATION, HEARTBEAT_ACK or INFO.
type ConsoleMessage struct {
	Type      string    `json:"type"`
	Phone     string    `json:"phone,omitempty"`
	Text      string    `json:"text,omitempty"`
	Intent    string    `json:"intent,omitempty"`
	Emotion   string    `json:"emotion,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}
