package model

// NormalizedMessage pairs the raw text with its normalized form.
// Immutable once produced.
type NormalizedMessage struct {
	Raw        string `json:"raw"`
	Normalized string `json:"normalized"`
}

// ExtractedEntity is a typed value pulled from free text.
// Entities are never mutated after creation.
type ExtractedEntity struct {
	Type            EntityType         `json:"type"`
	RawValue        string             `json:"rawValue"`
	NormalizedValue string             `json:"normalizedValue"`
	Confidence      float64            `json:"confidence"`
	ContextSnippet  string             `json:"contextSnippet"`
	SemanticWeight  float64            `json:"semanticWeight"`
	Alternatives    []string           `json:"alternatives,omitempty"`
	Relationships   map[string]float64 `json:"relationships,omitempty"`
}

// ScoredIntent is one (intent, score) entry of a ranked distribution.
type ScoredIntent struct {
	Intent IntentCategory `json:"intent"`
	Score  float64        `json:"score"`
}

// ClassificationResult is the structured decision for one message.
type ClassificationResult struct {
	PrimaryIntent        IntentCategory     `json:"primaryIntent"`
	Confidence           float64            `json:"confidence"`
	Entities             []ExtractedEntity  `json:"entities"`
	TemporalFrame        TemporalFrame      `json:"temporalFrame"`
	EmotionalState       EmotionalState     `json:"emotionalState"`
	Negation             bool               `json:"negation"`
	NegationStrength     float64            `json:"negationStrength"`
	SecondaryIntents     []IntentCategory   `json:"secondaryIntents,omitempty"`
	SemanticSimilarity   float64            `json:"semanticSimilarity"`
	ContextualCoherence  float64            `json:"contextualCoherence"`
	LinguisticComplexity float64            `json:"linguisticComplexity"`
	Certainty            float64            `json:"certainty"`
	AlternativeIntents   []ScoredIntent     `json:"alternativeIntents,omitempty"` // sorted desc
	SemanticClusters     []string           `json:"semanticClusters,omitempty"`
	DiscourseMarkers     []string           `json:"discourseMarkers,omitempty"`
	PragmaticInference   map[string]float64 `json:"pragmaticInference,omitempty"`
}

// Clamp01 bounds a score to [0,1].
func Clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
