package model

// IntentCategory is the closed set of customer intents the engine recognizes.
type IntentCategory string

const (
	IntentInvoiceRequest          IntentCategory = "InvoiceRequest"
	IntentInvoiceValueInquiry     IntentCategory = "InvoiceValueInquiry"
	IntentDueDateInquiry          IntentCategory = "DueDateInquiry"
	IntentInstallmentNegotiation  IntentCategory = "InstallmentNegotiation"
	IntentDiscountNegotiation     IntentCategory = "DiscountNegotiation"
	IntentPaymentConfirmation     IntentCategory = "PaymentConfirmation"
	IntentUndueChargeComplaint    IntentCategory = "UndueChargeComplaint"
	IntentIncorrectValueComplaint IntentCategory = "IncorrectValueComplaint"
	IntentGreeting                IntentCategory = "Greeting"
	IntentFarewell                IntentCategory = "Farewell"
	IntentAffirmation             IntentCategory = "Affirmation"
	IntentNegation                IntentCategory = "Negation"
	IntentClarificationRequest    IntentCategory = "ClarificationRequest"
	IntentUnknown                 IntentCategory = "Unknown"
)

// AllIntents lists every category except Unknown, in scoring order.
var AllIntents = []IntentCategory{
	IntentInvoiceRequest,
	IntentInvoiceValueInquiry,
	IntentDueDateInquiry,
	IntentInstallmentNegotiation,
	IntentDiscountNegotiation,
	IntentPaymentConfirmation,
	IntentUndueChargeComplaint,
	IntentIncorrectValueComplaint,
	IntentGreeting,
	IntentFarewell,
	IntentAffirmation,
	IntentNegation,
	IntentClarificationRequest,
}

// IsComplaint reports whether the intent is a complaint category.
func (i IntentCategory) IsComplaint() bool {
	return i == IntentUndueChargeComplaint || i == IntentIncorrectValueComplaint
}

// IsNegotiation reports whether the intent is a negotiation category.
func (i IntentCategory) IsNegotiation() bool {
	return i == IntentInstallmentNegotiation || i == IntentDiscountNegotiation
}

// EmotionalState is the dominant emotion detected in a message.
type EmotionalState string

const (
	EmotionNeutral         EmotionalState = "Neutral"
	EmotionPositive        EmotionalState = "Positive"
	EmotionNegative        EmotionalState = "Negative"
	EmotionAngry           EmotionalState = "Angry"
	EmotionAnxious         EmotionalState = "Anxious"
	EmotionFrustrated      EmotionalState = "Frustrated"
	EmotionRelieved        EmotionalState = "Relieved"
	EmotionConfused        EmotionalState = "Confused"
	EmotionUrgent          EmotionalState = "Urgent"
	// Escalated variants produced by the escalation detector.
	EmotionVeryFrustrated  EmotionalState = "VeryFrustrated"
	EmotionExtremelyUrgent EmotionalState = "ExtremelyUrgent"
)

// Base strips the escalated variants back to their base emotion.
func (e EmotionalState) Base() EmotionalState {
	switch e {
	case EmotionVeryFrustrated:
		return EmotionFrustrated
	case EmotionExtremelyUrgent:
		return EmotionUrgent
	}
	return e
}

// TemporalFrame is the time reference of a message.
type TemporalFrame string

const (
	FramePast    TemporalFrame = "Past"
	FramePresent TemporalFrame = "Present"
	FrameFuture  TemporalFrame = "Future"
)

// EntityType tags an extracted entity.
type EntityType string

const (
	EntityMoney    EntityType = "Money"
	EntityDate     EntityType = "Date"
	EntityProtocol EntityType = "Protocol"
	EntityDocument EntityType = "Document"
)
