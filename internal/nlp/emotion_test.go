package nlp

import (
	"testing"

	"github.com/cobrancabot/cobrancabot-go/internal/model"
	"github.com/stretchr/testify/assert"
)

func TestAnalyzeEmotion(t *testing.T) {
	a := NewEmotionAnalyzer()

	tests := []struct {
		name string
		in   string
		want model.EmotionalState
	}{
		{"neutral", "quero saber o valor da fatura", model.EmotionNeutral},
		{"angry", "isso e um absurdo, uma palhacada", model.EmotionAngry},
		{"anxious", "estou preocupado com meu nome sujo no serasa", model.EmotionAnxious},
		{"positive", "otimo, muito obrigado, perfeito", model.EmotionPositive},
		{"relieved", "ufa, ainda bem que resolveu", model.EmotionRelieved},
		{"confused", "nao entendi, como assim?", model.EmotionConfused},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, a.Analyze(tt.in, tt.in))
		})
	}
}

func TestAngryOutweighsNegative(t *testing.T) {
	a := NewEmotionAnalyzer()
	// One angry keyword (0.5 × 2.5) beats one negative keyword (0.5) plus
	// one more (0.4): the amplifier biases toward escalation-worthy states.
	got := a.Analyze("isso e ruim, pessimo mesmo, um absurdo", "")
	assert.Equal(t, model.EmotionAngry, got)
}

func TestEscalatedVariants(t *testing.T) {
	a := NewEmotionAnalyzer()

	// Repeated punctuation comes from the raw text, not the normalized form.
	assert.Equal(t, model.EmotionExtremelyUrgent,
		a.Analyze("e urgente, preciso disso imediatamente", "é URGENTE, preciso disso imediatamente!!!"))
	assert.Equal(t, model.EmotionVeryFrustrated,
		a.Analyze("ja falei muito sobre isso, nao aguento", "já falei MUITO sobre isso, não aguento"))
	// Angry never swaps to an escalated variant of another state.
	assert.Equal(t, model.EmotionAngry,
		a.Analyze("que absurdo", "que absurdo!!!"))
}

func TestTemporalFrame(t *testing.T) {
	a := NewEmotionAnalyzer()

	assert.Equal(t, model.FramePast, a.TemporalFrame("ja paguei ontem via pix"))
	assert.Equal(t, model.FrameFuture, a.TemporalFrame("vou pagar amanha sem falta"))
	assert.Equal(t, model.FramePresent, a.TemporalFrame("quero negociar essa divida"))
	assert.Equal(t, model.FramePresent, a.TemporalFrame(""))
}

func TestNegation(t *testing.T) {
	a := NewEmotionAnalyzer()

	res := a.Negation("nao vou pagar nada disso")
	assert.True(t, res.Negated)
	assert.Contains(t, res.Categories, "absolute")
	assert.Contains(t, res.Categories, "emphatic")
	assert.InDelta(t, 0.5, res.Strength, 1e-9)

	res = a.Negation("nao recebi o boleto")
	assert.True(t, res.Negated)
	assert.InDelta(t, 0.25, res.Strength, 1e-9)

	res = a.Negation("quero pagar hoje")
	assert.False(t, res.Negated)
	assert.Zero(t, res.Strength)
}
