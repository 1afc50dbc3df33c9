package nlp

import (
	"testing"

	"github.com/cobrancabot/cobrancabot-go/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func findEntity(entities []model.ExtractedEntity, typ model.EntityType) (model.ExtractedEntity, bool) {
	for _, e := range entities {
		if e.Type == typ {
			return e, true
		}
	}
	return model.ExtractedEntity{}, false
}

func TestExtractMoney(t *testing.T) {
	e := NewEntityExtractor()

	tests := []struct {
		in   string
		want string
	}{
		{"ja paguei r$ 150,50 ontem", "150.50"},
		{"o valor e r$1.234,56 certo?", "1234.56"},
		{"paguei 200 reais semana passada", "200.00"},
		{"ficou r$ 99,9", "99.90"},
		{"devo r$ 80", "80.00"},
	}
	for _, tt := range tests {
		entities := e.Extract(tt.in)
		money, ok := findEntity(entities, model.EntityMoney)
		require.True(t, ok, "no money entity in %q", tt.in)
		assert.Equal(t, tt.want, money.NormalizedValue)
		assert.Equal(t, 0.9, money.Confidence)
		assert.NotEmpty(t, money.ContextSnippet)
	}
}

func TestExtractDate(t *testing.T) {
	e := NewEntityExtractor()

	tests := []struct {
		in   string
		want string
	}{
		{"vence em 15/03/2026 ne?", "15/03/2026"},
		{"pago dia 10 sem falta", "10"},
		{"paguei ontem de manha", "ontem"},
		{"resolvo semana que vem", "semana que vem"},
	}
	for _, tt := range tests {
		entities := e.Extract(tt.in)
		date, ok := findEntity(entities, model.EntityDate)
		require.True(t, ok, "no date entity in %q", tt.in)
		assert.Equal(t, tt.want, date.NormalizedValue)
	}
}

func TestExtractProtocolAndDocument(t *testing.T) {
	e := NewEntityExtractor()

	entities := e.Extract("abri o protocolo 2024-55123 sobre isso")
	proto, ok := findEntity(entities, model.EntityProtocol)
	require.True(t, ok)
	assert.Equal(t, "202455123", proto.NormalizedValue)

	entities = e.Extract("meu cpf e 123.456.789-00")
	doc, ok := findEntity(entities, model.EntityDocument)
	require.True(t, ok)
	assert.Equal(t, "12345678900", doc.NormalizedValue)
}

func TestExtractMultipleFamilies(t *testing.T) {
	e := NewEntityExtractor()

	entities := e.Extract("ja paguei ontem via pix, r$ 150,50")
	_, hasMoney := findEntity(entities, model.EntityMoney)
	_, hasDate := findEntity(entities, model.EntityDate)
	assert.True(t, hasMoney)
	assert.True(t, hasDate)
}

func TestExtractNothing(t *testing.T) {
	e := NewEntityExtractor()
	assert.Empty(t, e.Extract("bom dia, tudo bem?"))
	assert.Empty(t, e.Extract(""))
}
