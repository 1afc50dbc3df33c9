package nlp

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeBasics(t *testing.T) {
	n := NewNormalizer()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"lowercase and accents", "Não VOU pagar", "nao vou pagar"},
		{"abbreviations", "vc pode me mandar hj?", "voce pode me mandar hoje?"},
		{"segunda via shorthand", "preciso da 2 via", "preciso da segunda via"},
		{"segunda via variant", "manda a 2a via", "manda a segunda via"},
		{"punctuation runs", "Olá!!! tudo bem???", "ola! tudo bem?"},
		{"phonetic nao", "naum posso pagar", "nao posso pagar"},
		{"whitespace collapse", "  quanto   devo  ", "quanto devo"},
		{"abbreviation with punctuation", "qto devo?", "quanto devo?"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, n.Normalize(tt.in))
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	n := NewNormalizer()
	inputs := []string{
		"Oi, bom dia!",
		"não vou pagar nada disso, isso é um absurdo",
		"vc tem a 2 via? pq n chegou aqui!!!",
		"já paguei ontem via pix, R$ 150,50",
		"",
		"   ",
	}
	for _, in := range inputs {
		once := n.Normalize(in)
		assert.Equal(t, once, n.Normalize(once), "input %q", in)
	}
}

func TestNormalizeMessageKeepsRawText(t *testing.T) {
	n := NewNormalizer()
	msg := n.NormalizeMessage("Não VOU pagar!!!")
	assert.Equal(t, "Não VOU pagar!!!", msg.Raw)
	assert.Equal(t, "nao vou pagar!", msg.Normalized)
}

func TestNormalizeStripsUnknownRunes(t *testing.T) {
	n := NewNormalizer()
	assert.Equal(t, "", n.Normalize("👍🙏✨"))
	assert.Equal(t, "paguei", n.Normalize("paguei 👍"))
}

func TestNormalizeNeverFails(t *testing.T) {
	n := NewNormalizer()
	// Malformed / adversarial inputs still come back as strings.
	for _, in := range []string{"\x00\xff", "��", "……………", "R$R$R$"} {
		assert.NotPanics(t, func() { n.Normalize(in) })
	}
}
