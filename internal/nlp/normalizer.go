package nlp

import (
	"regexp"
	"strings"

	"github.com/cobrancabot/cobrancabot-go/internal/model"
)

// Normalizer canonicalizes informal Brazilian Portuguese so the downstream
// scorers match against a stable form. Normalization is idempotent and never
// fails; characters outside the allowed set are stripped, not rejected.
type Normalizer struct {
	wordSubs   map[string]string
	phraseSubs []phraseSub
}

type phraseSub struct {
	re   *regexp.Regexp
	with string
}

var (
	punctRunRe   = regexp.MustCompile(`([!?.,;])[!?.,;]+`)
	spaceRunRe   = regexp.MustCompile(`\s+`)
	disallowedRe = regexp.MustCompile(`[^a-z0-9çãõáéíóúâêôàü$%,.?!/:\-\s]`)
)

// accentFold maps accented runes to their base form for comparison.
// The raw text is preserved elsewhere for display.
var accentFold = strings.NewReplacer(
	"á", "a", "à", "a", "â", "a", "ã", "a", "ä", "a",
	"é", "e", "è", "e", "ê", "e", "ë", "e",
	"í", "i", "ì", "i", "î", "i", "ï", "i",
	"ó", "o", "ò", "o", "ô", "o", "õ", "o", "ö", "o",
	"ú", "u", "ù", "u", "û", "u", "ü", "u",
	"ç", "c", "ñ", "n",
)

// wordSubstitutions corrects common abbreviations, typos and phonetic
// respellings, whole word only. Replacements must already be in normalized
// form (lowercase, no accents) or normalization would not be idempotent.
var wordSubstitutions = map[string]string{
	"vc":      "voce",
	"vcs":     "voces",
	"tb":      "tambem",
	"tbm":     "tambem",
	"pq":      "porque",
	"q":       "que",
	"n":       "nao",
	"naum":    "nao",
	"nau":     "nao",
	"ta":      "esta",
	"to":      "estou",
	"tava":    "estava",
	"kd":      "cade",
	"kde":     "cade",
	"blz":     "beleza",
	"vlw":     "valeu",
	"flw":     "falou",
	"obg":     "obrigado",
	"obgd":    "obrigado",
	"brigado": "obrigado",
	"msm":     "mesmo",
	"hj":      "hoje",
	"amh":     "amanha",
	"amn":     "amanha",
	"dps":     "depois",
	"qdo":     "quando",
	"qnd":     "quando",
	"qto":     "quanto",
	"qnt":     "quanto",
	"vlr":     "valor",
	"pgto":    "pagamento",
	"pagto":   "pagamento",
	"cmg":     "comigo",
	"ngm":     "ninguem",
	"nd":      "nada",
	"mt":      "muito",
	"mto":     "muito",
	"pfv":     "por favor",
	"pf":      "por favor",
	"fds":     "fim de semana",
	"slc":     "sei la",
	"vdd":     "verdade",
	"agr":     "agora",
	"dnv":     "de novo",
}

// phraseSubstitutions applies domain-specific multi-word corrections after
// the word pass, e.g. the many informal spellings of "segunda via".
var phraseSubstitutions = []struct{ pattern, with string }{
	{`\b2\s*a?\s*via\b`, "segunda via"},
	{`\bseg\s+via\b`, "segunda via"},
	{`\bsegundavia\b`, "segunda via"},
	{`\bcod\w*\s+de\s+barras?\b`, "codigo de barras"},
	{`\bb[ou]let[ou]\b`, "boleto"},
	{`\bpagar?ei\b`, "vou pagar"},
	{`\bn\s*vou\b`, "nao vou"},
}

// NewNormalizer builds a normalizer with the built-in correction tables.
func NewNormalizer() *Normalizer {
	subs := make([]phraseSub, 0, len(phraseSubstitutions))
	for _, p := range phraseSubstitutions {
		subs = append(subs, phraseSub{re: regexp.MustCompile(p.pattern), with: p.with})
	}
	return &Normalizer{
		wordSubs:   wordSubstitutions,
		phraseSubs: subs,
	}
}

// Normalize canonicalizes raw text: lowercase, accents folded, punctuation
// runs collapsed, abbreviation and phrase corrections applied.
// Normalize(Normalize(x)) == Normalize(x).
func (n *Normalizer) Normalize(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	s = accentFold.Replace(s)
	s = disallowedRe.ReplaceAllString(s, " ")
	s = punctRunRe.ReplaceAllString(s, "$1")

	// Whole-word abbreviation pass. Trailing punctuation on a token is kept
	// aside so "vc?" still corrects to "voce?".
	tokens := strings.Fields(s)
	for i, tok := range tokens {
		core := strings.TrimRight(tok, "!?.,;:")
		tail := tok[len(core):]
		if sub, ok := n.wordSubs[core]; ok {
			tokens[i] = sub + tail
		}
	}
	s = strings.Join(tokens, " ")

	for _, p := range n.phraseSubs {
		s = p.re.ReplaceAllString(s, p.with)
	}

	return strings.TrimSpace(spaceRunRe.ReplaceAllString(s, " "))
}

// NormalizeMessage pairs raw input with its normalized form.
func (n *Normalizer) NormalizeMessage(raw string) model.NormalizedMessage {
	return model.NormalizedMessage{Raw: raw, Normalized: n.Normalize(raw)}
}
