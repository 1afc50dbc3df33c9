package nlp

import (
	"regexp"
	"strings"

	"github.com/cobrancabot/cobrancabot-go/internal/model"
)

// EntityExtractor pulls typed entities out of normalized text. Each entity
// family owns an ordered pattern list; the first pattern that matches wins
// for that family. Families are independent, so one message may yield a
// Money and a Date entity from the same span.
type EntityExtractor struct {
	families []entityFamily
}

type entityFamily struct {
	typ        model.EntityType
	confidence float64
	patterns   []*regexp.Regexp
	normalize  func(match []string) string
}

var (
	// "R$ 1.234,56", "r$150", "150,50 reais", "150 reais", "150 conto"
	moneyPatterns = []*regexp.Regexp{
		regexp.MustCompile(`r\$\s*(\d{1,3}(?:\.\d{3})+(?:,\d{1,2})?|\d+(?:,\d{1,2})?)`),
		regexp.MustCompile(`(\d{1,3}(?:\.\d{3})*(?:,\d{1,2})?)\s*(?:reais|real|conto|pila|pau)\b`),
		regexp.MustCompile(`\bvalor\s+de\s+(\d+(?:,\d{1,2})?)`),
	}
	// "15/03/2026", "15/03", "dia 15", "todo dia 10"
	datePatterns = []*regexp.Regexp{
		regexp.MustCompile(`\b(\d{1,2}/\d{1,2}(?:/\d{2,4})?)\b`),
		regexp.MustCompile(`\bdia\s+(\d{1,2})\b`),
		regexp.MustCompile(`\b(hoje|amanha|ontem|depois de amanha|semana que vem|semana passada|mes que vem|proxima semana|fim de semana)\b`),
	}
	protocolPatterns = []*regexp.Regexp{
		regexp.MustCompile(`\bprotocolo\s*(?:n[o.]?\s*)?([\d][\d.\-/]{4,})`),
		regexp.MustCompile(`\b(?:atendimento|chamado)\s*(?:n[o.]?\s*)?([\d][\d.\-/]{4,})`),
	}
	documentPatterns = []*regexp.Regexp{
		regexp.MustCompile(`\b(\d{3}\.?\d{3}\.?\d{3}-?\d{2})\b`),                 // CPF
		regexp.MustCompile(`\b(\d{2}\.?\d{3}\.?\d{3}/?\d{4}-?\d{2})\b`),          // CNPJ
		regexp.MustCompile(`\b(?:cpf|cnpj|documento)\s*(?:n[o.]?\s*)?([\d.\-/]{8,})`),
	}

	separatorStrip = strings.NewReplacer(".", "", "-", "", "/", "", " ", "")
)

// NewEntityExtractor builds an extractor with the built-in pattern tables.
func NewEntityExtractor() *EntityExtractor {
	return &EntityExtractor{
		families: []entityFamily{
			{
				typ:        model.EntityMoney,
				confidence: 0.9,
				patterns:   moneyPatterns,
				normalize:  normalizeMoney,
			},
			{
				typ:        model.EntityDate,
				confidence: 0.8,
				patterns:   datePatterns,
				normalize:  func(m []string) string { return m[1] }, // accepted as written
			},
			{
				typ:        model.EntityProtocol,
				confidence: 0.85,
				patterns:   protocolPatterns,
				normalize:  func(m []string) string { return separatorStrip.Replace(m[1]) },
			},
			{
				typ:        model.EntityDocument,
				confidence: 0.85,
				patterns:   documentPatterns,
				normalize:  func(m []string) string { return separatorStrip.Replace(m[1]) },
			},
		},
	}
}

// Extract returns all entities found in normalized text, at most one per
// family. Returned entities are fully built and never mutated afterwards.
func (e *EntityExtractor) Extract(normalized string) []model.ExtractedEntity {
	var out []model.ExtractedEntity
	for _, fam := range e.families {
		for _, re := range fam.patterns {
			loc := re.FindStringSubmatchIndex(normalized)
			if loc == nil {
				continue
			}
			match := matchGroups(normalized, loc)
			out = append(out, model.ExtractedEntity{
				Type:            fam.typ,
				RawValue:        match[0],
				NormalizedValue: fam.normalize(match),
				Confidence:      fam.confidence,
				ContextSnippet:  snippet(normalized, loc[0], loc[1]),
				SemanticWeight:  1.0,
				Relationships:   map[string]float64{},
			})
			break // first matching pattern wins for this family
		}
	}
	return out
}

func matchGroups(s string, loc []int) []string {
	groups := make([]string, 0, len(loc)/2)
	for i := 0; i < len(loc); i += 2 {
		if loc[i] < 0 {
			groups = append(groups, "")
			continue
		}
		groups = append(groups, s[loc[i]:loc[i+1]])
	}
	return groups
}

// snippet returns up to 20 chars of context on each side of a match.
func snippet(s string, start, end int) string {
	from := start - 20
	if from < 0 {
		from = 0
	}
	to := end + 20
	if to > len(s) {
		to = len(s)
	}
	return s[from:to]
}

// normalizeMoney converts "1.234,56" style amounts to a canonical decimal
// string with two fraction digits, e.g. "1234.56".
func normalizeMoney(match []string) string {
	v := strings.ReplaceAll(match[1], ".", "")
	v = strings.ReplaceAll(v, ",", ".")
	dot := strings.IndexByte(v, '.')
	switch {
	case dot < 0:
		return v + ".00"
	case len(v)-dot-1 == 1:
		return v + "0"
	default:
		return v
	}
}
