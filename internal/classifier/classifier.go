// Package classifier matches ingredient tokens against category keyword
// sets and derives cautions from the matches.
package classifier

import (
	"strings"

	"github.com/pbaille/skincare/internal/domain"
	"github.com/pbaille/skincare/internal/normalize"
)

// Note keys appended to every result.
const (
	NoteRuleBased = "note.rule_based"
	NoteNoMatch   = "note.no_match"
)

// Result holds the classification output.
type Result struct {
	Tokens         []string                     `json:"tokens"`
	Originals      []string                     `json:"originals"`
	Categories     map[domain.Category][]string `json:"categories"`
	Warnings       []domain.WarningKind         `json:"warnings"`
	AllergyMatches []string                     `json:"allergy_matches,omitempty"`
	Notes          []string                     `json:"notes"`
}

// Detected returns the categories with at least one match, in display order.
func (r Result) Detected() []domain.Category {
	var out []domain.Category
	for _, cat := range domain.AllCategories {
		if len(r.Categories[cat]) > 0 {
			out = append(out, cat)
		}
	}
	return out
}

// HasWarning reports whether w fired.
func (r Result) HasWarning(w domain.WarningKind) bool {
	for _, have := range r.Warnings {
		if have == w {
			return true
		}
	}
	return false
}

// Classifier handles rule-based ingredient classification.
type Classifier struct {
	table      KeywordTable
	normalizer *normalize.Normalizer
	allergies  []string
}

// Option configures a Classifier.
type Option func(*Classifier)

// WithNormalizer swaps the separator set used by ClassifyText.
func WithNormalizer(n *normalize.Normalizer) Option {
	return func(c *Classifier) { c.normalizer = n }
}

// WithAllergies registers user allergy keywords. A token containing one of
// them raises WarnAllergyMatch.
func WithAllergies(allergies []string) Option {
	return func(c *Classifier) {
		c.allergies = nil
		for _, a := range allergies {
			if a = strings.ToLower(strings.TrimSpace(a)); a != "" {
				c.allergies = append(c.allergies, a)
			}
		}
	}
}

// New creates a new Classifier over table.
func New(table KeywordTable, opts ...Option) *Classifier {
	c := &Classifier{
		table:      NewKeywordTable(table.Version, table.Categories),
		normalizer: normalize.Default,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Version returns the keyword table version in use.
func (c *Classifier) Version() string {
	return c.table.Version
}

// ClassifyText normalizes free text and classifies the resulting tokens.
func (c *Classifier) ClassifyText(text string) Result {
	return c.Classify(c.normalizer.Tokens(text))
}

// Classify matches every token against every category. A token matches a
// category when it contains any of the category's keywords.
func (c *Classifier) Classify(tokens []normalize.Token) Result {
	res := Result{
		Tokens:     make([]string, 0, len(tokens)),
		Originals:  make([]string, 0, len(tokens)),
		Categories: make(map[domain.Category][]string, len(domain.AllCategories)),
	}
	for _, cat := range domain.AllCategories {
		res.Categories[cat] = []string{}
	}

	seen := make(map[domain.Category]map[string]bool, len(domain.AllCategories))
	for _, tok := range tokens {
		res.Tokens = append(res.Tokens, tok.Folded)
		res.Originals = append(res.Originals, tok.Original)

		for _, cat := range domain.AllCategories {
			if !containsAny(tok.Folded, c.table.Categories[cat]) {
				continue
			}
			if seen[cat] == nil {
				seen[cat] = make(map[string]bool)
			}
			if seen[cat][tok.Folded] {
				continue
			}
			seen[cat][tok.Folded] = true
			res.Categories[cat] = append(res.Categories[cat], tok.Folded)
		}

		for _, a := range c.allergies {
			if strings.Contains(tok.Folded, a) && !contains(res.AllergyMatches, a) {
				res.AllergyMatches = append(res.AllergyMatches, a)
			}
		}
	}

	res.Warnings = deriveWarnings(res)

	if len(res.Detected()) == 0 {
		res.Notes = append(res.Notes, NoteNoMatch)
	}
	res.Notes = append(res.Notes, NoteRuleBased)
	return res
}

func deriveWarnings(res Result) []domain.WarningKind {
	warnings := []domain.WarningKind{}
	cats := res.Categories

	if len(cats[domain.CategoryFragrance]) > 0 || len(cats[domain.CategoryAllergen]) > 0 {
		warnings = append(warnings, domain.WarnPatchTest)
	}
	if len(cats[domain.CategoryDryingAlcohol]) > 0 {
		warnings = append(warnings, domain.WarnDrying)
	}
	// Matches are already distinct per category.
	if len(cats[domain.CategoryActive]) >= 2 {
		warnings = append(warnings, domain.WarnMultipleActives)
	}
	if len(cats[domain.CategoryExfoliant]) > 0 {
		warnings = append(warnings, domain.WarnExfoliant)
	}
	if len(res.AllergyMatches) > 0 {
		warnings = append(warnings, domain.WarnAllergyMatch)
	}
	return warnings
}

func containsAny(token string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(token, kw) {
			return true
		}
	}
	return false
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
