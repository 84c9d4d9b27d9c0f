// Package normalize splits free-text ingredient and symptom input into
// canonical tokens.
package normalize

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/width"
)

// DefaultSeparators covers ASCII list punctuation plus the CJK separators
// that show up in pasted ingredient lists.
var DefaultSeparators = []rune{
	',', ';', '\n', '\r', '/',
	'，', // full-width comma
	'、', // ideographic comma
	'・', // katakana middle dot
	'·', // middle dot
	'；', // full-width semicolon
	'／', // full-width slash
}

// Default is the normalizer used when callers don't configure a locale.
var Default = New(DefaultSeparators...)

// Token is one normalized list item. Original keeps the trimmed display
// casing, Folded is the form used for matching.
type Token struct {
	Original string `json:"original"`
	Folded   string `json:"folded"`
}

// Normalizer splits text on a configurable separator set.
type Normalizer struct {
	seps map[rune]bool
}

// New creates a Normalizer splitting on seps. An empty set falls back to
// DefaultSeparators.
func New(seps ...rune) *Normalizer {
	if len(seps) == 0 {
		seps = DefaultSeparators
	}
	m := make(map[rune]bool, len(seps))
	for _, r := range seps {
		m[r] = true
	}
	return &Normalizer{seps: m}
}

// Tokens splits text and returns every non-empty item in input order.
// Duplicates are kept.
func (n *Normalizer) Tokens(text string) []Token {
	parts := strings.FieldsFunc(text, func(r rune) bool { return n.seps[r] })

	tokens := make([]Token, 0, len(parts))
	for _, p := range parts {
		original := strings.Join(strings.Fields(p), " ")
		if original == "" {
			continue
		}
		tokens = append(tokens, Token{Original: original, Folded: n.Fold(original)})
	}
	return tokens
}

// Normalize returns the folded form of every token.
func (n *Normalizer) Normalize(text string) []string {
	tokens := n.Tokens(text)
	out := make([]string, len(tokens))
	for i, t := range tokens {
		out[i] = t.Folded
	}
	return out
}

// Fold maps a single item to its matching form: full-width ASCII is
// narrowed, half-width kana widened, case folded and whitespace runs
// collapsed to one space.
func (n *Normalizer) Fold(s string) string {
	s = width.Fold.String(s)
	// Casers carry state, so one per call keeps Default safe to share.
	s = cases.Fold().String(s)
	return strings.Join(strings.Fields(s), " ")
}

// Normalize splits text with the default separator set.
func Normalize(text string) []string {
	return Default.Normalize(text)
}

// Join renders tokens back to a comma separated list.
func Join(tokens []string) string {
	return strings.Join(tokens, ", ")
}
