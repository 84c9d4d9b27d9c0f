// Package locale resolves label keys emitted by the rule engine into
// display text.
package locale

import (
	_ "embed"
	"fmt"
	"os"
	"sort"
	"strings"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"github.com/pbaille/skincare/internal/domain"
)

//go:embed labels.yaml
var defaultLabels []byte

// Table holds label text per language.
type Table struct {
	Fallback string                       `yaml:"fallback"`
	Labels   map[string]map[string]string `yaml:"labels"`
}

// Default returns the label table shipped with the binary.
func Default() *Table {
	t, err := Parse(defaultLabels)
	if err != nil {
		panic(fmt.Sprintf("locale: embedded labels: %v", err))
	}
	return t
}

// Load reads a label table from a YAML file.
func Load(path string) (*Table, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read labels: %w", err)
	}
	t, err := Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("labels %s: %w", path, err)
	}
	return t, nil
}

// Parse decodes a YAML label table. The fallback language must be present.
func Parse(raw []byte) (*Table, error) {
	var t Table
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	if t.Fallback == "" {
		t.Fallback = "en"
	}
	if _, ok := t.Labels[t.Fallback]; !ok {
		return nil, domain.NewValidationError("fallback", fmt.Sprintf("language %q has no labels", t.Fallback))
	}
	return &t, nil
}

// WithFallback returns a copy using lang as the fallback language when the
// table knows it.
func (t *Table) WithFallback(lang string) *Table {
	lang = Canonical(lang)
	if !t.Supports(lang) {
		return t
	}
	cp := *t
	cp.Fallback = lang
	return &cp
}

// Languages lists the languages with labels, sorted.
func (t *Table) Languages() []string {
	out := make([]string, 0, len(t.Labels))
	for lang := range t.Labels {
		out = append(out, lang)
	}
	sort.Strings(out)
	return out
}

// Supports reports whether lang has its own labels.
func (t *Table) Supports(lang string) bool {
	_, ok := t.Labels[Canonical(lang)]
	return ok
}

// Resolve maps a requested language to one the table has, or the fallback.
func (t *Table) Resolve(lang string) string {
	if c := Canonical(lang); t.Supports(c) {
		return c
	}
	return t.Fallback
}

// LabelFor returns the text for key in lang, then in the fallback
// language, then the key itself.
func (t *Table) LabelFor(key, lang string) string {
	if s, ok := t.Labels[Canonical(lang)][key]; ok {
		return s
	}
	if s, ok := t.Labels[t.Fallback][key]; ok {
		return s
	}
	return key
}

// LabelsFor resolves every key in keys.
func (t *Table) LabelsFor(keys []string, lang string) []string {
	out := make([]string, len(keys))
	for i, k := range keys {
		out[i] = t.LabelFor(k, lang)
	}
	return out
}

// Render joins a step's description label with its suffix labels.
func (t *Table) Render(step domain.Step, lang string) string {
	var sb strings.Builder
	sb.WriteString(t.LabelFor(step.Description, lang))
	for _, s := range step.Suffixes {
		sb.WriteString(t.LabelFor(s, lang))
	}
	return sb.String()
}

// Canonical reduces a language tag such as "ja-JP" or "en_US" to its base
// language code. Unparseable input is returned lowercased.
func Canonical(lang string) string {
	lang = strings.TrimSpace(strings.ReplaceAll(lang, "_", "-"))
	if lang == "" {
		return ""
	}
	tag, err := language.Parse(lang)
	if err != nil {
		return strings.ToLower(lang)
	}
	base, _ := tag.Base()
	return base.String()
}
