package classifier

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/pbaille/skincare/internal/domain"
)

//go:embed keywords.yaml
var defaultKeywords []byte

// KeywordTable maps each ingredient category to the keywords that select it.
type KeywordTable struct {
	Version    string                       `yaml:"version" json:"version"`
	Categories map[domain.Category][]string `yaml:"categories" json:"categories"`
}

// DefaultKeywordTable returns the canonical table shipped with the binary.
func DefaultKeywordTable() KeywordTable {
	table, err := ParseKeywordTable(defaultKeywords)
	if err != nil {
		panic(fmt.Sprintf("classifier: embedded keyword table: %v", err))
	}
	return table
}

// LoadKeywordTable reads a replacement table from a YAML file.
func LoadKeywordTable(path string) (KeywordTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return KeywordTable{}, fmt.Errorf("read keyword table: %w", err)
	}
	table, err := ParseKeywordTable(raw)
	if err != nil {
		return KeywordTable{}, fmt.Errorf("keyword table %s: %w", path, err)
	}
	return table, nil
}

// ParseKeywordTable decodes a YAML table. Unknown categories are rejected
// and keywords are lowercased and trimmed.
func ParseKeywordTable(raw []byte) (KeywordTable, error) {
	var table KeywordTable
	if err := yaml.Unmarshal(raw, &table); err != nil {
		return KeywordTable{}, fmt.Errorf("parse yaml: %w", err)
	}
	for cat := range table.Categories {
		if !cat.IsValid() {
			return KeywordTable{}, domain.NewValidationError("categories", fmt.Sprintf("unknown category %q", cat))
		}
	}
	return NewKeywordTable(table.Version, table.Categories), nil
}

// NewKeywordTable builds a table from in-memory keyword sets. Categories
// missing from sets get an empty keyword list.
func NewKeywordTable(version string, sets map[domain.Category][]string) KeywordTable {
	table := KeywordTable{
		Version:    version,
		Categories: make(map[domain.Category][]string, len(domain.AllCategories)),
	}
	for _, cat := range domain.AllCategories {
		var keywords []string
		for _, kw := range sets[cat] {
			kw = strings.ToLower(strings.TrimSpace(kw))
			if kw != "" {
				keywords = append(keywords, kw)
			}
		}
		table.Categories[cat] = keywords
	}
	return table
}
