package locale

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pbaille/skincare/internal/domain"
	"github.com/pbaille/skincare/internal/routine"
)

func TestDefault_LanguagesShareKeys(t *testing.T) {
	t.Parallel()

	table := Default()
	assert.Equal(t, "en", table.Fallback)
	assert.Equal(t, []string{"en", "ja"}, table.Languages())

	for key := range table.Labels["en"] {
		assert.Contains(t, table.Labels["ja"], key)
	}
	for key := range table.Labels["ja"] {
		assert.Contains(t, table.Labels["en"], key)
	}
}

func TestDefault_CoversEngineKeys(t *testing.T) {
	t.Parallel()

	table := Default()
	var keys []string
	for _, c := range domain.AllCategories {
		keys = append(keys, "category."+c.String())
	}
	for _, c := range domain.AllConcerns {
		keys = append(keys, "concern."+c.String())
	}
	for _, w := range []domain.WarningKind{
		domain.WarnPatchTest, domain.WarnDrying, domain.WarnMultipleActives,
		domain.WarnExfoliant, domain.WarnAllergyMatch,
	} {
		keys = append(keys, "warning."+w.String())
	}

	profiles := []domain.Profile{
		domain.DefaultProfile(),
		{SkinType: domain.SkinSensitive, Concerns: []domain.Concern{domain.ConcernAcne, domain.ConcernDryness}, AMMinutes: 1, PMMinutes: 20},
		{SkinType: domain.SkinOily, AMMinutes: 10, PMMinutes: 2},
	}
	for _, p := range profiles {
		r := routine.Generate(p)
		keys = append(keys, r.Cautions...)
		for _, s := range append(r.Morning, r.Evening...) {
			keys = append(keys, s.Description, "step."+s.Title.String())
			keys = append(keys, s.Suffixes...)
		}
	}

	for _, lang := range table.Languages() {
		for _, k := range keys {
			assert.NotEqual(t, k, table.LabelFor(k, lang), "%s missing in %s", k, lang)
		}
	}
}

func TestLabelFor(t *testing.T) {
	t.Parallel()

	table, err := Parse([]byte(`
fallback: en
labels:
  en:
    a: A
    b: B
  ja:
    a: エー
`))
	require.NoError(t, err)

	tests := []struct {
		key, lang, want string
	}{
		{"a", "ja", "エー"},
		{"a", "ja-JP", "エー"},
		{"b", "ja", "B"},
		{"a", "fr", "A"},
		{"a", "", "A"},
		{"missing", "ja", "missing"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, table.LabelFor(tt.key, tt.lang), "%s/%s", tt.key, tt.lang)
	}

	assert.Equal(t, []string{"エー", "B"}, table.LabelsFor([]string{"a", "b"}, "ja"))
}

func TestResolve(t *testing.T) {
	t.Parallel()

	table := Default()
	assert.Equal(t, "ja", table.Resolve("ja_JP"))
	assert.Equal(t, "en", table.Resolve("en-GB"))
	assert.Equal(t, "en", table.Resolve("ko"))
	assert.Equal(t, "en", table.Resolve(""))

	ja := table.WithFallback("ja")
	assert.Equal(t, "ja", ja.Resolve("ko"))
	assert.Equal(t, "en", table.Fallback)
	assert.Same(t, table, table.WithFallback("ko"))
}

func TestRender(t *testing.T) {
	t.Parallel()

	table := Default()
	step := domain.Step{
		Title:       domain.StepMoisturize,
		Description: "routine.dry.moisturize",
		Suffixes:    []string{routine.SuffixFragranceFree, routine.SuffixQuick},
	}
	got := table.Render(step, "en")
	assert.Equal(t,
		table.LabelFor("routine.dry.moisturize", "en")+" (fragrance-free preferred) (quick)",
		got)
}

func TestParse_Errors(t *testing.T) {
	t.Parallel()

	_, err := Parse([]byte("fallback: de\nlabels:\n  en:\n    a: A\n"))
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = Parse([]byte("labels: [oops"))
	assert.Error(t, err)

	table, err := Parse([]byte("labels:\n  en:\n    a: A\n"))
	require.NoError(t, err)
	assert.Equal(t, "en", table.Fallback)
}

func TestLoad(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "labels.yaml")
	require.NoError(t, os.WriteFile(path, []byte("labels:\n  en:\n    hello: Hello\n"), 0o644))

	table, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "Hello", table.LabelFor("hello", "en"))

	_, err = Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
