// Package advice holds the symptom care templates and maps free-text
// symptom words to the symptoms that have a template.
package advice

import (
	"fmt"
	"sort"
	"strings"
	"unicode"

	"github.com/pbaille/skincare/internal/domain"
	"github.com/pbaille/skincare/internal/normalize"
)

// Symptoms lists the concerns that have a template, in display order.
var Symptoms = []domain.Concern{
	domain.ConcernDryness,
	domain.ConcernRedness,
	domain.ConcernOiliness,
}

// Template is a care template. Every string is a label key.
type Template struct {
	Symptom   domain.Concern `json:"symptom"`
	Label     string         `json:"label"`
	AM        []string       `json:"am"`
	PM        []string       `json:"pm"`
	Avoid     []string       `json:"avoid"`
	SeeDoctor []string       `json:"see_doctor"`
}

// Sections returns the template's key lists by section name.
func (t Template) Sections() map[string][]string {
	return map[string][]string{
		"am":         t.AM,
		"pm":         t.PM,
		"avoid":      t.Avoid,
		"see_doctor": t.SeeDoctor,
	}
}

var sectionSizes = map[string]int{"am": 3, "pm": 3, "avoid": 3, "see_doctor": 1}

// Lookup returns the template for symptom.
func Lookup(symptom domain.Concern) (Template, bool) {
	for _, s := range Symptoms {
		if s == symptom {
			return build(s), true
		}
	}
	return Template{}, false
}

func build(s domain.Concern) Template {
	keys := func(section string) []string {
		out := make([]string, sectionSizes[section])
		for i := range out {
			out[i] = fmt.Sprintf("advice.%s.%s.%d", s, section, i+1)
		}
		return out
	}
	return Template{
		Symptom:   s,
		Label:     "concern." + string(s),
		AM:        keys("am"),
		PM:        keys("pm"),
		Avoid:     keys("avoid"),
		SeeDoctor: keys("see_doctor"),
	}
}

// aliases maps words people write in diaries to the symptom they describe.
var aliases = map[domain.Concern][]string{
	domain.ConcernDryness:  {"dryness", "dry", "tight", "flaking", "peeling", "乾燥", "つっぱり", "皮むけ"},
	domain.ConcernRedness:  {"redness", "red", "stinging", "itch", "itchy", "irritation", "赤み", "ヒリつき", "ひりつき", "かゆみ"},
	domain.ConcernOiliness: {"oiliness", "oily", "shine", "greasy", "ベタつき", "てかり"},
}

// SymptomsFromText returns the template symptoms mentioned in text, in
// display order.
func SymptomsFromText(text string) []domain.Concern {
	tt := newTermText(text)
	var found []domain.Concern
	for _, s := range Symptoms {
		for _, a := range aliases[s] {
			if tt.contains(a) {
				found = append(found, s)
				break
			}
		}
	}
	return found
}

// termText is folded text prepared for alias matching.
type termText struct {
	folded string
	words  string // ASCII words, space separated and padded
}

func newTermText(text string) termText {
	folded := normalize.Default.Fold(text)
	words := strings.FieldsFunc(folded, func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9')
	})
	return termText{folded: folded, words: " " + strings.Join(words, " ") + " "}
}

// contains reports whether term occurs in the text. ASCII terms match
// whole words only, so "red" is not found in "tired".
func (t termText) contains(term string) bool {
	if strings.IndexFunc(term, func(r rune) bool { return r > unicode.MaxASCII }) >= 0 {
		return strings.Contains(t.folded, term)
	}
	return strings.Contains(t.words, " "+term+" ")
}

// RecentSymptoms ranks the template symptoms over the first n entries of
// the diary ordering. Each entry counts once per symptom. Symptoms never
// seen are left out.
func RecentSymptoms(entries []domain.DiaryEntry, n int) []domain.Concern {
	sorted := append([]domain.DiaryEntry(nil), entries...)
	domain.SortEntries(sorted)
	sorted = sorted[:min(max(n, 0), len(sorted))]

	counts := map[domain.Concern]int{}
	for _, e := range sorted {
		for _, s := range SymptomsFromText(strings.Join(e.Symptoms, " ")) {
			counts[s]++
		}
	}

	var out []domain.Concern
	for _, s := range Symptoms {
		if counts[s] > 0 {
			out = append(out, s)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return counts[out[i]] > counts[out[j]]
	})
	return out
}
