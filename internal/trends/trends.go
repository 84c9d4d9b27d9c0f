// Package trends computes summary statistics over diary entries.
package trends

import (
	"math"
	"sort"
	"strings"

	"github.com/pbaille/skincare/internal/domain"
	"github.com/pbaille/skincare/internal/normalize"
)

const (
	// TopN is how many symptoms TopSymptoms keeps.
	TopN = 5
	// RecentN is how many entries Recent keeps.
	RecentN = 5
)

// symptomSplitter leaves out ';' and '・', which appear inside free-text
// symptom descriptions.
var symptomSplitter = normalize.New(',', '/', '\n', '\r', '，', '、', '／')

// SymptomCount is one row of the symptom frequency table.
type SymptomCount struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// Point is one dated sample for charting.
type Point struct {
	Date   domain.Date `json:"date"`
	Sleep  *float64    `json:"sleep,omitempty"`
	Stress *float64    `json:"stress,omitempty"`
}

// Summary is the aggregate over a set of diary entries. Nil averages mean
// no entry carried that field.
type Summary struct {
	Count         int                 `json:"count"`
	AvgSleep      *float64            `json:"avg_sleep"`
	AvgStress     *float64            `json:"avg_stress"`
	SymptomCounts map[string]int      `json:"symptom_counts"`
	TopSymptoms   []SymptomCount      `json:"top_symptoms"`
	Recent        []domain.DiaryEntry `json:"recent"`
	Series        []Point             `json:"series"`
}

type options struct {
	dedupPerEntry bool
}

// Option configures Summarize.
type Option func(*options)

// WithPerEntryDedup counts a symptom at most once per entry.
func WithPerEntryDedup() Option {
	return func(o *options) { o.dedupPerEntry = true }
}

// Summarize aggregates entries. Zero entries is a valid input and yields a
// summary with no data in every field.
func Summarize(entries []domain.DiaryEntry, opts ...Option) Summary {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	sum := Summary{
		Count:         len(entries),
		SymptomCounts: map[string]int{},
		TopSymptoms:   []SymptomCount{},
		Recent:        []domain.DiaryEntry{},
		Series:        []Point{},
	}
	if len(entries) == 0 {
		return sum
	}

	var sleeps, stresses []float64
	var order []string

	for _, e := range entries {
		if e.SleepHours != nil && !math.IsNaN(*e.SleepHours) && !math.IsInf(*e.SleepHours, 0) {
			sleeps = append(sleeps, *e.SleepHours)
		}
		if e.StressLevel != nil {
			stresses = append(stresses, float64(*e.StressLevel))
		}

		counted := map[string]bool{}
		for _, label := range SymptomLabels(e.Symptoms) {
			if o.dedupPerEntry && counted[label] {
				continue
			}
			counted[label] = true
			if _, ok := sum.SymptomCounts[label]; !ok {
				order = append(order, label)
			}
			sum.SymptomCounts[label]++
		}

		if !e.Date.IsZero() {
			sum.Series = append(sum.Series, point(e))
		}
	}

	sum.AvgSleep = mean(sleeps)
	sum.AvgStress = mean(stresses)
	sum.TopSymptoms = top(sum.SymptomCounts, order, TopN)

	sorted := append([]domain.DiaryEntry(nil), entries...)
	domain.SortEntries(sorted)
	sum.Recent = sorted[:min(RecentN, len(sorted))]

	sort.SliceStable(sum.Series, func(i, j int) bool {
		return sum.Series[i].Date.Before(sum.Series[j].Date.Time)
	})
	return sum
}

// SymptomLabels splits each symptom field on list separators and returns
// the trimmed, non-empty labels in order. Labels keep their casing apart
// from surrounding whitespace.
func SymptomLabels(fields []string) []string {
	var out []string
	for _, f := range fields {
		for _, tok := range symptomSplitter.Tokens(f) {
			out = append(out, strings.TrimSpace(tok.Original))
		}
	}
	return out
}

func point(e domain.DiaryEntry) Point {
	p := Point{Date: e.Date}
	if e.SleepHours != nil {
		v := *e.SleepHours
		p.Sleep = &v
	}
	if e.StressLevel != nil {
		v := float64(*e.StressLevel)
		p.Stress = &v
	}
	return p
}

func mean(values []float64) *float64 {
	if len(values) == 0 {
		return nil
	}
	total := 0.0
	for _, v := range values {
		total += v
	}
	avg := math.Round(total/float64(len(values))*100) / 100
	return &avg
}

// top ranks labels by count, ties broken by first appearance.
func top(counts map[string]int, order []string, n int) []SymptomCount {
	rows := make([]SymptomCount, 0, len(order))
	for _, label := range order {
		rows = append(rows, SymptomCount{Label: label, Count: counts[label]})
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Count > rows[j].Count
	})
	return rows[:min(n, len(rows))]
}
