package store

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/pbaille/skincare/internal/domain"
)

// journalRow is a line of a journal.jsonl export. Both the agent and the
// web app field names are accepted. Legacy ids are dropped; imported
// entries get fresh ones.
type journalRow struct {
	Date      domain.Date `json:"date"`
	CreatedAt string      `json:"created_at"`
	Symptoms  []string    `json:"symptoms"`
	Sleep     *float64    `json:"sleep_hours"`
	Stress    *int        `json:"stress"`
	Stress15  *int        `json:"stress_level_1to5"`
	StressLvl *int        `json:"stress_level"`
	UsedItems []string    `json:"used_items"`
	Products  []string    `json:"products_used"`
	Memo      *string     `json:"memo"`
	Note      string      `json:"note"`
	Summary   string      `json:"condition_summary"`
}

func (r journalRow) entry() domain.DiaryEntry {
	e := domain.DiaryEntry{
		Date:       r.Date,
		Symptoms:   r.Symptoms,
		SleepHours: r.Sleep,
		UsedItems:  r.UsedItems,
		Note:       r.Note,
	}
	for _, s := range []*int{r.StressLvl, r.Stress15, r.Stress} {
		if s != nil {
			e.StressLevel = s
			break
		}
	}
	if len(e.UsedItems) == 0 {
		e.UsedItems = r.Products
	}
	if e.Note == "" && r.Memo != nil {
		e.Note = *r.Memo
	}
	if e.Note == "" {
		e.Note = r.Summary
	}
	if t, err := time.Parse(time.RFC3339Nano, r.CreatedAt); err == nil {
		e.CreatedAt = t.UTC()
	} else if t, err := time.Parse("2006-01-02T15:04:05.999999", r.CreatedAt); err == nil {
		e.CreatedAt = t.UTC()
	}
	if e.Date.IsZero() && !e.CreatedAt.IsZero() {
		e.Date = domain.NewDate(e.CreatedAt)
	}
	return e
}

// ImportResult counts what ImportJSONL did with each line.
type ImportResult struct {
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
}

// ImportJSONL reads line-delimited journal rows and adds every valid one.
// Blank lines are ignored; malformed or invalid rows are skipped.
func (s *Store) ImportJSONL(ctx context.Context, r io.Reader) (ImportResult, error) {
	var res ImportResult
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)

	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		var row journalRow
		if err := json.Unmarshal([]byte(line), &row); err != nil {
			res.Skipped++
			continue
		}
		e := row.entry()
		if e.Validate() != nil {
			res.Skipped++
			continue
		}
		if _, err := s.AddEntry(ctx, e); err != nil {
			return res, fmt.Errorf("import line %d: %w", res.Imported+res.Skipped+1, err)
		}
		res.Imported++
	}
	if err := sc.Err(); err != nil {
		return res, fmt.Errorf("read journal: %w", err)
	}
	return res, nil
}
