package domain

import (
	"database/sql/driver"
	"fmt"
	"math"
	"sort"
	"time"
)

// DateLayout is the ISO calendar date format used for diary dates.
const DateLayout = "2006-01-02"

// Date is a calendar date without a time of day.
type Date struct {
	time.Time
}

// NewDate truncates t to its calendar date in UTC.
func NewDate(t time.Time) Date {
	y, m, d := t.Date()
	return Date{time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses an ISO date (YYYY-MM-DD).
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return Date{t}, nil
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := string(b)
	if s == "null" || s == `""` {
		*d = Date{}
		return nil
	}
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return fmt.Errorf("date must be a string, got %s", s)
	}
	s = s[1 : len(s)-1]
	// Tolerate full timestamps from older diary files.
	if len(s) > len(DateLayout) {
		s = s[:len(DateLayout)]
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Value stores the date as ISO text so it sorts lexically in SQLite.
func (d Date) Value() (driver.Value, error) {
	return d.String(), nil
}

func (d *Date) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*d = Date{}
		return nil
	case string:
		parsed, err := ParseDate(v)
		if err != nil {
			return err
		}
		*d = parsed
		return nil
	case []byte:
		return d.Scan(string(v))
	case time.Time:
		*d = NewDate(v)
		return nil
	}
	return fmt.Errorf("cannot scan %T into Date", src)
}

// Profile is the user's self-care preference snapshot.
type Profile struct {
	SkinType      SkinType            `json:"skin_type"`
	Concerns      []Concern           `json:"concerns,omitempty"`
	Fragrance     FragrancePreference `json:"fragrance_preference"`
	MonthlyBudget int                 `json:"monthly_budget"`
	AMMinutes     int                 `json:"am_minutes"`
	PMMinutes     int                 `json:"pm_minutes"`
	Allergies     []string            `json:"allergies,omitempty"`
}

// DefaultProfile is the profile used when nothing is configured.
func DefaultProfile() Profile {
	return Profile{
		SkinType:      SkinUnknown,
		Fragrance:     FragranceUnset,
		MonthlyBudget: 5000,
		AMMinutes:     3,
		PMMinutes:     10,
	}
}

// Normalized returns a copy with unknown enum values folded to their unset
// variant, concerns deduplicated in declaration order, and numeric fields
// clamped to their floors.
func (p Profile) Normalized() Profile {
	out := p
	if !out.SkinType.IsValid() {
		out.SkinType = SkinUnknown
	}
	if !out.Fragrance.IsValid() {
		out.Fragrance = FragranceUnset
	}

	seen := make(map[Concern]bool, len(p.Concerns))
	for _, c := range p.Concerns {
		if c.IsValid() {
			seen[c] = true
		}
	}
	out.Concerns = nil
	for _, c := range AllConcerns {
		if seen[c] {
			out.Concerns = append(out.Concerns, c)
		}
	}

	out.MonthlyBudget = max(out.MonthlyBudget, 0)
	out.AMMinutes = max(out.AMMinutes, 1)
	out.PMMinutes = max(out.PMMinutes, 1)
	return out
}

// HasConcern reports whether c is among the profile's concerns.
func (p Profile) HasConcern(c Concern) bool {
	for _, have := range p.Concerns {
		if have == c {
			return true
		}
	}
	return false
}

// DiaryEntry is one self-reported daily record. Entries are immutable once
// stored.
type DiaryEntry struct {
	ID          string    `json:"id"`
	Date        Date      `json:"date"`
	Symptoms    []string  `json:"symptoms,omitempty"`
	SleepHours  *float64  `json:"sleep_hours,omitempty"`
	StressLevel *int      `json:"stress_level,omitempty"`
	UsedItems   []string  `json:"used_items,omitempty"`
	Note        string    `json:"note,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Validate checks the field ranges accepted at the store boundary.
func (e DiaryEntry) Validate() error {
	var errs []FieldError
	if e.Date.IsZero() {
		errs = append(errs, FieldError{Field: "date", Message: "required"})
	}
	if e.SleepHours != nil && (*e.SleepHours < 0 || math.IsNaN(*e.SleepHours) || math.IsInf(*e.SleepHours, 0)) {
		errs = append(errs, FieldError{Field: "sleep_hours", Message: "must be a finite number >= 0"})
	}
	if e.StressLevel != nil && (*e.StressLevel < 1 || *e.StressLevel > 5) {
		errs = append(errs, FieldError{Field: "stress_level", Message: "must be between 1 and 5"})
	}
	if len(errs) > 0 {
		return NewValidationErrors(errs)
	}
	return nil
}

// SortEntries orders entries newest first: date descending, then created_at
// descending. The sort is stable.
func SortEntries(entries []DiaryEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		if !entries[i].Date.Equal(entries[j].Date.Time) {
			return entries[i].Date.After(entries[j].Date.Time)
		}
		return entries[i].CreatedAt.After(entries[j].CreatedAt)
	})
}

// Product is a catalog entry.
type Product struct {
	ID          string            `json:"id"`
	Name        map[string]string `json:"name"`
	Description map[string]string `json:"description,omitempty"`
	Type        ProductType       `json:"type"`
	Price       int               `json:"price"`
	Fragrance   ProductFragrance  `json:"fragrance"`
	SkinTypes   []SkinType        `json:"skin_types,omitempty"`
	Concerns    []Concern         `json:"concerns,omitempty"`
	Tags        []string          `json:"tags,omitempty"`
	MonthsLast  float64           `json:"months_last,omitempty"`
}

// NameFor picks the product name in lang, then fallback, then any value.
func (p Product) NameFor(lang, fallback string) string {
	if s := pickLang(p.Name, lang, fallback); s != "" {
		return s
	}
	return p.ID
}

// DescriptionFor picks the description in lang, then fallback.
func (p Product) DescriptionFor(lang, fallback string) string {
	if s, ok := p.Description[lang]; ok && s != "" {
		return s
	}
	return p.Description[fallback]
}

// SuitsSkin reports whether the product lists st among its skin types.
func (p Product) SuitsSkin(st SkinType) bool {
	for _, s := range p.SkinTypes {
		if s == st {
			return true
		}
	}
	return false
}

// MonthlyCost estimates the monthly spend from price and how long one unit
// lasts. Missing or non-positive durations count as one month.
func (p Product) MonthlyCost() int {
	months := p.MonthsLast
	if months <= 0 {
		months = 1
	}
	return int(math.Round(float64(p.Price) / months))
}

func pickLang(m map[string]string, lang, fallback string) string {
	if s := m[lang]; s != "" {
		return s
	}
	if s := m[fallback]; s != "" {
		return s
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if m[k] != "" {
			return m[k]
		}
	}
	return ""
}

// Step is one unit of a care routine. Description and Suffixes are label
// keys resolved by the locale collaborator.
type Step struct {
	Title       StepTitle `json:"title"`
	Description string    `json:"description"`
	Suffixes    []string  `json:"suffixes,omitempty"`
	Minutes     int       `json:"minutes"`
	Optional    bool      `json:"optional"`
}
