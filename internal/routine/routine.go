// Package routine builds AM/PM care step sequences from a profile and fits
// them into the profile's time budgets.
package routine

import "github.com/pbaille/skincare/internal/domain"

// Minimum budgets applied regardless of the profile's configured minutes.
const (
	MorningFloor = 2
	EveningFloor = 3
)

// Suffix keys appended to step descriptions.
const (
	SuffixFragranceFree = "routine.suffix.fragrance_free"
	SuffixQuick         = "routine.suffix.quick"
)

// Caution keys, in the order they are emitted.
const (
	CautionRednessNewItems  = "caution.redness.new_items"
	CautionRednessFriction  = "caution.redness.friction"
	CautionDryingHotWater   = "caution.dryness.hot_water"
	CautionDryingLayer      = "caution.dryness.layer"
	CautionOilKeepMoisture  = "caution.oiliness.keep_moisture"
	CautionSeeDermatologist = "caution.see_doctor"
)

// Period selects the morning or evening list.
type Period string

const (
	Morning Period = "am"
	Evening Period = "pm"
)

// Routine is the generated care plan.
type Routine struct {
	Morning  []domain.Step `json:"morning"`
	Evening  []domain.Step `json:"evening"`
	AMBudget int           `json:"am_budget"`
	PMBudget int           `json:"pm_budget"`
	Cautions []string      `json:"cautions"`
}

// Steps returns the list for p.
func (r Routine) Steps(p Period) []domain.Step {
	if p == Evening {
		return r.Evening
	}
	return r.Morning
}

// TotalMinutes sums the minutes of the list for p.
func (r Routine) TotalMinutes(p Period) int {
	total := 0
	for _, s := range r.Steps(p) {
		total += s.Minutes
	}
	return total
}

func baseMorning() []domain.Step {
	return []domain.Step{
		{Title: domain.StepCleanse, Description: "routine.am.cleanse", Minutes: 1},
		{Title: domain.StepTone, Description: "routine.am.tone", Minutes: 1},
		{Title: domain.StepSerum, Description: "routine.am.serum", Minutes: 1, Optional: true},
		{Title: domain.StepMoisturize, Description: "routine.am.moisturize", Minutes: 1},
		{Title: domain.StepSunscreen, Description: "routine.am.sunscreen", Minutes: 1},
	}
}

func baseEvening() []domain.Step {
	return []domain.Step{
		{Title: domain.StepCleanse, Description: "routine.pm.cleanse", Minutes: 2},
		{Title: domain.StepTone, Description: "routine.pm.tone", Minutes: 1},
		{Title: domain.StepSerum, Description: "routine.pm.serum", Minutes: 2},
		{Title: domain.StepMoisturize, Description: "routine.pm.moisturize", Minutes: 2},
		{Title: domain.StepSpot, Description: "routine.pm.spot", Minutes: 1, Optional: true},
	}
}

// Generate builds the routine for profile. The output depends only on the
// profile.
func Generate(profile domain.Profile) Routine {
	p := profile.Normalized()

	am := baseMorning()
	pm := baseEvening()
	both := [][]domain.Step{am, pm}

	if p.HasConcern(domain.ConcernRedness) || p.HasConcern(domain.ConcernSensitivity) || p.SkinType == domain.SkinSensitive {
		for _, steps := range both {
			rewrite(steps, domain.StepSerum, "routine.sensitive.serum")
			if p.Fragrance != domain.FragranceOK {
				appendSuffix(steps, domain.StepTone, SuffixFragranceFree)
				appendSuffix(steps, domain.StepMoisturize, SuffixFragranceFree)
			}
		}
	}

	if p.HasConcern(domain.ConcernDryness) || p.SkinType == domain.SkinDry {
		for _, steps := range both {
			rewrite(steps, domain.StepTone, "routine.dry.tone")
			rewrite(steps, domain.StepMoisturize, "routine.dry.moisturize")
		}
	}

	if p.HasConcern(domain.ConcernOiliness) || p.SkinType == domain.SkinOily {
		for _, steps := range both {
			rewrite(steps, domain.StepMoisturize, "routine.oily.moisturize")
		}
	}

	if p.HasConcern(domain.ConcernAcne) {
		for i := range pm {
			if pm[i].Title == domain.StepSpot {
				pm[i].Optional = false
				pm[i].Description = "routine.acne.spot"
				pm[i].Suffixes = nil
			}
		}
	}

	amBudget := max(MorningFloor, p.AMMinutes)
	pmBudget := max(EveningFloor, p.PMMinutes)

	return Routine{
		Morning:  Fit(am, amBudget),
		Evening:  Fit(pm, pmBudget),
		AMBudget: amBudget,
		PMBudget: pmBudget,
		Cautions: cautions(p),
	}
}

// Fit walks steps in order and keeps those that fit in budget minutes.
// Optional steps that don't fit are dropped; required steps are squeezed
// into a one-minute quick version when there is still a minute left.
func Fit(steps []domain.Step, budget int) []domain.Step {
	total := 0
	fitted := []domain.Step{}

	for _, s := range steps {
		if total+s.Minutes <= budget {
			fitted = append(fitted, s)
			total += s.Minutes
			continue
		}
		if s.Optional || !s.Title.Required() || total+1 > budget {
			continue
		}
		quick := s
		quick.Minutes = 1
		quick.Suffixes = append(append([]string(nil), s.Suffixes...), SuffixQuick)
		fitted = append(fitted, quick)
		total++
	}
	return fitted
}

// rewrite replaces the description of every step titled t. Suffixes added
// by earlier rules belong to the old wording and are dropped with it.
func rewrite(steps []domain.Step, t domain.StepTitle, key string) {
	for i := range steps {
		if steps[i].Title == t {
			steps[i].Description = key
			steps[i].Suffixes = nil
		}
	}
}

func appendSuffix(steps []domain.Step, t domain.StepTitle, key string) {
	for i := range steps {
		if steps[i].Title == t {
			steps[i].Suffixes = append(steps[i].Suffixes, key)
		}
	}
}

func cautions(p domain.Profile) []string {
	var out []string
	if p.HasConcern(domain.ConcernRedness) || p.HasConcern(domain.ConcernSensitivity) || p.SkinType == domain.SkinSensitive {
		out = append(out, CautionRednessNewItems, CautionRednessFriction)
	}
	if p.HasConcern(domain.ConcernDryness) || p.SkinType == domain.SkinDry {
		out = append(out, CautionDryingHotWater, CautionDryingLayer)
	}
	if p.HasConcern(domain.ConcernOiliness) || p.SkinType == domain.SkinOily {
		out = append(out, CautionOilKeepMoisture)
	}
	return append(out, CautionSeeDermatologist)
}
