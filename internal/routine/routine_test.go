package routine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pbaille/skincare/internal/domain"
)

func titles(steps []domain.Step) []domain.StepTitle {
	out := make([]domain.StepTitle, len(steps))
	for i, s := range steps {
		out[i] = s.Title
	}
	return out
}

func find(steps []domain.Step, t domain.StepTitle) (domain.Step, bool) {
	for _, s := range steps {
		if s.Title == t {
			return s, true
		}
	}
	return domain.Step{}, false
}

func TestGenerate_Default(t *testing.T) {
	t.Parallel()

	r := Generate(domain.DefaultProfile())

	assert.Equal(t, 3, r.AMBudget)
	assert.Equal(t, 10, r.PMBudget)
	assert.Equal(t, []domain.StepTitle{
		domain.StepCleanse, domain.StepTone, domain.StepSerum,
	}, titles(r.Morning))
	assert.Equal(t, []domain.StepTitle{
		domain.StepCleanse, domain.StepTone, domain.StepSerum, domain.StepMoisturize, domain.StepSpot,
	}, titles(r.Evening))
	assert.Equal(t, []string{CautionSeeDermatologist}, r.Cautions)
}

func TestGenerate_ShortMorning(t *testing.T) {
	t.Parallel()

	p := domain.DefaultProfile()
	p.AMMinutes = 2
	r := Generate(p)

	assert.LessOrEqual(t, r.TotalMinutes(Morning), 2)
	assert.Equal(t, []domain.StepTitle{domain.StepCleanse, domain.StepTone}, titles(r.Morning))
	_, hasSerum := find(r.Morning, domain.StepSerum)
	assert.False(t, hasSerum)
}

func TestGenerate_BudgetFloors(t *testing.T) {
	t.Parallel()

	p := domain.DefaultProfile()
	p.AMMinutes = 1
	p.PMMinutes = 1
	r := Generate(p)

	assert.Equal(t, MorningFloor, r.AMBudget)
	assert.Equal(t, EveningFloor, r.PMBudget)
	assert.Equal(t, []domain.StepTitle{domain.StepCleanse, domain.StepTone}, titles(r.Morning))
	assert.Equal(t, []domain.StepTitle{domain.StepCleanse, domain.StepTone}, titles(r.Evening))
}

func TestGenerate_TimeBound(t *testing.T) {
	t.Parallel()

	for am := 0; am <= 12; am++ {
		for pm := 0; pm <= 15; pm++ {
			p := domain.DefaultProfile()
			p.AMMinutes = am
			p.PMMinutes = pm
			p.Concerns = []domain.Concern{domain.ConcernAcne, domain.ConcernDryness}

			r := Generate(p)
			assert.LessOrEqual(t, r.TotalMinutes(Morning), r.AMBudget, "am=%d", am)
			assert.LessOrEqual(t, r.TotalMinutes(Evening), r.PMBudget, "pm=%d", pm)
			require.NotEmpty(t, r.Morning)
			assert.Equal(t, domain.StepCleanse, r.Morning[0].Title)
		}
	}
}

func TestGenerate_Rules(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		profile  func(p *domain.Profile)
		check    func(t *testing.T, r Routine)
		cautions []string
	}{
		{
			name: "redness swaps serum and marks fragrance-free",
			profile: func(p *domain.Profile) {
				p.Concerns = []domain.Concern{domain.ConcernRedness}
			},
			check: func(t *testing.T, r Routine) {
				serum, ok := find(r.Evening, domain.StepSerum)
				require.True(t, ok)
				assert.Equal(t, "routine.sensitive.serum", serum.Description)
				tone, _ := find(r.Evening, domain.StepTone)
				assert.Equal(t, []string{SuffixFragranceFree}, tone.Suffixes)
			},
			cautions: []string{CautionRednessNewItems, CautionRednessFriction, CautionSeeDermatologist},
		},
		{
			name: "fragrance lover keeps plain wording",
			profile: func(p *domain.Profile) {
				p.SkinType = domain.SkinSensitive
				p.Fragrance = domain.FragranceOK
			},
			check: func(t *testing.T, r Routine) {
				tone, _ := find(r.Evening, domain.StepTone)
				assert.Empty(t, tone.Suffixes)
			},
			cautions: []string{CautionRednessNewItems, CautionRednessFriction, CautionSeeDermatologist},
		},
		{
			name: "dryness rewrite clears earlier suffix",
			profile: func(p *domain.Profile) {
				p.SkinType = domain.SkinDry
				p.Concerns = []domain.Concern{domain.ConcernSensitivity}
			},
			check: func(t *testing.T, r Routine) {
				tone, _ := find(r.Evening, domain.StepTone)
				assert.Equal(t, "routine.dry.tone", tone.Description)
				assert.Empty(t, tone.Suffixes)
				moist, _ := find(r.Evening, domain.StepMoisturize)
				assert.Equal(t, "routine.dry.moisturize", moist.Description)
			},
			cautions: []string{
				CautionRednessNewItems, CautionRednessFriction,
				CautionDryingHotWater, CautionDryingLayer, CautionSeeDermatologist,
			},
		},
		{
			name: "oily wins over dry for moisturizer",
			profile: func(p *domain.Profile) {
				p.Concerns = []domain.Concern{domain.ConcernDryness, domain.ConcernOiliness}
			},
			check: func(t *testing.T, r Routine) {
				moist, _ := find(r.Evening, domain.StepMoisturize)
				assert.Equal(t, "routine.oily.moisturize", moist.Description)
			},
			cautions: []string{
				CautionDryingHotWater, CautionDryingLayer, CautionOilKeepMoisture, CautionSeeDermatologist,
			},
		},
		{
			name: "acne makes spot care required",
			profile: func(p *domain.Profile) {
				p.Concerns = []domain.Concern{domain.ConcernAcne}
			},
			check: func(t *testing.T, r Routine) {
				spot, ok := find(r.Evening, domain.StepSpot)
				require.True(t, ok)
				assert.False(t, spot.Optional)
				assert.Equal(t, "routine.acne.spot", spot.Description)
			},
			cautions: []string{CautionSeeDermatologist},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			p := domain.DefaultProfile()
			tt.profile(&p)
			r := Generate(p)
			tt.check(t, r)
			assert.Equal(t, tt.cautions, r.Cautions)
		})
	}
}

func TestGenerate_Deterministic(t *testing.T) {
	t.Parallel()

	p := domain.Profile{
		SkinType:  domain.SkinCombination,
		Concerns:  []domain.Concern{domain.ConcernPores, domain.ConcernRedness},
		AMMinutes: 4,
		PMMinutes: 6,
	}
	assert.Equal(t, Generate(p), Generate(p))
}

func TestFit(t *testing.T) {
	t.Parallel()

	steps := []domain.Step{
		{Title: domain.StepCleanse, Minutes: 2},
		{Title: domain.StepSerum, Minutes: 2, Optional: true},
		{Title: domain.StepMoisturize, Minutes: 2},
		{Title: domain.StepSunscreen, Minutes: 1},
	}

	tests := []struct {
		name    string
		budget  int
		titles  []domain.StepTitle
		quick   []domain.StepTitle
		minutes int
	}{
		{
			name:    "everything fits",
			budget:  7,
			titles:  []domain.StepTitle{domain.StepCleanse, domain.StepSerum, domain.StepMoisturize, domain.StepSunscreen},
			minutes: 7,
		},
		{
			name:    "last step dropped",
			budget:  6,
			titles:  []domain.StepTitle{domain.StepCleanse, domain.StepSerum, domain.StepMoisturize},
			minutes: 6,
		},
		{
			name:    "required squeezed",
			budget:  5,
			titles:  []domain.StepTitle{domain.StepCleanse, domain.StepSerum, domain.StepMoisturize},
			quick:   []domain.StepTitle{domain.StepMoisturize},
			minutes: 5,
		},
		{
			name:    "optional dropped",
			budget:  3,
			titles:  []domain.StepTitle{domain.StepCleanse, domain.StepMoisturize},
			quick:   []domain.StepTitle{domain.StepMoisturize},
			minutes: 3,
		},
		{
			name:    "no minute left",
			budget:  2,
			titles:  []domain.StepTitle{domain.StepCleanse},
			minutes: 2,
		},
		{
			name:    "first step squeezed",
			budget:  1,
			titles:  []domain.StepTitle{domain.StepCleanse},
			quick:   []domain.StepTitle{domain.StepCleanse},
			minutes: 1,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := Fit(steps, tt.budget)
			assert.Equal(t, tt.titles, titles(got))

			total := 0
			var quick []domain.StepTitle
			for _, s := range got {
				total += s.Minutes
				if len(s.Suffixes) > 0 && s.Suffixes[len(s.Suffixes)-1] == SuffixQuick {
					quick = append(quick, s.Title)
				}
			}
			assert.Equal(t, tt.minutes, total)
			assert.Equal(t, tt.quick, quick)
		})
	}
}

func TestFit_DoesNotMutateInput(t *testing.T) {
	t.Parallel()

	steps := []domain.Step{
		{Title: domain.StepCleanse, Minutes: 3, Suffixes: []string{"x"}},
	}
	_ = Fit(steps, 1)
	assert.Equal(t, 3, steps[0].Minutes)
	assert.Equal(t, []string{"x"}, steps[0].Suffixes)
}
