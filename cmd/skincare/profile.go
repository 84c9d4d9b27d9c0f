package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pbaille/skincare/internal/domain"
)

// profileFlags are the profile overrides shared by routine and recommend.
// Flags left unset keep the configured profile.
type profileFlags struct {
	skin      string
	concerns  []string
	fragrance string
	budget    int
	am        int
	pm        int
	allergies []string
}

func (f *profileFlags) register(cmd *cobra.Command) {
	d := domain.DefaultProfile()
	cmd.Flags().StringVar(&f.skin, "skin", "", "skin type (normal, dry, oily, combination, sensitive)")
	cmd.Flags().StringSliceVar(&f.concerns, "concerns", nil, "concerns (dryness, redness, oiliness, pores, dullness, acne, sensitivity)")
	cmd.Flags().StringVar(&f.fragrance, "fragrance", "", "fragrance preference (fragrance_free, light_fragrance, fragrance_ok)")
	cmd.Flags().IntVar(&f.budget, "budget", d.MonthlyBudget, "monthly budget")
	cmd.Flags().IntVar(&f.am, "am", d.AMMinutes, "morning minutes")
	cmd.Flags().IntVar(&f.pm, "pm", d.PMMinutes, "evening minutes")
	cmd.Flags().StringSliceVar(&f.allergies, "allergies", nil, "allergy keywords")
}

func (f *profileFlags) profile(cmd *cobra.Command) domain.Profile {
	p := configProfile()
	flags := cmd.Flags()

	if flags.Changed("skin") {
		p.SkinType = domain.ParseSkinType(f.skin)
		if p.SkinType == domain.SkinUnknown {
			logger.Warn("unknown skin type, using unknown", zap.String("skin", f.skin))
		}
	}
	if flags.Changed("concerns") {
		p.Concerns = domain.ParseConcerns(f.concerns)
	}
	if flags.Changed("fragrance") {
		p.Fragrance = domain.ParseFragrancePreference(f.fragrance)
	}
	if flags.Changed("budget") {
		p.MonthlyBudget = f.budget
	}
	if flags.Changed("am") {
		p.AMMinutes = f.am
	}
	if flags.Changed("pm") {
		p.PMMinutes = f.pm
	}
	if flags.Changed("allergies") {
		p.Allergies = f.allergies
	}
	return p.Normalized()
}

// configProfile builds the default profile from configuration.
func configProfile() domain.Profile {
	pc := cfg.Profile
	p := domain.Profile{
		SkinType:      domain.ParseSkinType(pc.SkinType),
		Concerns:      domain.ParseConcerns(pc.Concerns),
		Fragrance:     domain.ParseFragrancePreference(pc.Fragrance),
		MonthlyBudget: pc.MonthlyBudget,
		AMMinutes:     pc.AMMinutes,
		PMMinutes:     pc.PMMinutes,
		Allergies:     pc.Allergies,
	}
	return p.Normalized()
}
