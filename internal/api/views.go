package api

import (
	"github.com/pbaille/skincare/internal/advice"
	"github.com/pbaille/skincare/internal/classifier"
	"github.com/pbaille/skincare/internal/domain"
	"github.com/pbaille/skincare/internal/locale"
	"github.com/pbaille/skincare/internal/recommend"
	"github.com/pbaille/skincare/internal/routine"
)

// Responses carry both the language-agnostic keys and their labels in the
// requested language.

// Labeled pairs a label key with its text.
type Labeled struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

func labeled(t *locale.Table, lang string, keys []string) []Labeled {
	out := make([]Labeled, len(keys))
	for i, k := range keys {
		out[i] = Labeled{Key: k, Label: t.LabelFor(k, lang)}
	}
	return out
}

// CategoryView is one ingredient category in a check response.
type CategoryView struct {
	Category domain.Category `json:"category"`
	Label    string          `json:"label"`
	Matches  []string        `json:"matches"`
}

// CheckResponse is the response for an ingredient check
type CheckResponse struct {
	Lang            string         `json:"lang"`
	KeywordsVersion string         `json:"keywords_version"`
	Source          string         `json:"source,omitempty"`
	Tokens          []string       `json:"tokens"`
	Categories      []CategoryView `json:"categories"`
	Warnings        []Labeled      `json:"warnings"`
	AllergyMatches  []string       `json:"allergy_matches,omitempty"`
	Notes           []Labeled      `json:"notes"`
}

func checkView(t *locale.Table, lang, version string, res classifier.Result) CheckResponse {
	resp := CheckResponse{
		Lang:            lang,
		KeywordsVersion: version,
		Tokens:          res.Tokens,
		AllergyMatches:  res.AllergyMatches,
		Notes:           labeled(t, lang, res.Notes),
	}
	for _, cat := range domain.AllCategories {
		resp.Categories = append(resp.Categories, CategoryView{
			Category: cat,
			Label:    t.LabelFor("category."+cat.String(), lang),
			Matches:  res.Categories[cat],
		})
	}
	warnings := make([]string, len(res.Warnings))
	for i, w := range res.Warnings {
		warnings[i] = "warning." + w.String()
	}
	resp.Warnings = labeled(t, lang, warnings)
	return resp
}

// StepView is a routine step with its rendered text.
type StepView struct {
	domain.Step
	TitleLabel string `json:"title_label"`
	Text       string `json:"text"`
}

// RoutineResponse is the response for a generated routine
type RoutineResponse struct {
	Lang     string     `json:"lang"`
	Morning  []StepView `json:"morning"`
	Evening  []StepView `json:"evening"`
	AMBudget int        `json:"am_budget"`
	PMBudget int        `json:"pm_budget"`
	AMTotal  int        `json:"am_total"`
	PMTotal  int        `json:"pm_total"`
	Cautions []Labeled  `json:"cautions"`
}

func stepViews(t *locale.Table, lang string, steps []domain.Step) []StepView {
	out := make([]StepView, len(steps))
	for i, st := range steps {
		out[i] = StepView{
			Step:       st,
			TitleLabel: t.LabelFor("step."+st.Title.String(), lang),
			Text:       t.Render(st, lang),
		}
	}
	return out
}

func routineView(t *locale.Table, lang string, r routine.Routine) RoutineResponse {
	return RoutineResponse{
		Lang:     lang,
		Morning:  stepViews(t, lang, r.Morning),
		Evening:  stepViews(t, lang, r.Evening),
		AMBudget: r.AMBudget,
		PMBudget: r.PMBudget,
		AMTotal:  r.TotalMinutes(routine.Morning),
		PMTotal:  r.TotalMinutes(routine.Evening),
		Cautions: labeled(t, lang, r.Cautions),
	}
}

// ProductView is a catalog product with display fields resolved.
type ProductView struct {
	domain.Product
	DisplayName        string `json:"display_name"`
	DisplayDescription string `json:"display_description,omitempty"`
	TypeLabel          string `json:"type_label"`
	FragranceLabel     string `json:"fragrance_label"`
	MonthlyCost        int    `json:"monthly_cost"`
}

func productView(t *locale.Table, lang string, p domain.Product) ProductView {
	return ProductView{
		Product:            p,
		DisplayName:        p.NameFor(lang, t.Fallback),
		DisplayDescription: p.DescriptionFor(lang, t.Fallback),
		TypeLabel:          t.LabelFor("product_type."+p.Type.String(), lang),
		FragranceLabel:     t.LabelFor("scent."+p.Fragrance.String(), lang),
		MonthlyCost:        p.MonthlyCost(),
	}
}

// PickView is a recommended product.
type PickView struct {
	ProductView
	Score     float64             `json:"score"`
	Breakdown recommend.Breakdown `json:"breakdown"`
}

// RecommendResponse is the response for a recommendation request
type RecommendResponse struct {
	Lang      string     `json:"lang"`
	Picks     []PickView `json:"picks"`
	TotalTop4 int        `json:"total_top4"`
	Message   string     `json:"message,omitempty"`
}

func recommendView(t *locale.Table, lang string, picks []recommend.Scored) RecommendResponse {
	resp := RecommendResponse{
		Lang:      lang,
		Picks:     make([]PickView, len(picks)),
		TotalTop4: recommend.TotalPrice(picks, 4),
	}
	for i, p := range picks {
		resp.Picks[i] = PickView{
			ProductView: productView(t, lang, p.Product),
			Score:       p.Score,
			Breakdown:   p.Breakdown,
		}
	}
	if len(picks) == 0 {
		resp.Message = t.LabelFor("ui.empty_result", lang)
	}
	return resp
}

// SectionView is one part of a care template.
type SectionView struct {
	Section string    `json:"section"`
	Label   string    `json:"label"`
	Items   []Labeled `json:"items"`
}

// TemplateView is a rendered care template.
type TemplateView struct {
	Symptom  domain.Concern `json:"symptom"`
	Label    string         `json:"label"`
	Sections []SectionView  `json:"sections"`
}

var templateSections = []string{"am", "pm", "avoid", "see_doctor"}

func templateView(t *locale.Table, lang string, tpl advice.Template) TemplateView {
	v := TemplateView{Symptom: tpl.Symptom, Label: t.LabelFor(tpl.Label, lang)}
	sections := tpl.Sections()
	for _, name := range templateSections {
		v.Sections = append(v.Sections, SectionView{
			Section: name,
			Label:   t.LabelFor("section."+name, lang),
			Items:   labeled(t, lang, sections[name]),
		})
	}
	return v
}
