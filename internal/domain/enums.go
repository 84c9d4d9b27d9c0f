package domain

import "strings"

// SkinType is the self-reported skin type.
type SkinType string

const (
	SkinUnknown     SkinType = "unknown"
	SkinNormal      SkinType = "normal"
	SkinDry         SkinType = "dry"
	SkinOily        SkinType = "oily"
	SkinCombination SkinType = "combination"
	SkinSensitive   SkinType = "sensitive"
)

func (s SkinType) String() string { return string(s) }

func (s SkinType) IsValid() bool {
	switch s {
	case SkinUnknown, SkinNormal, SkinDry, SkinOily, SkinCombination, SkinSensitive:
		return true
	}
	return false
}

// ParseSkinType maps free input to a SkinType. Unrecognised values yield
// SkinUnknown.
func ParseSkinType(s string) SkinType {
	v := SkinType(fold(s))
	switch v {
	case "combo", "mixed":
		return SkinCombination
	}
	if v.IsValid() {
		return v
	}
	return SkinUnknown
}

// Concern is a self-reported skin issue.
type Concern string

const (
	ConcernDryness     Concern = "dryness"
	ConcernRedness     Concern = "redness"
	ConcernOiliness    Concern = "oiliness"
	ConcernPores       Concern = "pores"
	ConcernDullness    Concern = "dullness"
	ConcernAcne        Concern = "acne"
	ConcernSensitivity Concern = "sensitivity"
)

// AllConcerns lists concerns in declaration order.
var AllConcerns = []Concern{
	ConcernDryness, ConcernRedness, ConcernOiliness, ConcernPores,
	ConcernDullness, ConcernAcne, ConcernSensitivity,
}

func (c Concern) String() string { return string(c) }

func (c Concern) IsValid() bool {
	for _, known := range AllConcerns {
		if c == known {
			return true
		}
	}
	return false
}

// ParseConcern returns the concern and whether it was recognised.
func ParseConcern(s string) (Concern, bool) {
	c := Concern(fold(s))
	if c == "oily" || c == "oil" {
		c = ConcernOiliness
	}
	return c, c.IsValid()
}

// ParseConcerns parses a list, silently dropping unknown values.
func ParseConcerns(values []string) []Concern {
	var out []Concern
	for _, v := range values {
		if c, ok := ParseConcern(v); ok {
			out = append(out, c)
		}
	}
	return out
}

// FragrancePreference is what the user wants from product scent.
type FragrancePreference string

const (
	FragranceUnset FragrancePreference = "unset"
	FragranceFree  FragrancePreference = "fragrance_free"
	FragranceLight FragrancePreference = "light_fragrance"
	FragranceOK    FragrancePreference = "fragrance_ok"
)

func (f FragrancePreference) String() string { return string(f) }

func (f FragrancePreference) IsValid() bool {
	switch f {
	case FragranceUnset, FragranceFree, FragranceLight, FragranceOK:
		return true
	}
	return false
}

// ParseFragrancePreference accepts the canonical names and the short forms
// used by older profile files.
func ParseFragrancePreference(s string) FragrancePreference {
	v := FragrancePreference(fold(s))
	switch v {
	case "none", "free":
		return FragranceFree
	case "light":
		return FragranceLight
	case "like", "ok":
		return FragranceOK
	case "any", "":
		return FragranceUnset
	}
	if v.IsValid() {
		return v
	}
	return FragranceUnset
}

// ProductType is the routine slot a product fills.
type ProductType string

const (
	ProductUnknown       ProductType = "unknown"
	ProductCleanser      ProductType = "cleanser"
	ProductToner         ProductType = "toner"
	ProductSerum         ProductType = "serum"
	ProductMoisturizer   ProductType = "moisturizer"
	ProductSunscreen     ProductType = "sunscreen"
	ProductSpotTreatment ProductType = "spot_treatment"
)

// AllProductTypes lists product types in routine order.
var AllProductTypes = []ProductType{
	ProductCleanser, ProductToner, ProductSerum,
	ProductMoisturizer, ProductSunscreen, ProductSpotTreatment,
}

func (t ProductType) String() string { return string(t) }

func (t ProductType) IsValid() bool {
	for _, known := range AllProductTypes {
		if t == known {
			return true
		}
	}
	return false
}

func ParseProductType(s string) ProductType {
	v := ProductType(fold(s))
	switch v {
	case "lotion":
		return ProductToner
	case "spot":
		return ProductSpotTreatment
	case "cream":
		return ProductMoisturizer
	}
	if v.IsValid() {
		return v
	}
	return ProductUnknown
}

// ProductFragrance is how scented a product is.
type ProductFragrance string

const (
	ScentNone    ProductFragrance = "none"
	ScentLight   ProductFragrance = "light"
	ScentPresent ProductFragrance = "present"
)

func (f ProductFragrance) String() string { return string(f) }

func (f ProductFragrance) IsValid() bool {
	switch f {
	case ScentNone, ScentLight, ScentPresent:
		return true
	}
	return false
}

// ParseProductFragrance treats anything unrecognised as present, the
// cautious reading for a fragrance-free user.
func ParseProductFragrance(s string) ProductFragrance {
	v := ProductFragrance(fold(s))
	switch v {
	case "like", "strong", "yes":
		return ScentPresent
	case "", "free":
		return ScentNone
	}
	if v.IsValid() {
		return v
	}
	return ScentPresent
}

// StepTitle identifies a routine step.
type StepTitle string

const (
	StepCleanse    StepTitle = "cleanse"
	StepTone       StepTitle = "tone"
	StepSerum      StepTitle = "serum"
	StepMoisturize StepTitle = "moisturize"
	StepSunscreen  StepTitle = "sunscreen"
	StepSpot       StepTitle = "spot"
)

func (s StepTitle) String() string { return string(s) }

// Required reports whether the step is squeezed into a short budget rather
// than dropped.
func (s StepTitle) Required() bool {
	switch s {
	case StepCleanse, StepMoisturize, StepSunscreen:
		return true
	}
	return false
}

// Category is an ingredient classification.
type Category string

const (
	CategoryFragrance     Category = "fragrance"
	CategoryAllergen      Category = "allergen"
	CategoryDryingAlcohol Category = "drying_alcohol"
	CategoryHumectant     Category = "humectant"
	CategorySoothing      Category = "soothing"
	CategoryBrightening   Category = "brightening"
	CategoryExfoliant     Category = "exfoliant"
	CategoryActive        Category = "active"
)

// AllCategories lists ingredient categories in display order.
var AllCategories = []Category{
	CategoryFragrance, CategoryAllergen, CategoryDryingAlcohol, CategoryHumectant,
	CategorySoothing, CategoryBrightening, CategoryExfoliant, CategoryActive,
}

func (c Category) String() string { return string(c) }

func (c Category) IsValid() bool {
	for _, known := range AllCategories {
		if c == known {
			return true
		}
	}
	return false
}

// WarningKind is a derived caution from an ingredient check.
type WarningKind string

const (
	WarnPatchTest       WarningKind = "patch_test_recommended"
	WarnDrying          WarningKind = "drying_risk"
	WarnMultipleActives WarningKind = "multiple_actives_caution"
	WarnExfoliant       WarningKind = "exfoliant_caution"
	WarnAllergyMatch    WarningKind = "allergy_match"
)

func (w WarningKind) String() string { return string(w) }

func fold(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.NewReplacer("-", "_", " ", "_").Replace(s)
}
