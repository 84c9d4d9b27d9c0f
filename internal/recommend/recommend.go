// Package recommend scores catalog products against a profile and selects a
// varied shortlist.
package recommend

import (
	"math"
	"sort"

	"github.com/pbaille/skincare/internal/domain"
)

// DefaultLimit is the shortlist size used by the surfaces.
const DefaultLimit = 8

// quickRoutineMinutes is the combined AM+PM budget at or under which a
// profile counts as a quick routine.
const quickRoutineMinutes = 10

// DefaultQuotas caps how many products of one type the diversity pass
// admits.
var DefaultQuotas = map[domain.ProductType]int{
	domain.ProductCleanser:      1,
	domain.ProductToner:         2,
	domain.ProductSerum:         2,
	domain.ProductMoisturizer:   2,
	domain.ProductSunscreen:     1,
	domain.ProductSpotTreatment: 1,
}

// Breakdown lists each scoring term's contribution.
type Breakdown struct {
	SkinType  float64 `json:"skin_type"`
	Concerns  float64 `json:"concerns"`
	Fragrance float64 `json:"fragrance"`
	Price     float64 `json:"price"`
	TimeFit   float64 `json:"time_fit"`
}

// Total sums the terms.
func (b Breakdown) Total() float64 {
	return b.SkinType + b.Concerns + b.Fragrance + b.Price + b.TimeFit
}

// Scored pairs a product with its score.
type Scored struct {
	Product   domain.Product `json:"product"`
	Score     float64        `json:"score"`
	Breakdown Breakdown      `json:"breakdown"`
}

// Explain computes every scoring term for product against profile.
func Explain(product domain.Product, profile domain.Profile) Breakdown {
	p := profile.Normalized()
	var b Breakdown

	switch {
	case p.SkinType == domain.SkinUnknown:
		b.SkinType = 1.0
	case product.SuitsSkin(p.SkinType):
		b.SkinType = 3.0
	default:
		b.SkinType = -0.5
	}

	overlap := 0
	for _, c := range uniqueConcerns(product.Concerns) {
		if p.HasConcern(c) {
			overlap++
		}
	}
	b.Concerns = 2.5 * float64(overlap)

	switch p.Fragrance {
	case domain.FragranceFree:
		switch product.Fragrance {
		case domain.ScentNone:
			b.Fragrance = 2.5
		case domain.ScentLight:
			b.Fragrance = -0.5
		default:
			b.Fragrance = -2.0
		}
	case domain.FragranceLight:
		if product.Fragrance == domain.ScentNone || product.Fragrance == domain.ScentLight {
			b.Fragrance = 1.5
		}
	case domain.FragranceOK:
		if product.Fragrance == domain.ScentLight || product.Fragrance == domain.ScentPresent {
			b.Fragrance = 1.2
		}
	}

	price := max(product.Price, 0)
	ideal := math.Max(800, float64(p.MonthlyBudget)/4)
	if price <= p.MonthlyBudget {
		b.Price += 1.0
	}
	b.Price -= math.Abs(float64(price)-ideal) / 3000

	if p.AMMinutes+p.PMMinutes <= quickRoutineMinutes {
		switch product.Type {
		case domain.ProductToner, domain.ProductMoisturizer, domain.ProductSunscreen:
			b.TimeFit = 0.8
		case domain.ProductSerum:
			b.TimeFit = 0.2
		}
	} else if product.Type == domain.ProductSerum || product.Type == domain.ProductSpotTreatment {
		b.TimeFit = 0.5
	}

	return b
}

// Score returns the weighted rule score of product for profile.
func Score(product domain.Product, profile domain.Profile) float64 {
	return Explain(product, profile).Total()
}

// Recommender ranks a catalog with per-type diversity quotas.
type Recommender struct {
	quotas       map[domain.ProductType]int
	defaultQuota int
}

// Option configures a Recommender.
type Option func(*Recommender)

// WithQuota overrides the quota of one product type.
func WithQuota(t domain.ProductType, n int) Option {
	return func(r *Recommender) { r.quotas[t] = max(n, 0) }
}

// WithDefaultQuota sets the quota for types without an explicit entry.
func WithDefaultQuota(n int) Option {
	return func(r *Recommender) { r.defaultQuota = max(n, 0) }
}

// New creates a Recommender with DefaultQuotas.
func New(opts ...Option) *Recommender {
	r := &Recommender{
		quotas:       make(map[domain.ProductType]int, len(DefaultQuotas)),
		defaultQuota: 2,
	}
	for t, n := range DefaultQuotas {
		r.quotas[t] = n
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Quota returns the diversity cap for t.
func (r *Recommender) Quota(t domain.ProductType) int {
	if n, ok := r.quotas[t]; ok {
		return n
	}
	return r.defaultQuota
}

// Recommend returns at most limit products. Products are ranked by score
// (ties keep catalog order), the top limit form the provisional list, a
// diversity pass admits products while their type is under quota, and a
// backfill pass tops the result up to min(limit, provisional size) from
// the remaining provisional products in rank order.
func (r *Recommender) Recommend(catalog []domain.Product, profile domain.Profile, limit int) []Scored {
	if limit <= 0 || len(catalog) == 0 {
		return []Scored{}
	}

	scored := make([]Scored, len(catalog))
	for i, p := range catalog {
		b := Explain(p, profile)
		scored[i] = Scored{Product: p, Score: b.Total(), Breakdown: b}
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	picked := scored[:min(limit, len(scored))]
	want := len(picked)

	final := make([]Scored, 0, want)
	used := make([]bool, len(picked))
	perType := map[domain.ProductType]int{}

	for i, s := range picked {
		if perType[s.Product.Type] < r.Quota(s.Product.Type) {
			final = append(final, s)
			used[i] = true
			perType[s.Product.Type]++
		}
	}

	for i, s := range picked {
		if len(final) >= want {
			break
		}
		if !used[i] {
			final = append(final, s)
			used[i] = true
		}
	}

	return final
}

// Recommend ranks with the default quotas.
func Recommend(catalog []domain.Product, profile domain.Profile, limit int) []Scored {
	return New().Recommend(catalog, profile, limit)
}

// TotalPrice sums the price of the first n picks.
func TotalPrice(picks []Scored, n int) int {
	total := 0
	for _, s := range picks[:min(max(n, 0), len(picks))] {
		total += s.Product.Price
	}
	return total
}

func uniqueConcerns(cs []domain.Concern) []domain.Concern {
	seen := make(map[domain.Concern]bool, len(cs))
	out := make([]domain.Concern, 0, len(cs))
	for _, c := range cs {
		if !seen[c] {
			seen[c] = true
			out = append(out, c)
		}
	}
	return out
}
