// ProcureRec - Procurement Recommendation and Bundle Assembly Engine
// Copyright 2026 ProcureHQ
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/procurehq/procurerec

package recommend

import (
	"strings"

	"github.com/procurehq/procurerec/internal/catalog"
	"github.com/procurehq/procurerec/internal/index"
)

// popularityTier is the purchase count above which a product counts as
// organization-proven for the availability signal and explanations.
const popularityTier = 10

// categoryPopularity aggregates catalog-wide purchase counts per category,
// normalized to [0,1] by the most popular category. Used to blend a
// never-purchased-but-widely-bought category into the category signal.
func categoryPopularity(products map[string]*catalog.Product) map[string]float64 {
	sums := make(map[string]float64)
	maxSum := 0.0
	for _, p := range products {
		sums[p.Category] += float64(p.Popularity)
		if sums[p.Category] > maxSum {
			maxSum = sums[p.Category]
		}
	}
	if maxSum == 0 {
		return map[string]float64{}
	}
	for cat := range sums {
		sums[cat] /= maxSum
	}
	return sums
}

// scoreCandidate computes the four signals for one product, combines them
// with the weight table, and derives confidence and explanation. All signal
// values are in [0,1] before weighting; the total is clipped to [0,1].
func (e *Engine) scoreCandidate(p *catalog.Product, profile *UserProfile, idx *index.Index, catPop map[string]float64) ScoredCandidate {
	semantic := semanticSimilarity(p.ID, profile, idx)
	category := e.categoryAffinity(p.Category, profile, catPop)
	availability := availabilitySignal(p)
	price := priceFit(p.PriceEstimate, profile)

	total := e.cfg.Weights.Semantic*semantic +
		e.cfg.Weights.Category*category +
		e.cfg.Weights.Availability*availability +
		e.cfg.Weights.Price*price
	total = clamp01(total)

	components := map[string]float64{
		SignalSemantic:     semantic,
		SignalCategory:     category,
		SignalAvailability: availability,
		SignalPrice:        price,
	}

	return ScoredCandidate{
		ProductID:       p.ID,
		Category:        p.Category,
		Price:           p.PriceEstimate,
		TotalScore:      total,
		ComponentScores: components,
		Confidence:      confidence(semantic, p, profile),
		Explanation:     explain(components, p),
	}
}

// semanticSimilarity is the cosine of the product's vector against the
// profile centroid, clamped to >= 0. Cold profiles and unindexed products
// score 0 — expected conditions, not errors.
func semanticSimilarity(id string, profile *UserProfile, idx *index.Index) float64 {
	if profile.SemanticCentroid == nil || idx == nil {
		return 0
	}
	vec, ok := idx.Vector(id)
	if !ok {
		return 0
	}
	sim := profile.SemanticCentroid.Dot(vec)
	if sim < 0 {
		return 0
	}
	if sim > 1 {
		return 1
	}
	return sim
}

// categoryAffinity blends the buyer's own category weight with catalog-wide
// category popularity, so a widely-bought category the buyer never touched
// still contributes a low non-zero affinity.
func (e *Engine) categoryAffinity(category string, profile *UserProfile, catPop map[string]float64) float64 {
	own := profile.CategoryWeights[category]
	return e.cfg.CategoryBlend*own + (1-e.cfg.CategoryBlend)*catPop[category]
}

// availabilitySignal rewards catalog confidence, not mere existence:
// orderable now, proven by purchase volume, and documented.
func availabilitySignal(p *catalog.Product) float64 {
	score := 0.0
	if p.IsAvailable {
		score += 0.6
	}
	if p.Popularity > popularityTier {
		score += 0.3
	}
	if p.Manufacturer != "" || p.Description != "" {
		score += 0.1
	}
	return score
}

// priceFit compares the product price to the buyer's average item price with
// a smooth min/max ratio; 0.5 is neutral for buyers with no priced history.
func priceFit(price float64, profile *UserProfile) float64 {
	avg := profile.AvgItemPrice()
	if avg <= 0 || price <= 0 {
		return 0.5
	}
	if price < avg {
		return price / avg
	}
	return avg / price
}

// confidence is the unweighted mean of three evidence heuristics: signal
// strength, product data completeness, and profile richness. Advisory
// metadata only — never used to exclude a candidate.
func confidence(semantic float64, p *catalog.Product, profile *UserProfile) float64 {
	var strength float64
	switch {
	case semantic >= 0.6:
		strength = 0.9
	case semantic >= 0.3:
		strength = 0.6
	default:
		strength = 0.3
	}

	completeness := 0.0
	if p.PriceSource == catalog.PriceSourceCatalog {
		completeness += 0.4
	}
	if p.Manufacturer != "" || p.Description != "" {
		completeness += 0.3
	}
	if p.Popularity > 0 {
		completeness += 0.3
	}

	var richness float64
	switch {
	case profile.EventCount >= 10:
		richness = 0.8
	case profile.EventCount >= 3:
		richness = 0.5
	default:
		richness = 0.2
	}

	return (strength + completeness + richness) / 3
}

// Explanation phrase thresholds, checked in priority order: semantic first,
// then category, price, popularity. Cosmetic output with no contract.
func explain(components map[string]float64, p *catalog.Product) string {
	var phrases []string

	switch {
	case components[SignalSemantic] >= 0.6:
		phrases = append(phrases, "closely matches your purchase history")
	case components[SignalSemantic] >= 0.3:
		phrases = append(phrases, "similar to items you buy")
	}
	if components[SignalCategory] >= 0.3 {
		phrases = append(phrases, "from a category you order often")
	}
	if components[SignalPrice] >= 0.75 {
		phrases = append(phrases, "fits your usual price range")
	}
	if p.Popularity > popularityTier {
		phrases = append(phrases, "frequently purchased across the organization")
	}

	if len(phrases) == 0 {
		return "may complement your current assortment"
	}
	return strings.Join(phrases, "; ")
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
