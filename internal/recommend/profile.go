// ProcureRec - Procurement Recommendation and Bundle Assembly Engine
// Copyright 2026 ProcureHQ
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/procurehq/procurerec

package recommend

import (
	"sort"

	"github.com/procurehq/procurerec/internal/catalog"
	"github.com/procurehq/procurerec/internal/index"
)

// centroidQuantityCap bounds how much a single bulk order can pull the
// semantic centroid toward one product.
const centroidQuantityCap = 3

// BuildProfile aggregates a buyer's purchase history into a UserProfile.
// It is a pure function: the same history, catalog, and snapshot always
// produce the same profile. Empty or entirely-unindexed history yields a
// valid cold profile (nil centroid, no weights), never an error; products
// referenced by history but absent from the catalog still count as owned
// and stay excluded from recommendations.
func BuildProfile(userID string, history []HistoryEvent, products map[string]*catalog.Product, idx *index.Index) *UserProfile {
	profile := &UserProfile{
		UserID:              userID,
		PurchasedProductIDs: make(map[string]struct{}),
		CategoryWeights:     make(map[string]float64),
		PricePreference:     make(map[string]PricePreference),
		EventCount:          len(history),
	}

	categoryQty := make(map[string]float64)
	categoryPrices := make(map[string][]float64)
	centroidWeights := make(map[string]float64)
	totalQty := 0.0

	for _, event := range history {
		qty := event.Quantity
		if qty < 1 {
			qty = 1
		}
		for _, id := range event.ProductIDs {
			if id == "" {
				continue
			}
			profile.PurchasedProductIDs[id] = struct{}{}

			w := centroidWeights[id] + float64(qty)
			if w > centroidQuantityCap {
				w = centroidQuantityCap
			}
			centroidWeights[id] = w

			p, known := products[id]
			if !known {
				continue
			}

			categoryQty[p.Category] += float64(qty)
			totalQty += float64(qty)

			price := event.UnitPrice
			if price <= 0 {
				price = p.PriceEstimate
			}
			categoryPrices[p.Category] = append(categoryPrices[p.Category], price)

			profile.TotalSpent += price * float64(qty)
			profile.TotalItems += qty
		}
	}

	if totalQty > 0 {
		for cat, qty := range categoryQty {
			profile.CategoryWeights[cat] = qty / totalQty
		}
	}

	for cat, prices := range categoryPrices {
		profile.PricePreference[cat] = summarizePrices(prices)
	}

	if idx != nil {
		profile.SemanticCentroid = idx.Centroid(centroidWeights)
	}

	return profile
}

// summarizePrices computes min/max/avg/median over observed unit prices.
func summarizePrices(prices []float64) PricePreference {
	sorted := make([]float64, len(prices))
	copy(sorted, prices)
	sort.Float64s(sorted)

	pref := PricePreference{
		Min: sorted[0],
		Max: sorted[len(sorted)-1],
	}
	sum := 0.0
	for _, p := range sorted {
		sum += p
	}
	pref.Avg = sum / float64(len(sorted))

	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		pref.Median = sorted[mid]
	} else {
		pref.Median = (sorted[mid-1] + sorted[mid]) / 2
	}
	return pref
}
