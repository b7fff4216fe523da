// ProcureRec - Procurement Recommendation and Bundle Assembly Engine
// Copyright 2026 ProcureHQ
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/procurehq/procurerec

package recommend

import (
	"math"
	"testing"
)

func TestBuildProfileCold(t *testing.T) {
	products := fixtureProducts()
	ix := fixtureIndex(t, products)

	profile := BuildProfile("u1", nil, products, ix)
	if !profile.Cold() {
		t.Error("empty history must yield a cold profile")
	}
	if profile.SemanticCentroid != nil {
		t.Error("cold profile must have no centroid")
	}
	if len(profile.CategoryWeights) != 0 {
		t.Errorf("cold profile has %d category weights, want 0", len(profile.CategoryWeights))
	}

	var nilProfile *UserProfile
	if !nilProfile.Cold() {
		t.Error("nil profile must report cold")
	}
	if nilProfile.Purchased("pen") {
		t.Error("nil profile owns nothing")
	}
	if nilProfile.AvgItemPrice() != 0 {
		t.Error("nil profile has no average price")
	}
}

func TestBuildProfileCategoryWeights(t *testing.T) {
	products := fixtureProducts()
	history := []HistoryEvent{
		{ProductIDs: []string{"pen"}, Quantity: 3},
		{ProductIDs: []string{"cleaner"}, Quantity: 1},
	}

	profile := BuildProfile("u1", history, products, nil)

	if got := profile.CategoryWeights["stationery"]; math.Abs(got-0.75) > 1e-9 {
		t.Errorf("stationery weight = %f, want 0.75", got)
	}
	if got := profile.CategoryWeights["cleaning"]; math.Abs(got-0.25) > 1e-9 {
		t.Errorf("cleaning weight = %f, want 0.25", got)
	}

	sum := 0.0
	for _, w := range profile.CategoryWeights {
		sum += w
	}
	if math.Abs(sum-1) > 1e-9 {
		t.Errorf("category weights sum = %f, want 1", sum)
	}
}

func TestBuildProfilePurchasedIncludesUnknownIDs(t *testing.T) {
	products := fixtureProducts()
	history := []HistoryEvent{
		{ProductIDs: []string{"pen", "discontinued-sku"}, Quantity: 1},
	}

	profile := BuildProfile("u1", history, products, nil)

	if !profile.Purchased("discontinued-sku") {
		t.Error("ids absent from the catalog still count as owned")
	}
	// The unknown id must not distort category or spend aggregation.
	if len(profile.CategoryWeights) != 1 {
		t.Errorf("got %d category weights, want 1", len(profile.CategoryWeights))
	}
	if profile.TotalItems != 1 {
		t.Errorf("TotalItems = %d, want 1", profile.TotalItems)
	}
}

func TestBuildProfilePrices(t *testing.T) {
	products := fixtureProducts()
	history := []HistoryEvent{
		// Observed unit price wins over the catalog estimate.
		{ProductIDs: []string{"pen"}, Quantity: 2, UnitPrice: 40},
		// Missing unit price falls back to the estimate (80 for marker).
		{ProductIDs: []string{"marker"}, Quantity: 1},
	}

	profile := BuildProfile("u1", history, products, nil)

	if math.Abs(profile.TotalSpent-(40*2+80)) > 1e-9 {
		t.Errorf("TotalSpent = %f, want 160", profile.TotalSpent)
	}
	if profile.TotalItems != 3 {
		t.Errorf("TotalItems = %d, want 3", profile.TotalItems)
	}
	if got := profile.AvgItemPrice(); math.Abs(got-160.0/3) > 1e-9 {
		t.Errorf("AvgItemPrice() = %f, want %f", got, 160.0/3)
	}

	pref, ok := profile.PricePreference["stationery"]
	if !ok {
		t.Fatal("stationery price preference missing")
	}
	if pref.Min != 40 || pref.Max != 80 {
		t.Errorf("price band = [%f, %f], want [40, 80]", pref.Min, pref.Max)
	}
}

func TestBuildProfileCentroid(t *testing.T) {
	products := fixtureProducts()
	ix := fixtureIndex(t, products)

	profile := BuildProfile("u1", penHistory(), products, ix)
	if profile.Cold() {
		t.Fatal("profile with history must not be cold")
	}
	if profile.SemanticCentroid == nil {
		t.Fatal("indexed purchases must produce a centroid")
	}

	// A single-product history makes the centroid that product's vector.
	penVec, _ := ix.Vector("pen")
	if sim := profile.SemanticCentroid.Dot(penVec); math.Abs(sim-1) > 1e-9 {
		t.Errorf("centroid·pen = %f, want 1", sim)
	}
}

func TestBuildProfileZeroQuantity(t *testing.T) {
	products := fixtureProducts()
	history := []HistoryEvent{
		{ProductIDs: []string{"pen"}, Quantity: 0},
	}

	profile := BuildProfile("u1", history, products, nil)
	// Zero and negative quantities count as one item.
	if profile.TotalItems != 1 {
		t.Errorf("TotalItems = %d, want 1", profile.TotalItems)
	}
}

func TestSummarizePrices(t *testing.T) {
	tests := []struct {
		name   string
		prices []float64
		want   PricePreference
	}{
		{
			name:   "odd count takes middle",
			prices: []float64{30, 10, 20},
			want:   PricePreference{Min: 10, Max: 30, Avg: 20, Median: 20},
		},
		{
			name:   "even count averages middle pair",
			prices: []float64{40, 10, 20, 30},
			want:   PricePreference{Min: 10, Max: 40, Avg: 25, Median: 25},
		},
		{
			name:   "single price",
			prices: []float64{15},
			want:   PricePreference{Min: 15, Max: 15, Avg: 15, Median: 15},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := summarizePrices(tt.prices)
			if got != tt.want {
				t.Errorf("summarizePrices() = %+v, want %+v", got, tt.want)
			}
		})
	}
}
