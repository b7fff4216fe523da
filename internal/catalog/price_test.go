// ProcureRec - Procurement Recommendation and Bundle Assembly Engine
// Copyright 2026 ProcureHQ
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/procurehq/procurerec

package catalog

import (
	"math"
	"testing"
)

func TestParsePrice(t *testing.T) {
	tests := []struct {
		raw    string
		want   float64
		wantOK bool
	}{
		{"120", 120, true},
		{"120.50", 120.5, true},
		{"120,50", 120.5, true},
		{"1 299,50", 1299.5, true},
		{"249.90 EUR", 249.9, true},
		{"$15", 15, true},
		{"0", 0, false},
		{"", 0, false},
		{"n/a", 0, false},
	}
	for _, tt := range tests {
		got, ok := parsePrice(tt.raw)
		if ok != tt.wantOK || math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("parsePrice(%q) = %f, %v; want %f, %v", tt.raw, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestVolumeFromName(t *testing.T) {
	tests := []struct {
		name   string
		want   float64
		wantOK bool
	}{
		{"Glass cleaner 500 ml", 500, true},
		{"Detergent 5l", 5000, true},
		{"Coffee beans 1 kg", 1000, true},
		{"Sugar 0,5 kg", 500, true},
		{"Hand soap 250ML", 250, true},
		{"Ballpoint pen", 0, false},
		{"Cable 3m", 0, false},
	}
	for _, tt := range tests {
		got, ok := volumeFromName(tt.name)
		if ok != tt.wantOK || math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("volumeFromName(%q) = %f, %v; want %f, %v", tt.name, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestQualityMultiplier(t *testing.T) {
	tests := []struct {
		name string
		want float64
	}{
		{"Premium glass cleaner", 1.5},
		{"Professional stapler", 1.5},
		{"Economy copy paper", 0.7},
		{"Basic notepad", 0.7},
		{"Glass cleaner", 1.0},
	}
	for _, tt := range tests {
		if got := qualityMultiplier(tt.name); got != tt.want {
			t.Errorf("qualityMultiplier(%q) = %f, want %f", tt.name, got, tt.want)
		}
	}
}

func TestEstimatePrice(t *testing.T) {
	table := DefaultPriceTable()

	tests := []struct {
		name       string
		product    string
		category   string
		want       float64
		wantSource PriceSource
	}{
		{
			name:       "volume cue times category unit rate",
			product:    "Glass cleaner 500 ml",
			category:   "cleaning",
			want:       500 * 0.45,
			wantSource: PriceSourceCategoryEstimate,
		},
		{
			name:       "premium cue scales volume estimate",
			product:    "Premium detergent 1 l",
			category:   "cleaning",
			want:       1000 * 0.45 * 1.5,
			wantSource: PriceSourceCategoryEstimate,
		},
		{
			name:       "category average without size cue",
			product:    "Ballpoint pen",
			category:   "stationery",
			want:       120,
			wantSource: PriceSourceCategoryEstimate,
		},
		{
			name:       "economy cue scales category average",
			product:    "Economy ballpoint pen",
			category:   "stationery",
			want:       120 * 0.7,
			wantSource: PriceSourceCategoryEstimate,
		},
		{
			name:       "unknown category falls back to global default",
			product:    "Quantum flux widget",
			category:   CategoryOther,
			want:       2500,
			wantSource: PriceSourceDefault,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, source := table.estimatePrice(tt.product, tt.category)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("estimatePrice() = %f, want %f", got, tt.want)
			}
			if source != tt.wantSource {
				t.Errorf("source = %q, want %q", source, tt.wantSource)
			}
			if got <= 0 {
				t.Error("estimates must always be positive")
			}
		})
	}
}

func TestPriceTableBand(t *testing.T) {
	table := DefaultPriceTable()
	if band := table.Band("stationery"); band.Avg != 120 {
		t.Errorf("Band(stationery).Avg = %f, want 120", band.Avg)
	}
	if band := table.Band("nonexistent"); band.Avg != table.Default.Avg {
		t.Errorf("Band(nonexistent).Avg = %f, want default %f", band.Avg, table.Default.Avg)
	}
}
