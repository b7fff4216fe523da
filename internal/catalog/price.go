// ProcureRec - Procurement Recommendation and Bundle Assembly Engine
// Copyright 2026 ProcureHQ
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/procurehq/procurerec

package catalog

import (
	"regexp"
	"strconv"
	"strings"
)

// PriceSource tags which branch of the price fallback chain produced an estimate.
type PriceSource string

const (
	// PriceSourceCatalog means the price came from a numeric catalog column.
	PriceSourceCatalog PriceSource = "catalog"
	// PriceSourceCategoryEstimate means the price was derived from category
	// data (volume cue times a unit rate, or the category average).
	PriceSourceCategoryEstimate PriceSource = "category_estimate"
	// PriceSourceDefault means the global default estimate was used.
	PriceSourceDefault PriceSource = "default"
)

// PriceBand holds the configured min/max/avg price observed for a category.
// No statistical rigor is claimed; these are operator-tuned planning figures.
type PriceBand struct {
	Min float64 `koanf:"min" json:"min"`
	Max float64 `koanf:"max" json:"max"`
	Avg float64 `koanf:"avg" json:"avg"`
}

// PriceTable configures price estimation for products without a usable
// numeric price column.
type PriceTable struct {
	// Categories maps category -> price band.
	Categories map[string]PriceBand `koanf:"categories" json:"categories"`

	// UnitRates maps category -> price per normalized volume/weight unit
	// (milliliter or gram) for products whose name carries a size cue.
	UnitRates map[string]float64 `koanf:"unit_rates" json:"unit_rates"`

	// DefaultUnitRate applies when the category has no unit rate.
	DefaultUnitRate float64 `koanf:"default_unit_rate" json:"default_unit_rate"`

	// Default is the band used for categories absent from Categories.
	Default PriceBand `koanf:"default" json:"default"`
}

// DefaultPriceTable returns estimation data matching DefaultTaxonomy.
func DefaultPriceTable() PriceTable {
	return PriceTable{
		Categories: map[string]PriceBand{
			"paper":            {Min: 100, Max: 2500, Avg: 450},
			"stationery":       {Min: 10, Max: 600, Avg: 120},
			"computers":        {Min: 500, Max: 150000, Avg: 18000},
			"office_equipment": {Min: 500, Max: 60000, Avg: 6500},
			"furniture":        {Min: 1000, Max: 90000, Avg: 14000},
			"cleaning":         {Min: 50, Max: 3000, Avg: 420},
			"kitchen":          {Min: 30, Max: 6000, Avg: 650},
			"electrical":       {Min: 40, Max: 12000, Avg: 900},
			"packaging":        {Min: 20, Max: 2500, Avg: 260},
		},
		UnitRates: map[string]float64{
			"cleaning": 0.45,
			"kitchen":  0.9,
		},
		DefaultUnitRate: 0.5,
		Default:         PriceBand{Min: 100, Max: 20000, Avg: 2500},
	}
}

// Band returns the price band for category, falling back to the default band.
func (p PriceTable) Band(category string) PriceBand {
	if band, ok := p.Categories[category]; ok {
		return band
	}
	return p.Default
}

func (p PriceTable) unitRate(category string) float64 {
	if rate, ok := p.UnitRates[category]; ok && rate > 0 {
		return rate
	}
	return p.DefaultUnitRate
}

var volumeCueRe = regexp.MustCompile(`(?i)(\d+(?:[.,]\d+)?)\s*(ml|l|g|kg)\b`)

var (
	premiumCues = []string{"premium", "professional", "deluxe", "pro "}
	economyCues = []string{"economy", "basic", "budget", "standard"}
)

// volumeFromName extracts a size cue from a product name and normalizes it
// to milliliters/grams. Liters and kilograms scale by 1000.
func volumeFromName(name string) (float64, bool) {
	m := volumeCueRe.FindStringSubmatch(name)
	if m == nil {
		return 0, false
	}
	qty, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", "."), 64)
	if err != nil || qty <= 0 {
		return 0, false
	}
	switch strings.ToLower(m[2]) {
	case "l", "kg":
		qty *= 1000
	}
	return qty, true
}

// qualityMultiplier scales an estimate by a premium/economy cue in the name.
func qualityMultiplier(name string) float64 {
	lower := strings.ToLower(name)
	for _, cue := range premiumCues {
		if strings.Contains(lower, cue) {
			return 1.5
		}
	}
	for _, cue := range economyCues {
		if strings.Contains(lower, cue) {
			return 0.7
		}
	}
	return 1.0
}

// estimatePrice derives a positive price for a product whose catalog columns
// carried none: volume cue times the category unit rate, else the category
// average, else the global default. The returned source tags the branch taken.
func (p PriceTable) estimatePrice(name, category string) (float64, PriceSource) {
	if volume, ok := volumeFromName(name); ok {
		if price := volume * p.unitRate(category) * qualityMultiplier(name); price > 0 {
			return price, PriceSourceCategoryEstimate
		}
	}
	if band, ok := p.Categories[category]; ok && band.Avg > 0 {
		return band.Avg * qualityMultiplier(name), PriceSourceCategoryEstimate
	}
	return p.Default.Avg, PriceSourceDefault
}

// parsePrice parses a numeric price column value. Accepts comma decimal
// separators and currency suffixes; rejects non-positive values.
func parsePrice(raw string) (float64, bool) {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.ReplaceAll(cleaned, " ", "")
	cleaned = strings.ReplaceAll(cleaned, ",", ".")
	cleaned = strings.TrimFunc(cleaned, func(r rune) bool {
		return (r < '0' || r > '9') && r != '.'
	})
	if cleaned == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || v <= 0 {
		return 0, false
	}
	return v, true
}
