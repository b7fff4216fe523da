// ProcureRec - Procurement Recommendation and Bundle Assembly Engine
// Copyright 2026 ProcureHQ
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/procurehq/procurerec

// Package catalog normalizes raw, inconsistently-shaped procurement records
// into canonical Product entities. Upstream exports arrive with arbitrary
// column order and names, missing values, and near-duplicate rows; every
// extraction runs an ordered chain of matchers with explicit fallbacks so
// that a malformed row degrades instead of failing.
package catalog

import (
	"fmt"
	"hash/fnv"
	"regexp"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
)

// Field is one key/value pair of a raw record. Keys are the upstream column
// headers, values the raw cell text.
type Field struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// RawRecord is one raw catalog row as an ordered field list. Order is
// significant: fallback extraction and first-wins deduplication depend on it.
type RawRecord []Field

// Product is the canonical catalog entity all downstream components consume.
type Product struct {
	ID             string      `json:"id"`
	Name           string      `json:"name"`
	NormalizedName string      `json:"normalized_name"`
	Category       string      `json:"category"`
	FeatureText    string      `json:"feature_text"`
	PriceEstimate  float64     `json:"price_estimate"`
	PriceSource    PriceSource `json:"price_source"`
	IsAvailable    bool        `json:"is_available"`
	Popularity     int         `json:"popularity"`
	Manufacturer   string      `json:"manufacturer,omitempty"`
	Description    string      `json:"description,omitempty"`
}

// Config controls normalization. Zero values take defaults in NewNormalizer.
type Config struct {
	// Taxonomy is the closed category set with matching keywords.
	Taxonomy Taxonomy `koanf:"taxonomy" json:"taxonomy"`

	// Prices configures price estimation fallbacks.
	Prices PriceTable `koanf:"prices" json:"prices"`

	// MaxNameLength truncates the last-resort name fallback. Default: 80.
	MaxNameLength int `koanf:"max_name_length" json:"max_name_length"`
}

// DefaultConfig returns a Config with the built-in taxonomy and price table.
func DefaultConfig() Config {
	return Config{
		Taxonomy:      DefaultTaxonomy(),
		Prices:        DefaultPriceTable(),
		MaxNameLength: 80,
	}
}

// Validate checks construction-time invariants.
func (c *Config) Validate() error {
	if len(c.Taxonomy) == 0 {
		return fmt.Errorf("taxonomy must have at least one category")
	}
	if c.Prices.Default.Avg <= 0 {
		return fmt.Errorf("default price average must be positive, got %f", c.Prices.Default.Avg)
	}
	if c.MaxNameLength <= 0 {
		return fmt.Errorf("max name length must be positive, got %d", c.MaxNameLength)
	}
	return nil
}

// Column-header keyword sets for field matching. Matching is case-insensitive
// substring over the header, so "unit_price" and "PriceRUB" both count as
// price-like.
var (
	idKeys           = []string{"id", "sku", "article", "code"}
	nameKeys         = []string{"name", "title", "item", "product"}
	categoryKeys     = []string{"category", "group", "section", "type"}
	priceKeys        = []string{"price", "cost", "amount"}
	popularityKeys   = []string{"popularity", "purchases", "orders", "count"}
	availabilityKeys = []string{"available", "stock", "availability"}
	manufacturerKeys = []string{"manufacturer", "brand", "vendor", "supplier"}
	descriptionKeys  = []string{"description", "details", "specs"}
)

// Normalizer turns raw records into a catalog snapshot.
type Normalizer struct {
	cfg    Config
	logger zerolog.Logger
}

// NewNormalizer validates cfg (after applying defaults for zero values) and
// returns a ready Normalizer.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewNormalizer(cfg Config, logger zerolog.Logger) (*Normalizer, error) {
	if len(cfg.Taxonomy) == 0 {
		cfg.Taxonomy = DefaultTaxonomy()
	}
	if cfg.Prices.Default.Avg == 0 && len(cfg.Prices.Categories) == 0 {
		cfg.Prices = DefaultPriceTable()
	}
	if cfg.MaxNameLength == 0 {
		cfg.MaxNameLength = 80
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid catalog config: %w", err)
	}
	return &Normalizer{
		cfg:    cfg,
		logger: logger.With().Str("component", "catalog").Logger(),
	}, nil
}

// Build normalizes records into an id-keyed catalog. Records that cannot
// yield even a synthesized name are dropped; duplicate normalized names keep
// the first occurrence. Build never fails: every other gap has a fallback.
func (n *Normalizer) Build(records []RawRecord) map[string]*Product {
	products := make(map[string]*Product, len(records))
	seenNames := make(map[string]struct{}, len(records))

	dropped, duplicates := 0, 0
	for i, rec := range records {
		p := n.normalize(rec, i)
		if p == nil {
			dropped++
			continue
		}
		if _, dup := seenNames[p.NormalizedName]; dup {
			duplicates++
			continue
		}
		if _, dup := products[p.ID]; dup {
			duplicates++
			continue
		}
		seenNames[p.NormalizedName] = struct{}{}
		products[p.ID] = p
	}

	n.logger.Info().
		Int("records", len(records)).
		Int("products", len(products)).
		Int("duplicates", duplicates).
		Int("dropped", dropped).
		Msg("catalog built")
	return products
}

// normalize runs the extraction chains for a single record. Returns nil only
// for records with no usable content at all.
func (n *Normalizer) normalize(rec RawRecord, position int) *Product {
	name, nameOK := extractName(rec, n.cfg.MaxNameLength)
	id, idOK := firstByKeys(rec, idKeys)
	if !nameOK && !idOK {
		n.logger.Debug().Int("position", position).Msg("record dropped: no name or id")
		return nil
	}
	if !idOK {
		id = synthesizeID(rec)
	}
	if !nameOK {
		name = "item-" + id
	}

	category := n.extractCategory(rec, name)

	price, source := n.extractPrice(rec, name, category)

	p := &Product{
		ID:             strings.TrimSpace(id),
		Name:           name,
		NormalizedName: NormalizeName(name),
		Category:       category,
		PriceEstimate:  price,
		PriceSource:    source,
		IsAvailable:    extractAvailability(rec),
		Popularity:     extractPopularity(rec),
	}
	if m, ok := firstByKeys(rec, manufacturerKeys); ok {
		p.Manufacturer = m
	}
	if d, ok := firstByKeys(rec, descriptionKeys); ok {
		p.Description = d
	}
	p.FeatureText = p.NormalizedName + " " + p.Category
	return p
}

func (n *Normalizer) extractCategory(rec RawRecord, name string) string {
	if raw, ok := firstByKeys(rec, categoryKeys); ok {
		cat := strings.ToLower(strings.TrimSpace(raw))
		if n.cfg.Taxonomy.Contains(cat) {
			return cat
		}
	}
	if cat, ok := n.cfg.Taxonomy.Match(name); ok {
		return cat
	}
	return CategoryOther
}

func (n *Normalizer) extractPrice(rec RawRecord, name, category string) (float64, PriceSource) {
	for _, f := range rec {
		if !keyMatches(f.Key, priceKeys) {
			continue
		}
		if v, ok := parsePrice(f.Value); ok {
			return v, PriceSourceCatalog
		}
	}
	return n.cfg.Prices.estimatePrice(name, category)
}

// extractName runs the ordered name fallback chain: keyword column, longest
// non-numeric value, truncated first non-empty value.
func extractName(rec RawRecord, maxLen int) (string, bool) {
	if v, ok := firstByKeys(rec, nameKeys); ok {
		return v, true
	}

	longest := ""
	for _, f := range rec {
		v := strings.TrimSpace(f.Value)
		if len(v) > len(longest) && hasLetters(v) {
			longest = v
		}
	}
	if longest != "" {
		return longest, true
	}

	for _, f := range rec {
		v := strings.TrimSpace(f.Value)
		if v != "" {
			if len(v) > maxLen {
				v = v[:maxLen]
			}
			return v, true
		}
	}
	return "", false
}

func extractAvailability(rec RawRecord) bool {
	raw, ok := firstByKeys(rec, availabilityKeys)
	if !ok {
		// Absent availability column means the supplier lists it as orderable.
		return true
	}
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "0", "false", "no", "out of stock", "unavailable", "none":
		return false
	default:
		return true
	}
}

func extractPopularity(rec RawRecord) int {
	raw, ok := firstByKeys(rec, popularityKeys)
	if !ok {
		return 0
	}
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || v < 0 {
		return 0
	}
	return v
}

// firstByKeys returns the first non-empty value whose header matches any of
// the given keywords, in record order.
func firstByKeys(rec RawRecord, keys []string) (string, bool) {
	for _, f := range rec {
		if keyMatches(f.Key, keys) {
			if v := strings.TrimSpace(f.Value); v != "" {
				return v, true
			}
		}
	}
	return "", false
}

func keyMatches(key string, keys []string) bool {
	lower := strings.ToLower(key)
	for _, k := range keys {
		if strings.Contains(lower, k) {
			return true
		}
	}
	return false
}

func hasLetters(s string) bool {
	letters := 0
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || r > 127 {
			letters++
		}
	}
	// Mostly-numeric cells (codes, prices) are not name material.
	return letters >= 3 && letters*2 >= len(s)
}

// synthesizeID derives a stable placeholder id from the record content.
func synthesizeID(rec RawRecord) string {
	h := fnv.New64a()
	for _, f := range rec {
		h.Write([]byte(f.Key))
		h.Write([]byte{0})
		h.Write([]byte(f.Value))
		h.Write([]byte{0})
	}
	return fmt.Sprintf("gen-%x", h.Sum64())
}

var (
	packagingRe    = regexp.MustCompile(`(?i)\(\s*\d+\s*(?:pcs|pc|pack|pk)?\s*\.?\s*\)`)
	trailingQtyRe  = regexp.MustCompile(`(?i)[\s,]*(?:x\s*\d+|\d+\s*(?:pcs|pc|pack|pk))\s*\.?\s*$`)
	bracketNoteRe  = regexp.MustCompile(`\[[^\]]*\]`)
	whitespaceRe   = regexp.MustCompile(`\s+`)
	punctuationRe  = regexp.MustCompile(`["'«»]+`)
)

// NormalizeName lowercases a product name and strips packaging-size
// annotations so near-identical supplier rows collapse to one key.
// "Ballpoint pen (10 pcs)" and "ballpoint  pen x10" normalize identically.
func NormalizeName(name string) string {
	s := strings.ToLower(name)
	s = bracketNoteRe.ReplaceAllString(s, " ")
	s = packagingRe.ReplaceAllString(s, " ")
	s = trailingQtyRe.ReplaceAllString(s, " ")
	s = punctuationRe.ReplaceAllString(s, " ")
	s = whitespaceRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}
