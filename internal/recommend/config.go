// ProcureRec - Procurement Recommendation and Bundle Assembly Engine
// Copyright 2026 ProcureHQ
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/procurehq/procurerec

package recommend

import (
	"fmt"
	"math"
	"time"
)

// weightSumTolerance is the floating tolerance for the weights-sum-to-1 check.
const weightSumTolerance = 1e-6

// Weights is the signal weight table. The four weights must sum to 1; this
// is validated at engine construction, never silently normalized or clamped.
type Weights struct {
	// Semantic weights similarity to the buyer's purchase centroid.
	Semantic float64 `koanf:"semantic" json:"semantic"`

	// Category weights category/behavioral affinity.
	Category float64 `koanf:"category" json:"category"`

	// Availability weights the catalog-confidence signal.
	Availability float64 `koanf:"availability" json:"availability"`

	// Price weights price compatibility with observed spending.
	Price float64 `koanf:"price" json:"price"`
}

// DefaultWeights returns the production weight table.
func DefaultWeights() Weights {
	return Weights{
		Semantic:     0.25,
		Category:     0.35,
		Availability: 0.30,
		Price:        0.10,
	}
}

// Sum returns the total of all weights.
func (w Weights) Sum() float64 {
	return w.Semantic + w.Category + w.Availability + w.Price
}

// Validate rejects negative weights and any table not summing to 1.
func (w Weights) Validate() error {
	for name, v := range w.ToMap() {
		if v < 0 {
			return fmt.Errorf("weight %s must not be negative, got %f", name, v)
		}
	}
	if sum := w.Sum(); math.Abs(sum-1) > weightSumTolerance {
		return fmt.Errorf("weights must sum to 1, got %f", sum)
	}
	return nil
}

// ToMap returns the table keyed by signal name.
func (w Weights) ToMap() map[string]float64 {
	return map[string]float64{
		SignalSemantic:     w.Semantic,
		SignalCategory:     w.Category,
		SignalAvailability: w.Availability,
		SignalPrice:        w.Price,
	}
}

// ScoreThresholds holds the per-strategy minimum total score a candidate
// needs to enter the ranking. A tunable quality gate, not an invariant.
type ScoreThresholds struct {
	Balanced float64 `koanf:"balanced" json:"balanced"`
	Budget   float64 `koanf:"budget" json:"budget"`
	Premium  float64 `koanf:"premium" json:"premium"`
}

// Config holds scoring-engine configuration.
type Config struct {
	// Weights is the signal weight table (must sum to 1).
	Weights Weights `koanf:"weights" json:"weights"`

	// MinScore gates candidates per strategy. Defaults: 0.15/0.12/0.18.
	MinScore ScoreThresholds `koanf:"min_score" json:"min_score"`

	// CategoryBlend is the share of the buyer's own category weight in the
	// category signal; the remainder comes from organization-wide category
	// popularity. Default: 0.7.
	CategoryBlend float64 `koanf:"category_blend" json:"category_blend"`

	// FallbackScore is the base score for popularity-ranked cold-start
	// recommendations. Default: 0.7.
	FallbackScore float64 `koanf:"fallback_score" json:"fallback_score"`

	// DefaultLimit applies when a request carries no limit. Default: 10.
	DefaultLimit int `koanf:"default_limit" json:"default_limit"`

	// MaxLimit caps the requested result size. Default: 100.
	MaxLimit int `koanf:"max_limit" json:"max_limit"`

	// CacheTTL bounds response cache entries; 0 disables caching.
	// Default: 2m.
	CacheTTL time.Duration `koanf:"cache_ttl" json:"cache_ttl"`

	// CacheSize bounds the number of cached responses. Default: 512.
	CacheSize int `koanf:"cache_size" json:"cache_size"`
}

// DefaultConfig returns production defaults.
func DefaultConfig() Config {
	return Config{
		Weights:       DefaultWeights(),
		MinScore:      ScoreThresholds{Balanced: 0.15, Budget: 0.12, Premium: 0.18},
		CategoryBlend: 0.7,
		FallbackScore: 0.7,
		DefaultLimit:  10,
		MaxLimit:      100,
		CacheTTL:      2 * time.Minute,
		CacheSize:     512,
	}
}

// Validate checks construction-time invariants with descriptive errors.
func (c *Config) Validate() error {
	if err := c.Weights.Validate(); err != nil {
		return err
	}
	for strategy, threshold := range map[string]float64{
		"balanced": c.MinScore.Balanced,
		"budget":   c.MinScore.Budget,
		"premium":  c.MinScore.Premium,
	} {
		if threshold < 0 || threshold > 1 {
			return fmt.Errorf("min score for %s must be in [0, 1], got %f", strategy, threshold)
		}
	}
	if c.CategoryBlend < 0 || c.CategoryBlend > 1 {
		return fmt.Errorf("category blend must be in [0, 1], got %f", c.CategoryBlend)
	}
	if c.FallbackScore <= 0 || c.FallbackScore > 1 {
		return fmt.Errorf("fallback score must be in (0, 1], got %f", c.FallbackScore)
	}
	if c.DefaultLimit <= 0 {
		return fmt.Errorf("default limit must be positive, got %d", c.DefaultLimit)
	}
	if c.MaxLimit < c.DefaultLimit {
		return fmt.Errorf("max limit must be >= default limit, got %d < %d", c.MaxLimit, c.DefaultLimit)
	}
	if c.CacheTTL < 0 {
		return fmt.Errorf("cache ttl must not be negative, got %s", c.CacheTTL)
	}
	if c.CacheTTL > 0 && c.CacheSize <= 0 {
		return fmt.Errorf("cache size must be positive when caching is enabled, got %d", c.CacheSize)
	}
	return nil
}

// MinScoreFor returns the gate for the given strategy.
func (c *Config) MinScoreFor(s Strategy) float64 {
	switch s {
	case StrategyBudget:
		return c.MinScore.Budget
	case StrategyPremium:
		return c.MinScore.Premium
	default:
		return c.MinScore.Balanced
	}
}

// Clone returns a copy of the configuration.
func (c *Config) Clone() Config {
	return *c
}
