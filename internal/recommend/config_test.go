// ProcureRec - Procurement Recommendation and Bundle Assembly Engine
// Copyright 2026 ProcureHQ
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/procurehq/procurerec

package recommend

import (
	"math"
	"testing"
)

func TestDefaultConfigValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Errorf("DefaultConfig().Validate() error = %v", err)
	}
	if sum := cfg.Weights.Sum(); math.Abs(sum-1) > weightSumTolerance {
		t.Errorf("default weights sum = %f, want 1", sum)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "defaults pass", mutate: func(*Config) {}},
		{name: "weights not summing to 1", mutate: func(c *Config) { c.Weights.Price = 0.5 }, wantErr: true},
		{name: "negative weight", mutate: func(c *Config) { c.Weights.Semantic = -0.1; c.Weights.Category = 0.7 }, wantErr: true},
		{name: "threshold above 1", mutate: func(c *Config) { c.MinScore.Premium = 1.5 }, wantErr: true},
		{name: "negative threshold", mutate: func(c *Config) { c.MinScore.Budget = -0.1 }, wantErr: true},
		{name: "blend above 1", mutate: func(c *Config) { c.CategoryBlend = 1.2 }, wantErr: true},
		{name: "zero fallback score", mutate: func(c *Config) { c.FallbackScore = 0 }, wantErr: true},
		{name: "zero default limit", mutate: func(c *Config) { c.DefaultLimit = 0 }, wantErr: true},
		{name: "max below default limit", mutate: func(c *Config) { c.MaxLimit = 5 }, wantErr: true},
		{name: "negative cache ttl", mutate: func(c *Config) { c.CacheTTL = -1 }, wantErr: true},
		{name: "cache enabled without size", mutate: func(c *Config) { c.CacheSize = 0 }, wantErr: true},
		{name: "caching disabled needs no size", mutate: func(c *Config) { c.CacheTTL = 0; c.CacheSize = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			if err := cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestMinScoreFor(t *testing.T) {
	cfg := DefaultConfig()
	tests := []struct {
		strategy Strategy
		want     float64
	}{
		{StrategyBalanced, 0.15},
		{StrategyBudget, 0.12},
		{StrategyPremium, 0.18},
		{Strategy(""), 0.15},
	}
	for _, tt := range tests {
		if got := cfg.MinScoreFor(tt.strategy); got != tt.want {
			t.Errorf("MinScoreFor(%q) = %f, want %f", tt.strategy, got, tt.want)
		}
	}
}

func TestParseStrategy(t *testing.T) {
	tests := []struct {
		in      string
		want    Strategy
		wantErr bool
	}{
		{"", StrategyBalanced, false},
		{"balanced", StrategyBalanced, false},
		{"budget", StrategyBudget, false},
		{"premium", StrategyPremium, false},
		{"cheapest", "", true},
		{"BALANCED", "", true},
	}
	for _, tt := range tests {
		got, err := ParseStrategy(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseStrategy(%q) = %q, %v; want %q, wantErr %v", tt.in, got, err, tt.want, tt.wantErr)
		}
	}
}

func TestTemplateHintIndexHint(t *testing.T) {
	// Explicit frequencies pass through untouched.
	hint := TemplateHint{Name: "starter", Frequencies: map[string]int{"a": 4}}
	if got := hint.IndexHint(); got.Frequencies["a"] != 4 || got.Name != "starter" {
		t.Errorf("IndexHint() = %+v", got)
	}

	// A bare product list synthesizes frequency 1 per product.
	hint = TemplateHint{Name: "starter", ProductIDs: []string{"a", "b"}}
	got := hint.IndexHint()
	if got.Frequencies["a"] != 1 || got.Frequencies["b"] != 1 {
		t.Errorf("IndexHint() frequencies = %v, want 1 per product", got.Frequencies)
	}
}

func TestConfigClone(t *testing.T) {
	cfg := DefaultConfig()
	clone := cfg.Clone()
	clone.DefaultLimit = 99
	if cfg.DefaultLimit == 99 {
		t.Error("Clone() must not share state with the original")
	}
}
