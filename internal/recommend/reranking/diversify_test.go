// ProcureRec - Procurement Recommendation and Bundle Assembly Engine
// Copyright 2026 ProcureHQ
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/procurehq/procurerec

package reranking

import (
	"fmt"
	"testing"

	"github.com/procurehq/procurerec/internal/recommend"
)

// monoCatList builds n same-category candidates with descending scores.
func monoCatList(category string, n int) []recommend.ScoredCandidate {
	out := make([]recommend.ScoredCandidate, n)
	for i := range out {
		out[i] = recommend.ScoredCandidate{
			ProductID:  fmt.Sprintf("%s-%02d", category, i),
			Category:   category,
			TotalScore: 1 - float64(i)*0.01,
		}
	}
	return out
}

func TestCategoryCapName(t *testing.T) {
	if got := NewCategoryCap().Name(); got != "category_cap" {
		t.Errorf("Name() = %q", got)
	}
}

func TestMaxPerCategory(t *testing.T) {
	c := NewCategoryCap()
	tests := []struct {
		limit int
		want  int
	}{
		{1, 2},
		{5, 2},
		{6, 2},
		{9, 3},
		{30, 10},
	}
	for _, tt := range tests {
		if got := c.maxPerCategory(tt.limit); got != tt.want {
			t.Errorf("maxPerCategory(%d) = %d, want %d", tt.limit, got, tt.want)
		}
	}
}

func TestRerankCapsDominantCategory(t *testing.T) {
	// Ten stationery candidates outrank two cleaning ones; with limit 6 the
	// cap of 2 per category admits two of each, then backfills from the
	// capped stationery remainder up to the full limit.
	ranked := append(monoCatList("stationery", 10), monoCatList("cleaning", 2)...)

	out := NewCategoryCap().Rerank(ranked, 6)
	if len(out) != 6 {
		t.Fatalf("got %d candidates, want 6", len(out))
	}

	counts := map[string]int{}
	for _, c := range out {
		counts[c.Category]++
	}
	if counts["cleaning"] != 2 {
		t.Errorf("cleaning count = %d, want both admitted", counts["cleaning"])
	}
	if counts["stationery"] != 4 {
		t.Errorf("stationery count = %d, want 2 capped + 2 backfilled", counts["stationery"])
	}
}

func TestRerankOutputSortedByScore(t *testing.T) {
	ranked := append(monoCatList("stationery", 8), monoCatList("cleaning", 3)...)

	out := NewCategoryCap().Rerank(ranked, 9)
	for i := 1; i < len(out); i++ {
		if out[i-1].TotalScore < out[i].TotalScore {
			t.Errorf("output not score-ordered at %d: %f < %f", i, out[i-1].TotalScore, out[i].TotalScore)
		}
	}
}

func TestRerankNeverShrinksBelowLimit(t *testing.T) {
	// All candidates share one category; the cap alone would keep 2, but
	// backfill must restore the list to min(limit, len(ranked)).
	ranked := monoCatList("stationery", 10)

	out := NewCategoryCap().Rerank(ranked, 5)
	if len(out) != 5 {
		t.Errorf("got %d candidates, want 5", len(out))
	}

	out = NewCategoryCap().Rerank(monoCatList("stationery", 3), 10)
	if len(out) != 3 {
		t.Errorf("got %d candidates, want all 3 when the list is short", len(out))
	}
}

func TestRerankDegenerateInputs(t *testing.T) {
	c := NewCategoryCap()
	if out := c.Rerank(nil, 5); out != nil {
		t.Errorf("Rerank(nil) = %v, want nil", out)
	}
	if out := c.Rerank(monoCatList("stationery", 3), 0); out != nil {
		t.Errorf("Rerank(limit 0) = %v, want nil", out)
	}
	if out := c.Rerank(monoCatList("stationery", 3), -1); out != nil {
		t.Errorf("Rerank(negative limit) = %v, want nil", out)
	}
}

func TestRerankDoesNotMutateInput(t *testing.T) {
	ranked := append(monoCatList("stationery", 6), monoCatList("cleaning", 2)...)
	first := ranked[0].ProductID

	NewCategoryCap().Rerank(ranked, 4)
	if ranked[0].ProductID != first {
		t.Error("Rerank must not reorder the input slice")
	}
}
