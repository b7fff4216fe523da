// ProcureRec - Procurement Recommendation and Bundle Assembly Engine
// Copyright 2026 ProcureHQ
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/procurehq/procurerec

// Package reranking adjusts ranked candidate lists after scoring. Rerankers
// implement recommend.Reranker and are injected into the engine at wiring.
package reranking

import (
	"sort"

	"github.com/procurehq/procurerec/internal/recommend"
)

// CategoryCap limits how often one category repeats in the output, walking
// the ranked list in three phases: scan admitting under the cap, backfill
// from the capped remainder if the scan comes up short of limit, then a
// final re-sort by score. The output is never smaller than
// min(limit, len(ranked)).
type CategoryCap struct {
	// floor is the minimum per-category allowance regardless of limit.
	floor int
}

var _ recommend.Reranker = (*CategoryCap)(nil)

// NewCategoryCap returns a reranker with the default per-category floor of 2.
func NewCategoryCap() *CategoryCap {
	return &CategoryCap{floor: 2}
}

// Name identifies the reranker in logs.
func (c *CategoryCap) Name() string {
	return "category_cap"
}

// maxPerCategory scales the cap with the requested result size.
func (c *CategoryCap) maxPerCategory(limit int) int {
	perCat := limit / 3
	if perCat < c.floor {
		perCat = c.floor
	}
	return perCat
}

// Rerank admits candidates in rank order while their category stays under
// the cap; if the walk exhausts the list before limit, the rejected
// remainder re-ranked by raw score backfills the gap, ignoring the cap.
func (c *CategoryCap) Rerank(ranked []recommend.ScoredCandidate, limit int) []recommend.ScoredCandidate {
	if limit <= 0 || len(ranked) == 0 {
		return nil
	}

	maxPer := c.maxPerCategory(limit)
	counts := make(map[string]int)
	admitted := make([]recommend.ScoredCandidate, 0, limit)
	rejected := make([]recommend.ScoredCandidate, 0, len(ranked))

	for _, cand := range ranked {
		if len(admitted) == limit {
			break
		}
		if counts[cand.Category] < maxPer {
			counts[cand.Category]++
			admitted = append(admitted, cand)
		} else {
			rejected = append(rejected, cand)
		}
	}

	if len(admitted) < limit && len(rejected) > 0 {
		sort.SliceStable(rejected, func(i, j int) bool {
			if rejected[i].TotalScore != rejected[j].TotalScore {
				return rejected[i].TotalScore > rejected[j].TotalScore
			}
			return rejected[i].ProductID < rejected[j].ProductID
		})
		for _, cand := range rejected {
			if len(admitted) == limit {
				break
			}
			admitted = append(admitted, cand)
		}
	}

	sort.SliceStable(admitted, func(i, j int) bool {
		if admitted[i].TotalScore != admitted[j].TotalScore {
			return admitted[i].TotalScore > admitted[j].TotalScore
		}
		return admitted[i].ProductID < admitted[j].ProductID
	})
	return admitted
}
