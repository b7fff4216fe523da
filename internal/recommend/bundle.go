// ProcureRec - Procurement Recommendation and Bundle Assembly Engine
// Copyright 2026 ProcureHQ
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/procurehq/procurerec

package recommend

import (
	"fmt"
	"sort"

	"github.com/procurehq/procurerec/internal/metrics"
)

// AssembleBundle greedily selects ranked candidates into a bundle while the
// running cost stays within targetBudget, stopping at maxItems. This is a
// greedy knapsack approximation: admission follows rank order only, so the
// result is budget-feasible but makes no optimality claim. A candidate list
// where nothing is affordable yields a valid empty bundle, not an error;
// non-positive budget or maxItems is a configuration error.
func AssembleBundle(candidates []ScoredCandidate, targetBudget float64, maxItems int) (*Bundle, error) {
	if targetBudget <= 0 {
		return nil, fmt.Errorf("target budget must be positive, got %f", targetBudget)
	}
	if maxItems <= 0 {
		return nil, fmt.Errorf("max items must be positive, got %d", maxItems)
	}

	bundle := &Bundle{
		Items:        make([]ScoredCandidate, 0, maxItems),
		TargetBudget: targetBudget,
		MaxItems:     maxItems,
	}

	categories := make(map[string]struct{})
	confidenceSum := 0.0
	for _, c := range candidates {
		if len(bundle.Items) == maxItems {
			break
		}
		if bundle.TotalCost+c.Price > targetBudget {
			continue
		}
		bundle.Items = append(bundle.Items, c)
		bundle.TotalCost += c.Price
		confidenceSum += c.Confidence
		if c.Category != "" {
			categories[c.Category] = struct{}{}
		}
	}

	bundle.CategoriesCovered = make([]string, 0, len(categories))
	for cat := range categories {
		bundle.CategoriesCovered = append(bundle.CategoriesCovered, cat)
	}
	sort.Strings(bundle.CategoriesCovered)

	bundle.BudgetRemaining = targetBudget - bundle.TotalCost
	bundle.BudgetUsedPercent = bundle.TotalCost / targetBudget * 100
	if len(bundle.Items) > 0 {
		bundle.AvgConfidence = confidenceSum / float64(len(bundle.Items))
	}

	metrics.RecordBundle(len(bundle.Items), bundle.TotalCost/targetBudget)
	return bundle, nil
}
