// ProcureRec - Procurement Recommendation and Bundle Assembly Engine
// Copyright 2026 ProcureHQ
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/procurehq/procurerec

package recommend

import (
	"errors"
	"fmt"
	"time"

	json "github.com/goccy/go-json"

	"github.com/procurehq/procurerec/internal/catalog"
	"github.com/procurehq/procurerec/internal/index"
)

// ErrEmptyCatalog is the only hard failure for a recommendation request:
// with no products there is nothing to rank or fall back to.
var ErrEmptyCatalog = errors.New("recommend: catalog is empty")

// Strategy controls candidate ordering among qualifying candidates.
type Strategy string

const (
	// StrategyBalanced orders by total score.
	StrategyBalanced Strategy = "balanced"
	// StrategyBudget orders ascending by price, score as tiebreak.
	StrategyBudget Strategy = "budget"
	// StrategyPremium orders descending by price, score as tiebreak.
	StrategyPremium Strategy = "premium"
)

// ParseStrategy validates a strategy string. An empty string selects
// balanced; anything else unknown is a configuration error.
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(s) {
	case "":
		return StrategyBalanced, nil
	case StrategyBalanced, StrategyBudget, StrategyPremium:
		return Strategy(s), nil
	default:
		return "", fmt.Errorf("unknown strategy %q (want balanced, budget, or premium)", s)
	}
}

// Signal names used as ComponentScores keys.
const (
	SignalSemantic     = "semantic_similarity"
	SignalCategory     = "category_affinity"
	SignalAvailability = "availability"
	SignalPrice        = "price_fit"
	SignalPopularity   = "popularity"
	SignalTemplate     = "template_affinity"
)

// HistoryEvent is one procurement event from the buyer's purchase history:
// the products bought together, the per-product quantity, and the observed
// unit price (0 when the source system did not record one).
type HistoryEvent struct {
	ProductIDs []string `json:"product_ids"`
	Quantity   int      `json:"quantity"`
	UnitPrice  float64  `json:"unit_price"`
}

// TemplateHint names a typical purchase bundle (e.g. "office starter kit")
// with the products it usually contains and how often each appears. Hints
// enrich index feature text and seed cold-start recommendations.
type TemplateHint struct {
	Name        string         `json:"name"`
	ProductIDs  []string       `json:"product_ids"`
	Frequencies map[string]int `json:"frequencies"`
	AvgPrice    float64        `json:"avg_price"`
}

// IndexHint converts the hint to the index package's feature-enrichment form.
func (t TemplateHint) IndexHint() index.TemplateHint {
	freq := t.Frequencies
	if len(freq) == 0 && len(t.ProductIDs) > 0 {
		freq = make(map[string]int, len(t.ProductIDs))
		for _, id := range t.ProductIDs {
			freq[id] = 1
		}
	}
	return index.TemplateHint{Name: t.Name, Frequencies: freq}
}

// PricePreference summarizes the unit prices a buyer paid within a category.
type PricePreference struct {
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Avg    float64 `json:"avg"`
	Median float64 `json:"median"`
}

// UserProfile is the ephemeral preference model built from purchase history.
// It is a pure function of its inputs and is never persisted by this module.
type UserProfile struct {
	UserID string `json:"user_id"`

	// PurchasedProductIDs are already-owned products, excluded from scoring.
	PurchasedProductIDs map[string]struct{} `json:"-"`

	// CategoryWeights maps category to its fraction of purchased quantity;
	// sums to 1 for non-empty profiles.
	CategoryWeights map[string]float64 `json:"category_weights"`

	// PricePreference holds per-category observed price statistics.
	PricePreference map[string]PricePreference `json:"price_preference"`

	// SemanticCentroid is the normalized mean vector of purchased indexed
	// products. Nil for a cold profile.
	SemanticCentroid index.Vector `json:"-"`

	TotalSpent float64 `json:"total_spent"`
	TotalItems int     `json:"total_items"`
	EventCount int     `json:"event_count"`
}

// Cold reports whether the profile carries no usable purchase history.
func (p *UserProfile) Cold() bool {
	return p == nil || p.EventCount == 0
}

// Purchased reports whether the buyer already owns the product.
func (p *UserProfile) Purchased(id string) bool {
	if p == nil {
		return false
	}
	_, ok := p.PurchasedProductIDs[id]
	return ok
}

// AvgItemPrice returns the buyer's average observed price per item, 0 when
// no priced history exists.
func (p *UserProfile) AvgItemPrice() float64 {
	if p == nil || p.TotalItems == 0 {
		return 0
	}
	return p.TotalSpent / float64(p.TotalItems)
}

// ScoredCandidate is one ranked recommendation. ComponentScores hold each
// signal's raw [0,1] value before weighting; Explanation is cosmetic output
// and carries no contract.
type ScoredCandidate struct {
	ProductID       string             `json:"product_id"`
	Category        string             `json:"category"`
	Price           float64            `json:"price"`
	TotalScore      float64            `json:"total_score"`
	ComponentScores map[string]float64 `json:"component_scores"`
	Confidence      float64            `json:"confidence"`
	Explanation     string             `json:"explanation"`
}

// Reranker adjusts a ranked candidate list after scoring. Implementations
// must not mutate the input slice's candidates.
type Reranker interface {
	Name() string
	Rerank(ranked []ScoredCandidate, limit int) []ScoredCandidate
}

// Request carries one recommendation request. Products and Index are the
// shared immutable snapshot captured by the caller at request start.
type Request struct {
	Profile       *UserProfile
	Products      map[string]*catalog.Product
	Index         *index.Index
	Limit         int
	Strategy      Strategy
	TemplateHints []TemplateHint
}

// Response is the result of a recommendation request. An empty Candidates
// slice with Reason set is the explicit "no recommendations" state — it is
// not an error.
type Response struct {
	RequestID    string            `json:"request_id"`
	UserID       string            `json:"user_id"`
	Strategy     Strategy          `json:"strategy"`
	GeneratedAt  time.Time         `json:"generated_at"`
	Candidates   []ScoredCandidate `json:"candidates"`
	FallbackUsed bool              `json:"fallback_used"`
	Reason       string            `json:"reason,omitempty"`
}

// JSON renders the response for the transport boundary.
func (r *Response) JSON() ([]byte, error) {
	return json.Marshal(r)
}

// Bundle is a budget-constrained selection of ranked candidates. TotalCost
// never exceeds TargetBudget and len(Items) never exceeds MaxItems.
type Bundle struct {
	Items             []ScoredCandidate `json:"items"`
	TotalCost         float64           `json:"total_cost"`
	TargetBudget      float64           `json:"target_budget"`
	MaxItems          int               `json:"max_items"`
	CategoriesCovered []string          `json:"categories_covered"`
	BudgetRemaining   float64           `json:"budget_remaining"`
	BudgetUsedPercent float64           `json:"budget_used_percent"`
	AvgConfidence     float64           `json:"avg_confidence"`
	Strategy          Strategy          `json:"strategy,omitempty"`
}

// Empty reports whether no item could be admitted under the budget.
func (b *Bundle) Empty() bool {
	return len(b.Items) == 0
}

// JSON renders the bundle for the transport boundary.
func (b *Bundle) JSON() ([]byte, error) {
	return json.Marshal(b)
}
