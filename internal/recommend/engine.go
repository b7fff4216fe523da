// ProcureRec - Procurement Recommendation and Bundle Assembly Engine
// Copyright 2026 ProcureHQ
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/procurehq/procurerec

package recommend

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/procurehq/procurerec/internal/metrics"
)

// ctxCheckStride is how many products are scored between cancellation checks.
const ctxCheckStride = 512

// bundleOversample is how many times maxItems the candidate pool is widened
// before bundle assembly, so the greedy packer has cheaper alternatives when
// top-ranked items blow the budget.
const bundleOversample = 3

type cacheEntry struct {
	response  *Response
	expiresAt time.Time
}

// Engine scores and ranks catalog products against a buyer profile. It is
// stateless per request: every input arrives via Request and the engine
// never mutates it. The response cache is the only shared mutable state.
type Engine struct {
	cfg       Config
	logger    zerolog.Logger
	rerankers []Reranker

	cacheMu sync.Mutex
	cache   map[string]cacheEntry
}

// NewEngine validates cfg and returns a ready engine. Rerankers apply in
// order after scoring; wiring normally passes the category-diversification
// reranker from the reranking subpackage.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewEngine(cfg Config, logger zerolog.Logger, rerankers ...Reranker) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid engine config: %w", err)
	}
	return &Engine{
		cfg:       cfg,
		logger:    logger.With().Str("component", "engine").Logger(),
		rerankers: rerankers,
		cache:     make(map[string]cacheEntry),
	}, nil
}

// Config returns a copy of the engine configuration.
func (e *Engine) Config() Config {
	return e.cfg.Clone()
}

// Recommend ranks all non-purchased products for the request's profile.
// Identical inputs produce identical ordered output. An empty candidate set
// is reported via Response.Reason, not an error; the only hard failure is
// an empty catalog (or an unknown strategy, which is a configuration error).
func (e *Engine) Recommend(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()

	strategy, err := ParseStrategy(string(req.Strategy))
	if err != nil {
		return nil, err
	}
	if len(req.Products) == 0 {
		metrics.RecordRecommendError(string(strategy))
		return nil, ErrEmptyCatalog
	}

	limit := req.Limit
	if limit <= 0 {
		limit = e.cfg.DefaultLimit
	}
	if limit > e.cfg.MaxLimit {
		limit = e.cfg.MaxLimit
	}

	profile := req.Profile
	if profile == nil {
		profile = &UserProfile{}
	}

	key := e.cacheKey(profile, strategy, limit, req)
	if cached := e.cachedResponse(key); cached != nil {
		return cached, nil
	}

	fallback := profile.Cold()
	var candidates []ScoredCandidate
	if fallback {
		candidates, err = e.fallbackCandidates(ctx, req, profile)
	} else {
		candidates, err = e.scoredCandidates(ctx, req, profile, strategy)
	}
	if err != nil {
		metrics.RecordRecommendError(string(strategy))
		return nil, err
	}

	sortCandidates(candidates, strategy)
	for _, reranker := range e.rerankers {
		candidates = reranker.Rerank(candidates, limit)
		sortCandidates(candidates, strategy)
	}
	if len(candidates) > limit {
		candidates = candidates[:limit]
	}

	resp := &Response{
		RequestID:    uuid.NewString(),
		UserID:       profile.UserID,
		Strategy:     strategy,
		GeneratedAt:  time.Now(),
		Candidates:   candidates,
		FallbackUsed: fallback,
	}
	if len(candidates) == 0 {
		resp.Reason = "no candidates cleared the minimum score"
	}

	e.cacheResponse(key, resp)
	metrics.RecordRecommendation(string(strategy), fallback, len(req.Products), time.Since(start))
	e.logger.Debug().
		Str("user", profile.UserID).
		Str("strategy", string(strategy)).
		Int("candidates", len(candidates)).
		Bool("fallback", fallback).
		Dur("took", time.Since(start)).
		Msg("recommendation served")
	return resp, nil
}

// RecommendBundle runs Recommend with an oversampled limit and packs the
// result into a budget-constrained bundle.
func (e *Engine) RecommendBundle(ctx context.Context, req Request, targetBudget float64, maxItems int) (*Bundle, error) {
	if maxItems <= 0 {
		return nil, fmt.Errorf("max items must be positive, got %d", maxItems)
	}
	if targetBudget <= 0 {
		return nil, fmt.Errorf("target budget must be positive, got %f", targetBudget)
	}

	req.Limit = maxItems * bundleOversample
	resp, err := e.Recommend(ctx, req)
	if err != nil {
		return nil, err
	}

	bundle, err := AssembleBundle(resp.Candidates, targetBudget, maxItems)
	if err != nil {
		return nil, err
	}
	bundle.Strategy = resp.Strategy
	return bundle, nil
}

// scoredCandidates scores every non-purchased product and keeps those above
// the strategy's minimum score.
func (e *Engine) scoredCandidates(ctx context.Context, req Request, profile *UserProfile, strategy Strategy) ([]ScoredCandidate, error) {
	catPop := categoryPopularity(req.Products)
	minScore := e.cfg.MinScoreFor(strategy)

	candidates := make([]ScoredCandidate, 0, len(req.Products))
	i := 0
	for id, p := range req.Products {
		if i%ctxCheckStride == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		i++
		if profile.Purchased(id) {
			continue
		}
		c := e.scoreCandidate(p, profile, req.Index, catPop)
		if c.TotalScore >= minScore {
			candidates = append(candidates, c)
		}
	}
	return candidates, nil
}

// fallbackCandidates ranks products for a buyer with no usable history:
// organization-wide popularity carries the score, template hints boost
// products that belong to a typical bundle. No minimum-score gate applies —
// a cold buyer always gets some result.
func (e *Engine) fallbackCandidates(ctx context.Context, req Request, profile *UserProfile) ([]ScoredCandidate, error) {
	maxPop := 0
	for _, p := range req.Products {
		if p.Popularity > maxPop {
			maxPop = p.Popularity
		}
	}

	templateFreq := make(map[string]int)
	for _, hint := range req.TemplateHints {
		for id, freq := range hint.Frequencies {
			if freq > templateFreq[id] {
				templateFreq[id] = freq
			}
		}
		for _, id := range hint.ProductIDs {
			if templateFreq[id] == 0 {
				templateFreq[id] = 1
			}
		}
	}

	candidates := make([]ScoredCandidate, 0, len(req.Products))
	i := 0
	for id, p := range req.Products {
		if i%ctxCheckStride == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		i++
		if profile.Purchased(id) {
			continue
		}

		popNorm := 0.0
		if maxPop > 0 {
			popNorm = float64(p.Popularity) / float64(maxPop)
		}
		tmpl := 0.0
		if f := templateFreq[id]; f > 0 {
			if f > 3 {
				f = 3
			}
			tmpl = float64(f) / 3
		}

		total := clamp01(e.cfg.FallbackScore*(0.5+0.5*popNorm) + 0.15*tmpl)

		explanation := "broadly useful starter item"
		switch {
		case tmpl > 0:
			explanation = "part of a typical purchase bundle"
		case p.Popularity > popularityTier:
			explanation = "frequently purchased across the organization"
		}

		candidates = append(candidates, ScoredCandidate{
			ProductID:  id,
			Category:   p.Category,
			Price:      p.PriceEstimate,
			TotalScore: total,
			ComponentScores: map[string]float64{
				SignalPopularity: popNorm,
				SignalTemplate:   tmpl,
			},
			Confidence:  0.3,
			Explanation: explanation,
		})
	}
	return candidates, nil
}

// sortCandidates orders candidates per strategy. Ties always fall through to
// product id so identical inputs yield identical ordered output regardless
// of map iteration order.
func sortCandidates(candidates []ScoredCandidate, strategy Strategy) {
	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		switch strategy {
		case StrategyBudget:
			if a.Price != b.Price {
				return a.Price < b.Price
			}
		case StrategyPremium:
			if a.Price != b.Price {
				return a.Price > b.Price
			}
		}
		if a.TotalScore != b.TotalScore {
			return a.TotalScore > b.TotalScore
		}
		return a.ProductID < b.ProductID
	})
}

// cacheKey fingerprints the request inputs that determine the response. The
// snapshot build time stands in for index content; the profile fingerprint
// covers history drift for the same user id.
func (e *Engine) cacheKey(profile *UserProfile, strategy Strategy, limit int, req Request) string {
	var snapshot int64
	if req.Index != nil {
		snapshot = req.Index.BuiltAt().UnixNano()
	}
	return fmt.Sprintf("%s|%s|%d|%d|%d|%d|%.2f|%d",
		profile.UserID, strategy, limit, snapshot,
		profile.EventCount, profile.TotalItems, profile.TotalSpent, len(req.Products))
}

func (e *Engine) cachedResponse(key string) *Response {
	if e.cfg.CacheTTL <= 0 {
		return nil
	}
	e.cacheMu.Lock()
	defer e.cacheMu.Unlock()

	entry, ok := e.cache[key]
	if ok && time.Now().Before(entry.expiresAt) {
		metrics.RecordCacheLookup(true)
		return entry.response
	}
	if ok {
		delete(e.cache, key)
	}
	metrics.RecordCacheLookup(false)
	return nil
}

func (e *Engine) cacheResponse(key string, resp *Response) {
	if e.cfg.CacheTTL <= 0 {
		return
	}
	e.cacheMu.Lock()
	defer e.cacheMu.Unlock()

	now := time.Now()
	if len(e.cache) >= e.cfg.CacheSize {
		for k, entry := range e.cache {
			if now.After(entry.expiresAt) {
				delete(e.cache, k)
			}
		}
		// Still full after sweeping: drop one arbitrary entry rather than
		// growing without bound.
		if len(e.cache) >= e.cfg.CacheSize {
			for k := range e.cache {
				delete(e.cache, k)
				break
			}
		}
	}
	e.cache[key] = cacheEntry{response: resp, expiresAt: now.Add(e.cfg.CacheTTL)}
}
