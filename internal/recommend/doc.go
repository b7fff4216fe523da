// ProcureRec - Procurement Recommendation and Bundle Assembly Engine
// Copyright 2026 ProcureHQ
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/procurehq/procurerec

// Package recommend ranks catalog products for an organizational buyer and
// assembles budget-constrained purchase bundles.
//
// The pipeline is stateless per request over immutable inputs: a normalized
// catalog (internal/catalog), a similarity snapshot (internal/index), and a
// UserProfile built from raw purchase history. Four weighted signals —
// semantic similarity to the buyer's purchase centroid, category affinity,
// availability confidence, and price fit — combine into one [0,1] score per
// candidate. Ranked candidates pass through pluggable rerankers (category
// diversification lives in the reranking subpackage) and can be packed
// greedily into a Bundle under a monetary budget.
//
// Buyers without history never hard-fail: the engine falls back to a
// popularity ranking enriched by bundle-template hints. The only hard
// failure for a request is an empty catalog.
package recommend
