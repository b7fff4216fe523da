// ProcureRec - Procurement Recommendation and Bundle Assembly Engine
// Copyright 2026 ProcureHQ
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/procurehq/procurerec

// Package metrics exposes Prometheus instrumentation for the recommendation
// pipeline: request throughput and latency, candidate-pool sizes, response
// cache efficiency, snapshot rebuilds, and bundle assembly outcomes.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Recommendation request metrics
	RecommendRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommend_requests_total",
			Help: "Total number of recommendation requests",
		},
		[]string{"strategy", "fallback"},
	)

	RecommendErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommend_errors_total",
			Help: "Total number of failed recommendation requests",
		},
		[]string{"strategy"},
	)

	RecommendDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "recommend_duration_seconds",
			Help:    "Recommendation request duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
		[]string{"strategy"},
	)

	RecommendCandidates = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "recommend_candidates_scored",
			Help:    "Number of candidates scored per recommendation request",
			Buckets: []float64{10, 50, 100, 500, 1000, 5000, 10000},
		},
	)

	// Response cache metrics
	CacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "recommend_cache_hits_total",
			Help: "Total number of recommendation response cache hits",
		},
	)

	CacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "recommend_cache_misses_total",
			Help: "Total number of recommendation response cache misses",
		},
	)

	// Similarity index metrics
	IndexBuildDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "index_build_duration_seconds",
			Help:    "Duration of similarity index snapshot builds in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30},
		},
	)

	IndexBuildErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "index_build_errors_total",
			Help: "Total number of failed snapshot builds",
		},
	)

	IndexedProducts = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "index_products",
			Help: "Number of products in the published similarity snapshot",
		},
	)

	IndexLastBuild = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "index_last_build_timestamp",
			Help: "Unix timestamp of the last successful snapshot build",
		},
	)

	// Bundle assembly metrics
	BundleSize = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "bundle_size",
			Help:    "Number of items in assembled bundles",
			Buckets: []float64{1, 2, 3, 5, 8, 12, 20},
		},
	)

	BundleBudgetUtilization = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "bundle_budget_utilization_ratio",
			Help:    "Fraction of the target budget consumed by assembled bundles",
			Buckets: []float64{0.1, 0.25, 0.5, 0.75, 0.9, 0.95, 1},
		},
	)
)

// RecordRecommendation records one completed recommendation request.
func RecordRecommendation(strategy string, fallback bool, candidates int, duration time.Duration) {
	fb := "false"
	if fallback {
		fb = "true"
	}
	RecommendRequestsTotal.WithLabelValues(strategy, fb).Inc()
	RecommendDuration.WithLabelValues(strategy).Observe(duration.Seconds())
	RecommendCandidates.Observe(float64(candidates))
}

// RecordRecommendError records a failed recommendation request.
func RecordRecommendError(strategy string) {
	RecommendErrors.WithLabelValues(strategy).Inc()
}

// RecordCacheLookup records a response cache hit or miss.
func RecordCacheLookup(hit bool) {
	if hit {
		CacheHits.Inc()
	} else {
		CacheMisses.Inc()
	}
}

// RecordIndexBuild records a snapshot build attempt.
func RecordIndexBuild(duration time.Duration, err error) {
	IndexBuildDuration.Observe(duration.Seconds())
	if err != nil {
		IndexBuildErrors.Inc()
	} else {
		IndexLastBuild.Set(float64(time.Now().Unix()))
	}
}

// SetIndexedProducts updates the published snapshot size gauge.
func SetIndexedProducts(n int) {
	IndexedProducts.Set(float64(n))
}

// RecordBundle records an assembled bundle.
func RecordBundle(size int, budgetUtilization float64) {
	BundleSize.Observe(float64(size))
	BundleBudgetUtilization.Observe(budgetUtilization)
}
