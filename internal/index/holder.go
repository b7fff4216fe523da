// ProcureRec - Procurement Recommendation and Bundle Assembly Engine
// Copyright 2026 ProcureHQ
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/procurehq/procurerec

package index

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/procurehq/procurerec/internal/metrics"
)

// BuildFunc produces a fresh snapshot from current catalog state. The data
// layer supplies it as a closure; the holder never sees raw records.
type BuildFunc func(ctx context.Context) (*Index, error)

// HolderConfig controls snapshot lifetime.
type HolderConfig struct {
	// TTL is the age past which a snapshot is considered stale. Default: 15m.
	TTL time.Duration `koanf:"ttl" json:"ttl"`

	// MinRefreshInterval bounds how often concurrent callers can trigger a
	// rebuild; within the window Refresh serves the current snapshot instead
	// of rebuilding. 0 disables coalescing.
	MinRefreshInterval time.Duration `koanf:"min_refresh_interval" json:"min_refresh_interval"`
}

// DefaultHolderConfig returns the default snapshot lifetime settings.
func DefaultHolderConfig() HolderConfig {
	return HolderConfig{
		TTL:                15 * time.Minute,
		MinRefreshInterval: 30 * time.Second,
	}
}

// Validate checks construction-time invariants.
func (c *HolderConfig) Validate() error {
	if c.TTL <= 0 {
		return fmt.Errorf("ttl must be positive, got %s", c.TTL)
	}
	if c.MinRefreshInterval < 0 {
		return fmt.Errorf("min refresh interval must not be negative, got %s", c.MinRefreshInterval)
	}
	return nil
}

// Holder publishes the current immutable snapshot to readers and owns the
// only write path. Readers capture one reference per request via Current and
// keep using it even while a rebuild runs; Refresh builds off to the side
// and swaps the pointer atomically once the new snapshot is complete.
type Holder struct {
	build   BuildFunc
	cfg     HolderConfig
	limiter *rate.Limiter
	logger  zerolog.Logger

	// refreshMu serializes writers; readers never take it.
	refreshMu sync.Mutex
	current   atomic.Pointer[Index]
}

// NewHolder returns a Holder with no snapshot yet; call Refresh to publish
// the first one.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewHolder(build BuildFunc, cfg HolderConfig, logger zerolog.Logger) (*Holder, error) {
	if build == nil {
		return nil, fmt.Errorf("build func must not be nil")
	}
	if cfg.TTL == 0 {
		cfg.TTL = DefaultHolderConfig().TTL
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid holder config: %w", err)
	}

	var limiter *rate.Limiter
	if cfg.MinRefreshInterval > 0 {
		limiter = rate.NewLimiter(rate.Every(cfg.MinRefreshInterval), 1)
	}
	return &Holder{
		build:   build,
		cfg:     cfg,
		limiter: limiter,
		logger:  logger.With().Str("component", "index-holder").Logger(),
	}, nil
}

// Current returns the published snapshot, or nil before the first Refresh.
func (h *Holder) Current() *Index {
	return h.current.Load()
}

// Stale reports whether the published snapshot is missing or older than TTL.
func (h *Holder) Stale() bool {
	snap := h.current.Load()
	return snap == nil || time.Since(snap.builtAt) > h.cfg.TTL
}

// Refresh builds and publishes a new snapshot. Rebuilds closer together than
// MinRefreshInterval are coalesced: the current snapshot is returned as-is.
// On build failure the previous snapshot stays published.
func (h *Holder) Refresh(ctx context.Context) (*Index, error) {
	if h.limiter != nil && !h.limiter.Allow() {
		if snap := h.current.Load(); snap != nil {
			h.logger.Debug().Msg("refresh coalesced, serving current snapshot")
			return snap, nil
		}
		// No snapshot exists yet; the first build must not be skipped.
	}

	h.refreshMu.Lock()
	defer h.refreshMu.Unlock()

	start := time.Now()
	snap, err := h.build(ctx)
	metrics.RecordIndexBuild(time.Since(start), err)
	if err != nil {
		h.logger.Error().Err(err).Msg("snapshot build failed")
		return nil, fmt.Errorf("refresh snapshot: %w", err)
	}

	h.current.Store(snap)
	metrics.SetIndexedProducts(snap.Len())

	h.logger.Info().
		Int("products", snap.Len()).
		Int("vocab", snap.VocabSize()).
		Dur("took", time.Since(start)).
		Msg("snapshot published")
	return snap, nil
}
