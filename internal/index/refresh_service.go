// ProcureRec - Procurement Recommendation and Bundle Assembly Engine
// Copyright 2026 ProcureHQ
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/procurehq/procurerec

package index

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/thejerf/suture/v4"
)

// RefreshConfig controls the periodic snapshot refresh service.
type RefreshConfig struct {
	// Interval between staleness checks. Default: 1m.
	Interval time.Duration `koanf:"interval" json:"interval"`

	// OnStartup triggers an immediate refresh when the service starts.
	// Default: true.
	OnStartup bool `koanf:"on_startup" json:"on_startup"`
}

// DefaultRefreshConfig returns the default refresh schedule.
func DefaultRefreshConfig() RefreshConfig {
	return RefreshConfig{
		Interval:  time.Minute,
		OnStartup: true,
	}
}

// RefreshService keeps a Holder's snapshot fresh under supervision. It checks
// staleness on a ticker and rebuilds only when the TTL has lapsed, so the
// check interval can be much shorter than the snapshot TTL.
type RefreshService struct {
	holder *Holder
	cfg    RefreshConfig
	logger zerolog.Logger
}

var _ suture.Service = (*RefreshService)(nil)

// NewRefreshService wires a Holder into a supervisable service.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewRefreshService(holder *Holder, cfg RefreshConfig, logger zerolog.Logger) (*RefreshService, error) {
	if holder == nil {
		return nil, fmt.Errorf("holder must not be nil")
	}
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultRefreshConfig().Interval
	}
	return &RefreshService{
		holder: holder,
		cfg:    cfg,
		logger: logger.With().Str("service", "index-refresh").Logger(),
	}, nil
}

// Serve runs the refresh loop until ctx is canceled. A failed refresh is
// logged and retried on the next tick rather than crashing the service; the
// previous snapshot keeps serving readers throughout.
func (s *RefreshService) Serve(ctx context.Context) error {
	if s.cfg.OnStartup {
		if _, err := s.holder.Refresh(ctx); err != nil {
			s.logger.Warn().Err(err).Msg("startup refresh failed")
		}
	}

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Debug().Msg("refresh service stopping")
			return ctx.Err()
		case <-ticker.C:
			if !s.holder.Stale() {
				continue
			}
			if _, err := s.holder.Refresh(ctx); err != nil {
				s.logger.Warn().Err(err).Msg("scheduled refresh failed")
			}
		}
	}
}

// String identifies the service in supervisor logs.
func (s *RefreshService) String() string {
	return "index-refresh"
}
