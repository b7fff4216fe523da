// ProcureRec - Procurement Recommendation and Bundle Assembly Engine
// Copyright 2026 ProcureHQ
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/procurehq/procurerec

// Package supervisor runs long-lived services under a suture supervisor so
// a panicking or failing service restarts with backoff instead of taking
// the daemon down.
package supervisor

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/thejerf/suture/v4"
	"github.com/thejerf/sutureslog"

	"github.com/procurehq/procurerec/internal/logging"
)

// Config holds supervisor failure-handling parameters.
type Config struct {
	// FailureThreshold is the failure count before entering backoff. Default: 5.
	FailureThreshold float64 `koanf:"failure_threshold" json:"failure_threshold"`

	// FailureDecay is the failure decay rate in seconds. Default: 30.
	FailureDecay float64 `koanf:"failure_decay" json:"failure_decay"`

	// FailureBackoff is the wait once the threshold is exceeded. Default: 15s.
	FailureBackoff time.Duration `koanf:"failure_backoff" json:"failure_backoff"`

	// ShutdownTimeout bounds graceful shutdown. Default: 10s.
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" json:"shutdown_timeout"`
}

// DefaultConfig returns suture's documented production defaults.
func DefaultConfig() Config {
	return Config{
		FailureThreshold: 5.0,
		FailureDecay:     30.0,
		FailureBackoff:   15 * time.Second,
		ShutdownTimeout:  10 * time.Second,
	}
}

// Tree is the daemon's supervisor. ProcureRec runs few enough services that
// one flat layer suffices; failure isolation between layers is not needed.
type Tree struct {
	root *suture.Supervisor
}

// NewTree creates the supervisor with supervision events logged through the
// given zerolog logger (bridged to slog for sutureslog).
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewTree(logger zerolog.Logger, cfg Config) *Tree {
	if cfg.FailureThreshold == 0 {
		cfg.FailureThreshold = 5.0
	}
	if cfg.FailureDecay == 0 {
		cfg.FailureDecay = 30.0
	}
	if cfg.FailureBackoff == 0 {
		cfg.FailureBackoff = 15 * time.Second
	}
	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = 10 * time.Second
	}

	// MustHook has a pointer receiver; the handler must be addressable.
	handler := &sutureslog.Handler{Logger: logging.NewSlogLogger(logger)}

	root := suture.New("procurerec", suture.Spec{
		EventHook:        handler.MustHook(),
		FailureThreshold: cfg.FailureThreshold,
		FailureDecay:     cfg.FailureDecay,
		FailureBackoff:   cfg.FailureBackoff,
		Timeout:          cfg.ShutdownTimeout,
	})
	return &Tree{root: root}
}

// Add registers a service with the supervisor.
func (t *Tree) Add(svc suture.Service) suture.ServiceToken {
	return t.root.Add(svc)
}

// Serve runs the tree until ctx is canceled.
func (t *Tree) Serve(ctx context.Context) error {
	return t.root.Serve(ctx)
}

// ServeBackground runs the tree in a goroutine and returns its exit channel.
func (t *Tree) ServeBackground(ctx context.Context) <-chan error {
	return t.root.ServeBackground(ctx)
}
