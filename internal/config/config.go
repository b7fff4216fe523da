// ProcureRec - Procurement Recommendation and Bundle Assembly Engine
// Copyright 2026 ProcureHQ
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/procurehq/procurerec

// Package config assembles and validates the daemon configuration from
// struct defaults, an optional YAML file, and environment variables, in
// that precedence order (later layers win).
package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/procurehq/procurerec/internal/catalog"
	"github.com/procurehq/procurerec/internal/index"
	"github.com/procurehq/procurerec/internal/logging"
	"github.com/procurehq/procurerec/internal/recommend"
)

// Config is the full daemon configuration tree.
type Config struct {
	Logging logging.Config `koanf:"logging"`

	// CatalogPath points at the JSON catalog export the daemon loads on
	// startup and on every snapshot refresh.
	CatalogPath string `koanf:"catalog_path" validate:"required"`

	Catalog    catalog.Config         `koanf:"catalog"`
	Vectorizer index.VectorizerConfig `koanf:"vectorizer"`
	Holder     index.HolderConfig     `koanf:"holder"`
	Refresh    index.RefreshConfig    `koanf:"refresh"`
	Engine     recommend.Config       `koanf:"engine"`
}

// Default returns the configuration used when no file or environment
// overrides anything.
func Default() Config {
	return Config{
		Logging:     logging.DefaultConfig(),
		CatalogPath: "catalog.json",
		Catalog:     catalog.DefaultConfig(),
		Vectorizer:  index.DefaultVectorizerConfig(),
		Holder:      index.DefaultHolderConfig(),
		Refresh:     index.DefaultRefreshConfig(),
		Engine:      recommend.DefaultConfig(),
	}
}

// Validate runs struct-tag validation and the per-component Validate methods.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	if err := c.Catalog.Validate(); err != nil {
		return fmt.Errorf("catalog config: %w", err)
	}
	if err := c.Vectorizer.Validate(); err != nil {
		return fmt.Errorf("vectorizer config: %w", err)
	}
	if err := c.Holder.Validate(); err != nil {
		return fmt.Errorf("holder config: %w", err)
	}
	if err := c.Engine.Validate(); err != nil {
		return fmt.Errorf("engine config: %w", err)
	}
	return nil
}
