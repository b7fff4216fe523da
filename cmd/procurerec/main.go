// ProcureRec - Procurement Recommendation and Bundle Assembly Engine
// Copyright 2026 ProcureHQ
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/procurehq/procurerec

// Command procurerec wires the recommendation core to its collaborators:
// it loads a JSON catalog export, maintains the similarity snapshot, and
// either answers a single recommendation/bundle query (default) or keeps
// the snapshot fresh under supervision (-serve).
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"

	json "github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/procurehq/procurerec/internal/catalog"
	"github.com/procurehq/procurerec/internal/config"
	"github.com/procurehq/procurerec/internal/index"
	"github.com/procurehq/procurerec/internal/logging"
	"github.com/procurehq/procurerec/internal/recommend"
	"github.com/procurehq/procurerec/internal/recommend/reranking"
	"github.com/procurehq/procurerec/internal/supervisor"
)

func main() {
	var (
		configPath  = flag.String("config", "", "path to YAML config file")
		serve       = flag.Bool("serve", false, "run the snapshot refresh daemon")
		userID      = flag.String("user", "", "buyer id for a one-shot query")
		historyPath = flag.String("history", "", "path to purchase history JSON")
		limit       = flag.Int("limit", 0, "number of recommendations (0 = config default)")
		strategy    = flag.String("strategy", "balanced", "ranking strategy: balanced, budget, premium")
		budget      = flag.Float64("budget", 0, "assemble a bundle under this budget instead of a plain ranking")
		maxItems    = flag.Int("max-items", 5, "bundle size cap when -budget is set")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logging.Fatal().Err(err).Msg("configuration invalid")
	}
	logging.Init(cfg.Logging)
	logger := logging.Logger()

	normalizer, err := catalog.NewNormalizer(cfg.Catalog, logger)
	if err != nil {
		logging.Fatal().Err(err).Msg("catalog normalizer init failed")
	}

	buildCatalog := func() (map[string]*catalog.Product, error) {
		records, err := loadRecords(cfg.CatalogPath)
		if err != nil {
			return nil, err
		}
		return normalizer.Build(records), nil
	}
	buildSnapshot := func(ctx context.Context) (*index.Index, error) {
		products, err := buildCatalog()
		if err != nil {
			return nil, err
		}
		return index.Build(ctx, products, index.WithVectorizer(cfg.Vectorizer))
	}

	holder, err := index.NewHolder(buildSnapshot, cfg.Holder, logger)
	if err != nil {
		logging.Fatal().Err(err).Msg("snapshot holder init failed")
	}

	engine, err := recommend.NewEngine(cfg.Engine, logger, reranking.NewCategoryCap())
	if err != nil {
		logging.Fatal().Err(err).Msg("engine init failed")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if *serve {
		runDaemon(ctx, holder, cfg, logger)
		return
	}

	if err := runQuery(ctx, engine, holder, buildCatalog, queryOptions{
		userID:      *userID,
		historyPath: *historyPath,
		limit:       *limit,
		strategy:    *strategy,
		budget:      *budget,
		maxItems:    *maxItems,
	}); err != nil {
		logging.Fatal().Err(err).Msg("query failed")
	}
}

// runDaemon keeps the similarity snapshot fresh under supervision until the
// process receives SIGINT or SIGTERM.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func runDaemon(ctx context.Context, holder *index.Holder, cfg *config.Config, logger zerolog.Logger) {
	refresher, err := index.NewRefreshService(holder, cfg.Refresh, logger)
	if err != nil {
		logging.Fatal().Err(err).Msg("refresh service init failed")
	}

	tree := supervisor.NewTree(logger, supervisor.DefaultConfig())
	tree.Add(refresher)

	logging.Info().Str("catalog", cfg.CatalogPath).Msg("snapshot daemon starting")
	if err := tree.Serve(ctx); err != nil && ctx.Err() == nil {
		logging.Fatal().Err(err).Msg("supervisor exited")
	}
	logging.Info().Msg("snapshot daemon stopped")
}

type queryOptions struct {
	userID      string
	historyPath string
	limit       int
	strategy    string
	budget      float64
	maxItems    int
}

func runQuery(ctx context.Context, engine *recommend.Engine, holder *index.Holder, buildCatalog func() (map[string]*catalog.Product, error), opts queryOptions) error {
	products, err := buildCatalog()
	if err != nil {
		return err
	}
	snapshot, err := holder.Refresh(ctx)
	if err != nil {
		return err
	}

	var history []recommend.HistoryEvent
	if opts.historyPath != "" {
		data, err := os.ReadFile(opts.historyPath)
		if err != nil {
			return fmt.Errorf("read history: %w", err)
		}
		if err := json.Unmarshal(data, &history); err != nil {
			return fmt.Errorf("parse history: %w", err)
		}
	}

	profile := recommend.BuildProfile(opts.userID, history, products, snapshot)
	req := recommend.Request{
		Profile:  profile,
		Products: products,
		Index:    snapshot,
		Limit:    opts.limit,
		Strategy: recommend.Strategy(opts.strategy),
	}

	var out []byte
	if opts.budget > 0 {
		bundle, err := engine.RecommendBundle(ctx, req, opts.budget, opts.maxItems)
		if err != nil {
			return err
		}
		out, err = bundle.JSON()
		if err != nil {
			return err
		}
	} else {
		resp, err := engine.Recommend(ctx, req)
		if err != nil {
			return err
		}
		out, err = resp.JSON()
		if err != nil {
			return err
		}
	}
	fmt.Println(string(out))
	return nil
}

// loadRecords reads a JSON catalog export: an array of flat string-keyed
// objects. Keys are sorted so extraction fallbacks behave deterministically
// regardless of JSON object iteration order.
func loadRecords(path string) ([]catalog.RawRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	var rows []map[string]string
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}

	records := make([]catalog.RawRecord, 0, len(rows))
	for _, row := range rows {
		keys := make([]string, 0, len(row))
		for k := range row {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		rec := make(catalog.RawRecord, 0, len(row))
		for _, k := range keys {
			rec = append(rec, catalog.Field{Key: k, Value: row[k]})
		}
		records = append(records, rec)
	}
	return records, nil
}
