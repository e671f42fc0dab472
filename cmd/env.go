package main

import (
	"context"
	"os"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/tripcraft/tripcraft/internal/catalog"
	"github.com/tripcraft/tripcraft/internal/orchestrator"
	"github.com/tripcraft/tripcraft/internal/retrieval"
	"github.com/tripcraft/tripcraft/internal/store"
	"github.com/tripcraft/tripcraft/internal/verify"
	"github.com/tripcraft/tripcraft/pkg/amadeus"
	"github.com/tripcraft/tripcraft/pkg/llm"
	"github.com/tripcraft/tripcraft/pkg/opentrip"
)

// planEnv bundles everything a planning command needs.
type planEnv struct {
	Store   store.Store
	Catalog *catalog.Catalog
	Planner *orchestrator.Planner
}

func (e *planEnv) Close() {
	if err := e.Store.Close(); err != nil {
		zap.L().Warn("failed to close store", zap.Error(err))
	}
}

// initStore opens and migrates just the trip store, for commands that do
// not plan.
func initStore(ctx context.Context) (store.Store, error) {
	st, err := store.Open(ctx, cfg.Store)
	if err != nil {
		return nil, eris.Wrap(err, "open store")
	}
	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}
	return st, nil
}

// initPlanner wires store, catalog, API clients, retriever, and planner
// from the loaded config. Live API clients are optional; without keys the
// retriever starts at the catalog tier.
func initPlanner(ctx context.Context) (*planEnv, error) {
	st, err := store.Open(ctx, cfg.Store)
	if err != nil {
		return nil, eris.Wrap(err, "open store")
	}
	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}

	cat, err := loadCatalog()
	if err != nil {
		_ = st.Close()
		return nil, err
	}

	clients := retrieval.Clients{Model: cfg.Anthropic.Model}
	if cfg.OpenTrip.Key != "" {
		clients.OpenTrip = opentrip.NewClient(cfg.OpenTrip.Key, opentrip.WithBaseURL(cfg.OpenTrip.BaseURL))
	} else {
		zap.L().Info("no OpenTrip key, destination retrieval starts at the catalog tier")
	}
	if cfg.Amadeus.Key != "" {
		clients.Amadeus = amadeus.NewClient(cfg.Amadeus.Key, cfg.Amadeus.Secret, amadeus.WithBaseURL(cfg.Amadeus.BaseURL))
	} else {
		zap.L().Info("no Amadeus key, transport retrieval starts at the catalog tier")
	}
	if cfg.Anthropic.Key == "" {
		return nil, eris.New("anthropic key is required for the generative fallback tier")
	}
	clients.LLM = llm.NewClient(cfg.Anthropic.Key, cfg.Anthropic.Model)

	retriever := retrieval.BuildRetriever(cfg.Retrieval, cat, clients)
	planner := orchestrator.New(st, retriever, verify.New(cfg.Verify.BudgetTolerancePct),
		time.Duration(cfg.Orchestrator.DeadlineSecs)*time.Second)

	return &planEnv{Store: st, Catalog: cat, Planner: planner}, nil
}

// loadCatalog reads the seed directory, tolerating its absence: planning
// still works on live APIs and generation alone.
func loadCatalog() (*catalog.Catalog, error) {
	if _, err := os.Stat(cfg.Catalog.Dir); os.IsNotExist(err) {
		zap.L().Warn("catalog dir missing, catalog tier will be empty", zap.String("dir", cfg.Catalog.Dir))
		return catalog.New(nil, nil), nil
	}
	cat, err := catalog.Load(cfg.Catalog.Dir, catalog.WithFuzzyThreshold(cfg.Retrieval.FuzzyThreshold))
	if err != nil {
		return nil, eris.Wrap(err, "load catalog")
	}
	return cat, nil
}
