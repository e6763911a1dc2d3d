package main

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/outreach-cli/internal/config"
	"github.com/sells-group/outreach-cli/internal/enrich"
	"github.com/sells-group/outreach-cli/internal/store"
	"github.com/sells-group/outreach-cli/pkg/anymail"
	"github.com/sells-group/outreach-cli/pkg/apollo"
	"github.com/sells-group/outreach-cli/pkg/hunter"
	"github.com/sells-group/outreach-cli/pkg/neverbounce"
	"github.com/sells-group/outreach-cli/pkg/notion"
)

// enrichEnv holds the initialized store, provider registry, routing table,
// and cache used by the enrich/batch/serve commands.
type enrichEnv struct {
	Store    store.Store
	Matrix   *enrich.Matrix
	Registry *enrich.Registry
	Cache    *enrich.Cache // nil when caching is disabled
	Notion   notion.Client // nil unless notion is configured
}

// Close releases resources held by the environment.
func (e *enrichEnv) Close() {
	if e.Store != nil {
		_ = e.Store.Close()
	}
}

func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "sqlite":
		dsn := cfg.Store.DatabaseURL
		if dsn == "" {
			dsn = "outreach.db"
		}
		return store.NewSQLite(dsn)
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL)
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}

// buildRegistry constructs adapters for every provider with credentials.
// Unconfigured providers are simply absent; the router skips them.
func buildRegistry(cfg *config.Config) *enrich.Registry {
	var providers []enrich.Provider

	if cfg.Anymail.Key != "" {
		client := anymail.NewClient(cfg.Anymail.Key,
			anymail.WithBaseURL(cfg.Anymail.BaseURL),
			anymail.WithRateLimit(cfg.Anymail.RateLimit),
		)
		providers = append(providers, enrich.NewAnymailAdapter(client))
	}
	if cfg.Hunter.Key != "" {
		client := hunter.NewClient(cfg.Hunter.Key,
			hunter.WithBaseURL(cfg.Hunter.BaseURL),
			hunter.WithRateLimit(cfg.Hunter.RateLimit),
		)
		providers = append(providers, enrich.NewHunterAdapter(client))
	}
	if cfg.Apollo.Key != "" {
		client := apollo.NewClient(cfg.Apollo.Key,
			apollo.WithBaseURL(cfg.Apollo.BaseURL),
			apollo.WithRateLimit(cfg.Apollo.RateLimit),
		)
		providers = append(providers, enrich.NewApolloAdapter(client))
	}
	if cfg.NeverBounce.Key != "" {
		client := neverbounce.NewClient(cfg.NeverBounce.Key,
			neverbounce.WithBaseURL(cfg.NeverBounce.BaseURL),
			neverbounce.WithRateLimit(cfg.NeverBounce.RateLimit),
		)
		providers = append(providers, enrich.NewNeverBounceAdapter(client))
	}

	return enrich.NewRegistry(providers...)
}

// initEnrich sets up the store, routing table, provider registry, and cache.
// Callers should defer env.Close().
func initEnrich(ctx context.Context) (*enrichEnv, error) {
	if err := cfg.Validate("enrichment"); err != nil {
		return nil, err
	}

	st, err := initStore(ctx)
	if err != nil {
		return nil, err
	}

	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}

	matrix := enrich.DefaultMatrix()
	if cfg.Routing.Table != "" {
		matrix, err = enrich.LoadMatrix(cfg.Routing.Table)
		if err != nil {
			_ = st.Close()
			return nil, eris.Wrap(err, "load routing table")
		}
		zap.L().Info("routing table loaded", zap.String("path", cfg.Routing.Table))
	}

	registry := buildRegistry(cfg)
	zap.L().Info("providers configured", zap.Strings("providers", registry.Names()))

	var cache *enrich.Cache
	if cfg.Enrich.CacheEnabled {
		cache = enrich.NewCache(st, cfg.Enrich.CacheTTLDays)
	} else {
		zap.L().Info("contact cache disabled")
	}

	var notionClient notion.Client
	if cfg.Notion.Token != "" {
		notionClient = notion.NewClient(cfg.Notion.Token)
	}

	return &enrichEnv{
		Store:    st,
		Matrix:   matrix,
		Registry: registry,
		Cache:    cache,
		Notion:   notionClient,
	}, nil
}

// budget returns the per-record resolution budget from config.
func budget() time.Duration {
	if cfg.Enrich.BudgetMs <= 0 {
		return enrich.DefaultBudget
	}
	return time.Duration(cfg.Enrich.BudgetMs) * time.Millisecond
}
