package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/cryptellation/compliance/pkg/audit"
	"github.com/cryptellation/compliance/pkg/compliance"
	"github.com/cryptellation/compliance/pkg/config"
	"github.com/cryptellation/compliance/pkg/depgraph"
	"github.com/cryptellation/compliance/pkg/logging"
	"github.com/cryptellation/compliance/pkg/repofetcher"
	"github.com/cryptellation/compliance/pkg/resolver"
	"github.com/cryptellation/compliance/pkg/sbom"
	"go.uber.org/zap"
)

var errUnknownProduct = errors.New("unknown product")

// app holds the components wired from the configuration.
type app struct {
	cfg      *config.Config
	store    depgraph.Store
	close    func()
	resolver *resolver.Resolver
	auditor  *audit.Auditor
}

func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	tables, err := compliance.LoadTables(cfg.TablesPath)
	if err != nil {
		return nil, err
	}
	engine, err := tables.NewEngine()
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, close: func() {}}
	if cfg.Database.DSN != "" {
		pg, err := depgraph.NewPostgresStore(ctx, cfg.Database.DSN)
		if err != nil {
			return nil, err
		}
		a.store = pg
		a.close = func() { _ = pg.Close() }
	} else {
		a.store = depgraph.NewMemoryStore()
	}

	content := repofetcher.New(repofetcher.GitHubFactory(cfg.GitHub.BaseURL), repofetcher.Options{
		CacheSize: cfg.Fetch.CacheSize,
		CacheTTL:  cfg.Fetch.CacheTTL,
	})
	a.resolver = resolver.New(a.store, content, resolver.WithTimeout(cfg.Fetch.Timeout))

	a.auditor, err = audit.New(a.store, engine, tables.NewConflictDetector(),
		audit.WithResolver(a.resolver),
		audit.WithClassifier(audit.NewStaticClassifier(tables.Categories)),
	)
	if err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

func (a *app) Close() {
	a.close()
}

// prepare loads the product into an in-memory graph. A PostgreSQL graph is
// loaded by the import command only, so resolved versions are kept between runs.
func (a *app) prepare(ctx context.Context, productID string) error {
	p, ok := a.cfg.Product(productID)
	if !ok {
		return fmt.Errorf("%w: %q", errUnknownProduct, productID)
	}
	if a.cfg.Database.DSN != "" {
		return nil
	}
	_, err := a.importProduct(ctx, p)
	return err
}

// importProduct links the product repository and stores its SBOM packages.
func (a *app) importProduct(ctx context.Context, p config.Product) (int, error) {
	if p.Repository.URL != "" {
		provider := p.Repository.Provider
		if provider == "" {
			provider = string(repofetcher.ProviderGitHub)
		}
		err := a.store.SetRepository(ctx, p.ID, depgraph.Repository{
			URL:           p.Repository.URL,
			DefaultBranch: p.Repository.DefaultBranch,
			Provider:      provider,
		})
		if err != nil {
			return 0, err
		}
	}
	if p.SBOM == "" {
		return 0, nil
	}

	f, err := os.Open(p.SBOM)
	if err != nil {
		return 0, fmt.Errorf("failed to open SBOM of %q: %w", p.ID, err)
	}
	defer func() { _ = f.Close() }()

	doc, err := sbom.Import(f, "")
	if err != nil {
		return 0, fmt.Errorf("failed to import SBOM of %q: %w", p.ID, err)
	}
	deps := doc.Dependencies(p.ID)
	if err := a.store.AddDependencies(ctx, deps); err != nil {
		return 0, err
	}
	logging.C(ctx).Info("SBOM imported",
		zap.String("product", p.ID),
		zap.String("format", string(doc.Format)),
		zap.Int("dependencies", len(deps)))
	return len(deps), nil
}
