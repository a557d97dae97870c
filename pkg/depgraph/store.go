package depgraph

import (
	"context"
)

//go:generate go run go.uber.org/mock/mockgen@v0.5.2 -source=store.go -destination=mock.gen.go -package=depgraph

// Store gives access to the dependency graph of products.
type Store interface {
	// FindRepository returns the repository linked to the product, or nil when
	// the product has none.
	FindRepository(ctx context.Context, productID string) (*Repository, error)
	// FindVersionless returns the product's dependencies without a version.
	FindVersionless(ctx context.Context, productID string) ([]Dependency, error)
	// FindDependencies returns every dependency of the product.
	FindDependencies(ctx context.Context, productID string) ([]Dependency, error)
	// ApplyVersionUpdates applies all updates at once: version and purl are set,
	// the version source becomes "lockfile" and any hash gap reason is cleared.
	// Updates run in order. An update whose new purl is already taken in the
	// product, by an existing row or an earlier update, is skipped. It returns
	// the number of dependencies updated.
	ApplyVersionUpdates(ctx context.Context, productID string, updates []VersionUpdate) (int, error)

	// SetRepository links a repository to the product, registering it.
	SetRepository(ctx context.Context, productID string, repo Repository) error
	// AddDependencies inserts or replaces dependencies, keyed by product and purl.
	AddDependencies(ctx context.Context, deps []Dependency) error
}
