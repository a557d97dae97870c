package depgraph

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// PostgresStore is a Store backed by PostgreSQL through the pgx driver.
type PostgresStore struct {
	db *sql.DB

	schemaOnce sync.Once
	schemaErr  error
}

// Ensure PostgresStore implements Store.
var _ Store = (*PostgresStore)(nil)

// NewPostgresStore connects to the database at dsn and creates the schema
// when missing.
func NewPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	db, err := sql.Open("pgx", strings.TrimSpace(dsn))
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	s := &PostgresStore{db: db}
	if err := s.ensureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return s, nil
}

// Close releases the database connections.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

func (s *PostgresStore) ensureSchema(ctx context.Context) error {
	s.schemaOnce.Do(func() {
		_, s.schemaErr = s.db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS product_repositories (
  product_id TEXT PRIMARY KEY,
  url TEXT NOT NULL,
  default_branch TEXT NOT NULL DEFAULT '',
  provider TEXT NOT NULL DEFAULT 'github'
);

CREATE TABLE IF NOT EXISTS dependencies (
  product_id TEXT NOT NULL,
  purl TEXT NOT NULL,
  name TEXT NOT NULL DEFAULT '',
  ecosystem TEXT NOT NULL DEFAULT '',
  version TEXT NOT NULL DEFAULT '',
  version_source TEXT NOT NULL DEFAULT '',
  hash_gap_reason TEXT,
  license TEXT NOT NULL DEFAULT '',
  category TEXT NOT NULL DEFAULT '',
  depth TEXT NOT NULL DEFAULT 'transitive',
  PRIMARY KEY (product_id, purl)
);
CREATE INDEX IF NOT EXISTS idx_dependencies_versionless ON dependencies (product_id) WHERE version = '';
`)
	})
	return s.schemaErr
}

// FindRepository implements Store.
func (s *PostgresStore) FindRepository(ctx context.Context, productID string) (*Repository, error) {
	var repo Repository
	err := s.db.QueryRowContext(ctx, `SELECT url, default_branch, provider
FROM product_repositories WHERE product_id = $1`, productID).
		Scan(&repo.URL, &repo.DefaultBranch, &repo.Provider)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query repository of %q: %w", productID, err)
	}
	return &repo, nil
}

const dependencyColumns = `product_id, purl, name, ecosystem, version, version_source,
hash_gap_reason, license, category, depth`

// FindVersionless implements Store.
func (s *PostgresStore) FindVersionless(ctx context.Context, productID string) ([]Dependency, error) {
	return s.queryDependencies(ctx, `SELECT `+dependencyColumns+`
FROM dependencies WHERE product_id = $1 AND version = '' ORDER BY purl`, productID)
}

// FindDependencies implements Store.
func (s *PostgresStore) FindDependencies(ctx context.Context, productID string) ([]Dependency, error) {
	return s.queryDependencies(ctx, `SELECT `+dependencyColumns+`
FROM dependencies WHERE product_id = $1 ORDER BY purl`, productID)
}

func (s *PostgresStore) queryDependencies(ctx context.Context, query string, args ...any) ([]Dependency, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query dependencies: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var res []Dependency
	for rows.Next() {
		var (
			d   Dependency
			gap sql.NullString
		)
		if err := rows.Scan(&d.ProductID, &d.PURL, &d.Name, &d.Ecosystem, &d.Version,
			&d.VersionSource, &gap, &d.License, &d.Category, &d.Depth); err != nil {
			return nil, fmt.Errorf("scan dependency: %w", err)
		}
		d.HashGapReason = gap.String
		res = append(res, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate dependencies: %w", err)
	}
	return res, nil
}

// ApplyVersionUpdates implements Store. All updates run in one transaction.
func (s *PostgresStore) ApplyVersionUpdates(ctx context.Context, productID string, updates []VersionUpdate) (int, error) {
	if len(updates) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `UPDATE dependencies
SET version = $3, purl = $4, version_source = $5, hash_gap_reason = NULL
WHERE product_id = $1 AND purl = $2
  AND NOT EXISTS (SELECT 1 FROM dependencies WHERE product_id = $1 AND purl = $4)`)
	if err != nil {
		return 0, fmt.Errorf("prepare update: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	count := 0
	for _, u := range updates {
		res, err := stmt.ExecContext(ctx, productID, u.PURL, u.Version, u.NewPURL, VersionSourceLockfile)
		if err != nil {
			return 0, fmt.Errorf("update %s: %w", u.PURL, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("update %s: %w", u.PURL, err)
		}
		count += int(n)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit updates: %w", err)
	}
	return count, nil
}

// SetRepository implements Store.
func (s *PostgresStore) SetRepository(ctx context.Context, productID string, repo Repository) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO product_repositories (product_id, url, default_branch, provider)
VALUES ($1, $2, $3, $4)
ON CONFLICT (product_id) DO UPDATE SET url = EXCLUDED.url,
  default_branch = EXCLUDED.default_branch, provider = EXCLUDED.provider`,
		productID, repo.URL, repo.DefaultBranch, repo.Provider)
	if err != nil {
		return fmt.Errorf("upsert repository of %q: %w", productID, err)
	}
	return nil
}

// AddDependencies implements Store.
func (s *PostgresStore) AddDependencies(ctx context.Context, deps []Dependency) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, d := range deps {
		var gap sql.NullString
		if d.HashGapReason != "" {
			gap = sql.NullString{String: d.HashGapReason, Valid: true}
		}
		_, err := tx.ExecContext(ctx, `INSERT INTO dependencies (`+dependencyColumns+`)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
ON CONFLICT (product_id, purl) DO UPDATE SET name = EXCLUDED.name,
  ecosystem = EXCLUDED.ecosystem, version = EXCLUDED.version,
  version_source = EXCLUDED.version_source, hash_gap_reason = EXCLUDED.hash_gap_reason,
  license = EXCLUDED.license, category = EXCLUDED.category, depth = EXCLUDED.depth`,
			d.ProductID, d.PURL, d.Name, d.Ecosystem, d.Version, d.VersionSource,
			gap, d.License, d.Category, d.Depth)
		if err != nil {
			return fmt.Errorf("insert %s: %w", d.PURL, err)
		}
	}
	return tx.Commit()
}
