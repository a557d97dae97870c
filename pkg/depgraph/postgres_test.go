//go:build integration
// +build integration

package depgraph

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestPostgresStore_Integration(t *testing.T) {
	dsn := os.Getenv("COMPLIANCE_TEST_PG_DSN")
	if dsn == "" {
		t.Skip("COMPLIANCE_TEST_PG_DSN not set; skipping PostgreSQL integration test")
	}
	ctx := context.Background()

	s, err := NewPostgresStore(ctx, dsn)
	require.NoError(t, err)
	defer func() { _ = s.Close() }()

	product := "test-" + uuid.NewString()

	repo, err := s.FindRepository(ctx, product)
	require.NoError(t, err)
	require.Nil(t, repo)

	require.NoError(t, s.SetRepository(ctx, product, Repository{
		URL:           "https://github.com/acme/shop",
		DefaultBranch: "main",
		Provider:      "github",
	}))
	require.NoError(t, s.AddDependencies(ctx, []Dependency{
		{ProductID: product, Name: "express", PURL: "pkg:npm/express", Ecosystem: "npm", HashGapReason: "no version", Depth: "direct"},
		{ProductID: product, Name: "lodash", PURL: "pkg:npm/lodash@4.17.21", Ecosystem: "npm", Version: "4.17.21", Depth: "transitive"},
	}))

	repo, err = s.FindRepository(ctx, product)
	require.NoError(t, err)
	require.Equal(t, "main", repo.DefaultBranch)

	versionless, err := s.FindVersionless(ctx, product)
	require.NoError(t, err)
	require.Len(t, versionless, 1)
	require.Equal(t, "no version", versionless[0].HashGapReason)

	n, err := s.ApplyVersionUpdates(ctx, product, []VersionUpdate{
		{PURL: "pkg:npm/express", Version: "4.18.2", NewPURL: "pkg:npm/express@4.18.2"},
	})
	require.NoError(t, err)
	require.Equal(t, 1, n)

	versionless, err = s.FindVersionless(ctx, product)
	require.NoError(t, err)
	require.Empty(t, versionless)

	deps, err := s.FindDependencies(ctx, product)
	require.NoError(t, err)
	require.Len(t, deps, 2)
	require.Equal(t, "pkg:npm/express@4.18.2", deps[0].PURL)
	require.Equal(t, VersionSourceLockfile, deps[0].VersionSource)
	require.Empty(t, deps[0].HashGapReason)
}

func TestPostgresStore_UpdatesAreAtomic(t *testing.T) {
	dsn := os.Getenv("COMPLIANCE_TEST_PG_DSN")
	if dsn == "" {
		t.Skip("COMPLIANCE_TEST_PG_DSN not set; skipping PostgreSQL integration test")
	}
	ctx := context.Background()

	s, err := NewPostgresStore(ctx, dsn)
	require.NoError(t, err)
	defer func() { _ = s.Close() }()

	product := "test-" + uuid.NewString()
	require.NoError(t, s.AddDependencies(ctx, []Dependency{
		{ProductID: product, Name: "a", PURL: "pkg:npm/a", Ecosystem: "npm"},
		{ProductID: product, Name: "b", PURL: "pkg:npm/b", Ecosystem: "npm"},
	}))

	// PostgreSQL rejects NUL bytes in text, so the second update fails and
	// the whole batch must be rolled back.
	_, err = s.ApplyVersionUpdates(ctx, product, []VersionUpdate{
		{PURL: "pkg:npm/a", Version: "1.0.0", NewPURL: "pkg:npm/a@1.0.0"},
		{PURL: "pkg:npm/b", Version: "1.0.0\x00", NewPURL: "pkg:npm/b@1.0.0"},
	})
	require.Error(t, err)

	versionless, err := s.FindVersionless(ctx, product)
	require.NoError(t, err)
	require.Len(t, versionless, 2)
}

func TestPostgresStore_UpdatesSkipTakenPURL(t *testing.T) {
	dsn := os.Getenv("COMPLIANCE_TEST_PG_DSN")
	if dsn == "" {
		t.Skip("COMPLIANCE_TEST_PG_DSN not set; skipping PostgreSQL integration test")
	}
	ctx := context.Background()

	s, err := NewPostgresStore(ctx, dsn)
	require.NoError(t, err)
	defer func() { _ = s.Close() }()

	product := "test-" + uuid.NewString()
	require.NoError(t, s.AddDependencies(ctx, []Dependency{
		{ProductID: product, Name: "x", PURL: "pkg:npm/x@1.0.0", Ecosystem: "npm", Version: "1.0.0"},
		{ProductID: product, Name: "x", PURL: "pkg:npm/x", Ecosystem: "npm"},
		{ProductID: product, Name: "a", PURL: "pkg:npm/a", Ecosystem: "npm"},
		{ProductID: product, Name: "b", PURL: "pkg:npm/b", Ecosystem: "npm"},
	}))

	updates := []VersionUpdate{
		{PURL: "pkg:npm/x", Version: "1.0.0", NewPURL: "pkg:npm/x@1.0.0"},
		{PURL: "pkg:npm/a", Version: "1.0.0", NewPURL: "pkg:npm/y@1.0.0"},
		{PURL: "pkg:npm/b", Version: "1.0.0", NewPURL: "pkg:npm/y@1.0.0"},
	}
	n, err := s.ApplyVersionUpdates(ctx, product, updates)
	require.NoError(t, err)
	require.Equal(t, 1, n)

	versionless, err := s.FindVersionless(ctx, product)
	require.NoError(t, err)
	require.Len(t, versionless, 2)

	// A later pass hits the same collisions without failing.
	n, err = s.ApplyVersionUpdates(ctx, product, updates)
	require.NoError(t, err)
	require.Zero(t, n)
}
