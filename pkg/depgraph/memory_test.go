//go:build unit
// +build unit

package depgraph

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func seededMemoryStore(t *testing.T) *MemoryStore {
	t.Helper()
	ctx := context.Background()
	s := NewMemoryStore()
	require.NoError(t, s.SetRepository(ctx, "shop", Repository{
		URL:           "https://github.com/acme/shop",
		DefaultBranch: "main",
		Provider:      "github",
	}))
	require.NoError(t, s.AddDependencies(ctx, []Dependency{
		{ProductID: "shop", Name: "express", PURL: "pkg:npm/express", Ecosystem: "npm", HashGapReason: "no version"},
		{ProductID: "shop", Name: "lodash", PURL: "pkg:npm/lodash@4.17.21", Ecosystem: "npm", Version: "4.17.21"},
		{ProductID: "other", Name: "left-pad", PURL: "pkg:npm/left-pad", Ecosystem: "npm"},
	}))
	return s
}

func TestMemoryStore_FindRepository(t *testing.T) {
	s := seededMemoryStore(t)
	ctx := context.Background()

	repo, err := s.FindRepository(ctx, "shop")
	require.NoError(t, err)
	require.NotNil(t, repo)
	require.Equal(t, "main", repo.DefaultBranch)

	repo, err = s.FindRepository(ctx, "other")
	require.NoError(t, err)
	require.Nil(t, repo)
}

func TestMemoryStore_FindVersionless(t *testing.T) {
	s := seededMemoryStore(t)

	deps, err := s.FindVersionless(context.Background(), "shop")
	require.NoError(t, err)
	require.Len(t, deps, 1)
	require.Equal(t, "express", deps[0].Name)
}

func TestMemoryStore_ApplyVersionUpdates(t *testing.T) {
	s := seededMemoryStore(t)
	ctx := context.Background()

	n, err := s.ApplyVersionUpdates(ctx, "shop", []VersionUpdate{
		{PURL: "pkg:npm/express", Version: "4.18.2", NewPURL: "pkg:npm/express@4.18.2"},
		{PURL: "pkg:npm/missing", Version: "1.0.0", NewPURL: "pkg:npm/missing@1.0.0"},
	})
	require.NoError(t, err)
	require.Equal(t, 1, n)

	deps, err := s.FindDependencies(ctx, "shop")
	require.NoError(t, err)
	require.Equal(t, Dependency{
		ProductID:     "shop",
		Name:          "express",
		PURL:          "pkg:npm/express@4.18.2",
		Ecosystem:     "npm",
		Version:       "4.18.2",
		VersionSource: VersionSourceLockfile,
	}, deps[0])

	versionless, err := s.FindVersionless(ctx, "shop")
	require.NoError(t, err)
	require.Empty(t, versionless)

	// Other products are untouched.
	versionless, err = s.FindVersionless(ctx, "other")
	require.NoError(t, err)
	require.Len(t, versionless, 1)
}

func TestMemoryStore_ApplyVersionUpdatesSkipsTakenPURL(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, s.AddDependencies(ctx, []Dependency{
		{ProductID: "shop", Name: "x", PURL: "pkg:npm/x@1.0.0", Ecosystem: "npm", Version: "1.0.0"},
		{ProductID: "shop", Name: "x", PURL: "pkg:npm/x", Ecosystem: "npm"},
		{ProductID: "shop", Name: "a", PURL: "pkg:npm/a", Ecosystem: "npm"},
		{ProductID: "shop", Name: "b", PURL: "pkg:npm/b", Ecosystem: "npm"},
	}))

	n, err := s.ApplyVersionUpdates(ctx, "shop", []VersionUpdate{
		{PURL: "pkg:npm/x", Version: "1.0.0", NewPURL: "pkg:npm/x@1.0.0"},
		{PURL: "pkg:npm/a", Version: "1.0.0", NewPURL: "pkg:npm/y@1.0.0"},
		{PURL: "pkg:npm/b", Version: "1.0.0", NewPURL: "pkg:npm/y@1.0.0"},
	})
	require.NoError(t, err)
	require.Equal(t, 1, n)

	versionless, err := s.FindVersionless(ctx, "shop")
	require.NoError(t, err)
	require.Len(t, versionless, 2)
	require.Equal(t, "pkg:npm/x", versionless[0].PURL)
	require.Equal(t, "pkg:npm/b", versionless[1].PURL)

	// A later pass hits the same collisions without failing.
	n, err = s.ApplyVersionUpdates(ctx, "shop", []VersionUpdate{
		{PURL: "pkg:npm/x", Version: "1.0.0", NewPURL: "pkg:npm/x@1.0.0"},
	})
	require.NoError(t, err)
	require.Zero(t, n)
}

func TestMemoryStore_AddDependenciesReplacesByPURL(t *testing.T) {
	s := seededMemoryStore(t)
	ctx := context.Background()

	require.NoError(t, s.AddDependencies(ctx, []Dependency{
		{ProductID: "shop", Name: "express", PURL: "pkg:npm/express", Ecosystem: "npm", License: "MIT"},
	}))

	deps, err := s.FindDependencies(ctx, "shop")
	require.NoError(t, err)
	require.Len(t, deps, 2)
	require.Equal(t, "MIT", deps[0].License)
}

func TestMemoryStore_FindDependenciesReturnsCopy(t *testing.T) {
	s := seededMemoryStore(t)
	ctx := context.Background()

	deps, err := s.FindDependencies(ctx, "shop")
	require.NoError(t, err)
	deps[0].Version = "tampered"

	versionless, err := s.FindVersionless(ctx, "shop")
	require.NoError(t, err)
	require.Len(t, versionless, 1)
}
