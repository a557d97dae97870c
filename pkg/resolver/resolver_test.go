//go:build unit
// +build unit

package resolver

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/cryptellation/compliance/pkg/depgraph"
	"github.com/cryptellation/compliance/pkg/repofetcher"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

const (
	product = "shop"
	token   = "gh-token"
)

const lockfileV3 = `{
  "name": "shop",
  "lockfileVersion": 3,
  "packages": {
    "": {"name": "shop", "version": "1.0.0"},
    "node_modules/express": {"version": "4.18.2"}
  }
}`

var lockRef = repofetcher.FileRef{
	Provider: repofetcher.ProviderGitHub,
	Owner:    "acme",
	Repo:     "shop",
	Branch:   "main",
	Path:     "package-lock.json",
}

func newStore(t *testing.T, deps ...depgraph.Dependency) *depgraph.MemoryStore {
	t.Helper()
	ctx := context.Background()
	s := depgraph.NewMemoryStore()
	require.NoError(t, s.SetRepository(ctx, product, depgraph.Repository{
		URL:           "https://github.com/acme/shop.git",
		DefaultBranch: "main",
		Provider:      "github",
	}))
	for i := range deps {
		deps[i].ProductID = product
	}
	require.NoError(t, s.AddDependencies(ctx, deps))
	return s
}

func express() depgraph.Dependency {
	return depgraph.Dependency{
		Name:          "express",
		PURL:          "pkg:npm/express",
		Ecosystem:     "npm",
		HashGapReason: "version unknown",
	}
}

func TestResolve_LockfileV3(t *testing.T) {
	ctrl := gomock.NewController(t)
	content := repofetcher.NewMockContentProvider(ctrl)
	store := newStore(t, express())
	ctx := context.Background()

	content.EXPECT().GetFileContent(gomock.Any(), lockRef, token).Return([]byte(lockfileV3), nil)

	res, err := New(store, content).Resolve(ctx, product, token)
	require.NoError(t, err)
	require.Equal(t, LockfileResult{Resolved: 1, TotalNoVersion: 1, LockfileFound: true}, res)

	deps, err := store.FindDependencies(ctx, product)
	require.NoError(t, err)
	require.Len(t, deps, 1)
	require.Equal(t, "pkg:npm/express@4.18.2", deps[0].PURL)
	require.Equal(t, "4.18.2", deps[0].Version)
	require.Equal(t, depgraph.VersionSourceLockfile, deps[0].VersionSource)
	require.Empty(t, deps[0].HashGapReason)
}

func TestResolve_Idempotent(t *testing.T) {
	ctrl := gomock.NewController(t)
	content := repofetcher.NewMockContentProvider(ctrl)
	store := newStore(t, express())
	r := New(store, content)
	ctx := context.Background()

	content.EXPECT().GetFileContent(gomock.Any(), lockRef, token).Return([]byte(lockfileV3), nil).Times(1)

	first, err := r.Resolve(ctx, product, token)
	require.NoError(t, err)
	require.Equal(t, 1, first.Resolved)

	second, err := r.Resolve(ctx, product, token)
	require.NoError(t, err)
	require.Equal(t, 0, second.Resolved)
	require.Equal(t, 0, second.TotalNoVersion)
}

func TestResolve_VersionedCopyAlreadyListed(t *testing.T) {
	ctrl := gomock.NewController(t)
	content := repofetcher.NewMockContentProvider(ctrl)
	store := newStore(t, express(), depgraph.Dependency{
		Name:      "express",
		PURL:      "pkg:npm/express@4.18.2",
		Ecosystem: "npm",
		Version:   "4.18.2",
	})
	ctx := context.Background()

	content.EXPECT().GetFileContent(gomock.Any(), lockRef, token).Return([]byte(lockfileV3), nil).Times(2)

	for i := 0; i < 2; i++ {
		res, err := New(store, content).Resolve(ctx, product, token)
		require.NoError(t, err)
		require.Equal(t, LockfileResult{Resolved: 0, TotalNoVersion: 1, LockfileFound: true}, res)
	}
}

func TestResolve_MissingCredentials(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := depgraph.NewMockStore(ctrl)
	content := repofetcher.NewMockContentProvider(ctrl)

	_, err := New(store, content).Resolve(context.Background(), product, "")
	require.ErrorIs(t, err, ErrMissingCredentials)
}

func TestResolve_NoRepository(t *testing.T) {
	ctrl := gomock.NewController(t)
	content := repofetcher.NewMockContentProvider(ctrl)
	store := depgraph.NewMemoryStore()
	require.NoError(t, store.AddDependencies(context.Background(), []depgraph.Dependency{
		{ProductID: product, Name: "express", PURL: "pkg:npm/express", Ecosystem: "npm"},
	}))

	res, err := New(store, content).Resolve(context.Background(), product, token)
	require.NoError(t, err)
	require.Equal(t, LockfileResult{}, res)
}

func TestResolve_NothingVersionless(t *testing.T) {
	ctrl := gomock.NewController(t)
	content := repofetcher.NewMockContentProvider(ctrl)
	store := newStore(t, depgraph.Dependency{
		Name: "express", PURL: "pkg:npm/express@4.18.2", Ecosystem: "npm", Version: "4.18.2",
	})

	// No fetch is expected: the content provider mock fails on any call.
	res, err := New(store, content).Resolve(context.Background(), product, token)
	require.NoError(t, err)
	require.Equal(t, LockfileResult{}, res)
}

func TestResolve_LockfileUnavailable(t *testing.T) {
	cases := []struct {
		name  string
		err   error
		stage Stage
	}{
		{"not found", fmt.Errorf("%w: package-lock.json", repofetcher.ErrNotFound), StageFetch},
		{"forbidden", fmt.Errorf("%w: package-lock.json", repofetcher.ErrForbidden), StageFetch},
		{"unsupported provider", repofetcher.ErrUnsupportedProvider, StageFetch},
		{"network", errors.New("connection reset"), StageFetch},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			content := repofetcher.NewMockContentProvider(ctrl)
			store := newStore(t, express())

			content.EXPECT().GetFileContent(gomock.Any(), lockRef, token).Return(nil, tc.err)

			res, err := New(store, content).Resolve(context.Background(), product, token)
			require.NoError(t, err)
			require.False(t, res.LockfileFound)
			require.Equal(t, 0, res.Resolved)
			require.Equal(t, 1, res.TotalNoVersion)
			require.Len(t, res.Diagnostics, 1)
			require.Equal(t, tc.stage, res.Diagnostics[0].Stage)
		})
	}
}

func TestResolve_FetchTimeout(t *testing.T) {
	ctrl := gomock.NewController(t)
	content := repofetcher.NewMockContentProvider(ctrl)
	store := newStore(t, express())

	content.EXPECT().GetFileContent(gomock.Any(), lockRef, token).DoAndReturn(
		func(ctx context.Context, _ repofetcher.FileRef, _ string) ([]byte, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		})

	start := time.Now()
	res, err := New(store, content, WithTimeout(20*time.Millisecond)).
		Resolve(context.Background(), product, token)
	require.NoError(t, err)
	require.Less(t, time.Since(start), 5*time.Second)
	require.False(t, res.LockfileFound)
	require.Equal(t, 0, res.Resolved)
	require.Len(t, res.Diagnostics, 1)
	require.Contains(t, res.Diagnostics[0].Message, "timed out")
}

func TestResolve_Unparseable(t *testing.T) {
	for name, body := range map[string]string{
		"invalid json":  `{"packages": `,
		"unknown shape": `{"name": "shop", "lockfileVersion": 3}`,
	} {
		t.Run(name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			content := repofetcher.NewMockContentProvider(ctrl)
			store := newStore(t, express())

			content.EXPECT().GetFileContent(gomock.Any(), lockRef, token).Return([]byte(body), nil)

			res, err := New(store, content).Resolve(context.Background(), product, token)
			require.NoError(t, err)
			require.True(t, res.LockfileFound)
			require.Equal(t, 0, res.Resolved)
			require.Len(t, res.Diagnostics, 1)
			require.Equal(t, StageParse, res.Diagnostics[0].Stage)
		})
	}
}

func TestResolve_SkipsOtherEcosystems(t *testing.T) {
	ctrl := gomock.NewController(t)
	content := repofetcher.NewMockContentProvider(ctrl)
	store := newStore(t,
		express(),
		depgraph.Dependency{Name: "requests", PURL: "pkg:pypi/requests", Ecosystem: "pypi"},
	)

	content.EXPECT().GetFileContent(gomock.Any(), lockRef, token).Return([]byte(lockfileV3), nil)

	res, err := New(store, content).Resolve(context.Background(), product, token)
	require.NoError(t, err)
	require.Equal(t, 1, res.Resolved)
	require.Equal(t, 1, res.TotalNoVersion)

	versionless, err := store.FindVersionless(context.Background(), product)
	require.NoError(t, err)
	require.Len(t, versionless, 1)
	require.Equal(t, "requests", versionless[0].Name)
}

func TestResolve_ScopedAndUnmatchedPackages(t *testing.T) {
	ctrl := gomock.NewController(t)
	content := repofetcher.NewMockContentProvider(ctrl)
	store := newStore(t,
		depgraph.Dependency{Name: "@babel/core", PURL: "pkg:npm/%40babel/core", Ecosystem: "npm"},
		depgraph.Dependency{Name: "left-pad", PURL: "pkg:npm/left-pad", Ecosystem: "npm"},
	)

	content.EXPECT().GetFileContent(gomock.Any(), lockRef, token).Return([]byte(`{
  "lockfileVersion": 2,
  "packages": {
    "": {"name": "shop"},
    "node_modules/@babel/core": {"version": "7.24.0"}
  }
}`), nil)

	res, err := New(store, content).Resolve(context.Background(), product, token)
	require.NoError(t, err)
	require.Equal(t, LockfileResult{Resolved: 1, TotalNoVersion: 2, LockfileFound: true}, res)

	deps, err := store.FindDependencies(context.Background(), product)
	require.NoError(t, err)
	require.Equal(t, "pkg:npm/%40babel/core@7.24.0", deps[0].PURL)
	require.Empty(t, deps[1].Version)
}

func TestResolve_GoModules(t *testing.T) {
	ctrl := gomock.NewController(t)
	content := repofetcher.NewMockContentProvider(ctrl)
	store := newStore(t,
		express(),
		depgraph.Dependency{Name: "github.com/spf13/cobra", PURL: "pkg:golang/github.com/spf13/cobra", Ecosystem: "golang"},
	)

	goModRef := lockRef
	goModRef.Path = "go.mod"
	gomock.InOrder(
		content.EXPECT().GetFileContent(gomock.Any(), lockRef, token).
			Return(nil, repofetcher.ErrNotFound),
		content.EXPECT().GetFileContent(gomock.Any(), goModRef, token).
			Return([]byte("module example.com/shop\n\ngo 1.23\n\nrequire github.com/spf13/cobra v1.9.1\n"), nil),
	)

	res, err := New(store, content).Resolve(context.Background(), product, token)
	require.NoError(t, err)
	require.Equal(t, 1, res.Resolved)
	require.Equal(t, 2, res.TotalNoVersion)
	require.True(t, res.LockfileFound)
	require.Len(t, res.Diagnostics, 1)

	deps, err := store.FindDependencies(context.Background(), product)
	require.NoError(t, err)
	require.Equal(t, "pkg:golang/github.com/spf13/cobra@v1.9.1", deps[1].PURL)
}

func TestResolve_StoreFailures(t *testing.T) {
	ctx := context.Background()

	t.Run("repository lookup", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		store := depgraph.NewMockStore(ctrl)
		content := repofetcher.NewMockContentProvider(ctrl)

		store.EXPECT().FindRepository(ctx, product).Return(nil, errors.New("db down"))

		res, err := New(store, content).Resolve(ctx, product, token)
		require.NoError(t, err)
		require.Equal(t, StageRepository, res.Diagnostics[0].Stage)
	})

	t.Run("invalid repository URL", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		store := depgraph.NewMockStore(ctrl)
		content := repofetcher.NewMockContentProvider(ctrl)

		store.EXPECT().FindRepository(ctx, product).Return(&depgraph.Repository{URL: "not a url"}, nil)

		res, err := New(store, content).Resolve(ctx, product, token)
		require.NoError(t, err)
		require.Equal(t, StageRepository, res.Diagnostics[0].Stage)
	})

	t.Run("bulk update", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		store := depgraph.NewMockStore(ctrl)
		content := repofetcher.NewMockContentProvider(ctrl)

		store.EXPECT().FindRepository(ctx, product).Return(&depgraph.Repository{
			URL: "https://github.com/acme/shop", DefaultBranch: "main", Provider: "github",
		}, nil)
		store.EXPECT().FindVersionless(ctx, product).Return([]depgraph.Dependency{express()}, nil)
		content.EXPECT().GetFileContent(gomock.Any(), lockRef, token).Return([]byte(lockfileV3), nil)
		store.EXPECT().ApplyVersionUpdates(ctx, product, []depgraph.VersionUpdate{
			{PURL: "pkg:npm/express", Version: "4.18.2", NewPURL: "pkg:npm/express@4.18.2"},
		}).Return(0, errors.New("serialization failure"))

		res, err := New(store, content).Resolve(ctx, product, token)
		require.NoError(t, err)
		require.Equal(t, 0, res.Resolved)
		require.Equal(t, 1, res.TotalNoVersion)
		require.True(t, res.LockfileFound)
		require.Equal(t, StageApply, res.Diagnostics[0].Stage)
	})
}
