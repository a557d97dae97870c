package repofetcher

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cryptellation/compliance/pkg/adapters/github"
	"github.com/hashicorp/golang-lru/v2/expirable"
)

//go:generate go run go.uber.org/mock/mockgen@v0.5.2 -source=fetcher.go -destination=mock.gen.go -package=repofetcher

// Provider names the hosting service of a repository.
type Provider string

const (
	ProviderGitHub Provider = "github"
)

var (
	// ErrNotFound is returned when the repository, branch or file does not exist.
	ErrNotFound = errors.New("file not found")
	// ErrForbidden is returned when the credential may not read the file.
	ErrForbidden = errors.New("access denied")
	// ErrUnsupportedProvider is returned for a provider without a client.
	ErrUnsupportedProvider = errors.New("unsupported repository provider")
)

// FileRef identifies one file of one repository branch.
type FileRef struct {
	Provider Provider
	Owner    string
	Repo     string
	Branch   string
	Path     string
}

func (r FileRef) String() string {
	return fmt.Sprintf("%s:%s/%s@%s:%s", r.Provider, r.Owner, r.Repo, r.Branch, r.Path)
}

// ContentProvider reads files from hosted repositories.
type ContentProvider interface {
	// GetFileContent returns the content of the file. Missing files wrap
	// ErrNotFound, unreadable ones ErrForbidden.
	GetFileContent(ctx context.Context, ref FileRef, token string) ([]byte, error)
}

// ClientFactory creates a GitHub client authenticated with token.
type ClientFactory func(token string) (github.Client, error)

// Options configures a Fetcher.
type Options struct {
	// CacheSize is the number of files kept in memory. Zero disables caching.
	CacheSize int
	// CacheTTL bounds how long a cached file is served.
	CacheTTL time.Duration
}

// fetcher routes file reads to the client of the repository's provider.
type fetcher struct {
	github ClientFactory
	cache  *expirable.LRU[string, []byte]
}

// Ensure fetcher implements ContentProvider.
var _ ContentProvider = (*fetcher)(nil)

// New creates a ContentProvider backed by GitHub clients from factory.
func New(factory ClientFactory, opts Options) ContentProvider {
	f := &fetcher{github: factory}
	if opts.CacheSize > 0 {
		f.cache = expirable.NewLRU[string, []byte](opts.CacheSize, nil, opts.CacheTTL)
	}
	return f
}

// GitHubFactory returns a ClientFactory for github.com, or for a GitHub
// Enterprise Server when baseURL is set.
func GitHubFactory(baseURL string) ClientFactory {
	return func(token string) (github.Client, error) {
		if baseURL == "" {
			return github.New(token), nil
		}
		return github.NewEnterprise(token, baseURL)
	}
}

// GetFileContent implements ContentProvider.
func (f *fetcher) GetFileContent(ctx context.Context, ref FileRef, token string) ([]byte, error) {
	key := cacheKey(ref, token)
	if f.cache != nil {
		if content, ok := f.cache.Get(key); ok {
			return content, nil
		}
	}

	var (
		content []byte
		err     error
	)
	switch Provider(strings.ToLower(string(ref.Provider))) {
	case ProviderGitHub, "":
		content, err = f.getGitHub(ctx, ref, token)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedProvider, ref.Provider)
	}
	if err != nil {
		return nil, err
	}

	if f.cache != nil {
		f.cache.Add(key, content)
	}
	return content, nil
}

func (f *fetcher) getGitHub(ctx context.Context, ref FileRef, token string) ([]byte, error) {
	client, err := f.github(token)
	if err != nil {
		return nil, err
	}
	content, err := client.GetFileContent(ctx, github.GetFileContentParams{
		Owner: ref.Owner,
		Repo:  ref.Repo,
		Path:  ref.Path,
		Ref:   ref.Branch,
	})
	switch {
	case errors.Is(err, github.ErrNotFound):
		return nil, fmt.Errorf("%w: %s: %w", ErrNotFound, ref, err)
	case errors.Is(err, github.ErrForbidden):
		return nil, fmt.Errorf("%w: %s: %w", ErrForbidden, ref, err)
	case err != nil:
		return nil, fmt.Errorf("fetch %s: %w", ref, err)
	}
	return content, nil
}

// cacheKey scopes cached content to the credential that read it, so a token
// never sees content it could not fetch itself.
func cacheKey(ref FileRef, token string) string {
	sum := sha256.Sum256([]byte(token))
	return fmt.Sprintf("%x|%s", sum[:8], ref)
}
