// Package resolver fills in missing dependency versions from the lockfiles of
// a product's repository.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cryptellation/compliance/pkg/depgraph"
	"github.com/cryptellation/compliance/pkg/lockfile"
	"github.com/cryptellation/compliance/pkg/logging"
	"github.com/cryptellation/compliance/pkg/purl"
	"github.com/cryptellation/compliance/pkg/repofetcher"
	"go.uber.org/zap"
)

// DefaultTimeout bounds a single lockfile fetch.
const DefaultTimeout = 10 * time.Second

// ErrMissingCredentials is returned when no credential is available to read
// the product repository.
var ErrMissingCredentials = errors.New("missing repository credentials")

// Stage names the step of a resolution pass a diagnostic comes from.
type Stage string

const (
	StageRepository   Stage = "repository"
	StageDependencies Stage = "dependencies"
	StageFetch        Stage = "fetch"
	StageParse        Stage = "parse"
	StageApply        Stage = "apply"
)

// Diagnostic describes an upstream failure absorbed by a resolution pass.
type Diagnostic struct {
	Stage   Stage  `json:"stage"`
	Message string `json:"message"`
}

// LockfileResult is the outcome of one resolution pass. It is always
// returned, even when the pass could only partly complete.
type LockfileResult struct {
	// Resolved is the number of dependencies that gained a version.
	Resolved int `json:"resolved"`
	// TotalNoVersion is the number of version-less dependencies that a
	// supported lockfile could have resolved.
	TotalNoVersion int `json:"total_no_version"`
	// LockfileFound is true when at least one lockfile could be read.
	LockfileFound bool `json:"lockfile_found"`
	// Diagnostics lists the failures absorbed during the pass.
	Diagnostics []Diagnostic `json:"diagnostics,omitempty"`
}

func (r *LockfileResult) diagnose(ctx context.Context, stage Stage, msg string, err error) {
	if err != nil {
		msg = fmt.Sprintf("%s: %s", msg, err)
	}
	r.Diagnostics = append(r.Diagnostics, Diagnostic{Stage: stage, Message: msg})
	logging.C(ctx).Warn("Lockfile resolution degraded",
		zap.String("stage", string(stage)),
		zap.String("message", msg))
}

// Resolver fills version gaps of a product's dependency graph.
type Resolver struct {
	store   depgraph.Store
	content repofetcher.ContentProvider
	formats []lockfile.Format
	timeout time.Duration
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithFormats replaces the lockfile formats, tried in the given order.
func WithFormats(formats ...lockfile.Format) Option {
	return func(r *Resolver) {
		r.formats = formats
	}
}

// WithTimeout sets the time allowed for each lockfile fetch. A fetch that
// takes longer is treated as a missing lockfile. Zero disables the limit.
func WithTimeout(d time.Duration) Option {
	return func(r *Resolver) {
		r.timeout = d
	}
}

// New creates a Resolver reading the graph from store and lockfiles from content.
func New(store depgraph.Store, content repofetcher.ContentProvider, opts ...Option) *Resolver {
	r := &Resolver{
		store:   store,
		content: content,
		formats: lockfile.Formats(),
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve runs one resolution pass for the product. The only error returned
// is ErrMissingCredentials; every upstream failure is reported as a
// diagnostic of the returned result instead.
func (r *Resolver) Resolve(ctx context.Context, productID, token string) (LockfileResult, error) {
	var res LockfileResult
	if token == "" {
		return res, ErrMissingCredentials
	}
	logger := logging.C(ctx)

	repo, err := r.store.FindRepository(ctx, productID)
	if err != nil {
		res.diagnose(ctx, StageRepository, "could not look up repository", err)
		return res, nil
	}
	if repo == nil {
		logger.Info("No repository linked to product, skipping lockfile resolution",
			zap.String("product", productID))
		return res, nil
	}
	owner, name, err := repofetcher.ParseOwnerAndRepo(repo.URL)
	if err != nil {
		res.diagnose(ctx, StageRepository, fmt.Sprintf("unusable repository URL %q", repo.URL), err)
		return res, nil
	}

	versionless, err := r.store.FindVersionless(ctx, productID)
	if err != nil {
		res.diagnose(ctx, StageDependencies, "could not list version-less dependencies", err)
		return res, nil
	}
	if len(versionless) == 0 {
		logger.Debug("No version-less dependencies", zap.String("product", productID))
		return res, nil
	}

	var updates []depgraph.VersionUpdate
	for _, format := range r.formats {
		candidates := candidatesFor(format, versionless)
		if len(candidates) == 0 {
			continue
		}
		res.TotalNoVersion += len(candidates)

		ref := repofetcher.FileRef{
			Provider: repofetcher.Provider(repo.Provider),
			Owner:    owner,
			Repo:     name,
			Branch:   repo.DefaultBranch,
			Path:     format.Path,
		}
		versions, found := r.readLockfile(ctx, &res, format, ref, token)
		if found {
			res.LockfileFound = true
		}
		if versions == nil {
			continue
		}
		updates = append(updates, versionUpdates(candidates, versions)...)
	}

	if len(updates) > 0 {
		applied, err := r.store.ApplyVersionUpdates(ctx, productID, updates)
		if err != nil {
			res.diagnose(ctx, StageApply, "could not apply version updates", err)
		} else {
			res.Resolved = applied
			if applied != len(updates) {
				logger.Warn("Some version updates were skipped",
					zap.String("product", productID),
					zap.Int("updates", len(updates)),
					zap.Int("applied", applied))
			}
		}
	}

	logger.Info("Lockfile resolution completed",
		zap.String("product", productID),
		zap.Int("resolved", res.Resolved),
		zap.Int("total_no_version", res.TotalNoVersion),
		zap.Bool("lockfile_found", res.LockfileFound),
		zap.Int("diagnostics", len(res.Diagnostics)))
	return res, nil
}

// readLockfile fetches and parses one lockfile. It returns whether the file
// was found, and its versions when it could also be parsed.
func (r *Resolver) readLockfile(
	ctx context.Context,
	res *LockfileResult,
	format lockfile.Format,
	ref repofetcher.FileRef,
	token string,
) (lockfile.Versions, bool) {
	fetchCtx := ctx
	if r.timeout > 0 {
		var cancel context.CancelFunc
		fetchCtx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	content, err := r.content.GetFileContent(fetchCtx, ref, token)
	switch {
	case err == nil:
	case errors.Is(err, repofetcher.ErrNotFound):
		res.diagnose(ctx, StageFetch, fmt.Sprintf("%s not found", format.Path), nil)
		return nil, false
	case errors.Is(err, repofetcher.ErrForbidden):
		res.diagnose(ctx, StageFetch, fmt.Sprintf("access to %s denied", format.Path), nil)
		return nil, false
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(fetchCtx.Err(), context.DeadlineExceeded):
		res.diagnose(ctx, StageFetch, fmt.Sprintf("fetching %s timed out after %s", format.Path, r.timeout), nil)
		return nil, false
	default:
		res.diagnose(ctx, StageFetch, fmt.Sprintf("could not fetch %s", format.Path), err)
		return nil, false
	}

	versions, err := format.Parse(content)
	if err != nil {
		res.diagnose(ctx, StageParse, fmt.Sprintf("could not parse %s", format.Path), err)
		return nil, true
	}
	return versions, true
}

func candidatesFor(format lockfile.Format, deps []depgraph.Dependency) []depgraph.Dependency {
	var res []depgraph.Dependency
	for _, d := range deps {
		if format.Supports(d.Ecosystem) {
			res = append(res, d)
		}
	}
	return res
}

func versionUpdates(candidates []depgraph.Dependency, versions lockfile.Versions) []depgraph.VersionUpdate {
	var updates []depgraph.VersionUpdate
	for _, d := range candidates {
		name := d.Name
		if name == "" {
			name = purl.Name(d.PURL)
		}
		version, ok := versions[name]
		if !ok {
			continue
		}

		newPURL := purl.WithVersion(d.PURL, version)
		if d.PURL == "" {
			newPURL = purl.Build(d.Ecosystem, name, version)
		}
		updates = append(updates, depgraph.VersionUpdate{
			PURL:    d.PURL,
			Version: version,
			NewPURL: newPURL,
		})
	}
	return updates
}
