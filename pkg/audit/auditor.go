// Package audit runs the compliance pipeline of a product: version
// resolution, then per-dependency evaluation and cross-license conflict
// detection.
package audit

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/cryptellation/compliance/pkg/compliance"
	"github.com/cryptellation/compliance/pkg/depgraph"
	"github.com/cryptellation/compliance/pkg/logging"
	"github.com/cryptellation/compliance/pkg/resolver"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

//go:generate go run go.uber.org/mock/mockgen@v0.5.2 -source=auditor.go -destination=mock.gen.go -package=audit

// NoAssertion is the SPDX value for a dependency without declared license.
const NoAssertion = "NOASSERTION"

// ErrNilEngine is returned when an Auditor is created without rule engine.
var ErrNilEngine = errors.New("audit requires a rule engine and a conflict detector")

// LockfileResolver fills missing dependency versions before evaluation.
type LockfileResolver interface {
	Resolve(ctx context.Context, productID, token string) (resolver.LockfileResult, error)
}

// HashEnricher fetches package hashes for dependencies with a version. It
// runs after lockfile resolution.
type HashEnricher interface {
	Enrich(ctx context.Context, productID string) error
}

// FindingSource lists the dependencies of a product with their licenses.
type FindingSource interface {
	FindDependencies(ctx context.Context, productID string) ([]depgraph.Dependency, error)
}

// Request describes one audit.
type Request struct {
	ProductID string
	Token     string
	Model     compliance.DistributionModel
	// SkipResolution evaluates the graph as is, without reading lockfiles.
	SkipResolution bool
}

// Entry is the evaluation of one dependency.
type Entry struct {
	compliance.Finding
	compliance.Result
}

// Summary counts results per verdict.
type Summary struct {
	Compatible   int `json:"compatible"`
	Incompatible int `json:"incompatible"`
	ReviewNeeded int `json:"review_needed"`
}

// Report is the outcome of an audit.
type Report struct {
	ID          string                       `json:"id"`
	ProductID   string                       `json:"product_id"`
	Model       compliance.DistributionModel `json:"distribution_model"`
	ModelLabel  string                       `json:"distribution_model_label"`
	GeneratedAt time.Time                    `json:"generated_at"`
	Lockfile    *resolver.LockfileResult     `json:"lockfile,omitempty"`
	Results     map[string]compliance.Result `json:"results"`
	Entries     []Entry                      `json:"entries"`
	Conflicts   []compliance.Conflict        `json:"conflicts"`
	Summary     Summary                      `json:"summary"`
}

// Auditor chains the pipeline stages of an audit.
type Auditor struct {
	resolver   LockfileResolver
	enricher   HashEnricher
	findings   FindingSource
	classifier Classifier
	engine     *compliance.Engine
	detector   *compliance.ConflictDetector
	now        func() time.Time
}

// Option configures an Auditor.
type Option func(*Auditor)

// WithResolver sets the lockfile resolver run before evaluation.
func WithResolver(r LockfileResolver) Option {
	return func(a *Auditor) {
		a.resolver = r
	}
}

// WithHashEnricher sets the hash enrichment run after lockfile resolution.
func WithHashEnricher(e HashEnricher) Option {
	return func(a *Auditor) {
		a.enricher = e
	}
}

// WithClassifier sets the classifier used for dependencies without category.
func WithClassifier(c Classifier) Option {
	return func(a *Auditor) {
		a.classifier = c
	}
}

// New creates an Auditor.
func New(
	findings FindingSource,
	engine *compliance.Engine,
	detector *compliance.ConflictDetector,
	opts ...Option,
) (*Auditor, error) {
	if engine == nil || detector == nil {
		return nil, ErrNilEngine
	}
	a := &Auditor{
		findings: findings,
		engine:   engine,
		detector: detector,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// Run audits one product.
func (a *Auditor) Run(ctx context.Context, req Request) (*Report, error) {
	if !req.Model.Valid() {
		return nil, fmt.Errorf("%w: %q", compliance.ErrUnknownDistributionModel, req.Model)
	}
	logger := logging.C(ctx)

	report := &Report{
		ID:          uuid.NewString(),
		ProductID:   req.ProductID,
		Model:       req.Model,
		ModelLabel:  req.Model.Label(),
		GeneratedAt: a.now().UTC(),
	}

	if a.resolver != nil && !req.SkipResolution {
		res, err := a.resolver.Resolve(ctx, req.ProductID, req.Token)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve versions of %q: %w", req.ProductID, err)
		}
		report.Lockfile = &res
	}

	if a.enricher != nil {
		if err := a.enricher.Enrich(ctx, req.ProductID); err != nil {
			logger.Warn("Hash enrichment failed",
				zap.String("product", req.ProductID),
				zap.Error(err))
		}
	}

	deps, err := a.findings.FindDependencies(ctx, req.ProductID)
	if err != nil {
		return nil, fmt.Errorf("failed to load dependencies of %q: %w", req.ProductID, err)
	}
	findings := a.toFindings(deps)

	report.Results = a.engine.EvaluateBatch(req.Model, findings)
	report.Entries = make([]Entry, 0, len(findings))
	expressions := make([]string, 0, len(findings))
	for _, f := range findings {
		r := report.Results[f.PURL]
		report.Entries = append(report.Entries, Entry{Finding: f, Result: r})
		expressions = append(expressions, f.Expression)
	}
	sort.SliceStable(report.Entries, func(i, j int) bool {
		return report.Entries[i].PURL < report.Entries[j].PURL
	})
	for _, r := range report.Results {
		switch r.Verdict {
		case compliance.VerdictCompatible:
			report.Summary.Compatible++
		case compliance.VerdictIncompatible:
			report.Summary.Incompatible++
		case compliance.VerdictReviewNeeded:
			report.Summary.ReviewNeeded++
		}
	}
	report.Conflicts = a.detector.Detect(expressions)

	logger.Info("Audit completed",
		zap.String("report", report.ID),
		zap.String("product", req.ProductID),
		zap.String("model", string(req.Model)),
		zap.Int("dependencies", len(report.Results)),
		zap.Int("incompatible", report.Summary.Incompatible),
		zap.Int("review_needed", report.Summary.ReviewNeeded),
		zap.Int("conflicts", len(report.Conflicts)))
	return report, nil
}

func (a *Auditor) toFindings(deps []depgraph.Dependency) []compliance.Finding {
	findings := make([]compliance.Finding, 0, len(deps))
	for _, d := range deps {
		expression := d.License
		if expression == "" {
			expression = NoAssertion
		}

		var category compliance.LicenseCategory
		switch {
		case d.Category != "":
			category = compliance.ParseLicenseCategory(d.Category)
		case a.classifier != nil:
			category = a.classifier.Classify(expression)
		case expression == NoAssertion:
			category = compliance.CategoryNoAssertion
		default:
			category = compliance.CategoryUnknown
		}

		findings = append(findings, compliance.Finding{
			PURL:       d.PURL,
			Name:       d.Name,
			Expression: expression,
			Category:   category,
			Depth:      compliance.ParseDependencyDepth(d.Depth),
		})
	}
	return findings
}
