// Package compliance evaluates license compatibility against a product's
// distribution model and detects conflicting licenses in a dependency set.
//
// Both the Engine and the ConflictDetector are immutable once built and can
// be shared between goroutines without locking.
package compliance

import (
	"errors"
	"fmt"
	"strings"

	"github.com/cryptellation/compliance/pkg/spdx"
)

// Rule is one row outcome of the decision table.
//
// Reason is a template; "{expression}", "{model}" and "{depth}" are replaced
// with the SPDX expression, the distribution model label and the dependency
// depth.
type Rule struct {
	ID      RuleID
	Verdict Verdict
	Reason  string
}

func (r Rule) isZero() bool {
	return r.ID == ""
}

func (r Rule) apply(expression string, model DistributionModel, depth DependencyDepth) Result {
	reason := strings.NewReplacer(
		"{expression}", expression,
		"{model}", model.Label(),
		"{depth}", string(depth),
	).Replace(r.Reason)
	return Result{Verdict: r.Verdict, Reason: reason, Rule: r.ID}
}

// ModelRules holds the copyleft outcomes of one distribution model.
type ModelRules struct {
	Strong Rule
	Weak   Rule
	// NetworkCopyleft, when set, takes precedence over Strong and Weak if any
	// identifier of the expression belongs to the network copyleft set.
	NetworkCopyleft *Rule
}

// DecisionTable maps (distribution model, license category) to a rule.
//
// Unknown and Permissive apply to every model. Models covers copyleft
// categories per distribution model. Fallback is required and only fires for
// a combination without a row.
type DecisionTable struct {
	Unknown    Rule
	Permissive Rule
	Models     map[DistributionModel]ModelRules
	Fallback   Rule
}

// DefaultDecisionTable returns the built-in compatibility rules.
func DefaultDecisionTable() DecisionTable {
	internal := Rule{
		ID:      RuleInternalNoDistribution,
		Verdict: VerdictCompatible,
		Reason: `"{expression}" is copyleft, but under {model} the software is never distributed ` +
			`outside the organisation, so copyleft obligations are not triggered.`,
	}
	saas := Rule{
		ID:      RuleSaaSNoDistribution,
		Verdict: VerdictCompatible,
		Reason: `"{expression}" is copyleft, but {model} does not distribute the software; ` +
			`ordinary copyleft is not triggered by hosting.`,
	}
	sourceAvailable := Rule{
		ID:      RuleSourceAvailableSatisfiesCopyleft,
		Verdict: VerdictCompatible,
		Reason:  `"{expression}" is copyleft; {model} already discloses the source, which satisfies the disclosure obligation.`,
	}

	return DecisionTable{
		Unknown: Rule{
			ID:      RuleUnknownLicence,
			Verdict: VerdictReviewNeeded,
			Reason:  `License "{expression}" is unknown or not asserted; manual review is required before {model}.`,
		},
		Permissive: Rule{
			ID:      RulePermissiveAlwaysOK,
			Verdict: VerdictCompatible,
			Reason:  `"{expression}" is a permissive license and is compatible with {model}.`,
		},
		Models: map[DistributionModel]ModelRules{
			ModelInternalOnly: {Strong: internal, Weak: internal},
			ModelSaaSHosted: {
				Strong: saas,
				Weak:   saas,
				NetworkCopyleft: &Rule{
					ID:      RuleSaaSNetworkCopyleft,
					Verdict: VerdictIncompatible,
					Reason: `"{expression}" contains a network copyleft license; offering it as {model} ` +
						`obliges you to provide the complete source to every user of the service.`,
				},
			},
			ModelSourceAvailable: {Strong: sourceAvailable, Weak: sourceAvailable},
			ModelProprietaryBinary: {
				Strong: Rule{
					ID:      RuleProprietaryStrongCopyleft,
					Verdict: VerdictIncompatible,
					Reason: `"{expression}" is strong copyleft ({depth} dependency); {model} would require ` +
						`releasing the whole product under the same license.`,
				},
				Weak: Rule{
					ID:      RuleProprietaryWeakCopyleftLinking,
					Verdict: VerdictReviewNeeded,
					Reason: `"{expression}" is weak copyleft ({depth} dependency); compatibility with {model} ` +
						`depends on static versus dynamic linking and must be reviewed.`,
				},
			},
			ModelLibraryComponent: {
				Strong: Rule{
					ID:      RuleLibraryStrongCopyleftDownstream,
					Verdict: VerdictIncompatible,
					Reason: `"{expression}" is strong copyleft ({depth} dependency); shipping it as a {model} ` +
						`imposes copyleft on every downstream product.`,
				},
				Weak: Rule{
					ID:      RuleLibraryWeakCopyleftDownstream,
					Verdict: VerdictReviewNeeded,
					Reason: `"{expression}" is weak copyleft ({depth} dependency); as a {model} it passes ` +
						`relinking and modification obligations downstream and must be reviewed.`,
				},
			},
		},
		Fallback: Rule{
			ID:      RuleFallbackUnknown,
			Verdict: VerdictReviewNeeded,
			Reason:  `No compatibility rule covers "{expression}" under {model}; manual review is required.`,
		},
	}
}

// ErrIncompleteDecisionTable is returned when a decision table leaves an
// enumerated (model, category) pair without a rule.
var ErrIncompleteDecisionTable = errors.New("incomplete decision table")

// Validate checks that every supported (model, category) pair resolves to a
// rule other than the fallback.
func (t DecisionTable) Validate() error {
	if t.Fallback.isZero() {
		return fmt.Errorf("%w: fallback rule is required", ErrIncompleteDecisionTable)
	}
	if t.Unknown.isZero() {
		return fmt.Errorf("%w: no rule for unknown licenses", ErrIncompleteDecisionTable)
	}
	if t.Permissive.isZero() {
		return fmt.Errorf("%w: no rule for permissive licenses", ErrIncompleteDecisionTable)
	}
	for _, model := range DistributionModels() {
		row, ok := t.Models[model]
		if !ok {
			return fmt.Errorf("%w: no rules for model %s", ErrIncompleteDecisionTable, model)
		}
		if row.Strong.isZero() {
			return fmt.Errorf("%w: no %s rule for model %s", ErrIncompleteDecisionTable, CategoryCopyleftStrong, model)
		}
		if row.Weak.isZero() {
			return fmt.Errorf("%w: no %s rule for model %s", ErrIncompleteDecisionTable, CategoryCopyleftWeak, model)
		}
	}
	return nil
}

// Engine evaluates license compatibility. It is a pure function of its
// inputs: no I/O, no clock, no randomness.
type Engine struct {
	table           DecisionTable
	networkCopyleft map[string]struct{}
}

// NewEngine builds an engine over the default decision table.
func NewEngine(networkCopyleft []string) (*Engine, error) {
	return NewEngineWithTable(DefaultDecisionTable(), networkCopyleft)
}

// NewEngineWithTable builds an engine over a custom decision table. The table
// must pass Validate.
func NewEngineWithTable(table DecisionTable, networkCopyleft []string) (*Engine, error) {
	if err := table.Validate(); err != nil {
		return nil, err
	}
	set := make(map[string]struct{}, len(networkCopyleft))
	for _, id := range networkCopyleft {
		set[normalizeID(id)] = struct{}{}
	}
	return &Engine{table: table, networkCopyleft: set}, nil
}

// Evaluate returns the compatibility of one license expression with the
// distribution model. Every input produces exactly one result.
func (e *Engine) Evaluate(
	model DistributionModel,
	category LicenseCategory,
	expression string,
	depth DependencyDepth,
) Result {
	return e.rule(model, category, expression).apply(expression, model, depth)
}

func (e *Engine) rule(model DistributionModel, category LicenseCategory, expression string) Rule {
	switch category {
	case CategoryUnknown, CategoryNoAssertion:
		return e.table.Unknown
	case CategoryPermissive:
		return e.table.Permissive
	case CategoryCopyleftStrong, CategoryCopyleftWeak:
	default:
		return e.table.Fallback
	}

	row, ok := e.table.Models[model]
	if !ok {
		return e.table.Fallback
	}
	if row.NetworkCopyleft != nil && e.hasNetworkCopyleft(expression) {
		return *row.NetworkCopyleft
	}
	if category == CategoryCopyleftStrong {
		return row.Strong
	}
	return row.Weak
}

func (e *Engine) hasNetworkCopyleft(expression string) bool {
	for _, id := range spdx.ExtractIdentifiers(expression) {
		if _, ok := e.networkCopyleft[normalizeID(id)]; ok {
			return true
		}
	}
	return false
}

// EvaluateBatch evaluates every finding under the same model. Results are
// keyed by the finding's package URL.
func (e *Engine) EvaluateBatch(model DistributionModel, findings []Finding) map[string]Result {
	results := make(map[string]Result, len(findings))
	for _, f := range findings {
		results[f.PURL] = e.Evaluate(model, f.Category, f.Expression, f.Depth)
	}
	return results
}

// SPDX license identifiers are case-insensitive.
func normalizeID(id string) string {
	return strings.ToUpper(strings.TrimSpace(id))
}
