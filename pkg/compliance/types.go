package compliance

import (
	"errors"
	"fmt"
)

// DistributionModel describes how a product reaches its users. It decides
// which copyleft obligations a dependency license can trigger.
type DistributionModel string

const (
	ModelProprietaryBinary DistributionModel = "proprietary_binary"
	ModelSaaSHosted        DistributionModel = "saas_hosted"
	ModelSourceAvailable   DistributionModel = "source_available"
	ModelLibraryComponent  DistributionModel = "library_component"
	ModelInternalOnly      DistributionModel = "internal_only"
)

var modelLabels = map[DistributionModel]string{
	ModelProprietaryBinary: "Proprietary binary distribution",
	ModelSaaSHosted:        "SaaS / hosted service",
	ModelSourceAvailable:   "Source-available distribution",
	ModelLibraryComponent:  "Library / SDK component",
	ModelInternalOnly:      "Internal use only",
}

// DistributionModels returns every supported distribution model in declaration order.
func DistributionModels() []DistributionModel {
	return []DistributionModel{
		ModelProprietaryBinary,
		ModelSaaSHosted,
		ModelSourceAvailable,
		ModelLibraryComponent,
		ModelInternalOnly,
	}
}

// Label returns the human-readable label of the model. Unsupported models
// are labelled with their raw value.
func (m DistributionModel) Label() string {
	if label, ok := modelLabels[m]; ok {
		return label
	}
	return string(m)
}

// Valid reports whether m is one of the supported models.
func (m DistributionModel) Valid() bool {
	_, ok := modelLabels[m]
	return ok
}

// ErrUnknownDistributionModel is returned when parsing an unsupported model.
var ErrUnknownDistributionModel = errors.New("unknown distribution model")

// ParseDistributionModel converts a raw value into a DistributionModel.
func ParseDistributionModel(s string) (DistributionModel, error) {
	m := DistributionModel(s)
	if !m.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownDistributionModel, s)
	}
	return m, nil
}

// LicenseCategory is the upstream classification of a license expression.
type LicenseCategory string

const (
	CategoryPermissive     LicenseCategory = "permissive"
	CategoryCopyleftStrong LicenseCategory = "copyleft_strong"
	CategoryCopyleftWeak   LicenseCategory = "copyleft_weak"
	CategoryUnknown        LicenseCategory = "unknown"
	CategoryNoAssertion    LicenseCategory = "no_assertion"
)

// LicenseCategories returns every license category.
func LicenseCategories() []LicenseCategory {
	return []LicenseCategory{
		CategoryPermissive,
		CategoryCopyleftStrong,
		CategoryCopyleftWeak,
		CategoryUnknown,
		CategoryNoAssertion,
	}
}

// ParseLicenseCategory converts a raw value into a LicenseCategory.
// Unrecognised values are coerced to CategoryUnknown.
func ParseLicenseCategory(s string) LicenseCategory {
	c := LicenseCategory(s)
	switch c {
	case CategoryPermissive, CategoryCopyleftStrong, CategoryCopyleftWeak, CategoryUnknown, CategoryNoAssertion:
		return c
	default:
		return CategoryUnknown
	}
}

// DependencyDepth tells whether a dependency is used directly by the product.
type DependencyDepth string

const (
	DepthDirect     DependencyDepth = "direct"
	DepthTransitive DependencyDepth = "transitive"
)

// ParseDependencyDepth returns DepthDirect for exactly "direct" and
// DepthTransitive for anything else.
func ParseDependencyDepth(s string) DependencyDepth {
	if s == string(DepthDirect) {
		return DepthDirect
	}
	return DepthTransitive
}

// Verdict is the outcome of a compatibility evaluation.
type Verdict string

const (
	VerdictCompatible   Verdict = "compatible"
	VerdictIncompatible Verdict = "incompatible"
	VerdictReviewNeeded Verdict = "review_needed"
)

// RuleID names the decision-table rule that produced a result.
type RuleID string

const (
	RuleUnknownLicence                   RuleID = "unknown_licence"
	RulePermissiveAlwaysOK               RuleID = "permissive_always_ok"
	RuleInternalNoDistribution           RuleID = "internal_no_distribution"
	RuleSaaSNetworkCopyleft              RuleID = "saas_network_copyleft"
	RuleSaaSNoDistribution               RuleID = "saas_no_distribution"
	RuleSourceAvailableSatisfiesCopyleft RuleID = "source_available_satisfies_copyleft"
	RuleProprietaryStrongCopyleft        RuleID = "proprietary_strong_copyleft"
	RuleProprietaryWeakCopyleftLinking   RuleID = "proprietary_weak_copyleft_linking"
	RuleLibraryStrongCopyleftDownstream  RuleID = "library_strong_copyleft_downstream"
	RuleLibraryWeakCopyleftDownstream    RuleID = "library_weak_copyleft_downstream"
	RuleFallbackUnknown                  RuleID = "fallback_unknown"
)

// Result is the verdict for one dependency under one distribution model.
// Reason is the audit trail and must be reported verbatim.
type Result struct {
	Verdict Verdict `json:"verdict"`
	Reason  string  `json:"reason"`
	Rule    RuleID  `json:"rule"`
}

// Finding is one (dependency, detected license) observation.
type Finding struct {
	PURL       string          `json:"purl"`
	Name       string          `json:"name"`
	Expression string          `json:"expression"`
	Category   LicenseCategory `json:"category"`
	Depth      DependencyDepth `json:"depth"`
}

// Conflict reports two licenses of the same product that cannot be combined.
type Conflict struct {
	LicenseA string `json:"license_a" yaml:"a"`
	LicenseB string `json:"license_b" yaml:"b"`
	Reason   string `json:"reason" yaml:"reason"`
}
