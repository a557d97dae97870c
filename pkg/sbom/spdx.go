package sbom

import (
	"fmt"
	"io"
	"strings"

	"github.com/cryptellation/compliance/pkg/compliance"
	spdxjson "github.com/spdx/tools-golang/json"
	"github.com/spdx/tools-golang/spdx"
	"github.com/spdx/tools-golang/spdx/v2/common"
)

const (
	relationshipDescribes = "DESCRIBES"
	relationshipDependsOn = "DEPENDS_ON"
	refTypePURL           = "purl"
)

func importSPDX(r io.Reader) ([]Package, error) {
	doc, err := spdxjson.Read(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}

	roots := make(map[common.ElementID]struct{})
	for _, rel := range doc.Relationships {
		if rel != nil && strings.EqualFold(rel.Relationship, relationshipDescribes) &&
			rel.RefA.ElementRefID == "DOCUMENT" {
			roots[rel.RefB.ElementRefID] = struct{}{}
		}
	}
	direct := make(map[common.ElementID]struct{})
	for _, rel := range doc.Relationships {
		if rel == nil || !strings.EqualFold(rel.Relationship, relationshipDependsOn) {
			continue
		}
		if _, ok := roots[rel.RefA.ElementRefID]; ok {
			direct[rel.RefB.ElementRefID] = struct{}{}
		}
	}

	var pkgs []Package
	for _, p := range doc.Packages {
		if p == nil {
			continue
		}
		if _, isRoot := roots[p.PackageSPDXIdentifier]; isRoot {
			continue
		}
		depth := compliance.DepthTransitive
		if _, ok := direct[p.PackageSPDXIdentifier]; ok {
			depth = compliance.DepthDirect
		}
		pkgs = append(pkgs, newPackage(p.PackageName, packagePURL(p), p.PackageVersion, packageLicense(p), depth))
	}
	return pkgs, nil
}

func packagePURL(p *spdx.Package) string {
	for _, ref := range p.PackageExternalReferences {
		if ref != nil && strings.EqualFold(ref.RefType, refTypePURL) {
			return ref.Locator
		}
	}
	return ""
}

// packageLicense prefers the concluded license over the declared one.
func packageLicense(p *spdx.Package) string {
	for _, l := range []string{p.PackageLicenseConcluded, p.PackageLicenseDeclared} {
		if l != "" && l != noAssertion && l != "NONE" {
			return l
		}
	}
	return ""
}
