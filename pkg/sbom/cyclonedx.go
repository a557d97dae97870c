package sbom

import (
	"fmt"
	"io"
	"strings"

	cdx "github.com/CycloneDX/cyclonedx-go"
	"github.com/cryptellation/compliance/pkg/compliance"
)

func importCycloneDX(r io.Reader) ([]Package, error) {
	bom := new(cdx.BOM)
	if err := cdx.NewBOMDecoder(r, cdx.BOMFileFormatJSON).Decode(bom); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}

	direct := directRefs(bom)
	var pkgs []Package
	var walk func(components []cdx.Component)
	walk = func(components []cdx.Component) {
		for _, c := range components {
			if c.Type != cdx.ComponentTypeApplication || c.PackageURL != "" {
				depth := compliance.DepthTransitive
				if _, ok := direct[c.BOMRef]; ok {
					depth = compliance.DepthDirect
				}
				name := c.Name
				if c.Group != "" {
					name = c.Group + "/" + c.Name
				}
				pkgs = append(pkgs, newPackage(name, c.PackageURL, c.Version, cycloneDXLicense(c.Licenses), depth))
			}
			if c.Components != nil {
				walk(*c.Components)
			}
		}
	}
	if bom.Components != nil {
		walk(*bom.Components)
	}
	return pkgs, nil
}

// directRefs returns the components the root component depends on.
func directRefs(bom *cdx.BOM) map[string]struct{} {
	refs := make(map[string]struct{})
	if bom.Metadata == nil || bom.Metadata.Component == nil || bom.Dependencies == nil {
		return refs
	}
	root := bom.Metadata.Component.BOMRef
	for _, d := range *bom.Dependencies {
		if d.Ref != root || d.Dependencies == nil {
			continue
		}
		for _, ref := range *d.Dependencies {
			refs[ref] = struct{}{}
		}
	}
	return refs
}

// cycloneDXLicense joins the license choices of a component into one SPDX
// expression.
func cycloneDXLicense(licenses *cdx.Licenses) string {
	if licenses == nil {
		return ""
	}
	var parts []string
	for _, l := range *licenses {
		switch {
		case l.Expression != "":
			parts = append(parts, l.Expression)
		case l.License != nil && l.License.ID != "":
			parts = append(parts, l.License.ID)
		case l.License != nil && l.License.Name != "":
			parts = append(parts, "LicenseRef-"+sanitizeRef(l.License.Name))
		}
	}
	switch len(parts) {
	case 0:
		return ""
	case 1:
		return parts[0]
	}
	for i, p := range parts {
		if strings.ContainsAny(p, " ") {
			parts[i] = "(" + p + ")"
		}
	}
	return strings.Join(parts, " AND ")
}

func sanitizeRef(name string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-':
			return r
		default:
			return '-'
		}
	}, name)
}
