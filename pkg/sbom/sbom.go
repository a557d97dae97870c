// Package sbom imports the dependency inventory of a product from CycloneDX
// and SPDX JSON exports.
package sbom

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/cryptellation/compliance/pkg/compliance"
	"github.com/cryptellation/compliance/pkg/depgraph"
	"github.com/cryptellation/compliance/pkg/purl"
)

// Format is an SBOM serialization.
type Format string

const (
	FormatCycloneDX Format = "cyclonedx"
	FormatSPDX      Format = "spdx"
)

// HashGapNoVersion is recorded on packages imported without a version: no
// package hash can be looked up until the version is known.
const HashGapNoVersion = "version unknown"

// noAssertion is the SPDX value for an absent license declaration.
const noAssertion = "NOASSERTION"

var (
	// ErrUnknownFormat is returned when the document is neither CycloneDX nor SPDX JSON.
	ErrUnknownFormat = errors.New("unknown SBOM format")
	// ErrInvalidDocument is returned when the document cannot be decoded.
	ErrInvalidDocument = errors.New("invalid SBOM document")
)

// Package is one package listed by an SBOM.
type Package struct {
	Name      string
	PURL      string
	Ecosystem string
	Version   string
	License   string
	Depth     compliance.DependencyDepth
}

// Document is the content of an imported SBOM.
type Document struct {
	Format   Format
	Packages []Package
}

// Dependencies returns the packages as dependency graph nodes of the product.
func (d *Document) Dependencies(productID string) []depgraph.Dependency {
	deps := make([]depgraph.Dependency, 0, len(d.Packages))
	for _, p := range d.Packages {
		dep := depgraph.Dependency{
			ProductID: productID,
			Name:      p.Name,
			PURL:      p.PURL,
			Ecosystem: p.Ecosystem,
			Version:   p.Version,
			License:   p.License,
			Depth:     string(p.Depth),
		}
		if dep.Version == "" {
			dep.HashGapReason = HashGapNoVersion
		}
		deps = append(deps, dep)
	}
	return deps
}

// DetectFormat tells CycloneDX and SPDX JSON documents apart.
func DetectFormat(content []byte) (Format, error) {
	var probe struct {
		BOMFormat   string `json:"bomFormat"`
		SPDXVersion string `json:"spdxVersion"`
	}
	if err := json.Unmarshal(content, &probe); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	switch {
	case strings.EqualFold(probe.BOMFormat, "CycloneDX"):
		return FormatCycloneDX, nil
	case strings.HasPrefix(probe.SPDXVersion, "SPDX-"):
		return FormatSPDX, nil
	default:
		return "", ErrUnknownFormat
	}
}

// Import reads an SBOM. An empty format is detected from the content.
func Import(r io.Reader, format Format) (*Document, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read SBOM: %w", err)
	}
	if format == "" {
		if format, err = DetectFormat(content); err != nil {
			return nil, err
		}
	}

	var pkgs []Package
	switch format {
	case FormatCycloneDX:
		pkgs, err = importCycloneDX(bytes.NewReader(content))
	case FormatSPDX:
		pkgs, err = importSPDX(bytes.NewReader(content))
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
	if err != nil {
		return nil, err
	}
	return &Document{Format: format, Packages: pkgs}, nil
}

// newPackage normalizes the identity of a package: the purl, when present,
// is authoritative for ecosystem, name and version.
func newPackage(name, p, version, license string, depth compliance.DependencyDepth) Package {
	if p == "" {
		p = purl.Build("generic", name, version)
	}
	if n := purl.Name(p); n != "" {
		name = n
	}
	if v := purl.Version(p); v != "" {
		version = v
	} else if version != "" {
		p = purl.WithVersion(p, version)
	}
	if license == "" {
		license = noAssertion
	}
	return Package{
		Name:      name,
		PURL:      p,
		Ecosystem: purl.Ecosystem(p),
		Version:   version,
		License:   license,
		Depth:     depth,
	}
}
