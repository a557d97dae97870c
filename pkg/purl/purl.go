// Package purl provides the Package URL helpers used when dependency
// versions are filled in from lockfiles.
// See: https://github.com/package-url/purl-spec
package purl

import (
	"net/url"
	"strings"

	"github.com/package-url/packageurl-go"
)

// HasVersion reports whether the package URL already carries a version.
//
// A scoped npm package is written pkg:npm/%40scope/name (or with a literal
// "@scope"), so the presence of "@" alone is not enough: only an "@" in the
// last path segment marks a version.
func HasVersion(p string) bool {
	base := stripQualifiers(p)
	return strings.Contains(base[strings.LastIndex(base, "/")+1:], "@")
}

// WithVersion returns p with the given version. A package URL that already
// has a version is returned unchanged. The version is inserted before any
// qualifiers or subpath so the type, namespace and name are never altered.
func WithVersion(p, version string) string {
	if version == "" || HasVersion(p) {
		return p
	}
	base := stripQualifiers(p)
	return base + "@" + url.PathEscape(version) + p[len(base):]
}

// Build creates a package URL for an ecosystem package name. Names with a
// namespace (an npm scope, a Go module path) are split on the last "/".
func Build(ecosystem, name, version string) string {
	namespace := ""
	if i := strings.LastIndex(name, "/"); i > 0 {
		namespace, name = name[:i], name[i+1:]
	}
	return packageurl.NewPackageURL(Type(ecosystem), namespace, name, version, nil, "").ToString()
}

// Ecosystem returns the package URL type, e.g. "npm" for pkg:npm/express.
func Ecosystem(p string) string {
	parsed, err := packageurl.FromString(p)
	if err != nil {
		return ""
	}
	return parsed.Type
}

// Name returns the full package name, namespace included, as package
// managers spell it: "@scope/name" for npm, the module path for Go.
func Name(p string) string {
	parsed, err := packageurl.FromString(p)
	if err != nil {
		return ""
	}
	if parsed.Namespace == "" {
		return parsed.Name
	}
	return parsed.Namespace + "/" + parsed.Name
}

// Version returns the version of the package URL, if any.
func Version(p string) string {
	parsed, err := packageurl.FromString(p)
	if err != nil {
		return ""
	}
	return parsed.Version
}

// Type maps ecosystem names used in SBOM exports to package URL types.
func Type(ecosystem string) string {
	switch e := strings.ToLower(ecosystem); e {
	case "go", "gomod", "golang":
		return packageurl.TypeGolang
	case "node", "npm", "javascript":
		return packageurl.TypeNPM
	case "python", "pip", "pypi":
		return packageurl.TypePyPi
	default:
		return e
	}
}

func stripQualifiers(p string) string {
	if i := strings.IndexAny(p, "?#"); i >= 0 {
		return p[:i]
	}
	return p
}
