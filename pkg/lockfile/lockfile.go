// Package lockfile extracts pinned dependency versions from package manager
// lockfiles.
package lockfile

import (
	"errors"
	"strings"

	"github.com/Masterminds/semver/v3"
)

var (
	// ErrInvalidLockfile is returned when the content cannot be decoded at all.
	ErrInvalidLockfile = errors.New("invalid lockfile")
	// ErrUnrecognizedFormat is returned when the content decodes but has none
	// of the supported shapes.
	ErrUnrecognizedFormat = errors.New("unrecognized lockfile format")
)

// Versions maps a package name, as the package manager spells it, to its
// resolved version.
type Versions map[string]string

// Format describes a lockfile: where it lives in a repository, which
// ecosystem it pins, and how to read it.
type Format struct {
	// Ecosystem is the package URL type of the packages the lockfile pins.
	Ecosystem string
	// Path is the location of the lockfile relative to the repository root.
	Path  string
	Parse func(content []byte) (Versions, error)
}

var (
	// NPM reads package-lock.json (lockfileVersion 1, 2 and 3).
	NPM = Format{Ecosystem: "npm", Path: "package-lock.json", Parse: ParseNPM}
	// GoMod reads the require directives of go.mod.
	GoMod = Format{Ecosystem: "golang", Path: "go.mod", Parse: ParseGoMod}
)

// Formats returns the supported lockfile formats.
func Formats() []Format {
	return []Format{NPM, GoMod}
}

// Supports reports whether the format pins packages of the given ecosystem.
func (f Format) Supports(ecosystem string) bool {
	return strings.EqualFold(f.Ecosystem, ecosystem)
}

// isRegistryVersion filters out git, file, link and tarball specs that some
// lockfiles record in place of a version.
func isRegistryVersion(v string) bool {
	if v == "" {
		return false
	}
	_, err := semver.NewVersion(v)
	return err == nil
}
