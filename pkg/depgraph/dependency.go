package depgraph

// VersionSourceLockfile marks a version resolved from a repository lockfile.
const VersionSourceLockfile = "lockfile"

// Repository is the source repository linked to a product.
type Repository struct {
	URL           string
	DefaultBranch string
	Provider      string
}

// Dependency is a package node of a product's dependency graph.
// An empty Version means the version is still unknown.
type Dependency struct {
	ProductID     string
	Name          string
	PURL          string
	Ecosystem     string
	Version       string
	VersionSource string
	HashGapReason string

	// License is the SPDX expression declared for the package.
	License string
	// Category is the license category, when already known upstream.
	Category string
	// Depth is "direct" or "transitive".
	Depth string
}

// VersionUpdate sets the version of the dependency identified by PURL,
// replacing its purl with NewPURL.
type VersionUpdate struct {
	PURL    string
	Version string
	NewPURL string
}
