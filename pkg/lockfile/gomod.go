package lockfile

import (
	"fmt"

	"golang.org/x/mod/modfile"
)

// ParseGoMod reads the required module versions of a go.mod file. A replace
// directive that pins the same module path to another version wins over the
// require directive.
func ParseGoMod(content []byte) (Versions, error) {
	mf, err := modfile.Parse("go.mod", content, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidLockfile, err)
	}
	if mf.Module == nil && len(mf.Require) == 0 {
		return nil, ErrUnrecognizedFormat
	}

	versions := make(Versions, len(mf.Require))
	for _, req := range mf.Require {
		if isRegistryVersion(req.Mod.Version) {
			versions[req.Mod.Path] = req.Mod.Version
		}
	}
	for _, rep := range mf.Replace {
		if rep.New.Path != rep.Old.Path || rep.New.Version == "" {
			continue
		}
		if _, ok := versions[rep.Old.Path]; ok {
			versions[rep.Old.Path] = rep.New.Version
		}
	}
	return versions, nil
}
