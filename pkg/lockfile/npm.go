package lockfile

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

const nodeModulesPrefix = "node_modules/"

type npmEntry struct {
	Version string `json:"version"`
	Link    bool   `json:"link"`
	// Only present in lockfileVersion 1.
	Dependencies json.RawMessage `json:"dependencies"`
}

// ParseNPM reads a package-lock.json.
//
// lockfileVersion 2 and 3 files are read from "packages", keyed by install
// path. The root entry is skipped and nested copies collapse onto the package
// name, the last one in file order winning. lockfileVersion 1 files are read
// from "dependencies", keyed by package name. The top-level copy of a package
// wins over copies nested under other packages.
func ParseNPM(content []byte) (Versions, error) {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(content, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidLockfile, err)
	}

	if raw, ok := doc["packages"]; ok && isObject(raw) {
		versions := make(Versions)
		err := eachEntry(raw, func(path string, e npmEntry) error {
			name := packageNameFromPath(path)
			if name == "" || e.Link || !isRegistryVersion(e.Version) {
				return nil
			}
			versions[name] = e.Version
			return nil
		})
		if err != nil {
			return nil, err
		}
		return versions, nil
	}

	if raw, ok := doc["dependencies"]; ok && isObject(raw) {
		versions := make(Versions)
		if err := collectV1(raw, versions); err != nil {
			return nil, err
		}
		return versions, nil
	}

	return nil, ErrUnrecognizedFormat
}

// collectV1 reads the top-level entries first. Nested copies only fill in
// names that are not installed at the top level.
func collectV1(raw json.RawMessage, versions Versions) error {
	var nested []json.RawMessage
	err := eachEntry(raw, func(name string, e npmEntry) error {
		if isRegistryVersion(e.Version) {
			versions[name] = e.Version
		}
		if isObject(e.Dependencies) {
			nested = append(nested, e.Dependencies)
		}
		return nil
	})
	if err != nil {
		return err
	}
	for _, deps := range nested {
		if err := collectNestedV1(deps, versions); err != nil {
			return err
		}
	}
	return nil
}

func collectNestedV1(raw json.RawMessage, versions Versions) error {
	return eachEntry(raw, func(name string, e npmEntry) error {
		if _, ok := versions[name]; !ok && isRegistryVersion(e.Version) {
			versions[name] = e.Version
		}
		if isObject(e.Dependencies) {
			return collectNestedV1(e.Dependencies, versions)
		}
		return nil
	})
}

// packageNameFromPath returns the package installed at a v2/v3 path key:
// "node_modules/a/node_modules/@s/b" installs "@s/b". Keys outside
// node_modules (the root, workspace folders) have no package name.
func packageNameFromPath(path string) string {
	i := strings.LastIndex(path, nodeModulesPrefix)
	if i < 0 || (i > 0 && path[i-1] != '/') {
		return ""
	}
	return path[i+len(nodeModulesPrefix):]
}

// eachEntry walks a JSON object in document order. Go maps do not keep
// insertion order, which last-write-wins depends on.
func eachEntry(raw json.RawMessage, fn func(key string, e npmEntry) error) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	if _, err := dec.Token(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidLockfile, err)
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidLockfile, err)
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("%w: unexpected token %v", ErrInvalidLockfile, tok)
		}
		var e npmEntry
		if err := dec.Decode(&e); err != nil {
			return fmt.Errorf("%w: entry %q: %v", ErrUnrecognizedFormat, key, err)
		}
		if err := fn(key, e); err != nil {
			return err
		}
	}
	return nil
}

func isObject(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '{'
}
