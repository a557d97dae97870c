//go:build unit
// +build unit

package compliance

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultTables(t *testing.T) {
	tables, err := DefaultTables()
	require.NoError(t, err)

	require.Contains(t, tables.NetworkCopyleft, "AGPL-3.0-only")
	require.Contains(t, tables.NetworkCopyleft, "SSPL-1.0")
	require.Contains(t, tables.Conflicts, Conflict{
		LicenseA: "GPL-2.0-only",
		LicenseB: "Apache-2.0",
		Reason:   "Apache-2.0 patent termination and indemnity terms are further restrictions that GPL-2.0 forbids.",
	})
	require.Equal(t, CategoryPermissive, tables.Categories["MIT"])
	require.Equal(t, CategoryCopyleftWeak, tables.Categories["LGPL-2.1"])

	engine, err := tables.NewEngine()
	require.NoError(t, err)
	r := engine.Evaluate(ModelSaaSHosted, CategoryCopyleftStrong, "AGPL-3.0-only", DepthDirect)
	require.Equal(t, RuleSaaSNetworkCopyleft, r.Rule)

	detector := tables.NewConflictDetector()
	require.Len(t, detector.Detect([]string{"GPL-2.0-only", "Apache-2.0"}), 1)
}

func TestLoadTables(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "tables.yaml")
	content := `
network_copyleft: [AGPL-3.0-only]
conflicts:
  - a: GPL-2.0-only
    b: Apache-2.0
    reason: patent clauses
categories:
  MIT: permissive
`
	require.NoError(t, os.WriteFile(file, []byte(content), 0o644))

	tables, err := LoadTables(file)
	require.NoError(t, err)
	require.Equal(t, []string{"AGPL-3.0-only"}, tables.NetworkCopyleft)
	require.Len(t, tables.Conflicts, 1)
	require.Equal(t, CategoryPermissive, tables.Categories["MIT"])
}

func TestLoadTables_EmptyPathUsesDefaults(t *testing.T) {
	tables, err := LoadTables("")
	require.NoError(t, err)
	require.NotEmpty(t, tables.Conflicts)
}

func TestLoadTables_MissingFile(t *testing.T) {
	_, err := LoadTables(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestParseTables_SchemaViolations(t *testing.T) {
	cases := map[string]string{
		"missing conflicts": `network_copyleft: [AGPL-3.0-only]`,
		"conflict without reason": `
network_copyleft: []
conflicts:
  - a: GPL-2.0-only
    b: Apache-2.0
`,
		"unknown category": `
network_copyleft: []
conflicts: []
categories:
  MIT: lenient
`,
		"unexpected key": `
network_copyleft: []
conflicts: []
exceptions: []
`,
		"not a mapping": `- MIT`,
	}

	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseTables([]byte(content))
			require.Error(t, err)
		})
	}
}
