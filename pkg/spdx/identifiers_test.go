//go:build unit
// +build unit

package spdx

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExtractIdentifiers(t *testing.T) {
	cases := []struct {
		name       string
		expression string
		want       []string
	}{
		{"empty", "", []string{}},
		{"whitespace only", "   \t ", []string{}},
		{"single", "MIT", []string{"MIT"}},
		{"disjunction in parens", "(MIT OR Apache-2.0)", []string{"MIT", "Apache-2.0"}},
		{"lowercase operators", "mit and bsd-3-clause", []string{"mit", "bsd-3-clause"}},
		{"exception", "GPL-2.0-only WITH Classpath-exception-2.0", []string{"GPL-2.0-only", "Classpath-exception-2.0"}},
		{"nested", "((MIT AND ISC) OR (GPL-3.0-or-later))", []string{"MIT", "ISC", "GPL-3.0-or-later"}},
		{"lone plus dropped", "GPL-2.0 +", []string{"GPL-2.0"}},
		{"plus suffix kept", "GPL-2.0+", []string{"GPL-2.0+"}},
		{"duplicates kept", "MIT OR MIT", []string{"MIT", "MIT"}},
		{"operator inside identifier untouched", "ORACLE-License", []string{"ORACLE-License"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, ExtractIdentifiers(tc.expression))
		})
	}
}

func TestUniqueIdentifiers(t *testing.T) {
	ids := UniqueIdentifiers("MIT OR Apache-2.0", "(Apache-2.0 AND BSD-2-Clause)", "", "MIT")
	require.Equal(t, []string{"MIT", "Apache-2.0", "BSD-2-Clause"}, ids)
}
