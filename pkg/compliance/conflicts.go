package compliance

import (
	"github.com/cryptellation/compliance/pkg/spdx"
)

// ConflictDetector reports pairs of licenses from a curated table that are
// present together in one dependency set.
type ConflictDetector struct {
	table []Conflict
}

// NewConflictDetector builds a detector over the given table.
//
// An entry is matched when both of its identifiers are present, so (A, B) and
// (B, A) fire on the same input. Entries that repeat an earlier pair in either
// direction are dropped to report each incompatibility once, keeping the
// first declared direction.
func NewConflictDetector(table []Conflict) *ConflictDetector {
	seen := make(map[[2]string]struct{}, len(table))
	entries := make([]Conflict, 0, len(table))
	for _, c := range table {
		a, b := normalizeID(c.LicenseA), normalizeID(c.LicenseB)
		if a == "" || b == "" || a == b {
			continue
		}
		key := [2]string{a, b}
		if b < a {
			key = [2]string{b, a}
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		entries = append(entries, c)
	}
	return &ConflictDetector{table: entries}
}

// Detect returns the conflicts among every identifier of the given
// expressions. Results follow table order, so they do not depend on the
// order of the expressions.
func (d *ConflictDetector) Detect(expressions []string) []Conflict {
	present := make(map[string]struct{})
	for _, id := range spdx.UniqueIdentifiers(expressions...) {
		present[normalizeID(id)] = struct{}{}
	}

	conflicts := make([]Conflict, 0)
	if len(present) < 2 {
		return conflicts
	}
	for _, c := range d.table {
		_, hasA := present[normalizeID(c.LicenseA)]
		_, hasB := present[normalizeID(c.LicenseB)]
		if hasA && hasB {
			conflicts = append(conflicts, c)
		}
	}
	return conflicts
}

// Table returns a copy of the detector's conflict table.
func (d *ConflictDetector) Table() []Conflict {
	out := make([]Conflict, len(d.table))
	copy(out, d.table)
	return out
}
