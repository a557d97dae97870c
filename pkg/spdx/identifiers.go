// Package spdx extracts license identifiers from SPDX license expressions.
//
// Only the tokenization needed to pull identifiers out of an expression is
// implemented here; expressions are never validated against the SPDX grammar.
package spdx

import (
	"strings"
)

// operators are removed as whole tokens so identifiers such as
// "GPL-3.0-or-later" keep their embedded "or".
var operators = map[string]struct{}{
	"AND":  {},
	"OR":   {},
	"WITH": {},
}

// ExtractIdentifiers returns the license identifiers of an expression in the
// order they appear. Duplicates are kept.
//
// Malformed input degrades to whatever whitespace-separated tokens remain.
func ExtractIdentifiers(expression string) []string {
	cleaned := strings.NewReplacer("(", " ", ")", " ").Replace(expression)

	tokens := strings.Fields(cleaned)
	ids := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if tok == "+" {
			continue
		}
		if _, ok := operators[strings.ToUpper(tok)]; ok {
			continue
		}
		ids = append(ids, tok)
	}
	return ids
}

// UniqueIdentifiers returns the identifiers found across all expressions,
// deduplicated and kept in first-seen order.
func UniqueIdentifiers(expressions ...string) []string {
	seen := make(map[string]struct{})
	var ids []string
	for _, expr := range expressions {
		for _, id := range ExtractIdentifiers(expr) {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
	}
	return ids
}
