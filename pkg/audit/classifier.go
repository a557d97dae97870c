package audit

import (
	"strings"

	"github.com/cryptellation/compliance/pkg/compliance"
	"github.com/cryptellation/compliance/pkg/spdx"
)

// Classifier assigns a license category to an SPDX expression.
type Classifier interface {
	Classify(expression string) compliance.LicenseCategory
}

// restrictiveness orders the known categories, most permissive first.
var restrictiveness = map[compliance.LicenseCategory]int{
	compliance.CategoryPermissive:     0,
	compliance.CategoryCopyleftWeak:   1,
	compliance.CategoryCopyleftStrong: 2,
}

// StaticClassifier classifies expressions from a fixed identifier table.
//
// The classification is conservative: an expression takes the most
// restrictive category of its identifiers, and a single unlisted identifier
// makes the whole expression unknown. License exceptions introduced by WITH
// do not take part in the classification.
type StaticClassifier struct {
	categories map[string]compliance.LicenseCategory
}

// Ensure StaticClassifier implements Classifier.
var _ Classifier = (*StaticClassifier)(nil)

// NewStaticClassifier creates a classifier from an identifier to category
// table. Identifiers are matched case-insensitively.
func NewStaticClassifier(categories map[string]compliance.LicenseCategory) *StaticClassifier {
	c := &StaticClassifier{categories: make(map[string]compliance.LicenseCategory, len(categories))}
	for id, cat := range categories {
		c.categories[strings.ToUpper(id)] = cat
	}
	return c
}

// Classify implements Classifier.
func (c *StaticClassifier) Classify(expression string) compliance.LicenseCategory {
	ids := spdx.UniqueIdentifiers(expression)
	if len(ids) == 0 {
		return compliance.CategoryNoAssertion
	}

	result := compliance.CategoryPermissive
	for _, id := range ids {
		if isException(id) {
			continue
		}
		cat, ok := c.lookup(id)
		if !ok {
			return compliance.CategoryUnknown
		}
		switch cat {
		case compliance.CategoryUnknown, compliance.CategoryNoAssertion:
			return cat
		}
		if restrictiveness[cat] > restrictiveness[result] {
			result = cat
		}
	}
	return result
}

func (c *StaticClassifier) lookup(id string) (compliance.LicenseCategory, bool) {
	key := strings.ToUpper(id)
	if cat, ok := c.categories[key]; ok {
		return cat, true
	}
	// "GPL-2.0+" is the deprecated spelling of "GPL-2.0-or-later".
	if base, found := strings.CutSuffix(key, "+"); found {
		if cat, ok := c.categories[base+"-OR-LATER"]; ok {
			return cat, true
		}
		cat, ok := c.categories[base]
		return cat, ok
	}
	return "", false
}

func isException(id string) bool {
	return strings.Contains(strings.ToLower(id), "exception")
}
