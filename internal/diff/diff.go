// Package diff derives the field-by-field comparison shown to reviewers.
package diff

import (
	"github.com/samber/lo"

	"placement/api/internal/fieldmap"
)

// Change is one row of a comparison. BeforeSet and AfterSet are false when
// the key is absent from that side.
type Change struct {
	Field     string
	Before    fieldmap.Value
	After     fieldmap.Value
	BeforeSet bool
	AfterSet  bool
}

// Changed reports whether the requested side sets a value that differs from
// the original. Keys the request leaves alone are not changes.
func (c Change) Changed() bool {
	if !c.AfterSet {
		return false
	}
	return !c.BeforeSet || !c.Before.Equal(c.After)
}

// Compute returns one Change per key present in either map: original keys in
// stored order, then keys only present in requested.
func Compute(original, requested fieldmap.Map) []Change {
	keys := lo.Union(original.Keys(), requested.Keys())
	changes := make([]Change, 0, len(keys))
	for _, key := range keys {
		before, beforeSet := original.Get(key)
		after, afterSet := requested.Get(key)
		changes = append(changes, Change{
			Field:     key,
			Before:    before,
			After:     after,
			BeforeSet: beforeSet,
			AfterSet:  afterSet,
		})
	}
	return changes
}

func OnlyChanged(changes []Change) []Change {
	return lo.Filter(changes, func(c Change, _ int) bool { return c.Changed() })
}
