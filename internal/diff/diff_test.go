package diff

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"placement/api/internal/fieldmap"
)

func TestComputeOrdersOriginalThenRequestedOnly(t *testing.T) {
	original := fieldmap.FromEntries(
		fieldmap.Entry{Key: "name", Value: fieldmap.String("Acme")},
		fieldmap.Entry{Key: "package", Value: fieldmap.String("10")},
	)
	requested := fieldmap.FromEntries(
		fieldmap.Entry{Key: "remarks", Value: fieldmap.String("call back")},
		fieldmap.Entry{Key: "package", Value: fieldmap.String("12")},
	)

	changes := Compute(original, requested)
	require.Len(t, changes, 3)

	assert.Equal(t, "name", changes[0].Field)
	assert.True(t, changes[0].BeforeSet)
	assert.False(t, changes[0].AfterSet)
	assert.False(t, changes[0].Changed())

	assert.Equal(t, "package", changes[1].Field)
	assert.Equal(t, "10", changes[1].Before.String())
	assert.Equal(t, "12", changes[1].After.String())
	assert.True(t, changes[1].Changed())

	assert.Equal(t, "remarks", changes[2].Field)
	assert.False(t, changes[2].BeforeSet)
	assert.True(t, changes[2].AfterSet)
	assert.True(t, changes[2].Changed())
}

func TestComputeIsIdempotent(t *testing.T) {
	original := fieldmap.FromEntries(fieldmap.Entry{Key: "isContacted", Value: fieldmap.Bool(false)})
	requested := fieldmap.FromEntries(fieldmap.Entry{Key: "isContacted", Value: fieldmap.Bool(false)})

	first := Compute(original, requested)
	second := Compute(original, requested)
	assert.Equal(t, first, second)
	assert.Empty(t, OnlyChanged(first))
}

func TestComputeEmptyMaps(t *testing.T) {
	assert.Empty(t, Compute(fieldmap.Map{}, fieldmap.Map{}))
}

func TestChangedDistinguishesKinds(t *testing.T) {
	change := Change{
		Field:     "isContacted",
		Before:    fieldmap.String("true"),
		After:     fieldmap.Bool(true),
		BeforeSet: true,
		AfterSet:  true,
	}
	assert.True(t, change.Changed())
}
