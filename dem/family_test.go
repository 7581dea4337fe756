package dem

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFamilyMap_DefineAssignsDenseInternalIDs(t *testing.T) {
	// GIVEN a fresh family map with default family 0
	fm := NewFamilyMap(0)

	// WHEN two new user families are defined
	a := fm.Define(10)
	b := fm.Define(20)

	// THEN they get distinct, dense internal IDs after the default's
	require.NotEqual(t, a, b)
	assert.Equal(t, uint32(0), fm.Internal(0))
}

func TestFamilyMap_UnseenFamilyFallsBackToDefault(t *testing.T) {
	// GIVEN a family map with only the default family registered
	fm := NewFamilyMap(0)

	// WHEN an unregistered user family is resolved
	id := fm.Internal(99)

	// THEN it resolves to the default family's internal ID
	assert.Equal(t, fm.Internal(0), id)
}

func TestFamilyMap_UserRoundTripsDefine(t *testing.T) {
	// GIVEN a family map with a defined family
	fm := NewFamilyMap(0)
	id := fm.Define(42)

	// WHEN the internal ID is resolved back to a user number
	got := fm.User(id)

	// THEN it matches the original user family number
	assert.Equal(t, uint32(42), got)
}

func TestFamilyMap_SuppressMarksAndListsSorted(t *testing.T) {
	// GIVEN a family map with two families suppressed out of order
	fm := NewFamilyMap(0)
	fm.Suppress(30)
	fm.Suppress(10)

	// WHEN suppression is queried
	id30 := fm.Internal(30)

	// THEN the suppressed family reports as such and the listing is sorted
	assert.True(t, fm.IsSuppressed(id30))
	assert.Equal(t, []uint32{10, 30}, fm.SuppressedUserFamilies())
}

func TestFamilyMap_DefineIsIdempotent(t *testing.T) {
	// GIVEN a family already defined
	fm := NewFamilyMap(0)
	first := fm.Define(5)

	// WHEN it is defined again
	second := fm.Define(5)

	// THEN the same internal ID is returned
	assert.Equal(t, first, second)
}
