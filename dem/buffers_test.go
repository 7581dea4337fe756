package dem

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishOwnerState_CopiesPoseAndFamily(t *testing.T) {
	// GIVEN two owners with distinct poses and families
	owners := []Owner{
		{VoxelID: 1, SubX: 2, SubY: 3, SubZ: 4, Ori: Quat{Q0: 1}, FamilyID: 7},
		{VoxelID: 5, SubX: 6, SubY: 7, SubZ: 8, Ori: Quat{Q0: 1}, FamilyID: 9},
	}
	var snap PositionSnapshot

	// WHEN the owner state is published with family changes enabled
	PublishOwnerState(&snap, owners, true)

	// THEN the snapshot mirrors every field, including family
	require.Len(t, snap.VoxelID, 2)
	assert.Equal(t, uint64(1), snap.VoxelID[0])
	assert.Equal(t, uint32(9), snap.FamilyID[1])
}

func TestPublishOwnerState_OmitsFamilyWhenDisallowed(t *testing.T) {
	// GIVEN an owner and family changes disallowed
	owners := []Owner{{FamilyID: 3}}
	var snap PositionSnapshot

	// WHEN published
	PublishOwnerState(&snap, owners, false)

	// THEN no family array is populated
	assert.Len(t, snap.FamilyID, 0)
}

func TestApplyOwnerState_RoundTripsPose(t *testing.T) {
	// GIVEN a published snapshot
	owners := []Owner{{VoxelID: 42, SubX: 1, SubY: 2, SubZ: 3, Ori: Quat{Q0: 1}}}
	var snap PositionSnapshot
	PublishOwnerState(&snap, owners, false)

	// WHEN kT applies it to its local pose mirror
	poses := ApplyOwnerState(nil, &snap)

	// THEN the pose matches the original owner
	require.Len(t, poses, 1)
	assert.Equal(t, uint64(42), poses[0].VoxelID)
}

func TestPublishContacts_CountWrittenLast(t *testing.T) {
	// GIVEN a contact buffer and a fresh geometry list with mapping
	var buf ContactBuffer
	geomA := []uint32{0, 2}
	geomB := []uint32{1, 3}
	types := []ContactType{ContactSphereSphere, ContactSphereSphere}
	mapping := []int32{0, NullMapping}

	// WHEN published with history enabled
	PublishContacts(&buf, geomA, geomB, types, mapping, true)

	// THEN count matches the geometry length and mapping survives
	assert.Equal(t, 2, buf.Count)
	assert.Equal(t, []uint32{0, 2}, buf.GeometryA)
	assert.Equal(t, []int32{0, NullMapping}, buf.Mapping)
}

func TestPublishContacts_HistorylessClearsMapping(t *testing.T) {
	// GIVEN a contact buffer previously published with a mapping
	var buf ContactBuffer
	PublishContacts(&buf, []uint32{0}, []uint32{1}, []ContactType{ContactSphereSphere}, []int32{0}, true)

	// WHEN republished in historyless mode
	PublishContacts(&buf, []uint32{0}, []uint32{1}, []ContactType{ContactSphereSphere}, nil, false)

	// THEN the mapping is cleared, matching scenario 6 (no migrator input)
	assert.Nil(t, buf.Mapping)
}
