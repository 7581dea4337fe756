package dem

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedBroadPhase returns a preset sequence of pair lists, one per call,
// so tests can control what kT "discovers" on successive work orders.
type scriptedBroadPhase struct {
	calls int
	pairs [][2][]uint32 // [call][0]=geomA, [call][1]=geomB
}

func (b *scriptedBroadPhase) FindPairs(poses []OwnerPose) (geomA, geomB []uint32, types []ContactType) {
	i := b.calls
	if i >= len(b.pairs) {
		i = len(b.pairs) - 1
	}
	b.calls++
	geomA, geomB = b.pairs[i][0], b.pairs[i][1]
	types = make([]ContactType, len(geomA))
	return
}

func newTestKinematicWorker(bp BroadPhase, historyless bool) *KinematicWorker {
	coord := NewCoordinator(4)
	cfg := EngineConfig{IsHistoryless: historyless}
	var contacts ContactBuffer
	var snapshot PositionSnapshot
	snapshot.resize(2, false)
	return NewKinematicWorker(coord, bp, cfg, &contacts, &snapshot)
}

func TestKinematicWorker_PublishesContactsFromBroadPhase(t *testing.T) {
	// GIVEN a kinematic worker whose broad phase reports one pair
	bp := &scriptedBroadPhase{pairs: [][2][]uint32{{{0}, {1}}}}
	w := newTestKinematicWorker(bp, true)

	// WHEN one work order is served
	require.NoError(t, w.serveOneWorkOrder())

	// THEN the contact buffer reflects the discovered pair and dT's buffer is marked fresh
	assert.Equal(t, 1, w.Contacts.Count)
	assert.Equal(t, uint32(0), w.Contacts.GeometryA[0])
	assert.True(t, w.Coord.DynamicOwnedFresh())
}

func TestKinematicWorker_BuildsMappingAcrossRegenerations(t *testing.T) {
	// GIVEN a broad phase that reports pair (0,1) first, then (0,1) and (2,3)
	bp := &scriptedBroadPhase{pairs: [][2][]uint32{
		{{0}, {1}},
		{{0, 2}, {1, 3}},
	}}
	w := newTestKinematicWorker(bp, false)

	// WHEN two work orders are served in sequence
	require.NoError(t, w.serveOneWorkOrder())
	require.NoError(t, w.serveOneWorkOrder())

	// THEN the surviving pair maps to its old index and the new pair is null-mapped
	require.Len(t, w.Contacts.Mapping, 2)
	assert.Equal(t, int32(0), w.Contacts.Mapping[0])
	assert.Equal(t, NullMapping, w.Contacts.Mapping[1])
}

func TestKinematicWorker_HistorylessModeOmitsMapping(t *testing.T) {
	// GIVEN a historyless kinematic worker
	bp := &scriptedBroadPhase{pairs: [][2][]uint32{{{0}, {1}}}}
	w := newTestKinematicWorker(bp, true)

	// WHEN a work order is served
	require.NoError(t, w.serveOneWorkOrder())

	// THEN no mapping is published
	assert.Nil(t, w.Contacts.Mapping)
}
