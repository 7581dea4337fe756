package dem

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

func testLattice() LatticeParams {
	return LatticeParams{
		NVXp2: 16, NVYp2: 16, NVZp2: 16,
		L:         1e-6,
		VoxelSize: 0.01,
		LBF:       r3.Vec{X: -5, Y: -5, Z: -5},
	}
}

func TestEncodeDecode_RoundTrip(t *testing.T) {
	// GIVEN a lattice and an in-box world position
	p := testLattice()
	pos := r3.Vec{X: 1.2345, Y: -0.001, Z: 3.0}

	// WHEN the position is encoded then decoded
	voxelID, sx, sy, sz := p.Encode(pos)
	got := p.Decode(voxelID, sx, sy, sz)

	// THEN it agrees with the original position to within one L-unit
	assert.InDelta(t, pos.X, got.X, p.L, "x round-trip")
	assert.InDelta(t, pos.Y, got.Y, p.L, "y round-trip")
	assert.InDelta(t, pos.Z, got.Z, p.L, "z round-trip")
}

func TestEncodeDecode_SubVoxelInBounds(t *testing.T) {
	// GIVEN a lattice and a handful of scattered positions
	p := testLattice()
	positions := []r3.Vec{
		{X: -4.999, Y: -4.999, Z: -4.999},
		{X: 0, Y: 0, Z: 0},
		{X: 4.2, Y: -1.7, Z: 2.3},
	}

	for _, pos := range positions {
		// WHEN each is encoded
		_, sx, sy, sz := p.Encode(pos)

		// THEN the sub-voxel offsets stay within the voxel's bounds
		require.True(t, p.InBounds(sx, sy, sz), "sub-voxel offset out of range for %v", pos)
	}
}

func TestRevoxelize_FoldsOverflowIntoVoxel(t *testing.T) {
	// GIVEN an owner whose sub-voxel offset has drifted out of range
	p := testLattice()
	ext := uint32(p.VoxelSize / p.L)
	voxelID, _, _, _ := p.Encode(r3.Vec{X: 0, Y: 0, Z: 0})
	overflowed := ext + 5

	// WHEN Revoxelize is applied
	newVoxel, sx, sy, sz := p.Revoxelize(voxelID, overflowed, 0, 0)

	// THEN the sub-voxel offset is back in range and the world position is unchanged
	require.True(t, p.InBounds(sx, sy, sz))
	before := p.Decode(voxelID, overflowed, 0, 0)
	after := p.Decode(newVoxel, sx, sy, sz)
	assert.InDelta(t, before.X, after.X, p.L)
}

func TestQuat_RotateIdentity(t *testing.T) {
	// GIVEN the identity quaternion
	q := Quat{Q0: 1}
	v := r3.Vec{X: 1, Y: 2, Z: 3}

	// WHEN it rotates a vector
	got := q.Rotate(v)

	// THEN the vector is unchanged
	assert.InDelta(t, v.X, got.X, 1e-12)
	assert.InDelta(t, v.Y, got.Y, 1e-12)
	assert.InDelta(t, v.Z, got.Z, 1e-12)
}

func TestQuat_RotateNinetyDegreesAboutZ(t *testing.T) {
	// GIVEN a quaternion encoding a 90-degree rotation about Z
	const s = 0.7071067811865476 // sin(45deg) == cos(45deg)
	q := Quat{Q0: s, Q1: 0, Q2: 0, Q3: s}
	v := r3.Vec{X: 1, Y: 0, Z: 0}

	// WHEN it rotates the +X axis
	got := q.Rotate(v)

	// THEN the result is the +Y axis
	assert.InDelta(t, 0.0, got.X, 1e-9)
	assert.InDelta(t, 1.0, got.Y, 1e-9)
	assert.InDelta(t, 0.0, got.Z, 1e-9)
}

func TestQuat_Normalized(t *testing.T) {
	// GIVEN a non-unit quaternion
	q := Quat{Q0: 2, Q1: 0, Q2: 0, Q3: 0}

	// WHEN it is normalized
	got := q.Normalized()

	// THEN its norm is 1
	assert.InDelta(t, 1.0, got.Norm(), 1e-12)
}
