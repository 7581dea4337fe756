package dem

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// LatticeParams describes the fixed-point world-coordinate lattice shared by
// kT and dT. World position p in the box [LBF, LBF + voxelSize*2^nv] is
// encoded as (voxelID, subX, subY, subZ): voxelID packs the integer voxel
// lattice coordinates, and subX/Y/Z are integer offsets within a voxel at
// resolution L.
type LatticeParams struct {
	// NVXp2, NVYp2, NVZp2 are log2 of the voxel-lattice extent along each axis.
	NVXp2, NVYp2, NVZp2 uint8
	// L is the sub-voxel resolution (world units per integer sub-voxel unit).
	L float64
	// VoxelSize is the world-space size of one voxel.
	VoxelSize float64
	// LBF is the lower-back-front corner of the simulation domain.
	LBF r3.Vec
}

// subVoxelExtent returns the number of integer sub-voxel units spanning one voxel.
func (p LatticeParams) subVoxelExtent() uint64 {
	return uint64(p.VoxelSize / p.L)
}

// Encode maps a world position into (voxelID, subX, subY, subZ). It is the
// exact inverse of Decode on their shared integer lattice.
func (p LatticeParams) Encode(pos r3.Vec) (voxelID uint64, subX, subY, subZ uint32) {
	rel := r3.Sub(pos, p.LBF)
	ext := p.subVoxelExtent()

	// split rounds the in-voxel remainder to the nearest sub-voxel unit, so
	// floating-point noise cannot drop a whole unit, and carries a remainder
	// that rounds up to a full voxel into the voxel coordinate.
	split := func(r float64) (uint64, uint32) {
		v := uint64(r / p.VoxelSize)
		s := uint64(math.Round((r - float64(v)*p.VoxelSize) / p.L))
		if s >= ext {
			v, s = v+1, s-ext
		}
		return v, uint32(s)
	}
	vx, subX := split(rel.X)
	vy, subY := split(rel.Y)
	vz, subZ := split(rel.Z)

	voxelID = vx<<(p.NVYp2+p.NVZp2) | vy<<p.NVZp2 | vz
	return
}

// Decode maps (voxelID, subX, subY, subZ) back to a world position.
func (p LatticeParams) Decode(voxelID uint64, subX, subY, subZ uint32) r3.Vec {
	maskY := uint64(1)<<p.NVYp2 - 1
	maskZ := uint64(1)<<p.NVZp2 - 1

	vz := voxelID & maskZ
	vy := (voxelID >> p.NVZp2) & maskY
	vx := voxelID >> (p.NVYp2 + p.NVZp2)

	return r3.Vec{
		X: p.LBF.X + float64(vx)*p.VoxelSize + float64(subX)*p.L,
		Y: p.LBF.Y + float64(vy)*p.VoxelSize + float64(subY)*p.L,
		Z: p.LBF.Z + float64(vz)*p.VoxelSize + float64(subZ)*p.L,
	}
}

// InBounds reports whether a sub-voxel offset lies within [0, voxelSize/L).
// An owner failing this check must be re-voxelized.
func (p LatticeParams) InBounds(subX, subY, subZ uint32) bool {
	ext := uint32(p.subVoxelExtent())
	return subX < ext && subY < ext && subZ < ext
}

// Revoxelize folds an out-of-range sub-voxel offset back into range,
// carrying the overflow into the voxel coordinate. It is called at
// integration time whenever InBounds fails after an owner moves.
func (p LatticeParams) Revoxelize(voxelID uint64, subX, subY, subZ uint32) (newVoxelID uint64, newSubX, newSubY, newSubZ uint32) {
	pos := p.Decode(voxelID, subX, subY, subZ)
	return p.Encode(pos)
}

// Quat is a unit quaternion (q0, q1, q2, q3) applied to rotate owner-local
// sphere offsets into world coordinates.
type Quat struct {
	Q0, Q1, Q2, Q3 float64
}

// Norm returns the Euclidean norm of q.
func (q Quat) Norm() float64 {
	return math.Sqrt(q.Q0*q.Q0 + q.Q1*q.Q1 + q.Q2*q.Q2 + q.Q3*q.Q3)
}

// Normalized returns q scaled to unit norm. Orientations must be
// re-normalized after every integration cycle to stay a valid rotation.
func (q Quat) Normalized() Quat {
	n := q.Norm()
	if n == 0 {
		return Quat{Q0: 1}
	}
	return Quat{Q0: q.Q0 / n, Q1: q.Q1 / n, Q2: q.Q2 / n, Q3: q.Q3 / n}
}

// Rotate applies q to vector v using v <- v + 2*qvec x (qvec x v + q0*v),
// the standard quaternion rotation formula. q need not be pre-normalized by the caller but
// should be unit-norm for the result to be a rigid rotation.
func (q Quat) Rotate(v r3.Vec) r3.Vec {
	qvec := r3.Vec{X: q.Q1, Y: q.Q2, Z: q.Q3}
	inner := r3.Add(r3.Cross(qvec, v), r3.Scale(q.Q0, v))
	return r3.Add(v, r3.Scale(2, r3.Cross(qvec, inner)))
}

func (q Quat) String() string {
	return fmt.Sprintf("(%g, %g, %g, %g)", q.Q0, q.Q1, q.Q2, q.Q3)
}
