package dem

// BruteForceBroadPhase is a reference BroadPhase that checks every owner
// pair directly rather than binning by voxel. It exists for the same
// reason the CPU kernel set does: spatial binning itself is an external
// collaborator invoked through a narrow interface, but the engine needs a
// working implementation to be runnable without one.
type BruteForceBroadPhase struct {
	Lattice LatticeParams
	// OwnerRadius looks up the collision radius for a pose; without a
	// radius table this reports a uniform radius of 1.
	OwnerRadius func(i int) float64
}

func (bp BruteForceBroadPhase) radius(i int) float64 {
	if bp.OwnerRadius == nil {
		return 1
	}
	return bp.OwnerRadius(i)
}

// FindPairs reports every pair of owners whose spheres overlap, with A<B
// and pairs sorted by (A,B) so regeneration is deterministic.
func (bp BruteForceBroadPhase) FindPairs(poses []OwnerPose) (geomA, geomB []uint32, types []ContactType) {
	for i := 0; i < len(poses); i++ {
		pi := bp.Lattice.Decode(poses[i].VoxelID, poses[i].SubX, poses[i].SubY, poses[i].SubZ)
		ri := bp.radius(i)
		for j := i + 1; j < len(poses); j++ {
			pj := bp.Lattice.Decode(poses[j].VoxelID, poses[j].SubX, poses[j].SubY, poses[j].SubZ)
			rj := bp.radius(j)

			dx, dy, dz := pi.X-pj.X, pi.Y-pj.Y, pi.Z-pj.Z
			distSq := dx*dx + dy*dy + dz*dz
			reach := ri + rj
			if distSq <= reach*reach {
				geomA = append(geomA, uint32(i))
				geomB = append(geomB, uint32(j))
				types = append(types, ContactSphereSphere)
			}
		}
	}
	return
}
