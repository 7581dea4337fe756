package dem

// PositionSnapshot is the dT->kT transfer buffer: a shadow copy of owner
// positions, orientations and (conditionally) family IDs that dT publishes
// for kT to rebuild its spatial hash from.
type PositionSnapshot struct {
	VoxelID          []uint64
	SubX, SubY, SubZ []uint32
	OriQ0, OriQ1, OriQ2, OriQ3 []float64
	// FamilyID is populated only when CanFamilyChange is set; otherwise
	// it is left at its prior length-zero state.
	FamilyID []uint32
}

// resize grows s's slices to length n, preserving existing contents.
func (s *PositionSnapshot) resize(n int, withFamily bool) {
	s.VoxelID = growUint64(s.VoxelID, n)
	s.SubX = growUint32(s.SubX, n)
	s.SubY = growUint32(s.SubY, n)
	s.SubZ = growUint32(s.SubZ, n)
	s.OriQ0 = growFloat64(s.OriQ0, n)
	s.OriQ1 = growFloat64(s.OriQ1, n)
	s.OriQ2 = growFloat64(s.OriQ2, n)
	s.OriQ3 = growFloat64(s.OriQ3, n)
	if withFamily {
		s.FamilyID = growUint32(s.FamilyID, n)
	}
}

// PublishOwnerState copies dT's current owner positions/orientations (and
// family IDs, if canFamilyChange) into dst, the position snapshot owned by
// kT. Callers must hold coord.KinematicOwnedBuffer for the duration of the
// call and must set the freshness flag only after this returns (an
// ordering invariant).
func PublishOwnerState(dst *PositionSnapshot, owners []Owner, canFamilyChange bool) {
	n := len(owners)
	dst.resize(n, canFamilyChange)
	for i, o := range owners {
		dst.VoxelID[i] = o.VoxelID
		dst.SubX[i] = o.SubX
		dst.SubY[i] = o.SubY
		dst.SubZ[i] = o.SubZ
		dst.OriQ0[i] = o.Ori.Q0
		dst.OriQ1[i] = o.Ori.Q1
		dst.OriQ2[i] = o.Ori.Q2
		dst.OriQ3[i] = o.Ori.Q3
		if canFamilyChange {
			dst.FamilyID[i] = o.FamilyID
		}
	}
}

// ApplyOwnerState copies a position snapshot back into kT's local owner
// pose mirror (kT does not need velocities or accelerations — only enough
// state to rebuild its spatial hash and broad-phase pairs).
func ApplyOwnerState(dst []OwnerPose, src *PositionSnapshot) []OwnerPose {
	n := len(src.VoxelID)
	if cap(dst) < n {
		dst = make([]OwnerPose, n)
	}
	dst = dst[:n]
	for i := range dst {
		dst[i] = OwnerPose{
			VoxelID: src.VoxelID[i],
			SubX:    src.SubX[i],
			SubY:    src.SubY[i],
			SubZ:    src.SubZ[i],
			Ori:     Quat{src.OriQ0[i], src.OriQ1[i], src.OriQ2[i], src.OriQ3[i]},
		}
		if len(src.FamilyID) == n {
			dst[i].FamilyID = src.FamilyID[i]
		}
	}
	return dst
}

// OwnerPose is kT's local, read-only mirror of an owner's pose — just
// enough to rebuild the spatial hash, never the full dT-side Owner.
type OwnerPose struct {
	VoxelID          uint64
	SubX, SubY, SubZ uint32
	Ori              Quat
	FamilyID         uint32
}

// PublishContacts writes kT's freshly rebuilt contact list and (if
// historyEnabled) its mapping into dst, dT's inbound buffer. Count and
// Mapping are written last, matching the publication-point
// invariant: a partially-written buffer must never appear fresh.
func PublishContacts(dst *ContactBuffer, geomA, geomB []uint32, types []ContactType, mapping []int32, historyEnabled bool) {
	n := len(geomA)
	dst.GeometryA = growUint32(dst.GeometryA, n)
	dst.GeometryB = growUint32(dst.GeometryB, n)
	dst.Type = growContactType(dst.Type, n)
	copy(dst.GeometryA, geomA)
	copy(dst.GeometryB, geomB)
	copy(dst.Type, types)

	if historyEnabled {
		dst.Mapping = growInt32(dst.Mapping, n)
		copy(dst.Mapping, mapping)
	} else {
		dst.Mapping = nil
	}

	// Count is the publication point: dT must never observe a count that
	// does not match the geometry/mapping arrays already written above.
	dst.Count = n
}

func growUint64(s []uint64, n int) []uint64 {
	if cap(s) >= n {
		return s[:n]
	}
	return make([]uint64, n)
}
func growUint32(s []uint32, n int) []uint32 {
	if cap(s) >= n {
		return s[:n]
	}
	return make([]uint32, n)
}
func growFloat64(s []float64, n int) []float64 {
	if cap(s) >= n {
		return s[:n]
	}
	return make([]float64, n)
}
func growInt32(s []int32, n int) []int32 {
	if cap(s) >= n {
		return s[:n]
	}
	return make([]int32, n)
}
func growContactType(s []ContactType, n int) []ContactType {
	if cap(s) >= n {
		return s[:n]
	}
	return make([]ContactType, n)
}
