package dem

import "gonum.org/v1/gonum/spatial/r3"

// OwnerType tags which kind of rigid body an owner slot holds. It is the
// only polymorphism the core needs: a tagged
// variant, not an inheritance hierarchy.
type OwnerType uint8

const (
	OwnerClump OwnerType = iota
	OwnerAnalytical
	OwnerMesh
)

func (t OwnerType) String() string {
	switch t {
	case OwnerClump:
		return "clump"
	case OwnerAnalytical:
		return "analytical"
	case OwnerMesh:
		return "mesh"
	default:
		return "unknown"
	}
}

// Owner is one rigid body: a clump, analytical object, or mesh entity.
// Owners are stored in one flat array in a fixed partition order — clumps
// first, then analyticals, then meshes.
type Owner struct {
	Type OwnerType

	VoxelID          uint64
	SubX, SubY, SubZ uint32

	Ori Quat

	Vel    r3.Vec
	AngVel r3.Vec // body frame

	LinAcc r3.Vec
	AngAcc r3.Vec

	// FamilyID drives masking rules, prescribed motion and output filtering.
	FamilyID uint32

	// InertiaOffset selects a row of the mass/MOI template tables.
	InertiaOffset uint32
}

// Sphere is one sphere-shaped collision primitive belonging to a clump.
type Sphere struct {
	// OwnerID indexes into the owner array.
	OwnerID uint32

	// ComponentOffset is narrow (normally one byte) and may hold
	// ComponentOffsetSentinel if the true template index is not
	// jitifiable. ComponentOffsetExt always carries the full-width index;
	// any lookup that can target a non-jitified component must use it.
	ComponentOffset    uint8
	ComponentOffsetExt uint32

	MaterialTupleOffset uint32
}

// ComponentOffsetSentinel marks a Sphere whose template index exceeds the
// jitifiable range; callers must fall back to ComponentOffsetExt.
const ComponentOffsetSentinel uint8 = 0xFF

// Material holds the per-template physical properties used by the force
// model kernel.
type Material struct {
	YoungsModulus float64
	PoissonsRatio float64
	Restitution   float64
	Friction      float64
	RollingResist float64
}

// Template is a row shared by many owners/spheres: mass, principal moments
// of inertia, sphere geometry and material properties.
type Template struct {
	Mass      float64
	MOI       r3.Vec // XX, YY, ZZ principal moments of inertia
	Radius    float64
	LocalPos  r3.Vec
	Mat       Material
}
