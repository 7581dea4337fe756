package dem

import "gonum.org/v1/gonum/spatial/r3"

// NullMapping is the sentinel mapping value kT writes for a newly-born
// contact pair that has no predecessor in the prior contact list.
const NullMapping int32 = -1

// ContactType distinguishes geometry pairings; the force kernel dispatches
// on it the way a force kernel would.
type ContactType uint8

const (
	ContactSphereSphere ContactType = iota
	ContactSphereAnalytical
	ContactSphereMesh
)

// Contact is one active contact-pair event. A contact's count varies every
// kT regeneration; the dynamic worker keeps a primary array plus the
// inbound ContactBuffer that kT writes into.
type Contact struct {
	GeometryA, GeometryB uint32
	Type                 ContactType

	PointA, PointB r3.Vec // world frame

	NormalForce, TangentialForce r3.Vec
	Torque                       r3.Vec // torque-equivalent of contact torque

	// History is the accumulated tangential displacement at this contact;
	// it must survive contact-list regeneration via MigrateHistory.
	History r3.Vec
	// Duration is the number of seconds this contact has been continuously
	// active.
	Duration float64
}

// ContactBuffer is what kT publishes into dT's inbound buffer each
// regeneration: a fresh geometry/type list plus (when history is enabled) a
// mapping from new index to old index. Count and Mapping are the last
// fields kT fills in — the publication point.
type ContactBuffer struct {
	GeometryA, GeometryB []uint32
	Type                 []ContactType

	// Mapping is nil in historyless mode. Mapping[i] is either the index
	// of pair i's predecessor in the previous contact list, or
	// NullMapping for a newly-born pair.
	Mapping []int32

	Count int
}
