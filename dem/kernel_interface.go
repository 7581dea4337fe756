package dem

// Set is the narrow interface the dynamic worker calls through for every
// force-model and integration operation. A real deployment backs this with
// GPU kernels; this package ships only the interface and a registration
// point so dem/kernel can supply a deterministic CPU implementation without
// dem importing it directly (dem/kernel imports dem for its data types, so
// the dependency can only run one way).
//
// All six groups are named the way the underlying force-model stages are
// conventionally grouped: array preparation, force calculation, force
// collection, integration, family/state modification, and statistics.
type Set interface {
	// PrepareForceArrays resets per-contact force accumulators ahead of a
	// new force-calculation pass.
	PrepareForceArrays(g GranData) error

	// MarkAliveContacts flags which contacts in g.Contacts are still
	// geometrically active, ahead of history rearrangement.
	MarkAliveContacts(g GranData) error

	// RearrangeContactHistory applies a migration mapping (as built by the
	// kinematic worker and consumed by MigrateHistory) to g's contact
	// history in place. A GPU backend needs
	// this as its own kernel launch since its history arrays live on the
	// device; the CPU reference kernel implements it for interface parity,
	// but the dynamic worker migrates history on the host via MigrateHistory
	// before any kernel call, so in the all-CPU path this method goes
	// unused.
	RearrangeContactHistory(g GranData, mapping []int32) error

	// CalculateContactForces computes normal/tangential contact forces
	// using accumulated history. historyEnabled selects whether tangential
	// history contributes to the friction model.
	CalculateContactForces(g GranData, historyEnabled bool) error

	// CollectContactForces reduces per-contact forces into per-owner net
	// force and torque.
	CollectContactForces(g GranData) error

	// IntegrateClumps advances owner position, orientation, velocity and
	// angular velocity by one timestep h.
	IntegrateClumps(g GranData, h float64) error

	// ApplyFamilyChanges applies any pending family reassignment or
	// prescribed-motion override for the given owners.
	ApplyFamilyChanges(g GranData, fm *FamilyMap) error

	// ComputeKE returns the system's total kinetic energy.
	ComputeKE(g GranData) (float64, error)
}

// NewKernelSetFunc is set by dem/kernel's init() to the CPU reference
// kernel's constructor. It is nil until a kernel implementation package
// is imported.
var NewKernelSetFunc func() Set
