package kernel

import (
	"testing"

	"github.com/sbel-gpu/dem-engine/dem"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

func twoSphereScene() dem.GranData {
	return dem.GranData{
		Owners: []dem.Owner{
			{SubX: 0, InertiaOffset: 0, Ori: dem.Quat{Q0: 1}},
			{SubX: 1, InertiaOffset: 0, Ori: dem.Quat{Q0: 1}},
		},
		Spheres: []dem.Sphere{
			{OwnerID: 0, ComponentOffsetExt: 0},
			{OwnerID: 1, ComponentOffsetExt: 0},
		},
		Templates: []dem.Template{{Mass: 1, Radius: 1}},
		Contacts: []dem.Contact{
			{GeometryA: 0, GeometryB: 1, Type: dem.ContactSphereSphere},
		},
	}
}

func TestCPUKernelSet_RegistersItself(t *testing.T) {
	// GIVEN this package has been imported for its init() side effect

	// THEN dem.NewKernelSetFunc is populated
	require.NotNil(t, dem.NewKernelSetFunc)
	set := dem.NewKernelSetFunc()
	assert.NotNil(t, set)
}

func TestCalculateContactForces_OverlappingSpheresRepel(t *testing.T) {
	// GIVEN two overlapping spheres (radius 1 each, centers 1 apart)
	g := twoSphereScene()
	set := NewCPUKernelSet()

	// WHEN forces are calculated with history enabled
	require.NoError(t, set.PrepareForceArrays(g))
	require.NoError(t, set.CalculateContactForces(g, true))

	// THEN a nonzero normal force is produced and duration advances
	assert.NotZero(t, g.Contacts[0].NormalForce.X)
	assert.Equal(t, 1.0, g.Contacts[0].Duration)
}

func TestCalculateContactForces_SeparatedSpheresProduceNoForce(t *testing.T) {
	// GIVEN two spheres far enough apart not to overlap
	g := twoSphereScene()
	g.Owners[1].SubX = 100
	set := NewCPUKernelSet()

	// WHEN forces are calculated
	require.NoError(t, set.CalculateContactForces(g, true))

	// THEN no force is produced and duration resets
	assert.Equal(t, 0.0, g.Contacts[0].NormalForce.X)
	assert.Equal(t, 0.0, g.Contacts[0].Duration)
}

func TestCollectContactForces_AccumulatesOppositeOnEachOwner(t *testing.T) {
	// GIVEN a contact with a known normal force
	g := twoSphereScene()
	g.Contacts[0].NormalForce.X = 10
	set := NewCPUKernelSet()

	// WHEN forces are collected
	require.NoError(t, set.CollectContactForces(g))

	// THEN the two owners receive opposite accelerations
	assert.Equal(t, -g.Owners[0].LinAcc.X, g.Owners[1].LinAcc.X)
}

func testLattice() dem.LatticeParams {
	return dem.LatticeParams{NVXp2: 4, NVYp2: 4, NVZp2: 4, L: 1e-4, VoxelSize: 1e-1}
}

func TestIntegrateClumps_AppliesGravity(t *testing.T) {
	// GIVEN a single owner at rest
	g := dem.GranData{
		Owners:  []dem.Owner{{Ori: dem.Quat{Q0: 1}}},
		Lattice: testLattice(),
	}
	set := NewCPUKernelSet()

	// WHEN integrated by one timestep
	require.NoError(t, set.IntegrateClumps(g, 0.01))

	// THEN its velocity gains a downward component
	assert.Less(t, g.Owners[0].Vel.Z, 0.0)
}

func TestIntegrateClumps_AdvancesPosition(t *testing.T) {
	// GIVEN a single owner moving in +X with no other forces
	lattice := testLattice()
	g := dem.GranData{
		Owners:  []dem.Owner{{Ori: dem.Quat{Q0: 1}, Vel: r3.Vec{X: 1}}},
		Lattice: lattice,
	}
	set := NewCPUKernelSet()
	before := lattice.Decode(g.Owners[0].VoxelID, g.Owners[0].SubX, g.Owners[0].SubY, g.Owners[0].SubZ)

	// WHEN integrated by one timestep
	require.NoError(t, set.IntegrateClumps(g, 0.01))

	// THEN its decoded world position has advanced in +X
	after := lattice.Decode(g.Owners[0].VoxelID, g.Owners[0].SubX, g.Owners[0].SubY, g.Owners[0].SubZ)
	assert.Greater(t, after.X, before.X)
}

func TestComputeKE_ZeroForStationaryOwners(t *testing.T) {
	// GIVEN owners with no velocity
	g := twoSphereScene()
	set := NewCPUKernelSet()

	// WHEN kinetic energy is computed
	ke, err := set.ComputeKE(g)

	// THEN it is zero
	require.NoError(t, err)
	assert.Equal(t, 0.0, ke)
}
