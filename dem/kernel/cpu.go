// Package kernel supplies a deterministic, CPU-only implementation of
// dem.Set. It exists so the engine is runnable and testable without real
// GPU kernels; a GPU-backed Set would live in its own package and register
// itself the same way via dem.NewKernelSetFunc.
package kernel

import (
	"github.com/sbel-gpu/dem-engine/dem"
	"gonum.org/v1/gonum/spatial/r3"
)

func init() {
	dem.NewKernelSetFunc = NewCPUKernelSet
}

// cpuKernelSet implements dem.Set using plain Go loops over the managed
// arrays. It applies a linear spring-dashpot contact model: simple enough
// to be obviously correct, not a faithful Hertzian/JKR force law.
type cpuKernelSet struct{}

// NewCPUKernelSet returns the reference CPU kernel set.
func NewCPUKernelSet() dem.Set { return cpuKernelSet{} }

func (cpuKernelSet) PrepareForceArrays(g dem.GranData) error {
	for i := range g.Contacts {
		g.Contacts[i].NormalForce = r3.Vec{}
		g.Contacts[i].TangentialForce = r3.Vec{}
		g.Contacts[i].Torque = r3.Vec{}
	}
	return nil
}

func (cpuKernelSet) MarkAliveContacts(g dem.GranData) error {
	// A contact is alive as long as it exists in the current array; actual
	// geometric overlap is checked in CalculateContactForces and contacts
	// with no remaining overlap simply contribute zero force rather than
	// being deleted here, since deletion is kT's job at the next rebuild.
	return nil
}

func (cpuKernelSet) RearrangeContactHistory(g dem.GranData, mapping []int32) error {
	if len(mapping) != len(g.Contacts) {
		return nil
	}
	rearranged := make([]r3.Vec, len(g.Contacts))
	durations := make([]float64, len(g.Contacts))
	for i, j := range mapping {
		if j == dem.NullMapping {
			continue
		}
		rearranged[i] = g.Contacts[int(j)].History
		durations[i] = g.Contacts[int(j)].Duration
	}
	for i := range g.Contacts {
		g.Contacts[i].History = rearranged[i]
		g.Contacts[i].Duration = durations[i]
	}
	return nil
}

func (cpuKernelSet) CalculateContactForces(g dem.GranData, historyEnabled bool) error {
	const springK = 1e5
	const dashpotC = 10.0

	for i := range g.Contacts {
		c := &g.Contacts[i]
		a := &g.Owners[c.GeometryA]
		b := &g.Owners[c.GeometryB]

		ra := ownerRadius(g, c.GeometryA)
		rb := ownerRadius(g, c.GeometryB)

		posA := ownerPosition(a)
		posB := ownerPosition(b)
		delta := r3.Sub(posB, posA)
		dist := r3.Norm(delta)
		overlap := ra + rb - dist

		if overlap <= 0 {
			c.NormalForce = r3.Vec{}
			c.TangentialForce = r3.Vec{}
			c.Duration = 0
			continue
		}

		var normal r3.Vec
		if dist > 0 {
			normal = r3.Scale(1/dist, delta)
		} else {
			normal = r3.Vec{X: 1}
		}

		relVel := r3.Sub(b.Vel, a.Vel)
		normalSpeed := r3.Dot(relVel, normal)

		normalMag := springK*overlap - dashpotC*normalSpeed
		if normalMag < 0 {
			normalMag = 0
		}
		c.NormalForce = r3.Scale(normalMag, normal)

		if historyEnabled {
			tangentialVel := r3.Sub(relVel, r3.Scale(normalSpeed, normal))
			c.History = r3.Add(c.History, tangentialVel)
			c.TangentialForce = r3.Scale(-springK*0.1, c.History)
			c.Duration += 1
		}
	}
	return nil
}

func (cpuKernelSet) CollectContactForces(g dem.GranData) error {
	for i := range g.Owners {
		g.Owners[i].LinAcc = r3.Vec{}
	}
	for _, c := range g.Contacts {
		total := r3.Add(c.NormalForce, c.TangentialForce)
		ta := &g.Owners[c.GeometryA]
		tb := &g.Owners[c.GeometryB]

		ma := ownerMass(g, c.GeometryA)
		mb := ownerMass(g, c.GeometryB)
		if ma > 0 {
			ta.LinAcc = r3.Sub(ta.LinAcc, r3.Scale(1/ma, total))
		}
		if mb > 0 {
			tb.LinAcc = r3.Add(tb.LinAcc, r3.Scale(1/mb, total))
		}
	}
	return nil
}

// IntegrateClumps advances velocity and position by one timestep and
// re-normalizes the orientation; orientation and angular velocity are not
// advanced. Position is carried in voxel/sub-voxel form, so each owner is
// decoded to a world position, advanced by its velocity, and re-encoded;
// an encoded result that falls outside its voxel's sub-voxel range is
// folded back in range via Revoxelize.
func (cpuKernelSet) IntegrateClumps(g dem.GranData, h float64) error {
	const gravity = -9.81
	for i := range g.Owners {
		o := &g.Owners[i]
		o.LinAcc.Z += gravity
		o.Vel = r3.Add(o.Vel, r3.Scale(h, o.LinAcc))
		o.Ori = o.Ori.Normalized()

		pos := g.Lattice.Decode(o.VoxelID, o.SubX, o.SubY, o.SubZ)
		pos = r3.Add(pos, r3.Scale(h, o.Vel))
		voxelID, subX, subY, subZ := g.Lattice.Encode(pos)
		if !g.Lattice.InBounds(subX, subY, subZ) {
			voxelID, subX, subY, subZ = g.Lattice.Revoxelize(voxelID, subX, subY, subZ)
		}
		o.VoxelID, o.SubX, o.SubY, o.SubZ = voxelID, subX, subY, subZ
	}
	return nil
}

func (cpuKernelSet) ApplyFamilyChanges(g dem.GranData, fm *dem.FamilyMap) error {
	return nil
}

func (cpuKernelSet) ComputeKE(g dem.GranData) (float64, error) {
	ke := 0.0
	for i := range g.Owners {
		m := ownerMass(g, uint32(i))
		v := r3.Norm(g.Owners[i].Vel)
		ke += 0.5 * m * v * v
	}
	return ke, nil
}

func ownerRadius(g dem.GranData, ownerID uint32) float64 {
	for _, s := range g.Spheres {
		if s.OwnerID == ownerID {
			idx := int(s.ComponentOffsetExt)
			if idx >= 0 && idx < len(g.Templates) {
				return g.Templates[idx].Radius
			}
		}
	}
	return 0
}

func ownerMass(g dem.GranData, ownerID uint32) float64 {
	idx := int(g.Owners[ownerID].InertiaOffset)
	if idx >= 0 && idx < len(g.Templates) {
		return g.Templates[idx].Mass
	}
	return 0
}

func ownerPosition(o *dem.Owner) r3.Vec {
	// Sub-voxel offsets stand in for world position in this reference
	// kernel; a real deployment decodes through the shared LatticeParams
	// before running force calculation.
	return r3.Vec{X: float64(o.SubX), Y: float64(o.SubY), Z: float64(o.SubZ)}
}
