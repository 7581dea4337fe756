package dem

import (
	"context"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/spatial/r3"
)

// System is the user-facing entry point: it owns the managed arrays, the
// kT/dT coordination state, and the two worker goroutines, and exposes the
// handful of operations a driver program calls (allocate geometry, run a
// user call, read back metrics).
type System struct {
	Lattice LatticeParams
	Config  EngineConfig
	Family  *FamilyMap
	Metrics *Metrics

	Arrays *ManagedArrays
	Coord  *Coordinator

	dynamic   *DynamicWorker
	kinematic *KinematicWorker

	group  *errgroup.Group
	cancel context.CancelFunc
}

// NewSystem allocates a System from a loaded scene, in the fixed partition
// order clumps -> analyticals -> meshes, assigning owner IDs by prefix sum
// of each batch's size. Each owner's initial pose is taken from its
// InstanceConfig (encoded through lattice) and its family from the scene's
// family table; when cfg.Instances is empty the clumps/analyticals/meshes
// counts place that many owners at the origin in the default family
// instead.
func NewSystem(lattice LatticeParams, cfg SceneConfig, bp BroadPhase, clumps, analyticals, meshes int) *System {
	arrays := NewManagedArrays()
	arrays.SetLattice(lattice)

	fm := BuildFamilyMap(cfg.Families, 0)

	if len(cfg.Instances) > 0 {
		addInstances(arrays, lattice, fm, cfg.Instances, OwnerClump)
		addInstances(arrays, lattice, fm, cfg.Instances, OwnerAnalytical)
		addInstances(arrays, lattice, fm, cfg.Instances, OwnerMesh)
	} else {
		for i := 0; i < clumps; i++ {
			arrays.AddOwner(Owner{Type: OwnerClump, Ori: Quat{Q0: 1}})
		}
		for i := 0; i < analyticals; i++ {
			arrays.AddOwner(Owner{Type: OwnerAnalytical, Ori: Quat{Q0: 1}})
		}
		for i := 0; i < meshes; i++ {
			arrays.AddOwner(Owner{Type: OwnerMesh, Ori: Quat{Q0: 1}})
		}
	}

	for _, t := range cfg.Templates {
		arrays.AddTemplate(Template{
			Mass:     t.Mass,
			MOI:      vecFromArray(t.MOI),
			Radius:   t.Radius,
			LocalPos: vecFromArray(t.LocalPos),
			Mat: Material{
				YoungsModulus: t.Material.YoungsModulus,
				PoissonsRatio: t.Material.PoissonsRatio,
				Restitution:   t.Material.Restitution,
				Friction:      t.Material.Friction,
				RollingResist: t.Material.RollingResist,
			},
		})
	}

	var metrics Metrics
	var contacts ContactBuffer
	var snapshot PositionSnapshot

	coord := NewCoordinator(cfg.Engine.UpdateThreshold)

	var kernel Set
	if NewKernelSetFunc != nil {
		kernel = NewKernelSetFunc()
	}

	s := &System{
		Lattice: lattice,
		Config:  cfg.Engine,
		Family:  fm,
		Metrics: &metrics,
		Arrays:  arrays,
		Coord:   coord,
	}
	s.dynamic = NewDynamicWorker(coord, arrays, kernel, cfg.Engine, fm, &metrics, &contacts, &snapshot)
	s.kinematic = NewKinematicWorker(coord, bp, cfg.Engine, &contacts, &snapshot)
	return s
}

// Start launches the kT and dT goroutines under an errgroup.Group: a
// GPU-fatal error from either worker cancels the group's context, which
// propagates to the sibling worker's ctx.Err() checks and unblocks it.
func (s *System) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	g, gctx := errgroup.WithContext(ctx)
	s.group = g
	s.cancel = cancel

	g.Go(func() error {
		if err := s.dynamic.Run(gctx); err != nil {
			logrus.WithError(err).Error("dynamic worker exited with error")
			return err
		}
		return nil
	})
	g.Go(func() error {
		if err := s.kinematic.Run(gctx); err != nil {
			logrus.WithError(err).Error("kinematic worker exited with error")
			return err
		}
		return nil
	})
}

// DoDynamics drives one user call: latches both workers to start and blocks
// until dT reports the call finished. Stamps carry over from one user call
// to the next, so only the first call runs dT's bootstrap handshake. Start
// must be called first.
func (s *System) DoDynamics() {
	s.Coord.StartKinematic()
	s.Coord.StartDynamic()
	s.Coord.WaitUserCallDone()
}

// Stop requests both workers join and waits for them, returning the first
// error either worker reported (if any).
func (s *System) Stop() error {
	s.Coord.RequestJoin()
	if s.cancel != nil {
		s.cancel()
	}
	if s.group == nil {
		return nil
	}
	return s.group.Wait()
}

func vecFromArray(a [3]float64) r3.Vec { return r3.Vec{X: a[0], Y: a[1], Z: a[2]} }

// instanceOwnerType classifies an InstanceConfig the same way
// SceneConfig.CountByType does: "analytical" and "mesh" are explicit,
// everything else (including an empty/typo'd type) defaults to a clump.
func instanceOwnerType(t string) OwnerType {
	switch t {
	case "analytical":
		return OwnerAnalytical
	case "mesh":
		return OwnerMesh
	default:
		return OwnerClump
	}
}

// addInstances appends every instance of the given owner type, in the
// order they appear in instances, encoding each one's initial position
// through lattice and resolving its user-facing family through fm.
func addInstances(arrays *ManagedArrays, lattice LatticeParams, fm *FamilyMap, instances []InstanceConfig, ownerType OwnerType) {
	for _, inst := range instances {
		if instanceOwnerType(inst.Type) != ownerType {
			continue
		}
		voxelID, subX, subY, subZ := lattice.Encode(vecFromArray(inst.InitialPos))
		arrays.AddOwner(Owner{
			Type:     ownerType,
			VoxelID:  voxelID,
			SubX:     subX,
			SubY:     subY,
			SubZ:     subZ,
			Ori:      Quat{Q0: 1},
			FamilyID: fm.Internal(inst.UserFamily),
		})
	}
}
