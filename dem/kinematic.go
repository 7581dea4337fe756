package dem

import "context"

// BroadPhase is the narrow collision-detection interface kT calls through
// to turn a position snapshot into a deduplicated, ordered contact-pair
// list. A real deployment backs this with spatial-hash binning; tests can
// supply a trivial implementation.
type BroadPhase interface {
	// FindPairs returns geometry index pairs (A < B) currently in contact,
	// given kT's local pose mirror.
	FindPairs(poses []OwnerPose) (geomA, geomB []uint32, types []ContactType)
}

// KinematicWorker runs the broad-phase collision loop (kT): consume dT's
// position snapshot, rebuild its spatial structure, find contact pairs,
// build a migration mapping against its own previous list, and publish the
// new list (and mapping, if history is enabled) back to dT.
type KinematicWorker struct {
	Coord      *Coordinator
	BroadPhase BroadPhase
	Config     EngineConfig
	Contacts   *ContactBuffer
	Snapshot   *PositionSnapshot

	poses       []OwnerPose
	prevGeomA   []uint32
	prevGeomB   []uint32
}

// NewKinematicWorker returns a KinematicWorker wired to the given shared
// state.
func NewKinematicWorker(coord *Coordinator, bp BroadPhase, cfg EngineConfig, contacts *ContactBuffer, snapshot *PositionSnapshot) *KinematicWorker {
	return &KinematicWorker{Coord: coord, BroadPhase: bp, Config: cfg, Contacts: contacts, Snapshot: snapshot}
}

// Run executes the kT lifecycle: wait for a start signal, serve work orders
// until the coordinator requests the worker join.
func (w *KinematicWorker) Run(ctx context.Context) error {
	for {
		if shouldJoin := w.Coord.WaitKinematicStart(); shouldJoin {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		for {
			shouldJoin := w.Coord.WaitKinematicCanProceed()
			if shouldJoin {
				return nil
			}
			if err := w.serveOneWorkOrder(); err != nil {
				return err
			}
			if err := ctx.Err(); err != nil {
				return err
			}
		}
	}
}

// serveOneWorkOrder consumes dT's latest position snapshot, rebuilds the
// contact list, and publishes it (with a migration mapping if history is
// enabled) back to dT.
func (w *KinematicWorker) serveOneWorkOrder() error {
	w.Coord.KinematicOwnedBuffer.Lock()
	w.poses = ApplyOwnerState(w.poses, w.Snapshot)
	w.Coord.KinematicOwnedBuffer.Unlock()
	w.Coord.ConsumeKinematicOwned()

	geomA, geomB, types := w.BroadPhase.FindPairs(w.poses)

	var mapping []int32
	if !w.Config.IsHistoryless {
		mapping = w.buildMapping(geomA, geomB)
	}

	w.Coord.DynamicOwnedBuffer.Lock()
	PublishContacts(w.Contacts, geomA, geomB, types, mapping, !w.Config.IsHistoryless)
	w.Coord.DynamicOwnedBuffer.Unlock()
	w.Coord.PublishDynamicOwned()

	w.prevGeomA = append(w.prevGeomA[:0], geomA...)
	w.prevGeomB = append(w.prevGeomB[:0], geomB...)
	return nil
}

// buildMapping rekeys the new ordered (A,B) pair list against the previous
// one: mapping[i] is the previous index of the pair at new index i, or
// NullMapping if the pair did not exist before. Pairs are looked up by
// exact (A,B) equality since both sides always order geometry IDs A<B.
func (w *KinematicWorker) buildMapping(geomA, geomB []uint32) []int32 {
	prevIndex := make(map[[2]uint32]int32, len(w.prevGeomA))
	for i := range w.prevGeomA {
		prevIndex[[2]uint32{w.prevGeomA[i], w.prevGeomB[i]}] = int32(i)
	}

	mapping := make([]int32, len(geomA))
	for i := range geomA {
		key := [2]uint32{geomA[i], geomB[i]}
		if j, ok := prevIndex[key]; ok {
			mapping[i] = j
		} else {
			mapping[i] = NullMapping
		}
	}
	return mapping
}
