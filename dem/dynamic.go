package dem

import (
	"context"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/spatial/r3"
)

// DynamicWorker runs the force-calculation/integration loop (dT): drain any
// fresh contact list kT has published, run one or more force+integrate
// passes to cover one cycle of simulated time, publish dT's own position
// snapshot back to kT, and block at the cycle boundary if it has drifted
// too far ahead of kT's last update.
type DynamicWorker struct {
	Coord    *Coordinator
	Arrays   *ManagedArrays
	Kernel   Set
	Config   EngineConfig
	Family   *FamilyMap
	Metrics  *Metrics
	Contacts *ContactBuffer
	Snapshot *PositionSnapshot

	pool *TempVectorPool
}

// NewDynamicWorker returns a DynamicWorker wired to the given shared state.
func NewDynamicWorker(coord *Coordinator, arrays *ManagedArrays, kernel Set, cfg EngineConfig, fm *FamilyMap, metrics *Metrics, contacts *ContactBuffer, snapshot *PositionSnapshot) *DynamicWorker {
	return &DynamicWorker{
		Coord: coord, Arrays: arrays, Kernel: kernel, Config: cfg,
		Family: fm, Metrics: metrics, Contacts: contacts, Snapshot: snapshot,
		pool: &TempVectorPool{},
	}
}

// Run executes the dT lifecycle: wait for a start signal, run user calls
// until ctx is cancelled or the coordinator requests the worker join.
func (w *DynamicWorker) Run(ctx context.Context) error {
	for {
		if shouldJoin := w.Coord.WaitDynamicStart(); shouldJoin {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		joined, err := w.runUserCall(ctx)
		if err != nil {
			return err
		}
		if joined {
			return nil
		}
		w.Coord.SignalUserCallDone()
	}
}

// runUserCall drives one user call's worth of cycles: cycleDuration/h
// integration steps, with kT handshakes interleaved. It returns joined=true
// if a termination request was observed mid-call.
func (w *DynamicWorker) runUserCall(ctx context.Context) (joined bool, err error) {
	if w.Coord.IsNewBoot() {
		if joined, err = w.bootstrap(); joined || err != nil {
			return joined, err
		}
	}

	var timeElapsed float64
	for timeElapsed < w.Config.CycleDuration {
		if w.Coord.DynamicOwnedFresh() {
			if err := w.drainInbound(); err != nil {
				return false, err
			}
		}

		if err := w.forceAndIntegrateStep(); err != nil {
			return false, err
		}

		w.Coord.AdvanceStamp()

		if !w.Coord.KinematicOwnedFresh() {
			if err := w.publishOutbound(); err != nil {
				return false, err
			}
			w.Metrics.RecordKinematicUpdate()
			w.Coord.Stats.NKinematicUpdates++
		}

		if w.Coord.DynamicShouldWait() {
			w.Metrics.RecordDynamicHeldBack()
			w.Coord.Stats.NTimesDynamicHeldBack++
			if shouldJoin := w.Coord.WaitDynamicCanProceed(); shouldJoin {
				return true, nil
			}
		}

		timeElapsed += w.Config.H
		if err := ctx.Err(); err != nil {
			return false, err
		}
	}
	return false, nil
}

// bootstrap handles the new-boot handshake: dT has no contact list yet, so
// it must push its initial position snapshot to kT and block for kT's
// first contact list before any force calculation can run.
func (w *DynamicWorker) bootstrap() (joined bool, err error) {
	if err := w.publishOutbound(); err != nil {
		return false, err
	}
	w.Metrics.RecordKinematicUpdate()
	w.Coord.Stats.NKinematicUpdates++

	if shouldJoin := w.Coord.WaitDynamicCanProceed(); shouldJoin {
		return true, nil
	}
	if err := w.drainInbound(); err != nil {
		return false, err
	}
	return false, nil
}

// drainInbound copies kT's freshly published contact buffer into the
// managed arrays, migrates contact history when enabled, and marks the
// buffer consumed.
func (w *DynamicWorker) drainInbound() error {
	w.Coord.DynamicOwnedBuffer.Lock()
	buf := w.Contacts
	n := buf.Count
	geomA := append([]uint32(nil), buf.GeometryA[:n]...)
	geomB := append([]uint32(nil), buf.GeometryB[:n]...)
	types := append([]ContactType(nil), buf.Type[:n]...)
	var mapping []int32
	if buf.Mapping != nil {
		mapping = TempSlot[int32](w.pool, 1, n)
		copy(mapping, buf.Mapping[:n])
	}
	w.Coord.DynamicOwnedBuffer.Unlock()

	w.Coord.ConsumeDynamicOwned()
	w.Coord.MarkConsumed()

	prevData := w.Arrays.GranData()
	oldHistory := make([]r3.Vec, len(prevData.Contacts))
	oldDuration := make([]float64, len(prevData.Contacts))
	for i, c := range prevData.Contacts {
		oldHistory[i] = c.History
		oldDuration[i] = c.Duration
	}

	w.Arrays.ResizeContacts(n)
	if len(w.Arrays.Contacts) > n {
		// The backing array keeps its capacity; only the length drops, so
		// pairs kT no longer reports are not seen by the kernels.
		w.Arrays.Contacts = w.Arrays.Contacts[:n]
		w.Arrays.Republish()
	}
	data := w.Arrays.GranData()
	for i := 0; i < n; i++ {
		data.Contacts[i].GeometryA = geomA[i]
		data.Contacts[i].GeometryB = geomB[i]
		data.Contacts[i].Type = types[i]
	}

	if !w.Config.IsHistoryless && mapping != nil {
		newHistory, newDuration := MigrateHistory(w.pool, mapping, oldHistory, oldDuration)
		for i := range newHistory {
			data.Contacts[i].History = newHistory[i]
			data.Contacts[i].Duration = newDuration[i]
		}
		if w.Config.Verbosity >= VerbosityStepMetric && len(oldDuration) > 0 {
			sentry := RunSentry(w.pool, mapping, oldDuration)
			if sentry.Ran && sentry.DroppedAliveContact {
				logrus.Warn("contact history migration dropped an alive contact")
			}
		}
	}
	return nil
}

// forceAndIntegrateStep runs one or more force-calculation/integration
// passes until a step is accepted, to allow a future kernel to reject an
// overly large timestep and retry; the reference kernel always accepts.
func (w *DynamicWorker) forceAndIntegrateStep() error {
	data := w.Arrays.GranData()

	stepAccepted := false
	for !stepAccepted {
		if err := w.Kernel.PrepareForceArrays(data); err != nil {
			return &KernelError{Stage: "prepareForceArrays", Err: err}
		}
		if err := w.Kernel.MarkAliveContacts(data); err != nil {
			return &KernelError{Stage: "markAliveContacts", Err: err}
		}
		if err := w.Kernel.CalculateContactForces(data, !w.Config.IsHistoryless); err != nil {
			return &KernelError{Stage: "calculateContactForces", Err: err}
		}
		if err := w.Kernel.CollectContactForces(data); err != nil {
			return &KernelError{Stage: "collectContactForces", Err: err}
		}
		if err := w.Kernel.IntegrateClumps(data, w.Config.H); err != nil {
			return &KernelError{Stage: "integrateClumps", Err: err}
		}
		if w.Config.CanFamilyChange {
			if err := w.Kernel.ApplyFamilyChanges(data, w.Family); err != nil {
				return &KernelError{Stage: "applyFamilyChanges", Err: err}
			}
		}
		// The reference kernel's step is always accepted; a variable-
		// timestep backend would set stepAccepted from its own error
		// estimate here instead.
		stepAccepted = true
	}
	return nil
}

// publishOutbound publishes dT's current owner state into kT's inbound
// buffer and marks it fresh.
func (w *DynamicWorker) publishOutbound() error {
	w.Coord.KinematicOwnedBuffer.Lock()
	PublishOwnerState(w.Snapshot, w.Arrays.Owners, w.Config.CanFamilyChange)
	w.Coord.KinematicOwnedBuffer.Unlock()
	w.Coord.PublishKinematicOwned()
	return nil
}
