package dem

import (
	"sync"
	"sync/atomic"
)

// SchedulingStats holds the single-writer counters dT maintains about the
// handshake: how many times it refreshed kT's work order, and how many
// cycles it was held back waiting on the drift gate.
type SchedulingStats struct {
	NKinematicUpdates     int64
	NTimesDynamicHeldBack int64
}

// Coordinator owns the shared flags, counters, condition variables and
// locks that let kT and dT run asynchronously while staying within the
// drift bound.
//
// Every condition variable is paired with the mutex it waits on, matching
// the four condvar/mutex pairs of the original design:
// kinematicCanProceed, dynamicCanProceed, dynamicStartLock, kinematicStartLock.
//
// A freshness flag must only ever flip false->true while its owning
// mutex is held, even though the flag itself is an atomic.Bool for cheap
// non-blocking polling elsewhere: sync.Cond.Wait only observes a Broadcast
// if the waiter has already entered Wait under the same mutex the setter
// held, so every publish-then-notify path below takes that mutex first.
type Coordinator struct {
	dynamicStarted      atomic.Bool
	kinematicStarted    atomic.Bool
	dynamicShouldJoin   atomic.Bool
	kinematicShouldJoin atomic.Bool

	// kinematicOwnedFresh is true when dT has published a position
	// snapshot into kT's inbound buffer that kT has not yet consumed (kT
	// consumes it, dT produces it).
	kinematicOwnedFresh atomic.Bool

	// dynamicOwnedFresh is true when kT has published a new contact list
	// into dT's inbound buffer that dT has not yet consumed (kT produces
	// it, dT consumes it).
	dynamicOwnedFresh atomic.Bool

	currentStampOfDynamic    atomic.Int64
	stampLastUpdateOfDynamic atomic.Int64

	// UpdateThreshold is the max stamps of drift dT may accrue before it
	// must block for a fresh contact list. Must be >= 1.
	UpdateThreshold int64

	Stats SchedulingStats

	dynamicStartMu   sync.Mutex
	dynamicStartCond *sync.Cond

	kinematicStartMu   sync.Mutex
	kinematicStartCond *sync.Cond

	dynamicCanProceedMu   sync.Mutex
	dynamicCanProceedCond *sync.Cond

	kinematicCanProceedMu   sync.Mutex
	kinematicCanProceedCond *sync.Cond

	// KinematicOwnedBuffer guards dT's writes into kT's inbound buffer.
	KinematicOwnedBuffer sync.Mutex
	// DynamicOwnedBuffer guards kT's writes into dT's inbound buffer.
	DynamicOwnedBuffer sync.Mutex

	userCallDone atomic.Bool
	mainMu       sync.Mutex
	mainCond     *sync.Cond
}

// NewCoordinator returns a Coordinator ready for both workers to start
// from, with stampLastUpdateOfDynamic set to the "new-boot" sentinel (-1)
// so the dynamic worker's bootstrap path fires exactly once.
func NewCoordinator(updateThreshold int64) *Coordinator {
	if updateThreshold < 1 {
		updateThreshold = 1
	}
	c := &Coordinator{UpdateThreshold: updateThreshold}
	c.dynamicStartCond = sync.NewCond(&c.dynamicStartMu)
	c.kinematicStartCond = sync.NewCond(&c.kinematicStartMu)
	c.dynamicCanProceedCond = sync.NewCond(&c.dynamicCanProceedMu)
	c.kinematicCanProceedCond = sync.NewCond(&c.kinematicCanProceedMu)
	c.mainCond = sync.NewCond(&c.mainMu)
	c.stampLastUpdateOfDynamic.Store(-1)
	return c
}

// SignalUserCallDone marks the current user call finished and wakes
// whoever is blocked in WaitUserCallDone. Only dT calls this, once per
// completed user call.
func (c *Coordinator) SignalUserCallDone() {
	c.mainMu.Lock()
	c.userCallDone.Store(true)
	c.mainMu.Unlock()
	c.mainCond.Broadcast()
}

// WaitUserCallDone blocks the driver until dT reports the current user
// call finished, consuming the signal on return.
func (c *Coordinator) WaitUserCallDone() {
	c.mainMu.Lock()
	for !c.userCallDone.Load() {
		c.mainCond.Wait()
	}
	c.userCallDone.Store(false)
	c.mainMu.Unlock()
}

// DynamicShouldWait reports whether dT has advanced this many integration
// cycles without seeing a kT update.
func (c *Coordinator) DynamicShouldWait() bool {
	return c.currentStampOfDynamic.Load()-c.stampLastUpdateOfDynamic.Load() >= c.UpdateThreshold
}

// KinematicShouldWait reports whether the inbound-to-kT buffer is stale:
// kT has already consumed the last position snapshot dT published.
func (c *Coordinator) KinematicShouldWait() bool {
	return !c.kinematicOwnedFresh.Load()
}

// CurrentStamp returns dT's monotone cycle counter.
func (c *Coordinator) CurrentStamp() int64 { return c.currentStampOfDynamic.Load() }

// StampLastUpdate returns the stamp at which dT last consumed a kT update.
func (c *Coordinator) StampLastUpdate() int64 { return c.stampLastUpdateOfDynamic.Load() }

// AdvanceStamp increments dT's cycle counter. Only dT may call this.
func (c *Coordinator) AdvanceStamp() { c.currentStampOfDynamic.Add(1) }

// MarkConsumed records that dT just consumed kT's latest contact list.
// Only dT may call this.
func (c *Coordinator) MarkConsumed() {
	c.stampLastUpdateOfDynamic.Store(c.currentStampOfDynamic.Load())
}

// ResetUserCallStats re-arms the new-boot sentinel and zeroes dT's cycle
// counter, so the next user call runs the bootstrap handshake again.
func (c *Coordinator) ResetUserCallStats() {
	c.stampLastUpdateOfDynamic.Store(-1)
	c.currentStampOfDynamic.Store(0)
}

// IsNewBoot reports whether dT has never yet consumed a kT update this
// user-call session.
func (c *Coordinator) IsNewBoot() bool { return c.stampLastUpdateOfDynamic.Load() < 0 }

// --- Buffer freshness ---

// KinematicOwnedFresh reports, without blocking, whether kT's inbound
// buffer currently holds unconsumed data.
func (c *Coordinator) KinematicOwnedFresh() bool { return c.kinematicOwnedFresh.Load() }

// PublishKinematicOwned marks kT's inbound buffer fresh and wakes kT if it
// is blocked in WaitKinematicCanProceed. Called by dT after it has fully
// written the position snapshot (release semantics: the flag flips only
// after the payload is visible).
func (c *Coordinator) PublishKinematicOwned() {
	c.kinematicCanProceedMu.Lock()
	c.kinematicOwnedFresh.Store(true)
	c.kinematicCanProceedMu.Unlock()
	c.kinematicCanProceedCond.Broadcast()
}

// ConsumeKinematicOwned marks kT's inbound buffer stale again. Called by
// kT once it has copied the snapshot out.
func (c *Coordinator) ConsumeKinematicOwned() { c.kinematicOwnedFresh.Store(false) }

// DynamicOwnedFresh reports, without blocking, whether dT's inbound buffer
// currently holds an unconsumed contact list.
func (c *Coordinator) DynamicOwnedFresh() bool { return c.dynamicOwnedFresh.Load() }

// PublishDynamicOwned marks dT's inbound buffer fresh and wakes dT if it is
// blocked in WaitDynamicCanProceed.
func (c *Coordinator) PublishDynamicOwned() {
	c.dynamicCanProceedMu.Lock()
	c.dynamicOwnedFresh.Store(true)
	c.dynamicCanProceedMu.Unlock()
	c.dynamicCanProceedCond.Broadcast()
}

// ConsumeDynamicOwned marks dT's inbound buffer stale again. Called by dT
// once it has drained the contact list out.
func (c *Coordinator) ConsumeDynamicOwned() { c.dynamicOwnedFresh.Store(false) }

// --- Start latches ---

// StartDynamic signals dT's start condvar, waking it from its idle wait.
func (c *Coordinator) StartDynamic() {
	c.dynamicStartMu.Lock()
	c.dynamicStarted.Store(true)
	c.dynamicStartMu.Unlock()
	c.dynamicStartCond.Broadcast()
}

// WaitDynamicStart blocks dT until StartDynamic is called or
// dynamicShouldJoin is set, consuming the start signal on return.
func (c *Coordinator) WaitDynamicStart() (shouldJoin bool) {
	c.dynamicStartMu.Lock()
	for !c.dynamicStarted.Load() && !c.dynamicShouldJoin.Load() {
		c.dynamicStartCond.Wait()
	}
	c.dynamicStarted.Store(false)
	shouldJoin = c.dynamicShouldJoin.Load()
	c.dynamicStartMu.Unlock()
	return shouldJoin
}

// StartKinematic signals kT's start condvar.
func (c *Coordinator) StartKinematic() {
	c.kinematicStartMu.Lock()
	c.kinematicStarted.Store(true)
	c.kinematicStartMu.Unlock()
	c.kinematicStartCond.Broadcast()
}

// WaitKinematicStart blocks kT until StartKinematic is called or
// kinematicShouldJoin is set.
func (c *Coordinator) WaitKinematicStart() (shouldJoin bool) {
	c.kinematicStartMu.Lock()
	for !c.kinematicStarted.Load() && !c.kinematicShouldJoin.Load() {
		c.kinematicStartCond.Wait()
	}
	c.kinematicStarted.Store(false)
	shouldJoin = c.kinematicShouldJoin.Load()
	c.kinematicStartMu.Unlock()
	return shouldJoin
}

// --- Drift-gate waits ---

// WaitKinematicCanProceed blocks kT until its inbound buffer is fresh or
// join is requested. Looping on the predicate guards against spurious
// wakeups.
func (c *Coordinator) WaitKinematicCanProceed() (shouldJoin bool) {
	c.kinematicCanProceedMu.Lock()
	for !c.kinematicOwnedFresh.Load() && !c.kinematicShouldJoin.Load() {
		c.kinematicCanProceedCond.Wait()
	}
	shouldJoin = c.kinematicShouldJoin.Load()
	c.kinematicCanProceedMu.Unlock()
	return shouldJoin
}

// WaitDynamicCanProceed blocks dT until its inbound buffer is fresh or
// join is requested.
func (c *Coordinator) WaitDynamicCanProceed() (shouldJoin bool) {
	c.dynamicCanProceedMu.Lock()
	for !c.dynamicOwnedFresh.Load() && !c.dynamicShouldJoin.Load() {
		c.dynamicCanProceedCond.Wait()
	}
	shouldJoin = c.dynamicShouldJoin.Load()
	c.dynamicCanProceedMu.Unlock()
	return shouldJoin
}

// --- Termination ---

// RequestJoin sets both shouldJoin flags and wakes every condvar so both
// workers observe it on their next check. Each flag is set while holding
// its start latch's mutex, and each drift-gate mutex is taken and released
// after the flags are set and before its Broadcast, so a drift-gate waiter
// either has not yet checked the flag or is already in Wait; no wakeup can
// be lost to the race described on Coordinator.
func (c *Coordinator) RequestJoin() {
	c.dynamicStartMu.Lock()
	c.dynamicShouldJoin.Store(true)
	c.dynamicStartMu.Unlock()
	c.dynamicStartCond.Broadcast()

	c.kinematicStartMu.Lock()
	c.kinematicShouldJoin.Store(true)
	c.kinematicStartMu.Unlock()
	c.kinematicStartCond.Broadcast()

	c.dynamicCanProceedMu.Lock()
	c.dynamicCanProceedMu.Unlock()
	c.dynamicCanProceedCond.Broadcast()

	c.kinematicCanProceedMu.Lock()
	c.kinematicCanProceedMu.Unlock()
	c.kinematicCanProceedCond.Broadcast()
}

func (c *Coordinator) DynamicShouldJoin() bool   { return c.dynamicShouldJoin.Load() }
func (c *Coordinator) KinematicShouldJoin() bool { return c.kinematicShouldJoin.Load() }
