package dem

import (
	"fmt"
	"math"
	"sync/atomic"
)

// Metrics accumulates the counters a user call reports back once it
// finishes: how many times the kinematic worker refreshed the contact
// list, how many cycles the dynamic worker spent blocked on the drift gate,
// and the system's total kinetic energy as of the last query.
type Metrics struct {
	nKinematicUpdates     atomic.Int64
	nTimesDynamicHeldBack atomic.Int64
	kineticEnergy         atomic.Uint64 // bit pattern of a float64
}

// RecordKinematicUpdate increments the count of kT-driven contact-list
// regenerations.
func (m *Metrics) RecordKinematicUpdate() { m.nKinematicUpdates.Add(1) }

// RecordDynamicHeldBack increments the count of cycles dT spent blocked
// waiting for a fresh contact list past UpdateThreshold.
func (m *Metrics) RecordDynamicHeldBack() { m.nTimesDynamicHeldBack.Add(1) }

// SetKineticEnergy stores the system's total kinetic energy, as computed by
// the Set's ComputeKE stage.
func (m *Metrics) SetKineticEnergy(ke float64) {
	m.kineticEnergy.Store(math.Float64bits(ke))
}

// KineticEnergy returns the most recently recorded kinetic energy.
func (m *Metrics) KineticEnergy() float64 {
	return math.Float64frombits(m.kineticEnergy.Load())
}

// NKinematicUpdates returns the number of kT-driven contact-list
// regenerations observed so far.
func (m *Metrics) NKinematicUpdates() int64 { return m.nKinematicUpdates.Load() }

// NTimesDynamicHeldBack returns the number of cycles dT spent blocked on
// the drift gate so far.
func (m *Metrics) NTimesDynamicHeldBack() int64 { return m.nTimesDynamicHeldBack.Load() }

// Print returns a human-readable summary of m as a string, in the style
// of a one-shot end-of-run report rather than a continuously scraped
// metrics endpoint.
func (m *Metrics) Print() string {
	return fmt.Sprintf(
		"kinematic updates: %d, dynamic held-back cycles: %d, kinetic energy: %g",
		m.NKinematicUpdates(), m.NTimesDynamicHeldBack(), m.KineticEnergy(),
	)
}
