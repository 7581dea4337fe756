package dem

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMetrics_RecordAndRead(t *testing.T) {
	// GIVEN a fresh Metrics
	var m Metrics

	// WHEN several events are recorded
	m.RecordKinematicUpdate()
	m.RecordKinematicUpdate()
	m.RecordDynamicHeldBack()
	m.SetKineticEnergy(3.5)

	// THEN the counters reflect exactly what was recorded
	assert.Equal(t, int64(2), m.NKinematicUpdates())
	assert.Equal(t, int64(1), m.NTimesDynamicHeldBack())
	assert.Equal(t, 3.5, m.KineticEnergy())
}

func TestMetrics_PrintIncludesAllCounters(t *testing.T) {
	// GIVEN a Metrics with known values
	var m Metrics
	m.RecordKinematicUpdate()
	m.SetKineticEnergy(1.25)

	// WHEN Print is called
	s := m.Print()

	// THEN the summary mentions kinematic updates and kinetic energy
	assert.Contains(t, s, "kinematic updates: 1")
	assert.Contains(t, s, "1.25")
}
