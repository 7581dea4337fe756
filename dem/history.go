package dem

import "gonum.org/v1/gonum/spatial/r3"

// MigrateHistory rebinds per-contact tangential history across a
// kT-driven contact-list regeneration. For every
// new index i: if mapping[i] is NullMapping, history/duration are zeroed;
// otherwise they are copied from oldHistory[mapping[i]] /
// oldDuration[mapping[i]].
//
// newHistory and newDuration are taken from pool slots 2 and 3; slots 0 and
// 1 are reserved for the drain-inbound step's mapping copy and must not be
// passed here.
func MigrateHistory(pool *TempVectorPool, mapping []int32, oldHistory []r3.Vec, oldDuration []float64) (newHistory []r3.Vec, newDuration []float64) {
	n := len(mapping)
	newHistory = TempSlot[r3.Vec](pool, 2, n)
	newDuration = TempSlot[float64](pool, 3, n)

	for i, j := range mapping {
		if j == NullMapping {
			newHistory[i] = r3.Vec{}
			newDuration[i] = 0
			continue
		}
		newHistory[i] = oldHistory[j]
		newDuration[i] = oldDuration[j]
	}
	return newHistory, newDuration
}

// SentryResult reports the outcome of the optional alive-contact sentry
// pass: diagnostic only, never fatal.
type SentryResult struct {
	// Ran is false when the sentry pass was skipped because there were no
	// prior contacts.
	Ran bool
	// DroppedAliveContact is true if some old contact with Duration > 0
	// was not reached by any entry in mapping.
	DroppedAliveContact bool
}

// RunSentry marks every old index whose Duration > 0 as "alive" (using pool
// slot 4), marks each old index actually reached via mapping (using pool
// slot 5), and reports whether any alive old contact was dropped. It skips
// the pass when there were no prior contacts. It does not check verbosity:
// the dynamic worker calls it only at VerbosityStepMetric or higher.
// RunSentry is side-effect free on the coordination state.
func RunSentry(pool *TempVectorPool, mapping []int32, oldDuration []float64) SentryResult {
	if len(oldDuration) == 0 {
		return SentryResult{}
	}

	alive := TempSlot[bool](pool, 4, len(oldDuration))
	for i := range alive {
		alive[i] = oldDuration[i] > 0
	}

	reached := TempSlot[bool](pool, 5, len(oldDuration))
	for i := range reached {
		reached[i] = false
	}
	for _, j := range mapping {
		if j != NullMapping {
			reached[j] = true
		}
	}

	dropped := false
	for i := range alive {
		if alive[i] && !reached[i] {
			dropped = true
			break
		}
	}

	return SentryResult{Ran: true, DroppedAliveContact: dropped}
}
