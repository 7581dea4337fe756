package dem

import (
	"sort"
	"sync"

	"github.com/sirupsen/logrus"
)

// FamilyMap translates between user-facing family numbers (arbitrary
// non-negative integers the scene file names) and the small dense integer
// IDs owners carry internally, and tracks which families are suppressed
// from output.
//
// A family number seen for the first time outside the loaded table is
// bound to the default family and logged once; repeated occurrences of the
// same unseen number are silent after the first warning.
type FamilyMap struct {
	mu sync.Mutex

	userToInternal map[uint32]uint32
	internalToUser []uint32
	suppressed     map[uint32]bool

	defaultInternal uint32
	warnedUnseen    map[uint32]bool
}

// NewFamilyMap returns a FamilyMap with one entry: userDefault mapped to
// internal ID 0, used as the fallback for unseen family numbers.
func NewFamilyMap(userDefault uint32) *FamilyMap {
	fm := &FamilyMap{
		userToInternal: map[uint32]uint32{userDefault: 0},
		internalToUser: []uint32{userDefault},
		suppressed:     make(map[uint32]bool),
		warnedUnseen:   make(map[uint32]bool),
	}
	return fm
}

// Define registers a user family number, assigning it the next internal ID
// if not already present, and returns that internal ID.
func (fm *FamilyMap) Define(userFamily uint32) uint32 {
	fm.mu.Lock()
	defer fm.mu.Unlock()
	if id, ok := fm.userToInternal[userFamily]; ok {
		return id
	}
	id := uint32(len(fm.internalToUser))
	fm.userToInternal[userFamily] = id
	fm.internalToUser = append(fm.internalToUser, userFamily)
	return id
}

// Internal resolves a user family number to its internal ID, defining a
// fresh one-shot warning and falling back to the default family when the
// number was never registered via Define or the scene's family table.
func (fm *FamilyMap) Internal(userFamily uint32) uint32 {
	fm.mu.Lock()
	defer fm.mu.Unlock()
	if id, ok := fm.userToInternal[userFamily]; ok {
		return id
	}
	if !fm.warnedUnseen[userFamily] {
		fm.warnedUnseen[userFamily] = true
		logrus.Warnf("family %d not found in family map, defaulting to family %d", userFamily, fm.internalToUser[fm.defaultInternal])
	}
	return fm.defaultInternal
}

// User resolves an internal family ID back to its user-facing number.
func (fm *FamilyMap) User(internal uint32) uint32 {
	fm.mu.Lock()
	defer fm.mu.Unlock()
	return fm.internalToUser[internal]
}

// Suppress marks a user family number's output as suppressed. The number
// need not already be registered; suppression is checked against the
// internal ID at query time.
func (fm *FamilyMap) Suppress(userFamily uint32) {
	fm.mu.Lock()
	defer fm.mu.Unlock()
	id, ok := fm.userToInternal[userFamily]
	if !ok {
		id = uint32(len(fm.internalToUser))
		fm.userToInternal[userFamily] = id
		fm.internalToUser = append(fm.internalToUser, userFamily)
	}
	fm.suppressed[id] = true
}

// IsSuppressed reports whether owners carrying this internal family ID
// should be skipped by output writers.
func (fm *FamilyMap) IsSuppressed(internal uint32) bool {
	fm.mu.Lock()
	defer fm.mu.Unlock()
	return fm.suppressed[internal]
}

// SuppressedUserFamilies returns the suppressed family numbers in sorted
// order, for deterministic logging and CLI introspection.
func (fm *FamilyMap) SuppressedUserFamilies() []uint32 {
	fm.mu.Lock()
	defer fm.mu.Unlock()
	out := make([]uint32, 0, len(fm.suppressed))
	for id := range fm.suppressed {
		out = append(out, fm.internalToUser[id])
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
