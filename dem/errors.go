package dem

import "fmt"

// KernelError wraps a failure returned by a Set implementation.
// Unlike ordinary user-input errors, a KernelError is treated as fatal to
// the owning worker: the worker loop returns it up through the façade's
// errgroup, which cancels the sibling worker rather than attempting to
// continue with possibly-corrupt state.
type KernelError struct {
	Stage string // which kernel group failed, e.g. "calculateContactForces"
	Err   error
}

func (e *KernelError) Error() string {
	return fmt.Sprintf("kernel stage %s: %v", e.Stage, e.Err)
}

func (e *KernelError) Unwrap() error { return e.Err }

// ConsistencyWarning describes a non-fatal condition worth surfacing to the
// caller or the log but that does not stop the simulation: a dropped alive
// contact detected by the history sentry, or a stat counter anomaly.
type ConsistencyWarning struct {
	Message string
}

func (w *ConsistencyWarning) Error() string { return w.Message }

// ErrUnknownTrackedObjectType describes a user call that references an
// owner index whose OwnerType has no registered output/force-model
// handling, e.g. a mesh owner before mesh kernels exist. No function in
// this package returns it; user calls do not check owner types.
type ErrUnknownTrackedObjectType struct {
	Type OwnerType
}

func (e *ErrUnknownTrackedObjectType) Error() string {
	return fmt.Sprintf("unknown tracked object type: %s", e.Type)
}

// ErrMissingFamilyMapping describes a scene file that references a family
// number with no entry in the family table and no default configured. No
// function in this package returns it: LoadSceneConfig does not check
// family numbers, and FamilyMap.Internal falls back to the default family.
type ErrMissingFamilyMapping struct {
	UserFamily uint32
}

func (e *ErrMissingFamilyMapping) Error() string {
	return fmt.Sprintf("no family mapping for family %d and no default configured", e.UserFamily)
}

// wrapStage is a small helper matching the package's fmt.Errorf("...: %w")
// wrapping convention, for attaching a stage name to an arbitrary error
// without constructing a KernelError. Nothing in the package calls it.
func wrapStage(stage string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", stage, err)
}
