// Package dem provides the core of a dual-worker Discrete Element Method
// (DEM) simulation engine.
//
// # Reading Guide
//
// Start with these files to understand the simulation kernel:
//   - state.go: voxel/sub-voxel position encoding and quaternion rotation
//   - arrays.go: the owner/sphere/contact managed arrays and pointer bundle
//   - coord.go: the kT/dT handshake primitives (flags, stamps, condvars)
//   - buffers.go: the double-buffered dT<->kT transfer protocol
//   - history.go: contact-history migration across kT contact-list rebuilds
//   - dynamic.go: the dynamic worker (dT) cycle loop
//   - kinematic.go: the kinematic worker (kT) cycle loop
//   - facade.go: allocation, thread lifecycle and user-call orchestration
//
// # Architecture
//
// The dem package defines the coordination protocol and owns the managed
// arrays; the force model is supplied by a pluggable Set (dem/kernel
// registers a CPU implementation) and broad-phase pair finding by a
// BroadPhase, keeping GPU kernels as an external collaborator invoked only
// through a narrow interface. dem/output implements the two on-disk formats the façade can
// drain a snapshot into.
package dem
