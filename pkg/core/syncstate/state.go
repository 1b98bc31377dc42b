/*
Package syncstate tracks the initial chain synchronization phase of the node.
Transaction relaying is gated on it: while the node catches up with the
network it neither accepts gossiped transactions nor prunes the pool.
*/
package syncstate

import (
	"sync"

	"go.uber.org/atomic"
)

// Phase is the initial synchronization phase of the node.
type Phase uint32

const (
	// InitialSyncPending means the node is still catching up with the network.
	InitialSyncPending Phase = iota
	// InitialSyncDone means the initial synchronization has finished.
	InitialSyncDone
	// NoInitialSync means the node doesn't have an initial synchronization phase.
	NoInitialSync
)

// String implements the fmt.Stringer interface.
func (p Phase) String() string {
	switch p {
	case InitialSyncPending:
		return "pending"
	case InitialSyncDone:
		return "done"
	case NoInitialSync:
		return "none"
	default:
		return "unknown"
	}
}

// State holds the synchronization phase shared by all interested
// components. It's safe for concurrent use.
type State struct {
	phase atomic.Uint32

	lock      sync.Mutex
	callbacks []func()
}

// New creates a new State. If hasInitialSyncPhase is false the node is
// considered to be synchronized from the start.
func New(hasInitialSyncPhase bool) *State {
	s := &State{}
	if hasInitialSyncPhase {
		s.phase.Store(uint32(InitialSyncPending))
	} else {
		s.phase.Store(uint32(NoInitialSync))
	}
	return s
}

// Phase returns the current phase.
func (s *State) Phase() Phase {
	return Phase(s.phase.Load())
}

// HasInitialSyncPhase returns whether the node was configured with an
// initial synchronization phase.
func (s *State) HasInitialSyncPhase() bool {
	return s.Phase() != NoInitialSync
}

// IsInitialSyncDone returns true once the initial synchronization is
// finished. It's always true for nodes without the initial
// synchronization phase.
func (s *State) IsInitialSyncDone() bool {
	return s.Phase() != InitialSyncPending
}

// MarkInitialSyncPhaseAsDone finishes the initial synchronization phase and
// runs registered callbacks. Subsequent calls are no-op.
func (s *State) MarkInitialSyncPhaseAsDone() {
	s.lock.Lock()
	if !s.phase.CompareAndSwap(uint32(InitialSyncPending), uint32(InitialSyncDone)) {
		s.lock.Unlock()
		return
	}
	cbs := s.callbacks
	s.callbacks = nil
	s.lock.Unlock()

	for _, f := range cbs {
		f()
	}
}

// OnInitialSyncDone registers f to be called once the initial
// synchronization is finished. If it's already done (or there is no initial
// synchronization phase at all), f is called immediately.
func (s *State) OnInitialSyncDone(f func()) {
	s.lock.Lock()
	if !s.IsInitialSyncDone() {
		s.callbacks = append(s.callbacks, f)
		s.lock.Unlock()
		return
	}
	s.lock.Unlock()
	f()
}
