package core

import (
	"sync"

	"github.com/gogpu/corert/gpu"
)

// SyncState is the {clear, set, signaled} state machine for a Sync object.
type SyncState int32

const (
	SyncClear SyncState = iota
	SyncSet
	SyncSignaled
)

func (s SyncState) String() string {
	switch s {
	case SyncClear:
		return "clear"
	case SyncSet:
		return "set"
	case SyncSignaled:
		return "signaled"
	default:
		return "unknown"
	}
}

// Sync is a reusable fence handle: the render thread places a GPU fence at
// a command boundary with Set, the sync thread observes it complete and
// calls signal, and a producer thread blocks on that transition with Wait.
//
// Wait folds the externally-held lock a caller might otherwise thread
// through the call into the Sync's own internal mutex via sync.Cond — the
// same condition-variable discipline, without the extra parameter.
type Sync struct {
	mu    sync.Mutex
	cond  *sync.Cond
	state SyncState
	fence gpu.FenceHandle

	// waiters counts producers blocked in Wait. Clear() with waiters > 0
	// is a programmer error: this implementation assumes Clear is only
	// ever called once no waiter remains.
	waiters int
}

// NewSync creates a Sync in the clear state.
func NewSync() *Sync {
	s := &Sync{}
	s.cond = sync.NewCond(&s.mu)
	return s
}

// State returns the current state.
func (s *Sync) State() SyncState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Set is called by the render thread at a command boundary: it inserts a
// GPU fence and transitions clear → set. Fails with ErrAlreadySet if the
// sync isn't currently clear. The caller (typically the render thread's
// command execution loop) is responsible for forwarding the returned fence
// to the sync thread via SyncThread.Submit.
func (s *Sync) Set(ctx gpu.Context) (gpu.FenceHandle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != SyncClear {
		return 0, ErrAlreadySet
	}
	fence, err := ctx.InsertFence()
	if err != nil {
		return 0, err
	}
	s.fence = fence
	s.state = SyncSet
	return fence, nil
}

// signal is called by the sync thread once it has observed the fence
// complete, transitioning set → signaled and waking every blocked Wait.
func (s *Sync) signal() {
	s.mu.Lock()
	s.state = SyncSignaled
	s.cond.Broadcast()
	s.mu.Unlock()
}

// Wait blocks the calling producer until the state is observed signaled.
func (s *Sync) Wait() {
	s.mu.Lock()
	s.waiters++
	for s.state != SyncSignaled {
		s.cond.Wait()
	}
	s.waiters--
	s.mu.Unlock()
}

// Clear transitions any state back to clear so the object may be reused.
// Returns ErrClearWhileWaited if a producer is still blocked in Wait.
func (s *Sync) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.waiters > 0 {
		return ErrClearWhileWaited
	}
	s.state = SyncClear
	s.fence = 0
	return nil
}
