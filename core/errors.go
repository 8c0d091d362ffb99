package core

import (
	"errors"
	"fmt"
)

// Programmer-error sentinels: these surface as ordinary Go errors rather
// than panics, but callers should treat them as bugs, not recoverable
// conditions.
var (
	// ErrWrongThread is returned by RenderPolicy.Execute and
	// ExecuteSystemOnly when called from a goroutine other than the bound
	// render thread, and by Graphics.FlushCommands when called from the
	// render thread. CommandQueue methods do not check the calling thread.
	ErrWrongThread = errors.New("core: called from a thread other than the render thread")

	// ErrDuplicateQueue is returned by RenderPolicy.Insert/InsertAfter
	// when the queue is already present.
	ErrDuplicateQueue = errors.New("core: queue already inserted into this policy")

	// ErrSystemQueueProtected is returned by RenderPolicy.Remove for the
	// system or system-sync queue.
	ErrSystemQueueProtected = errors.New("core: the system and system-sync queues cannot be removed")

	// ErrNotFound is returned by RenderPolicy.Find when no queue matches
	// the requested name hash.
	ErrNotFound = errors.New("core: no queue matches that name")

	// ErrAlreadySet is returned by Sync.Set when the sync is not
	// currently clear.
	ErrAlreadySet = errors.New("core: sync.Set called while not clear")

	// ErrClearWhileWaited is returned by Sync.Clear if a waiter is still
	// registered, rather than silently orphaning the waiter.
	ErrClearWhileWaited = errors.New("core: sync.Clear called while a waiter is still registered")
)

// FenceTimeoutError reports that the sync thread's fence wait exceeded its
// configured budget.
type FenceTimeoutError struct {
	Budget string
}

func (e *FenceTimeoutError) Error() string {
	return fmt.Sprintf("core: fence wait exceeded budget %s", e.Budget)
}

// IsFenceTimeout reports whether err is (or wraps) a FenceTimeoutError.
func IsFenceTimeout(err error) bool {
	var fte *FenceTimeoutError
	return errors.As(err, &fte)
}

// IsWrongThread reports whether err is ErrWrongThread.
func IsWrongThread(err error) bool { return errors.Is(err, ErrWrongThread) }
