package corert

import (
	"errors"

	"github.com/gogpu/corert/core"
)

// ErrNotInitialized is returned by Graphics methods that require
// Initialize to have already succeeded.
var ErrNotInitialized = errors.New("corert: graphics not initialized")

// ErrAlreadyInitialized is returned by Initialize when called a second
// time without an intervening Shutdown.
var ErrAlreadyInitialized = errors.New("corert: graphics already initialized")

// ErrContextRequired is returned by Initialize when Params.Context is nil.
var ErrContextRequired = errors.New("corert: Params.Context is required")

// ErrFenceWaiterRequired is returned by Initialize when neither
// Params.FenceWaiter nor Params.Context (as a gpu.FenceWaiter) is
// available.
var ErrFenceWaiterRequired = errors.New("corert: Params.FenceWaiter is required when Context does not itself implement gpu.FenceWaiter")

// Re-exported core sentinels, so callers of this package's public surface
// never need to import core directly to recognize a failure mode.
var (
	ErrWrongThread          = core.ErrWrongThread
	ErrDuplicateQueue       = core.ErrDuplicateQueue
	ErrSystemQueueProtected = core.ErrSystemQueueProtected
	ErrQueueNotFound        = core.ErrNotFound
)

// IsFenceTimeout reports whether err is (or wraps) a fence-wait timeout.
func IsFenceTimeout(err error) bool { return core.IsFenceTimeout(err) }

// IsWrongThread reports whether err is the WrongThread programmer error.
func IsWrongThread(err error) bool { return core.IsWrongThread(err) }
