package corert

import (
	"time"

	"github.com/gogpu/corert/gpu"
)

// Params configures [Graphics.Initialize].
type Params struct {
	// Context is the GPU API binding the render thread will exclusively
	// own. Required.
	Context gpu.Context

	// FenceWaiter is the resource-sharing sub-context the sync thread uses
	// to wait on fences without touching Context's binding state. If nil,
	// Context itself must implement gpu.FenceWaiter.
	FenceWaiter gpu.FenceWaiter

	// FenceTimeout is the sync thread's fence-wait budget. Zero uses the
	// 30-second default; DebuggerAttached overrides this to one hour
	// regardless.
	FenceTimeout time.Duration

	// DebuggerAttached forces the sync thread's one-hour timeout, so
	// stepping through the render thread in a debugger doesn't spuriously
	// time out pending fences.
	DebuggerAttached bool

	// QueueLabels declares additional command queues, inserted after
	// system-sync in this order, at Initialize time. Queues needed later
	// can still be created and inserted through [Graphics.Policy].
	QueueLabels []string
}
