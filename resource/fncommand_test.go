package resource

import (
	"testing"

	"github.com/gogpu/corert/core"
	"github.com/gogpu/corert/gpu"
)

// fnCommand adapts an arbitrary function to core.Command, for tests that
// need to run something on the render thread itself (e.g. a resource's
// Close called from inside a command, to exercise the "called from the
// render thread" direct-destroy path).
type fnCommand struct{ fn func(gpu.Context) error }

func (c *fnCommand) Execute(ctx gpu.Context) error { return c.fn(ctx) }

// closeOnRenderThread enqueues fn as a command on the rig's system queue
// and runs a frame, so fn executes on the actual render thread goroutine.
func closeOnRenderThread(t *testing.T, r *rig, fn func()) {
	t.Helper()
	sysQ, _ := r.policy.GetSystemCommandQueue()
	if err := core.EnqueueCommand(sysQ, &fnCommand{fn: func(gpu.Context) error { fn(); return nil }}); err != nil {
		t.Fatalf("EnqueueCommand: %v", err)
	}
	r.runFrame()
}
