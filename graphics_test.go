package corert

import (
	"testing"
	"time"

	"github.com/gogpu/corert/core"
	"github.com/gogpu/corert/gpu"
	"github.com/gogpu/corert/gpu/mock"
)

func newTestGraphics(t *testing.T) (*Graphics, *mock.Context) {
	t.Helper()
	ctx := mock.New()
	g := New()
	if err := g.Initialize(Params{Context: ctx, FenceTimeout: time.Second}); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	t.Cleanup(g.Shutdown)
	return g, ctx
}

func TestInitializeRequiresContext(t *testing.T) {
	g := New()
	if err := g.Initialize(Params{}); err != ErrContextRequired {
		t.Fatalf("got %v, want ErrContextRequired", err)
	}
}

func TestMethodsBeforeInitializeReturnErrNotInitialized(t *testing.T) {
	g := New()
	if _, err := g.CreateBuffer(gpu.BufferDescriptor{}); err != ErrNotInitialized {
		t.Fatalf("CreateBuffer: got %v, want ErrNotInitialized", err)
	}
	if _, err := g.Queue("system"); err != ErrNotInitialized {
		t.Fatalf("Queue: got %v, want ErrNotInitialized", err)
	}
	if _, err := g.InsertQueue("extra"); err != ErrNotInitialized {
		t.Fatalf("InsertQueue: got %v, want ErrNotInitialized", err)
	}
	if err := g.FlushCommands(); err != ErrNotInitialized {
		t.Fatalf("FlushCommands: got %v, want ErrNotInitialized", err)
	}
	if err := g.FinishSettingSync(core.NewSync(), gpu.FenceHandle(0)); err != ErrNotInitialized {
		t.Fatalf("FinishSettingSync: got %v, want ErrNotInitialized", err)
	}
	if g.SystemQueue() != nil {
		t.Fatal("SystemQueue: want nil before Initialize")
	}
}

func TestInitializeTwiceFails(t *testing.T) {
	g, _ := newTestGraphics(t)
	if err := g.Initialize(Params{Context: mock.New()}); err != ErrAlreadyInitialized {
		t.Fatalf("got %v, want ErrAlreadyInitialized", err)
	}
}

func TestInitializeDeclaresQueueLabels(t *testing.T) {
	ctx := mock.New()
	g := New()
	if err := g.Initialize(Params{Context: ctx, QueueLabels: []string{"forward", "overlay"}}); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	t.Cleanup(g.Shutdown)

	if _, err := g.Queue("forward"); err != nil {
		t.Fatalf("Queue(forward): %v", err)
	}
	if _, err := g.Queue("overlay"); err != nil {
		t.Fatalf("Queue(overlay): %v", err)
	}
	if _, err := g.Queue("nonexistent"); err == nil {
		t.Fatal("expected error for undeclared queue label")
	}
}

func TestFlushCommandsRejectedFromRenderThread(t *testing.T) {
	g, _ := newTestGraphics(t)

	cmd := &callFlushFromRenderThread{g: g, done: make(chan error, 1)}
	if err := core.EnqueueCommand(g.SystemQueue(), cmd); err != nil {
		t.Fatalf("EnqueueCommand: %v", err)
	}
	if err := g.FinishCommands(); err != nil {
		t.Fatalf("FinishCommands: %v", err)
	}

	select {
	case err := <-cmd.done:
		if !IsWrongThread(err) {
			t.Fatalf("got %v, want ErrWrongThread", err)
		}
	default:
		t.Fatal("probe command never ran")
	}
}

// callFlushFromRenderThread calls Graphics.FlushCommands from inside the
// render thread's own command execution, which must be rejected: the render
// thread cannot wait on itself to finish a batch it is currently draining.
type callFlushFromRenderThread struct {
	g    *Graphics
	done chan error
}

func (c *callFlushFromRenderThread) Execute(ctx gpu.Context) error {
	c.done <- c.g.FlushCommands()
	return nil
}

func TestCreateFinishedBufferBlocksUntilSignaled(t *testing.T) {
	g, ctx := newTestGraphics(t)

	buf, err := g.CreateFinishedBuffer(gpu.BufferDescriptor{
		Label: "vertex", Size: 256, Mapping: gpu.BufferMappingWrite,
	})
	if err != nil {
		t.Fatalf("CreateFinishedBuffer: %v", err)
	}
	if !buf.Finished() {
		t.Fatal("buffer not finished after CreateFinishedBuffer returned")
	}
	if ctx.CountOp("CreateBuffer") != 1 {
		t.Fatalf("got %d CreateBuffer calls, want 1", ctx.CountOp("CreateBuffer"))
	}
	if err := buf.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}

func TestShutdownSignalsDestroyed(t *testing.T) {
	ctx := mock.New()
	g := New()
	if err := g.Initialize(Params{Context: ctx}); err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	fired := false
	g.Destroyed.Bind(func(struct{}) { fired = true }, core.Borrowed, nil)

	g.Shutdown()
	if !fired {
		t.Fatal("Destroyed event did not fire on Shutdown")
	}

	// Shutdown is idempotent.
	g.Shutdown()
}
