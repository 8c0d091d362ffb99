package core

import (
	"errors"
	"testing"
	"time"

	"github.com/gogpu/corert/gpu"
	"github.com/gogpu/corert/gpu/mock"
)

type countingCmd struct{ n *int }

func (c *countingCmd) Execute(ctx gpu.Context) error {
	*c.n++
	return nil
}

func TestRenderThreadRunsEnqueuedCommands(t *testing.T) {
	names := NewNameTable()
	ctx := mock.New()
	st := NewSyncThread(ctx, 0, false)
	defer st.Stop()
	policy := NewRenderPolicy(names, st)
	q := NewCommandQueue("frame", names)
	if err := policy.Insert(q); err != nil {
		t.Fatal(err)
	}

	rt := NewRenderThread(policy, ctx)
	defer func() {
		rt.RequestExit()
		rt.Join()
	}()

	n := 0
	if err := EnqueueCommand(q, &countingCmd{n: &n}); err != nil {
		t.Fatalf("EnqueueCommand: %v", err)
	}
	policy.Swap()

	cycle := rt.RunCommands()
	if err := rt.WaitForReadyToSwap(cycle); err != nil {
		t.Fatalf("WaitForReadyToSwap: %v", err)
	}
	if n != 1 {
		t.Fatalf("command did not run: n=%d", n)
	}
}

func TestRenderThreadWrongThreadRejected(t *testing.T) {
	names := NewNameTable()
	ctx := mock.New()
	st := NewSyncThread(ctx, 0, false)
	defer st.Stop()
	policy := NewRenderPolicy(names, st)

	rt := NewRenderThread(policy, ctx)
	defer func() {
		rt.RequestExit()
		rt.Join()
	}()

	// Give the thread a moment to spawn and bind itself before asserting
	// that calling Execute from this (non-render) goroutine is rejected.
	deadline := time.Now().Add(time.Second)
	for rt.State() == RenderThreadNotSpawned && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}

	if err := policy.Execute(ctx); !errors.Is(err, ErrWrongThread) {
		t.Fatalf("Execute from test goroutine: got %v, want ErrWrongThread", err)
	}
}

func TestRenderThreadExitDrainsSystemQueueOnce(t *testing.T) {
	names := NewNameTable()
	ctx := mock.New()
	st := NewSyncThread(ctx, 0, false)
	defer st.Stop()
	policy := NewRenderPolicy(names, st)

	rt := NewRenderThread(policy, ctx)

	n := 0
	sysQ, _ := policy.GetSystemCommandQueue()
	if err := EnqueueCommand(sysQ, &countingCmd{n: &n}); err != nil {
		t.Fatal(err)
	}
	policy.Swap()

	rt.RequestExit()
	rt.Join()

	if n != 1 {
		t.Fatalf("system queue command did not run during shutdown drain: n=%d", n)
	}
	if rt.State() != RenderThreadExited {
		t.Fatalf("state after Join: got %s, want exited", rt.State())
	}
}
