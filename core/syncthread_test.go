package core

import (
	"testing"
	"time"

	"github.com/gogpu/corert/gpu/mock"
)

func TestSyncThreadSignalsOnFenceCompletion(t *testing.T) {
	ctx := mock.New()
	st := NewSyncThread(ctx, time.Second, false)
	defer st.Stop()

	s := NewSync()
	fence, err := s.Set(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if err := st.Submit(s, fence); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	deadline := time.Now().Add(time.Second)
	for s.State() != SyncSignaled && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if s.State() != SyncSignaled {
		t.Fatalf("sync was not signaled within budget, state=%s", s.State())
	}
	if err := st.Err(); err != nil {
		t.Fatalf("sync thread recorded an unexpected error: %v", err)
	}
}

func TestSyncThreadFenceTimeoutCapturedAndReraised(t *testing.T) {
	ctx := mock.New()
	ctx.NeverSignalFences.Store(true)
	st := NewSyncThread(ctx, 10*time.Millisecond, false)
	defer st.Stop()

	s := NewSync()
	fence, err := s.Set(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if err := st.Submit(s, fence); err != nil {
		t.Fatalf("first Submit: %v", err)
	}

	deadline := time.Now().Add(time.Second)
	for st.Err() == nil && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	err = st.Err()
	if !IsFenceTimeout(err) {
		t.Fatalf("got %v, want a FenceTimeoutError", err)
	}

	// The stored error must be re-raised on the next Submit instead of
	// silently enqueuing more work behind a dead sync thread.
	s2 := NewSync()
	if _, err := s2.Set(ctx); err != nil {
		t.Fatal(err)
	}
	if err := st.Submit(s2, fence); !IsFenceTimeout(err) {
		t.Fatalf("second Submit: got %v, want the same FenceTimeoutError", err)
	}
}

func TestSyncThreadDebuggerAttachedUsesLongTimeout(t *testing.T) {
	ctx := mock.New()
	st := NewSyncThread(ctx, 10*time.Millisecond, true)
	defer st.Stop()

	if st.effectiveTimeout() != debuggerFenceTimeout {
		t.Fatalf("effectiveTimeout with debugger attached: got %s, want %s", st.effectiveTimeout(), debuggerFenceTimeout)
	}
}
