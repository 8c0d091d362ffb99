package core

import (
	"runtime"
	"sync"

	"github.com/gogpu/corert/gpu"
	"github.com/gogpu/corert/internal/tlsmap"
)

// RenderThreadState is the render thread's externally observable lifecycle.
type RenderThreadState int32

const (
	RenderThreadNotSpawned RenderThreadState = iota
	RenderThreadIdle
	RenderThreadDraining
	RenderThreadExited
)

func (s RenderThreadState) String() string {
	switch s {
	case RenderThreadNotSpawned:
		return "not-spawned"
	case RenderThreadIdle:
		return "idle"
	case RenderThreadDraining:
		return "draining"
	case RenderThreadExited:
		return "exited"
	default:
		return "unknown"
	}
}

// RenderThread drives a RenderPolicy against a GPU context on a single
// dedicated OS thread. A producer hands it work with RunCommands and
// rendezvouses with WaitForReadyToSwap before calling RenderPolicy.Swap —
// the thread is never executing while a swap happens.
type RenderThread struct {
	policy *RenderPolicy
	ctx    gpu.Context

	mu            sync.Mutex
	cond          *sync.Cond
	state         RenderThreadState
	runRequested  bool
	exitRequested bool
	cycle         int
	err           error

	threadID uint64
	wg       sync.WaitGroup
}

// NewRenderThread spawns the render thread and binds it to policy. ctx must
// not be touched by any other goroutine for as long as the thread runs.
func NewRenderThread(policy *RenderPolicy, ctx gpu.Context) *RenderThread {
	rt := &RenderThread{policy: policy, ctx: ctx}
	rt.cond = sync.NewCond(&rt.mu)
	rt.wg.Add(1)
	go rt.run()
	return rt
}

func (rt *RenderThread) run() {
	defer rt.wg.Done()
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	setOSThreadName("render-thread")

	id := tlsmap.CurrentID()
	rt.policy.BindRenderThread(id)
	rt.mu.Lock()
	rt.threadID = id
	rt.state = RenderThreadIdle
	rt.mu.Unlock()

	for {
		rt.mu.Lock()
		for !rt.runRequested && !rt.exitRequested {
			rt.cond.Wait()
		}
		exit := rt.exitRequested
		ran := rt.runRequested
		rt.runRequested = false
		if ran {
			rt.state = RenderThreadDraining
		}
		rt.mu.Unlock()

		if ran {
			if err := rt.policy.Execute(rt.ctx); err != nil {
				rt.recordErr(err)
			}
		}

		rt.mu.Lock()
		rt.state = RenderThreadIdle
		rt.cycle++
		rt.cond.Broadcast()
		rt.mu.Unlock()

		if exit {
			break
		}
	}

	// Drain whatever destroy commands landed on the system queue between
	// the last swap and exit before terminating.
	if err := rt.policy.ExecuteSystemOnly(rt.ctx); err != nil {
		rt.recordErr(err)
	}

	rt.mu.Lock()
	rt.state = RenderThreadExited
	rt.cond.Broadcast()
	rt.mu.Unlock()
}

// RunCommands requests that the thread execute the current executing-frame
// sequence. Returns a cycle token to pass to WaitForReadyToSwap.
func (rt *RenderThread) RunCommands() int {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	rt.runRequested = true
	target := rt.cycle + 1
	rt.cond.Broadcast()
	return target
}

// WaitForReadyToSwap blocks until the thread has completed the cycle
// RunCommands returned a token for, then returns the first error the thread
// has captured in any cycle so far, if any.
func (rt *RenderThread) WaitForReadyToSwap(cycle int) error {
	rt.mu.Lock()
	for rt.cycle < cycle {
		rt.cond.Wait()
	}
	err := rt.err
	rt.mu.Unlock()
	return err
}

// RequestExit asks the thread to finish its current cycle and terminate.
func (rt *RenderThread) RequestExit() {
	rt.mu.Lock()
	rt.exitRequested = true
	rt.cond.Broadcast()
	rt.mu.Unlock()
}

// Join blocks until the thread has exited.
func (rt *RenderThread) Join() {
	rt.wg.Wait()
}

// State returns the thread's current lifecycle state.
func (rt *RenderThread) State() RenderThreadState {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return rt.state
}

// IsRenderThread reports whether the calling goroutine is this render
// thread.
func (rt *RenderThread) IsRenderThread() bool {
	rt.mu.Lock()
	id := rt.threadID
	rt.mu.Unlock()
	return tlsmap.CurrentID() == id
}

// Err returns the first error the thread captured, if any, without
// blocking.
func (rt *RenderThread) Err() error {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return rt.err
}

func (rt *RenderThread) recordErr(err error) {
	rt.mu.Lock()
	if rt.err == nil {
		rt.err = err
	}
	rt.mu.Unlock()
	Logger().Error("render thread captured error", "error", err)
}
