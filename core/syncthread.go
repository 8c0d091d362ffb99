package core

import (
	"runtime"
	"sync"
	"time"

	"github.com/gogpu/corert/gpu"
)

// defaultFenceTimeout is the sync thread's fence-wait budget absent a
// debugger.
const defaultFenceTimeout = 30 * time.Second

// debuggerFenceTimeout is used instead when a debugger is attached, so
// stepping through the render thread doesn't spuriously time out pending
// fences.
const debuggerFenceTimeout = time.Hour

type syncJob struct {
	sync  *Sync
	fence gpu.FenceHandle
}

// SyncThread is the single dedicated goroutine that waits on GPU fences on
// behalf of producers, so the render thread never blocks on a fence wait.
// It consumes a FIFO of (Sync, fence) jobs submitted via Submit.
type SyncThread struct {
	waiter           gpu.FenceWaiter
	debuggerAttached bool
	timeout          time.Duration

	jobs chan syncJob
	done chan struct{}
	wg   sync.WaitGroup

	errMu sync.Mutex
	err   error
}

// NewSyncThread spawns the sync thread. timeout is the fence-wait budget
// absent a debugger; pass 0 to use the 30-second default.
func NewSyncThread(waiter gpu.FenceWaiter, timeout time.Duration, debuggerAttached bool) *SyncThread {
	if timeout <= 0 {
		timeout = defaultFenceTimeout
	}
	st := &SyncThread{
		waiter:           waiter,
		debuggerAttached: debuggerAttached,
		timeout:          timeout,
		jobs:             make(chan syncJob, 64),
		done:             make(chan struct{}),
	}
	st.wg.Add(1)
	go st.run()
	return st
}

func (st *SyncThread) effectiveTimeout() time.Duration {
	if st.debuggerAttached {
		return debuggerFenceTimeout
	}
	return st.timeout
}

// Submit forwards a set sync to the sync thread's wait queue. If the sync
// thread's exception slot already holds an error, that error is returned
// immediately instead of enqueuing, so a captured fence-timeout re-raises
// on the next producer call instead of vanishing silently.
func (st *SyncThread) Submit(s *Sync, fence gpu.FenceHandle) error {
	if err := st.Err(); err != nil {
		return err
	}
	select {
	case st.jobs <- syncJob{sync: s, fence: fence}:
		return nil
	case <-st.done:
		return nil
	}
}

// Err returns the sync thread's currently stored exception, if any.
func (st *SyncThread) Err() error {
	st.errMu.Lock()
	defer st.errMu.Unlock()
	return st.err
}

func (st *SyncThread) setErr(err error) {
	st.errMu.Lock()
	st.err = err
	st.errMu.Unlock()
	Logger().Error("sync thread captured error", "error", err)
}

func (st *SyncThread) run() {
	defer st.wg.Done()
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	setOSThreadName("sync-thread")

	for {
		select {
		case job := <-st.jobs:
			st.process(job)
		case <-st.done:
			return
		}
	}
}

func (st *SyncThread) process(job syncJob) {
	ok, err := st.waiter.Wait(job.fence, st.effectiveTimeout())
	if err != nil {
		st.setErr(err)
		return
	}
	if !ok {
		st.setErr(&FenceTimeoutError{Budget: st.effectiveTimeout().String()})
		return
	}
	st.waiter.DeleteFence(job.fence)
	job.sync.signal()
}

// Stop signals the sync thread to exit and waits for it to do so. Any sync
// still queued is abandoned (never signaled) — shutdown is expected to
// have already drained all resource destruction through the render
// thread's system queue first.
func (st *SyncThread) Stop() {
	close(st.done)
	st.wg.Wait()
}
