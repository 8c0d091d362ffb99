package core

import (
	"sync"
	"sync/atomic"

	"github.com/gogpu/corert/gpu"
	"github.com/gogpu/corert/internal/tlsmap"
)

// System queue names, reserved by RenderPolicy.
const (
	systemQueueLabel     = "system"
	systemSyncQueueLabel = "system-sync"
)

// setSyncCommand is the sentinel appended to the system-sync queue at
// Swap, if a system-sync was allocated this frame: it places the fence and
// forwards it to the sync thread.
type setSyncCommand struct {
	sync       *Sync
	syncThread *SyncThread
}

func (c *setSyncCommand) Execute(ctx gpu.Context) error {
	fence, err := c.sync.Set(ctx)
	if err != nil {
		return err
	}
	return c.syncThread.Submit(c.sync, fence)
}

// RenderPolicy owns the queue graph the render thread drains each frame:
// an ordered sequence of command queues with system always first and
// system-sync always second.
type RenderPolicy struct {
	names      *NameTable
	syncThread *SyncThread

	mu         sync.Mutex
	system     *CommandQueue
	systemSync *CommandQueue
	current    []*CommandQueue // this frame's declared order
	executing  []*CommandQueue // snapshot taken at the last Swap
	byHash     map[uint64]*CommandQueue

	systemSyncObj *Sync // lazily allocated per frame
	frameIndex    uint64

	renderThreadID    atomic.Uint64
	renderThreadBound atomic.Bool
}

// NewRenderPolicy creates a policy with its system and system-sync queues
// already inserted.
func NewRenderPolicy(names *NameTable, syncThread *SyncThread) *RenderPolicy {
	p := &RenderPolicy{
		names:      names,
		syncThread: syncThread,
		system:     NewCommandQueue(systemQueueLabel, names),
		systemSync: NewCommandQueue(systemSyncQueueLabel, names),
		byHash:     make(map[uint64]*CommandQueue),
	}
	p.current = []*CommandQueue{p.system, p.systemSync}
	return p
}

// SystemQueue returns the always-first system queue.
func (p *RenderPolicy) SystemQueue() *CommandQueue { return p.system }

// BindRenderThread records which goroutine is the render thread, enabling
// the WrongThread guard on Execute/ExecuteSystemOnly. Called once by
// RenderThread right after it spawns.
func (p *RenderPolicy) BindRenderThread(id uint64) {
	p.renderThreadID.Store(id)
	p.renderThreadBound.Store(true)
}

func (p *RenderPolicy) checkRenderThread() error {
	if !p.renderThreadBound.Load() {
		return nil
	}
	if tlsmap.CurrentID() != p.renderThreadID.Load() {
		return ErrWrongThread
	}
	return nil
}

// Insert appends queue to the end of the declared order. Called from a
// producer thread.
func (p *RenderPolicy) Insert(q *CommandQueue) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.checkDuplicateLocked(q); err != nil {
		return err
	}
	p.current = append(p.current, q)
	p.registerLocked(q)
	return nil
}

// InsertAfter inserts queue immediately after anchor in the declared order.
// With the system queue as anchor, queue lands right after system-sync.
func (p *RenderPolicy) InsertAfter(q *CommandQueue, anchor *CommandQueue) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.checkDuplicateLocked(q); err != nil {
		return err
	}
	idx := -1
	for i, existing := range p.current {
		if existing == anchor {
			idx = i
			break
		}
	}
	if idx < 0 {
		return ErrNotFound
	}
	if idx < 1 {
		idx = 1 // nothing goes between system and system-sync
	}
	p.current = append(p.current, nil)
	copy(p.current[idx+2:], p.current[idx+1:])
	p.current[idx+1] = q
	p.registerLocked(q)
	return nil
}

func (p *RenderPolicy) checkDuplicateLocked(q *CommandQueue) error {
	for _, existing := range p.current {
		if existing == q {
			return ErrDuplicateQueue
		}
	}
	return nil
}

func (p *RenderPolicy) registerLocked(q *CommandQueue) {
	if q.NameHash() != 0 {
		p.byHash[q.NameHash()] = q
	}
}

// Remove drops queue from the declared order. Rejects the system and
// system-sync queues with ErrSystemQueueProtected.
func (p *RenderPolicy) Remove(q *CommandQueue) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if q == p.system || q == p.systemSync {
		return ErrSystemQueueProtected
	}
	for i, existing := range p.current {
		if existing == q {
			p.current = append(p.current[:i], p.current[i+1:]...)
			if q.NameHash() != 0 {
				delete(p.byHash, q.NameHash())
			}
			return nil
		}
	}
	return ErrNotFound
}

// Find looks up a queue by its debug-name hash.
func (p *RenderPolicy) Find(nameHash uint64) (*CommandQueue, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	q, ok := p.byHash[nameHash]
	if !ok {
		return nil, ErrNotFound
	}
	return q, nil
}

// GetSystemCommandQueue lazily allocates this frame's system_sync object on
// first call and returns the system queue alongside it. The returned sync
// is the one a set_sync sentinel will signal at the end of the system
// queue's drain this frame.
func (p *RenderPolicy) GetSystemCommandQueue() (*CommandQueue, *Sync) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.systemSyncObj == nil {
		p.systemSyncObj = NewSync()
	}
	return p.system, p.systemSyncObj
}

// Execute drains the executing-frame sequence, in order, on the render
// thread.
func (p *RenderPolicy) Execute(ctx gpu.Context) error {
	if err := p.checkRenderThread(); err != nil {
		return err
	}
	p.mu.Lock()
	executing := p.executing
	p.mu.Unlock()

	for _, q := range executing {
		if err := q.Execute(ctx); err != nil {
			return err
		}
	}
	return nil
}

// ExecuteSystemOnly drains only the system queue — used during render
// thread shutdown, to flush deferred destroy commands once more.
func (p *RenderPolicy) ExecuteSystemOnly(ctx gpu.Context) error {
	if err := p.checkRenderThread(); err != nil {
		return err
	}
	return p.system.Execute(ctx)
}

// Swap snapshots the current declared order into the executing sequence
// and swaps every queue's DBQs. If a system_sync was allocated this frame,
// a set_sync sentinel is appended to the system-sync queue first. Must be
// called only while the render thread is parked.
func (p *RenderPolicy) Swap() {
	p.mu.Lock()
	if p.systemSyncObj != nil {
		cmd := &setSyncCommand{sync: p.systemSyncObj, syncThread: p.syncThread}
		_ = EnqueueCommand(p.systemSync, cmd)
		p.systemSyncObj = nil
	}
	p.frameIndex++
	p.executing = append([]*CommandQueue(nil), p.current...)
	current := append([]*CommandQueue(nil), p.current...)
	p.mu.Unlock()

	for _, q := range current {
		q.Swap()
	}
}

// FrameIndex returns the number of swaps performed so far — a monotonic
// frame counter kept for diagnostics, not a spec invariant.
func (p *RenderPolicy) FrameIndex() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.frameIndex
}
