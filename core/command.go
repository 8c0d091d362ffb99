package core

import (
	"sync"
	"unsafe"

	"github.com/gogpu/corert/gpu"
	"github.com/gogpu/corert/internal/dbq"
	"github.com/gogpu/corert/internal/tlsmap"
)

// Command is the capability every command record must satisfy: an execute
// step against the GPU context. A command that holds GPU-side or heap
// resources beyond what GC reclaims can additionally implement Release()
// — the render thread calls it immediately after Execute.
type Command interface {
	Execute(ctx gpu.Context) error
}

// producerQueue is one producer thread's staging DBQ.
type producerQueue = dbq.Queue[Command]

// CommandQueue aggregates every producer thread's DBQ for one named queue
// and drains them, in DBQ-registration order, on the render thread.
type CommandQueue struct {
	label    string
	nameHash uint64
	names    *NameTable

	mu      sync.Mutex
	active  []*producerQueue // consumer-side: every DBQ ever created, in creation order
	pending []*producerQueue // created since the last Swap

	producers *tlsmap.Map[*producerQueue]
}

// NewCommandQueue creates an empty command queue. label may be empty; if
// names is non-nil and label is non-empty, the queue acquires a debug name
// from it and releases it when the queue itself is discarded (callers
// should call Close when done, or rely on process teardown).
func NewCommandQueue(label string, names *NameTable) *CommandQueue {
	q := &CommandQueue{
		label:     label,
		names:     names,
		producers: tlsmap.New[*producerQueue](),
	}
	if names != nil {
		q.nameHash = names.Acquire(label)
	}
	return q
}

// Label returns the queue's debug name, or "" if unnamed.
func (q *CommandQueue) Label() string { return q.label }

// NameHash returns the queue's debug-name hash (0 if unnamed).
func (q *CommandQueue) NameHash() uint64 { return q.nameHash }

// Close releases the queue's debug name, if any.
func (q *CommandQueue) Close() {
	if q.names != nil {
		q.names.Release(q.nameHash)
	}
}

// EnqueueCommand stages cmd as a record in the calling goroutine's DBQ,
// accounted at T's size and alignment, and returns without blocking. On the first call from a
// new producer, it allocates that producer's DBQ and registers it onto the
// pending-updates list, merged into the active list at the next Swap.
//
// Go cannot give a method its own type parameter, so this is a free
// function taking the queue instead of a generic method.
func EnqueueCommand[T Command](q *CommandQueue, cmd T) error {
	size := uint32(unsafe.Sizeof(cmd))
	align := uint8(unsafe.Alignof(cmd))

	pq, created := q.producers.GetOrCreate(func() *producerQueue { return dbq.New[Command]() })
	if created {
		q.mu.Lock()
		q.pending = append(q.pending, pq)
		q.mu.Unlock()
	}
	return pq.Enqueue(Command(cmd), size, align)
}

// Swap merges any DBQs created since the last swap into the active list,
// then swaps every active DBQ's producer/consumer halves. Must be called
// only while the render thread is parked (orchestrator control).
func (q *CommandQueue) Swap() {
	q.mu.Lock()
	if len(q.pending) > 0 {
		q.active = append(q.active, q.pending...)
		q.pending = q.pending[:0]
	}
	active := q.active
	q.mu.Unlock()

	for _, pq := range active {
		pq.Swap()
	}
}

// Execute drains every DBQ belonging to this queue, in DBQ-registration
// order, invoking each record's Execute then its optional Release. Must be
// called only from the render thread; callers are expected to have already
// verified that with their own WrongThread check (see RenderThread).
func (q *CommandQueue) Execute(ctx gpu.Context) error {
	q.mu.Lock()
	active := q.active
	q.mu.Unlock()

	named := q.label != ""
	if named {
		ctx.PushDebugGroup(q.label)
		defer ctx.PopDebugGroup()
	}

	for _, pq := range active {
		for {
			cmd, ok := pq.Dequeue()
			if !ok {
				break
			}
			if err := cmd.Execute(ctx); err != nil {
				return err
			}
			if r, ok := cmd.(releasable); ok {
				r.Release()
			}
		}
	}
	return nil
}
