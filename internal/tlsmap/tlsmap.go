// Package tlsmap implements a keyed per-goroutine slot map independent of
// any language-builtin TLS. Go has no builtin thread-local storage at all
// — goroutines aren't addressable and migrate across OS threads — so this
// package builds the per-goroutine slot explicitly, keyed by the calling
// goroutine's runtime-assigned id.
//
// The id is recovered by parsing the "goroutine NNN [...]" header
// runtime.Stack emits for the calling goroutine; this is the same
// technique several Go diagnostics and tracing libraries use in the
// absence of an exported runtime.Goid. It costs one small stack capture
// per lookup, which core.EnqueueCommand pays on every call — a
// real per-goroutine cache (keyed by a producer token instead) would
// remove that cost, but would also require producer threads to thread
// that token through every call site instead of enqueuing directly.
package tlsmap

import (
	"bytes"
	"runtime"
	"strconv"
	"sync"
)

// CurrentID returns the calling goroutine's runtime id. Exposed so callers
// that need a stable "which thread is this" check (e.g. RenderThread's
// WrongThread guard) without a full Map[V] can use the same mechanism.
func CurrentID() uint64 { return goroutineID() }

func goroutineID() uint64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	b := buf[:n]
	b = bytes.TrimPrefix(b, []byte("goroutine "))
	if i := bytes.IndexByte(b, ' '); i >= 0 {
		b = b[:i]
	}
	id, _ := strconv.ParseUint(string(b), 10, 64)
	return id
}

// Map is a per-goroutine slot map holding one value of type V per calling
// goroutine.
//
// Thread-safe for concurrent use.
type Map[V any] struct {
	mu    sync.Mutex
	slots map[uint64]V
}

// New creates an empty per-thread map.
func New[V any]() *Map[V] {
	return &Map[V]{slots: make(map[uint64]V)}
}

// Get returns the calling goroutine's slot value, if one was ever created.
func (m *Map[V]) Get() (V, bool) {
	id := goroutineID()
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.slots[id]
	return v, ok
}

// GetOrCreate returns the calling goroutine's slot value, creating it with
// create if this is the first call from this goroutine. created reports
// whether create ran.
func (m *Map[V]) GetOrCreate(create func() V) (value V, created bool) {
	id := goroutineID()
	m.mu.Lock()
	defer m.mu.Unlock()
	if v, ok := m.slots[id]; ok {
		return v, false
	}
	v := create()
	m.slots[id] = v
	return v, true
}

// Delete removes the calling goroutine's slot, if any.
func (m *Map[V]) Delete() {
	id := goroutineID()
	m.mu.Lock()
	delete(m.slots, id)
	m.mu.Unlock()
}

// Len reports how many goroutine slots are currently populated.
func (m *Map[V]) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.slots)
}
