// Package ref implements an intrusive, atomically refcounted handle:
// exclusive ownership is observable as count == 1, and a polymorphic
// downcast is a checked narrow that returns an optional handle rather than
// panicking.
//
// Adapted from a type-safe-ID-style generic (distinguishing resource kinds
// at compile time) into an owning handle instead of a registry lookup key,
// since async resources here are held by reference rather than looked up
// by ID.
package ref

import "sync/atomic"

// object is the shared control block backing every clone of a Ref. destroy
// runs exactly once, when the last clone releases.
type object struct {
	count   atomic.Int64
	value   any
	destroy func()
}

// Ref is an intrusive, atomically refcounted handle to a value of any
// concrete type. Copies of a Ref share the same underlying object and
// refcount; call Retain to produce a new owning copy and Release to drop
// one.
type Ref struct {
	obj *object
}

// New wraps value in a fresh Ref with an initial count of 1. destroy, if
// non-nil, runs when the count reaches zero.
func New(value any, destroy func()) Ref {
	obj := &object{value: value, destroy: destroy}
	obj.count.Store(1)
	return Ref{obj: obj}
}

// Valid reports whether r refers to a live object.
func (r Ref) Valid() bool { return r.obj != nil }

// Retain increments the refcount and returns a new owning handle to the
// same object.
func (r Ref) Retain() Ref {
	if r.obj == nil {
		return r
	}
	r.obj.count.Add(1)
	return r
}

// Release decrements the refcount, running destroy once it reaches zero.
// Calling Release more times than the object was retained is a programmer
// error the atomic counter will surface as a negative count; callers
// should treat that as fatal, same as a C++ double-free would be.
func (r Ref) Release() {
	if r.obj == nil {
		return
	}
	if r.obj.count.Add(-1) == 0 && r.obj.destroy != nil {
		r.obj.destroy()
	}
}

// Exclusive reports whether this handle is the sole owner (count == 1).
func (r Ref) Exclusive() bool {
	return r.obj != nil && r.obj.count.Load() == 1
}

// Count returns the current refcount, for diagnostics.
func (r Ref) Count() int64 {
	if r.obj == nil {
		return 0
	}
	return r.obj.count.Load()
}

// As performs a checked downcast of r's underlying value to U, the way a
// dynamic_cast would: returns the zero value and false rather than
// panicking if the concrete type doesn't match.
func As[U any](r Ref) (U, bool) {
	var zero U
	if r.obj == nil {
		return zero, false
	}
	u, ok := r.obj.value.(U)
	return u, ok
}
