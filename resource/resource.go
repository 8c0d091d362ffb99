// Package resource implements the async-resource framework shared by
// buffer, texture, framebuffer, shader program, and primitive stream:
// deferred creation through a command queue, an atomic finished flag, and
// deferred destruction.
package resource

import (
	"sync/atomic"

	"github.com/gogpu/corert/core"
	"github.com/gogpu/corert/gpu"
	"github.com/gogpu/corert/internal/ref"
)

// Base is embedded by every async GPU resource. It carries the
// finished/failed flags every resource exposes and the create/destroy
// plumbing shared across resource types; the underlying GPU handle and
// descriptor live on the concrete type, since their shape differs per
// resource.
//
// Ownership of the concrete resource itself is an intrusive refcounted
// [ref.Ref] (spec §4.6, ReferencedObject): the creator's handle starts the
// count at one, Retain lets another holder — e.g. a PrimitiveStream that
// binds a Buffer it did not create — share ownership without risking a
// double destroy, and the bound destroy action fires exactly once, when
// the count drops to zero.
type Base struct {
	label string
	queue *core.CommandQueue
	rt    *core.RenderThread
	ctx   gpu.Context

	finished atomic.Bool
	failed   atomic.Bool

	handle     ref.Ref
	destroyErr error
}

func newBase(label string, queue *core.CommandQueue, rt *core.RenderThread, ctx gpu.Context) Base {
	return Base{label: label, queue: queue, rt: rt, ctx: ctx}
}

// bindHandle wraps self — the concrete resource (e.g. *Buffer) — in an
// intrusive refcounted handle with an initial count of one, and records
// the action that destroys the GPU-side object. Called once by each
// concrete constructor right after the resource is allocated.
func (b *Base) bindHandle(self any, destroy func()) {
	b.handle = ref.New(self, destroy)
}

// retain returns a new owning reference to this resource's concrete value
// for a second holder (e.g. a PrimitiveStream keeping a backing Buffer
// alive). The returned Ref must be released exactly once, by calling its
// Release when the second holder closes.
func (b *Base) retain() ref.Ref {
	return b.handle.Retain()
}

// Label returns the resource's debug label, if any.
func (b *Base) Label() string { return b.label }

// Finished reports whether GPU-side creation has completed. Release-
// acquire: once a caller observes true, every GPU-side effect of creation
// is visible to it.
func (b *Base) Finished() bool { return b.finished.Load() }

// Failed reports whether creation ended in the permanent-failed state: the
// create command's GPU error propagated through the render thread's
// exception slot instead of completing normally, and Finished will never
// become true.
func (b *Base) Failed() bool { return b.failed.Load() }

func (b *Base) markFinished() { b.finished.Store(true) }
func (b *Base) markFailed()   { b.failed.Store(true) }

// setSyncCommand places a fence right after the preceding create command
// drains and forwards it to the sync thread — the same sentinel shape
// RenderPolicy uses for system_sync, scoped here to one resource's
// synchronous creation path.
type setSyncCommand struct {
	sync       *core.Sync
	syncThread *core.SyncThread
}

func (c *setSyncCommand) Execute(ctx gpu.Context) error {
	fence, err := c.sync.Set(ctx)
	if err != nil {
		return err
	}
	return c.syncThread.Submit(c.sync, fence)
}

// enqueueCreate submits cmd — a create command for the concrete resource
// type — to the system queue, optionally bundled with a sync that signals
// once the GPU fence placed right after creation completes (the
// synchronous creation path used by Graphics.CreateFinishedX). Pass a nil
// sync for fire-and-forget creation (Graphics.CreateX).
func enqueueCreate[T core.Command](base *Base, cmd T, sync *core.Sync, syncThread *core.SyncThread) error {
	if err := core.EnqueueCommand(base.queue, cmd); err != nil {
		return err
	}
	if sync == nil {
		return nil
	}
	return core.EnqueueCommand(base.queue, &setSyncCommand{sync: sync, syncThread: syncThread})
}

// destroyDispatch runs destroyDirect on this goroutine if it is the render
// thread, or enqueues destroyCmd onto the system queue otherwise — the
// spec's "destructor... if called on the render thread, destroys the GPU
// handle directly, or enqueues a destroy-command" (§4.7). The destroy
// command is independent of the holding reference, so it is safe to
// enqueue even if base is never touched again. Each concrete resource's
// constructor wraps this in the closure it hands to bindHandle, so it
// only ever actually runs once — when the handle's refcount reaches zero.
func destroyDispatch[T core.Command](base *Base, destroyDirect func(gpu.Context), destroyCmd T) error {
	if base.rt != nil && base.rt.IsRenderThread() {
		destroyDirect(base.ctx)
		return nil
	}
	return core.EnqueueCommand(base.queue, destroyCmd)
}

// release drops this resource's own reference to its refcounted handle
// (see bindHandle). The bound destroy action runs exactly once, when the
// last outstanding reference — this one, plus any held via retain — is
// released; a resource retained by a second holder survives this call.
// Warns if the resource is being released before it was ever observed
// finished.
func (b *Base) release() error {
	if !b.finished.Load() {
		core.Logger().Warn("resource destroyed before finished", "label", b.label)
	}
	b.destroyErr = nil
	b.handle.Release()
	return b.destroyErr
}
