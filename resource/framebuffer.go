package resource

import (
	"fmt"
	"sync"

	"github.com/gogpu/corert/core"
	"github.com/gogpu/corert/gpu"
)

// SizeChanged is the argument type for a display framebuffer's subscription
// to the host window's size-changed event.
type SizeChanged struct {
	Width  uint32
	Height uint32
}

// Framebuffer is either a display framebuffer tracking the host window's
// size, or an offscreen one with explicit dimensions.
type Framebuffer struct {
	Base
	desc   gpu.FramebufferDescriptor
	handle gpu.FramebufferHandle

	// Display-only resize coalescing: bursts of size-changed events
	// arriving between frames collapse to one resize command carrying only
	// the last size observed before the next swap, avoiding flooding the
	// system queue during an interactive window drag.
	resizeMu      sync.Mutex
	pendingResize *SizeChanged
}

// NewFramebuffer begins asynchronous creation. For an offscreen
// framebuffer, rejects an illegal MSAA sample count synchronously.
func NewFramebuffer(queue *core.CommandQueue, rt *core.RenderThread, ctx gpu.Context, desc gpu.FramebufferDescriptor, sync *core.Sync, syncThread *core.SyncThread) (*Framebuffer, error) {
	if desc.Kind == gpu.FramebufferOffscreen && !gpu.IsLegalMSAA(desc.MSAA) {
		return nil, &gpu.Error{Op: "CreateFramebuffer", Label: desc.Label,
			Cause: fmt.Errorf("illegal MSAA sample count %d", desc.MSAA)}
	}
	fb := &Framebuffer{Base: newBase(desc.Label, queue, rt, ctx), desc: desc}
	fb.bindHandle(fb, func() {
		fb.destroyErr = destroyDispatch(&fb.Base,
			func(ctx gpu.Context) { ctx.DestroyFramebuffer(fb.handle) },
			&destroyFramebufferCommand{handle: fb.handle})
	})
	cmd := &createFramebufferCommand{fb: fb}
	if err := enqueueCreate(&fb.Base, cmd, sync, syncThread); err != nil {
		return nil, err
	}
	return fb, nil
}

// Handle returns the GPU-side handle. Only meaningful once Finished
// reports true.
func (fb *Framebuffer) Handle() gpu.FramebufferHandle { return fb.handle }

// IsDisplay reports whether this is a display framebuffer (tracks the
// window) rather than an offscreen one (explicit dimensions).
func (fb *Framebuffer) IsDisplay() bool { return fb.desc.Kind == gpu.FramebufferDisplay }

type createFramebufferCommand struct{ fb *Framebuffer }

func (c *createFramebufferCommand) Execute(ctx gpu.Context) error {
	h, err := ctx.CreateFramebuffer(c.fb.desc)
	if err != nil {
		c.fb.markFailed()
		return err
	}
	c.fb.handle = h
	c.fb.markFinished()
	return nil
}

// OnSizeChanged is the display framebuffer's resize listener (bind via an
// Event[SizeChanged] owned by the host window). It records the new size
// without touching the command queue; the coalesced resize is actually
// enqueued by CoalesceResize, called once per swap.
func (fb *Framebuffer) OnSizeChanged(sz SizeChanged) {
	fb.resizeMu.Lock()
	fb.pendingResize = &sz
	fb.resizeMu.Unlock()
}

// CoalesceResize enqueues a resize command for the most recent size change
// observed since the last call, if any, clearing the pending size. Intended
// to be called once per frame by the orchestrator, before
// Graphics.FlushCommands.
func (fb *Framebuffer) CoalesceResize() error {
	fb.resizeMu.Lock()
	sz := fb.pendingResize
	fb.pendingResize = nil
	fb.resizeMu.Unlock()
	if sz == nil {
		return nil
	}
	return core.EnqueueCommand(fb.queue, &resizeFramebufferCommand{fb: fb, width: sz.Width, height: sz.Height})
}

type resizeFramebufferCommand struct {
	fb            *Framebuffer
	width, height uint32
}

func (c *resizeFramebufferCommand) Execute(ctx gpu.Context) error {
	if err := ctx.ResizeFramebuffer(c.fb.handle, c.width, c.height); err != nil {
		return err
	}
	c.fb.desc.Width = c.width
	c.fb.desc.Height = c.height
	ctx.SetViewport(c.width, c.height)
	return nil
}

type destroyFramebufferCommand struct{ handle gpu.FramebufferHandle }

func (c *destroyFramebufferCommand) Execute(ctx gpu.Context) error {
	ctx.DestroyFramebuffer(c.handle)
	return nil
}

// Close releases this holder's reference to the framebuffer. The GPU
// handle is actually destroyed — directly, if called from the render
// thread, or via the system queue otherwise — only once every reference
// has been released.
func (fb *Framebuffer) Close() error {
	return fb.release()
}
