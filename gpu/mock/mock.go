// Package mock implements gpu.Context and gpu.FenceWaiter as an in-memory
// stub, so tests can exercise the command-submission core without a real
// GPU driver. Every call is recorded in order so tests can assert on call
// ordering across producer threads and across the render/sync thread
// boundary.
package mock

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gogpu/corert/gpu"
)

// Call is one recorded invocation against the mock context.
type Call struct {
	Op   string
	Args []any
}

// Context is a recording stub implementation of gpu.Context and
// gpu.FenceWaiter.
type Context struct {
	mu    sync.Mutex
	calls []Call

	nextHandle uint64

	// fences maps a fence handle to whether it has been signaled, and to
	// a channel that closes when it is. NeverSignal fences are left
	// pending forever, to drive the fence-timeout scenario.
	fences map[gpu.FenceHandle]*fenceState

	// NeverSignalFences, when true, makes every InsertFence produce a
	// fence that Wait will never observe complete — used for
	// FenceTimeout testing.
	NeverSignalFences atomic.Bool

	debugGroupDepth int
}

type fenceState struct {
	done chan struct{}
}

// New creates an empty mock context.
func New() *Context {
	return &Context{
		fences: make(map[gpu.FenceHandle]*fenceState),
	}
}

func (c *Context) record(op string, args ...any) {
	c.mu.Lock()
	c.calls = append(c.calls, Call{Op: op, Args: args})
	c.mu.Unlock()
}

// Calls returns a snapshot of every recorded call, in the order the render
// thread issued them.
func (c *Context) Calls() []Call {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Call, len(c.calls))
	copy(out, c.calls)
	return out
}

// CountOp returns how many times op was recorded.
func (c *Context) CountOp(op string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, call := range c.calls {
		if call.Op == op {
			n++
		}
	}
	return n
}

func (c *Context) alloc() uint64 {
	return atomic.AddUint64(&c.nextHandle, 1)
}

func (c *Context) PushDebugGroup(name string) {
	c.debugGroupDepth++
	c.record("PushDebugGroup", name)
}

func (c *Context) PopDebugGroup() {
	c.debugGroupDepth--
	c.record("PopDebugGroup")
}

func (c *Context) CreateBuffer(desc gpu.BufferDescriptor) (gpu.BufferHandle, error) {
	h := gpu.BufferHandle(c.alloc())
	c.record("CreateBuffer", h, desc.Label, desc.Size)
	return h, nil
}

func (c *Context) DestroyBuffer(h gpu.BufferHandle) {
	c.record("DeleteBuffer", h)
}

func (c *Context) MapBuffer(h gpu.BufferHandle, offset, size uint64) ([]byte, error) {
	c.record("MapBuffer", h, offset, size)
	return make([]byte, size), nil
}

func (c *Context) UnmapBuffer(h gpu.BufferHandle) {
	c.record("UnmapBuffer", h)
}

func (c *Context) FlushBufferWrites(h gpu.BufferHandle, offset, size uint64) {
	c.record("FlushBufferWrites", h, offset, size)
}

func (c *Context) FlushBufferReads(h gpu.BufferHandle, offset, size uint64) {
	c.record("FlushBufferReads", h, offset, size)
}

func (c *Context) BindBuffer(h gpu.BufferHandle) {
	c.record("BindBuffer", h)
}

func (c *Context) CreateTexture(desc gpu.TextureDescriptor) (gpu.TextureHandle, error) {
	if !gpu.IsLegalTextureTypeFlags(desc.TypeFlags) {
		return 0, &gpu.InvalidTextureConfigError{Label: desc.Label, Flags: desc.TypeFlags}
	}
	h := gpu.TextureHandle(c.alloc())
	c.record("CreateTexture", h, desc.Label)
	return h, nil
}

func (c *Context) DestroyTexture(h gpu.TextureHandle) {
	c.record("DestroyTexture", h)
}

func (c *Context) UploadImage(h gpu.TextureHandle, level int, face gpu.CubeFace, data []byte) error {
	c.record("UploadImage", h, level, face, len(data))
	return nil
}

func (c *Context) CreateFramebuffer(desc gpu.FramebufferDescriptor) (gpu.FramebufferHandle, error) {
	if desc.Kind == gpu.FramebufferOffscreen && !gpu.IsLegalMSAA(desc.MSAA) {
		return 0, fmt.Errorf("gpu: framebuffer %q: illegal MSAA sample count %d", desc.Label, desc.MSAA)
	}
	h := gpu.FramebufferHandle(c.alloc())
	c.record("CreateFramebuffer", h, desc.Label, desc.Width, desc.Height)
	return h, nil
}

func (c *Context) DestroyFramebuffer(h gpu.FramebufferHandle) {
	c.record("DestroyFramebuffer", h)
}

func (c *Context) ResizeFramebuffer(h gpu.FramebufferHandle, width, height uint32) error {
	c.record("ResizeFramebuffer", h, width, height)
	return nil
}

func (c *Context) SetViewport(width, height uint32) {
	c.record("SetViewport", width, height)
}

func (c *Context) CreateShaderProgram(desc gpu.ShaderProgramDescriptor) (gpu.ShaderHandle, *gpu.ShaderProgramInfo, error) {
	h := gpu.ShaderHandle(c.alloc())
	c.record("CreateShaderProgram", h, desc.Label)
	info := &gpu.ShaderProgramInfo{}
	for _, stage := range desc.Stages {
		for i, block := range stage.UniformBlocks {
			info.UniformBlocks = append(info.UniformBlocks, gpu.UniformBlockInfo{
				Name:    block,
				Binding: i,
				Size:    64,
			})
		}
	}
	return h, info, nil
}

func (c *Context) DestroyShaderProgram(h gpu.ShaderHandle) {
	c.record("DestroyShaderProgram", h)
}

func (c *Context) CreatePrimitiveStream(desc gpu.PrimitiveStreamDescriptor) (gpu.StreamHandle, error) {
	h := gpu.StreamHandle(c.alloc())
	c.record("CreatePrimitiveStream", h, desc.Label)
	return h, nil
}

func (c *Context) DestroyPrimitiveStream(h gpu.StreamHandle) {
	c.record("DestroyPrimitiveStream", h)
}

func (c *Context) Draw(h gpu.StreamHandle) {
	c.record("draw", h)
}

func (c *Context) InsertFence() (gpu.FenceHandle, error) {
	h := gpu.FenceHandle(c.alloc())
	fs := &fenceState{done: make(chan struct{})}
	c.mu.Lock()
	c.fences[h] = fs
	c.mu.Unlock()
	c.record("InsertFence", h)

	if !c.NeverSignalFences.Load() {
		close(fs.done)
	}
	return h, nil
}

func (c *Context) DeleteFence(f gpu.FenceHandle) {
	c.record("DeleteFence", f)
	c.mu.Lock()
	delete(c.fences, f)
	c.mu.Unlock()
}

// Wait implements gpu.FenceWaiter.
func (c *Context) Wait(f gpu.FenceHandle, timeout time.Duration) (bool, error) {
	c.mu.Lock()
	fs, ok := c.fences[f]
	c.mu.Unlock()
	if !ok {
		return false, fmt.Errorf("mock: wait on unknown fence %d", f)
	}

	select {
	case <-fs.done:
		return true, nil
	case <-time.After(timeout):
		return false, nil
	}
}
