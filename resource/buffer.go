package resource

import (
	"github.com/gogpu/corert/core"
	"github.com/gogpu/corert/gpu"
	"github.com/gogpu/corert/internal/ref"
)

// Buffer is a GPU memory region.
type Buffer struct {
	Base
	desc   gpu.BufferDescriptor
	handle gpu.BufferHandle
}

// NewBuffer begins asynchronous creation of a buffer. If sync is non-nil,
// the create command is bundled with a fence the caller can wait on via
// syncThread; pass nil for fire-and-forget creation.
func NewBuffer(queue *core.CommandQueue, rt *core.RenderThread, ctx gpu.Context, desc gpu.BufferDescriptor, sync *core.Sync, syncThread *core.SyncThread) (*Buffer, error) {
	b := &Buffer{Base: newBase(desc.Label, queue, rt, ctx), desc: desc}
	b.bindHandle(b, func() {
		b.destroyErr = destroyDispatch(&b.Base,
			func(ctx gpu.Context) { ctx.DestroyBuffer(b.handle) },
			&destroyBufferCommand{handle: b.handle})
	})
	cmd := &createBufferCommand{buf: b}
	if err := enqueueCreate(&b.Base, cmd, sync, syncThread); err != nil {
		return nil, err
	}
	return b, nil
}

// Retain takes a second owning reference to b's underlying GPU handle,
// keeping it alive even if this creator later calls Close — used by
// callers (e.g. a PrimitiveStream binding b as a vertex attribute) that
// need b to outlive their own reference to it. The returned Ref must be
// released exactly once.
func (b *Buffer) Retain() ref.Ref { return b.retain() }

// Handle returns the GPU-side handle. Only meaningful once Finished
// reports true.
func (b *Buffer) Handle() gpu.BufferHandle { return b.handle }

type createBufferCommand struct{ buf *Buffer }

func (c *createBufferCommand) Execute(ctx gpu.Context) error {
	h, err := ctx.CreateBuffer(c.buf.desc)
	if err != nil {
		c.buf.markFailed()
		return err
	}
	c.buf.handle = h
	if c.buf.desc.Mapping != gpu.BufferMappingStatic {
		// A non-static buffer is mapped once at creation. The returned
		// slice is not kept; Map maps the requested range again.
		if _, err := ctx.MapBuffer(h, 0, c.buf.desc.Size); err != nil {
			c.buf.markFailed()
			return err
		}
	}
	c.buf.markFinished()
	return nil
}

// Map returns a byte slice over [offset, offset+size) of the buffer's
// mapped memory. If the buffer's caching is non-coherent and its mapping
// allows reads, pending GPU writes are flushed first so the returned view
// is current.
func (b *Buffer) Map(ctx gpu.Context, offset, size uint64) ([]byte, error) {
	if b.desc.Caching == gpu.BufferCachingNonCoherent && mappingAllowsRead(b.desc.Mapping) {
		ctx.FlushBufferReads(b.handle, offset, size)
	}
	return ctx.MapBuffer(b.handle, offset, size)
}

// Unmap flushes CPU writes for [offset, offset+size) back to the GPU if
// the buffer's caching is non-coherent and its mapping allows writes.
func (b *Buffer) Unmap(ctx gpu.Context, offset, size uint64) {
	if b.desc.Caching == gpu.BufferCachingNonCoherent && mappingAllowsWrite(b.desc.Mapping) {
		ctx.FlushBufferWrites(b.handle, offset, size)
	}
	ctx.UnmapBuffer(b.handle)
}

func mappingAllowsRead(m gpu.BufferMapping) bool {
	return m == gpu.BufferMappingRead || m == gpu.BufferMappingReadWrite
}

func mappingAllowsWrite(m gpu.BufferMapping) bool {
	return m == gpu.BufferMappingWrite || m == gpu.BufferMappingReadWrite
}

type destroyBufferCommand struct{ handle gpu.BufferHandle }

func (c *destroyBufferCommand) Execute(ctx gpu.Context) error {
	ctx.DestroyBuffer(c.handle)
	return nil
}

// Close releases this holder's reference to the buffer. The GPU handle is
// actually destroyed — directly, if called from the render thread, or via
// the system queue otherwise — only once every reference, including any
// taken with Retain, has been released.
func (b *Buffer) Close() error {
	return b.release()
}
