package resource

import (
	"github.com/gogpu/corert/core"
	"github.com/gogpu/corert/gpu"
	"github.com/gogpu/corert/internal/ref"
)

// PrimitiveStream is a drawable mesh binding.
type PrimitiveStream struct {
	Base
	desc   gpu.PrimitiveStreamDescriptor
	handle gpu.StreamHandle

	// retained holds a Ref per distinct backing Buffer the stream was
	// asked to keep alive (see NewPrimitiveStream's backing parameter),
	// released when the stream itself closes.
	retained []ref.Ref
}

// NewPrimitiveStream begins asynchronous creation. Attributes whose
// BufferHash matches an earlier attribute in desc.Attributes are
// deduplicated to share that earlier attribute's buffer binding before the
// descriptor reaches the command, letting a caller build
// PrimitiveStreamDescriptor.Attributes independently per logical attribute
// without worrying about binding the same buffer twice.
//
// backing, if given, names the Buffer resources the descriptor's
// attributes and index buffer bind to; the stream retains each distinct
// one (spec §4.6, ReferencedObject: shared ownership, not a copy) so a
// buffer stays alive for as long as any stream still draws from it, even
// if the caller that created the buffer has itself since called Close.
func NewPrimitiveStream(queue *core.CommandQueue, rt *core.RenderThread, ctx gpu.Context, desc gpu.PrimitiveStreamDescriptor, sync *core.Sync, syncThread *core.SyncThread, backing ...*Buffer) (*PrimitiveStream, error) {
	desc.Attributes = dedupAttributesByBufferHash(desc.Attributes)
	ps := &PrimitiveStream{Base: newBase(desc.Label, queue, rt, ctx), desc: desc}
	ps.bindHandle(ps, func() {
		ps.destroyErr = destroyDispatch(&ps.Base,
			func(ctx gpu.Context) { ctx.DestroyPrimitiveStream(ps.handle) },
			&destroyPrimitiveStreamCommand{handle: ps.handle})
	})
	ps.retainBacking(backing)
	cmd := &createPrimitiveStreamCommand{ps: ps}
	if err := enqueueCreate(&ps.Base, cmd, sync, syncThread); err != nil {
		ps.releaseBacking()
		return nil, err
	}
	return ps, nil
}

// retainBacking takes one Ref per distinct buffer in backing, skipping
// nils and buffers already retained (the same *Buffer may legitimately
// back more than one attribute).
func (ps *PrimitiveStream) retainBacking(backing []*Buffer) {
	seen := make(map[*Buffer]bool, len(backing))
	for _, buf := range backing {
		if buf == nil || seen[buf] {
			continue
		}
		seen[buf] = true
		ps.retained = append(ps.retained, buf.Retain())
	}
}

func (ps *PrimitiveStream) releaseBacking() {
	for _, r := range ps.retained {
		r.Release()
	}
	ps.retained = nil
}

// RetainedBuffers returns the backing buffers this stream is keeping
// alive, narrowed back from the generic Refs retainBacking stored — the
// polymorphic downcast spec §4.6 describes, applied here since retained
// only stores *Buffer today but is typed to hold any resource.
func (ps *PrimitiveStream) RetainedBuffers() []*Buffer {
	out := make([]*Buffer, 0, len(ps.retained))
	for _, r := range ps.retained {
		if buf, ok := ref.As[*Buffer](r); ok {
			out = append(out, buf)
		}
	}
	return out
}

// dedupAttributesByBufferHash returns attrs with every attribute after the
// first sharing a BufferHash rewritten to reuse that first attribute's
// Buffer handle.
func dedupAttributesByBufferHash(attrs []gpu.AttributeDescriptor) []gpu.AttributeDescriptor {
	out := make([]gpu.AttributeDescriptor, len(attrs))
	copy(out, attrs)

	seen := make(map[uint64]gpu.BufferHandle, len(attrs))
	for i, a := range out {
		if h, ok := seen[a.BufferHash]; ok {
			out[i].Buffer = h
			continue
		}
		seen[a.BufferHash] = a.Buffer
	}
	return out
}

// Handle returns the GPU-side handle. Only meaningful once Finished
// reports true.
func (ps *PrimitiveStream) Handle() gpu.StreamHandle { return ps.handle }

type createPrimitiveStreamCommand struct{ ps *PrimitiveStream }

func (c *createPrimitiveStreamCommand) Execute(ctx gpu.Context) error {
	h, err := ctx.CreatePrimitiveStream(c.ps.desc)
	if err != nil {
		c.ps.markFailed()
		return err
	}
	c.ps.handle = h
	c.ps.markFinished()
	return nil
}

// Draw issues a draw call for this stream. Render thread only.
func (ps *PrimitiveStream) Draw(ctx gpu.Context) {
	ctx.Draw(ps.handle)
}

type destroyPrimitiveStreamCommand struct{ handle gpu.StreamHandle }

func (c *destroyPrimitiveStreamCommand) Execute(ctx gpu.Context) error {
	ctx.DestroyPrimitiveStream(c.handle)
	return nil
}

// Close releases this holder's reference to the primitive stream — the
// GPU handle is actually destroyed (directly, if called from the render
// thread, or via the system queue otherwise) only once every reference
// has been released — and releases this stream's own hold on each backing
// buffer retained at construction.
func (ps *PrimitiveStream) Close() error {
	err := ps.release()
	ps.releaseBacking()
	return err
}
