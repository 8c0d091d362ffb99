package resource

import (
	"testing"

	"github.com/gogpu/corert/gpu"
)

func TestPrimitiveStreamDedupsAttributesByBufferHash(t *testing.T) {
	r := newRig(t)
	sysQ, _ := r.policy.GetSystemCommandQueue()

	desc := gpu.PrimitiveStreamDescriptor{
		Label: "mesh",
		Attributes: []gpu.AttributeDescriptor{
			{Name: "pos", BufferHash: 0xAAAA, Buffer: gpu.BufferHandle(1), Stride: 12},
			{Name: "normal", BufferHash: 0xAAAA, Buffer: gpu.BufferHandle(99), Stride: 12, Offset: 12},
			{Name: "uv", BufferHash: 0xBBBB, Buffer: gpu.BufferHandle(2), Stride: 8},
		},
		IndexBuffer:   gpu.BufferHandle(3),
		SizeofIndex:   2,
		PrimitiveType: gpu.PrimitiveTriangles,
		PrimCount:     36,
	}

	ps, err := NewPrimitiveStream(sysQ, r.rt, r.ctx, desc, nil, nil)
	if err != nil {
		t.Fatalf("NewPrimitiveStream: %v", err)
	}
	if ps.desc.Attributes[1].Buffer != gpu.BufferHandle(1) {
		t.Fatalf("dedup did not rewrite the second attribute's buffer: got %v, want 1", ps.desc.Attributes[1].Buffer)
	}
	if ps.desc.Attributes[2].Buffer != gpu.BufferHandle(2) {
		t.Fatalf("distinct-hash attribute must keep its own buffer: got %v, want 2", ps.desc.Attributes[2].Buffer)
	}

	r.runFrame()
	if !ps.Finished() {
		t.Fatal("primitive stream did not finish")
	}

	ps.Draw(r.ctx)
	if r.ctx.CountOp("draw") != 1 {
		t.Fatalf("expected one draw call, got %d", r.ctx.CountOp("draw"))
	}
}

// TestPrimitiveStreamRetainsBackingBuffer verifies the ReferencedObject
// contract (spec §4.6): a buffer retained by a primitive stream survives
// the creator's own Close, and its GPU handle is destroyed only once both
// holders — the creator and the stream — have released their reference.
func TestPrimitiveStreamRetainsBackingBuffer(t *testing.T) {
	r := newRig(t)
	sysQ, _ := r.policy.GetSystemCommandQueue()

	buf, err := NewBuffer(sysQ, r.rt, r.ctx, gpu.BufferDescriptor{Label: "verts", Size: 64}, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	r.runFrame()

	desc := gpu.PrimitiveStreamDescriptor{
		Label: "mesh",
		Attributes: []gpu.AttributeDescriptor{
			{Name: "pos", BufferHash: 0xAAAA, Buffer: buf.Handle(), Stride: 12},
		},
		IndexBuffer:   buf.Handle(),
		SizeofIndex:   2,
		PrimitiveType: gpu.PrimitiveTriangles,
	}
	ps, err := NewPrimitiveStream(sysQ, r.rt, r.ctx, desc, nil, nil, buf)
	if err != nil {
		t.Fatalf("NewPrimitiveStream: %v", err)
	}
	r.runFrame()

	if got := ps.RetainedBuffers(); len(got) != 1 || got[0] != buf {
		t.Fatalf("RetainedBuffers() = %+v, want [buf]", got)
	}

	// The creator drops its own reference first; since the stream still
	// retains buf, the GPU handle must not be destroyed yet.
	if err := buf.Close(); err != nil {
		t.Fatalf("buf.Close: %v", err)
	}
	r.runFrame()
	if n := r.ctx.CountOp("DeleteBuffer"); n != 0 {
		t.Fatalf("buffer destroyed while the stream still retains it: %d DeleteBuffer calls", n)
	}

	// Once the stream also closes, the last reference drops and the
	// buffer's GPU handle is destroyed exactly once.
	if err := ps.Close(); err != nil {
		t.Fatalf("ps.Close: %v", err)
	}
	r.runFrame()
	if n := r.ctx.CountOp("DeleteBuffer"); n != 1 {
		t.Fatalf("expected exactly one DeleteBuffer after the last reference released, got %d", n)
	}
}
