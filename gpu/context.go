// Package gpu defines the boundary between the command-submission core and
// the actual GPU API binding. Per the runtime's scope, that binding itself
// — Vulkan, DX12, Metal, GLES, whatever — is an external collaborator: this
// package only names the surface the render thread and sync thread drive,
// and resource commands execute against. A real backend implements
// [Context]; tests drive the package under gpu/mock.
package gpu

import "time"

// BufferHandle, TextureHandle, FramebufferHandle, ShaderHandle, and
// StreamHandle are opaque GPU-side object identifiers minted by a Context
// implementation. The zero value denotes "no handle".
type (
	BufferHandle      uint64
	TextureHandle     uint64
	FramebufferHandle uint64
	ShaderHandle      uint64
	StreamHandle      uint64
	FenceHandle       uint64
)

// Context is the single entry point the render thread uses to talk to the
// GPU API. Exactly one goroutine — the render thread — may call any method
// on a Context; it is not safe for concurrent use, since the GPU context is
// exclusively owned by the render thread. The sync thread talks to the GPU
// only through the narrower [FenceWaiter] surface, backed by a
// resource-sharing sub-context.
type Context interface {
	// PushDebugGroup/PopDebugGroup bracket a named queue's drain with a
	// GPU debug marker. Implementations that don't support markers may
	// no-op.
	PushDebugGroup(name string)
	PopDebugGroup()

	// Buffer lifecycle.
	CreateBuffer(desc BufferDescriptor) (BufferHandle, error)
	DestroyBuffer(h BufferHandle)
	MapBuffer(h BufferHandle, offset, size uint64) ([]byte, error)
	UnmapBuffer(h BufferHandle)
	FlushBufferWrites(h BufferHandle, offset, size uint64)
	FlushBufferReads(h BufferHandle, offset, size uint64)
	BindBuffer(h BufferHandle)

	// Texture lifecycle.
	CreateTexture(desc TextureDescriptor) (TextureHandle, error)
	DestroyTexture(h TextureHandle)
	UploadImage(h TextureHandle, level int, face CubeFace, data []byte) error

	// Framebuffer lifecycle.
	CreateFramebuffer(desc FramebufferDescriptor) (FramebufferHandle, error)
	DestroyFramebuffer(h FramebufferHandle)
	ResizeFramebuffer(h FramebufferHandle, width, height uint32) error
	SetViewport(width, height uint32)

	// Shader program lifecycle.
	CreateShaderProgram(desc ShaderProgramDescriptor) (ShaderHandle, *ShaderProgramInfo, error)
	DestroyShaderProgram(h ShaderHandle)

	// Primitive stream lifecycle.
	CreatePrimitiveStream(desc PrimitiveStreamDescriptor) (StreamHandle, error)
	DestroyPrimitiveStream(h StreamHandle)
	Draw(h StreamHandle)

	// Fences. InsertFence places a fence at the current command boundary;
	// DeleteFence releases GPU-side fence resources once observed
	// complete.
	InsertFence() (FenceHandle, error)
	DeleteFence(f FenceHandle)
}

// FenceWaiter is the narrower surface the sync thread uses: a
// resource-sharing sub-context that can block on a fence without touching
// the main context's binding state.
type FenceWaiter interface {
	// Wait blocks until f is signaled or timeout elapses. ok is false on
	// timeout.
	Wait(f FenceHandle, timeout time.Duration) (ok bool, err error)

	// DeleteFence releases the fence's GPU-side resources once observed
	// complete.
	DeleteFence(f FenceHandle)
}

// CubeFace enumerates the six faces of a cube texture, in the required
// upload order: +Z, -Z, +X, -X, +Y, -Y.
type CubeFace int

const (
	CubeFacePosZ CubeFace = iota
	CubeFaceNegZ
	CubeFacePosX
	CubeFaceNegX
	CubeFacePosY
	CubeFaceNegY
)

// CubeFaceUploadOrder is the fixed order faces must be uploaded in.
var CubeFaceUploadOrder = [6]CubeFace{
	CubeFacePosZ, CubeFaceNegZ, CubeFacePosX, CubeFaceNegX, CubeFacePosY, CubeFaceNegY,
}
