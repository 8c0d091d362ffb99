package resource

import (
	"github.com/gogpu/corert/core"
	"github.com/gogpu/corert/gpu"
)

// Texture is an immutable-storage GPU image.
type Texture struct {
	Base
	desc   gpu.TextureDescriptor
	handle gpu.TextureHandle
}

// NewTexture begins asynchronous creation of a texture. Rejects an illegal
// TypeFlags combination synchronously, before ever touching the command
// queue — the descriptor is immutable, so there is no reason to defer a
// check that only depends on its own fields.
func NewTexture(queue *core.CommandQueue, rt *core.RenderThread, ctx gpu.Context, desc gpu.TextureDescriptor, sync *core.Sync, syncThread *core.SyncThread) (*Texture, error) {
	if !gpu.IsLegalTextureTypeFlags(desc.TypeFlags) {
		return nil, &gpu.InvalidTextureConfigError{Label: desc.Label, Flags: desc.TypeFlags}
	}
	tex := &Texture{Base: newBase(desc.Label, queue, rt, ctx), desc: desc}
	tex.bindHandle(tex, func() {
		tex.destroyErr = destroyDispatch(&tex.Base,
			func(ctx gpu.Context) { ctx.DestroyTexture(tex.handle) },
			&destroyTextureCommand{handle: tex.handle})
	})
	cmd := &createTextureCommand{tex: tex}
	if err := enqueueCreate(&tex.Base, cmd, sync, syncThread); err != nil {
		return nil, err
	}
	return tex, nil
}

// Handle returns the GPU-side handle. Only meaningful once Finished
// reports true.
func (t *Texture) Handle() gpu.TextureHandle { return t.handle }

type createTextureCommand struct{ tex *Texture }

func (c *createTextureCommand) Execute(ctx gpu.Context) error {
	desc := c.tex.desc
	h, err := ctx.CreateTexture(desc)
	if err != nil {
		c.tex.markFailed()
		return err
	}
	c.tex.handle = h

	if err := uploadImages(ctx, h, desc); err != nil {
		c.tex.markFailed()
		return err
	}
	c.tex.markFinished()
	return nil
}

// uploadImages walks desc.ImageData mip-major, and for cube textures
// face-minor within each mip in CubeFaceUploadOrder ("+Z, -Z, +X, -X, +Y,
// -Y").
func uploadImages(ctx gpu.Context, h gpu.TextureHandle, desc gpu.TextureDescriptor) error {
	if len(desc.ImageData) == 0 {
		return nil
	}
	isCube := desc.TypeFlags.Has(gpu.TextureFlagCube)
	facesPerLevel := 1
	if isCube {
		facesPerLevel = len(gpu.CubeFaceUploadOrder)
	}

	idx := 0
	for level := 0; level < int(desc.MipLevels) || (desc.MipLevels == 0 && level == 0); level++ {
		for f := 0; f < facesPerLevel; f++ {
			if idx >= len(desc.ImageData) {
				return nil
			}
			face := gpu.CubeFacePosZ
			if isCube {
				face = gpu.CubeFaceUploadOrder[f]
			}
			if err := ctx.UploadImage(h, level, face, desc.ImageData[idx]); err != nil {
				return err
			}
			idx++
		}
		if desc.MipLevels == 0 {
			break
		}
	}
	return nil
}

type destroyTextureCommand struct{ handle gpu.TextureHandle }

func (c *destroyTextureCommand) Execute(ctx gpu.Context) error {
	ctx.DestroyTexture(c.handle)
	return nil
}

// Close releases this holder's reference to the texture. The GPU handle
// is actually destroyed — directly, if called from the render thread, or
// via the system queue otherwise — only once every reference has been
// released.
func (t *Texture) Close() error {
	return t.release()
}
