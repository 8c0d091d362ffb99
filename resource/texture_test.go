package resource

import (
	"errors"
	"testing"

	"github.com/gogpu/corert/gpu"
)

func TestTextureRejectsIllegalTypeFlags(t *testing.T) {
	r := newRig(t)
	sysQ, _ := r.policy.GetSystemCommandQueue()

	_, err := NewTexture(sysQ, r.rt, r.ctx, gpu.TextureDescriptor{
		Label:     "bad",
		TypeFlags: gpu.TextureTypeFlags(gpu.TextureFlag3D | gpu.TextureFlagCube),
	}, nil, nil)

	var cfgErr *gpu.InvalidTextureConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("got %v, want InvalidTextureConfigError", err)
	}
}

func TestTextureUploadsCubeFacesInOrder(t *testing.T) {
	r := newRig(t)
	sysQ, _ := r.policy.GetSystemCommandQueue()

	data := make([][]byte, 6)
	for i := range data {
		data[i] = []byte{byte(i)}
	}
	tex, err := NewTexture(sysQ, r.rt, r.ctx, gpu.TextureDescriptor{
		Label:     "cube",
		Width:     4,
		Height:    4,
		MipLevels: 1,
		TypeFlags: gpu.TextureTypeFlags(gpu.TextureFlagNormal | gpu.TextureFlagCube),
		ImageData: data,
	}, nil, nil)
	if err != nil {
		t.Fatalf("NewTexture: %v", err)
	}
	r.runFrame()
	if !tex.Finished() {
		t.Fatal("texture did not finish")
	}

	wantOrder := []gpu.CubeFace{
		gpu.CubeFacePosZ, gpu.CubeFaceNegZ, gpu.CubeFacePosX,
		gpu.CubeFaceNegX, gpu.CubeFacePosY, gpu.CubeFaceNegY,
	}
	var got []gpu.CubeFace
	for _, c := range r.ctx.Calls() {
		if c.Op == "UploadImage" {
			got = append(got, c.Args[2].(gpu.CubeFace))
		}
	}
	if len(got) != len(wantOrder) {
		t.Fatalf("got %d uploads, want %d", len(got), len(wantOrder))
	}
	for i := range wantOrder {
		if got[i] != wantOrder[i] {
			t.Fatalf("upload order: got %v, want %v", got, wantOrder)
		}
	}
}
