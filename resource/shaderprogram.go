package resource

import (
	"github.com/gogpu/corert/core"
	"github.com/gogpu/corert/gpu"
)

// ShaderProgram is a compiled, linked GPU shader program.
type ShaderProgram struct {
	Base
	desc   gpu.ShaderProgramDescriptor
	handle gpu.ShaderHandle
	info   *gpu.ShaderProgramInfo
}

// NewShaderProgram begins asynchronous creation. Before the create command
// ever reaches the render thread, attribute locations are resolved: a
// generic attribute keeps its descriptor-supplied index; a semantic
// attribute (position/texcoord/normal) is resolved through
// desc.VertexAttributeFieldMap. An unresolvable semantic tag fails
// synchronously with InvalidVertexAttributesError, rather than deferring
// the failure to link time.
func NewShaderProgram(queue *core.CommandQueue, rt *core.RenderThread, ctx gpu.Context, desc gpu.ShaderProgramDescriptor, sync *core.Sync, syncThread *core.SyncThread) (*ShaderProgram, error) {
	resolved, err := resolveAttributeLocations(desc)
	if err != nil {
		return nil, err
	}
	desc.Attributes = resolved

	sp := &ShaderProgram{Base: newBase(desc.Label, queue, rt, ctx), desc: desc}
	sp.bindHandle(sp, func() {
		sp.destroyErr = destroyDispatch(&sp.Base,
			func(ctx gpu.Context) { ctx.DestroyShaderProgram(sp.handle) },
			&destroyShaderProgramCommand{handle: sp.handle})
	})
	cmd := &createShaderProgramCommand{sp: sp}
	if err := enqueueCreate(&sp.Base, cmd, sync, syncThread); err != nil {
		return nil, err
	}
	return sp, nil
}

// resolveAttributeLocations returns a copy of desc.Attributes with every
// entry's GenericIndex holding its final binding location, regardless of
// the attribute's original tag — assigned before the creation command is
// ever enqueued, so link-time attribute binding is always resolved ahead
// of the GPU call.
func resolveAttributeLocations(desc gpu.ShaderProgramDescriptor) ([]gpu.AttributeDescriptor, error) {
	out := make([]gpu.AttributeDescriptor, len(desc.Attributes))
	copy(out, desc.Attributes)

	for i, a := range out {
		if a.SemanticTag == gpu.VertexSemanticGeneric {
			continue
		}
		loc, ok := desc.VertexAttributeFieldMap[a.SemanticTag]
		if !ok {
			return nil, &gpu.InvalidVertexAttributesError{Label: desc.Label, Tag: a.SemanticTag}
		}
		out[i].GenericIndex = loc
	}
	return out, nil
}

// Handle returns the GPU-side handle. Only meaningful once Finished
// reports true.
func (sp *ShaderProgram) Handle() gpu.ShaderHandle { return sp.handle }

// Info returns the linked program's uniform-block reflection, populated by
// CreateShaderProgram once Finished reports true; nil before then.
func (sp *ShaderProgram) Info() *gpu.ShaderProgramInfo { return sp.info }

type createShaderProgramCommand struct{ sp *ShaderProgram }

func (c *createShaderProgramCommand) Execute(ctx gpu.Context) error {
	h, info, err := ctx.CreateShaderProgram(c.sp.desc)
	if err != nil {
		c.sp.markFailed()
		return err
	}
	c.sp.handle = h
	c.sp.info = info
	c.sp.markFinished()
	return nil
}

type destroyShaderProgramCommand struct{ handle gpu.ShaderHandle }

func (c *destroyShaderProgramCommand) Execute(ctx gpu.Context) error {
	ctx.DestroyShaderProgram(c.handle)
	return nil
}

// Close releases this holder's reference to the shader program. The GPU
// handle is actually destroyed — directly, if called from the render
// thread, or via the system queue otherwise — only once every reference
// has been released.
func (sp *ShaderProgram) Close() error {
	return sp.release()
}
