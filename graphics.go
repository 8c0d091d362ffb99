package corert

import (
	"sync"

	"github.com/gogpu/corert/core"
	"github.com/gogpu/corert/gpu"
	"github.com/gogpu/corert/resource"
)

// Graphics is the public façade: it owns the name table, the
// render policy, and the two service threads, and is the sole entry point
// host application code uses to declare queues, submit frames, and create
// GPU resources.
type Graphics struct {
	initMu      sync.Mutex
	initialized bool

	names        *core.NameTable
	policy       *core.RenderPolicy
	syncThread   *core.SyncThread
	renderThread *core.RenderThread
	ctx          gpu.Context

	queuesMu sync.Mutex
	queues   map[string]*core.CommandQueue

	flushMu   sync.Mutex
	lastCycle int

	// SceneCreated and Destroyed are the facade's lifecycle events; host
	// code binds listeners with Ownership to control their cleanup.
	SceneCreated core.Event[struct{}]
	Destroyed    core.Event[struct{}]
}

// New creates an uninitialized Graphics façade.
func New() *Graphics {
	return &Graphics{queues: make(map[string]*core.CommandQueue)}
}

// Initialize creates the policy's system queues and spawns the render thread
// and the sync thread; it returns without waiting for either goroutine to
// start running. Idempotent: a
// second call while already initialized returns ErrAlreadyInitialized.
func (g *Graphics) Initialize(params Params) error {
	g.initMu.Lock()
	defer g.initMu.Unlock()
	if g.initialized {
		return ErrAlreadyInitialized
	}
	if params.Context == nil {
		return ErrContextRequired
	}
	waiter := params.FenceWaiter
	if waiter == nil {
		w, ok := params.Context.(gpu.FenceWaiter)
		if !ok {
			return ErrFenceWaiterRequired
		}
		waiter = w
	}

	g.ctx = params.Context
	g.names = core.NewNameTable()
	g.syncThread = core.NewSyncThread(waiter, params.FenceTimeout, params.DebuggerAttached)
	g.policy = core.NewRenderPolicy(g.names, g.syncThread)
	g.renderThread = core.NewRenderThread(g.policy, g.ctx)

	g.queuesMu.Lock()
	for _, label := range params.QueueLabels {
		q := core.NewCommandQueue(label, g.names)
		if err := g.policy.Insert(q); err != nil {
			g.queuesMu.Unlock()
			return err
		}
		g.queues[label] = q
	}
	g.queuesMu.Unlock()

	g.initialized = true
	return nil
}

// Shutdown signals the render thread to exit (draining the system queue
// once more for deferred destroys), waits for it, then stops the sync
// thread, and finally signals Destroyed.
func (g *Graphics) Shutdown() {
	g.initMu.Lock()
	defer g.initMu.Unlock()
	if !g.initialized {
		return
	}
	g.renderThread.RequestExit()
	g.renderThread.Join()
	g.syncThread.Stop()
	g.initialized = false
	g.Destroyed.Signal(struct{}{})
}

// Policy returns the render policy, for callers that need to insert or
// remove command queues directly. Returns nil before Initialize.
func (g *Graphics) Policy() *core.RenderPolicy { return g.policy }

// SystemQueue returns the always-first system queue. Returns nil before
// Initialize.
func (g *Graphics) SystemQueue() *core.CommandQueue {
	if !g.initialized {
		return nil
	}
	return g.policy.SystemQueue()
}

// Queue returns a previously declared (via Params.QueueLabels or InsertQueue)
// command queue by label.
func (g *Graphics) Queue(label string) (*core.CommandQueue, error) {
	if !g.initialized {
		return nil, ErrNotInitialized
	}
	g.queuesMu.Lock()
	defer g.queuesMu.Unlock()
	q, ok := g.queues[label]
	if !ok {
		return nil, core.ErrNotFound
	}
	return q, nil
}

// InsertQueue declares a new named command queue and inserts it at the end
// of the policy's order.
func (g *Graphics) InsertQueue(label string) (*core.CommandQueue, error) {
	if !g.initialized {
		return nil, ErrNotInitialized
	}
	q := core.NewCommandQueue(label, g.names)
	if err := g.policy.Insert(q); err != nil {
		return nil, err
	}
	g.queuesMu.Lock()
	g.queues[label] = q
	g.queuesMu.Unlock()
	return q, nil
}

// FlushCommands blocks until the render thread signals ready_to_swap for
// whatever batch is currently in flight, swaps the policy, then signals
// the render thread to run the new batch. Must not be called from the
// render thread.
func (g *Graphics) FlushCommands() error {
	if !g.initialized {
		return ErrNotInitialized
	}
	if g.renderThread.IsRenderThread() {
		return core.ErrWrongThread
	}
	g.flushMu.Lock()
	defer g.flushMu.Unlock()
	if err := g.renderThread.WaitForReadyToSwap(g.lastCycle); err != nil {
		return err
	}
	g.policy.Swap()
	g.lastCycle = g.renderThread.RunCommands()
	return nil
}

// FinishCommands is FlushCommands plus a second wait, guaranteeing the
// just-submitted batch has actually drained before it returns.
func (g *Graphics) FinishCommands() error {
	if err := g.FlushCommands(); err != nil {
		return err
	}
	g.flushMu.Lock()
	cycle := g.lastCycle
	g.flushMu.Unlock()
	return g.renderThread.WaitForReadyToSwap(cycle)
}

// FinishSettingSync forwards a set sync to the sync thread — the same
// hand-off RenderPolicy.Swap uses internally for system_sync, exposed for
// callers driving a Sync of their own outside the async-resource helpers.
func (g *Graphics) FinishSettingSync(s *core.Sync, fence gpu.FenceHandle) error {
	if !g.initialized {
		return ErrNotInitialized
	}
	return g.syncThread.Submit(s, fence)
}

// CreateBuffer begins asynchronous buffer creation (fire-and-forget).
func (g *Graphics) CreateBuffer(desc gpu.BufferDescriptor) (*resource.Buffer, error) {
	if !g.initialized {
		return nil, ErrNotInitialized
	}
	return resource.NewBuffer(g.policy.SystemQueue(), g.renderThread, g.ctx, desc, nil, nil)
}

// CreateFinishedBuffer creates a buffer and blocks the caller until its
// GPU-side creation fence has been observed complete.
func (g *Graphics) CreateFinishedBuffer(desc gpu.BufferDescriptor) (*resource.Buffer, error) {
	if !g.initialized {
		return nil, ErrNotInitialized
	}
	sync := core.NewSync()
	buf, err := resource.NewBuffer(g.policy.SystemQueue(), g.renderThread, g.ctx, desc, sync, g.syncThread)
	if err != nil {
		return nil, err
	}
	if err := g.waitOnCreateSync(sync); err != nil {
		return nil, err
	}
	return buf, nil
}

// CreateTexture begins asynchronous texture creation (fire-and-forget).
func (g *Graphics) CreateTexture(desc gpu.TextureDescriptor) (*resource.Texture, error) {
	if !g.initialized {
		return nil, ErrNotInitialized
	}
	return resource.NewTexture(g.policy.SystemQueue(), g.renderThread, g.ctx, desc, nil, nil)
}

// CreateFinishedTexture creates a texture and blocks until its GPU-side
// creation fence has been observed complete.
func (g *Graphics) CreateFinishedTexture(desc gpu.TextureDescriptor) (*resource.Texture, error) {
	if !g.initialized {
		return nil, ErrNotInitialized
	}
	sync := core.NewSync()
	tex, err := resource.NewTexture(g.policy.SystemQueue(), g.renderThread, g.ctx, desc, sync, g.syncThread)
	if err != nil {
		return nil, err
	}
	if err := g.waitOnCreateSync(sync); err != nil {
		return nil, err
	}
	return tex, nil
}

// CreateFramebuffer begins asynchronous framebuffer creation
// (fire-and-forget).
func (g *Graphics) CreateFramebuffer(desc gpu.FramebufferDescriptor) (*resource.Framebuffer, error) {
	if !g.initialized {
		return nil, ErrNotInitialized
	}
	return resource.NewFramebuffer(g.policy.SystemQueue(), g.renderThread, g.ctx, desc, nil, nil)
}

// CreateFinishedFramebuffer creates a framebuffer and blocks until its
// GPU-side creation fence has been observed complete.
func (g *Graphics) CreateFinishedFramebuffer(desc gpu.FramebufferDescriptor) (*resource.Framebuffer, error) {
	if !g.initialized {
		return nil, ErrNotInitialized
	}
	sync := core.NewSync()
	fb, err := resource.NewFramebuffer(g.policy.SystemQueue(), g.renderThread, g.ctx, desc, sync, g.syncThread)
	if err != nil {
		return nil, err
	}
	if err := g.waitOnCreateSync(sync); err != nil {
		return nil, err
	}
	return fb, nil
}

// CreateShaderProgram begins asynchronous shader program creation
// (fire-and-forget).
func (g *Graphics) CreateShaderProgram(desc gpu.ShaderProgramDescriptor) (*resource.ShaderProgram, error) {
	if !g.initialized {
		return nil, ErrNotInitialized
	}
	return resource.NewShaderProgram(g.policy.SystemQueue(), g.renderThread, g.ctx, desc, nil, nil)
}

// CreateFinishedShaderProgram creates a shader program and blocks until its
// GPU-side creation fence has been observed complete.
func (g *Graphics) CreateFinishedShaderProgram(desc gpu.ShaderProgramDescriptor) (*resource.ShaderProgram, error) {
	if !g.initialized {
		return nil, ErrNotInitialized
	}
	sync := core.NewSync()
	sp, err := resource.NewShaderProgram(g.policy.SystemQueue(), g.renderThread, g.ctx, desc, sync, g.syncThread)
	if err != nil {
		return nil, err
	}
	if err := g.waitOnCreateSync(sync); err != nil {
		return nil, err
	}
	return sp, nil
}

// CreatePrimitiveStream begins asynchronous primitive stream creation
// (fire-and-forget). backing, if given, names the Buffer resources desc's
// attributes and index buffer bind to; the stream retains each one so it
// stays alive for as long as the stream draws from it, even past the
// caller's own Close of that buffer.
func (g *Graphics) CreatePrimitiveStream(desc gpu.PrimitiveStreamDescriptor, backing ...*resource.Buffer) (*resource.PrimitiveStream, error) {
	if !g.initialized {
		return nil, ErrNotInitialized
	}
	return resource.NewPrimitiveStream(g.policy.SystemQueue(), g.renderThread, g.ctx, desc, nil, nil, backing...)
}

// CreateFinishedPrimitiveStream creates a primitive stream and blocks until
// its GPU-side creation fence has been observed complete. See
// CreatePrimitiveStream for backing.
func (g *Graphics) CreateFinishedPrimitiveStream(desc gpu.PrimitiveStreamDescriptor, backing ...*resource.Buffer) (*resource.PrimitiveStream, error) {
	if !g.initialized {
		return nil, ErrNotInitialized
	}
	sync := core.NewSync()
	ps, err := resource.NewPrimitiveStream(g.policy.SystemQueue(), g.renderThread, g.ctx, desc, sync, g.syncThread, backing...)
	if err != nil {
		return nil, err
	}
	if err := g.waitOnCreateSync(sync); err != nil {
		return nil, err
	}
	return ps, nil
}

// waitOnCreateSync flushes the batch that carries a just-enqueued
// synchronous create command, waits for its sync to signal, then clears it
// for reuse (the sync object itself is not retained past this call).
func (g *Graphics) waitOnCreateSync(sync *core.Sync) error {
	if err := g.FinishCommands(); err != nil {
		return err
	}
	sync.Wait()
	return sync.Clear()
}
