package resource

import (
	"testing"
	"time"

	"github.com/gogpu/corert/core"
	"github.com/gogpu/corert/gpu/mock"
)

// rig bundles the service threads a resource test drives against, mirroring
// what Graphics.Initialize wires up in production.
type rig struct {
	t      *testing.T
	ctx    *mock.Context
	names  *core.NameTable
	st     *core.SyncThread
	policy *core.RenderPolicy
	rt     *core.RenderThread
}

func newRig(t *testing.T) *rig {
	t.Helper()
	ctx := mock.New()
	names := core.NewNameTable()
	st := core.NewSyncThread(ctx, time.Second, false)
	policy := core.NewRenderPolicy(names, st)
	rt := core.NewRenderThread(policy, ctx)

	r := &rig{t: t, ctx: ctx, names: names, st: st, policy: policy, rt: rt}
	t.Cleanup(func() {
		r.rt.RequestExit()
		r.rt.Join()
		r.st.Stop()
	})
	return r
}

// runFrame swaps the policy and drives one full render-thread cycle,
// failing the test if the thread captured an error.
func (r *rig) runFrame() {
	r.t.Helper()
	r.policy.Swap()
	cycle := r.rt.RunCommands()
	if err := r.rt.WaitForReadyToSwap(cycle); err != nil {
		r.t.Fatalf("render thread error: %v", err)
	}
}

// waitFinished polls until res.Finished() or the deadline, for tests that
// create a resource via the synchronous (create_finished) path and still
// need to wait on an explicit Sync before observing it.
func waitFinished(t *testing.T, finished func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !finished() && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if !finished() {
		t.Fatal("resource never reported finished")
	}
}
