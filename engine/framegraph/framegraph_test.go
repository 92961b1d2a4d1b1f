package framegraph

import (
	"image/color"
	"sync"
	"testing"

	"github.com/Carmen-Shannon/oxy-render/common"
	"github.com/Carmen-Shannon/oxy-render/engine/backend"
	"github.com/Carmen-Shannon/oxy-render/engine/frontend"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/gogpu/gputypes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingRenderer struct {
	mu    sync.Mutex
	flags []backend.DirtyFlag
	nodes []backend.Node
}

func (r *recordingRenderer) MarkDirty(changes backend.DirtyFlag, node backend.Node) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.flags = append(r.flags, changes)
	r.nodes = append(r.nodes, node)
}

func (r *recordingRenderer) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.flags)
}

func newClearBuffers(t *testing.T) (*ClearBuffers, *recordingRenderer) {
	t.Helper()
	r := &recordingRenderer{}
	n := NewClearBuffers()
	n.SetRenderer(r)
	NewManager().AppendNode(1, n)
	return n, r
}

func TestClearBuffersInitialSync(t *testing.T) {
	n, r := newClearBuffers(t)

	fe := frontend.NewClearBuffers(1, common.NullNodeId)
	fe.Buffers = frontend.BufferTypeColorDepth
	fe.ClearColor = color.NRGBA{R: 255, G: 0, B: 0, A: 255}
	fe.ClearDepthValue = 0.5
	fe.ClearStencilValue = 3
	n.SyncFromFrontEnd(fe, true)

	require.Equal(t, 1, r.count())
	assert.Equal(t, backend.FrameGraphDirty, r.flags[0])
	assert.Same(t, n, r.nodes[0], "the concrete node is reported")

	assert.True(t, n.IsEnabled())
	assert.Equal(t, frontend.BufferTypeColorDepth, n.Type())
	assert.Equal(t, mgl32.Vec4{1, 0, 0, 1}, n.ClearColor())
	assert.Equal(t, gputypes.Color{R: 1, G: 0, B: 0, A: 1}, n.ClearColorValue())
	assert.Equal(t, float32(0.5), n.ClearDepthValue())
	assert.Equal(t, int32(3), n.ClearStencilValue())
	assert.True(t, n.ClearsAllColorBuffers())
}

func TestClearBuffersFirstSyncOfDefaultsIsDirty(t *testing.T) {
	n, r := newClearBuffers(t)
	n.SyncFromFrontEnd(frontend.NewClearBuffers(1, common.NullNodeId), true)
	assert.Equal(t, 1, r.count())
}

func TestClearBuffersIdenticalSyncIsClean(t *testing.T) {
	n, r := newClearBuffers(t)
	fe := frontend.NewClearBuffers(1, common.NullNodeId)
	fe.Buffers = frontend.BufferTypeAll
	n.SyncFromFrontEnd(fe, true)
	n.SyncFromFrontEnd(fe, false)
	assert.Equal(t, 1, r.count())
}

func TestClearBuffersEachFieldMarksDirty(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*frontend.ClearBuffers)
		check  func(*testing.T, *ClearBuffers)
	}{
		{"buffers", func(c *frontend.ClearBuffers) { c.Buffers = frontend.BufferTypeStencil }, func(t *testing.T, n *ClearBuffers) {
			assert.True(t, n.Type().Has(frontend.BufferTypeStencil))
		}},
		{"color", func(c *frontend.ClearBuffers) { c.ClearColor = color.White }, func(t *testing.T, n *ClearBuffers) {
			assert.Equal(t, mgl32.Vec4{1, 1, 1, 1}, n.ClearColor())
		}},
		{"depth", func(c *frontend.ClearBuffers) { c.ClearDepthValue = 0.25 }, func(t *testing.T, n *ClearBuffers) {
			assert.Equal(t, float32(0.25), n.ClearDepthValue())
		}},
		{"stencil", func(c *frontend.ClearBuffers) { c.ClearStencilValue = 7 }, func(t *testing.T, n *ClearBuffers) {
			assert.Equal(t, int32(7), n.ClearStencilValue())
		}},
		{"color buffer", func(c *frontend.ClearBuffers) { c.ColorBuffer = 42 }, func(t *testing.T, n *ClearBuffers) {
			assert.Equal(t, common.NodeId(42), n.BufferID())
			assert.False(t, n.ClearsAllColorBuffers())
		}},
		{"enabled", func(c *frontend.ClearBuffers) { c.Enabled = false }, func(t *testing.T, n *ClearBuffers) {
			assert.False(t, n.IsEnabled())
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			n, r := newClearBuffers(t)
			fe := frontend.NewClearBuffers(1, common.NullNodeId)
			n.SyncFromFrontEnd(fe, true)

			tc.mutate(&fe)
			n.SyncFromFrontEnd(fe, false)
			assert.Equal(t, 2, r.count(), "exactly one mark for the change")
			tc.check(t, n)
		})
	}
}

func TestClearBuffersNilColorIsOpaqueBlack(t *testing.T) {
	n, _ := newClearBuffers(t)
	fe := frontend.NewClearBuffers(1, common.NullNodeId)
	fe.ClearColor = nil
	n.SyncFromFrontEnd(fe, true)
	assert.Equal(t, mgl32.Vec4{0, 0, 0, 1}, n.ClearColor())
}

func TestClearBuffersIgnoresOtherKinds(t *testing.T) {
	n, r := newClearBuffers(t)
	n.SyncFromFrontEnd(frontend.NoDraw{FrameGraphBase: frontend.FrameGraphBase{Base: frontend.NewBase(1)}}, true)
	assert.Zero(t, r.count())
}

func TestClearBuffersCleanup(t *testing.T) {
	n, _ := newClearBuffers(t)
	fe := frontend.NewClearBuffers(1, common.NullNodeId)
	fe.Buffers = frontend.BufferTypeAll
	fe.ClearDepthValue = 0
	fe.ColorBuffer = 5
	n.SyncFromFrontEnd(fe, true)

	n.Cleanup()
	assert.False(t, n.IsEnabled())
	assert.Equal(t, frontend.BufferTypeNone, n.Type())
	assert.Equal(t, float32(1), n.ClearDepthValue())
	assert.True(t, n.ClearsAllColorBuffers())
}

func fgBase(id, parent common.NodeId) frontend.FrameGraphBase {
	return frontend.FrameGraphBase{Base: frontend.NewBase(id), Parent: parent}
}

func TestManagerLinksParentsInEitherOrder(t *testing.T) {
	r := &recordingRenderer{}
	m := NewManager()

	child := NewNoDraw()
	child.SetRenderer(r)
	m.AppendNode(2, child)
	child.SyncFromFrontEnd(frontend.NoDraw{FrameGraphBase: fgBase(2, 1)}, true)
	assert.Nil(t, child.Parent(), "parent not stored yet")

	root := NewGroup()
	root.SetRenderer(r)
	m.AppendNode(1, root)
	root.SyncFromFrontEnd(frontend.FrameGraphGroup{FrameGraphBase: fgBase(1, common.NullNodeId)}, true)

	assert.Equal(t, []common.NodeId{2}, root.ChildIDs(), "orphan adopted")
	assert.Same(t, root, child.Parent())

	other := NewViewport()
	other.SetRenderer(r)
	m.AppendNode(3, other)
	other.SyncFromFrontEnd(frontend.Viewport{FrameGraphBase: fgBase(3, 1), NormalizedRect: [4]float32{0, 0, 1, 1}}, true)
	assert.Equal(t, []common.NodeId{2, 3}, root.ChildIDs())

	// Reparent 3 under 2.
	other.SyncFromFrontEnd(frontend.Viewport{FrameGraphBase: fgBase(3, 2), NormalizedRect: [4]float32{0, 0, 1, 1}}, false)
	assert.Equal(t, []common.NodeId{2}, root.ChildIDs())
	assert.Equal(t, []common.NodeId{3}, child.ChildIDs())
}

func TestManagerReleaseNode(t *testing.T) {
	m := NewManager()
	root, mid, leaf := NewGroup(), NewGroup(), NewNoDraw()
	m.AppendNode(1, root)
	mid.parentID = 1
	m.AppendNode(2, mid)
	leaf.parentID = 2
	m.AppendNode(3, leaf)

	require.Equal(t, 3, m.Count())
	assert.Same(t, mid, m.ReleaseNode(2))
	assert.Empty(t, root.ChildIDs())
	assert.Nil(t, leaf.Parent(), "dangling parent resolves to nil")
	assert.Nil(t, m.ReleaseNode(2))
	assert.Equal(t, 2, m.Count())
	assert.Len(t, m.Nodes(), 2)
}

func TestCollectLeaves(t *testing.T) {
	m := NewManager()
	add := func(id, parent common.NodeId, n Node) {
		n.base().parentID = parent
		m.AppendNode(id, n)
	}
	add(1, common.NullNodeId, NewGroup())
	add(2, 1, NewViewport())
	add(3, 2, NewCameraSelector())
	add(4, 2, NewClearBuffers())
	add(5, 1, NewNoDraw())

	disabled := NewLayerFilter()
	add(6, 3, disabled)

	leaves := CollectLeaves(m, 1)
	ids := make([]common.NodeId, 0, len(leaves))
	for _, l := range leaves {
		ids = append(ids, l.PeerID())
	}
	assert.Equal(t, []common.NodeId{6, 4, 5}, ids, "depth first in child order; disabled nodes still walked")

	assert.Nil(t, CollectLeaves(m, 99))
	single := CollectLeaves(m, 5)
	require.Len(t, single, 1)
	assert.Equal(t, common.NodeId(5), single[0].PeerID())
}

func TestComputeViewport(t *testing.T) {
	parent := mgl32.Vec4{0.5, 0, 0.5, 1}
	child := mgl32.Vec4{0, 0.5, 1, 0.5}
	assert.Equal(t, mgl32.Vec4{0.5, 0.5, 0.5, 0.5}, ComputeViewport(parent, child))
	assert.Equal(t, child, ComputeViewport(mgl32.Vec4{}, child))
}

func TestVariantSyncs(t *testing.T) {
	r := &recordingRenderer{}
	m := NewManager()

	cam := NewCameraSelector()
	cam.SetRenderer(r)
	m.AppendNode(1, cam)
	cam.SyncFromFrontEnd(frontend.CameraSelector{FrameGraphBase: fgBase(1, 0), Camera: 77}, true)
	assert.Equal(t, common.NodeId(77), cam.CameraID())

	lf := NewLayerFilter()
	lf.SetRenderer(r)
	m.AppendNode(2, lf)
	layers := []common.NodeId{3, 4}
	lf.SyncFromFrontEnd(frontend.LayerFilter{FrameGraphBase: fgBase(2, 1), Layers: layers, Mode: frontend.DiscardAllMatchingLayers}, true)
	layers[0] = 99
	assert.Equal(t, []common.NodeId{3, 4}, lf.LayerIDs(), "layers are copied")
	assert.Equal(t, frontend.DiscardAllMatchingLayers, lf.FilterMode())

	vp := NewViewport()
	vp.SetRenderer(r)
	m.AppendNode(3, vp)
	vp.SyncFromFrontEnd(frontend.Viewport{FrameGraphBase: fgBase(3, 2), NormalizedRect: [4]float32{0, 0, 0.5, 0.5}}, true)
	assert.Equal(t, mgl32.Vec4{0, 0, 0.5, 0.5}, vp.NormalizedRect())
	assert.Equal(t, DefaultGamma, vp.Gamma())

	dc := NewDispatchCompute()
	dc.SetRenderer(r)
	m.AppendNode(4, dc)
	dc.SyncFromFrontEnd(frontend.DispatchCompute{FrameGraphBase: fgBase(4, 3), WorkGroupX: 8, WorkGroupY: 4, WorkGroupZ: 1}, true)
	assert.Equal(t, [3]int32{8, 4, 1}, dc.WorkGroups())

	sp := NewSortPolicy()
	sp.SetRenderer(r)
	m.AppendNode(5, sp)
	sp.SyncFromFrontEnd(frontend.SortPolicy{FrameGraphBase: fgBase(5, 4), SortTypes: []frontend.SortType{frontend.SortMaterial}}, true)
	assert.Equal(t, []frontend.SortType{frontend.SortMaterial}, sp.SortTypes())

	ss := NewStateSet()
	ss.SetRenderer(r)
	m.AppendNode(6, ss)
	states := []frontend.RenderState{{Type: frontend.RenderStateDepthTest}}
	ss.SyncFromFrontEnd(frontend.RenderStateSet{FrameGraphBase: fgBase(6, 5), RenderStates: states}, true)
	assert.Equal(t, states, ss.RenderStates())

	assert.Equal(t, 6, r.count(), "one mark per creating sync")

	sp.SyncFromFrontEnd(frontend.SortPolicy{FrameGraphBase: fgBase(5, 4), SortTypes: []frontend.SortType{frontend.SortMaterial}}, false)
	assert.Equal(t, 6, r.count())

	leaves := CollectLeaves(m, 1)
	require.Len(t, leaves, 1)
	assert.Same(t, ss, leaves[0])
}

func TestNewByKind(t *testing.T) {
	for k := frontend.KindUnknown; k <= frontend.KindRenderStateSet; k++ {
		n := New(k)
		if k.IsFrameGraph() {
			require.NotNil(t, n, k.String())
			assert.Equal(t, k, n.NodeType())
		} else {
			assert.Nil(t, n, k.String())
		}
	}
}
