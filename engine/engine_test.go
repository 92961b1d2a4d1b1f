package engine

import (
	"context"
	"sync"
	"testing"

	"github.com/Carmen-Shannon/oxy-render/common"
	"github.com/Carmen-Shannon/oxy-render/engine/backend"
	"github.com/Carmen-Shannon/oxy-render/engine/config"
	"github.com/Carmen-Shannon/oxy-render/engine/frontend"
	"github.com/Carmen-Shannon/oxy-render/engine/raycast"
	"github.com/Carmen-Shannon/oxy-render/engine/renderer"
	"github.com/Carmen-Shannon/oxy-render/engine/scheduler"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/gogpu/gputypes"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingBackend struct {
	mu        sync.Mutex
	uploaded  []common.NodeId
	released  []common.NodeId
	submitted int
	submitErr error
}

func (b *recordingBackend) UploadBuffer(id common.NodeId, _ []byte, _ gputypes.BufferUsage) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.uploaded = append(b.uploaded, id)
}

func (b *recordingBackend) ReleaseBuffer(id common.NodeId) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.released = append(b.released, id)
}

func (b *recordingBackend) Submit([]*renderer.RenderView) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.submitted++
	return b.submitErr
}

type unknownNode struct{ frontend.Base }

func (unknownNode) Kind() frontend.Kind { return frontend.KindUnknown }

func newTestEngine(t *testing.T, options ...EngineBuilderOption) (Engine, *recordingBackend) {
	t.Helper()
	b := &recordingBackend{}
	e := NewEngine(append([]EngineBuilderOption{WithWorkers(2), WithBackend(b)}, options...)...)
	t.Cleanup(e.Shutdown)
	return e, b
}

func entity(id, parent common.NodeId, components ...frontend.ComponentRef) frontend.Entity {
	return frontend.Entity{Base: frontend.NewBase(id), Parent: parent, Components: components}
}

func ref(kind frontend.Kind, id common.NodeId) frontend.ComponentRef {
	return frontend.ComponentRef{Kind: kind, Id: id}
}

// syncTriangleScene adds one triangle drawn by entity 2 and a frame graph with a single leaf.
func syncTriangleScene(e Engine) {
	e.Sync(
		frontend.Buffer{Base: frontend.NewBase(50), Data: common.SliceToBytes([]float32{0, 0, 0, 1, 0, 0, 0, 1, 0})},
		frontend.Attribute{
			Base:           frontend.NewBase(51),
			Buffer:         50,
			Name:           frontend.DefaultPositionAttributeName,
			VertexBaseType: frontend.VertexBaseTypeFloat,
			VertexSize:     3,
			Count:          3,
			ByteStride:     12,
		},
		frontend.Geometry{Base: frontend.NewBase(52), Attributes: []common.NodeId{51}},
		frontend.NewGeometryRenderer(53, 52),
		frontend.Material{Base: frontend.NewBase(70), Shader: 700},
		entity(2, common.NullNodeId, ref(frontend.KindGeometryRenderer, 53), ref(frontend.KindMaterial, 70)),
		frontend.RenderSettings{Base: frontend.NewBase(100), ActiveFrameGraph: 200},
		frontend.FrameGraphGroup{FrameGraphBase: frontend.FrameGraphBase{Base: frontend.NewBase(200)}},
	)
}

func TestEngineHierarchyScenario(t *testing.T) {
	e, _ := newTestEngine(t)
	e.Sync(entity(1, common.NullNodeId), entity(2, 1), entity(3, 1))

	_, err := e.Frame()
	require.NoError(t, err)
	m := e.Managers()
	assert.ElementsMatch(t, []common.NodeId{2, 3}, m.LookupEntity(1).ChildIDs())
	assert.Empty(t, m.LookupEntity(2).ChildIDs())
	assert.Empty(t, m.LookupEntity(3).ChildIDs())

	e.Remove(2)
	assert.Nil(t, m.LookupEntity(2))
	assert.True(t, e.Renderer().PendingDirty().Has(backend.EntityHierarchyDirty))

	_, err = e.Frame()
	require.NoError(t, err)
	assert.Equal(t, []common.NodeId{3}, m.LookupEntity(1).ChildIDs())
}

func TestEngineSyncTracksKinds(t *testing.T) {
	e, _ := newTestEngine(t)
	e.Sync(entity(1, common.NullNodeId), frontend.Layer{Base: frontend.NewBase(2)})

	k, ok := e.Kind(1)
	require.True(t, ok)
	assert.Equal(t, frontend.KindEntity, k)
	k, ok = e.Kind(2)
	require.True(t, ok)
	assert.Equal(t, frontend.KindLayer, k)

	e.Sync(entity(1, common.NullNodeId))
	assert.Equal(t, 1, e.Managers().Entities.Count())

	require.PanicsWithValue(t, "engine: node 1 synced as Layer, was created as Entity", func() {
		e.Sync(frontend.Layer{Base: frontend.NewBase(1)})
	})
}

func TestEngineSyncSkipsUnusableNodes(t *testing.T) {
	e, _ := newTestEngine(t)
	e.Sync(nil, unknownNode{Base: frontend.NewBase(5)}, entity(common.NullNodeId, common.NullNodeId))

	_, ok := e.Kind(5)
	assert.False(t, ok)
	assert.Zero(t, e.Managers().Entities.Count())
}

func TestEngineSyncAttachesRenderer(t *testing.T) {
	e, _ := newTestEngine(t)
	_, err := e.Frame()
	require.NoError(t, err)
	require.Zero(t, e.Renderer().PendingDirty())

	e.Sync(frontend.Transform{Base: frontend.NewBase(9), Transform: common.IdentityTransform()})
	assert.True(t, e.Renderer().PendingDirty().Has(backend.TransformDirty))
	assert.Same(t, e.Renderer(), e.Managers().Transforms.Lookup(9).Renderer())
}

func TestEngineFrameAndCastRay(t *testing.T) {
	e, b := newTestEngine(t)
	syncTriangleScene(e)

	views, err := e.Frame()
	require.NoError(t, err)
	require.Len(t, views, 1)
	require.Len(t, views[0].Commands, 1)
	assert.Equal(t, common.NodeId(2), views[0].Commands[0].EntityID)
	assert.Equal(t, []common.NodeId{50}, b.uploaded)
	assert.Equal(t, 1, b.submitted)

	hits, err := e.CastRay(raycast.NewRay(mgl32.Vec3{0.2, 0.2, 3}, mgl32.Vec3{0, 0, -1}, 10))
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, common.NodeId(2), hits[0].EntityID)
	assert.InDelta(t, 3, hits[0].Distance, 1e-4)
}

func TestEngineRemoveBufferReleasesOnNextFrame(t *testing.T) {
	e, b := newTestEngine(t)
	syncTriangleScene(e)
	_, err := e.Frame()
	require.NoError(t, err)

	count, ok := e.Managers().Buffers.ReferenceCount(50)
	require.True(t, ok)
	assert.Equal(t, uint32(1), count)

	e.Remove(50)
	assert.NotNil(t, e.Managers().LookupBuffer(50), "buffers leave the arena during the frame")

	_, err = e.Frame()
	require.NoError(t, err)
	assert.Nil(t, e.Managers().LookupBuffer(50))
	assert.Equal(t, []common.NodeId{50}, b.released)
	_, ok = e.Kind(50)
	assert.False(t, ok)
}

func TestEngineResyncedBufferSurvivesPendingRelease(t *testing.T) {
	e, b := newTestEngine(t)
	syncTriangleScene(e)

	e.Remove(50)
	e.Sync(frontend.Buffer{Base: frontend.NewBase(50), Data: []byte{1, 2, 3, 4}})
	_, err := e.Frame()
	require.NoError(t, err)

	assert.NotNil(t, e.Managers().LookupBuffer(50))
	assert.Empty(t, b.released)
}

func TestEngineRemoveUnknownIsNoop(t *testing.T) {
	e, _ := newTestEngine(t)
	_, err := e.Frame()
	require.NoError(t, err)

	e.Remove(42)
	assert.Zero(t, e.Renderer().PendingDirty())
}

func TestEngineRunStopsWithContext(t *testing.T) {
	e, _ := newTestEngine(t, WithFrameRate(0))
	syncTriangleScene(e)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	frames := 0
	e.SetFrameCallback(func(views []*renderer.RenderView, _ float32) {
		assert.Len(t, views, 1)
		frames++
		if frames == 3 {
			cancel()
		}
	})

	require.NoError(t, e.Run(ctx))
	assert.Equal(t, 3, frames)
	assert.Equal(t, uint64(3), e.Renderer().Stats().Frame)
}

func TestEngineRunWithTicker(t *testing.T) {
	e, _ := newTestEngine(t, WithFrameRate(1000))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	frames := 0
	e.SetFrameCallback(func([]*renderer.RenderView, float32) {
		frames++
		if frames == 2 {
			cancel()
		}
	})
	require.NoError(t, e.Run(ctx))
	assert.Equal(t, 2, frames)
}

func TestEngineRunReturnsFrameError(t *testing.T) {
	e, b := newTestEngine(t, WithFrameRate(0))
	syncTriangleScene(e)
	b.submitErr = errors.New("device lost")

	err := e.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "device lost")
}

func TestEngineOptionsOverrideConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Workers = 7
	cfg.FrameRate = 30
	cfg.Profiling = true
	cfg.PickMode = "all"

	e, _ := newTestEngine(t, WithConfig(cfg), WithWorkers(3), WithProfiling(false))
	impl := e.(*engine)
	assert.Equal(t, 3, impl.cfg.Workers)
	assert.InDelta(t, 30, impl.cfg.FrameRate, 1e-9)
	assert.False(t, e.ProfilerEnabled())
	assert.Equal(t, raycast.PickAll, e.Renderer().PickMode())
}

func TestEngineSparseConfigTakesDefaults(t *testing.T) {
	e, _ := newTestEngine(t, WithConfig(config.Config{FrameRate: 30, PickMode: "all"}))
	impl := e.(*engine)
	d := config.Default()
	assert.Equal(t, d.QueueSize, impl.cfg.QueueSize)
	assert.Equal(t, d.IdleTimeout, impl.cfg.IdleTimeout)
	assert.Equal(t, d.Workers, impl.cfg.Workers)
	assert.InDelta(t, 30, impl.cfg.FrameRate, 1e-9)
	assert.Equal(t, raycast.PickAll, e.Renderer().PickMode())
}

func TestEngineProfilerToggle(t *testing.T) {
	e, _ := newTestEngine(t)
	assert.False(t, e.ProfilerEnabled())
	e.EnableProfiler()
	assert.True(t, e.ProfilerEnabled())
	_, err := e.Frame()
	require.NoError(t, err)
	e.DisableProfiler()
	assert.False(t, e.ProfilerEnabled())
}

func TestEngineShutdown(t *testing.T) {
	e, _ := newTestEngine(t)
	e.Shutdown()
	e.Shutdown()

	_, err := e.Frame()
	assert.ErrorIs(t, err, scheduler.ErrStopped)
}
