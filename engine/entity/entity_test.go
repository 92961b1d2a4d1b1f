package entity

import (
	"sync"
	"testing"

	"github.com/Carmen-Shannon/oxy-render/common"
	"github.com/Carmen-Shannon/oxy-render/engine/backend"
	"github.com/Carmen-Shannon/oxy-render/engine/frontend"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingRenderer struct {
	mu    sync.Mutex
	flags []backend.DirtyFlag
}

func (r *recordingRenderer) MarkDirty(changes backend.DirtyFlag, _ backend.Node) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.flags = append(r.flags, changes)
}

func (r *recordingRenderer) take() []backend.DirtyFlag {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.flags
	r.flags = nil
	return out
}

func TestEntitySyncComponents(t *testing.T) {
	r := &recordingRenderer{}
	e := NewEntity()
	e.SetRenderer(r)

	fe := frontend.Entity{
		Base:   frontend.NewBase(1),
		Parent: 9,
		Components: []frontend.ComponentRef{
			{Kind: frontend.KindTransform, Id: 10},
			{Kind: frontend.KindGeometryRenderer, Id: 11},
			{Kind: frontend.KindLayer, Id: 12},
			{Kind: frontend.KindLayer, Id: 13},
		},
	}
	e.SyncFromFrontEnd(fe, true)

	flags := r.take()
	require.Len(t, flags, 1, "one mark per sync")
	assert.True(t, flags[0].Has(backend.EntityHierarchyDirty))
	assert.True(t, flags[0].Has(backend.EntityEnabledDirty))
	assert.True(t, flags[0].Has(backend.TransformDirty))
	assert.True(t, flags[0].Has(backend.GeometryDirty))
	assert.True(t, flags[0].Has(backend.LayersDirty))
	assert.False(t, flags[0].Has(backend.MaterialDirty))

	assert.Equal(t, common.NodeId(1), e.PeerID())
	assert.Equal(t, common.NodeId(9), e.ParentID())
	assert.Equal(t, common.NodeId(10), e.ComponentID(frontend.KindTransform))
	assert.Equal(t, common.NodeId(11), e.ComponentID(frontend.KindGeometryRenderer))
	assert.Equal(t, []common.NodeId{12, 13}, e.LayerIDs())
	assert.ElementsMatch(t, fe.Components, e.Components())

	e.SyncFromFrontEnd(fe, false)
	assert.Empty(t, r.take(), "unchanged sync raises nothing")

	fe.Parent = common.NullNodeId
	fe.Components = fe.Components[:1]
	e.SyncFromFrontEnd(fe, false)
	flags = r.take()
	require.Len(t, flags, 1)
	assert.Equal(t, backend.EntityHierarchyDirty|backend.GeometryDirty|backend.LayersDirty, flags[0])
}

func TestEntityHierarchyHelpers(t *testing.T) {
	e := NewEntity()
	e.AppendChildID(2)
	e.AppendChildID(3)
	e.AppendChildID(2)
	assert.Equal(t, []common.NodeId{2, 3}, e.ChildIDs())

	e.ClearEntityHierarchy()
	assert.Empty(t, e.ChildIDs())
}

func TestEntityCleanup(t *testing.T) {
	r := &recordingRenderer{}
	e := NewEntity()
	e.SetRenderer(r)
	e.SyncFromFrontEnd(frontend.Entity{
		Base:       frontend.NewBase(4),
		Parent:     1,
		Components: []frontend.ComponentRef{{Kind: frontend.KindMaterial, Id: 5}},
	}, true)
	e.SetWorldTransform(mgl32.Translate3D(1, 2, 3))
	e.AppendChildID(8)

	e.Cleanup()
	assert.Equal(t, common.NodeId(4), e.PeerID())
	assert.Same(t, r, e.Renderer())
	assert.False(t, e.IsEnabled())
	assert.True(t, e.ParentID().IsNull())
	assert.Empty(t, e.ChildIDs())
	assert.Empty(t, e.Components())
	assert.Equal(t, mgl32.Ident4(), e.WorldTransform())
}

func TestTransformSync(t *testing.T) {
	r := &recordingRenderer{}
	tr := NewTransform()
	tr.SetRenderer(r)

	fe := frontend.Transform{Base: frontend.NewBase(3), Transform: common.IdentityTransform()}
	fe.Translation = mgl32.Vec3{1, 2, 3}
	tr.SyncFromFrontEnd(fe, true)
	assert.Equal(t, []backend.DirtyFlag{backend.TransformDirty}, r.take())
	assert.Equal(t, mgl32.Translate3D(1, 2, 3), tr.Matrix())

	tr.SyncFromFrontEnd(fe, false)
	assert.Empty(t, r.take())

	fe.Scale = mgl32.Vec3{2, 2, 2}
	tr.SyncFromFrontEnd(fe, false)
	assert.Equal(t, []backend.DirtyFlag{backend.TransformDirty}, r.take())
}

func TestCameraLensExposureIsFuzzy(t *testing.T) {
	r := &recordingRenderer{}
	c := NewCameraLens()
	c.SetRenderer(r)

	fe := frontend.CameraLens{Base: frontend.NewBase(5), Projection: mgl32.Perspective(1, 1, 0.1, 10), Exposure: 1}
	c.SyncFromFrontEnd(fe, true)
	assert.Len(t, r.take(), 1)

	fe.Exposure = 1.0000001
	c.SyncFromFrontEnd(fe, false)
	assert.Empty(t, r.take())

	fe.Exposure = 2
	c.SyncFromFrontEnd(fe, false)
	assert.Equal(t, []backend.DirtyFlag{backend.ParameterDirty}, r.take())
}

func TestLayerSync(t *testing.T) {
	r := &recordingRenderer{}
	l := &Layer{}
	l.SetRenderer(r)
	l.SyncFromFrontEnd(frontend.Layer{Base: frontend.NewBase(6), Recursive: true}, true)
	assert.True(t, l.Recursive())
	assert.Equal(t, []backend.DirtyFlag{backend.LayersDirty}, r.take())

	// A snapshot of another kind is ignored.
	l.SyncFromFrontEnd(frontend.Entity{Base: frontend.NewBase(6)}, false)
	assert.Empty(t, r.take())
}
