package geometry

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-render/common"
	"github.com/Carmen-Shannon/oxy-render/engine/backend"
	"github.com/Carmen-Shannon/oxy-render/engine/frontend"
	"github.com/Carmen-Shannon/oxy-render/engine/raycast"
	"github.com/gogpu/gputypes"
)

// GeometryRenderer mirrors the drawable component of an entity and caches the triangle volumes used for picking.
type GeometryRenderer struct {
	backend.BackendNode
	params frontend.GeometryRenderer

	volumesMu       sync.RWMutex
	triangleVolumes []raycast.TriangleBoundingVolume
	triangleIndices [][3]uint32
}

var _ backend.Node = &GeometryRenderer{}

// NewGeometryRenderer returns a geometry renderer holding the front-end defaults.
func NewGeometryRenderer() *GeometryRenderer {
	return &GeometryRenderer{params: frontend.NewGeometryRenderer(common.NullNodeId, common.NullNodeId)}
}

func (g *GeometryRenderer) GeometryID() common.NodeId { return g.params.Geometry }

func (g *GeometryRenderer) PrimitiveType() gputypes.PrimitiveTopology { return g.params.PrimitiveType }

func (g *GeometryRenderer) InstanceCount() int32 { return g.params.InstanceCount }

func (g *GeometryRenderer) VertexCount() int32 { return g.params.VertexCount }

func (g *GeometryRenderer) IndexOffset() int32 { return g.params.IndexOffset }

func (g *GeometryRenderer) FirstInstance() int32 { return g.params.FirstInstance }

func (g *GeometryRenderer) FirstVertex() int32 { return g.params.FirstVertex }

func (g *GeometryRenderer) IndexBufferByteOffset() int32 { return g.params.IndexBufferByteOffset }

func (g *GeometryRenderer) RestartIndexValue() int32 { return g.params.RestartIndexValue }

func (g *GeometryRenderer) VerticesPerPatch() int32 { return g.params.VerticesPerPatch }

func (g *GeometryRenderer) PrimitiveRestartEnabled() bool { return g.params.PrimitiveRestartEnabled }

// TriangleVolumes returns the cached local-space triangles.
func (g *GeometryRenderer) TriangleVolumes() []raycast.TriangleBoundingVolume {
	g.volumesMu.RLock()
	defer g.volumesMu.RUnlock()
	return g.triangleVolumes
}

// TriangleIndices returns the vertex indices of every cached triangle, parallel to TriangleVolumes.
func (g *GeometryRenderer) TriangleIndices() [][3]uint32 {
	g.volumesMu.RLock()
	defer g.volumesMu.RUnlock()
	return g.triangleIndices
}

// SetTriangleVolumes replaces the cached triangles and their vertex indices.
func (g *GeometryRenderer) SetTriangleVolumes(volumes []raycast.TriangleBoundingVolume, indices [][3]uint32) {
	g.volumesMu.Lock()
	defer g.volumesMu.Unlock()
	g.triangleVolumes = volumes
	g.triangleIndices = indices
}

func (g *GeometryRenderer) SyncFromFrontEnd(fe frontend.Node, firstTime bool) {
	node, ok := fe.(frontend.GeometryRenderer)
	if !ok {
		return
	}
	dirty := g.SyncCommon(fe, firstTime)

	node.Base = g.params.Base
	if node != g.params {
		g.params = node
		dirty = true
	}

	if dirty || firstTime {
		g.MarkDirtyFrom(backend.GeometryDirty, g)
	}
}

func (g *GeometryRenderer) Cleanup() {
	g.ResetCommon()
	g.params = frontend.NewGeometryRenderer(common.NullNodeId, common.NullNodeId)
	g.SetTriangleVolumes(nil, nil)
}
