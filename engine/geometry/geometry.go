package geometry

import (
	"slices"

	"github.com/Carmen-Shannon/oxy-render/common"
	"github.com/Carmen-Shannon/oxy-render/engine/backend"
	"github.com/Carmen-Shannon/oxy-render/engine/frontend"
	"github.com/go-gl/mathgl/mgl32"
)

// Geometry mirrors a front-end geometry: an ordered list of attribute ids.
type Geometry struct {
	backend.BackendNode
	attributes                []common.NodeId
	boundingPositionAttribute common.NodeId
	min, max                  mgl32.Vec3
}

var _ backend.Node = &Geometry{}

// AttributeIDs returns the attribute ids. The slice must not be modified.
func (g *Geometry) AttributeIDs() []common.NodeId { return g.attributes }

// BoundingPositionAttribute returns the attribute explicitly chosen for bounds, or null.
func (g *Geometry) BoundingPositionAttribute() common.NodeId { return g.boundingPositionAttribute }

// Extent returns the axis-aligned bounds computed by the bounding volume job.
func (g *Geometry) Extent() (min, max mgl32.Vec3) { return g.min, g.max }

// SetExtent records the axis-aligned bounds of the position data.
func (g *Geometry) SetExtent(min, max mgl32.Vec3) {
	g.min, g.max = min, max
}

func (g *Geometry) SyncFromFrontEnd(fe frontend.Node, firstTime bool) {
	node, ok := fe.(frontend.Geometry)
	if !ok {
		return
	}
	dirty := g.SyncCommon(fe, firstTime)

	if !slices.Equal(g.attributes, node.Attributes) {
		g.attributes = slices.Clone(node.Attributes)
		dirty = true
	}
	if g.boundingPositionAttribute != node.BoundingVolumePositionAttribute {
		g.boundingPositionAttribute = node.BoundingVolumePositionAttribute
		dirty = true
	}

	if dirty || firstTime {
		g.MarkDirtyFrom(backend.GeometryDirty, g)
	}
}

func (g *Geometry) Cleanup() {
	g.ResetCommon()
	g.attributes = nil
	g.boundingPositionAttribute = common.NullNodeId
	g.min, g.max = mgl32.Vec3{}, mgl32.Vec3{}
}
