package renderer

import (
	"slices"

	"github.com/Carmen-Shannon/oxy-render/common"
	"github.com/Carmen-Shannon/oxy-render/engine/entity"
	"github.com/Carmen-Shannon/oxy-render/engine/framegraph"
	"github.com/Carmen-Shannon/oxy-render/engine/frontend"
	"github.com/Carmen-Shannon/oxy-render/engine/manager"
	"github.com/Carmen-Shannon/oxy-render/engine/material"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/gogpu/gputypes"
)

// LayerFilterInfo is one layer filter met on the way from a leaf to the root.
type LayerFilterInfo struct {
	LayerIDs []common.NodeId
	Mode     frontend.LayerFilterMode
}

// ColorClear is a clear aimed at one specific color buffer.
type ColorClear struct {
	BufferID common.NodeId
	Color    gputypes.Color
}

// RenderView is the configuration of one frame-graph leaf plus the commands generated for it.
type RenderView struct {
	LeafID common.NodeId

	CameraID         common.NodeId
	ViewMatrix       mgl32.Mat4
	ProjectionMatrix mgl32.Mat4
	Exposure         float32

	Viewport mgl32.Vec4
	Gamma    float32

	LayerFilters []LayerFilterInfo

	ClearBuffers        frontend.BufferType
	ColorLoadOp         gputypes.LoadOp
	DepthLoadOp         gputypes.LoadOp
	StencilLoadOp       gputypes.LoadOp
	GlobalClearColor    gputypes.Color
	SpecificClearColors []ColorClear
	ClearDepthValue     float32
	ClearStencilValue   int32

	NoDraw         bool
	FrustumCulling bool
	Compute        bool
	WorkGroups     [3]int32

	SortTypes []frontend.SortType
	StateSet  *material.RenderStateSet

	Commands []RenderCommand
}

// NewRenderView returns a view that clears nothing, covers the whole surface and sees through an identity camera.
func NewRenderView(leafID common.NodeId) *RenderView {
	return &RenderView{
		LeafID:           leafID,
		ViewMatrix:       mgl32.Ident4(),
		ProjectionMatrix: mgl32.Ident4(),
		Exposure:         0,
		Viewport:         mgl32.Vec4{0, 0, 1, 1},
		Gamma:            framegraph.DefaultGamma,
		ColorLoadOp:      gputypes.LoadOpLoad,
		DepthLoadOp:      gputypes.LoadOpLoad,
		StencilLoadOp:    gputypes.LoadOpLoad,
		GlobalClearColor: gputypes.Color{A: 1},
		ClearDepthValue:  1,
	}
}

// ViewProjection returns projection × view.
func (v *RenderView) ViewProjection() mgl32.Mat4 {
	return v.ProjectionMatrix.Mul4(v.ViewMatrix)
}

// BuildRenderView resolves the configuration of leaf by walking its ancestors up to the root. Disabled nodes are
// skipped. The node nearest the leaf wins for single-valued settings; viewports nest, layer filters accumulate and
// render states merge with the nearer state taking precedence.
//
// Parameters:
//   - m: the managers holding entities and camera lenses
//   - leaf: the frame-graph leaf
//
// Returns:
//   - *RenderView: the configured view, with no commands yet
func BuildRenderView(m *manager.NodeManagers, leaf framegraph.Node) *RenderView {
	v := NewRenderView(leaf.PeerID())
	var viewports []mgl32.Vec4
	var stateSet *material.RenderStateSet
	cameraSet, sortSet := false, false

	visited := make(map[common.NodeId]struct{})
	for n := leaf; n != nil; n = framegraph.Parent(n) {
		if _, seen := visited[n.PeerID()]; seen {
			break
		}
		visited[n.PeerID()] = struct{}{}
		if !n.IsEnabled() {
			continue
		}

		switch node := n.(type) {
		case *framegraph.CameraSelector:
			if !cameraSet {
				cameraSet = true
				v.CameraID = node.CameraID()
			}
		case *framegraph.LayerFilter:
			if len(node.LayerIDs()) > 0 {
				v.LayerFilters = append(v.LayerFilters, LayerFilterInfo{LayerIDs: node.LayerIDs(), Mode: node.FilterMode()})
			}
		case *framegraph.Viewport:
			viewports = append(viewports, node.NormalizedRect())
			if len(viewports) == 1 {
				v.Gamma = node.Gamma()
			}
		case *framegraph.ClearBuffers:
			applyClearBuffers(v, node)
		case *framegraph.NoDraw:
			v.NoDraw = true
		case *framegraph.FrustumCulling:
			v.FrustumCulling = true
		case *framegraph.DispatchCompute:
			if !v.Compute {
				v.Compute = true
				v.WorkGroups = node.WorkGroups()
			}
		case *framegraph.SortPolicy:
			if !sortSet {
				sortSet = true
				v.SortTypes = slices.Clone(node.SortTypes())
			}
		case *framegraph.StateSet:
			if stateSet == nil {
				stateSet = material.NewRenderStateSet()
			}
			stateSet.Merge(material.NewRenderStateSet(node.RenderStates()...))
		}
	}

	for i := len(viewports) - 1; i >= 0; i-- {
		if i == len(viewports)-1 {
			v.Viewport = viewports[i]
			continue
		}
		v.Viewport = framegraph.ComputeViewport(v.Viewport, viewports[i])
	}
	v.StateSet = stateSet
	applyCamera(m, v)
	return v
}

// applyClearBuffers folds one ClearBuffers node into v. The walk climbs from the leaf, so a node nearer the root
// overwrites the values of the nodes below it. Specific colours are kept once per buffer.
func applyClearBuffers(v *RenderView, cb *framegraph.ClearBuffers) {
	t := cb.Type()
	if t.Has(frontend.BufferTypeStencil) {
		v.ClearBuffers |= frontend.BufferTypeStencil
		v.ClearStencilValue = cb.ClearStencilValue()
		v.StencilLoadOp = gputypes.LoadOpClear
	}
	if t.Has(frontend.BufferTypeDepth) {
		v.ClearBuffers |= frontend.BufferTypeDepth
		v.ClearDepthValue = cb.ClearDepthValue()
		v.DepthLoadOp = gputypes.LoadOpClear
	}
	if !t.Has(frontend.BufferTypeColor) {
		return
	}
	if cb.ClearsAllColorBuffers() {
		v.GlobalClearColor = cb.ClearColorValue()
		v.ClearBuffers |= frontend.BufferTypeColor
		v.ColorLoadOp = gputypes.LoadOpClear
		return
	}
	entry := ColorClear{BufferID: cb.BufferID(), Color: cb.ClearColorValue()}
	if i := slices.IndexFunc(v.SpecificClearColors, func(c ColorClear) bool { return c.BufferID == entry.BufferID }); i >= 0 {
		v.SpecificClearColors[i] = entry
		return
	}
	v.SpecificClearColors = append(v.SpecificClearColors, entry)
}

// applyCamera fills the view and projection matrices from the selected camera entity. A camera that does not resolve
// leaves the identity matrices in place.
func applyCamera(m *manager.NodeManagers, v *RenderView) {
	cam := m.LookupEntity(v.CameraID)
	if cam == nil {
		return
	}
	if world := cam.WorldTransform(); world.Det() != 0 {
		v.ViewMatrix = world.Inv()
	}
	if lens := m.CameraLenses.Lookup(cam.ComponentID(frontend.KindCameraLens)); lens != nil {
		v.ProjectionMatrix = lens.Projection()
		v.Exposure = lens.Exposure()
	}
}

// effectiveLayers returns the layers of e plus every recursive layer of its ancestors.
func effectiveLayers(m *manager.NodeManagers, e *entity.Entity) []common.NodeId {
	layers := slices.Clone(e.LayerIDs())
	visited := map[common.NodeId]struct{}{e.PeerID(): {}}
	for p := m.LookupEntity(e.ParentID()); p != nil; p = m.LookupEntity(p.ParentID()) {
		if _, seen := visited[p.PeerID()]; seen {
			break
		}
		visited[p.PeerID()] = struct{}{}
		for _, id := range p.LayerIDs() {
			if l := m.Layers.Lookup(id); l != nil && l.Recursive() && !slices.Contains(layers, id) {
				layers = append(layers, id)
			}
		}
	}
	return layers
}

// passesLayerFilters reports whether an entity carrying layers survives every filter.
func passesLayerFilters(m *manager.NodeManagers, filters []LayerFilterInfo, layers []common.NodeId) bool {
	enabled := layers[:0:0]
	for _, id := range layers {
		if l := m.Layers.Lookup(id); l != nil && l.IsEnabled() {
			enabled = append(enabled, id)
		}
	}
	for _, f := range filters {
		matches := 0
		for _, id := range f.LayerIDs {
			if slices.Contains(enabled, id) {
				matches++
			}
		}
		var keep bool
		switch f.Mode {
		case frontend.AcceptAnyMatchingLayers:
			keep = matches > 0
		case frontend.AcceptAllMatchingLayers:
			keep = matches == len(f.LayerIDs)
		case frontend.DiscardAnyMatchingLayers:
			keep = matches == 0
		case frontend.DiscardAllMatchingLayers:
			keep = matches < len(f.LayerIDs)
		}
		if !keep {
			return false
		}
	}
	return true
}
