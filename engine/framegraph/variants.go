package framegraph

import (
	"slices"

	"github.com/Carmen-Shannon/oxy-render/common"
	"github.com/Carmen-Shannon/oxy-render/engine/frontend"
	"github.com/go-gl/mathgl/mgl32"
)

// CameraSelector selects the camera entity for its branch.
type CameraSelector struct {
	FrameGraphNode
	cameraID common.NodeId
}

// NewCameraSelector returns a CameraSelector with no camera.
func NewCameraSelector() *CameraSelector {
	n := &CameraSelector{}
	n.init(n, frontend.KindCameraSelector)
	return n
}

func (n *CameraSelector) CameraID() common.NodeId { return n.cameraID }

func (n *CameraSelector) SyncFromFrontEnd(fe frontend.Node, firstTime bool) {
	node, ok := fe.(frontend.CameraSelector)
	if !ok {
		return
	}
	_, dirty := n.syncBase(fe, firstTime)
	if n.cameraID != node.Camera {
		n.cameraID = node.Camera
		dirty = true
	}
	if dirty {
		n.markFrameGraphDirty()
	}
}

func (n *CameraSelector) Cleanup() {
	n.FrameGraphNode.Cleanup()
	n.cameraID = common.NullNodeId
}

// LayerFilter restricts the entities of its branch by layer.
type LayerFilter struct {
	FrameGraphNode
	layerIDs []common.NodeId
	mode     frontend.LayerFilterMode
}

// NewLayerFilter returns a LayerFilter with no layers.
func NewLayerFilter() *LayerFilter {
	n := &LayerFilter{}
	n.init(n, frontend.KindLayerFilter)
	return n
}

// LayerIDs returns the filtered layers. The slice must not be modified.
func (n *LayerFilter) LayerIDs() []common.NodeId { return n.layerIDs }

func (n *LayerFilter) FilterMode() frontend.LayerFilterMode { return n.mode }

func (n *LayerFilter) SyncFromFrontEnd(fe frontend.Node, firstTime bool) {
	node, ok := fe.(frontend.LayerFilter)
	if !ok {
		return
	}
	_, dirty := n.syncBase(fe, firstTime)
	if !slices.Equal(n.layerIDs, node.Layers) {
		n.layerIDs = slices.Clone(node.Layers)
		dirty = true
	}
	if n.mode != node.Mode {
		n.mode = node.Mode
		dirty = true
	}
	if dirty {
		n.markFrameGraphDirty()
	}
}

func (n *LayerFilter) Cleanup() {
	n.FrameGraphNode.Cleanup()
	n.layerIDs = nil
	n.mode = frontend.AcceptAnyMatchingLayers
}

// DefaultGamma is the gamma of a viewport that does not set one.
const DefaultGamma float32 = 2.2

// Viewport sets a normalized sub-rectangle of the enclosing viewport.
type Viewport struct {
	FrameGraphNode
	normalizedRect mgl32.Vec4
	gamma          float32
}

// NewViewport returns a full-size viewport with the default gamma.
func NewViewport() *Viewport {
	n := &Viewport{normalizedRect: mgl32.Vec4{0, 0, 1, 1}, gamma: DefaultGamma}
	n.init(n, frontend.KindViewport)
	return n
}

// NormalizedRect returns (x, y, width, height) relative to the enclosing viewport.
func (n *Viewport) NormalizedRect() mgl32.Vec4 { return n.normalizedRect }

func (n *Viewport) Gamma() float32 { return n.gamma }

func (n *Viewport) SyncFromFrontEnd(fe frontend.Node, firstTime bool) {
	node, ok := fe.(frontend.Viewport)
	if !ok {
		return
	}
	_, dirty := n.syncBase(fe, firstTime)
	if rect := mgl32.Vec4(node.NormalizedRect); n.normalizedRect != rect {
		n.normalizedRect = rect
		dirty = true
	}
	gamma := node.Gamma
	if gamma == 0 {
		gamma = DefaultGamma
	}
	if n.gamma != gamma {
		n.gamma = gamma
		dirty = true
	}
	if dirty {
		n.markFrameGraphDirty()
	}
}

func (n *Viewport) Cleanup() {
	n.FrameGraphNode.Cleanup()
	n.normalizedRect = mgl32.Vec4{0, 0, 1, 1}
	n.gamma = DefaultGamma
}

// ComputeViewport nests child inside parent. A parent with no area leaves child unchanged.
//
// Parameters:
//   - parent: the enclosing normalized rect (x, y, width, height)
//   - child: the rect relative to parent
//
// Returns:
//   - mgl32.Vec4: child expressed relative to the whole target
func ComputeViewport(parent, child mgl32.Vec4) mgl32.Vec4 {
	if parent[2] <= 0 || parent[3] <= 0 {
		return child
	}
	return mgl32.Vec4{
		parent[0] + parent[2]*child[0],
		parent[1] + parent[3]*child[1],
		parent[2] * child[2],
		parent[3] * child[3],
	}
}

// DispatchCompute turns its branch into a compute branch.
type DispatchCompute struct {
	FrameGraphNode
	workGroups [3]int32
}

// NewDispatchCompute returns a DispatchCompute node with one work group per axis.
func NewDispatchCompute() *DispatchCompute {
	n := &DispatchCompute{workGroups: [3]int32{1, 1, 1}}
	n.init(n, frontend.KindDispatchCompute)
	return n
}

func (n *DispatchCompute) WorkGroups() [3]int32 { return n.workGroups }

func (n *DispatchCompute) SyncFromFrontEnd(fe frontend.Node, firstTime bool) {
	node, ok := fe.(frontend.DispatchCompute)
	if !ok {
		return
	}
	_, dirty := n.syncBase(fe, firstTime)
	if groups := [3]int32{node.WorkGroupX, node.WorkGroupY, node.WorkGroupZ}; n.workGroups != groups {
		n.workGroups = groups
		dirty = true
	}
	if dirty {
		n.markFrameGraphDirty()
	}
}

func (n *DispatchCompute) Cleanup() {
	n.FrameGraphNode.Cleanup()
	n.workGroups = [3]int32{1, 1, 1}
}

// SortPolicy orders the commands of its branch.
type SortPolicy struct {
	FrameGraphNode
	sortTypes []frontend.SortType
}

// NewSortPolicy returns a SortPolicy with no sort keys.
func NewSortPolicy() *SortPolicy {
	n := &SortPolicy{}
	n.init(n, frontend.KindSortPolicy)
	return n
}

// SortTypes returns the sort keys, most significant first. The slice must not be modified.
func (n *SortPolicy) SortTypes() []frontend.SortType { return n.sortTypes }

func (n *SortPolicy) SyncFromFrontEnd(fe frontend.Node, firstTime bool) {
	node, ok := fe.(frontend.SortPolicy)
	if !ok {
		return
	}
	_, dirty := n.syncBase(fe, firstTime)
	if !slices.Equal(n.sortTypes, node.SortTypes) {
		n.sortTypes = slices.Clone(node.SortTypes)
		dirty = true
	}
	if dirty {
		n.markFrameGraphDirty()
	}
}

func (n *SortPolicy) Cleanup() {
	n.FrameGraphNode.Cleanup()
	n.sortTypes = nil
}

// StateSet applies render states to every command of its branch.
type StateSet struct {
	FrameGraphNode
	renderStates []frontend.RenderState
}

// NewStateSet returns an empty StateSet.
func NewStateSet() *StateSet {
	n := &StateSet{}
	n.init(n, frontend.KindRenderStateSet)
	return n
}

// RenderStates returns the states. The slice must not be modified.
func (n *StateSet) RenderStates() []frontend.RenderState { return n.renderStates }

func (n *StateSet) SyncFromFrontEnd(fe frontend.Node, firstTime bool) {
	node, ok := fe.(frontend.RenderStateSet)
	if !ok {
		return
	}
	_, dirty := n.syncBase(fe, firstTime)
	if !slices.Equal(n.renderStates, node.RenderStates) {
		n.renderStates = slices.Clone(node.RenderStates)
		dirty = true
	}
	if dirty {
		n.markFrameGraphDirty()
	}
}

func (n *StateSet) Cleanup() {
	n.FrameGraphNode.Cleanup()
	n.renderStates = nil
}

var (
	_ Node = &CameraSelector{}
	_ Node = &LayerFilter{}
	_ Node = &Viewport{}
	_ Node = &DispatchCompute{}
	_ Node = &SortPolicy{}
	_ Node = &StateSet{}
)
