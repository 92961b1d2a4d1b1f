package frontend

import (
	"image/color"

	"github.com/Carmen-Shannon/oxy-render/common"
)

// FrameGraphBase is embedded by every frame-graph snapshot. Parent is the id of the parent frame-graph node, or null for a root.
type FrameGraphBase struct {
	Base
	Parent common.NodeId
}

// FrameGraphParent returns the parent id.
func (b FrameGraphBase) FrameGraphParent() common.NodeId { return b.Parent }

// FrameGraphNode is implemented by every frame-graph snapshot.
type FrameGraphNode interface {
	Node
	FrameGraphParent() common.NodeId
}

// FrameGraphGroup is a frame-graph node with no behaviour of its own, used to branch the graph.
type FrameGraphGroup struct {
	FrameGraphBase
}

func (FrameGraphGroup) Kind() Kind { return KindFrameGraphGroup }

// BufferType is a bitmask of the buffers a ClearBuffers node clears.
type BufferType uint32

const (
	BufferTypeNone              BufferType = 0
	BufferTypeColor             BufferType = 1 << 0
	BufferTypeDepth             BufferType = 1 << 1
	BufferTypeStencil           BufferType = 1 << 2
	BufferTypeDepthStencil                 = BufferTypeDepth | BufferTypeStencil
	BufferTypeColorDepth                   = BufferTypeColor | BufferTypeDepth
	BufferTypeColorDepthStencil            = BufferTypeColor | BufferTypeDepth | BufferTypeStencil
	BufferTypeAll               BufferType = 0xFFFFFFFF
)

// Has reports whether every bit of flag is set.
func (b BufferType) Has(flag BufferType) bool {
	return b&flag == flag
}

// ClearBuffers clears the selected buffers before rendering the branch it sits in.
type ClearBuffers struct {
	FrameGraphBase
	Buffers BufferType
	// ClearColor nil is the invalid colour, cleared as opaque black.
	ClearColor        color.Color
	ClearDepthValue   float32
	ClearStencilValue int32
	// ColorBuffer names a single color target to clear. Null clears all color buffers.
	ColorBuffer common.NodeId
}

func (ClearBuffers) Kind() Kind { return KindClearBuffers }

// NewClearBuffers returns a snapshot holding the front-end defaults: no buffers, depth 1 and stencil 0.
func NewClearBuffers(id, parent common.NodeId) ClearBuffers {
	return ClearBuffers{
		FrameGraphBase:  FrameGraphBase{Base: NewBase(id), Parent: parent},
		ClearDepthValue: 1,
	}
}

// CameraSelector picks the camera entity used by the views below it.
type CameraSelector struct {
	FrameGraphBase
	Camera common.NodeId
}

func (CameraSelector) Kind() Kind { return KindCameraSelector }

// LayerFilterMode decides how a LayerFilter matches entity layers.
type LayerFilterMode uint8

const (
	// AcceptAnyMatchingLayers keeps entities carrying at least one of the layers.
	AcceptAnyMatchingLayers LayerFilterMode = iota
	// AcceptAllMatchingLayers keeps entities carrying every one of the layers.
	AcceptAllMatchingLayers
	// DiscardAnyMatchingLayers drops entities carrying at least one of the layers.
	DiscardAnyMatchingLayers
	// DiscardAllMatchingLayers drops entities carrying every one of the layers.
	DiscardAllMatchingLayers
)

// LayerFilter restricts the entities drawn below it by layer.
type LayerFilter struct {
	FrameGraphBase
	Layers []common.NodeId
	Mode   LayerFilterMode
}

func (LayerFilter) Kind() Kind { return KindLayerFilter }

// Viewport sets a normalized sub-rectangle (x, y, width, height) of the parent viewport.
type Viewport struct {
	FrameGraphBase
	NormalizedRect [4]float32
	Gamma          float32
}

func (Viewport) Kind() Kind { return KindViewport }

// NoDraw suppresses draw commands for its branch; clears still happen.
type NoDraw struct {
	FrameGraphBase
}

func (NoDraw) Kind() Kind { return KindNoDraw }

// FrustumCulling enables frustum culling for its branch.
type FrustumCulling struct {
	FrameGraphBase
}

func (FrustumCulling) Kind() Kind { return KindFrustumCulling }

// DispatchCompute turns its branch into a compute branch with the given work group counts.
type DispatchCompute struct {
	FrameGraphBase
	WorkGroupX int32
	WorkGroupY int32
	WorkGroupZ int32
}

func (DispatchCompute) Kind() Kind { return KindDispatchCompute }

// SortType is one key of a SortPolicy.
type SortType uint8

const (
	SortStateChangeCost SortType = iota
	SortBackToFront
	SortFrontToBack
	SortMaterial
)

// SortPolicy orders the commands of its branch.
type SortPolicy struct {
	FrameGraphBase
	SortTypes []SortType
}

func (SortPolicy) Kind() Kind { return KindSortPolicy }

// RenderStateSet applies render states to every command of its branch.
type RenderStateSet struct {
	FrameGraphBase
	RenderStates []RenderState
}

func (RenderStateSet) Kind() Kind { return KindRenderStateSet }
