package framegraph

import (
	"image/color"

	"github.com/Carmen-Shannon/oxy-render/common"
	"github.com/Carmen-Shannon/oxy-render/engine/frontend"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/gogpu/gputypes"
)

// ClearBuffers clears the selected buffers before the views of its branch render.
type ClearBuffers struct {
	FrameGraphNode
	buffers           frontend.BufferType
	clearColor        mgl32.Vec4
	clearDepthValue   float32
	clearStencilValue int32
	colorBufferID     common.NodeId
}

var _ Node = &ClearBuffers{}

// NewClearBuffers returns a ClearBuffers node in its default state: nothing cleared, depth 1, stencil 0.
func NewClearBuffers() *ClearBuffers {
	n := &ClearBuffers{clearDepthValue: 1}
	n.init(n, frontend.KindClearBuffers)
	return n
}

// Type returns the mask of buffers to clear.
func (n *ClearBuffers) Type() frontend.BufferType { return n.buffers }

// ClearColor returns the straight (non-premultiplied) RGBA clear colour in [0, 1].
func (n *ClearBuffers) ClearColor() mgl32.Vec4 { return n.clearColor }

// ClearColorValue returns the clear colour as a render pass clear value.
func (n *ClearBuffers) ClearColorValue() gputypes.Color {
	return gputypes.Color{
		R: float64(n.clearColor[0]),
		G: float64(n.clearColor[1]),
		B: float64(n.clearColor[2]),
		A: float64(n.clearColor[3]),
	}
}

func (n *ClearBuffers) ClearDepthValue() float32 { return n.clearDepthValue }

func (n *ClearBuffers) ClearStencilValue() int32 { return n.clearStencilValue }

// BufferID returns the single colour target to clear, or null.
func (n *ClearBuffers) BufferID() common.NodeId { return n.colorBufferID }

// ClearsAllColorBuffers reports whether the colour clear applies to every colour target.
func (n *ClearBuffers) ClearsAllColorBuffers() bool {
	return n.colorBufferID.IsNull()
}

// SyncFromFrontEnd compares every field against the cached value and raises FrameGraphDirty once if anything changed.
func (n *ClearBuffers) SyncFromFrontEnd(fe frontend.Node, firstTime bool) {
	node, ok := fe.(frontend.ClearBuffers)
	if !ok {
		return
	}
	_, dirty := n.syncBase(fe, firstTime)

	if n.buffers != node.Buffers {
		n.buffers = node.Buffers
		dirty = true
	}
	if c := colorToVec4(node.ClearColor); n.clearColor != c {
		n.clearColor = c
		dirty = true
	}
	if !common.FuzzyCompare(n.clearDepthValue, node.ClearDepthValue) {
		n.clearDepthValue = node.ClearDepthValue
		dirty = true
	}
	if n.clearStencilValue != node.ClearStencilValue {
		n.clearStencilValue = node.ClearStencilValue
		dirty = true
	}
	if n.colorBufferID != node.ColorBuffer {
		n.colorBufferID = node.ColorBuffer
		dirty = true
	}

	if dirty {
		n.markFrameGraphDirty()
	}
}

func (n *ClearBuffers) Cleanup() {
	n.FrameGraphNode.Cleanup()
	n.buffers = frontend.BufferTypeNone
	n.clearColor = mgl32.Vec4{}
	n.clearDepthValue = 1
	n.clearStencilValue = 0
	n.colorBufferID = common.NullNodeId
}

// colorToVec4 maps a colour to straight RGBA floats. A nil colour maps to opaque black.
func colorToVec4(c color.Color) mgl32.Vec4 {
	if c == nil {
		return mgl32.Vec4{0, 0, 0, 1}
	}
	nc := color.NRGBA64Model.Convert(c).(color.NRGBA64)
	const maxChannel = 0xFFFF
	return mgl32.Vec4{
		float32(nc.R) / maxChannel,
		float32(nc.G) / maxChannel,
		float32(nc.B) / maxChannel,
		float32(nc.A) / maxChannel,
	}
}
