package geometry

import (
	"github.com/Carmen-Shannon/oxy-render/common"
	"github.com/Carmen-Shannon/oxy-render/engine/backend"
	"github.com/Carmen-Shannon/oxy-render/engine/frontend"
	"github.com/gogpu/gputypes"
)

// Attribute mirrors a front-end attribute: a typed view into a Buffer.
type Attribute struct {
	backend.BackendNode
	bufferID       common.NodeId
	name           string
	vertexBaseType frontend.VertexBaseType
	vertexSize     uint32
	count          uint32
	byteStride     uint32
	byteOffset     uint32
	divisor        uint32
	attributeType  frontend.AttributeType
}

var _ backend.Node = &Attribute{}

func (a *Attribute) BufferID() common.NodeId { return a.bufferID }

func (a *Attribute) Name() string { return a.name }

func (a *Attribute) VertexBaseType() frontend.VertexBaseType { return a.vertexBaseType }

func (a *Attribute) VertexSize() uint32 { return a.vertexSize }

func (a *Attribute) Count() uint32 { return a.count }

func (a *Attribute) ByteStride() uint32 { return a.byteStride }

func (a *Attribute) ByteOffset() uint32 { return a.byteOffset }

func (a *Attribute) Divisor() uint32 { return a.divisor }

func (a *Attribute) AttributeType() frontend.AttributeType { return a.attributeType }

// ComponentSize returns the size in bytes of one component of the attribute's base type.
func (a *Attribute) ComponentSize() uint32 {
	return componentSize(a.vertexBaseType)
}

// ElementStride returns the distance in bytes between consecutive elements: the declared stride, or the packed element size when zero.
func (a *Attribute) ElementStride() uint32 {
	if a.byteStride != 0 {
		return a.byteStride
	}
	return a.vertexSize * a.ComponentSize()
}

// Format maps the base type and component count to a vertex format.
//
// Returns:
//   - gputypes.VertexFormat: the format, or VertexFormatUndefined when there is no matching format
func (a *Attribute) Format() gputypes.VertexFormat {
	formats, ok := vertexFormats[a.vertexBaseType]
	if !ok || a.vertexSize < 1 || a.vertexSize > 4 {
		return gputypes.VertexFormatUndefined
	}
	return formats[a.vertexSize-1]
}

// IndexFormat maps the base type to an index format. Byte indices have no index format.
func (a *Attribute) IndexFormat() gputypes.IndexFormat {
	switch a.vertexBaseType {
	case frontend.VertexBaseTypeUnsignedShort:
		return gputypes.IndexFormatUint16
	case frontend.VertexBaseTypeUnsignedInt:
		return gputypes.IndexFormatUint32
	default:
		return gputypes.IndexFormatUndefined
	}
}

var vertexFormats = map[frontend.VertexBaseType][4]gputypes.VertexFormat{
	frontend.VertexBaseTypeFloat: {
		gputypes.VertexFormatFloat32, gputypes.VertexFormatFloat32x2,
		gputypes.VertexFormatFloat32x3, gputypes.VertexFormatFloat32x4,
	},
	frontend.VertexBaseTypeUnsignedInt: {
		gputypes.VertexFormatUint32, gputypes.VertexFormatUint32x2,
		gputypes.VertexFormatUint32x3, gputypes.VertexFormatUint32x4,
	},
	frontend.VertexBaseTypeInt: {
		gputypes.VertexFormatSint32, gputypes.VertexFormatSint32x2,
		gputypes.VertexFormatSint32x3, gputypes.VertexFormatSint32x4,
	},
	frontend.VertexBaseTypeUnsignedShort: {
		gputypes.VertexFormatUndefined, gputypes.VertexFormatUint16x2,
		gputypes.VertexFormatUndefined, gputypes.VertexFormatUint16x4,
	},
	frontend.VertexBaseTypeShort: {
		gputypes.VertexFormatUndefined, gputypes.VertexFormatSint16x2,
		gputypes.VertexFormatUndefined, gputypes.VertexFormatSint16x4,
	},
	frontend.VertexBaseTypeUnsignedByte: {
		gputypes.VertexFormatUndefined, gputypes.VertexFormatUint8x2,
		gputypes.VertexFormatUndefined, gputypes.VertexFormatUint8x4,
	},
	frontend.VertexBaseTypeByte: {
		gputypes.VertexFormatUndefined, gputypes.VertexFormatSint8x2,
		gputypes.VertexFormatUndefined, gputypes.VertexFormatSint8x4,
	},
	frontend.VertexBaseTypeHalfFloat: {
		gputypes.VertexFormatUndefined, gputypes.VertexFormatFloat16x2,
		gputypes.VertexFormatUndefined, gputypes.VertexFormatFloat16x4,
	},
}

func componentSize(t frontend.VertexBaseType) uint32 {
	switch t {
	case frontend.VertexBaseTypeByte, frontend.VertexBaseTypeUnsignedByte:
		return 1
	case frontend.VertexBaseTypeShort, frontend.VertexBaseTypeUnsignedShort, frontend.VertexBaseTypeHalfFloat:
		return 2
	case frontend.VertexBaseTypeDouble:
		return 8
	default:
		return 4
	}
}

func (a *Attribute) SyncFromFrontEnd(fe frontend.Node, firstTime bool) {
	node, ok := fe.(frontend.Attribute)
	if !ok {
		return
	}
	dirty := a.SyncCommon(fe, firstTime)

	if a.bufferID != node.Buffer || a.name != node.Name || a.vertexBaseType != node.VertexBaseType ||
		a.vertexSize != node.VertexSize || a.count != node.Count || a.byteStride != node.ByteStride ||
		a.byteOffset != node.ByteOffset || a.divisor != node.Divisor || a.attributeType != node.AttributeType {
		a.bufferID = node.Buffer
		a.name = node.Name
		a.vertexBaseType = node.VertexBaseType
		a.vertexSize = node.VertexSize
		a.count = node.Count
		a.byteStride = node.ByteStride
		a.byteOffset = node.ByteOffset
		a.divisor = node.Divisor
		a.attributeType = node.AttributeType
		dirty = true
	}

	if dirty || firstTime {
		a.MarkDirtyFrom(backend.GeometryDirty, a)
	}
}

func (a *Attribute) Cleanup() {
	a.ResetCommon()
	*a = Attribute{BackendNode: a.BackendNode}
}
