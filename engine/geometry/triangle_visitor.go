package geometry

import (
	"encoding/binary"
	"math"

	"github.com/Carmen-Shannon/oxy-render/common"
	"github.com/Carmen-Shannon/oxy-render/engine/frontend"
	"github.com/Carmen-Shannon/oxy-render/engine/raycast"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/gogpu/gputypes"
)

// Resources resolves the nodes a geometry renderer refers to. Lookups return nil for unknown ids.
type Resources interface {
	LookupGeometry(id common.NodeId) *Geometry
	LookupAttribute(id common.NodeId) *Attribute
	LookupBuffer(id common.NodeId) *Buffer
}

// TriangleVisitFunc receives one triangle. Vertices arrive in reverse order: ndx and v hold the third, second and
// first vertex of the primitive, in that order.
type TriangleVisitFunc func(triangle int, ndx [3]uint32, v [3]mgl32.Vec3)

// positionReader reads float positions out of an attribute's buffer.
type positionReader struct {
	data   []byte
	offset uint32
	stride uint32
	count  uint32
}

func newPositionReader(res Resources, attr *Attribute) (positionReader, bool) {
	if attr == nil || attr.VertexBaseType() != frontend.VertexBaseTypeFloat || attr.VertexSize() < 3 {
		return positionReader{}, false
	}
	buf := res.LookupBuffer(attr.BufferID())
	if buf == nil {
		return positionReader{}, false
	}
	return positionReader{
		data:   buf.Data(),
		offset: attr.ByteOffset(),
		stride: attr.ElementStride(),
		count:  attr.Count(),
	}, true
}

func (r positionReader) at(i uint32) (mgl32.Vec3, bool) {
	if i >= r.count {
		return mgl32.Vec3{}, false
	}
	off := uint64(r.offset) + uint64(i)*uint64(r.stride)
	if off+12 > uint64(len(r.data)) {
		return mgl32.Vec3{}, false
	}
	var v mgl32.Vec3
	for c := range 3 {
		bits := binary.LittleEndian.Uint32(r.data[off+uint64(c)*4:])
		v[c] = math.Float32frombits(bits)
	}
	return v, true
}

// indexReader reads u8, u16 or u32 indices out of an attribute's buffer.
type indexReader struct {
	data     []byte
	offset   uint64
	size     uint32
	count    uint32
	baseType frontend.VertexBaseType
}

func newIndexReader(res Resources, attr *Attribute, extraOffset int32) (indexReader, bool) {
	switch attr.VertexBaseType() {
	case frontend.VertexBaseTypeUnsignedByte, frontend.VertexBaseTypeUnsignedShort, frontend.VertexBaseTypeUnsignedInt:
	default:
		return indexReader{}, false
	}
	buf := res.LookupBuffer(attr.BufferID())
	if buf == nil {
		return indexReader{}, false
	}
	return indexReader{
		data:     buf.Data(),
		offset:   uint64(attr.ByteOffset()) + uint64(max(extraOffset, 0)),
		size:     attr.ComponentSize(),
		count:    attr.Count(),
		baseType: attr.VertexBaseType(),
	}, true
}

func (r indexReader) at(i uint32) (uint32, bool) {
	if i >= r.count {
		return 0, false
	}
	off := r.offset + uint64(i)*uint64(r.size)
	if off+uint64(r.size) > uint64(len(r.data)) {
		return 0, false
	}
	switch r.baseType {
	case frontend.VertexBaseTypeUnsignedByte:
		return uint32(r.data[off]), true
	case frontend.VertexBaseTypeUnsignedShort:
		return uint32(binary.LittleEndian.Uint16(r.data[off:])), true
	default:
		return binary.LittleEndian.Uint32(r.data[off:]), true
	}
}

// findAttributes picks the position attribute (the geometry's explicit choice, else the one named vertexPosition)
// and the index attribute, if any.
func findAttributes(res Resources, geom *Geometry) (position, index *Attribute) {
	if id := geom.BoundingPositionAttribute(); !id.IsNull() {
		position = res.LookupAttribute(id)
	}
	for _, id := range geom.AttributeIDs() {
		attr := res.LookupAttribute(id)
		if attr == nil {
			continue
		}
		switch {
		case attr.AttributeType() == frontend.AttributeTypeIndex:
			if index == nil {
				index = attr
			}
		case position == nil && attr.Name() == frontend.DefaultPositionAttributeName:
			position = attr
		}
	}
	return position, index
}

// VisitTriangles walks every triangle of the renderer's geometry. Only triangle lists and strips produce triangles.
// Triangles referencing vertices outside the position data are skipped.
//
// Parameters:
//   - res: resolves geometry, attributes and buffers
//   - gr: the geometry renderer to walk
//   - fn: called once per triangle
//
// Returns:
//   - bool: false if the geometry or its position data could not be resolved
func VisitTriangles(res Resources, gr *GeometryRenderer, fn TriangleVisitFunc) bool {
	geom := res.LookupGeometry(gr.GeometryID())
	if geom == nil {
		return false
	}
	posAttr, idxAttr := findAttributes(res, geom)
	positions, ok := newPositionReader(res, posAttr)
	if !ok {
		return false
	}

	var indices func(i uint32) (uint32, bool)
	var first, count uint32
	if idxAttr != nil {
		reader, ok := newIndexReader(res, idxAttr, gr.IndexBufferByteOffset())
		if !ok {
			return false
		}
		indices = reader.at
		first = uint32(max(gr.IndexOffset(), 0))
		count = reader.count
	} else {
		indices = func(i uint32) (uint32, bool) { return i, i < positions.count }
		first = uint32(max(gr.FirstVertex(), 0))
		count = positions.count
	}
	if vc := gr.VertexCount(); vc > 0 && first+uint32(vc) < count {
		count = first + uint32(vc)
	}

	restart := gr.PrimitiveRestartEnabled() && idxAttr != nil
	restartValue := uint32(gr.RestartIndexValue())

	triangle := 0
	emit := func(i0, i1, i2 uint32) {
		v0, ok0 := positions.at(i0)
		v1, ok1 := positions.at(i1)
		v2, ok2 := positions.at(i2)
		if !ok0 || !ok1 || !ok2 {
			return
		}
		fn(triangle, [3]uint32{i2, i1, i0}, [3]mgl32.Vec3{v2, v1, v0})
		triangle++
	}

	switch gr.PrimitiveType() {
	case gputypes.PrimitiveTopologyTriangleList:
		for i := first; i+2 < count; i += 3 {
			i0, ok0 := indices(i)
			i1, ok1 := indices(i + 1)
			i2, ok2 := indices(i + 2)
			if ok0 && ok1 && ok2 {
				emit(i0, i1, i2)
			}
		}
	case gputypes.PrimitiveTopologyTriangleStrip:
		var strip []uint32
		for i := first; i < count; i++ {
			idx, ok := indices(i)
			if !ok {
				break
			}
			if restart && idx == restartValue {
				strip = strip[:0]
				continue
			}
			strip = append(strip, idx)
			if n := len(strip); n >= 3 {
				emit(strip[n-3], strip[n-2], strip[n-1])
			}
		}
	}
	return true
}

// ReadPositions returns every position of the geometry's position attribute.
//
// Returns:
//   - []mgl32.Vec3: the positions, nil if they cannot be resolved
func ReadPositions(res Resources, geom *Geometry) []mgl32.Vec3 {
	posAttr, _ := findAttributes(res, geom)
	positions, ok := newPositionReader(res, posAttr)
	if !ok {
		return nil
	}
	out := make([]mgl32.Vec3, 0, positions.count)
	for i := range positions.count {
		v, ok := positions.at(i)
		if !ok {
			break
		}
		out = append(out, v)
	}
	return out
}

// BuildTriangleVolumes collects the renderer's triangles as bounding volumes tagged with id.
// Each volume is built from the visited vertices in visit order, which restores the primitive's own winding in the
// intersection test.
func BuildTriangleVolumes(res Resources, gr *GeometryRenderer, id common.NodeId) []raycast.TriangleBoundingVolume {
	volumes, _ := CollectTriangles(res, gr, id)
	return volumes
}

// CollectTriangles is BuildTriangleVolumes that also returns the vertex indices of each volume, in visit order.
func CollectTriangles(res Resources, gr *GeometryRenderer, id common.NodeId) ([]raycast.TriangleBoundingVolume, [][3]uint32) {
	var (
		volumes []raycast.TriangleBoundingVolume
		indices [][3]uint32
	)
	VisitTriangles(res, gr, func(_ int, ndx [3]uint32, v [3]mgl32.Vec3) {
		volumes = append(volumes, raycast.NewTriangleBoundingVolume(id, v[0], v[1], v[2]))
		indices = append(indices, ndx)
	})
	return volumes, indices
}
