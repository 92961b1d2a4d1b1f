package frontend

import (
	"github.com/Carmen-Shannon/oxy-render/common"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/gogpu/gputypes"
)

// Transform is the local transform component of an entity.
type Transform struct {
	Base
	common.Transform
}

func (Transform) Kind() Kind { return KindTransform }

// CameraLens is the projection component of a camera entity.
type CameraLens struct {
	Base
	Projection mgl32.Mat4
	Exposure   float32
}

func (CameraLens) Kind() Kind { return KindCameraLens }

// Layer tags entities for LayerFilter frame-graph nodes. A recursive layer also applies to all descendants.
type Layer struct {
	Base
	Recursive bool
}

func (Layer) Kind() Kind { return KindLayer }

// Buffer is a blob of vertex or index data.
type Buffer struct {
	Base
	Data  []byte
	Usage gputypes.BufferUsage
}

func (Buffer) Kind() Kind { return KindBuffer }

// VertexBaseType is the scalar type of one attribute component.
type VertexBaseType uint8

const (
	VertexBaseTypeByte VertexBaseType = iota
	VertexBaseTypeUnsignedByte
	VertexBaseTypeShort
	VertexBaseTypeUnsignedShort
	VertexBaseTypeInt
	VertexBaseTypeUnsignedInt
	VertexBaseTypeHalfFloat
	VertexBaseTypeFloat
	VertexBaseTypeDouble
)

// AttributeType says how an attribute is consumed.
type AttributeType uint8

const (
	AttributeTypeVertex AttributeType = iota
	AttributeTypeIndex
	AttributeTypeDrawIndirect
)

// DefaultPositionAttributeName is the attribute name used for positions when a geometry does not name one explicitly.
const DefaultPositionAttributeName = "vertexPosition"

// Attribute describes how to read one vertex stream out of a Buffer.
type Attribute struct {
	Base
	Buffer         common.NodeId
	Name           string
	VertexBaseType VertexBaseType
	VertexSize     uint32
	Count          uint32
	ByteStride     uint32
	ByteOffset     uint32
	Divisor        uint32
	AttributeType  AttributeType
}

func (Attribute) Kind() Kind { return KindAttribute }

// Geometry groups attributes.
type Geometry struct {
	Base
	Attributes []common.NodeId
	// BoundingVolumePositionAttribute overrides the attribute used for bounds and picking. Null selects by name.
	BoundingVolumePositionAttribute common.NodeId
}

func (Geometry) Kind() Kind { return KindGeometry }

// GeometryRenderer is the drawable component of an entity.
type GeometryRenderer struct {
	Base
	Geometry                common.NodeId
	PrimitiveType           gputypes.PrimitiveTopology
	InstanceCount           int32
	VertexCount             int32
	IndexOffset             int32
	FirstInstance           int32
	FirstVertex             int32
	IndexBufferByteOffset   int32
	RestartIndexValue       int32
	VerticesPerPatch        int32
	PrimitiveRestartEnabled bool
}

func (GeometryRenderer) Kind() Kind { return KindGeometryRenderer }

// NewGeometryRenderer returns a snapshot with the front-end defaults: one instance and no restart index.
func NewGeometryRenderer(id common.NodeId, geometry common.NodeId) GeometryRenderer {
	return GeometryRenderer{
		Base:              NewBase(id),
		Geometry:          geometry,
		PrimitiveType:     gputypes.PrimitiveTopologyTriangleList,
		InstanceCount:     1,
		RestartIndexValue: -1,
	}
}

// Material binds a shader program and its render states to an entity.
type Material struct {
	Base
	Shader       common.NodeId
	RenderStates []RenderState
}

func (Material) Kind() Kind { return KindMaterial }

// ComputeRunType controls how long a compute command keeps dispatching.
type ComputeRunType uint8

const (
	ComputeRunContinuous ComputeRunType = iota
	ComputeRunManual
)

// ComputeCommand is the compute dispatch component of an entity.
type ComputeCommand struct {
	Base
	WorkGroupX int32
	WorkGroupY int32
	WorkGroupZ int32
	RunType    ComputeRunType
	// FrameCount is the number of frames a manual command dispatches before disabling itself.
	FrameCount int32
}

func (ComputeCommand) Kind() Kind { return KindComputeCommand }

// Skeleton carries joint data directly.
type Skeleton struct {
	Base
	JointNames      []string
	JointLocalPoses []common.Transform
}

func (Skeleton) Kind() Kind { return KindSkeleton }

// SkeletonLoader names a glTF file whose first skin provides the joints.
type SkeletonLoader struct {
	Base
	Source string
}

func (SkeletonLoader) Kind() Kind { return KindSkeletonLoader }
