package renderer

import (
	"github.com/Carmen-Shannon/oxy-render/common"
	"github.com/Carmen-Shannon/oxy-render/engine/material"
	"github.com/gogpu/gputypes"
)

// CommandType says whether a RenderCommand draws or dispatches.
type CommandType uint8

const (
	CommandDraw CommandType = iota
	CommandCompute
)

func (t CommandType) String() string {
	if t == CommandCompute {
		return "Compute"
	}
	return "Draw"
}

// RenderCommand is the flattened description of one draw or compute dispatch. Commands are built fresh every frame
// and never mutated once handed to a view. Every field takes part in Equal, so the struct must stay comparable.
type RenderCommand struct {
	Type CommandType

	EntityID           common.NodeId
	GeometryID         common.NodeId
	GeometryRendererID common.NodeId
	MaterialID         common.NodeId
	ShaderID           common.NodeId
	StateSet           *material.RenderStateSet
	ComputeCommandID   common.NodeId

	PrimitiveType            gputypes.PrimitiveTopology
	IndexAttributeDataType   gputypes.IndexFormat
	IndexAttributeByteOffset int32
	VertexCount              int32
	InstanceCount            int32
	IndexOffset              int32
	FirstVertex              int32
	FirstInstance            int32
	VerticesPerPatch         int32
	RestartIndexValue        int32

	IndirectDrawBufferID        common.NodeId
	IndirectAttributeByteOffset int32

	WorkGroups [3]int32

	DrawIndexed             bool
	DrawIndirect            bool
	PrimitiveRestartEnabled bool
	IsValid                 bool

	Depth      float32
	ChangeCost uint32
}

// NewRenderCommand returns a draw command with no shader or state set, triangle-list topology, 16-bit indices and
// restart index -1. Every count, offset and work group dimension is zero.
//
// Returns:
//   - RenderCommand: the default command
func NewRenderCommand() RenderCommand {
	return RenderCommand{
		Type:                   CommandDraw,
		PrimitiveType:          gputypes.PrimitiveTopologyTriangleList,
		IndexAttributeDataType: gputypes.IndexFormatUint16,
		RestartIndexValue:      -1,
	}
}

// Equal reports whether every field of c equals the matching field of other. Floats compare exactly.
func (c RenderCommand) Equal(other RenderCommand) bool {
	return c == other
}
