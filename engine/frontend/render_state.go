package frontend

// RenderStateType identifies a fixed-function pipeline state.
type RenderStateType uint8

const (
	RenderStateDepthTest RenderStateType = iota
	RenderStateNoDepthMask
	RenderStateCullFace
	RenderStateFrontFace
	RenderStateBlendEquation
	RenderStateBlendEquationArguments
	RenderStateAlphaTest
	RenderStateScissorTest
	RenderStateStencilTest
	RenderStateColorMask
	RenderStatePointSize
	RenderStateLineWidth
	RenderStateMultiSampleAntiAliasing
	renderStateTypeCount
)

// RenderStateTypeCount is the number of distinct render state types.
const RenderStateTypeCount = int(renderStateTypeCount)

// RenderState is a single state value. Params hold the state's arguments, e.g. the depth function or the cull mode.
// Two states are the same when both Type and Params match.
type RenderState struct {
	Type   RenderStateType
	Params [4]float32
}
