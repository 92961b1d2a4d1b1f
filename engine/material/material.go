// Package material holds the material backend node and render state sets.
package material

import (
	"slices"

	"github.com/Carmen-Shannon/oxy-render/common"
	"github.com/Carmen-Shannon/oxy-render/engine/backend"
	"github.com/Carmen-Shannon/oxy-render/engine/frontend"
)

// Material binds a shader program and render states to the entities referencing it.
type Material struct {
	backend.BackendNode
	shaderID     common.NodeId
	renderStates []frontend.RenderState
	stateSet     *RenderStateSet
}

var _ backend.Node = &Material{}

// NewMaterial returns an empty material.
func NewMaterial() *Material {
	return &Material{stateSet: NewRenderStateSet()}
}

func (m *Material) ShaderID() common.NodeId { return m.shaderID }

// StateSet returns the material's render states. The set must not be modified.
func (m *Material) StateSet() *RenderStateSet { return m.stateSet }

func (m *Material) SyncFromFrontEnd(fe frontend.Node, firstTime bool) {
	node, ok := fe.(frontend.Material)
	if !ok {
		return
	}
	dirty := m.SyncCommon(fe, firstTime) || firstTime
	if m.shaderID != node.Shader {
		m.shaderID = node.Shader
		dirty = true
	}
	if !slices.Equal(m.renderStates, node.RenderStates) {
		m.renderStates = slices.Clone(node.RenderStates)
		m.stateSet = NewRenderStateSet(m.renderStates...)
		dirty = true
	}
	if dirty {
		m.MarkDirtyFrom(backend.MaterialDirty, m)
	}
}

func (m *Material) Cleanup() {
	m.ResetCommon()
	m.shaderID = common.NullNodeId
	m.renderStates = nil
	m.stateSet = NewRenderStateSet()
}
