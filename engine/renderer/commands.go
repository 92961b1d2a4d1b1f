package renderer

import (
	"cmp"
	"slices"

	"github.com/Carmen-Shannon/oxy-render/common"
	"github.com/Carmen-Shannon/oxy-render/engine/entity"
	"github.com/Carmen-Shannon/oxy-render/engine/frontend"
	"github.com/Carmen-Shannon/oxy-render/engine/geometry"
	"github.com/Carmen-Shannon/oxy-render/engine/manager"
	"github.com/Carmen-Shannon/oxy-render/engine/material"
	"github.com/go-gl/mathgl/mgl32"
)

// GenerateCommands fills v.Commands from the entities in m, then sorts them by the view's sort types.
// Entities are visited in id order so that unsorted views are stable from frame to frame. A NoDraw view gets no
// commands.
//
// Parameters:
//   - m: the managers holding the scene
//   - v: the view to fill
func GenerateCommands(m *manager.NodeManagers, v *RenderView) {
	v.Commands = v.Commands[:0]
	if v.NoDraw {
		return
	}

	var frustum common.Frustum
	if v.FrustumCulling {
		frustum = common.ExtractFrustumFromMatrix(v.ViewProjection())
	}

	entities := m.Entities.All()
	slices.SortFunc(entities, func(a, b *entity.Entity) int { return cmp.Compare(a.PeerID(), b.PeerID()) })

	for _, e := range entities {
		if !e.IsTreeEnabled() {
			continue
		}
		if len(v.LayerFilters) > 0 && !passesLayerFilters(m, v.LayerFilters, effectiveLayers(m, e)) {
			continue
		}
		mat := m.Materials.Lookup(e.ComponentID(frontend.KindMaterial))
		if mat == nil || !mat.IsEnabled() {
			continue
		}

		var cmd RenderCommand
		var ok bool
		if v.Compute {
			cmd, ok = computeCommand(m, v, e)
		} else {
			bounds := e.WorldBoundingVolume()
			if v.FrustumCulling && !bounds.IsNull() && !frustum.ContainsSphere(bounds.Center(), bounds.Radius()) {
				continue
			}
			cmd, ok = drawCommand(m, e)
		}
		if !ok {
			continue
		}

		cmd.EntityID = e.PeerID()
		cmd.MaterialID = mat.PeerID()
		cmd.ShaderID = mat.ShaderID()
		cmd.StateSet = commandStateSet(mat.StateSet(), v.StateSet)
		cmd.ChangeCost = uint32(cmd.StateSet.ChangeCost(v.StateSet))
		center := e.WorldBoundingVolume().Center()
		cmd.Depth = mgl32.TransformCoordinate(center, v.ViewMatrix).Z()
		v.Commands = append(v.Commands, cmd)
	}

	SortCommands(v.Commands, v.SortTypes)
}

// commandStateSet layers the view's render states under the material's. It returns nil when neither sets any state.
func commandStateSet(materialStates, viewStates *material.RenderStateSet) *material.RenderStateSet {
	if materialStates.Len() == 0 && viewStates.Len() == 0 {
		return nil
	}
	set := materialStates.Clone()
	set.Merge(viewStates)
	return set
}

func drawCommand(m *manager.NodeManagers, e *entity.Entity) (RenderCommand, bool) {
	gr := m.GeometryRenderers.Lookup(e.ComponentID(frontend.KindGeometryRenderer))
	if gr == nil || !gr.IsEnabled() {
		return RenderCommand{}, false
	}
	geom := m.LookupGeometry(gr.GeometryID())
	if geom == nil || !geom.IsEnabled() {
		return RenderCommand{}, false
	}

	cmd := NewRenderCommand()
	cmd.GeometryID = geom.PeerID()
	cmd.GeometryRendererID = gr.PeerID()
	cmd.PrimitiveType = gr.PrimitiveType()
	cmd.VertexCount = gr.VertexCount()
	cmd.InstanceCount = gr.InstanceCount()
	cmd.IndexOffset = gr.IndexOffset()
	cmd.FirstVertex = gr.FirstVertex()
	cmd.FirstInstance = gr.FirstInstance()
	cmd.VerticesPerPatch = gr.VerticesPerPatch()
	cmd.RestartIndexValue = gr.RestartIndexValue()
	cmd.PrimitiveRestartEnabled = gr.PrimitiveRestartEnabled()

	var estimated int32
	for _, id := range geom.AttributeIDs() {
		attr := m.LookupAttribute(id)
		if attr == nil {
			continue
		}
		switch attr.AttributeType() {
		case frontend.AttributeTypeIndex:
			cmd.DrawIndexed = true
			cmd.IndexAttributeDataType = attr.IndexFormat()
			cmd.IndexAttributeByteOffset = int32(attr.ByteOffset()) + gr.IndexBufferByteOffset()
			estimated = int32(attr.Count())
		case frontend.AttributeTypeDrawIndirect:
			cmd.DrawIndirect = true
			cmd.IndirectDrawBufferID = attr.BufferID()
			cmd.IndirectAttributeByteOffset = int32(attr.ByteOffset())
		case frontend.AttributeTypeVertex:
			if !cmd.DrawIndexed && isPositionAttribute(geom, attr) {
				estimated = int32(attr.Count())
			}
		}
	}
	if cmd.VertexCount == 0 {
		cmd.VertexCount = estimated
	}
	cmd.IsValid = cmd.VertexCount > 0 || cmd.DrawIndirect
	return cmd, true
}

func isPositionAttribute(geom *geometry.Geometry, attr *geometry.Attribute) bool {
	if id := geom.BoundingPositionAttribute(); !id.IsNull() {
		return attr.PeerID() == id
	}
	return attr.Name() == frontend.DefaultPositionAttributeName
}

// computeCommand builds a dispatch. Each work group dimension is the larger of the view's and the command's.
func computeCommand(m *manager.NodeManagers, v *RenderView, e *entity.Entity) (RenderCommand, bool) {
	cc := m.ComputeCommands.Lookup(e.ComponentID(frontend.KindComputeCommand))
	if cc == nil || !cc.IsEnabled() {
		return RenderCommand{}, false
	}
	cmd := NewRenderCommand()
	cmd.Type = CommandCompute
	cmd.ComputeCommandID = cc.PeerID()
	groups := cc.WorkGroups()
	for i := range 3 {
		cmd.WorkGroups[i] = max(v.WorkGroups[i], groups[i])
	}
	cmd.IsValid = true
	return cmd, true
}

// SortCommands stably orders commands by each sort type in turn; earlier types take precedence.
// With no sort types the order is left untouched.
//
// Parameters:
//   - commands: the commands to sort in place
//   - sortTypes: the keys, highest priority first
func SortCommands(commands []RenderCommand, sortTypes []frontend.SortType) {
	if len(sortTypes) == 0 {
		return
	}
	slices.SortStableFunc(commands, func(a, b RenderCommand) int {
		for _, st := range sortTypes {
			var c int
			switch st {
			case frontend.SortStateChangeCost:
				c = cmp.Compare(b.ChangeCost, a.ChangeCost)
			case frontend.SortBackToFront:
				c = cmp.Compare(a.Depth, b.Depth)
			case frontend.SortFrontToBack:
				c = cmp.Compare(b.Depth, a.Depth)
			case frontend.SortMaterial:
				c = cmp.Compare(a.ShaderID, b.ShaderID)
			}
			if c != 0 {
				return c
			}
		}
		return 0
	})
}
