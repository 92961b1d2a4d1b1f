// Package entity holds the backend entity and the small per-entity components (transform, camera lens, layer).
package entity

import (
	"slices"

	"github.com/Carmen-Shannon/oxy-render/common"
	"github.com/Carmen-Shannon/oxy-render/engine/backend"
	"github.com/Carmen-Shannon/oxy-render/engine/frontend"
	"github.com/Carmen-Shannon/oxy-render/engine/raycast"
	"github.com/go-gl/mathgl/mgl32"
)

// Entity is the backend scene graph node. Parent and child links are ids resolved through the entity manager;
// the child list is rebuilt from parent ids by the hierarchy job rather than maintained incrementally.
type Entity struct {
	backend.BackendNode

	parentID common.NodeId
	childIDs []common.NodeId

	transformID        common.NodeId
	cameraLensID       common.NodeId
	materialID         common.NodeId
	geometryRendererID common.NodeId
	computeCommandID   common.NodeId
	skeletonID         common.NodeId
	layerIDs           []common.NodeId

	treeEnabled                     bool
	worldTransform                  mgl32.Mat4
	localBoundingVolume             raycast.Sphere
	worldBoundingVolume             raycast.Sphere
	worldBoundingVolumeWithChildren raycast.Sphere
}

var _ backend.Node = &Entity{}

// NewEntity returns an entity in its default state.
func NewEntity() *Entity {
	return &Entity{worldTransform: mgl32.Ident4()}
}

// ParentID returns the parent id, which may not resolve to a live entity.
func (e *Entity) ParentID() common.NodeId { return e.parentID }

// ChildIDs returns the children found by the last hierarchy rebuild. The slice must not be modified.
func (e *Entity) ChildIDs() []common.NodeId { return e.childIDs }

// ClearEntityHierarchy drops the child list.
func (e *Entity) ClearEntityHierarchy() {
	e.childIDs = e.childIDs[:0]
}

// AppendChildID records id as a child. Ids already present are ignored.
func (e *Entity) AppendChildID(id common.NodeId) {
	if !slices.Contains(e.childIDs, id) {
		e.childIDs = append(e.childIDs, id)
	}
}

// ComponentID returns the id of the single component of the given kind, or null.
func (e *Entity) ComponentID(kind frontend.Kind) common.NodeId {
	switch kind {
	case frontend.KindTransform:
		return e.transformID
	case frontend.KindCameraLens:
		return e.cameraLensID
	case frontend.KindMaterial:
		return e.materialID
	case frontend.KindGeometryRenderer:
		return e.geometryRendererID
	case frontend.KindComputeCommand:
		return e.computeCommandID
	case frontend.KindSkeleton, frontend.KindSkeletonLoader:
		return e.skeletonID
	case frontend.KindLayer:
		if len(e.layerIDs) > 0 {
			return e.layerIDs[0]
		}
	}
	return common.NullNodeId
}

// LayerIDs returns the attached layers. The slice must not be modified.
func (e *Entity) LayerIDs() []common.NodeId { return e.layerIDs }

// Components returns every attached component as (kind, id) pairs.
func (e *Entity) Components() []frontend.ComponentRef {
	var out []frontend.ComponentRef
	single := []struct {
		kind frontend.Kind
		id   common.NodeId
	}{
		{frontend.KindTransform, e.transformID},
		{frontend.KindCameraLens, e.cameraLensID},
		{frontend.KindMaterial, e.materialID},
		{frontend.KindGeometryRenderer, e.geometryRendererID},
		{frontend.KindComputeCommand, e.computeCommandID},
		{frontend.KindSkeleton, e.skeletonID},
	}
	for _, c := range single {
		if !c.id.IsNull() {
			out = append(out, frontend.ComponentRef{Kind: c.kind, Id: c.id})
		}
	}
	for _, id := range e.layerIDs {
		out = append(out, frontend.ComponentRef{Kind: frontend.KindLayer, Id: id})
	}
	return out
}

// IsTreeEnabled reports whether the entity and all of its ancestors are enabled.
func (e *Entity) IsTreeEnabled() bool { return e.treeEnabled }

func (e *Entity) SetTreeEnabled(enabled bool) { e.treeEnabled = enabled }

// WorldTransform returns the world matrix computed by the world transform job.
func (e *Entity) WorldTransform() mgl32.Mat4 { return e.worldTransform }

func (e *Entity) SetWorldTransform(m mgl32.Mat4) { e.worldTransform = m }

func (e *Entity) LocalBoundingVolume() raycast.Sphere { return e.localBoundingVolume }

func (e *Entity) SetLocalBoundingVolume(s raycast.Sphere) { e.localBoundingVolume = s }

func (e *Entity) WorldBoundingVolume() raycast.Sphere { return e.worldBoundingVolume }

func (e *Entity) SetWorldBoundingVolume(s raycast.Sphere) { e.worldBoundingVolume = s }

// WorldBoundingVolumeWithChildren returns the world bounds of the entity and its whole subtree.
func (e *Entity) WorldBoundingVolumeWithChildren() raycast.Sphere {
	return e.worldBoundingVolumeWithChildren
}

func (e *Entity) SetWorldBoundingVolumeWithChildren(s raycast.Sphere) {
	e.worldBoundingVolumeWithChildren = s
}

// SyncFromFrontEnd copies the parent id and component set, raising one combined dirty mark for everything that changed.
func (e *Entity) SyncFromFrontEnd(fe frontend.Node, firstTime bool) {
	node, ok := fe.(frontend.Entity)
	if !ok {
		return
	}

	var changes backend.DirtyFlag
	if e.SyncCommon(fe, firstTime) {
		changes |= backend.EntityEnabledDirty
	}
	if firstTime || e.parentID != node.Parent {
		e.parentID = node.Parent
		changes |= backend.EntityHierarchyDirty
	}

	var next Entity
	for _, ref := range node.Components {
		switch ref.Kind {
		case frontend.KindTransform:
			next.transformID = ref.Id
		case frontend.KindCameraLens:
			next.cameraLensID = ref.Id
		case frontend.KindMaterial:
			next.materialID = ref.Id
		case frontend.KindGeometryRenderer:
			next.geometryRendererID = ref.Id
		case frontend.KindComputeCommand:
			next.computeCommandID = ref.Id
		case frontend.KindSkeleton, frontend.KindSkeletonLoader:
			next.skeletonID = ref.Id
		case frontend.KindLayer:
			if !slices.Contains(next.layerIDs, ref.Id) {
				next.layerIDs = append(next.layerIDs, ref.Id)
			}
		}
	}

	if e.transformID != next.transformID {
		e.transformID = next.transformID
		changes |= backend.TransformDirty
	}
	if e.cameraLensID != next.cameraLensID {
		e.cameraLensID = next.cameraLensID
		changes |= backend.ParameterDirty
	}
	if e.materialID != next.materialID {
		e.materialID = next.materialID
		changes |= backend.MaterialDirty
	}
	if e.geometryRendererID != next.geometryRendererID {
		e.geometryRendererID = next.geometryRendererID
		changes |= backend.GeometryDirty
	}
	if e.computeCommandID != next.computeCommandID {
		e.computeCommandID = next.computeCommandID
		changes |= backend.ComputeDirty
	}
	if e.skeletonID != next.skeletonID {
		e.skeletonID = next.skeletonID
		changes |= backend.SkeletonDataDirty
	}
	if !slices.Equal(e.layerIDs, next.layerIDs) {
		e.layerIDs = next.layerIDs
		changes |= backend.LayersDirty
	}

	if changes != 0 {
		e.MarkDirtyFrom(changes, e)
	}
}

// Cleanup resets the entity to its default state, keeping its id and renderer link.
func (e *Entity) Cleanup() {
	e.ResetCommon()
	*e = Entity{BackendNode: e.BackendNode, worldTransform: mgl32.Ident4()}
}
