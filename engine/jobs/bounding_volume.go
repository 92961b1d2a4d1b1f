package jobs

import (
	"github.com/Carmen-Shannon/oxy-render/common"
	"github.com/Carmen-Shannon/oxy-render/engine/entity"
	"github.com/Carmen-Shannon/oxy-render/engine/frontend"
	"github.com/Carmen-Shannon/oxy-render/engine/geometry"
	"github.com/Carmen-Shannon/oxy-render/engine/manager"
	"github.com/Carmen-Shannon/oxy-render/engine/raycast"
)

// CalculateBoundingVolumeJob fits a local bounding sphere to the positions of every entity's geometry and records
// the geometry's axis-aligned extents. Entities without readable positions get a null sphere.
type CalculateBoundingVolumeJob struct {
	managers *manager.NodeManagers
}

func NewCalculateBoundingVolumeJob(m *manager.NodeManagers) *CalculateBoundingVolumeJob {
	return &CalculateBoundingVolumeJob{managers: m}
}

func (j *CalculateBoundingVolumeJob) Run() {
	j.managers.Entities.Range(func(id common.NodeId, e *entity.Entity) bool {
		e.SetLocalBoundingVolume(raycast.Sphere{}.WithID(id))

		gr := j.managers.GeometryRenderers.Lookup(e.ComponentID(frontend.KindGeometryRenderer))
		if gr == nil {
			return true
		}
		geom := j.managers.LookupGeometry(gr.GeometryID())
		if geom == nil {
			return true
		}
		positions := geometry.ReadPositions(j.managers, geom)
		if len(positions) == 0 {
			return true
		}

		lo, hi := positions[0], positions[0]
		for _, p := range positions[1:] {
			for i := range 3 {
				lo[i] = min(lo[i], p[i])
				hi[i] = max(hi[i], p[i])
			}
		}
		geom.SetExtent(lo, hi)
		e.SetLocalBoundingVolume(raycast.SphereFromPoints(id, positions))
		return true
	})
}

// UpdateWorldBoundingVolumeJob maps every local sphere through its entity's world matrix.
type UpdateWorldBoundingVolumeJob struct {
	manager *EntityManager
}

func NewUpdateWorldBoundingVolumeJob(m *EntityManager) *UpdateWorldBoundingVolumeJob {
	return &UpdateWorldBoundingVolumeJob{manager: m}
}

func (j *UpdateWorldBoundingVolumeJob) Run() {
	j.manager.Range(func(_ common.NodeId, e *entity.Entity) bool {
		e.SetWorldBoundingVolume(e.LocalBoundingVolume().Transformed(e.WorldTransform()))
		return true
	})
}

// ExpandBoundingVolumeJob grows each entity's world sphere to contain its whole subtree, children first.
type ExpandBoundingVolumeJob struct {
	manager *EntityManager
}

func NewExpandBoundingVolumeJob(m *EntityManager) *ExpandBoundingVolumeJob {
	return &ExpandBoundingVolumeJob{manager: m}
}

func (j *ExpandBoundingVolumeJob) Run() {
	walkPostOrder(j.manager, func(e *entity.Entity) {
		bounds := e.WorldBoundingVolume()
		for _, id := range e.ChildIDs() {
			if c := j.manager.Lookup(id); c != nil {
				bounds = bounds.ExpandToContain(c.WorldBoundingVolumeWithChildren())
			}
		}
		e.SetWorldBoundingVolumeWithChildren(bounds)
	})
}
