package jobs

import (
	"cmp"
	"slices"

	"github.com/Carmen-Shannon/oxy-render/common"
	"github.com/Carmen-Shannon/oxy-render/engine/entity"
	"github.com/Carmen-Shannon/oxy-render/engine/frontend"
	"github.com/Carmen-Shannon/oxy-render/engine/geometry"
	"github.com/Carmen-Shannon/oxy-render/engine/manager"
	"github.com/Carmen-Shannon/oxy-render/engine/raycast"
	"github.com/go-gl/mathgl/mgl32"
)

// CalcGeometryTriangleVolumesJob rebuilds the cached triangle volumes of every geometry renderer. Volumes are tagged
// with the renderer's id.
type CalcGeometryTriangleVolumesJob struct {
	managers *manager.NodeManagers
}

func NewCalcGeometryTriangleVolumesJob(m *manager.NodeManagers) *CalcGeometryTriangleVolumesJob {
	return &CalcGeometryTriangleVolumesJob{managers: m}
}

func (j *CalcGeometryTriangleVolumesJob) Run() {
	j.managers.GeometryRenderers.Range(func(id common.NodeId, gr *geometry.GeometryRenderer) bool {
		gr.SetTriangleVolumes(geometry.CollectTriangles(j.managers, gr, id))
		return true
	})
}

// RayCastingJob intersects one world-space ray with the cached triangles of every tree-enabled entity.
// Each entity is first tested against its world bounding sphere; surviving entities are tested in local space.
type RayCastingJob struct {
	managers *manager.NodeManagers
	ray      raycast.Ray
	mode     raycast.PickMode
	hits     []raycast.Hit
}

// NewRayCastingJob prepares a ray cast.
//
// Parameters:
//   - m: the managers to search
//   - ray: the world-space ray
//   - mode: PickNearest keeps the closest hit only, PickAll keeps every hit
//
// Returns:
//   - *RayCastingJob: the job
func NewRayCastingJob(m *manager.NodeManagers, ray raycast.Ray, mode raycast.PickMode) *RayCastingJob {
	return &RayCastingJob{managers: m, ray: ray, mode: mode}
}

// Hits returns the hits of the last run, closest first.
func (j *RayCastingJob) Hits() []raycast.Hit { return j.hits }

func (j *RayCastingJob) Run() {
	j.hits = j.hits[:0]
	j.managers.Entities.Range(func(id common.NodeId, e *entity.Entity) bool {
		if !e.IsTreeEnabled() {
			return true
		}
		gr := j.managers.GeometryRenderers.Lookup(e.ComponentID(frontend.KindGeometryRenderer))
		if gr == nil || !gr.IsEnabled() {
			return true
		}
		bounds := e.WorldBoundingVolume()
		if bounds.IsNull() || !bounds.Intersects(j.ray, nil, nil) {
			return true
		}
		j.hits = append(j.hits, j.castEntity(id, e.WorldTransform(), gr)...)
		return true
	})

	slices.SortStableFunc(j.hits, func(a, b raycast.Hit) int { return cmp.Compare(a.Distance, b.Distance) })
	if j.mode == raycast.PickNearest && len(j.hits) > 1 {
		j.hits = j.hits[:1]
	}
}

func (j *RayCastingJob) castEntity(id common.NodeId, world mgl32.Mat4, gr *geometry.GeometryRenderer) []raycast.Hit {
	if world.Det() == 0 {
		return nil
	}
	local := j.ray.Transformed(world.Inv())
	indices := gr.TriangleIndices()

	var hits []raycast.Hit
	for i, vol := range gr.TriangleVolumes() {
		var q, uvw mgl32.Vec3
		if !vol.Intersects(local, &q, &uvw) {
			continue
		}
		point := mgl32.TransformCoordinate(q, world)
		hits = append(hits, raycast.Hit{
			EntityID:      id,
			TriangleIndex: i,
			VertexIndex:   indices[i],
			Intersection:  point,
			Distance:      point.Sub(j.ray.Origin()).Len(),
			Barycentric:   uvw,
		})
	}
	return hits
}
