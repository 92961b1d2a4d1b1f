package jobs

import (
	"github.com/Carmen-Shannon/oxy-render/engine/entity"
	"github.com/Carmen-Shannon/oxy-render/engine/frontend"
	"github.com/Carmen-Shannon/oxy-render/engine/manager"
	"github.com/go-gl/mathgl/mgl32"
)

// UpdateWorldTransformJob computes world = parent world × local for every entity reachable from a root.
// Entities without a transform component inherit their parent's world matrix unchanged.
type UpdateWorldTransformJob struct {
	managers *manager.NodeManagers
}

func NewUpdateWorldTransformJob(m *manager.NodeManagers) *UpdateWorldTransformJob {
	return &UpdateWorldTransformJob{managers: m}
}

func (j *UpdateWorldTransformJob) Run() {
	walkPreOrder(j.managers.Entities, func(e, parent *entity.Entity) {
		world := mgl32.Ident4()
		if parent != nil {
			world = parent.WorldTransform()
		}
		if t := j.managers.Transforms.Lookup(e.ComponentID(frontend.KindTransform)); t != nil && t.IsEnabled() {
			world = world.Mul4(t.Matrix())
		}
		e.SetWorldTransform(world)
	})
}
