// Package jobs holds the per-frame batch jobs of the backend. Every job is a synchronous Run over manager state;
// the renderer wires them into a dependency graph on the scheduler.
package jobs

import (
	"github.com/Carmen-Shannon/oxy-render/common"
	"github.com/Carmen-Shannon/oxy-render/engine/backend"
	"github.com/Carmen-Shannon/oxy-render/engine/entity"
)

// EntityManager is the arena the hierarchy jobs walk.
type EntityManager = backend.Manager[entity.Entity]

// UpdateEntityHierarchyJob rebuilds every entity's child list from the parent ids. All child lists are cleared
// before any is rebuilt, so the result does not depend on iteration order. Entities whose parent does not resolve
// are roots.
type UpdateEntityHierarchyJob struct {
	manager *EntityManager
}

// NewUpdateEntityHierarchyJob returns a job with no manager attached.
func NewUpdateEntityHierarchyJob() *UpdateEntityHierarchyJob {
	return &UpdateEntityHierarchyJob{}
}

// SetManager attaches the entity arena the job rebuilds.
func (j *UpdateEntityHierarchyJob) SetManager(m *EntityManager) { j.manager = m }

func (j *UpdateEntityHierarchyJob) Manager() *EntityManager { return j.manager }

// Run rebuilds the hierarchy. Panics if no manager is attached.
func (j *UpdateEntityHierarchyJob) Run() {
	if j.manager == nil {
		panic("jobs: UpdateEntityHierarchyJob run without an entity manager")
	}
	entities := j.manager.All()

	for _, e := range entities {
		e.ClearEntityHierarchy()
	}
	for _, e := range entities {
		if e.ParentID().IsNull() {
			continue
		}
		if parent := j.manager.Lookup(e.ParentID()); parent != nil && parent != e {
			parent.AppendChildID(e.PeerID())
		}
	}
}

// roots returns the entities whose parent does not resolve to a live entity.
func roots(m *EntityManager) []*entity.Entity {
	var out []*entity.Entity
	m.Range(func(_ common.NodeId, e *entity.Entity) bool {
		if e.ParentID().IsNull() || m.Lookup(e.ParentID()) == nil {
			out = append(out, e)
		}
		return true
	})
	return out
}

// walkPreOrder visits every entity reachable from the roots, parents before children. Entities caught in a parent
// cycle are unreachable and never visited.
func walkPreOrder(m *EntityManager, fn func(e, parent *entity.Entity)) {
	type item struct{ e, parent *entity.Entity }
	visited := make(map[common.NodeId]struct{}, m.Count())
	var stack []item
	rs := roots(m)
	for i := len(rs) - 1; i >= 0; i-- {
		stack = append(stack, item{e: rs[i]})
	}
	for len(stack) > 0 {
		it := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if _, seen := visited[it.e.PeerID()]; seen {
			continue
		}
		visited[it.e.PeerID()] = struct{}{}
		fn(it.e, it.parent)

		children := it.e.ChildIDs()
		for i := len(children) - 1; i >= 0; i-- {
			if c := m.Lookup(children[i]); c != nil {
				stack = append(stack, item{e: c, parent: it.e})
			}
		}
	}
}

// walkPostOrder visits every entity reachable from the roots, children before parents.
func walkPostOrder(m *EntityManager, fn func(e *entity.Entity)) {
	var order []*entity.Entity
	walkPreOrder(m, func(e, _ *entity.Entity) { order = append(order, e) })
	for i := len(order) - 1; i >= 0; i-- {
		fn(order[i])
	}
}

// UpdateTreeEnabledJob computes, for every entity, whether it and all of its ancestors are enabled.
type UpdateTreeEnabledJob struct {
	manager *EntityManager
}

func NewUpdateTreeEnabledJob(m *EntityManager) *UpdateTreeEnabledJob {
	return &UpdateTreeEnabledJob{manager: m}
}

func (j *UpdateTreeEnabledJob) Run() {
	j.manager.Range(func(_ common.NodeId, e *entity.Entity) bool {
		e.SetTreeEnabled(false)
		return true
	})
	walkPreOrder(j.manager, func(e, parent *entity.Entity) {
		enabled := e.IsEnabled()
		if parent != nil {
			enabled = enabled && parent.IsTreeEnabled()
		}
		e.SetTreeEnabled(enabled)
	})
}
