// Package renderer turns the backend scene into per-frame render views. It collects dirty bits raised by backend
// nodes, runs the matching job graph on the scheduler and generates the sorted commands of every frame-graph leaf.
package renderer

import (
	"sync"
	"sync/atomic"

	"github.com/Carmen-Shannon/oxy-render/common"
	"github.com/Carmen-Shannon/oxy-render/engine/backend"
	"github.com/Carmen-Shannon/oxy-render/engine/framegraph"
	"github.com/Carmen-Shannon/oxy-render/engine/geometry"
	"github.com/Carmen-Shannon/oxy-render/engine/jobs"
	"github.com/Carmen-Shannon/oxy-render/engine/manager"
	"github.com/Carmen-Shannon/oxy-render/engine/raycast"
	"github.com/Carmen-Shannon/oxy-render/engine/scheduler"
	"github.com/pkg/errors"
)

// structuralDirty are the bits whose jobs must run before anything reads hierarchy, transforms or bounds.
const structuralDirty = backend.EntityHierarchyDirty | backend.EntityEnabledDirty | backend.TransformDirty |
	backend.GeometryDirty | backend.BuffersDirty

// FrameStats summarises the last frame.
type FrameStats struct {
	Frame           uint64
	Dirty           backend.DirtyFlag
	Views           int
	Commands        int
	BuffersLoaded   int
	BuffersReleased int
	JobsRun         uint64
}

// renderer is the implementation of the Renderer interface.
type renderer struct {
	frameMu sync.Mutex

	managers  *manager.NodeManagers
	scheduler scheduler.Scheduler
	backend   RendererBackend
	pickMode  raycast.PickMode

	dirty atomic.Uint32

	hierarchyJob   *jobs.UpdateEntityHierarchyJob
	loadBuffersJob *jobs.LoadBufferJob
	releaseJob     *jobs.ReleaseBuffersJob
	computeJob     *jobs.UpdateComputeCommandsJob

	leaves      []framegraph.Node
	leavesValid bool
	views       []*RenderView
	stats       FrameStats
}

// Renderer is the dirty sink of every backend node and the driver of the per-frame job graph.
//
// Sync from the front end and Frame must not run concurrently; MarkDirty may be called from any goroutine.
type Renderer interface {
	backend.Renderer

	// Managers returns the arenas the renderer reads.
	//
	// Returns:
	//   - *manager.NodeManagers: the managers given to NewRenderer
	Managers() *manager.NodeManagers

	// PendingDirty returns the bits raised since the last frame consumed them.
	//
	// Returns:
	//   - backend.DirtyFlag: the pending bits
	PendingDirty() backend.DirtyFlag

	// Frame consumes the pending dirty bits, runs the jobs they require, builds one view per frame-graph leaf and
	// hands the views to the backend.
	//
	// Returns:
	//   - []*RenderView: the views of this frame, in leaf order
	//   - error: an error if the job graph could not run or the backend rejected the views
	Frame() ([]*RenderView, error)

	// Views returns the views of the last frame.
	//
	// Returns:
	//   - []*RenderView: the views, nil before the first frame
	Views() []*RenderView

	// CastRay brings hierarchy, transforms and bounds up to date, then intersects ray with the scene.
	//
	// Parameters:
	//   - ray: the world-space ray
	//
	// Returns:
	//   - []raycast.Hit: the hits, closest first; at most one in PickNearest mode
	//   - error: an error if the job graph could not run
	CastRay(ray raycast.Ray) ([]raycast.Hit, error)

	// PickMode returns the mode CastRay uses.
	PickMode() raycast.PickMode

	// SetPickMode changes the mode CastRay uses.
	//
	// Parameters:
	//   - mode: PickNearest or PickAll
	SetPickMode(mode raycast.PickMode)

	// Stats returns the statistics of the last frame.
	//
	// Returns:
	//   - FrameStats: the statistics
	Stats() FrameStats

	// Shutdown stops the scheduler. Frame and CastRay fail afterwards.
	Shutdown()
}

var _ Renderer = &renderer{}

// NewRenderer creates a renderer over m. Every dirty bit starts raised so the first frame computes everything.
//
// Parameters:
//   - m: the managers holding the backend scene
//   - options: functional options
//
// Returns:
//   - Renderer: the renderer
func NewRenderer(m *manager.NodeManagers, options ...RendererBuilderOption) Renderer {
	if m == nil {
		panic("renderer: NewRenderer requires node managers")
	}
	r := &renderer{
		managers: m,
		backend:  nopBackend{},
		pickMode: raycast.PickNearest,
	}
	for _, opt := range options {
		opt(r)
	}
	if r.scheduler == nil {
		r.scheduler = scheduler.NewScheduler()
	}

	r.hierarchyJob = jobs.NewUpdateEntityHierarchyJob()
	r.hierarchyJob.SetManager(m.Entities)
	r.loadBuffersJob = jobs.NewLoadBufferJob(m.Buffers, func(id common.NodeId, b *geometry.Buffer) {
		r.backend.UploadBuffer(id, b.Data(), b.Usage())
	})
	r.releaseJob = jobs.NewReleaseBuffersJob(m.Buffers, func(id common.NodeId) {
		r.backend.ReleaseBuffer(id)
	})
	r.computeJob = jobs.NewUpdateComputeCommandsJob(m)

	r.dirty.Store(uint32(backend.AllDirty))
	return r
}

func (r *renderer) MarkDirty(changes backend.DirtyFlag, node backend.Node) {
	r.dirty.Or(uint32(changes))
	if node != nil {
		common.Logger().Debug("dirty", "node", node.PeerID(), "changes", changes.String())
	}
}

func (r *renderer) Managers() *manager.NodeManagers { return r.managers }

func (r *renderer) PendingDirty() backend.DirtyFlag { return backend.DirtyFlag(r.dirty.Load()) }

func (r *renderer) Views() []*RenderView {
	r.frameMu.Lock()
	defer r.frameMu.Unlock()
	return r.views
}

func (r *renderer) PickMode() raycast.PickMode {
	r.frameMu.Lock()
	defer r.frameMu.Unlock()
	return r.pickMode
}

func (r *renderer) SetPickMode(mode raycast.PickMode) {
	r.frameMu.Lock()
	defer r.frameMu.Unlock()
	r.pickMode = mode
}

func (r *renderer) Stats() FrameStats {
	r.frameMu.Lock()
	defer r.frameMu.Unlock()
	return r.stats
}

func (r *renderer) Shutdown() {
	r.scheduler.Stop()
}

func (r *renderer) Frame() ([]*RenderView, error) {
	r.frameMu.Lock()
	defer r.frameMu.Unlock()

	bits := backend.DirtyFlag(r.dirty.Swap(0))
	frame := r.stats.Frame + 1
	common.Logger().Debug("frame started", "frame", frame, "dirty", bits.String())

	// Phase 1: structural jobs and frame-graph resolution.
	phase1, loaded := r.structuralJobs(bits)
	if bits.Has(backend.FrameGraphDirty) || !r.leavesValid {
		phase1 = append(phase1, scheduler.NewJob("CollectFrameGraphLeaves", r.collectLeaves))
	}
	if err := r.scheduler.Schedule(phase1...); err != nil {
		r.dirty.Or(uint32(bits))
		return nil, errors.Wrap(err, "renderer: structural jobs")
	}

	// Phase 2: one command generation job per leaf, then the jobs that consume this frame's commands.
	views := make([]*RenderView, len(r.leaves))
	computeJob := scheduler.NewJob("UpdateComputeCommands", r.computeJob.Run)
	phase2 := []*scheduler.Job{computeJob, scheduler.NewJob("ReleaseBuffers", r.releaseJob.Run)}
	for i, leaf := range r.leaves {
		viewJob := scheduler.NewJob("RenderView", func() {
			v := BuildRenderView(r.managers, leaf)
			GenerateCommands(r.managers, v)
			views[i] = v
		})
		computeJob.AddDependency(viewJob)
		phase2 = append(phase2, viewJob)
	}
	if err := r.scheduler.Schedule(phase2...); err != nil {
		return nil, errors.Wrap(err, "renderer: render view jobs")
	}
	for _, id := range r.computeJob.Finished() {
		common.Logger().Debug("compute command finished", "node", id)
	}

	commands := 0
	for _, v := range views {
		commands += len(v.Commands)
	}
	r.views = views
	r.stats = FrameStats{
		Frame:           frame,
		Dirty:           bits,
		Views:           len(views),
		Commands:        commands,
		BuffersLoaded:   loaded(),
		BuffersReleased: len(r.releaseJob.Released()),
		JobsRun:         r.scheduler.JobsRun(),
	}

	if err := r.backend.Submit(views); err != nil {
		return views, errors.Wrap(err, "renderer: submit")
	}
	return views, nil
}

func (r *renderer) CastRay(ray raycast.Ray) ([]raycast.Hit, error) {
	r.frameMu.Lock()
	defer r.frameMu.Unlock()

	bits := backend.DirtyFlag(r.dirty.Swap(0))
	r.dirty.Or(uint32(bits &^ structuralDirty))

	graph, _ := r.structuralJobs(bits & structuralDirty)
	pick := jobs.NewRayCastingJob(r.managers, ray, r.pickMode)
	pickJob := scheduler.NewJob("RayCasting", pick.Run)
	for _, j := range graph {
		pickJob.AddDependency(j)
	}
	if err := r.scheduler.Schedule(append(graph, pickJob)...); err != nil {
		r.dirty.Or(uint32(bits & structuralDirty))
		return nil, errors.Wrap(err, "renderer: ray casting")
	}
	return pick.Hits(), nil
}

// structuralJobs builds the jobs the dirty bits call for, with their dependency edges. The returned func reports
// how many buffers the load job uploaded, zero if it did not run.
func (r *renderer) structuralJobs(bits backend.DirtyFlag) ([]*scheduler.Job, func() int) {
	m := r.managers
	var out []*scheduler.Job
	add := func(name string, run func(), deps ...*scheduler.Job) *scheduler.Job {
		j := scheduler.NewJob(name, run)
		for _, d := range deps {
			j.AddDependency(d)
		}
		out = append(out, j)
		return j
	}

	var hierarchy, worldTransform, loadBuffers, localBounds, worldBounds *scheduler.Job
	if bits.Has(backend.EntityHierarchyDirty) {
		hierarchy = add("UpdateEntityHierarchy", r.hierarchyJob.Run)
	}
	if bits.Has(backend.EntityHierarchyDirty | backend.EntityEnabledDirty) {
		add("UpdateTreeEnabled", jobs.NewUpdateTreeEnabledJob(m.Entities).Run, hierarchy)
	}
	if bits.Has(backend.EntityHierarchyDirty | backend.TransformDirty) {
		worldTransform = add("UpdateWorldTransform", jobs.NewUpdateWorldTransformJob(m).Run, hierarchy)
	}
	if bits.Has(backend.BuffersDirty) {
		loadBuffers = add("LoadBuffers", r.loadBuffersJob.Run)
	}
	if bits.Has(backend.GeometryDirty | backend.BuffersDirty) {
		localBounds = add("CalculateBoundingVolume", jobs.NewCalculateBoundingVolumeJob(m).Run, loadBuffers)
		add("CalcGeometryTriangleVolumes", jobs.NewCalcGeometryTriangleVolumesJob(m).Run, loadBuffers)
	}
	if localBounds != nil || worldTransform != nil {
		worldBounds = add("UpdateWorldBoundingVolume", jobs.NewUpdateWorldBoundingVolumeJob(m.Entities).Run, localBounds, worldTransform)
	}
	if worldBounds != nil || hierarchy != nil {
		add("ExpandBoundingVolume", jobs.NewExpandBoundingVolumeJob(m.Entities).Run, worldBounds, hierarchy)
	}

	loaded := func() int {
		if loadBuffers == nil {
			return 0
		}
		return r.loadBuffersJob.Loaded()
	}
	return out, loaded
}

// collectLeaves resolves the active frame graph of the first render settings node.
func (r *renderer) collectLeaves() {
	r.leaves = nil
	r.leavesValid = true
	for _, s := range r.managers.RenderSettings.All() {
		if !s.IsEnabled() {
			continue
		}
		r.leaves = framegraph.CollectLeaves(r.managers.FrameGraph, s.ActiveFrameGraphID())
		break
	}
	common.Logger().Debug("frame graph resolved", "leaves", len(r.leaves))
}
