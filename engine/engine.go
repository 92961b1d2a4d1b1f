// Package engine is the render aspect facade. It maps front-end snapshots onto backend nodes, drives frames on the
// renderer and optionally paces them in a loop.
package engine

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/Carmen-Shannon/oxy-render/common"
	"github.com/Carmen-Shannon/oxy-render/engine/animation"
	"github.com/Carmen-Shannon/oxy-render/engine/backend"
	"github.com/Carmen-Shannon/oxy-render/engine/config"
	"github.com/Carmen-Shannon/oxy-render/engine/frontend"
	"github.com/Carmen-Shannon/oxy-render/engine/manager"
	"github.com/Carmen-Shannon/oxy-render/engine/profiler"
	"github.com/Carmen-Shannon/oxy-render/engine/raycast"
	"github.com/Carmen-Shannon/oxy-render/engine/renderer"
	"github.com/Carmen-Shannon/oxy-render/engine/scheduler"
	"github.com/pkg/errors"
)

// engine implements the Engine interface.
type engine struct {
	mu sync.Mutex

	cfg            config.Config
	logOutput      io.Writer
	backend        renderer.RendererBackend
	skeletonLoader animation.SkeletonLoader

	managers *manager.NodeManagers
	renderer renderer.Renderer
	kinds    map[common.NodeId]frontend.Kind

	profiler         *profiler.Profiler
	profilingEnabled bool

	frameCallback func(views []*renderer.RenderView, deltaTime float32)

	shutdownOnce sync.Once
}

// Engine is the main entry point of the render aspect. It owns the backend scene and the renderer that turns it
// into frames.
//
// Sync, Remove, Frame and CastRay serialise on one lock, so they may be called from different goroutines.
type Engine interface {
	// Managers returns the arenas holding the backend scene.
	//
	// Returns:
	//   - *manager.NodeManagers: the managers
	Managers() *manager.NodeManagers

	// Renderer returns the renderer driving frames.
	//
	// Returns:
	//   - renderer.Renderer: the renderer
	Renderer() renderer.Renderer

	// Sync mirrors front-end snapshots into backend nodes. A node seen for the first time is created and synced
	// with firstTime set. Snapshots of kinds the backend does not handle are skipped with a warning.
	// Panics if an id is synced under a kind different from the one it was created with.
	//
	// Parameters:
	//   - nodes: the snapshots
	Sync(nodes ...frontend.Node)

	// Remove destroys the backend peers of ids. Buffers are released through their reference count and leave the
	// arena on the next frame. Unknown ids are ignored.
	//
	// Parameters:
	//   - ids: the node ids
	Remove(ids ...common.NodeId)

	// Kind returns the kind id was synced as.
	//
	// Returns:
	//   - frontend.Kind: the kind
	//   - bool: false if id is not known
	Kind(id common.NodeId) (frontend.Kind, bool)

	// Frame runs one frame and returns its views.
	//
	// Returns:
	//   - []*renderer.RenderView: the views, one per frame-graph leaf
	//   - error: a scheduling or backend submission error
	Frame() ([]*renderer.RenderView, error)

	// Run renders frames at the configured frame rate until ctx ends or a frame fails.
	//
	// Parameters:
	//   - ctx: ends the loop
	//
	// Returns:
	//   - error: the first frame error, nil when ctx ended the loop
	Run(ctx context.Context) error

	// SetFrameRate changes the Run loop cap. Takes effect on the next Run.
	//
	// Parameters:
	//   - fps: frames per second, 0 for uncapped
	SetFrameRate(fps float64)

	// SetFrameCallback registers a function called after every frame Run renders.
	//
	// Parameters:
	//   - callback: receives the views and the time since the previous frame in seconds
	SetFrameCallback(callback func(views []*renderer.RenderView, deltaTime float32))

	// CastRay picks the geometry hit by ray using the renderer's pick mode.
	//
	// Parameters:
	//   - ray: the world-space ray
	//
	// Returns:
	//   - []raycast.Hit: the hits, closest first
	//   - error: a scheduling error
	CastRay(ray raycast.Ray) ([]raycast.Hit, error)

	// EnableProfiler starts logging frame statistics.
	EnableProfiler()

	// DisableProfiler stops logging frame statistics.
	DisableProfiler()

	// ProfilerEnabled reports whether frame statistics are logged.
	ProfilerEnabled() bool

	// Shutdown stops the job scheduler. Safe to call more than once.
	Shutdown()
}

var _ Engine = &engine{}

// NewEngine creates an engine with empty arenas and a started scheduler.
// Options are applied in order, so options given after WithConfig override its values.
//
// Parameters:
//   - options: functional options for engine configuration
//
// Returns:
//   - Engine: the newly created engine
func NewEngine(options ...EngineBuilderOption) Engine {
	e := &engine{
		cfg:       config.Default(),
		logOutput: os.Stderr,
		kinds:     make(map[common.NodeId]frontend.Kind),
	}
	for _, opt := range options {
		opt(e)
	}

	if l := e.cfg.NewLogger(e.logOutput); l != nil {
		common.SetLogger(l)
	}

	var managerOptions []manager.NodeManagersBuilderOption
	if e.skeletonLoader != nil {
		managerOptions = append(managerOptions, manager.WithSkeletonLoader(e.skeletonLoader))
	}
	e.managers = manager.NewNodeManagers(managerOptions...)

	sched := scheduler.NewScheduler(
		scheduler.WithWorkers(e.cfg.Workers),
		scheduler.WithQueueSize(e.cfg.QueueSize),
		scheduler.WithIdleTimeout(e.cfg.IdleTimeout),
	)
	e.renderer = renderer.NewRenderer(e.managers,
		renderer.WithScheduler(sched),
		renderer.WithBackend(e.backend),
		renderer.WithPickMode(e.cfg.Pick()),
	)
	e.profiler = profiler.NewProfiler()
	e.profilingEnabled = e.cfg.Profiling

	common.Logger().Info("engine started",
		"workers", sched.Workers(),
		"frame_rate", e.cfg.FrameRate,
		"profiling", e.profilingEnabled,
	)
	return e
}

func (e *engine) Managers() *manager.NodeManagers { return e.managers }

func (e *engine) Renderer() renderer.Renderer { return e.renderer }

func (e *engine) Sync(nodes ...frontend.Node) {
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, fe := range nodes {
		if fe == nil {
			continue
		}
		id, kind := fe.ID(), fe.Kind()
		if id.IsNull() {
			common.Logger().Warn("engine: skipping node with null id", "kind", kind.String())
			continue
		}
		if !e.managers.Supports(kind) {
			common.Logger().Warn("engine: skipping unsupported kind", "id", id, "kind", kind.String())
			continue
		}
		known, tracked := e.kinds[id]
		if tracked && known != kind {
			panic(fmt.Sprintf("engine: node %d synced as %s, was created as %s", id, kind, known))
		}

		n, created := e.managers.GetOrCreate(kind, id)
		if !tracked {
			e.kinds[id] = kind
			if kind == frontend.KindBuffer {
				e.managers.Buffers.AddBufferReference(id)
			}
		}
		n.SetRenderer(e.renderer)
		n.SyncFromFrontEnd(fe, created)
	}
}

func (e *engine) Remove(ids ...common.NodeId) {
	e.mu.Lock()
	defer e.mu.Unlock()

	removed := false
	for _, id := range ids {
		kind, ok := e.kinds[id]
		if !ok {
			continue
		}
		delete(e.kinds, id)
		removed = true

		if kind == frontend.KindBuffer {
			e.managers.Buffers.RemoveBufferReference(id)
			continue
		}
		if n := e.managers.Release(kind, id); n != nil {
			n.Cleanup()
		}
	}
	if removed {
		e.renderer.MarkDirty(backend.AllDirty, nil)
	}
}

func (e *engine) Kind(id common.NodeId) (frontend.Kind, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	k, ok := e.kinds[id]
	return k, ok
}

func (e *engine) Frame() ([]*renderer.RenderView, error) {
	e.mu.Lock()
	views, err := e.renderer.Frame()
	profiling := e.profilingEnabled
	e.mu.Unlock()
	if err != nil {
		return nil, err
	}
	if profiling {
		e.profiler.Tick(e.renderer.Stats())
	}
	return views, nil
}

// Run paces frames with a ticker. An uncapped rate renders back to back.
func (e *engine) Run(ctx context.Context) error {
	e.mu.Lock()
	period := e.cfg.FramePeriod()
	e.mu.Unlock()

	var tick <-chan time.Time
	if period > 0 {
		ticker := time.NewTicker(period)
		defer ticker.Stop()
		tick = ticker.C
	}

	common.Logger().Info("engine run loop started", "period", period)
	defer common.Logger().Info("engine run loop stopped")

	last := time.Now()
	for {
		if tick != nil {
			select {
			case <-ctx.Done():
				return nil
			case <-tick:
			}
		} else if ctx.Err() != nil {
			return nil
		}

		now := time.Now()
		dt := float32(now.Sub(last).Seconds())
		last = now

		views, err := e.Frame()
		if err != nil {
			return errors.Wrap(err, "engine: frame")
		}
		e.mu.Lock()
		callback := e.frameCallback
		e.mu.Unlock()
		if callback != nil {
			callback(views, dt)
		}
	}
}

func (e *engine) SetFrameRate(fps float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cfg.FrameRate = max(fps, 0)
}

func (e *engine) SetFrameCallback(callback func(views []*renderer.RenderView, deltaTime float32)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.frameCallback = callback
}

func (e *engine) CastRay(ray raycast.Ray) ([]raycast.Hit, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.renderer.CastRay(ray)
}

func (e *engine) EnableProfiler() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.profilingEnabled {
		e.profiler.Reset()
	}
	e.profilingEnabled = true
}

func (e *engine) DisableProfiler() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.profilingEnabled = false
}

func (e *engine) ProfilerEnabled() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.profilingEnabled
}

func (e *engine) Shutdown() {
	e.shutdownOnce.Do(func() {
		e.renderer.Shutdown()
		common.Logger().Info("engine stopped")
	})
}
