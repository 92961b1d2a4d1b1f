package engine

import (
	"io"
	"time"

	"github.com/Carmen-Shannon/oxy-render/engine/animation"
	"github.com/Carmen-Shannon/oxy-render/engine/config"
	"github.com/Carmen-Shannon/oxy-render/engine/raycast"
	"github.com/Carmen-Shannon/oxy-render/engine/renderer"
)

// EngineBuilderOption is a functional option for configuring an Engine.
// Use the With* functions to create options that are applied directly to the engine instance.
type EngineBuilderOption func(*engine)

// WithConfig replaces every setting with cfg. Zero fields in cfg take their default. Options applied after it
// override individual values.
//
// Parameters:
//   - cfg: the settings, usually from config.Load
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithConfig(cfg config.Config) EngineBuilderOption {
	return func(e *engine) {
		e.cfg = cfg.WithDefaults()
	}
}

// WithWorkers sets the job pool size. Values below 1 are raised to 1.
//
// Parameters:
//   - n: number of workers
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithWorkers(n int) EngineBuilderOption {
	return func(e *engine) {
		e.cfg.Workers = max(n, 1)
	}
}

// WithIdleTimeout sets how long an idle pool worker lives.
//
// Parameters:
//   - d: idle timeout (default 1s)
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithIdleTimeout(d time.Duration) EngineBuilderOption {
	return func(e *engine) {
		if d > 0 {
			e.cfg.IdleTimeout = d
		}
	}
}

// WithProfiling enables or disables performance profiling output.
//
// Parameters:
//   - enabled: if true, enables performance profiling
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithProfiling(enabled bool) EngineBuilderOption {
	return func(e *engine) {
		e.cfg.Profiling = enabled
	}
}

// WithFrameRate caps the Run loop in frames per second.
// Pass 0 to uncap it.
//
// Parameters:
//   - fps: maximum frames per second (default 60)
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithFrameRate(fps float64) EngineBuilderOption {
	return func(e *engine) {
		e.cfg.FrameRate = max(fps, 0)
	}
}

// WithPickMode sets how many hits CastRay reports.
//
// Parameters:
//   - mode: raycast.PickNearest or raycast.PickAll
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithPickMode(mode raycast.PickMode) EngineBuilderOption {
	return func(e *engine) {
		if mode == raycast.PickAll {
			e.cfg.PickMode = "all"
		} else {
			e.cfg.PickMode = "nearest"
		}
	}
}

// WithBackend sets the consumer of buffer uploads and finished views.
//
// Parameters:
//   - b: the backend
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithBackend(b renderer.RendererBackend) EngineBuilderOption {
	return func(e *engine) {
		e.backend = b
	}
}

// WithSkeletonLoader sets the loader skeleton nodes use for their source files.
//
// Parameters:
//   - l: the loader
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithSkeletonLoader(l animation.SkeletonLoader) EngineBuilderOption {
	return func(e *engine) {
		e.skeletonLoader = l
	}
}

// WithLogOutput sets where the configured logger writes. Defaults to os.Stderr.
//
// Parameters:
//   - w: the destination
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithLogOutput(w io.Writer) EngineBuilderOption {
	return func(e *engine) {
		if w != nil {
			e.logOutput = w
		}
	}
}
