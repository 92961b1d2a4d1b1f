package renderer

import (
	"github.com/Carmen-Shannon/oxy-render/engine/raycast"
	"github.com/Carmen-Shannon/oxy-render/engine/scheduler"
)

// RendererBuilderOption is a functional option applied to a renderer during construction via NewRenderer.
type RendererBuilderOption func(*renderer)

// WithScheduler sets the scheduler that runs the frame job graph. The renderer takes ownership and stops it on
// Shutdown. When not given, a scheduler with default settings is created.
//
// Parameters:
//   - s: the scheduler
//
// Returns:
//   - RendererBuilderOption: a function that applies the scheduler option to a renderer
func WithScheduler(s scheduler.Scheduler) RendererBuilderOption {
	return func(r *renderer) {
		r.scheduler = s
	}
}

// WithBackend sets the backend that receives buffer uploads, releases and the finished views.
//
// Parameters:
//   - b: the backend, nil discards frame output
//
// Returns:
//   - RendererBuilderOption: a function that applies the backend option to a renderer
func WithBackend(b RendererBackend) RendererBuilderOption {
	return func(r *renderer) {
		if b == nil {
			b = nopBackend{}
		}
		r.backend = b
	}
}

// WithPickMode sets the pick mode used by CastRay. The default is PickNearest.
//
// Parameters:
//   - mode: PickNearest or PickAll
//
// Returns:
//   - RendererBuilderOption: a function that applies the pick mode option to a renderer
func WithPickMode(mode raycast.PickMode) RendererBuilderOption {
	return func(r *renderer) {
		r.pickMode = mode
	}
}
