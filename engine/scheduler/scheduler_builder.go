package scheduler

import "time"

// SchedulerBuilderOption is a functional option for configuring a Scheduler via NewScheduler.
type SchedulerBuilderOption func(*scheduler)

// WithWorkers sets the worker pool size. Values below 1 are raised to 1.
//
// Parameters:
//   - n: number of workers (default NumCPU-1)
//
// Returns:
//   - SchedulerBuilderOption: option function to apply
func WithWorkers(n int) SchedulerBuilderOption {
	return func(s *scheduler) {
		s.workers = max(n, 1)
	}
}

// WithQueueSize sets the capacity of the pool's task queue.
//
// Parameters:
//   - n: queue capacity (default 256)
//
// Returns:
//   - SchedulerBuilderOption: option function to apply
func WithQueueSize(n int) SchedulerBuilderOption {
	return func(s *scheduler) {
		if n > 0 {
			s.queueSize = n
		}
	}
}

// WithIdleTimeout sets how long an idle pool worker lives.
//
// Parameters:
//   - d: idle timeout (default 1s)
//
// Returns:
//   - SchedulerBuilderOption: option function to apply
func WithIdleTimeout(d time.Duration) SchedulerBuilderOption {
	return func(s *scheduler) {
		if d > 0 {
			s.idleTimeout = d
		}
	}
}
