package scheduler

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu    sync.Mutex
	order []string
}

func (r *recorder) job(name string) *Job {
	return NewJob(name, func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.order = append(r.order, name)
	})
}

func (r *recorder) position(name string) int {
	for i, n := range r.order {
		if n == name {
			return i
		}
	}
	return -1
}

func newTestScheduler(t *testing.T) Scheduler {
	t.Helper()
	s := NewScheduler(WithWorkers(4), WithQueueSize(16))
	t.Cleanup(s.Stop)
	return s
}

func TestScheduleHonoursDependencies(t *testing.T) {
	s := newTestScheduler(t)
	r := &recorder{}

	hierarchy := r.job("hierarchy")
	enabled := r.job("enabled")
	world := r.job("world")
	bounds := r.job("bounds")
	views := r.job("views")

	enabled.AddDependency(hierarchy)
	world.AddDependency(hierarchy)
	bounds.AddDependency(world)
	views.AddDependency(bounds)
	views.AddDependency(enabled)

	require.NoError(t, s.Schedule(views, bounds, world, enabled, hierarchy))
	require.Len(t, r.order, 5)

	assert.Less(t, r.position("hierarchy"), r.position("enabled"))
	assert.Less(t, r.position("hierarchy"), r.position("world"))
	assert.Less(t, r.position("world"), r.position("bounds"))
	assert.Less(t, r.position("bounds"), r.position("views"))
	assert.Less(t, r.position("enabled"), r.position("views"))
	assert.EqualValues(t, 5, s.JobsRun())
}

func TestScheduleOutsideDependenciesAreSatisfied(t *testing.T) {
	s := newTestScheduler(t)
	r := &recorder{}

	outside := r.job("outside")
	inside := r.job("inside")
	inside.AddDependency(outside)

	require.NoError(t, s.Schedule(inside))
	assert.Equal(t, []string{"inside"}, r.order)
}

func TestScheduleRejectsCycles(t *testing.T) {
	s := newTestScheduler(t)
	var ran atomic.Int32
	a := NewJob("a", func() { ran.Add(1) })
	b := NewJob("b", func() { ran.Add(1) })
	c := NewJob("c", func() { ran.Add(1) })
	a.AddDependency(b)
	b.AddDependency(a)

	err := s.Schedule(a, b, c)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDependencyCycle))
	assert.Contains(t, err.Error(), "a, b")
	assert.Zero(t, ran.Load(), "nothing runs when the graph is rejected")
}

func TestScheduleIgnoresDuplicatesAndNil(t *testing.T) {
	s := newTestScheduler(t)
	var ran atomic.Int32
	j := NewJob("once", func() { ran.Add(1) })
	j.AddDependency(nil)

	require.NoError(t, s.Schedule(j, nil, j))
	assert.EqualValues(t, 1, ran.Load())
	require.NoError(t, s.Schedule())
}

func TestScheduleReraisesJobPanics(t *testing.T) {
	s := newTestScheduler(t)
	var dependentRan atomic.Bool
	bad := NewJob("bad", func() { panic("jobs: boom") })
	after := NewJob("after", func() { dependentRan.Store(true) })
	after.AddDependency(bad)

	require.PanicsWithValue(t, "jobs: boom", func() { _ = s.Schedule(bad, after) })
	assert.False(t, dependentRan.Load())

	// The pool survives the panic.
	var ok atomic.Bool
	require.NoError(t, s.Schedule(NewJob("next", func() { ok.Store(true) })))
	assert.True(t, ok.Load())
}

func TestScheduleAfterStop(t *testing.T) {
	s := NewScheduler(WithWorkers(1))
	s.Stop()
	s.Stop()
	assert.ErrorIs(t, s.Schedule(NewJob("late", nil)), ErrStopped)
}

func TestJobDependencies(t *testing.T) {
	a, b := NewJob("a", nil), NewJob("b", nil)
	b.AddDependency(a)
	b.AddDependency(a)
	assert.Equal(t, []*Job{a}, b.Dependencies())
	b.ClearDependencies()
	assert.Empty(t, b.Dependencies())
	assert.NotPanics(t, a.Run)
	assert.Equal(t, "a", a.Name())
}

func TestWorkersOption(t *testing.T) {
	s := NewScheduler(WithWorkers(0), WithIdleTimeout(0), WithQueueSize(-1))
	defer s.Stop()
	assert.Equal(t, 1, s.Workers())
}
