// Package scheduler runs dependency-ordered job graphs on a worker pool. Jobs run to completion; there is no
// preemption or cancellation inside a graph.
package scheduler

import (
	"runtime"
	"runtime/debug"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-render/common"
	"github.com/pkg/errors"
)

var (
	// ErrDependencyCycle is returned when the submitted jobs cannot be ordered.
	ErrDependencyCycle = errors.New("scheduler: dependency cycle")
	// ErrStopped is returned by Schedule after Stop.
	ErrStopped = errors.New("scheduler: stopped")
)

// scheduler is the implementation of the Scheduler interface.
type scheduler struct {
	mu          sync.Mutex
	pool        worker.DynamicWorkerPool
	workers     int
	queueSize   int
	idleTimeout time.Duration
	stopped     bool
	taskID      int
	jobsRun     atomic.Uint64
}

// Scheduler executes job graphs.
type Scheduler interface {
	// Schedule runs jobs honouring their dependency edges and returns when all of them finished. Dependencies on jobs
	// outside the submitted set count as satisfied. If a job panics, the jobs depending on it are skipped and the panic
	// is re-raised on the calling goroutine once the running jobs drain.
	//
	// Parameters:
	//   - jobs: the graph to run; duplicates are ignored
	//
	// Returns:
	//   - error: ErrDependencyCycle (wrapped with the job names) if the graph has a cycle, in which case nothing ran;
	//     ErrStopped after Stop
	Schedule(jobs ...*Job) error

	// JobsRun returns the number of jobs completed since creation.
	JobsRun() uint64

	// Workers returns the size of the worker pool.
	Workers() int

	// Stop stops the worker pool. Schedule returns ErrStopped afterwards.
	Stop()
}

var _ Scheduler = &scheduler{}

// NewScheduler creates a scheduler and starts its worker pool.
//
// Parameters:
//   - options: functional options
//
// Returns:
//   - Scheduler: the scheduler
func NewScheduler(options ...SchedulerBuilderOption) Scheduler {
	s := &scheduler{
		workers:     max(runtime.NumCPU()-1, 1),
		queueSize:   256,
		idleTimeout: time.Second,
	}
	for _, opt := range options {
		opt(s)
	}
	s.pool = worker.NewDynamicWorkerPool(s.workers, s.queueSize, s.idleTimeout)
	return s
}

func (s *scheduler) Workers() int { return s.workers }

func (s *scheduler) JobsRun() uint64 { return s.jobsRun.Load() }

func (s *scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}
	s.stopped = true
	s.pool.Stop()
}

type jobResult struct {
	index     int
	recovered any
	panicked  bool
}

func (s *scheduler) Schedule(jobs ...*Job) error {
	s.mu.Lock()
	stopped := s.stopped
	s.mu.Unlock()
	if stopped {
		return ErrStopped
	}

	g := buildGraph(jobs)
	if len(g.jobs) == 0 {
		return nil
	}
	if cycle := g.unorderable(); len(cycle) > 0 {
		return errors.Wrapf(ErrDependencyCycle, "jobs %s", strings.Join(cycle, ", "))
	}

	pending := slices.Clone(g.inDegree)
	done := make(chan jobResult, len(g.jobs))
	inFlight := 0
	submit := func(i int) {
		inFlight++
		s.submit(g.jobs[i], i, done)
	}
	for i, d := range pending {
		if d == 0 {
			submit(i)
		}
	}

	var failure *jobResult
	for inFlight > 0 {
		res := <-done
		inFlight--
		if res.panicked {
			if failure == nil {
				failure = &res
			}
			continue
		}
		s.jobsRun.Add(1)
		if failure != nil {
			continue
		}
		for _, dep := range g.dependents[res.index] {
			pending[dep]--
			if pending[dep] == 0 {
				submit(dep)
			}
		}
	}

	if failure != nil {
		panic(failure.recovered)
	}
	return nil
}

// submit runs job on the pool, reporting completion or a recovered panic on done.
func (s *scheduler) submit(job *Job, index int, done chan<- jobResult) {
	s.mu.Lock()
	s.taskID++
	id := s.taskID
	s.mu.Unlock()

	common.Logger().Debug("job scheduled", "job", job.Name(), "task", id)
	s.pool.SubmitTask(worker.Task{
		ID:      id,
		Payload: job.Name(),
		Do: func() (any, error) {
			res := jobResult{index: index}
			defer func() {
				if r := recover(); r != nil {
					common.Logger().Error("job panicked", "job", job.Name(), "panic", r, "stack", string(debug.Stack()))
					res.recovered = r
					res.panicked = true
				}
				done <- res
			}()
			job.Run()
			return nil, nil
		},
	})
}

// graph is the submitted job set with edges restricted to it.
type graph struct {
	jobs       []*Job
	inDegree   []int
	dependents [][]int
}

func buildGraph(jobs []*Job) graph {
	index := make(map[*Job]int, len(jobs))
	var g graph
	for _, j := range jobs {
		if j == nil {
			continue
		}
		if _, dup := index[j]; dup {
			continue
		}
		index[j] = len(g.jobs)
		g.jobs = append(g.jobs, j)
	}
	g.inDegree = make([]int, len(g.jobs))
	g.dependents = make([][]int, len(g.jobs))
	for i, j := range g.jobs {
		for _, dep := range j.deps {
			d, ok := index[dep]
			if !ok {
				continue
			}
			g.inDegree[i]++
			g.dependents[d] = append(g.dependents[d], i)
		}
	}
	return g
}

// unorderable runs Kahn's algorithm and returns the names of the jobs left over, which sit on or behind a cycle.
func (g graph) unorderable() []string {
	pending := slices.Clone(g.inDegree)
	queue := make([]int, 0, len(g.jobs))
	for i, d := range pending {
		if d == 0 {
			queue = append(queue, i)
		}
	}
	for len(queue) > 0 {
		i := queue[0]
		queue = queue[1:]
		for _, dep := range g.dependents[i] {
			pending[dep]--
			if pending[dep] == 0 {
				queue = append(queue, dep)
			}
		}
	}
	var left []string
	for i, d := range pending {
		if d > 0 {
			left = append(left, g.jobs[i].Name())
		}
	}
	return left
}
