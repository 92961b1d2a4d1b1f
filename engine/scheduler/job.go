package scheduler

import "slices"

// Job is a synchronous batch function plus the jobs that must finish before it starts. Jobs are plain values that
// can be scheduled again every frame; their dependency edges persist until cleared.
type Job struct {
	name string
	run  func()
	deps []*Job
}

// NewJob creates a job with no dependencies.
//
// Parameters:
//   - name: used in logs and cycle errors
//   - run: the work; it must not block on other jobs
//
// Returns:
//   - *Job: the job
func NewJob(name string, run func()) *Job {
	return &Job{name: name, run: run}
}

func (j *Job) Name() string { return j.name }

// AddDependency makes j wait for dep. Adding the same dependency twice or a nil dependency does nothing.
func (j *Job) AddDependency(dep *Job) {
	if dep == nil || slices.Contains(j.deps, dep) {
		return
	}
	j.deps = append(j.deps, dep)
}

// Dependencies returns the jobs j waits for. The slice must not be modified.
func (j *Job) Dependencies() []*Job { return j.deps }

// ClearDependencies drops every dependency edge of j.
func (j *Job) ClearDependencies() { j.deps = nil }

// Run executes the job on the calling goroutine.
func (j *Job) Run() {
	if j.run != nil {
		j.run()
	}
}
