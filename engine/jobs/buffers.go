package jobs

import (
	"github.com/Carmen-Shannon/oxy-render/common"
	"github.com/Carmen-Shannon/oxy-render/engine/geometry"
)

// BufferUploader receives a buffer whose data changed since the last upload.
type BufferUploader func(id common.NodeId, b *geometry.Buffer)

// BufferReleaser is told that the native resource behind id may be freed.
type BufferReleaser func(id common.NodeId)

// LoadBufferJob drains the dirty buffer set and hands each live buffer to the uploader.
// The drain is single-writer: only the frame goroutine may run this job.
type LoadBufferJob struct {
	buffers  *geometry.BufferManager
	uploader BufferUploader
	loaded   int
}

func NewLoadBufferJob(buffers *geometry.BufferManager, uploader BufferUploader) *LoadBufferJob {
	return &LoadBufferJob{buffers: buffers, uploader: uploader}
}

// Loaded returns how many buffers the last run uploaded.
func (j *LoadBufferJob) Loaded() int { return j.loaded }

func (j *LoadBufferJob) Run() {
	j.loaded = 0
	for _, id := range j.buffers.TakeDirtyBuffers() {
		b := j.buffers.Lookup(id)
		if b == nil {
			continue
		}
		if j.uploader != nil {
			j.uploader(id, b)
		}
		j.loaded++
	}
}

// ReleaseBuffersJob destroys every backend buffer whose reference count reached zero and notifies the releaser.
type ReleaseBuffersJob struct {
	buffers  *geometry.BufferManager
	releaser BufferReleaser
	released []common.NodeId
}

func NewReleaseBuffersJob(buffers *geometry.BufferManager, releaser BufferReleaser) *ReleaseBuffersJob {
	return &ReleaseBuffersJob{buffers: buffers, releaser: releaser}
}

// Released returns the ids freed by the last run.
func (j *ReleaseBuffersJob) Released() []common.NodeId { return j.released }

func (j *ReleaseBuffersJob) Run() {
	j.released = j.buffers.TakeBuffersToRelease()
	for _, id := range j.released {
		if b := j.buffers.Release(id); b != nil {
			b.Cleanup()
		}
		if j.releaser != nil {
			j.releaser(id)
		}
	}
}
