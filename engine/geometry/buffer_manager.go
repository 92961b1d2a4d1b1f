package geometry

import (
	"fmt"
	"slices"
	"sync"

	"github.com/Carmen-Shannon/oxy-render/common"
	"github.com/Carmen-Shannon/oxy-render/engine/backend"
)

// BufferManager stores backend buffers and tracks two protocols around them: the set of buffers whose data must be
// uploaded, and the per-buffer reference counts that decide when a buffer can be released.
type BufferManager struct {
	*backend.Manager[Buffer]

	dirtyMu      sync.Mutex
	dirtyBuffers []common.NodeId

	refMu     sync.Mutex
	refCounts map[common.NodeId]uint32
}

// NewBufferManager creates an empty buffer manager.
func NewBufferManager() *BufferManager {
	bm := &BufferManager{
		refCounts: make(map[common.NodeId]uint32),
	}
	bm.Manager = backend.NewManager(func() *Buffer {
		return &Buffer{manager: bm}
	})
	return bm
}

// AddDirtyBuffer queues id for upload. Adding an id that is already queued does nothing.
//
// Parameters:
//   - id: the buffer id
func (m *BufferManager) AddDirtyBuffer(id common.NodeId) {
	m.dirtyMu.Lock()
	defer m.dirtyMu.Unlock()

	if !slices.Contains(m.dirtyBuffers, id) {
		m.dirtyBuffers = append(m.dirtyBuffers, id)
	}
}

// TakeDirtyBuffers returns the queued ids in insertion order and empties the queue.
//
// Returns:
//   - []common.NodeId: the ids queued since the last call
func (m *BufferManager) TakeDirtyBuffers() []common.NodeId {
	m.dirtyMu.Lock()
	defer m.dirtyMu.Unlock()

	out := m.dirtyBuffers
	m.dirtyBuffers = nil
	return out
}

// AddBufferReference increments the reference count of id, starting it at 1 if id was unknown.
//
// Parameters:
//   - id: the buffer id
func (m *BufferManager) AddBufferReference(id common.NodeId) {
	m.refMu.Lock()
	defer m.refMu.Unlock()

	m.refCounts[id]++
}

// RemoveBufferReference decrements the reference count of id. Panics if id is unknown or its count is already zero.
//
// Parameters:
//   - id: the buffer id
func (m *BufferManager) RemoveBufferReference(id common.NodeId) {
	m.refMu.Lock()
	defer m.refMu.Unlock()

	count, ok := m.refCounts[id]
	if !ok || count == 0 {
		panic(fmt.Sprintf("geometry: RemoveBufferReference(%d) with no outstanding reference", id))
	}
	m.refCounts[id] = count - 1
}

// TakeBuffersToRelease returns every id whose reference count is zero and forgets those ids.
//
// Returns:
//   - []common.NodeId: ids ready for release, in ascending order
func (m *BufferManager) TakeBuffersToRelease() []common.NodeId {
	m.refMu.Lock()
	defer m.refMu.Unlock()

	var out []common.NodeId
	for id, count := range m.refCounts {
		if count == 0 {
			out = append(out, id)
			delete(m.refCounts, id)
		}
	}
	slices.Sort(out)
	return out
}

// ReferenceCount returns the current count for id and whether id is tracked.
func (m *BufferManager) ReferenceCount(id common.NodeId) (uint32, bool) {
	m.refMu.Lock()
	defer m.refMu.Unlock()

	count, ok := m.refCounts[id]
	return count, ok
}
