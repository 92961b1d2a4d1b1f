package geometry

import (
	"sync"
	"testing"

	"github.com/Carmen-Shannon/oxy-render/common"
	"github.com/Carmen-Shannon/oxy-render/engine/backend"
	"github.com/Carmen-Shannon/oxy-render/engine/frontend"
	"github.com/gogpu/gputypes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingRenderer struct {
	mu    sync.Mutex
	flags []backend.DirtyFlag
}

func (r *countingRenderer) MarkDirty(changes backend.DirtyFlag, _ backend.Node) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.flags = append(r.flags, changes)
}

func TestAddDirtyBufferIsIdempotent(t *testing.T) {
	m := NewBufferManager()
	m.AddDirtyBuffer(1)
	m.AddDirtyBuffer(2)
	m.AddDirtyBuffer(1)

	assert.Equal(t, []common.NodeId{1, 2}, m.TakeDirtyBuffers())
	assert.Empty(t, m.TakeDirtyBuffers())
}

func TestBufferReferenceCounting(t *testing.T) {
	m := NewBufferManager()
	m.AddBufferReference(7)
	m.AddBufferReference(7)
	m.AddBufferReference(8)

	count, ok := m.ReferenceCount(7)
	require.True(t, ok)
	assert.EqualValues(t, 2, count)

	m.RemoveBufferReference(7)
	assert.Empty(t, m.TakeBuffersToRelease())

	m.RemoveBufferReference(7)
	assert.Equal(t, []common.NodeId{7}, m.TakeBuffersToRelease())
	assert.Empty(t, m.TakeBuffersToRelease(), "a released id is reported once")

	_, ok = m.ReferenceCount(7)
	assert.False(t, ok)
	count, _ = m.ReferenceCount(8)
	assert.EqualValues(t, 1, count)
}

func TestAddThenRemoveReleasesExactlyOnce(t *testing.T) {
	m := NewBufferManager()
	m.AddBufferReference(3)
	m.RemoveBufferReference(3)
	assert.Equal(t, []common.NodeId{3}, m.TakeBuffersToRelease())
	assert.Empty(t, m.TakeBuffersToRelease())
}

func TestRemoveBufferReferenceWithoutReferencePanics(t *testing.T) {
	m := NewBufferManager()
	assert.Panics(t, func() { m.RemoveBufferReference(9) })

	m.AddBufferReference(9)
	m.RemoveBufferReference(9)
	assert.Panics(t, func() { m.RemoveBufferReference(9) })
}

func TestBufferReferencesFromConcurrentGoroutines(t *testing.T) {
	m := NewBufferManager()
	const n = 200

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := range n {
			m.AddBufferReference(common.NodeId(i%10 + 1))
		}
	}()
	go func() {
		defer wg.Done()
		for range n {
			m.AddDirtyBuffer(common.NodeId(5))
		}
	}()
	wg.Wait()

	for i := range n {
		m.RemoveBufferReference(common.NodeId(i%10 + 1))
	}
	assert.Len(t, m.TakeBuffersToRelease(), 10)
	assert.Equal(t, []common.NodeId{5}, m.TakeDirtyBuffers())
}

func TestBufferSyncQueuesUpload(t *testing.T) {
	r := &countingRenderer{}
	m := NewBufferManager()
	b, _ := m.GetOrCreate(4)
	b.SetRenderer(r)

	fe := frontend.Buffer{Base: frontend.NewBase(4), Data: []byte{1, 2, 3}, Usage: gputypes.BufferUsageVertex}
	b.SyncFromFrontEnd(fe, true)
	assert.Equal(t, []common.NodeId{4}, m.TakeDirtyBuffers())
	assert.Equal(t, []byte{1, 2, 3}, b.Data())
	assert.Equal(t, gputypes.BufferUsageVertex, b.Usage())
	assert.Len(t, r.flags, 1)

	b.SyncFromFrontEnd(fe, false)
	assert.Empty(t, m.TakeDirtyBuffers())
	assert.Len(t, r.flags, 1)

	fe.Data = []byte{9}
	b.SyncFromFrontEnd(fe, false)
	assert.Equal(t, []common.NodeId{4}, m.TakeDirtyBuffers())
	require.Len(t, r.flags, 2)
	assert.Equal(t, backend.BuffersDirty, r.flags[1])

	b.Cleanup()
	assert.Nil(t, b.Data())
	assert.False(t, b.IsEnabled())
}
