package backend

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-render/common"
)

// Manager is an arena of backend nodes keyed by NodeId. Nodes are stored densely so iteration touches only live nodes;
// releasing a node moves the last node into its slot. Pointers returned by the manager stay valid until the node is released.
// All methods are safe for concurrent use.
type Manager[T any] struct {
	mu      sync.RWMutex
	index   map[common.NodeId]int
	ids     []common.NodeId
	nodes   []*T
	newNode func() *T
}

// NewManager creates an empty arena.
//
// Parameters:
//   - newNode: constructor for a node in its default state; nil uses new(T)
//
// Returns:
//   - *Manager[T]: the arena
func NewManager[T any](newNode func() *T) *Manager[T] {
	if newNode == nil {
		newNode = func() *T { return new(T) }
	}
	return &Manager[T]{
		index:   make(map[common.NodeId]int),
		newNode: newNode,
	}
}

// GetOrCreate returns the node stored under id, creating it if absent.
//
// Parameters:
//   - id: the node id
//
// Returns:
//   - *T: the node
//   - bool: true if the node was created by this call
func (m *Manager[T]) GetOrCreate(id common.NodeId) (*T, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if i, ok := m.index[id]; ok {
		return m.nodes[i], false
	}
	n := m.newNode()
	m.index[id] = len(m.nodes)
	m.ids = append(m.ids, id)
	m.nodes = append(m.nodes, n)
	return n, true
}

// Lookup returns the node stored under id, or nil if there is none.
func (m *Manager[T]) Lookup(id common.NodeId) *T {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if i, ok := m.index[id]; ok {
		return m.nodes[i]
	}
	return nil
}

// Contains reports whether a node is stored under id.
func (m *Manager[T]) Contains(id common.NodeId) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, ok := m.index[id]
	return ok
}

// Release removes the node stored under id.
//
// Returns:
//   - *T: the released node, or nil if there was none
func (m *Manager[T]) Release(id common.NodeId) *T {
	m.mu.Lock()
	defer m.mu.Unlock()

	i, ok := m.index[id]
	if !ok {
		return nil
	}
	n := m.nodes[i]
	last := len(m.nodes) - 1
	if i != last {
		m.nodes[i] = m.nodes[last]
		m.ids[i] = m.ids[last]
		m.index[m.ids[i]] = i
	}
	m.nodes[last] = nil
	m.nodes = m.nodes[:last]
	m.ids = m.ids[:last]
	delete(m.index, id)
	return n
}

// Count returns the number of live nodes.
func (m *Manager[T]) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.nodes)
}

// ActiveIDs returns a snapshot of the ids of all live nodes.
func (m *Manager[T]) ActiveIDs() []common.NodeId {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]common.NodeId, len(m.ids))
	copy(out, m.ids)
	return out
}

// All returns a snapshot of all live nodes.
func (m *Manager[T]) All() []*T {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*T, len(m.nodes))
	copy(out, m.nodes)
	return out
}

// Range calls fn for every live node until fn returns false. The set of nodes is snapshotted before iteration,
// so fn may create or release nodes.
func (m *Manager[T]) Range(fn func(id common.NodeId, node *T) bool) {
	m.mu.RLock()
	ids := make([]common.NodeId, len(m.ids))
	copy(ids, m.ids)
	nodes := make([]*T, len(m.nodes))
	copy(nodes, m.nodes)
	m.mu.RUnlock()

	for i, n := range nodes {
		if !fn(ids[i], n) {
			return
		}
	}
}
