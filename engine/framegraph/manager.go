package framegraph

import (
	"slices"
	"sync"

	"github.com/Carmen-Shannon/oxy-render/common"
)

// Manager stores frame-graph nodes of every variant keyed by id.
type Manager struct {
	mu    sync.RWMutex
	nodes map[common.NodeId]Node
	order []common.NodeId
}

// NewManager creates an empty frame-graph manager.
func NewManager() *Manager {
	return &Manager{nodes: make(map[common.NodeId]Node)}
}

// AppendNode stores node under id and links it with the nodes already present: it joins its parent's child list
// and adopts any stored node naming it as parent.
//
// Parameters:
//   - id: the node id
//   - node: the node; its peer id is set to id
func (m *Manager) AppendNode(id common.NodeId, node Node) {
	b := node.base()
	b.SetPeerID(id)
	b.manager = m

	m.mu.Lock()
	if _, exists := m.nodes[id]; !exists {
		m.order = append(m.order, id)
	}
	m.nodes[id] = node
	var orphans []Node
	for _, otherID := range m.order {
		other := m.nodes[otherID]
		if otherID != id && other.ParentID() == id {
			orphans = append(orphans, other)
		}
	}
	m.mu.Unlock()

	for _, o := range orphans {
		b.appendChildID(o.PeerID())
	}
	if parent := b.Parent(); parent != nil {
		parent.base().appendChildID(id)
	}
}

// Lookup returns the node stored under id, or nil.
func (m *Manager) Lookup(id common.NodeId) Node {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.nodes[id]
}

// ReleaseNode removes the node stored under id and unlinks it from its parent. Its children keep their parent id,
// which no longer resolves, so they become roots.
//
// Returns:
//   - Node: the released node, or nil
func (m *Manager) ReleaseNode(id common.NodeId) Node {
	node := m.Lookup(id)
	if node == nil {
		return nil
	}
	if parent := node.base().Parent(); parent != nil {
		parent.base().removeChildID(id)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.nodes, id)
	m.order = slices.DeleteFunc(m.order, func(o common.NodeId) bool { return o == id })
	return node
}

// Nodes returns every stored node in insertion order.
func (m *Manager) Nodes() []Node {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Node, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.nodes[id])
	}
	return out
}

// Count returns the number of stored nodes.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.nodes)
}
