package framegraph

import (
	"github.com/Carmen-Shannon/oxy-render/common"
	"github.com/Carmen-Shannon/oxy-render/engine/frontend"
)

// CollectLeaves walks the graph below root depth first, in child order, and returns its leaves.
// Each leaf defines one render view. A root with no children is its own leaf.
//
// Parameters:
//   - m: the manager holding the graph
//   - root: id of the root node
//
// Returns:
//   - []Node: the leaves, nil if root does not resolve
func CollectLeaves(m *Manager, root common.NodeId) []Node {
	node := m.Lookup(root)
	if node == nil {
		return nil
	}
	var leaves []Node
	visited := make(map[common.NodeId]struct{})
	var visit func(n Node)
	visit = func(n Node) {
		if _, seen := visited[n.PeerID()]; seen {
			return
		}
		visited[n.PeerID()] = struct{}{}

		children := n.base().Children()
		for _, c := range children {
			visit(c)
		}
		if len(children) == 0 {
			leaves = append(leaves, n)
		}
	}
	visit(node)
	return leaves
}

// New returns an empty node of the given frame-graph kind, or nil if kind is not a frame-graph kind.
func New(kind frontend.Kind) Node {
	switch kind {
	case frontend.KindFrameGraphGroup:
		return NewGroup()
	case frontend.KindClearBuffers:
		return NewClearBuffers()
	case frontend.KindCameraSelector:
		return NewCameraSelector()
	case frontend.KindLayerFilter:
		return NewLayerFilter()
	case frontend.KindViewport:
		return NewViewport()
	case frontend.KindNoDraw:
		return NewNoDraw()
	case frontend.KindFrustumCulling:
		return NewFrustumCulling()
	case frontend.KindDispatchCompute:
		return NewDispatchCompute()
	case frontend.KindSortPolicy:
		return NewSortPolicy()
	case frontend.KindRenderStateSet:
		return NewStateSet()
	}
	return nil
}

// Parent resolves the parent of n, or nil.
func Parent(n Node) Node {
	return n.base().Parent()
}

// Children resolves the children of n.
func Children(n Node) []Node {
	return n.base().Children()
}
