// Package framegraph holds the backend frame graph: a tree of render configuration nodes whose root-to-leaf paths
// each describe one render view.
package framegraph

import (
	"slices"

	"github.com/Carmen-Shannon/oxy-render/common"
	"github.com/Carmen-Shannon/oxy-render/engine/backend"
	"github.com/Carmen-Shannon/oxy-render/engine/frontend"
)

// Node is implemented by every frame-graph node variant.
type Node interface {
	backend.Node

	// NodeType returns the variant tag.
	NodeType() frontend.Kind

	// ParentID returns the parent id, which may not resolve to a live node.
	ParentID() common.NodeId

	// ChildIDs returns the ids of the children, in the order they were attached.
	ChildIDs() []common.NodeId

	base() *FrameGraphNode
}

// FrameGraphNode is the base embedded by every variant. It owns the parent/child links and keeps both ends
// consistent through the manager it was appended to.
type FrameGraphNode struct {
	backend.BackendNode
	self     Node
	nodeType frontend.Kind
	parentID common.NodeId
	childIDs []common.NodeId
	manager  *Manager
}

func (n *FrameGraphNode) init(self Node, nodeType frontend.Kind) {
	n.self = self
	n.nodeType = nodeType
}

func (n *FrameGraphNode) base() *FrameGraphNode { return n }

func (n *FrameGraphNode) NodeType() frontend.Kind { return n.nodeType }

func (n *FrameGraphNode) ParentID() common.NodeId { return n.parentID }

// ChildIDs returns the child ids. The slice must not be modified.
func (n *FrameGraphNode) ChildIDs() []common.NodeId { return n.childIDs }

// Parent resolves the parent through the manager. Returns nil for a root or a dangling parent.
func (n *FrameGraphNode) Parent() Node {
	if n.manager == nil || n.parentID.IsNull() {
		return nil
	}
	return n.manager.Lookup(n.parentID)
}

// Children resolves the child ids through the manager, skipping ids that no longer resolve.
func (n *FrameGraphNode) Children() []Node {
	if n.manager == nil {
		return nil
	}
	out := make([]Node, 0, len(n.childIDs))
	for _, id := range n.childIDs {
		if c := n.manager.Lookup(id); c != nil {
			out = append(out, c)
		}
	}
	return out
}

// SetParentID moves the node under a new parent: it leaves the old parent's child list and joins the new one's.
// Parents that do not resolve are recorded but not linked.
//
// Parameters:
//   - parentID: the new parent, or null to make the node a root
func (n *FrameGraphNode) SetParentID(parentID common.NodeId) {
	if n.parentID == parentID {
		return
	}
	if old := n.Parent(); old != nil {
		old.base().removeChildID(n.PeerID())
	}
	n.parentID = parentID
	if parent := n.Parent(); parent != nil {
		parent.base().appendChildID(n.PeerID())
	}
}

func (n *FrameGraphNode) appendChildID(id common.NodeId) {
	if !slices.Contains(n.childIDs, id) {
		n.childIDs = append(n.childIDs, id)
	}
}

func (n *FrameGraphNode) removeChildID(id common.NodeId) {
	n.childIDs = slices.DeleteFunc(n.childIDs, func(c common.NodeId) bool { return c == id })
}

// syncBase copies the enabled flag and parent out of fe.
//
// Returns:
//   - frontend.FrameGraphNode: fe as a frame-graph snapshot, nil if it is not one
//   - bool: true if the enabled flag or the parent changed
func (n *FrameGraphNode) syncBase(fe frontend.Node, firstTime bool) (frontend.FrameGraphNode, bool) {
	node, ok := fe.(frontend.FrameGraphNode)
	if !ok || fe.Kind() != n.nodeType {
		return nil, false
	}
	dirty := n.SyncCommon(fe, firstTime)
	if n.parentID != node.FrameGraphParent() {
		n.SetParentID(node.FrameGraphParent())
		dirty = true
	}
	return node, dirty || firstTime
}

// markFrameGraphDirty raises FrameGraphDirty once on behalf of the concrete node.
func (n *FrameGraphNode) markFrameGraphDirty() {
	n.MarkDirtyFrom(backend.FrameGraphDirty, n.self)
}

// SyncFromFrontEnd syncs the shared state. Variants with their own fields override it.
func (n *FrameGraphNode) SyncFromFrontEnd(fe frontend.Node, firstTime bool) {
	if _, dirty := n.syncBase(fe, firstTime); dirty {
		n.markFrameGraphDirty()
	}
}

// Cleanup detaches the node from its parent and resets the shared state. Variants extend it.
func (n *FrameGraphNode) Cleanup() {
	n.ResetCommon()
	n.SetParentID(common.NullNodeId)
	n.childIDs = nil
}

// Group is a frame-graph node with no behaviour of its own.
type Group struct {
	FrameGraphNode
}

// NewGroup returns an empty group node.
func NewGroup() *Group {
	n := &Group{}
	n.init(n, frontend.KindFrameGraphGroup)
	return n
}

// NoDraw suppresses draw commands for its branch.
type NoDraw struct {
	FrameGraphNode
}

// NewNoDraw returns a NoDraw node.
func NewNoDraw() *NoDraw {
	n := &NoDraw{}
	n.init(n, frontend.KindNoDraw)
	return n
}

// FrustumCulling enables frustum culling for its branch.
type FrustumCulling struct {
	FrameGraphNode
}

// NewFrustumCulling returns a FrustumCulling node.
func NewFrustumCulling() *FrustumCulling {
	n := &FrustumCulling{}
	n.init(n, frontend.KindFrustumCulling)
	return n
}

var (
	_ Node = &Group{}
	_ Node = &NoDraw{}
	_ Node = &FrustumCulling{}
)
