// Package backend holds the base every backend node builds on: identity, the enabled flag, the link to the renderer
// that consumes dirty bits, and the generic arena the node managers store nodes in.
package backend

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-render/common"
	"github.com/Carmen-Shannon/oxy-render/engine/frontend"
)

// Renderer is the sink backend nodes report changes to.
type Renderer interface {
	// MarkDirty records that the categories in changes need to be recomputed before the next frame.
	// It is safe to call from any goroutine.
	//
	// Parameters:
	//   - changes: the dirty categories raised
	//   - node: the node raising them, may be nil
	MarkDirty(changes DirtyFlag, node Node)
}

// Node is the contract shared by every backend node.
type Node interface {
	// PeerID returns the id of the front-end node this node mirrors.
	PeerID() common.NodeId

	// IsEnabled reports the mirrored enabled flag.
	IsEnabled() bool

	// SetEnabled overrides the enabled flag.
	SetEnabled(enabled bool)

	// Renderer returns the renderer dirty bits are reported to, or nil if none is attached.
	Renderer() Renderer

	// SetRenderer attaches the renderer dirty bits are reported to.
	SetRenderer(r Renderer)

	// MarkDirty forwards the flags to the attached renderer. Panics if no renderer is attached.
	MarkDirty(changes DirtyFlag)

	// SyncFromFrontEnd copies state out of the front-end snapshot, raising dirty bits for whatever changed.
	//
	// Parameters:
	//   - fe: the front-end snapshot; a snapshot of the wrong kind is ignored
	//   - firstTime: true on the sync that creates the node
	SyncFromFrontEnd(fe frontend.Node, firstTime bool)

	// Cleanup resets the node to its default state before it is released.
	Cleanup()
}

// BackendNode implements the shared part of Node. Concrete nodes embed it and provide SyncFromFrontEnd and Cleanup.
type BackendNode struct {
	peerID   common.NodeId
	enabled  bool
	renderer Renderer
}

// PeerID returns the id of the mirrored front-end node.
func (n *BackendNode) PeerID() common.NodeId { return n.peerID }

// SetPeerID sets the id of the mirrored front-end node.
func (n *BackendNode) SetPeerID(id common.NodeId) { n.peerID = id }

func (n *BackendNode) IsEnabled() bool { return n.enabled }

func (n *BackendNode) SetEnabled(enabled bool) { n.enabled = enabled }

func (n *BackendNode) Renderer() Renderer { return n.renderer }

func (n *BackendNode) SetRenderer(r Renderer) { n.renderer = r }

// MarkDirtyFrom forwards changes to the renderer, passing self as the originating node.
// Panics if no renderer is attached.
//
// Parameters:
//   - changes: the dirty categories to raise
//   - self: the concrete node embedding this base, reported to the renderer
func (n *BackendNode) MarkDirtyFrom(changes DirtyFlag, self Node) {
	if n.renderer == nil {
		panic(fmt.Sprintf("backend: MarkDirty(%s) on node %d without a renderer", changes, n.peerID))
	}
	n.renderer.MarkDirty(changes, self)
}

// MarkDirty forwards changes to the renderer without naming the originating node. Panics if no renderer is attached.
func (n *BackendNode) MarkDirty(changes DirtyFlag) {
	n.MarkDirtyFrom(changes, nil)
}

// SyncCommon copies the id (on the first sync) and the enabled flag out of fe.
//
// Parameters:
//   - fe: the front-end snapshot
//   - firstTime: true on the creating sync
//
// Returns:
//   - bool: true if the enabled flag changed
func (n *BackendNode) SyncCommon(fe frontend.Node, firstTime bool) bool {
	if firstTime {
		n.peerID = fe.ID()
	}
	enabled := fe.IsEnabled()
	changed := n.enabled != enabled
	n.enabled = enabled
	return changed
}

// ResetCommon clears the enabled flag. The id and renderer link are kept.
func (n *BackendNode) ResetCommon() {
	n.enabled = false
}
