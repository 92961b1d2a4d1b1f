package frontend

import (
	"github.com/Carmen-Shannon/oxy-render/common"
)

// Node is the common surface of every front-end snapshot.
type Node interface {
	// ID returns the id shared by the front-end node and its backend peer.
	ID() common.NodeId

	// Kind returns the tag used to pick the backend node type.
	Kind() Kind

	// IsEnabled reports the front-end enabled flag.
	IsEnabled() bool
}

// Base carries the id and enabled flag shared by all snapshots. Embed it.
type Base struct {
	Id      common.NodeId
	Enabled bool
}

func (b Base) ID() common.NodeId { return b.Id }

func (b Base) IsEnabled() bool { return b.Enabled }

// NewBase returns an enabled Base with the given id.
func NewBase(id common.NodeId) Base {
	return Base{Id: id, Enabled: true}
}

// ComponentRef names one component attached to an entity.
type ComponentRef struct {
	Kind Kind
	Id   common.NodeId
}

// Entity is the front-end scene graph node. Parent may name an entity the backend has not seen (or no longer has).
type Entity struct {
	Base
	Parent     common.NodeId
	Components []ComponentRef
}

func (Entity) Kind() Kind { return KindEntity }

// RenderSettings selects the active frame graph.
type RenderSettings struct {
	Base
	ActiveFrameGraph common.NodeId
}

func (RenderSettings) Kind() Kind { return KindRenderSettings }
