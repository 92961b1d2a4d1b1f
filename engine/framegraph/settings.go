package framegraph

import (
	"github.com/Carmen-Shannon/oxy-render/common"
	"github.com/Carmen-Shannon/oxy-render/engine/backend"
	"github.com/Carmen-Shannon/oxy-render/engine/frontend"
)

// RenderSettings selects the root of the frame graph the renderer walks.
type RenderSettings struct {
	backend.BackendNode
	activeFrameGraph common.NodeId
}

var _ backend.Node = &RenderSettings{}

// ActiveFrameGraphID returns the id of the frame-graph root, or null.
func (s *RenderSettings) ActiveFrameGraphID() common.NodeId { return s.activeFrameGraph }

func (s *RenderSettings) SyncFromFrontEnd(fe frontend.Node, firstTime bool) {
	node, ok := fe.(frontend.RenderSettings)
	if !ok {
		return
	}
	dirty := s.SyncCommon(fe, firstTime) || firstTime
	if s.activeFrameGraph != node.ActiveFrameGraph {
		s.activeFrameGraph = node.ActiveFrameGraph
		dirty = true
	}
	if dirty {
		s.MarkDirtyFrom(backend.FrameGraphDirty, s)
	}
}

func (s *RenderSettings) Cleanup() {
	s.ResetCommon()
	s.activeFrameGraph = common.NullNodeId
}
