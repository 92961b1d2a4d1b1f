package renderer

import (
	"github.com/Carmen-Shannon/oxy-render/common"
	"github.com/gogpu/gputypes"
)

// RendererBackend consumes what a frame produces: buffer uploads and releases, then the finished views.
// It stands in for the GPU API; the renderer never talks to a device directly.
type RendererBackend interface {
	// UploadBuffer is called for every buffer whose data changed since the last frame.
	//
	// Parameters:
	//   - id: the buffer id
	//   - data: the buffer contents; must not be retained past the call
	//   - usage: the usage flags requested by the front end
	UploadBuffer(id common.NodeId, data []byte, usage gputypes.BufferUsage)

	// ReleaseBuffer is called once the last reference to a buffer is gone.
	//
	// Parameters:
	//   - id: the buffer id
	ReleaseBuffer(id common.NodeId)

	// Submit receives the views of a frame in frame-graph leaf order.
	//
	// Parameters:
	//   - views: the views, each with its sorted commands
	//
	// Returns:
	//   - error: an error if submission fails; the frame reports it
	Submit(views []*RenderView) error
}

// nopBackend discards everything. It is used when no backend is configured.
type nopBackend struct{}

var _ RendererBackend = nopBackend{}

func (nopBackend) UploadBuffer(common.NodeId, []byte, gputypes.BufferUsage) {}

func (nopBackend) ReleaseBuffer(common.NodeId) {}

func (nopBackend) Submit([]*RenderView) error { return nil }
