// Package geometry holds the backend mirrors of buffers, attributes, geometries and geometry renderers, the buffer
// manager that tracks uploads and releases, and the triangle visitor used by picking and bounds computation.
package geometry

import (
	"bytes"

	"github.com/Carmen-Shannon/oxy-render/engine/backend"
	"github.com/Carmen-Shannon/oxy-render/engine/frontend"
	"github.com/gogpu/gputypes"
)

// Buffer mirrors a front-end buffer. Data changes queue the buffer for upload on its manager.
type Buffer struct {
	backend.BackendNode
	data    []byte
	usage   gputypes.BufferUsage
	manager *BufferManager
}

var _ backend.Node = &Buffer{}

// Data returns the buffer contents. The slice must not be modified.
func (b *Buffer) Data() []byte { return b.data }

func (b *Buffer) Usage() gputypes.BufferUsage { return b.usage }

// SyncFromFrontEnd copies data and usage, queueing the buffer for upload when the data changed.
func (b *Buffer) SyncFromFrontEnd(fe frontend.Node, firstTime bool) {
	node, ok := fe.(frontend.Buffer)
	if !ok {
		return
	}
	dirty := b.SyncCommon(fe, firstTime)

	if firstTime || !bytes.Equal(b.data, node.Data) {
		b.data = bytes.Clone(node.Data)
		if b.manager != nil {
			b.manager.AddDirtyBuffer(b.PeerID())
		}
		dirty = true
	}
	if b.usage != node.Usage {
		b.usage = node.Usage
		dirty = true
	}

	if dirty {
		b.MarkDirtyFrom(backend.BuffersDirty, b)
	}
}

func (b *Buffer) Cleanup() {
	b.ResetCommon()
	b.data = nil
	b.usage = gputypes.BufferUsageNone
}
