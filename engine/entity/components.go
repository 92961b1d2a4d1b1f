package entity

import (
	"github.com/Carmen-Shannon/oxy-render/common"
	"github.com/Carmen-Shannon/oxy-render/engine/backend"
	"github.com/Carmen-Shannon/oxy-render/engine/frontend"
	"github.com/go-gl/mathgl/mgl32"
)

// Transform is the local transform component.
type Transform struct {
	backend.BackendNode
	transform common.Transform
	matrix    mgl32.Mat4
}

var _ backend.Node = &Transform{}

// NewTransform returns an identity transform.
func NewTransform() *Transform {
	return &Transform{transform: common.IdentityTransform(), matrix: mgl32.Ident4()}
}

// Matrix returns the composed local matrix.
func (t *Transform) Matrix() mgl32.Mat4 { return t.matrix }

func (t *Transform) Transform() common.Transform { return t.transform }

func (t *Transform) SyncFromFrontEnd(fe frontend.Node, firstTime bool) {
	node, ok := fe.(frontend.Transform)
	if !ok {
		return
	}
	dirty := t.SyncCommon(fe, firstTime)
	if firstTime || !t.transform.Equal(node.Transform) {
		t.transform = node.Transform
		t.matrix = node.Transform.Matrix()
		dirty = true
	}
	if dirty {
		t.MarkDirtyFrom(backend.TransformDirty, t)
	}
}

func (t *Transform) Cleanup() {
	t.ResetCommon()
	t.transform = common.IdentityTransform()
	t.matrix = mgl32.Ident4()
}

// CameraLens holds the projection of a camera entity.
type CameraLens struct {
	backend.BackendNode
	projection mgl32.Mat4
	exposure   float32
}

var _ backend.Node = &CameraLens{}

// NewCameraLens returns a lens with an identity projection.
func NewCameraLens() *CameraLens {
	return &CameraLens{projection: mgl32.Ident4()}
}

func (c *CameraLens) Projection() mgl32.Mat4 { return c.projection }

func (c *CameraLens) Exposure() float32 { return c.exposure }

func (c *CameraLens) SyncFromFrontEnd(fe frontend.Node, firstTime bool) {
	node, ok := fe.(frontend.CameraLens)
	if !ok {
		return
	}
	dirty := c.SyncCommon(fe, firstTime)
	if firstTime || c.projection != node.Projection {
		c.projection = node.Projection
		dirty = true
	}
	if !common.FuzzyCompare(c.exposure, node.Exposure) {
		c.exposure = node.Exposure
		dirty = true
	}
	if dirty {
		c.MarkDirtyFrom(backend.ParameterDirty, c)
	}
}

func (c *CameraLens) Cleanup() {
	c.ResetCommon()
	c.projection = mgl32.Ident4()
	c.exposure = 0
}

// Layer is a tag component matched by layer filters.
type Layer struct {
	backend.BackendNode
	recursive bool
}

var _ backend.Node = &Layer{}

// Recursive reports whether the layer also applies to the descendants of the entities carrying it.
func (l *Layer) Recursive() bool { return l.recursive }

func (l *Layer) SyncFromFrontEnd(fe frontend.Node, firstTime bool) {
	node, ok := fe.(frontend.Layer)
	if !ok {
		return
	}
	dirty := l.SyncCommon(fe, firstTime)
	if l.recursive != node.Recursive {
		l.recursive = node.Recursive
		dirty = true
	}
	if dirty || firstTime {
		l.MarkDirtyFrom(backend.LayersDirty, l)
	}
}

func (l *Layer) Cleanup() {
	l.ResetCommon()
	l.recursive = false
}
