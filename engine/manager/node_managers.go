// Package manager groups the arenas holding every kind of backend node and maps front-end kinds onto them.
package manager

import (
	"github.com/Carmen-Shannon/oxy-render/common"
	"github.com/Carmen-Shannon/oxy-render/engine/animation"
	"github.com/Carmen-Shannon/oxy-render/engine/backend"
	"github.com/Carmen-Shannon/oxy-render/engine/compute"
	"github.com/Carmen-Shannon/oxy-render/engine/entity"
	"github.com/Carmen-Shannon/oxy-render/engine/framegraph"
	"github.com/Carmen-Shannon/oxy-render/engine/frontend"
	"github.com/Carmen-Shannon/oxy-render/engine/geometry"
	"github.com/Carmen-Shannon/oxy-render/engine/material"
)

// NodeManagers owns one arena per backend node kind. Every backend node is exclusively owned by its arena; nodes
// refer to each other by id only.
type NodeManagers struct {
	Entities          *backend.Manager[entity.Entity]
	Transforms        *backend.Manager[entity.Transform]
	CameraLenses      *backend.Manager[entity.CameraLens]
	Layers            *backend.Manager[entity.Layer]
	Buffers           *geometry.BufferManager
	Attributes        *backend.Manager[geometry.Attribute]
	Geometries        *backend.Manager[geometry.Geometry]
	GeometryRenderers *backend.Manager[geometry.GeometryRenderer]
	Materials         *backend.Manager[material.Material]
	ComputeCommands   *backend.Manager[compute.ComputeCommand]
	Skeletons         *backend.Manager[animation.Skeleton]
	RenderSettings    *backend.Manager[framegraph.RenderSettings]
	FrameGraph        *framegraph.Manager

	skeletonLoader animation.SkeletonLoader
	tables         map[frontend.Kind]nodeTable
}

var _ geometry.Resources = &NodeManagers{}

// NewNodeManagers creates empty arenas for every kind.
//
// Parameters:
//   - options: functional options
//
// Returns:
//   - *NodeManagers: the managers
func NewNodeManagers(options ...NodeManagersBuilderOption) *NodeManagers {
	m := &NodeManagers{}
	for _, opt := range options {
		opt(m)
	}

	m.Entities = backend.NewManager(entity.NewEntity)
	m.Transforms = backend.NewManager(entity.NewTransform)
	m.CameraLenses = backend.NewManager(entity.NewCameraLens)
	m.Layers = backend.NewManager[entity.Layer](nil)
	m.Buffers = geometry.NewBufferManager()
	m.Attributes = backend.NewManager[geometry.Attribute](nil)
	m.Geometries = backend.NewManager[geometry.Geometry](nil)
	m.GeometryRenderers = backend.NewManager(geometry.NewGeometryRenderer)
	m.Materials = backend.NewManager(material.NewMaterial)
	m.ComputeCommands = backend.NewManager(compute.NewComputeCommand)
	m.Skeletons = backend.NewManager(func() *animation.Skeleton { return animation.NewSkeleton(m.skeletonLoader) })
	m.RenderSettings = backend.NewManager[framegraph.RenderSettings](nil)
	m.FrameGraph = framegraph.NewManager()

	m.tables = map[frontend.Kind]nodeTable{
		frontend.KindEntity:           arena(m.Entities),
		frontend.KindTransform:        arena(m.Transforms),
		frontend.KindCameraLens:       arena(m.CameraLenses),
		frontend.KindLayer:            arena(m.Layers),
		frontend.KindBuffer:           arena(m.Buffers.Manager),
		frontend.KindAttribute:        arena(m.Attributes),
		frontend.KindGeometry:         arena(m.Geometries),
		frontend.KindGeometryRenderer: arena(m.GeometryRenderers),
		frontend.KindMaterial:         arena(m.Materials),
		frontend.KindComputeCommand:   arena(m.ComputeCommands),
		frontend.KindSkeleton:         arena(m.Skeletons),
		frontend.KindSkeletonLoader:   arena(m.Skeletons),
		frontend.KindRenderSettings:   arena(m.RenderSettings),
	}
	for k := frontend.KindFrameGraphGroup; k <= frontend.KindRenderStateSet; k++ {
		m.tables[k] = frameGraphTable(m.FrameGraph, k)
	}
	return m
}

// LookupEntity returns the entity stored under id, or nil.
func (m *NodeManagers) LookupEntity(id common.NodeId) *entity.Entity { return m.Entities.Lookup(id) }

func (m *NodeManagers) LookupGeometry(id common.NodeId) *geometry.Geometry {
	return m.Geometries.Lookup(id)
}

func (m *NodeManagers) LookupAttribute(id common.NodeId) *geometry.Attribute {
	return m.Attributes.Lookup(id)
}

func (m *NodeManagers) LookupBuffer(id common.NodeId) *geometry.Buffer {
	return m.Buffers.Lookup(id)
}

// Supports reports whether nodes of kind can be stored.
func (m *NodeManagers) Supports(kind frontend.Kind) bool {
	_, ok := m.tables[kind]
	return ok
}

// GetOrCreate returns the node of kind stored under id, creating it in its default state if absent.
//
// Parameters:
//   - kind: the front-end kind
//   - id: the node id
//
// Returns:
//   - backend.Node: the node, nil if kind is not supported
//   - bool: true if the node was created by this call
func (m *NodeManagers) GetOrCreate(kind frontend.Kind, id common.NodeId) (backend.Node, bool) {
	t, ok := m.tables[kind]
	if !ok {
		return nil, false
	}
	return t.getOrCreate(id)
}

// Lookup returns the node of kind stored under id, or nil.
func (m *NodeManagers) Lookup(kind frontend.Kind, id common.NodeId) backend.Node {
	t, ok := m.tables[kind]
	if !ok {
		return nil
	}
	return t.lookup(id)
}

// Release removes the node of kind stored under id and returns it, or nil if there was none.
func (m *NodeManagers) Release(kind frontend.Kind, id common.NodeId) backend.Node {
	t, ok := m.tables[kind]
	if !ok {
		return nil
	}
	return t.release(id)
}

// nodeTable is the create/lookup/destroy triple of one kind.
type nodeTable struct {
	getOrCreate func(id common.NodeId) (backend.Node, bool)
	lookup      func(id common.NodeId) backend.Node
	release     func(id common.NodeId) backend.Node
}

func arena[T any, P interface {
	*T
	backend.Node
}](a *backend.Manager[T]) nodeTable {
	wrap := func(n *T) backend.Node {
		if n == nil {
			return nil
		}
		return P(n)
	}
	return nodeTable{
		getOrCreate: func(id common.NodeId) (backend.Node, bool) {
			n, created := a.GetOrCreate(id)
			return P(n), created
		},
		lookup:  func(id common.NodeId) backend.Node { return wrap(a.Lookup(id)) },
		release: func(id common.NodeId) backend.Node { return wrap(a.Release(id)) },
	}
}

func frameGraphTable(fg *framegraph.Manager, kind frontend.Kind) nodeTable {
	return nodeTable{
		getOrCreate: func(id common.NodeId) (backend.Node, bool) {
			if n := fg.Lookup(id); n != nil {
				return n, false
			}
			n := framegraph.New(kind)
			fg.AppendNode(id, n)
			return n, true
		},
		lookup:  func(id common.NodeId) backend.Node { return fg.Lookup(id) },
		release: func(id common.NodeId) backend.Node { return fg.ReleaseNode(id) },
	}
}
