// Package frontend defines the plain snapshots the front-end hands to the backend. They carry no behaviour: the backend
// copies what it needs out of them during a sync and never retains the snapshot itself.
package frontend

// Kind tags which backend node type a front-end snapshot maps to.
type Kind uint8

const (
	KindUnknown Kind = iota
	KindEntity
	KindTransform
	KindCameraLens
	KindLayer
	KindBuffer
	KindAttribute
	KindGeometry
	KindGeometryRenderer
	KindMaterial
	KindComputeCommand
	KindSkeleton
	KindSkeletonLoader
	KindRenderSettings

	// Frame-graph kinds.
	KindFrameGraphGroup
	KindClearBuffers
	KindCameraSelector
	KindLayerFilter
	KindViewport
	KindNoDraw
	KindFrustumCulling
	KindDispatchCompute
	KindSortPolicy
	KindRenderStateSet
)

var kindNames = [...]string{
	KindUnknown:          "Unknown",
	KindEntity:           "Entity",
	KindTransform:        "Transform",
	KindCameraLens:       "CameraLens",
	KindLayer:            "Layer",
	KindBuffer:           "Buffer",
	KindAttribute:        "Attribute",
	KindGeometry:         "Geometry",
	KindGeometryRenderer: "GeometryRenderer",
	KindMaterial:         "Material",
	KindComputeCommand:   "ComputeCommand",
	KindSkeleton:         "Skeleton",
	KindSkeletonLoader:   "SkeletonLoader",
	KindRenderSettings:   "RenderSettings",
	KindFrameGraphGroup:  "FrameGraphGroup",
	KindClearBuffers:     "ClearBuffers",
	KindCameraSelector:   "CameraSelector",
	KindLayerFilter:      "LayerFilter",
	KindViewport:         "Viewport",
	KindNoDraw:           "NoDraw",
	KindFrustumCulling:   "FrustumCulling",
	KindDispatchCompute:  "DispatchCompute",
	KindSortPolicy:       "SortPolicy",
	KindRenderStateSet:   "RenderStateSet",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "Unknown"
}

// IsFrameGraph reports whether the kind is one of the frame-graph node kinds.
func (k Kind) IsFrameGraph() bool {
	return k >= KindFrameGraphGroup && k <= KindRenderStateSet
}
