package raycast

import (
	"github.com/Carmen-Shannon/oxy-render/common"
	"github.com/go-gl/mathgl/mgl32"
)

// Volume is a bounding volume a ray can be tested against.
type Volume interface {
	// ID returns the id of the node the volume belongs to.
	ID() common.NodeId

	// Center returns the centre of the volume.
	Center() mgl32.Vec3

	// Intersects tests the ray against the volume. The outputs are written only on a hit; either may be nil.
	//
	// Parameters:
	//   - r: the ray
	//   - q: receives the intersection point
	//   - uvw: receives barycentric coordinates where the volume has them
	//
	// Returns:
	//   - bool: true on a hit
	Intersects(r Ray, q, uvw *mgl32.Vec3) bool
}

var (
	_ Volume = TriangleBoundingVolume{}
	_ Volume = Sphere{}
)
