package raycast

import (
	"github.com/Carmen-Shannon/oxy-render/common"
	"github.com/go-gl/mathgl/mgl32"
)

// PickMode selects how many hits a ray cast reports.
type PickMode uint8

const (
	// PickNearest keeps only the closest hit.
	PickNearest PickMode = iota
	// PickAll keeps every hit, closest first.
	PickAll
)

// ParsePickMode maps a configuration string to a PickMode.
//
// Returns:
//   - PickMode: the mode
//   - bool: false if the string names no mode
func ParsePickMode(s string) (PickMode, bool) {
	switch s {
	case "", "nearest":
		return PickNearest, true
	case "all":
		return PickAll, true
	}
	return PickNearest, false
}

// Hit describes one ray/triangle intersection.
type Hit struct {
	EntityID      common.NodeId
	TriangleIndex int
	// VertexIndex holds the indices of the triangle's vertices in visit order.
	VertexIndex  [3]uint32
	Intersection mgl32.Vec3
	Distance     float32
	Barycentric  mgl32.Vec3
}
