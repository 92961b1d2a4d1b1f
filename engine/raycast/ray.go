// Package raycast holds the ray and bounding volume primitives used by picking and culling.
package raycast

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Ray is a finite ray: an origin, a unit direction and a length.
type Ray struct {
	origin    mgl32.Vec3
	direction mgl32.Vec3
	distance  float32
}

// NewRay builds a ray. The direction is normalized; a zero direction yields a degenerate ray that intersects nothing.
//
// Parameters:
//   - origin: start point
//   - direction: any non-zero direction vector
//   - distance: length of the ray along the normalized direction
//
// Returns:
//   - Ray: the ray
func NewRay(origin, direction mgl32.Vec3, distance float32) Ray {
	if direction.LenSqr() > 0 {
		direction = direction.Normalize()
	}
	return Ray{origin: origin, direction: direction, distance: distance}
}

// NewRayBetween builds the ray running from start to end.
func NewRayBetween(start, end mgl32.Vec3) Ray {
	d := end.Sub(start)
	return NewRay(start, d, d.Len())
}

func (r Ray) Origin() mgl32.Vec3 { return r.origin }

func (r Ray) Direction() mgl32.Vec3 { return r.direction }

func (r Ray) Distance() float32 { return r.distance }

// Point returns the point at parameter t along the ray: origin + direction * t.
func (r Ray) Point(t float32) mgl32.Vec3 {
	return r.origin.Add(r.direction.Mul(t))
}

// End returns the far end of the ray.
func (r Ray) End() mgl32.Vec3 {
	return r.Point(r.distance)
}

// Transformed maps both ends of the ray through m and returns the ray between them.
//
// Parameters:
//   - m: an affine transform
//
// Returns:
//   - Ray: the transformed ray; its distance reflects any scale in m
func (r Ray) Transformed(m mgl32.Mat4) Ray {
	start := mgl32.TransformCoordinate(r.origin, m)
	end := mgl32.TransformCoordinate(r.End(), m)
	if r.distance == 0 {
		return NewRay(start, mgl32.TransformNormal(r.direction, m), 0)
	}
	return NewRayBetween(start, end)
}
