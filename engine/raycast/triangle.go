package raycast

import (
	"math"

	"github.com/Carmen-Shannon/oxy-render/common"
	"github.com/go-gl/mathgl/mgl32"
)

// TriangleBoundingVolume is an immutable triangle tagged with the id of the node it came from.
type TriangleBoundingVolume struct {
	id      common.NodeId
	a, b, c mgl32.Vec3
}

// NewTriangleBoundingVolume builds a triangle volume.
func NewTriangleBoundingVolume(id common.NodeId, a, b, c mgl32.Vec3) TriangleBoundingVolume {
	return TriangleBoundingVolume{id: id, a: a, b: b, c: c}
}

func (v TriangleBoundingVolume) ID() common.NodeId { return v.id }

func (v TriangleBoundingVolume) A() mgl32.Vec3 { return v.a }

func (v TriangleBoundingVolume) B() mgl32.Vec3 { return v.b }

func (v TriangleBoundingVolume) C() mgl32.Vec3 { return v.c }

// Center returns the centroid of the triangle.
func (v TriangleBoundingVolume) Center() mgl32.Vec3 {
	return v.a.Add(v.b).Add(v.c).Mul(1.0 / 3.0)
}

// Transformed returns a copy with every vertex mapped through m. The id is kept.
func (v TriangleBoundingVolume) Transformed(m mgl32.Mat4) TriangleBoundingVolume {
	return TriangleBoundingVolume{
		id: v.id,
		a:  mgl32.TransformCoordinate(v.a, m),
		b:  mgl32.TransformCoordinate(v.b, m),
		c:  mgl32.TransformCoordinate(v.c, m),
	}
}

// Intersects tests the ray segment against the triangle. The vertices are tested in (c, b, a) order, so only
// triangles whose (a, b, c) counter-clockwise normal points along the ray direction are hit.
// On a hit q receives the intersection point and uvw the barycentric weights of c, b and a. Both may be nil.
func (v TriangleBoundingVolume) Intersects(r Ray, q, uvw *mgl32.Vec3) bool {
	var t float32
	var bary mgl32.Vec3
	if !intersectsSegmentTriangle(r, v.c, v.b, v.a, &bary, &t) {
		return false
	}
	if q != nil {
		*q = r.Point(t * r.Distance())
	}
	if uvw != nil {
		*uvw = bary
	}
	return true
}

// intersectsSegmentTriangle is the segment/triangle test from Real-Time Collision Detection (5.3.6), run on the segment
// from the ray origin to its end. t is the hit parameter in [0, 1] along the segment.
func intersectsSegmentTriangle(r Ray, a, b, c mgl32.Vec3, uvw *mgl32.Vec3, t *float32) bool {
	ab := b.Sub(a)
	ac := c.Sub(a)
	qp := r.Origin().Sub(r.End())

	n := ab.Cross(ac)
	d := qp.Dot(n)
	if d <= 0 || math.IsNaN(float64(d)) {
		return false
	}

	ap := r.Origin().Sub(a)
	tt := ap.Dot(n)
	if tt < 0 || tt > d {
		return false
	}

	e := qp.Cross(ap)
	vv := ac.Dot(e)
	if vv < 0 || vv > d {
		return false
	}
	ww := -ab.Dot(e)
	if ww < 0 || vv+ww > d {
		return false
	}

	ood := 1 / d
	tt *= ood
	vv *= ood
	ww *= ood

	*uvw = mgl32.Vec3{1 - vv - ww, vv, ww}
	*t = tt
	return true
}
