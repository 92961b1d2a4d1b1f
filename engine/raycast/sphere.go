package raycast

import (
	"math"

	"github.com/Carmen-Shannon/oxy-render/common"
	"github.com/go-gl/mathgl/mgl32"
)

// Sphere is a bounding sphere. The zero sphere (origin centre, zero radius) is the null sphere and contains nothing.
type Sphere struct {
	id     common.NodeId
	center mgl32.Vec3
	radius float32
}

// NewSphere builds a sphere.
func NewSphere(id common.NodeId, center mgl32.Vec3, radius float32) Sphere {
	return Sphere{id: id, center: center, radius: radius}
}

// SphereFromPoints computes a bounding sphere of points with Ritter's algorithm.
//
// Parameters:
//   - id: id to tag the sphere with
//   - points: the points to enclose
//
// Returns:
//   - Sphere: the enclosing sphere, or the null sphere for no points
func SphereFromPoints(id common.NodeId, points []mgl32.Vec3) Sphere {
	if len(points) == 0 {
		return Sphere{id: id}
	}

	s := sphereFromDistantPoints(points)
	for _, p := range points {
		s = s.growToPoint(p)
	}
	s.id = id
	return s
}

// sphereFromDistantPoints seeds Ritter's algorithm with the most separated pair of axis extremes.
func sphereFromDistantPoints(points []mgl32.Vec3) Sphere {
	var minIdx, maxIdx [3]int
	for i, p := range points {
		for axis := range 3 {
			if p[axis] < points[minIdx[axis]][axis] {
				minIdx[axis] = i
			}
			if p[axis] > points[maxIdx[axis]][axis] {
				maxIdx[axis] = i
			}
		}
	}

	best := 0
	bestDist := float32(-1)
	for axis := range 3 {
		d := points[maxIdx[axis]].Sub(points[minIdx[axis]]).LenSqr()
		if d > bestDist {
			bestDist = d
			best = axis
		}
	}
	lo := points[minIdx[best]]
	hi := points[maxIdx[best]]
	center := lo.Add(hi).Mul(0.5)
	return Sphere{center: center, radius: hi.Sub(center).Len()}
}

func (s Sphere) growToPoint(p mgl32.Vec3) Sphere {
	d := p.Sub(s.center)
	dist2 := d.LenSqr()
	if dist2 <= s.radius*s.radius {
		return s
	}
	dist := float32(math.Sqrt(float64(dist2)))
	newRadius := (s.radius + dist) * 0.5
	k := (newRadius - s.radius) / dist
	return Sphere{id: s.id, center: s.center.Add(d.Mul(k)), radius: newRadius}
}

func (s Sphere) ID() common.NodeId { return s.id }

func (s Sphere) Center() mgl32.Vec3 { return s.center }

func (s Sphere) Radius() float32 { return s.radius }

// WithID returns a copy tagged with id.
func (s Sphere) WithID(id common.NodeId) Sphere {
	s.id = id
	return s
}

// IsNull reports whether this is the null sphere.
func (s Sphere) IsNull() bool {
	return s.radius == 0 && s.center == mgl32.Vec3{}
}

// ExpandToContain returns the smallest sphere enclosing both s and other. A null sphere on either side is ignored.
func (s Sphere) ExpandToContain(other Sphere) Sphere {
	if other.IsNull() {
		return s
	}
	if s.IsNull() {
		return other.WithID(s.id)
	}

	d := other.center.Sub(s.center)
	dist := d.Len()
	if dist+other.radius <= s.radius {
		return s
	}
	if dist+s.radius <= other.radius {
		return other.WithID(s.id)
	}

	newRadius := (dist + s.radius + other.radius) * 0.5
	center := s.center
	if dist > 0 {
		center = s.center.Add(d.Mul((newRadius - s.radius) / dist))
	}
	return Sphere{id: s.id, center: center, radius: newRadius}
}

// Transformed maps the centre through m and scales the radius by the largest axis scale of m.
func (s Sphere) Transformed(m mgl32.Mat4) Sphere {
	if s.IsNull() {
		return s
	}
	return Sphere{
		id:     s.id,
		center: mgl32.TransformCoordinate(s.center, m),
		radius: s.radius * mgl32.ExtractMaxScale(m),
	}
}

// Intersects tests the ray against the sphere. q receives the entry point, or the ray origin when it starts inside.
// uvw is not used.
func (s Sphere) Intersects(r Ray, q, _ *mgl32.Vec3) bool {
	m := r.Origin().Sub(s.center)
	b := m.Dot(r.Direction())
	c := m.Dot(m) - s.radius*s.radius

	if c > 0 && b > 0 {
		return false
	}
	discr := b*b - c
	if discr < 0 {
		return false
	}

	t := -b - float32(math.Sqrt(float64(discr)))
	if t < 0 {
		t = 0
	}
	if q != nil {
		*q = r.Point(t)
	}
	return true
}
