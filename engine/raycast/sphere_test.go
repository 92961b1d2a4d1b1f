package raycast

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSphereFromPointsEnclosesAll(t *testing.T) {
	points := []mgl32.Vec3{
		{-1, 0, 0}, {1, 0, 0}, {0, 2, 0}, {0, 0, -3}, {0.5, 0.5, 0.5},
	}
	s := SphereFromPoints(9, points)
	assert.EqualValues(t, 9, s.ID())
	for _, p := range points {
		assert.LessOrEqual(t, p.Sub(s.Center()).Len(), s.Radius()+1e-4)
	}
	assert.True(t, SphereFromPoints(1, nil).IsNull())
}

func TestSphereExpandToContain(t *testing.T) {
	a := NewSphere(1, mgl32.Vec3{0, 0, 0}, 1)
	b := NewSphere(2, mgl32.Vec3{4, 0, 0}, 1)

	u := a.ExpandToContain(b)
	assert.EqualValues(t, 1, u.ID())
	assert.InDelta(t, 3.0, float64(u.Radius()), 1e-5)
	assertNear(t, mgl32.Vec3{2, 0, 0}, u.Center(), 1e-5)

	inner := NewSphere(3, mgl32.Vec3{0.1, 0, 0}, 0.2)
	assert.Equal(t, a, a.ExpandToContain(inner))
	assert.Equal(t, a, a.ExpandToContain(Sphere{}))
	assert.Equal(t, b.WithID(0), Sphere{}.ExpandToContain(b))
}

func TestSphereTransformed(t *testing.T) {
	s := NewSphere(1, mgl32.Vec3{1, 0, 0}, 1)
	m := mgl32.Translate3D(0, 5, 0).Mul4(mgl32.Scale3D(2, 3, 1))
	ts := s.Transformed(m)
	assertNear(t, mgl32.Vec3{2, 5, 0}, ts.Center(), 1e-5)
	assert.InDelta(t, 3.0, float64(ts.Radius()), 1e-5)
}

func TestSphereIntersects(t *testing.T) {
	s := NewSphere(1, mgl32.Vec3{0, 0, 5}, 1)

	var q mgl32.Vec3
	require.True(t, s.Intersects(NewRay(mgl32.Vec3{}, mgl32.Vec3{0, 0, 1}, 10), &q, nil))
	assertNear(t, mgl32.Vec3{0, 0, 4}, q, 1e-5)

	assert.False(t, s.Intersects(NewRay(mgl32.Vec3{}, mgl32.Vec3{0, 0, -1}, 10), nil, nil))
	assert.False(t, s.Intersects(NewRay(mgl32.Vec3{3, 0, 0}, mgl32.Vec3{0, 0, 1}, 10), nil, nil))

	require.True(t, s.Intersects(NewRay(mgl32.Vec3{0, 0, 5}, mgl32.Vec3{1, 0, 0}, 10), &q, nil))
	assert.Equal(t, mgl32.Vec3{0, 0, 5}, q)
}

func TestRayTransformed(t *testing.T) {
	r := NewRay(mgl32.Vec3{0, 0, 0}, mgl32.Vec3{0, 0, 3}, 2)
	assert.Equal(t, mgl32.Vec3{0, 0, 1}, r.Direction())
	assert.Equal(t, mgl32.Vec3{0, 0, 2}, r.End())

	tr := r.Transformed(mgl32.Translate3D(1, 0, 0).Mul4(mgl32.Scale3D(1, 1, 2)))
	assertNear(t, mgl32.Vec3{1, 0, 0}, tr.Origin(), 1e-5)
	assertNear(t, mgl32.Vec3{0, 0, 1}, tr.Direction(), 1e-5)
	assert.InDelta(t, 4.0, float64(tr.Distance()), 1e-5)
}

func TestParsePickMode(t *testing.T) {
	m, ok := ParsePickMode("all")
	assert.True(t, ok)
	assert.Equal(t, PickAll, m)
	_, ok = ParsePickMode("some")
	assert.False(t, ok)
}
