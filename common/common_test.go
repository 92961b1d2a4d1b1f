package common

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewNodeIdIsUniqueAndNonNull(t *testing.T) {
	seen := make(map[NodeId]struct{})
	for range 100 {
		id := NewNodeId()
		require.False(t, id.IsNull())
		_, dup := seen[id]
		require.False(t, dup)
		seen[id] = struct{}{}
	}
	assert.True(t, NullNodeId.IsNull())
}

func TestTransformMatrix(t *testing.T) {
	assertNear(t, mgl32.Ident4(), IdentityTransform().Matrix(), 1e-5)

	tr := Transform{
		Scale:       mgl32.Vec3{2, 2, 2},
		Rotation:    mgl32.QuatRotate(mgl32.DegToRad(90), mgl32.Vec3{0, 0, 1}),
		Translation: mgl32.Vec3{1, 0, 0},
	}
	p := mgl32.TransformCoordinate(mgl32.Vec3{1, 0, 0}, tr.Matrix())
	assertNear(t, mgl32.Vec3{1, 2, 0}, p, 1e-5)
}

func TestFuzzyCompare(t *testing.T) {
	assert.True(t, FuzzyCompare(1.0, 1.0000001))
	assert.False(t, FuzzyCompare(1.0, 1.1))
	assert.True(t, FuzzyCompare(0, 0))
}

func TestFrustumContainsSphere(t *testing.T) {
	proj := mgl32.Perspective(mgl32.DegToRad(90), 1, 0.1, 100)
	view := mgl32.LookAtV(mgl32.Vec3{0, 0, 0}, mgl32.Vec3{0, 0, -1}, mgl32.Vec3{0, 1, 0})
	f := ExtractFrustumFromMatrix(proj.Mul4(view))

	assert.True(t, f.ContainsSphere(mgl32.Vec3{0, 0, -10}, 1))
	assert.False(t, f.ContainsSphere(mgl32.Vec3{0, 0, 10}, 1))
	assert.False(t, f.ContainsSphere(mgl32.Vec3{0, 0, -200}, 1))
	assert.True(t, f.ContainsSphere(mgl32.Vec3{0, 0, -100.5}, 1))
}

func TestCoalesce(t *testing.T) {
	assert.Equal(t, 3, Coalesce(0, 3, 4))
	assert.Equal(t, "", Coalesce[string]())
}

func TestSetLogger(t *testing.T) {
	t.Cleanup(func() { SetLogger(nil) })

	assert.False(t, Logger().Enabled(t.Context(), slog.LevelError))

	var buf bytes.Buffer
	SetLogger(slog.New(slog.NewTextHandler(&buf, nil)))
	Logger().Info("hello", "frame", 1)
	assert.Contains(t, buf.String(), "hello")

	SetLogger(nil)
	require.NotNil(t, Logger())
	assert.False(t, Logger().Enabled(t.Context(), slog.LevelError))
}

// assertNear compares want and got component by component with an absolute tolerance.
func assertNear[V mgl32.Vec3 | mgl32.Vec4 | mgl32.Mat4](t *testing.T, want, got V, delta float64) {
	t.Helper()
	for i := range len(want) {
		assert.InDelta(t, want[i], got[i], delta, "component %d: want %v, got %v", i, want, got)
	}
}
