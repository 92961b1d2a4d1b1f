package camera

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-render/common"
	"github.com/Carmen-Shannon/oxy-render/engine"
	"github.com/Carmen-Shannon/oxy-render/engine/frontend"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestControllerDefaults(t *testing.T) {
	cc := NewCameraController()
	assert.InDelta(t, 10, cc.Radius(), 1e-6)
	p := cc.Position()
	assert.InDelta(t, 0, p.X(), 1e-5)
	assert.InDelta(t, 5, p.Y(), 1e-5)
	assert.InDelta(t, 8.660254, p.Z(), 1e-5)
}

func TestControllerSetPositionRoundTrip(t *testing.T) {
	cc := NewCameraController(WithTarget(mgl32.Vec3{1, 0, 0}))
	cc.SetPosition(mgl32.Vec3{4, 4, 0})

	assertNear(t, mgl32.Vec3{4, 4, 0}, cc.Position(), 1e-4)
	assert.InDelta(t, 5, cc.Radius(), 1e-5)
	assert.InDelta(t, mgl32.DegToRad(90), cc.Azimuth(), 1e-5)
}

func TestControllerClamps(t *testing.T) {
	cc := NewCameraController(WithRadiusBounds(5, 2), WithElevationBounds(0, 0.5), WithMouseSensitivity(1))

	cc.Zoom(100)
	assert.InDelta(t, 2, cc.Radius(), 1e-6)
	cc.SetRadius(50)
	assert.InDelta(t, 5, cc.Radius(), 1e-6)

	cc.Orbit(0, 10)
	assert.InDelta(t, 0.5, cc.Elevation(), 1e-6)
	cc.OrbitDown()
	cc.SetElevation(-3)
	assert.InDelta(t, 0, cc.Elevation(), 1e-6)
}

func TestControllerPanKeepsOrbit(t *testing.T) {
	cc := NewCameraController(WithElevation(0), WithRadius(4), WithPanSpeed(2))

	cc.PanRight(1)
	assertNear(t, mgl32.Vec3{2, 0, 0}, cc.Target(), 1e-5)
	assertNear(t, mgl32.Vec3{2, 0, 4}, cc.Position(), 1e-5)

	cc.PanForward(1)
	assertNear(t, mgl32.Vec3{2, 0, -2}, cc.Target(), 1e-5)
	assert.InDelta(t, 4, cc.Position().Sub(cc.Target()).Len(), 1e-5)

	cc.PanUp(0.5)
	assert.InDelta(t, 1, cc.Target().Y(), 1e-5)
}

func TestCameraWithoutControllerIsIdentity(t *testing.T) {
	c := NewCamera()
	assert.Equal(t, mgl32.Ident4(), c.ViewMatrix())
	assert.Equal(t, common.IdentityTransform(), c.Transform())
}

func TestCameraTransformInvertsView(t *testing.T) {
	c := NewCamera(WithController(NewCameraController(WithTarget(mgl32.Vec3{1, 2, 3}), WithAzimuth(0.7))))

	world := c.Transform().Matrix()
	assertNear(t, c.ViewMatrix(), world.Inv(), 1e-4)

	f := c.Frustum()
	assert.True(t, f.ContainsSphere(mgl32.Vec3{1, 2, 3}, 0.1), "the target is in view")
	assert.False(t, f.ContainsSphere(c.Controller().Position().Add(c.Controller().Position().Sub(mgl32.Vec3{1, 2, 3})), 0.1))
}

func TestCameraSnapshotsDriveRenderView(t *testing.T) {
	c := NewCamera(
		WithFov(mgl32.DegToRad(60)),
		WithAspect(16.0/9.0),
		WithExposure(0.5),
		WithController(NewCameraController(WithRadius(6), WithAzimuth(1.2))),
	)
	ent, tr, lens := c.Snapshots(1, 2, 3)

	e := engine.NewEngine(engine.WithWorkers(1))
	t.Cleanup(e.Shutdown)
	e.Sync(tr, lens, ent,
		frontend.RenderSettings{Base: frontend.NewBase(10), ActiveFrameGraph: 11},
		frontend.CameraSelector{FrameGraphBase: frontend.FrameGraphBase{Base: frontend.NewBase(11)}, Camera: 1},
	)

	views, err := e.Frame()
	require.NoError(t, err)
	require.Len(t, views, 1)
	v := views[0]
	assert.Equal(t, common.NodeId(1), v.CameraID)
	assertNear(t, c.ViewMatrix(), v.ViewMatrix, 1e-4)
	assertNear(t, c.ProjectionMatrix(), v.ProjectionMatrix, 1e-5)
	assert.InDelta(t, 0.5, v.Exposure, 1e-6)
}

// assertNear compares want and got component by component with an absolute tolerance.
func assertNear[V mgl32.Vec3 | mgl32.Vec4 | mgl32.Mat4](t *testing.T, want, got V, delta float64) {
	t.Helper()
	for i := range len(want) {
		assert.InDelta(t, want[i], got[i], delta, "component %d: want %v, got %v", i, want, got)
	}
}
