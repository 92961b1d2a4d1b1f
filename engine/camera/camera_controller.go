package camera

import "github.com/go-gl/mathgl/mgl32"

// CameraController owns the position of a camera. Position is kept on a sphere around the target, described by
// radius, azimuth and elevation; panning moves target and position together.
type CameraController interface {
	// Position returns the camera's world-space position.
	Position() mgl32.Vec3

	// Target returns the look-at point.
	Target() mgl32.Vec3

	// SetTarget moves the pivot and recomputes the position from the current spherical coordinates.
	//
	// Parameters:
	//   - target: world-space pivot
	SetTarget(target mgl32.Vec3)

	// SetPosition places the camera at p and derives radius, azimuth and elevation from it, clamped to bounds.
	//
	// Parameters:
	//   - p: world-space position
	SetPosition(p mgl32.Vec3)

	// Radius returns the distance from the target.
	Radius() float32

	// SetRadius sets the distance from the target, clamped to the radius bounds.
	//
	// Parameters:
	//   - radius: new distance
	SetRadius(radius float32)

	// Azimuth returns the horizontal angle around +Y in radians; 0 looks down -Z from +Z.
	Azimuth() float32

	// SetAzimuth sets the horizontal angle.
	//
	// Parameters:
	//   - azimuth: radians
	SetAzimuth(azimuth float32)

	// Elevation returns the vertical angle above the horizontal plane in radians.
	Elevation() float32

	// SetElevation sets the vertical angle, clamped to the elevation bounds.
	//
	// Parameters:
	//   - elevation: radians
	SetElevation(elevation float32)

	// Orbit rotates around the target by a mouse drag, scaled by the mouse sensitivity.
	//
	// Parameters:
	//   - dx: horizontal drag, positive orbits right
	//   - dy: vertical drag, positive orbits up
	Orbit(dx, dy float32)

	// OrbitLeft rotates left by one orbit speed step.
	OrbitLeft()

	// OrbitRight rotates right by one orbit speed step.
	OrbitRight()

	// OrbitUp tilts up by one orbit speed step.
	OrbitUp()

	// OrbitDown tilts down by one orbit speed step.
	OrbitDown()

	// Zoom changes the radius by delta scaled by the zoom speed. Positive delta moves closer.
	//
	// Parameters:
	//   - delta: zoom amount
	Zoom(delta float32)

	// PanRight moves target and position along the camera's right axis.
	//
	// Parameters:
	//   - delta: pan amount scaled by the pan speed
	PanRight(delta float32)

	// PanUp moves target and position along the camera's up axis.
	//
	// Parameters:
	//   - delta: pan amount scaled by the pan speed
	PanUp(delta float32)

	// PanForward moves target and position toward the target.
	//
	// Parameters:
	//   - delta: pan amount scaled by the pan speed
	PanForward(delta float32)
}
