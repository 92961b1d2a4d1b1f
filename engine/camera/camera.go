// Package camera builds the front-end snapshots of a camera entity. A Camera holds perspective settings and reads
// its position from an attached CameraController; Snapshots turns both into the Entity, Transform and CameraLens
// nodes the engine syncs.
package camera

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-render/common"
	"github.com/Carmen-Shannon/oxy-render/engine/frontend"
	"github.com/go-gl/mathgl/mgl32"
)

type cameraImpl struct {
	mu sync.Mutex

	up mgl32.Vec3

	fov      float32
	aspect   float32
	near     float32
	far      float32
	exposure float32

	controller CameraController
}

// Camera defines the interface for a perspective camera driven by a CameraController.
type Camera interface {
	// Up returns the camera's up vector.
	Up() mgl32.Vec3

	// Fov returns the vertical field of view in radians.
	Fov() float32

	// Aspect returns the aspect ratio (width / height).
	Aspect() float32

	// Near returns the near clipping plane distance.
	Near() float32

	// Far returns the far clipping plane distance.
	Far() float32

	// Exposure returns the exposure forwarded to the lens.
	Exposure() float32

	// SetUp sets the camera's up vector.
	//
	// Parameters:
	//   - up: the up vector
	SetUp(up mgl32.Vec3)

	// SetFov sets the vertical field of view in radians.
	//
	// Parameters:
	//   - fov: field of view in radians
	SetFov(fov float32)

	// SetAspect sets the aspect ratio. Non-positive values are ignored.
	//
	// Parameters:
	//   - aspect: width / height
	SetAspect(aspect float32)

	// SetNear sets the near clipping plane distance.
	//
	// Parameters:
	//   - near: near plane distance
	SetNear(near float32)

	// SetFar sets the far clipping plane distance.
	//
	// Parameters:
	//   - far: far plane distance
	SetFar(far float32)

	// SetExposure sets the exposure forwarded to the lens.
	//
	// Parameters:
	//   - exposure: the exposure
	SetExposure(exposure float32)

	// Controller returns the attached CameraController, or nil.
	Controller() CameraController

	// SetController attaches a CameraController.
	//
	// Parameters:
	//   - ctrl: the controller
	SetController(ctrl CameraController)

	// ViewMatrix returns the world-to-view matrix. Identity when no controller is attached.
	ViewMatrix() mgl32.Mat4

	// ProjectionMatrix returns the perspective projection.
	ProjectionMatrix() mgl32.Mat4

	// ViewProjectionMatrix returns projection × view.
	ViewProjectionMatrix() mgl32.Mat4

	// Frustum returns the clip planes of ViewProjectionMatrix.
	Frustum() common.Frustum

	// Transform returns the camera's world placement: the inverse of ViewMatrix split into rotation and
	// translation.
	Transform() common.Transform

	// Snapshots returns the front-end nodes of the camera entity. The entity references the transform and lens.
	//
	// Parameters:
	//   - entityID: id of the camera entity
	//   - transformID: id of its Transform component
	//   - lensID: id of its CameraLens component
	//
	// Returns:
	//   - frontend.Entity: the camera entity
	//   - frontend.Transform: the placement
	//   - frontend.CameraLens: the projection and exposure
	Snapshots(entityID, transformID, lensID common.NodeId) (frontend.Entity, frontend.Transform, frontend.CameraLens)
}

var _ Camera = &cameraImpl{}

// NewCamera creates a new Camera with a 45° field of view, aspect 1 and clip planes at 0.1 and 100.
//
// Parameters:
//   - options: functional options to configure the camera
//
// Returns:
//   - Camera: the newly created camera
func NewCamera(options ...CameraBuilderOption) Camera {
	c := &cameraImpl{
		up:       mgl32.Vec3{0, 1, 0},
		fov:      mgl32.DegToRad(45),
		aspect:   1,
		near:     0.1,
		far:      100,
		exposure: 0,
	}
	for _, option := range options {
		option(c)
	}
	return c
}

func (c *cameraImpl) Up() mgl32.Vec3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.up
}

func (c *cameraImpl) Fov() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fov
}

func (c *cameraImpl) Aspect() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.aspect
}

func (c *cameraImpl) Near() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.near
}

func (c *cameraImpl) Far() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.far
}

func (c *cameraImpl) Exposure() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.exposure
}

func (c *cameraImpl) SetUp(up mgl32.Vec3) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.up = up
}

func (c *cameraImpl) SetFov(fov float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fov = fov
}

func (c *cameraImpl) SetAspect(aspect float32) {
	if aspect <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.aspect = aspect
}

func (c *cameraImpl) SetNear(near float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.near = near
}

func (c *cameraImpl) SetFar(far float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.far = far
}

func (c *cameraImpl) SetExposure(exposure float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.exposure = exposure
}

func (c *cameraImpl) Controller() CameraController {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.controller
}

func (c *cameraImpl) SetController(ctrl CameraController) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.controller = ctrl
}

func (c *cameraImpl) ViewMatrix() mgl32.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewMatrix()
}

func (c *cameraImpl) ProjectionMatrix() mgl32.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return mgl32.Perspective(c.fov, c.aspect, c.near, c.far)
}

func (c *cameraImpl) ViewProjectionMatrix() mgl32.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return mgl32.Perspective(c.fov, c.aspect, c.near, c.far).Mul4(c.viewMatrix())
}

func (c *cameraImpl) Frustum() common.Frustum {
	return common.ExtractFrustumFromMatrix(c.ViewProjectionMatrix())
}

func (c *cameraImpl) Transform() common.Transform {
	c.mu.Lock()
	defer c.mu.Unlock()

	t := common.IdentityTransform()
	if c.controller == nil {
		return t
	}
	world := c.viewMatrix().Inv()
	t.Rotation = mgl32.Mat4ToQuat(world).Normalize()
	t.Translation = c.controller.Position()
	return t
}

func (c *cameraImpl) Snapshots(entityID, transformID, lensID common.NodeId) (frontend.Entity, frontend.Transform, frontend.CameraLens) {
	transform := frontend.Transform{Base: frontend.NewBase(transformID), Transform: c.Transform()}
	lens := frontend.CameraLens{
		Base:       frontend.NewBase(lensID),
		Projection: c.ProjectionMatrix(),
		Exposure:   c.Exposure(),
	}
	entity := frontend.Entity{
		Base: frontend.NewBase(entityID),
		Components: []frontend.ComponentRef{
			{Kind: frontend.KindTransform, Id: transformID},
			{Kind: frontend.KindCameraLens, Id: lensID},
		},
	}
	return entity, transform, lens
}

// viewMatrix looks from the controller position at its target. Caller must hold the mutex.
func (c *cameraImpl) viewMatrix() mgl32.Mat4 {
	if c.controller == nil {
		return mgl32.Ident4()
	}
	eye, target := c.controller.Position(), c.controller.Target()
	if eye.ApproxEqual(target) {
		return mgl32.Translate3D(-eye.X(), -eye.Y(), -eye.Z())
	}
	return mgl32.LookAtV(eye, target, c.up)
}
