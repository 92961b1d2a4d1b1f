// package common contains common types that are used throughout this engine. They are not interface-wrapped structs, just plain structs that express
// commonly used data-types.
package common

import (
	"strconv"
	"sync/atomic"

	"github.com/go-gl/mathgl/mgl32"
)

// NodeId identifies a node across the front-end/back-end boundary. The zero value is the null id and never names a live node.
type NodeId uint64

// NullNodeId is the id that refers to no node.
const NullNodeId NodeId = 0

var lastNodeId atomic.Uint64

// NewNodeId hands out a process-wide unique, non-null NodeId. Ids are never reused.
//
// Returns:
//   - NodeId: a fresh id
func NewNodeId() NodeId {
	return NodeId(lastNodeId.Add(1))
}

// IsNull reports whether the id is the null id.
func (id NodeId) IsNull() bool {
	return id == NullNodeId
}

func (id NodeId) String() string {
	return strconv.FormatUint(uint64(id), 10)
}

// Transform is a decomposed local transform: scale, then rotation, then translation.
type Transform struct {
	Scale       mgl32.Vec3
	Rotation    mgl32.Quat
	Translation mgl32.Vec3
}

// IdentityTransform returns a Transform with unit scale, no rotation and no translation.
func IdentityTransform() Transform {
	return Transform{
		Scale:    mgl32.Vec3{1, 1, 1},
		Rotation: mgl32.QuatIdent(),
	}
}

// Matrix composes the transform into a 4x4 matrix as T * R * S.
//
// Returns:
//   - mgl32.Mat4: the composed model matrix
func (t Transform) Matrix() mgl32.Mat4 {
	translate := mgl32.Translate3D(t.Translation.X(), t.Translation.Y(), t.Translation.Z())
	scale := mgl32.Scale3D(t.Scale.X(), t.Scale.Y(), t.Scale.Z())
	return translate.Mul4(t.Rotation.Normalize().Mat4()).Mul4(scale)
}

// Equal compares two transforms component-wise with exact float equality.
func (t Transform) Equal(other Transform) bool {
	return t.Scale == other.Scale && t.Rotation == other.Rotation && t.Translation == other.Translation
}
