package loader

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-render/common"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
)

// extractSkeleton converts one skin of the parsed document into a Skeleton whose joints are ordered parents first.
//
// Parameters:
//   - p: a parser holding a loaded document
//   - skinIndex: the skin to convert
//
// Returns:
//   - *Skeleton: the joints of the skin
//   - error: error if the skin is missing or references invalid nodes
func extractSkeleton(p *gltfParser, skinIndex int) (*Skeleton, error) {
	doc := p.Document()
	if doc == nil {
		return nil, errors.New("no document loaded")
	}
	if skinIndex < 0 || skinIndex >= len(doc.Skins) {
		return nil, errors.Errorf("skin index %d out of range (%d skins)", skinIndex, len(doc.Skins))
	}
	skin := &doc.Skins[skinIndex]

	var inverseBind [][16]float32
	if skin.InverseBindMatrices != nil {
		var err error
		inverseBind, err = p.ReadMat4Accessor(*skin.InverseBindMatrices)
		if err != nil {
			return nil, errors.Wrap(err, "read inverse bind matrices")
		}
	}

	joints := make([]joint, len(skin.Joints))
	nodeToJoint := make(map[int]int, len(skin.Joints))
	for i, nodeIndex := range skin.Joints {
		if nodeIndex < 0 || nodeIndex >= len(doc.Nodes) {
			return nil, errors.Errorf("joint %d: invalid node index %d", i, nodeIndex)
		}
		node := &doc.Nodes[nodeIndex]
		j := &joints[i]
		j.name = node.Name
		if j.name == "" {
			j.name = fmt.Sprintf("joint_%d", i)
		}
		j.pose = nodeTransform(node)
		j.inverseBind = mgl32.Ident4()
		if i < len(inverseBind) {
			j.inverseBind = mgl32.Mat4(inverseBind[i])
		}
		j.parent = -1
		nodeToJoint[nodeIndex] = i
	}

	for nodeIndex, node := range doc.Nodes {
		parent, ok := nodeToJoint[nodeIndex]
		if !ok {
			continue
		}
		for _, child := range node.Children {
			if c, ok := nodeToJoint[child]; ok {
				joints[c].parent = parent
			}
		}
	}

	return sortJoints(skin.Name, joints), nil
}

type joint struct {
	name        string
	parent      int
	pose        common.Transform
	inverseBind mgl32.Mat4
}

// nodeTransform reads the local TRS of a node, decomposing its matrix when one is given.
func nodeTransform(node *gltfNode) common.Transform {
	if node.Matrix != nil {
		return decomposeMatrix(mgl32.Mat4(*node.Matrix))
	}
	t := common.IdentityTransform()
	if node.Translation != nil {
		t.Translation = mgl32.Vec3(*node.Translation)
	}
	if node.Rotation != nil {
		r := *node.Rotation
		t.Rotation = mgl32.Quat{W: r[3], V: mgl32.Vec3{r[0], r[1], r[2]}}
	}
	if node.Scale != nil {
		t.Scale = mgl32.Vec3(*node.Scale)
	}
	return t
}

// decomposeMatrix splits a column-major matrix without shear into TRS.
func decomposeMatrix(m mgl32.Mat4) common.Transform {
	cols := [3]mgl32.Vec3{m.Col(0).Vec3(), m.Col(1).Vec3(), m.Col(2).Vec3()}
	scale := mgl32.Vec3{cols[0].Len(), cols[1].Len(), cols[2].Len()}

	rot := mgl32.Ident4()
	for i := range cols {
		s := scale[i]
		if s < 1e-4 {
			s = 1
		}
		rot.SetCol(i, cols[i].Mul(1/s).Vec4(0))
	}

	return common.Transform{
		Scale:       scale,
		Rotation:    mgl32.Mat4ToQuat(rot).Normalize(),
		Translation: m.Col(3).Vec3(),
	}
}

// sortJoints orders joints breadth first from the roots so every parent precedes its children, remapping parent indices.
func sortJoints(name string, joints []joint) *Skeleton {
	children := make(map[int][]int)
	var queue []int
	for i, j := range joints {
		if j.parent >= 0 {
			children[j.parent] = append(children[j.parent], i)
		} else {
			queue = append(queue, i)
		}
	}

	order := make([]int, 0, len(joints))
	visited := make([]bool, len(joints))
	for len(queue) > 0 {
		i := queue[0]
		queue = queue[1:]
		if visited[i] {
			continue
		}
		visited[i] = true
		order = append(order, i)
		queue = append(queue, children[i]...)
	}
	// Joints caught in a parent cycle are unreachable from any root.
	for i := range joints {
		if !visited[i] {
			order = append(order, i)
		}
	}

	oldToNew := make([]int, len(joints))
	for newIndex, oldIndex := range order {
		oldToNew[oldIndex] = newIndex
	}

	s := &Skeleton{
		Name:                name,
		JointNames:          make([]string, len(order)),
		ParentIndices:       make([]int, len(order)),
		LocalPoses:          make([]common.Transform, len(order)),
		InverseBindMatrices: make([]mgl32.Mat4, len(order)),
	}
	for newIndex, oldIndex := range order {
		j := joints[oldIndex]
		s.JointNames[newIndex] = j.name
		s.LocalPoses[newIndex] = j.pose
		s.InverseBindMatrices[newIndex] = j.inverseBind
		s.ParentIndices[newIndex] = -1
		if j.parent >= 0 && visited[j.parent] {
			s.ParentIndices[newIndex] = oldToNew[j.parent]
		}
	}
	return s
}
