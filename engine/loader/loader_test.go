package loader

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Carmen-Shannon/oxy-render/common"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func matrixBuffer(t *testing.T, ms ...mgl32.Mat4) []byte {
	t.Helper()
	var buf bytes.Buffer
	for _, m := range ms {
		require.NoError(t, binary.Write(&buf, binary.LittleEndian, [16]float32(m)))
	}
	return buf.Bytes()
}

func skinnedDocument(t *testing.T, withInverseBind bool) map[string]any {
	t.Helper()
	doc := map[string]any{
		"asset": map[string]any{"version": "2.0"},
		"nodes": []any{
			map[string]any{"name": "root", "translation": []float32{0, 1, 0}, "children": []int{1}},
			map[string]any{"name": "child", "rotation": []float32{0, 0, 0.70710677, 0.70710677}},
			map[string]any{"name": "mesh", "skin": 0},
		},
		"skins": []any{map[string]any{"name": "rig", "joints": []int{1, 0}}},
	}
	if withInverseBind {
		data := matrixBuffer(t, mgl32.Translate3D(0, -1, 0), mgl32.Ident4())
		doc["buffers"] = []any{map[string]any{
			"byteLength": len(data),
			"uri":        "data:application/octet-stream;base64," + base64.StdEncoding.EncodeToString(data),
		}}
		doc["bufferViews"] = []any{map[string]any{"buffer": 0, "byteLength": len(data)}}
		doc["accessors"] = []any{map[string]any{"bufferView": 0, "componentType": 5126, "count": 2, "type": "MAT4"}}
		doc["skins"] = []any{map[string]any{"name": "rig", "joints": []int{1, 0}, "inverseBindMatrices": 0}}
	}
	return doc
}

func encode(t *testing.T, doc map[string]any) []byte {
	t.Helper()
	data, err := json.Marshal(doc)
	require.NoError(t, err)
	return data
}

func TestLoadSkeletonOrdersParentsFirst(t *testing.T) {
	l := NewLoader()
	s, err := l.LoadSkeletonReader("rig", bytes.NewReader(encode(t, skinnedDocument(t, true))), false)
	require.NoError(t, err)

	assert.Equal(t, "rig", s.Name)
	assert.Equal(t, []string{"root", "child"}, s.JointNames)
	assert.Equal(t, []int{-1, 0}, s.ParentIndices)
	require.Equal(t, 2, s.JointCount())

	assert.Equal(t, mgl32.Vec3{0, 1, 0}, s.LocalPoses[0].Translation)
	assert.Equal(t, mgl32.Vec3{1, 1, 1}, s.LocalPoses[0].Scale)
	assert.InDelta(t, 0.70710677, s.LocalPoses[1].Rotation.W, 1e-6)
	assert.InDelta(t, 0.70710677, s.LocalPoses[1].Rotation.V.Z(), 1e-6)

	// Joint 1 in the skin (root) was given the identity; joint 0 (child) the translation.
	assert.Equal(t, mgl32.Ident4(), s.InverseBindMatrices[0])
	assert.Equal(t, mgl32.Translate3D(0, -1, 0), s.InverseBindMatrices[1])
}

func TestLoadSkeletonFromFileIsCached(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rig.gltf")
	require.NoError(t, os.WriteFile(path, encode(t, skinnedDocument(t, false)), 0o644))

	l := NewLoader()
	first, err := l.LoadSkeleton(path)
	require.NoError(t, err)

	require.NoError(t, os.Remove(path))
	second, err := l.LoadSkeleton(path)
	require.NoError(t, err)
	assert.Same(t, first, second)

	l.Evict(path)
	_, err = l.LoadSkeleton(path)
	assert.Error(t, err)
}

func TestLoadSkeletonGLB(t *testing.T) {
	jsonData := encode(t, skinnedDocument(t, false))
	for len(jsonData)%4 != 0 {
		jsonData = append(jsonData, ' ')
	}

	var glb bytes.Buffer
	require.NoError(t, binary.Write(&glb, binary.LittleEndian, gltfGLBHeader{
		Magic: gltfGLBMagic, Version: gltfGLBVersion, Length: uint32(12 + 8 + len(jsonData)),
	}))
	require.NoError(t, binary.Write(&glb, binary.LittleEndian, gltfGLBChunkHeader{
		ChunkLength: uint32(len(jsonData)), ChunkType: gltfGLBChunkJSON,
	}))
	glb.Write(jsonData)

	path := filepath.Join(t.TempDir(), "rig.bin")
	require.NoError(t, os.WriteFile(path, glb.Bytes(), 0o644))

	s, err := NewLoader().LoadSkeleton(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"root", "child"}, s.JointNames)
}

func TestLoadSkeletonErrors(t *testing.T) {
	cases := []struct {
		name string
		doc  map[string]any
		opts []LoaderBuilderOption
		want string
	}{
		{"version", map[string]any{"asset": map[string]any{"version": "1.0"}}, nil, "invalid glTF version"},
		{"no skin", map[string]any{"asset": map[string]any{"version": "2.0"}}, nil, "skin index 0 out of range"},
		{"skin index", skinnedDocument(t, false), []LoaderBuilderOption{WithSkinIndex(3)}, "skin index 3 out of range"},
		{"bad joint", map[string]any{
			"asset": map[string]any{"version": "2.0"},
			"skins": []any{map[string]any{"joints": []int{4}}},
		}, nil, "invalid node index 4"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewLoader(tc.opts...).LoadSkeletonReader(tc.name, bytes.NewReader(encode(t, tc.doc)), false)
			require.Error(t, err)
			assert.True(t, strings.Contains(err.Error(), tc.want), err.Error())
		})
	}
}

func TestWithSkeletonPrepopulatesCache(t *testing.T) {
	s := &Skeleton{JointNames: []string{"a"}}
	got, err := NewLoader(WithSkeleton("mem://a", s)).LoadSkeleton("mem://a")
	require.NoError(t, err)
	assert.Same(t, s, got)
}

func TestDecomposeMatrix(t *testing.T) {
	rot := mgl32.QuatRotate(mgl32.DegToRad(90), mgl32.Vec3{0, 1, 0})
	m := mgl32.Translate3D(1, 2, 3).Mul4(rot.Mat4()).Mul4(mgl32.Scale3D(2, 2, 2))

	tr := decomposeMatrix(m)
	assertNear(t, mgl32.Vec3{1, 2, 3}, tr.Translation, 1e-5)
	assertNear(t, mgl32.Vec3{2, 2, 2}, tr.Scale, 1e-5)
	assertNear(t, m, tr.Matrix(), 1e-5)

	node := &gltfNode{Matrix: (*[16]float32)(&m)}
	assert.Equal(t, tr, nodeTransform(node))
	assert.Equal(t, common.IdentityTransform(), nodeTransform(&gltfNode{}))
}

// assertNear compares want and got component by component with an absolute tolerance.
func assertNear[V mgl32.Vec3 | mgl32.Vec4 | mgl32.Mat4](t *testing.T, want, got V, delta float64) {
	t.Helper()
	for i := range len(want) {
		assert.InDelta(t, want[i], got[i], delta, "component %d: want %v, got %v", i, want, got)
	}
}
