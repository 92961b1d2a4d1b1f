package backend

import "strings"

// DirtyFlag is a bitmask of the backend state categories that changed since the renderer last consumed them.
type DirtyFlag uint32

const (
	TransformDirty DirtyFlag = 1 << iota
	GeometryDirty
	EntityEnabledDirty
	MaterialDirty
	FrameGraphDirty
	BuffersDirty
	LayersDirty
	ComputeDirty
	SkeletonDataDirty
	EntityHierarchyDirty
	ParameterDirty

	AllDirty DirtyFlag = 0xFFFFFF
)

var dirtyNames = []struct {
	flag DirtyFlag
	name string
}{
	{TransformDirty, "Transform"},
	{GeometryDirty, "Geometry"},
	{EntityEnabledDirty, "EntityEnabled"},
	{MaterialDirty, "Material"},
	{FrameGraphDirty, "FrameGraph"},
	{BuffersDirty, "Buffers"},
	{LayersDirty, "Layers"},
	{ComputeDirty, "Compute"},
	{SkeletonDataDirty, "SkeletonData"},
	{EntityHierarchyDirty, "EntityHierarchy"},
	{ParameterDirty, "Parameter"},
}

// Has reports whether any bit of flag is set.
func (d DirtyFlag) Has(flag DirtyFlag) bool {
	return d&flag != 0
}

func (d DirtyFlag) String() string {
	if d == 0 {
		return "None"
	}
	if d == AllDirty {
		return "All"
	}
	var names []string
	for _, n := range dirtyNames {
		if d&n.flag != 0 {
			names = append(names, n.name)
		}
	}
	return strings.Join(names, "|")
}
