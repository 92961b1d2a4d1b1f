// Package animation holds the skeleton backend node. Joint poses are kept as one aggregated array per skeleton,
// so a skeleton animates without any per-joint front-end objects.
package animation

import (
	"slices"

	"github.com/Carmen-Shannon/oxy-render/common"
	"github.com/Carmen-Shannon/oxy-render/engine/backend"
	"github.com/Carmen-Shannon/oxy-render/engine/frontend"
	"github.com/Carmen-Shannon/oxy-render/engine/loader"
)

// SkeletonStatus reports the outcome of the last file load.
type SkeletonStatus uint8

const (
	StatusNone SkeletonStatus = iota
	StatusReady
	StatusError
)

func (s SkeletonStatus) String() string {
	switch s {
	case StatusReady:
		return "Ready"
	case StatusError:
		return "Error"
	default:
		return "None"
	}
}

// SkeletonLoader reads joint data from a source path. loader.Loader satisfies it.
type SkeletonLoader interface {
	LoadSkeleton(source string) (*loader.Skeleton, error)
}

// Skeleton mirrors either a frontend.Skeleton carrying joint data directly or a frontend.SkeletonLoader naming a file.
type Skeleton struct {
	backend.BackendNode
	loader SkeletonLoader

	source          string
	status          SkeletonStatus
	jointNames      []string
	jointLocalPoses []common.Transform
	parentIndices   []int
}

var _ backend.Node = &Skeleton{}

// NewSkeleton returns an empty skeleton.
//
// Parameters:
//   - l: the loader used for file sources, nil if only data skeletons are synced
//
// Returns:
//   - *Skeleton: the skeleton
func NewSkeleton(l SkeletonLoader) *Skeleton {
	return &Skeleton{loader: l}
}

// JointNames returns the joint names. The slice must not be modified.
func (s *Skeleton) JointNames() []string { return s.jointNames }

// JointLocalPoses returns the local pose of every joint. The slice must not be modified.
func (s *Skeleton) JointLocalPoses() []common.Transform { return s.jointLocalPoses }

// ParentIndices returns the parent joint of every joint, -1 for roots. Nil for data skeletons, which carry no hierarchy.
func (s *Skeleton) ParentIndices() []int { return s.parentIndices }

func (s *Skeleton) JointCount() int { return len(s.jointNames) }

func (s *Skeleton) Source() string { return s.source }

func (s *Skeleton) Status() SkeletonStatus { return s.status }

// SyncFromFrontEnd replaces the joint arrays wholesale. Loader snapshots reload only when the source changes.
func (s *Skeleton) SyncFromFrontEnd(fe frontend.Node, firstTime bool) {
	var dirty bool
	switch node := fe.(type) {
	case frontend.Skeleton:
		dirty = s.SyncCommon(fe, firstTime) || firstTime
		dirty = s.syncData(node) || dirty
	case frontend.SkeletonLoader:
		dirty = s.SyncCommon(fe, firstTime) || firstTime
		dirty = s.syncSource(node.Source, firstTime) || dirty
	default:
		return
	}
	if dirty {
		s.MarkDirtyFrom(backend.SkeletonDataDirty, s)
	}
}

func (s *Skeleton) syncData(node frontend.Skeleton) bool {
	changed := s.source != "" || s.status != StatusReady ||
		!slices.Equal(s.jointNames, node.JointNames) ||
		!slices.EqualFunc(s.jointLocalPoses, node.JointLocalPoses, common.Transform.Equal)

	s.source = ""
	s.status = StatusReady
	s.jointNames = slices.Clone(node.JointNames)
	s.jointLocalPoses = slices.Clone(node.JointLocalPoses)
	s.parentIndices = nil
	return changed
}

func (s *Skeleton) syncSource(source string, firstTime bool) bool {
	if !firstTime && source == s.source && (source == "" || s.status != StatusNone) {
		return false
	}
	s.source = source
	s.clearJoints()

	if source == "" {
		s.status = StatusNone
		return true
	}
	if s.loader == nil {
		common.Logger().Warn("skeleton has a source but no loader", "id", s.PeerID(), "source", source)
		s.status = StatusError
		return true
	}

	data, err := s.loader.LoadSkeleton(source)
	if err != nil {
		common.Logger().Warn("skeleton load failed", "id", s.PeerID(), "source", source, "error", err)
		s.status = StatusError
		return true
	}
	s.jointNames = slices.Clone(data.JointNames)
	s.jointLocalPoses = slices.Clone(data.LocalPoses)
	s.parentIndices = slices.Clone(data.ParentIndices)
	s.status = StatusReady
	return true
}

func (s *Skeleton) clearJoints() {
	s.jointNames = nil
	s.jointLocalPoses = nil
	s.parentIndices = nil
}

// Cleanup empties both joint arrays.
func (s *Skeleton) Cleanup() {
	s.ResetCommon()
	s.clearJoints()
	s.source = ""
	s.status = StatusNone
}
