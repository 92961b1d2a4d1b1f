// Package loader reads skeletons out of glTF 2.0 files (.gltf JSON or .glb binary).
package loader

import (
	"io"
	"sync"

	"github.com/Carmen-Shannon/oxy-render/common"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
)

// Skeleton is the joint data of one glTF skin. Joints are ordered so every parent precedes its children.
type Skeleton struct {
	Name                string
	JointNames          []string
	ParentIndices       []int
	LocalPoses          []common.Transform
	InverseBindMatrices []mgl32.Mat4
}

// JointCount returns the number of joints.
func (s *Skeleton) JointCount() int { return len(s.JointNames) }

// loader is the implementation of the Loader interface.
type loader struct {
	mu        sync.RWMutex
	cache     map[string]*Skeleton
	skinIndex int
}

// Loader loads and caches skeletons.
type Loader interface {
	// LoadSkeleton reads the configured skin of the file at path. Results are cached by path.
	//
	// Parameters:
	//   - path: the .gltf or .glb file
	//
	// Returns:
	//   - *Skeleton: the skeleton; shared with the cache and must not be modified
	//   - error: error if the file cannot be read or has no such skin
	LoadSkeleton(path string) (*Skeleton, error)

	// LoadSkeletonReader reads a skeleton from r and caches it under name.
	//
	// Parameters:
	//   - name: the cache key
	//   - r: the document data
	//   - isGLB: true if r holds GLB data
	//
	// Returns:
	//   - *Skeleton: the skeleton
	//   - error: error if decoding fails
	LoadSkeletonReader(name string, r io.Reader, isGLB bool) (*Skeleton, error)

	// Evict drops a cached skeleton so the next load re-reads the source.
	Evict(key string)
}

var _ Loader = &loader{}

// NewLoader creates a loader reading the first skin of each file unless configured otherwise.
//
// Parameters:
//   - options: functional options
//
// Returns:
//   - Loader: the loader
func NewLoader(options ...LoaderBuilderOption) Loader {
	l := &loader{cache: make(map[string]*Skeleton)}
	for _, opt := range options {
		opt(l)
	}
	return l
}

func (l *loader) cached(key string) (*Skeleton, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	s, ok := l.cache[key]
	return s, ok
}

func (l *loader) store(key string, s *Skeleton) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.cache[key] = s
}

func (l *loader) LoadSkeleton(path string) (*Skeleton, error) {
	if s, ok := l.cached(path); ok {
		return s, nil
	}
	p := newGLTFParser()
	if err := p.Parse(path); err != nil {
		return nil, errors.Wrapf(err, "load skeleton %q", path)
	}
	s, err := extractSkeleton(p, l.skinIndex)
	if err != nil {
		return nil, errors.Wrapf(err, "load skeleton %q", path)
	}
	l.store(path, s)
	common.Logger().Info("skeleton loaded", "source", path, "joints", s.JointCount())
	return s, nil
}

func (l *loader) LoadSkeletonReader(name string, r io.Reader, isGLB bool) (*Skeleton, error) {
	if s, ok := l.cached(name); ok {
		return s, nil
	}
	p := newGLTFParser()
	if err := p.ParseReader(r, isGLB); err != nil {
		return nil, errors.Wrapf(err, "load skeleton %q", name)
	}
	s, err := extractSkeleton(p, l.skinIndex)
	if err != nil {
		return nil, errors.Wrapf(err, "load skeleton %q", name)
	}
	l.store(name, s)
	return s, nil
}

func (l *loader) Evict(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.cache, key)
}
