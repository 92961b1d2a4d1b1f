package manager

import "github.com/Carmen-Shannon/oxy-render/engine/animation"

// NodeManagersBuilderOption is a functional option for configuring NodeManagers via NewNodeManagers.
type NodeManagersBuilderOption func(*NodeManagers)

// WithSkeletonLoader sets the loader skeletons use for file sources.
//
// Parameters:
//   - l: the skeleton loader
//
// Returns:
//   - NodeManagersBuilderOption: a function that applies the loader option to the managers
func WithSkeletonLoader(l animation.SkeletonLoader) NodeManagersBuilderOption {
	return func(m *NodeManagers) {
		m.skeletonLoader = l
	}
}
