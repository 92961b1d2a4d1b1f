package loader

// LoaderBuilderOption is a functional option for configuring a Loader via NewLoader.
type LoaderBuilderOption func(*loader)

// WithSkinIndex selects which skin of a file is read.
//
// Parameters:
//   - index: the skin index, 0 by default
//
// Returns:
//   - LoaderBuilderOption: a function that applies the skin index to a loader
func WithSkinIndex(index int) LoaderBuilderOption {
	return func(l *loader) {
		l.skinIndex = index
	}
}

// WithSkeleton pre-populates the cache.
//
// Parameters:
//   - key: the path or name the skeleton is served under
//   - s: the skeleton
//
// Returns:
//   - LoaderBuilderOption: a function that applies the skeleton to a loader
func WithSkeleton(key string, s *Skeleton) LoaderBuilderOption {
	return func(l *loader) {
		l.cache[key] = s
	}
}
