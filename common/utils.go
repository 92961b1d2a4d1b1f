package common

// Coalesce returns the first of values that is not the zero value of T. Settings use it to fall back to their
// defaults, so Coalesce(configured, fallback) reads as "configured unless unset".
//
// Parameters:
//   - values: candidates in order of preference
//
// Returns:
//   - T: the first non-zero candidate, the zero value when there is none
func Coalesce[T comparable](values ...T) T {
	var zero T
	for _, v := range values {
		if v == zero {
			continue
		}
		return v
	}
	return zero
}
