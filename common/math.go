package common

import (
	"unsafe"

	"github.com/go-gl/mathgl/mgl32"
)

// fuzzyEpsilon is the relative tolerance used by FuzzyCompare.
const fuzzyEpsilon = 1e-5

// FuzzyCompare reports whether two floats are equal within a small relative tolerance.
// Change detection on float fields goes through here so that values which only differ by rounding noise do not raise dirty bits.
//
// Parameters:
//   - a: first value
//   - b: second value
//
// Returns:
//   - bool: true if a and b are considered equal
func FuzzyCompare(a, b float32) bool {
	return mgl32.FloatEqualThreshold(a, b, fuzzyEpsilon)
}

// SliceToBytes converts any slice to a byte slice for buffer uploads.
// Uses unsafe pointer operations to create a view into the original data.
// WARNING: The returned slice shares memory with the input - do not modify.
//
// Parameters:
//   - data: source slice of any type
//
// Returns:
//   - []byte: byte slice view of the input data, or nil if input is empty
func SliceToBytes[T any](data []T) []byte {
	if len(data) == 0 {
		return nil
	}
	var zero T
	size := unsafe.Sizeof(zero)
	totalBytes := int(size) * len(data)
	return unsafe.Slice((*byte)(unsafe.Pointer(&data[0])), totalBytes)
}
