// Package bra implements the branch-conversion filters: in-place,
// post-decompression byte transforms that reverse the pre-compression
// branch conversion performed for a given CPU architecture.
package bra

import "errors"

var (
	ErrInsufficientProperties = errors.New("bra: not enough properties")
	ErrMisalignedPC           = errors.New("bra: misaligned start address")
)

// DecodeProperties validates a filter's property bytes and returns the
// starting program-counter value. Filters accept either zero property
// bytes (pc=0) or four (a little-endian pc), per spec.md §4.2.
func DecodeProperties(p []byte) (uint32, error) {
	switch len(p) {
	case 0:
		return 0, nil
	case 4:
		return uint32(p[0]) | uint32(p[1])<<8 | uint32(p[2])<<16 | uint32(p[3])<<24, nil
	default:
		return 0, ErrInsufficientProperties
	}
}
