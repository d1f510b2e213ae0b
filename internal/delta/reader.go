// Package delta implements the Delta filter: reversing a fixed-distance
// byte-wise delta applied before compression.
package delta

import "errors"

var ErrInsufficientProperties = errors.New("delta: not enough properties")

// DecodeProperties validates a Delta coder's single property byte and
// returns the distance, per spec.md §4.2: distance = property byte + 1,
// distance ∈ [1,256].
func DecodeProperties(p []byte) (int, error) {
	if len(p) != 1 {
		return 0, ErrInsufficientProperties
	}

	return int(p[0]) + 1, nil
}

// Decode reverses the delta filter on buf in place: each byte is summed
// with the byte distance positions earlier, the bytes before index 0
// implicitly being zero.
func Decode(buf []byte, distance int) {
	for i := distance; i < len(buf); i++ {
		buf[i] += buf[i-distance]
	}
}
