package delta_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bodgit/sevenzip/internal/delta"
)

func TestDecodeProperties(t *testing.T) {
	t.Parallel()

	distance, err := delta.DecodeProperties([]byte{0x03})
	require.NoError(t, err)
	assert.Equal(t, 4, distance)

	_, err = delta.DecodeProperties(nil)
	assert.ErrorIs(t, err, delta.ErrInsufficientProperties)
}

func TestDecode(t *testing.T) {
	t.Parallel()

	// Encode: each byte was stored as (original - original[i-distance]).
	original := []byte{10, 20, 30, 40, 50, 60}
	distance := 2

	encoded := make([]byte, len(original))
	copy(encoded, original)

	for i := len(encoded) - 1; i >= distance; i-- {
		encoded[i] -= encoded[i-distance]
	}

	delta.Decode(encoded, distance)
	assert.Equal(t, original, encoded)
}
