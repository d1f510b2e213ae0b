// Package copy implements the Copy (stored, uncompressed) primitive
// decoder.
package copy

import (
	"errors"
	"fmt"
	"io"

	"github.com/bodgit/sevenzip/internal/stream"
)

var ErrInsufficientProperties = errors.New("copy: not enough properties")

// Decode consumes exactly inputByteCount bytes from in and fills output
// completely. Copy takes no properties.
func Decode(properties []byte, in stream.LookInStream, inputByteCount uint64, output []byte) error {
	if len(properties) != 0 {
		return ErrInsufficientProperties
	}

	if uint64(len(output)) != inputByteCount { //nolint:gosec
		return fmt.Errorf("copy: output size %d does not match input size %d", len(output), inputByteCount)
	}

	if _, err := io.ReadFull(in, output); err != nil {
		return fmt.Errorf("copy: error reading: %w", err)
	}

	return nil
}
