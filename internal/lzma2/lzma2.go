// Package lzma2 implements the LZMA2 primitive decoder.
package lzma2

import (
	"errors"
	"fmt"
	"io"

	"github.com/ulikunitz/xz/lzma"

	"github.com/bodgit/sevenzip/internal/stream"
)

var ErrInsufficientProperties = errors.New("lzma2: not enough properties")

// Decode consumes exactly inputByteCount bytes from in and fills output
// completely.
func Decode(properties []byte, in stream.LookInStream, inputByteCount uint64, output []byte) error {
	if len(properties) != 1 {
		return ErrInsufficientProperties
	}

	config := lzma.Reader2Config{
		DictCap: (2 | (int(properties[0]) & 1)) << (properties[0]/2 + 11), //nolint:mnd
	}

	if err := config.Verify(); err != nil {
		return fmt.Errorf("lzma2: error verifying config: %w", err)
	}

	lr, err := config.NewReader2(io.LimitReader(in, int64(inputByteCount))) //nolint:gosec
	if err != nil {
		return fmt.Errorf("lzma2: error creating reader: %w", err)
	}

	if _, err := io.ReadFull(lr, output); err != nil {
		return fmt.Errorf("lzma2: error decoding: %w", err)
	}

	return nil
}
