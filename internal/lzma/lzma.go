// Package lzma implements the LZMA primitive decoder.
package lzma

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/ulikunitz/xz/lzma"

	"github.com/bodgit/sevenzip/internal/stream"
)

var ErrInsufficientProperties = errors.New("lzma: not enough properties")

// propertiesLength is the fixed LZMA properties size: one byte encoding
// lc/lp/pb, four bytes little-endian dictionary size.
const propertiesLength = 5

// Decode consumes exactly inputByteCount bytes from in and fills output
// completely, per the primitive-decoder contract of spec.md §4.1.
func Decode(properties []byte, in stream.LookInStream, inputByteCount uint64, output []byte) error {
	if len(properties) != propertiesLength {
		return ErrInsufficientProperties
	}

	header := bytes.NewBuffer(nil)
	header.Write(properties)
	_ = binary.Write(header, binary.LittleEndian, uint64(len(output)))

	lr, err := lzma.NewReader(io.MultiReader(header, io.LimitReader(in, int64(inputByteCount)))) //nolint:gosec
	if err != nil {
		return fmt.Errorf("lzma: error creating reader: %w", err)
	}

	if _, err := io.ReadFull(lr, output); err != nil {
		return fmt.Errorf("lzma: error decoding: %w", err)
	}

	return nil
}
