// Package zstd implements the Zstandard primitive decoder.
package zstd

import (
	"errors"
	"fmt"
	"io"
	"runtime"
	"sync"

	"github.com/klauspost/compress/zstd"

	"github.com/bodgit/sevenzip/internal/stream"
)

var ErrInsufficientProperties = errors.New("zstd: not enough properties")

//nolint:gochecknoglobals
var decoderPool sync.Pool

// Decode consumes exactly inputByteCount bytes from in and fills output
// completely. Property bytes are permitted (0, 1, 3 or 5 of them, per
// spec.md §4.1) but their content is ignored: the 7-zip Zstd coder
// stores no codec parameters, only a compatibility-version byte count.
func Decode(properties []byte, in stream.LookInStream, inputByteCount uint64, output []byte) error {
	switch len(properties) {
	case 0, 1, 3, 5:
	default:
		return ErrInsufficientProperties
	}

	var (
		dec *zstd.Decoder
		err error
	)

	if pooled, ok := decoderPool.Get().(*zstd.Decoder); ok {
		dec = pooled

		if err = dec.Reset(io.LimitReader(in, int64(inputByteCount))); err != nil { //nolint:gosec
			return fmt.Errorf("zstd: error resetting: %w", err)
		}
	} else {
		if dec, err = zstd.NewReader(io.LimitReader(in, int64(inputByteCount))); err != nil { //nolint:gosec
			return fmt.Errorf("zstd: error creating reader: %w", err)
		}

		runtime.SetFinalizer(dec, (*zstd.Decoder).Close)
	}

	defer decoderPool.Put(dec)

	if _, err := io.ReadFull(dec, output); err != nil {
		return fmt.Errorf("zstd: error decoding: %w", err)
	}

	return nil
}
