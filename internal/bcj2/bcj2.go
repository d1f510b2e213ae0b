// Package bcj2 implements the BCJ2 filter for x86 binaries: a 4-input to
// 1-output demultiplexer that reassembles call/jump displacements
// encoded in separate call/jump/range-coder sub-streams back into the
// main x86 byte stream.
package bcj2

import (
	"encoding/binary"
	"errors"
	"fmt"
)

const (
	numMoveBits               = 5
	numBitModelTotalBits      = 11
	bitModelTotal        uint = 1 << numBitModelTotalBits
	numTopBits                = 24
	topValue             uint = 1 << numTopBits
)

var (
	ErrSizeMismatch  = errors.New("bcj2: main+call+jump size does not match destination size")
	ErrMisalignedLen = errors.New("bcj2: call/jump stream length not a multiple of 4")
	ErrNotFinished   = errors.New("bcj2: input streams do not end where the output ends")
)

func isJcc(b0, b1 byte) bool {
	return b0 == 0x0f && (b1&0xf0) == 0x80
}

func isJ(b0, b1 byte) bool {
	return (b1&0xfe) == 0xe8 || isJcc(b0, b1)
}

func index(b0, b1 byte) int {
	switch b1 {
	case 0xe8:
		return int(b0)
	case 0xe9:
		return 256
	default:
		return 257
	}
}

// Decode reassembles dest from the four BCJ2 sub-streams. len(dest) must
// equal len(main)+len(call)+len(jump); len(call) and len(jump) must be
// multiples of 4. At the end the main, call and jump streams must be
// consumed exactly; the range coder's final state is not checked.
//
//nolint:cyclop,funlen
func Decode(main, call, jump, rng []byte, dest []byte) error {
	if len(main)+len(call)+len(jump) != len(dest) {
		return ErrSizeMismatch
	}

	if len(call)%4 != 0 || len(jump)%4 != 0 {
		return ErrMisalignedLen
	}

	var sd [256 + 2]uint

	for i := range sd {
		sd[i] = bitModelTotal >> 1
	}

	var (
		nrange uint = 0xffffffff
		code   uint
		rp     int // cursor into rng
	)

	if len(rng) < 5 {
		return fmt.Errorf("%w: range coder prelude truncated", ErrNotFinished)
	}

	for i := 0; i < 5; i++ {
		code = (code << 8) | uint(rng[i])
	}

	rp = 5

	update := func() {
		if nrange < topValue {
			var b byte
			if rp < len(rng) {
				b = rng[rp]
				rp++
			}

			code = (code << 8) | uint(b)
			nrange <<= 8
		}
	}

	decodeBit := func(i int) bool {
		newBound := (nrange >> numBitModelTotalBits) * sd[i]

		if code < newBound {
			nrange = newBound
			sd[i] += (bitModelTotal - sd[i]) >> numMoveBits
			update()

			return false
		}

		nrange -= newBound
		code -= newBound
		sd[i] -= sd[i] >> numMoveBits
		update()

		return true
	}

	var (
		mp, cp, jp int
		dp         int
		previous   byte
	)

	for dp < len(dest) {
		if mp >= len(main) {
			return fmt.Errorf("%w: main stream exhausted early", ErrNotFinished)
		}

		b := main[mp]
		mp++
		dest[dp] = b
		dp++

		if !isJ(previous, b) {
			previous = b

			continue
		}

		if decodeBit(index(previous, b)) {
			var src []byte
			if b == 0xe8 {
				if cp+4 > len(call) {
					return fmt.Errorf("%w: call stream exhausted early", ErrNotFinished)
				}

				src = call[cp:]
				cp += 4
			} else {
				if jp+4 > len(jump) {
					return fmt.Errorf("%w: jump stream exhausted early", ErrNotFinished)
				}

				src = jump[jp:]
				jp += 4
			}

			dest32 := binary.BigEndian.Uint32(src)
			dest32 -= uint32(dp) + 4 //nolint:gosec

			if dp+4 > len(dest) {
				return fmt.Errorf("%w: destination exhausted mid-displacement", ErrNotFinished)
			}

			binary.LittleEndian.PutUint32(dest[dp:], dest32)
			previous = byte(dest32 >> 24)
			dp += 4
		} else {
			previous = b
		}
	}

	if mp != len(main) || cp != len(call) || jp != len(jump) {
		return ErrNotFinished
	}

	return nil
}
