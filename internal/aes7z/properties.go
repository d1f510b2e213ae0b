package aes7z

import (
	"crypto/aes"
	"errors"
)

var (
	errUnsupportedCycles      = errors.New("aes7z: unsupported cycles power")
	errInsufficientProperties = errors.New("aes7z: not enough properties")
)

// Properties is the decoded form of a coder's AES properties blob, per
// spec.md §4.4: property byte 0 encodes numCyclesPower in bits 0-5 plus
// two high bits signalling whether byte 1 (salt/IV size nibbles) is
// present; salt and IV bytes follow.
type Properties struct {
	NumCyclesPower int
	Salt           []byte
	IV             []byte
}

// DecodeProperties parses an AES coder's properties blob. Empty
// properties decode to numCyclesPower=0, empty salt and an all-zero IV.
// The returned IV is always aes.BlockSize bytes, zero-padded past the
// IV bytes the blob carries.
func DecodeProperties(p []byte) (Properties, error) {
	if len(p) == 0 {
		return Properties{IV: make([]byte, aes.BlockSize)}, nil
	}

	if len(p) < 1 {
		return Properties{}, errInsufficientProperties
	}

	cycles := int(p[0] & 0x3f)

	if p[0]&0xc0 == 0 {
		// No extension byte: no salt, no IV.
		return Properties{NumCyclesPower: cycles, IV: make([]byte, aes.BlockSize)}, nil
	}

	if len(p) < 2 {
		return Properties{}, errInsufficientProperties
	}

	saltSize := int(p[0]>>7&1 + p[1]>>4)
	ivSize := int(p[0]>>6&1 + p[1]&0x0f)

	if len(p) != 2+saltSize+ivSize {
		return Properties{}, errInsufficientProperties
	}

	salt := make([]byte, saltSize)
	copy(salt, p[2:2+saltSize])

	iv := make([]byte, aes.BlockSize)
	copy(iv, p[2+saltSize:])

	return Properties{NumCyclesPower: cycles, Salt: salt, IV: iv}, nil
}
