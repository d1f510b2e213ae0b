// Package aes7z implements the 7-zip AES-256-CBC crypto layer: property
// decoding, the iterated-SHA-256 key derivation, and block decryption.
package aes7z

import (
	"bytes"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// legacyCycles is the 7zAES "store the key in the clear" compatibility
// mode: numCyclesPower == 0x3F.
const legacyCycles = 0x3f

// maxCyclesPower is the largest numCyclesPower this decoder will honour;
// above it the cost of the KDF is considered a mistake in the archive
// rather than a legitimate request, per spec.md §4.4.
const maxCyclesPower = 24

type cacheKey struct {
	password string
	cycles   int
	salt     string // []byte isn't comparable
}

const cacheSize = 10

//nolint:gochecknoglobals
var (
	// keyCache retains derived keys across folders that share a
	// password, the way the teacher's cache does. Evicted entries are
	// zeroed by the NewWithEvict callback, so a key that falls out of
	// the cache doesn't linger in a freed buffer.
	keyCache, _ = lru.NewWithEvict[cacheKey, []byte](cacheSize, func(_ cacheKey, key []byte) {
		zero(key)
	})
	group singleflight.Group
)

func zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// DeriveKey implements the 7zAES key derivation of spec.md §4.4: given a
// salt, a password (plain UTF-8, converted to UTF-16LE here) and a
// cycles power, it returns a 32-byte key. Derived keys are cached by
// (password, cycles, salt) so repeated folders in the same archive reuse
// the expensive SHA-256 round trip, and concurrent callers deriving the
// same key collapse onto a single computation via singleflight.
func DeriveKey(password string, cycles int, salt []byte) ([]byte, error) {
	ck := cacheKey{password: password, cycles: cycles, salt: hex.EncodeToString(salt)}

	if key, ok := keyCache.Get(ck); ok {
		return key, nil
	}

	v, err, _ := group.Do(fmt.Sprintf("%s|%d|%s", ck.password, ck.cycles, ck.salt), func() (interface{}, error) {
		return deriveKey(password, cycles, salt)
	})
	if err != nil {
		return nil, err
	}

	key, ok := v.([]byte)
	if !ok {
		return nil, fmt.Errorf("aes7z: unexpected key type %T", v)
	}

	keyCache.Add(ck, key)

	return key, nil
}

func deriveKey(password string, cycles int, salt []byte) ([]byte, error) {
	if cycles > maxCyclesPower && cycles != legacyCycles {
		return nil, errUnsupportedCycles
	}

	b := bytes.NewBuffer(nil)
	b.Write(salt)

	utf16le := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)
	t := transform.NewWriter(b, utf16le.NewEncoder())

	if _, err := t.Write([]byte(password)); err != nil {
		return nil, fmt.Errorf("aes7z: error encoding password: %w", err)
	}

	key := make([]byte, sha256.Size)

	if cycles == legacyCycles {
		copy(key, b.Bytes())

		return key, nil
	}

	h := sha256.New()

	for i := uint64(0); i < uint64(1)<<uint(cycles); i++ {
		h.Write(b.Bytes())
		_ = binary.Write(h, binary.LittleEndian, i)
	}

	copy(key, h.Sum(nil))

	return key, nil
}
