package sevenzip

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"encoding/binary"
	"hash/crc32"
	"testing"
	"unicode/utf16"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bodgit/sevenzip/internal/aes7z"
	"github.com/bodgit/sevenzip/internal/method"
	"github.com/bodgit/sevenzip/internal/password"
)

// TestDecodeFolderSingleMain is the S1 shape: one Copy coder, one packed
// stream, no bonds.
func TestDecodeFolderSingleMain(t *testing.T) {
	t.Parallel()

	data := []byte("the quick brown fox jumps over the lazy dog")

	f := &Folder{
		Coders:       []CoderInfo{{Method: method.Copy, NumStreams: 1}},
		PackStreams:  []int{0},
		UnpackStream: 0,
		HasCRC:       true,
		CRC32:        crc32.ChecksumIEEE(data),
	}
	layout := &PackedLayout{
		PackPositions: []int64{0, int64(len(data))},
		UnpackSizes:   []int64{int64(len(data))},
	}

	out := make([]byte, len(data))
	err := DecodeFolder(f, layout, bytes.NewReader(data), 0, out, NewConfig(), &password.Store{})
	require.NoError(t, err)
	assert.Equal(t, data, out)
}

// TestDecodeFolderCRCMismatch exercises the same S1 shape but with a
// deliberately wrong CRC.
func TestDecodeFolderCRCMismatch(t *testing.T) {
	t.Parallel()

	data := []byte("hello world")

	f := &Folder{
		Coders:       []CoderInfo{{Method: method.Copy, NumStreams: 1}},
		PackStreams:  []int{0},
		UnpackStream: 0,
		HasCRC:       true,
		CRC32:        crc32.ChecksumIEEE(data) ^ 0xff,
	}
	layout := &PackedLayout{
		PackPositions: []int64{0, int64(len(data))},
		UnpackSizes:   []int64{int64(len(data))},
	}

	out := make([]byte, len(data))
	err := DecodeFolder(f, layout, bytes.NewReader(data), 0, out, NewConfig(), &password.Store{})
	assert.ErrorIs(t, err, ErrChecksum)
}

// TestDecodeFolderFilterMain is the S3 shape: a Copy main coder feeding a
// Delta filter.
func TestDecodeFolderFilterMain(t *testing.T) {
	t.Parallel()

	plain := []byte{0x01, 0x02, 0x03, 0x04, 0x05}

	// The Delta-encoded form of plain at distance 1: each byte minus its
	// predecessor (0 implicitly before index 0).
	encoded := make([]byte, len(plain))
	encoded[0] = plain[0]
	for i := 1; i < len(plain); i++ {
		encoded[i] = plain[i] - plain[i-1]
	}

	f := &Folder{
		Coders: []CoderInfo{
			{Method: method.Copy, NumStreams: 1},
			{Method: method.Delta, NumStreams: 1, PropertiesOffset: 0, PropertiesLength: 1},
		},
		Bonds:        []Bond{{InIndex: 1, OutIndex: 0}},
		PackStreams:  []int{0},
		UnpackStream: 1,
		Properties:   []byte{0x00}, // distance = 0 + 1 = 1
		HasCRC:       true,
		CRC32:        crc32.ChecksumIEEE(plain),
	}
	layout := &PackedLayout{
		PackPositions: []int64{0, int64(len(encoded))},
		UnpackSizes:   []int64{int64(len(plain)), int64(len(plain))},
	}

	out := make([]byte, len(plain))
	err := DecodeFolder(f, layout, bytes.NewReader(encoded), 0, out, NewConfig(), &password.Store{})
	require.NoError(t, err)
	assert.Equal(t, plain, out)
}

// aesProps builds an AES coder's properties blob with an explicit salt-less,
// full-size IV, mirroring the encoding internal/aes7z/properties_test.go
// verifies by hand.
func aesProps(cycles int, iv []byte) []byte {
	p := make([]byte, 2+len(iv))
	p[0] = byte(cycles) | 0x40
	p[1] = 0x0f

	copy(p[2:], iv)

	return p
}

// utf16le encodes s as the UTF-16LE code units a password.Store holds.
func utf16le(s string) []byte {
	units := utf16.Encode([]rune(s))
	b := make([]byte, 2*len(units))

	for i, u := range units {
		binary.LittleEndian.PutUint16(b[2*i:], u)
	}

	return b
}

// TestDecodeFolderAESOnly is the S2 shape: a lone AES coder, no downstream
// main decompressor.
func TestDecodeFolderAESOnly(t *testing.T) {
	t.Parallel()

	const password_ = "correct horse"

	plain := []byte("0123456789abcdef") // exactly one AES block
	iv := bytes.Repeat([]byte{0x11}, aes.BlockSize)

	key, err := aes7z.DeriveKey(password_, 4, nil)
	require.NoError(t, err)

	block, err := aes.NewCipher(key)
	require.NoError(t, err)

	ciphertext := make([]byte, len(plain))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(ciphertext, plain)

	store := &password.Store{}
	store.Set(utf16le(password_))

	f := &Folder{
		Coders:       []CoderInfo{{Method: method.AES256SHA, NumStreams: 1, PropertiesOffset: 0, PropertiesLength: 2 + aes.BlockSize}},
		PackStreams:  []int{0},
		UnpackStream: 0,
		Properties:   aesProps(4, iv),
		HasCRC:       true,
		CRC32:        crc32.ChecksumIEEE(plain),
	}
	layout := &PackedLayout{
		PackPositions: []int64{0, int64(len(ciphertext))},
		UnpackSizes:   []int64{int64(len(plain))},
	}

	out := make([]byte, len(plain))
	err = DecodeFolder(f, layout, bytes.NewReader(ciphertext), 0, out, NewConfig(), store)
	require.NoError(t, err)
	assert.Equal(t, plain, out)
}

// TestDecodeFolderAESMain is the S4 shape: AES decrypts a Copy-coded
// plaintext, wrong password is reported as such.
func TestDecodeFolderAESMain(t *testing.T) {
	t.Parallel()

	const password_ = "hunter2"

	plain := []byte("sixteen byte blk")
	iv := bytes.Repeat([]byte{0x22}, aes.BlockSize)

	key, err := aes7z.DeriveKey(password_, 4, nil)
	require.NoError(t, err)

	block, err := aes.NewCipher(key)
	require.NoError(t, err)

	ciphertext := make([]byte, len(plain))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(ciphertext, plain)

	newFolder := func() (*Folder, *PackedLayout) {
		f := &Folder{
			Coders: []CoderInfo{
				{Method: method.AES256SHA, NumStreams: 1, PropertiesOffset: 0, PropertiesLength: 2 + aes.BlockSize},
				{Method: method.Copy, NumStreams: 1},
			},
			Bonds:        []Bond{{InIndex: 1, OutIndex: 0}},
			PackStreams:  []int{0},
			UnpackStream: 1,
			Properties:   aesProps(4, iv),
			HasCRC:       true,
			CRC32:        crc32.ChecksumIEEE(plain),
		}
		layout := &PackedLayout{
			PackPositions: []int64{0, int64(len(ciphertext))},
			UnpackSizes:   []int64{int64(len(plain)), int64(len(plain))},
		}

		return f, layout
	}

	t.Run("correct password", func(t *testing.T) {
		t.Parallel()

		f, layout := newFolder()
		store := &password.Store{}
		store.Set(utf16le(password_))

		out := make([]byte, len(plain))
		err := DecodeFolder(f, layout, bytes.NewReader(ciphertext), 0, out, NewConfig(), store)
		require.NoError(t, err)
		assert.Equal(t, plain, out)
	})

	t.Run("wrong password", func(t *testing.T) {
		t.Parallel()

		// Copy never fails on garbage input, so a wrong key surfaces
		// downstream as a CRC mismatch rather than a decode error.
		f, layout := newFolder()
		store := &password.Store{}
		store.Set(utf16le("not it"))

		out := make([]byte, len(plain))
		err := DecodeFolder(f, layout, bytes.NewReader(ciphertext), 0, out, NewConfig(), store)
		assert.ErrorIs(t, err, ErrChecksum)
	})

	t.Run("no password set", func(t *testing.T) {
		t.Parallel()

		f, layout := newFolder()

		out := make([]byte, len(plain))
		err := DecodeFolder(f, layout, bytes.NewReader(ciphertext), 0, out, NewConfig(), &password.Store{})
		assert.ErrorIs(t, err, ErrWrongPassword)
	})
}

// TestDecodeFolderBCJ2 is the S5 shape: three Copy main coders feeding the
// BCJ2 demultiplexer's main/call/jump inputs plus its own packed range
// stream. With no x86 branch opcodes present the call and jump streams
// are empty and the main stream passes straight through.
func TestDecodeFolderBCJ2(t *testing.T) {
	t.Parallel()

	mainData := []byte{0x01, 0x02, 0x03}
	var jumpData []byte
	var callData []byte

	rngData := make([]byte, 5) // prelude only, never advanced

	// Packed stream order is folder.PackStreams order: [2,6,1,0], i.e.
	// main, rng, call, jump.
	packed := append(append(append([]byte{}, mainData...), rngData...), callData...)
	packed = append(packed, jumpData...)

	f := &Folder{
		Coders: []CoderInfo{
			{Method: method.Copy, NumStreams: 1}, // jump source
			{Method: method.Copy, NumStreams: 1}, // call source
			{Method: method.Copy, NumStreams: 1}, // main source
			{Method: method.BCJ2, NumStreams: 4},
		},
		Bonds: []Bond{
			{InIndex: 5, OutIndex: 0},
			{InIndex: 4, OutIndex: 1},
			{InIndex: 3, OutIndex: 2},
		},
		PackStreams:  []int{2, 6, 1, 0},
		UnpackStream: 3,
		HasCRC:       true,
		CRC32:        crc32.ChecksumIEEE(mainData),
	}
	layout := &PackedLayout{
		PackPositions: []int64{
			0,
			int64(len(mainData)),
			int64(len(mainData) + len(rngData)),
			int64(len(mainData) + len(rngData) + len(callData)),
			int64(len(packed)),
		},
		UnpackSizes: []int64{int64(len(jumpData)), int64(len(callData)), int64(len(mainData))},
	}

	out := make([]byte, len(mainData))
	err := DecodeFolder(f, layout, bytes.NewReader(packed), 0, out, NewConfig(), &password.Store{})
	require.NoError(t, err)
	assert.Equal(t, mainData, out)
}
