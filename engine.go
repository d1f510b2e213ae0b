package sevenzip

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"io"
	"unicode/utf16"

	"github.com/hashicorp/go-multierror"

	"github.com/bodgit/sevenzip/internal/aes7z"
	"github.com/bodgit/sevenzip/internal/bcj2"
	"github.com/bodgit/sevenzip/internal/classify"
	"github.com/bodgit/sevenzip/internal/method"
	"github.com/bodgit/sevenzip/internal/password"
	"github.com/bodgit/sevenzip/internal/stream"
)

// maxPaddingTrim is the widest AES-CBC padding tolerance a downstream
// primitive decode is retried against, per spec.md §4.4: a 16-byte CBC
// block can carry at most 15 bytes of padding past the true compressed
// length.
const maxPaddingTrim = 15

// safeMake allocates n bytes, converting the panic make raises for a
// length it cannot allocate (negative, or too large for the address
// space) into a KindOutOfMemory *Error. A Go runtime out-of-memory
// condition is a fatal error that recover() does not catch.
func safeMake(op string, n int64) (buf []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			buf = nil
			err = newError(KindOutOfMemory, op, fmt.Errorf("%v", r))
		}
	}()

	return make([]byte, n), nil
}

func (f *Folder) classifyInput() classify.Input {
	coders := make([]classify.Coder, len(f.Coders))
	for i, c := range f.Coders {
		coders[i] = classify.Coder{Method: c.Method, NumStreams: c.NumStreams}
	}

	bonds := make([]classify.Bond, len(f.Bonds))
	for i, b := range f.Bonds {
		bonds[i] = classify.Bond{InIndex: b.InIndex, OutIndex: b.OutIndex}
	}

	return classify.Input{Coders: coders, Bonds: bonds, PackStreams: f.PackStreams}
}

// packedStream returns a LookInStream over the k-th packed stream of the
// folder, positioned at r[startPos+PackPositions[k] : ...+PackPositions[k+1]].
func packedStream(r io.ReaderAt, startPos int64, layout *PackedLayout, k int) stream.LookInStream {
	return stream.New(r, startPos+layout.PackPositions[k], layout.packSize(k))
}

// DecodeFolder decodes one folder's coder graph into out, per spec.md
// §4.5-§4.6: classify the graph into one of S1-S5, run the pipeline the
// shape dictates, verify the folder's CRC-32 if it carries one.
//
// out must be exactly layout.UnpackSizes[f.UnpackStream] bytes long.
//
//nolint:cyclop,funlen
func DecodeFolder(f *Folder, layout *PackedLayout, r io.ReaderAt, startPos int64, out []byte, cfg *Config, store *password.Store) error {
	const op = "DecodeFolder"

	result, err := classify.Classify(f.classifyInput())
	if err != nil {
		return newError(KindUnsupported, op, err)
	}

	switch result.Shape {
	case classify.ShapeSingleMain:
		if err := decodeSingleMain(f, layout, r, startPos, result.MainIndex, out, cfg); err != nil {
			return err
		}
	case classify.ShapeAESOnly:
		if err := decodeAESOnly(f, layout, r, startPos, result.AESIndex, out, store); err != nil {
			return err
		}
	case classify.ShapeFilterMain:
		if err := decodeFilterMain(f, layout, r, startPos, result.MainIndex, result.FilterIndex, out, cfg); err != nil {
			return err
		}
	case classify.ShapeAESMain:
		if err := decodeAESMain(f, layout, r, startPos, result.AESIndex, result.MainIndex, out, cfg, store); err != nil {
			return err
		}
	case classify.ShapeBCJ2:
		if err := decodeBCJ2(f, layout, r, startPos, result, out, cfg); err != nil {
			return err
		}
	default:
		return newError(KindUnsupported, op, fmt.Errorf("unreachable shape %s", result.Shape))
	}

	return verifyCRC(f, out)
}

func decodeSingleMain(f *Folder, layout *PackedLayout, r io.ReaderAt, startPos int64, coderIdx int, out []byte, cfg *Config) error {
	k, ok := f.packStreamForInput(coderIdx)
	if !ok {
		return newError(KindData, "decodeSingleMain", fmt.Errorf("no packed stream feeds coder %d", coderIdx))
	}

	in := packedStream(r, startPos, layout, k)

	if err := decodeMain(f.Coders[coderIdx].Method, f.CoderProperties(coderIdx), in, uint64(layout.packSize(k)), out, cfg); err != nil { //nolint:gosec
		return newError(KindData, "decodeSingleMain", err)
	}

	return nil
}

func decodeAESOnly(f *Folder, layout *PackedLayout, r io.ReaderAt, startPos int64, aesIdx int, out []byte, store *password.Store) error {
	k, ok := f.packStreamForInput(aesIdx)
	if !ok {
		return newError(KindData, "decodeAESOnly", fmt.Errorf("no packed stream feeds coder %d", aesIdx))
	}

	in := packedStream(r, startPos, layout, k)

	buf, err := safeMake("decodeAESOnly", layout.packSize(k))
	if err != nil {
		return err
	}

	if err := stream.ReadFull(in, buf); err != nil {
		return newError(KindUnexpectedEOF, "decodeAESOnly", err)
	}

	if err := decryptInPlace(f.CoderProperties(aesIdx), buf, store); err != nil {
		return err
	}

	if len(buf) < len(out) {
		return newError(KindData, "decodeAESOnly", fmt.Errorf("decrypted %d bytes, need %d", len(buf), len(out)))
	}

	copy(out, buf[:len(out)])

	return nil
}

func decodeFilterMain(f *Folder, layout *PackedLayout, r io.ReaderAt, startPos int64, mainIdx, filterIdx int, out []byte, cfg *Config) error {
	if err := decodeSingleMain(f, layout, r, startPos, mainIdx, out, cfg); err != nil {
		return err
	}

	if err := applyFilter(f.Coders[filterIdx].Method, f.CoderProperties(filterIdx), out, cfg); err != nil {
		return err
	}

	return nil
}

func decodeAESMain(f *Folder, layout *PackedLayout, r io.ReaderAt, startPos int64, aesIdx, mainIdx int, out []byte, cfg *Config, store *password.Store) error {
	k, ok := f.packStreamForInput(aesIdx)
	if !ok {
		return newError(KindData, "decodeAESMain", fmt.Errorf("no packed stream feeds coder %d", aesIdx))
	}

	in := packedStream(r, startPos, layout, k)

	buf, err := safeMake("decodeAESMain", layout.packSize(k))
	if err != nil {
		return err
	}

	if err := stream.ReadFull(in, buf); err != nil {
		return newError(KindUnexpectedEOF, "decodeAESMain", err)
	}

	if err := decryptInPlace(f.CoderProperties(aesIdx), buf, store); err != nil {
		return err
	}

	return decodeMainWithPaddingTolerance(f.Coders[mainIdx].Method, f.CoderProperties(mainIdx), buf, out, cfg)
}

// decodeMainWithPaddingTolerance runs the downstream primitive against
// buf, and if that fails, retries with the final 1-15 bytes trimmed off
// in turn — the CBC block padding the AES layer can't distinguish from
// genuine compressed data (spec.md §4.4). A failure that survives every
// trim is reported as a wrong password, the overwhelmingly likely cause.
func decodeMainWithPaddingTolerance(id method.ID, props, buf, out []byte, cfg *Config) error {
	var attempts *multierror.Error

	for trim := 0; trim <= maxPaddingTrim && trim < len(buf); trim++ {
		trimmed := buf[:len(buf)-trim]
		in := stream.New(bytes.NewReader(trimmed), 0, int64(len(trimmed)))

		if err := decodeMain(id, props, in, uint64(len(trimmed)), out, cfg); err != nil { //nolint:gosec
			attempts = multierror.Append(attempts, err)

			continue
		}

		return nil
	}

	return newError(KindWrongPassword, "decodeMainWithPaddingTolerance", attempts.ErrorOrNil())
}

func decryptInPlace(props, buf []byte, store *password.Store) error {
	p, err := aes7z.DecodeProperties(props)
	if err != nil {
		return newError(KindData, "decryptInPlace", err)
	}

	pw, ok := store.Get()
	if !ok {
		return newError(KindWrongPassword, "decryptInPlace", fmt.Errorf("no password set"))
	}

	// The store holds UTF-16LE code units; DeriveKey takes the password
	// as a Go string and does its own UTF-16LE encoding.
	if len(pw)%2 != 0 {
		return newError(KindData, "decryptInPlace", fmt.Errorf("password is %d bytes, not whole UTF-16LE code units", len(pw)))
	}

	units := make([]uint16, len(pw)/2)
	for i := range units {
		units[i] = binary.LittleEndian.Uint16(pw[2*i:])
	}

	key, err := aes7z.DeriveKey(string(utf16.Decode(units)), p.NumCyclesPower, p.Salt)
	if err != nil {
		return newError(KindData, "decryptInPlace", err)
	}

	if err := aes7z.Decrypt(key, p.IV, buf); err != nil {
		return newError(KindData, "decryptInPlace", err)
	}

	return nil
}

// bcj2RngInput is the S5 BCJ2 folder's hard-wired global input index for
// the range-coder sub-stream, per internal/classify's bcj2PackStreams
// constant.
const bcj2RngInput = 6

func decodeBCJ2(f *Folder, layout *PackedLayout, r io.ReaderAt, startPos int64, result classify.Result, out []byte, cfg *Config) error {
	const op = "decodeBCJ2"

	jumpIdx, callIdx, mainIdx := result.MainIndices[0], result.MainIndices[1], result.MainIndices[2]

	jumpBuf, err := safeMake(op, layout.UnpackSizes[jumpIdx])
	if err != nil {
		return err
	}

	callBuf, err := safeMake(op, layout.UnpackSizes[callIdx])
	if err != nil {
		return err
	}

	mainBuf, err := safeMake(op, layout.UnpackSizes[mainIdx])
	if err != nil {
		return err
	}

	for _, sub := range []struct {
		coderIdx int
		dest     []byte
	}{{jumpIdx, jumpBuf}, {callIdx, callBuf}, {mainIdx, mainBuf}} {
		if err := decodeSingleMain(f, layout, r, startPos, sub.coderIdx, sub.dest, cfg); err != nil {
			return err
		}
	}

	k, ok := f.packStreamForInput(bcj2RngInput)
	if !ok {
		return newError(KindData, op, fmt.Errorf("no packed stream feeds BCJ2 range coder"))
	}

	rngIn := packedStream(r, startPos, layout, k)

	rngBuf, err := safeMake(op, layout.packSize(k))
	if err != nil {
		return err
	}

	if err := stream.ReadFull(rngIn, rngBuf); err != nil {
		return newError(KindUnexpectedEOF, op, err)
	}

	if err := bcj2.Decode(mainBuf, callBuf, jumpBuf, rngBuf, out); err != nil {
		return newError(KindData, op, err)
	}

	return nil
}

func verifyCRC(f *Folder, out []byte) error {
	if !f.HasCRC {
		return nil
	}

	if got := crc32.ChecksumIEEE(out); got != f.CRC32 {
		return newError(KindChecksum, "verifyCRC", fmt.Errorf("got %#08x, want %#08x", got, f.CRC32))
	}

	return nil
}
