package sevenzip

import (
	"fmt"
	"hash"
	"hash/crc32"
	"io"
	"sync"

	"github.com/bodgit/plumbing"
	"github.com/klauspost/compress/zstd"

	"github.com/bodgit/sevenzip/internal/classify"
	"github.com/bodgit/sevenzip/internal/method"
)

// StreamState is a FolderReader's position in its begin/read/end
// lifecycle.
type StreamState int

const (
	StreamIdle StreamState = iota
	StreamActive
)

// FileInfo describes one file's slice of a folder's decoded output: its
// length and, if present, its own CRC-32 — the per-file bookkeeping a
// solid block needs since the folder itself decodes as a single
// concatenated stream.
type FileInfo struct {
	Size   uint64
	CRC32  uint32
	HasCRC bool
}

// FolderReader is the narrow streaming fast path spec.md §4.6 carves out
// of the otherwise whole-buffer folder engine: a folder whose only coder
// is Copy or Zstd can be read incrementally without the caller
// allocating its full unpacked size up front. Every other shape goes
// through DecodeFolder.
//
// A FolderReader reads one file of a (possibly multi-file, solid-block)
// folder per Begin/End cycle: Begin(fileIndex) decompresses-and-discards
// every earlier file's bytes before serving fileIndex's own.
//
// A FolderReader is not safe for concurrent use, but its state machine
// is guarded so a caller that calls Read before Begin, or Begin twice,
// gets ErrInvalidState rather than a nil pointer panic.
type FolderReader struct {
	mu    sync.Mutex
	state StreamState

	fmethod method.ID
	in      io.Reader // raw packed bytes, not yet limited to packSz
	packSz  int64
	files   []FileInfo

	r       io.ReadCloser
	zr      *zstd.Decoder
	h       hash.Hash32
	wc      *plumbing.WriteCounter
	curSize int64
	curCRC  uint32
	curHas  bool
}

// NewFolderReader builds a FolderReader for f, or a KindUnsupported
// error if f isn't a single-coder Copy or Zstd folder. files gives the
// folder's decoded output as a sequence of file slices, in the order
// they appear in the decoded stream; len(files) is 1 for a folder
// holding a single file.
func NewFolderReader(f *Folder, layout *PackedLayout, r io.ReaderAt, startPos int64, files []FileInfo) (*FolderReader, error) {
	const op = "NewFolderReader"

	result, err := classify.Classify(f.classifyInput())
	if err != nil {
		return nil, newError(KindUnsupported, op, err)
	}

	if result.Shape != classify.ShapeSingleMain {
		return nil, newError(KindUnsupported, op, fmt.Errorf("streaming fast path requires a single-coder folder"))
	}

	id := f.Coders[result.MainIndex].Method
	if id != method.Copy && id != method.Zstd {
		return nil, newError(KindUnsupported, op, fmt.Errorf("streaming fast path supports only Copy and Zstd, got %s", id))
	}

	k, ok := f.packStreamForInput(result.MainIndex)
	if !ok {
		return nil, newError(KindData, op, fmt.Errorf("no packed stream feeds coder %d", result.MainIndex))
	}

	var total uint64
	for _, fi := range files {
		total += fi.Size
	}

	if total != uint64(layout.UnpackSizes[result.MainIndex]) { //nolint:gosec
		return nil, newError(KindData, op, fmt.Errorf("file sizes sum to %d, folder unpacks to %d", total, layout.UnpackSizes[result.MainIndex]))
	}

	return &FolderReader{
		fmethod: id,
		in:      packedStream(r, startPos, layout, k),
		packSz:  layout.packSize(k),
		files:   files,
	}, nil
}

// Begin transitions Idle to Active, opening the underlying decoder,
// discarding every file before fileIndex, and arranging for Read to
// serve exactly fileIndex's bytes. The decoded bytes are teed through a
// running CRC-32, the same TeeReadCloser/WriteCounter idiom the
// teacher's multi-volume reader uses, so End can verify the checksum
// without buffering the file's output itself.
func (fr *FolderReader) Begin(fileIndex int) error {
	fr.mu.Lock()
	defer fr.mu.Unlock()

	if fr.state != StreamIdle {
		return newError(KindInvalidState, "Begin", fmt.Errorf("FolderReader is already active"))
	}

	if fileIndex < 0 || fileIndex >= len(fr.files) {
		return newError(KindData, "Begin", fmt.Errorf("file index %d out of range [0,%d)", fileIndex, len(fr.files)))
	}

	if s, ok := fr.in.(io.Seeker); ok {
		if _, err := s.Seek(0, io.SeekStart); err != nil {
			return newError(KindData, "Begin", fmt.Errorf("rewinding packed stream: %w", err))
		}
	}

	limited := io.LimitReader(fr.in, fr.packSz)

	var decoded io.Reader

	switch fr.fmethod {
	case method.Copy:
		decoded = limited
	case method.Zstd:
		zr, err := zstd.NewReader(limited)
		if err != nil {
			return newError(KindData, "Begin", err)
		}

		fr.zr = zr
		decoded = zr
	default:
		return newError(KindUnsupported, "Begin", fmt.Errorf("method %s", fr.fmethod))
	}

	var priorBytes int64
	for _, fi := range fr.files[:fileIndex] {
		priorBytes += int64(fi.Size) //nolint:gosec
	}

	if priorBytes > 0 {
		if _, err := io.CopyN(io.Discard, decoded, priorBytes); err != nil {
			return newError(KindData, "Begin", fmt.Errorf("discarding %d prior bytes: %w", priorBytes, err))
		}
	}

	cur := fr.files[fileIndex]

	fr.h = crc32.NewIEEE()
	fr.wc = new(plumbing.WriteCounter)
	fr.r = plumbing.TeeReadCloser(io.NopCloser(io.LimitReader(decoded, int64(cur.Size))), io.MultiWriter(fr.h, fr.wc)) //nolint:gosec
	fr.curSize = int64(cur.Size)                                                                                      //nolint:gosec
	fr.curCRC = cur.CRC32
	fr.curHas = cur.HasCRC
	fr.state = StreamActive

	return nil
}

// Read streams decoded bytes. Only valid in the Active state.
func (fr *FolderReader) Read(p []byte) (int, error) {
	fr.mu.Lock()
	defer fr.mu.Unlock()

	if fr.state != StreamActive {
		return 0, newError(KindInvalidState, "Read", fmt.Errorf("FolderReader is not active"))
	}

	n, err := fr.r.Read(p)
	if err != nil && err != io.EOF { //nolint:errorlint
		err = newError(KindData, "Read", err)
	}

	return n, err
}

// End transitions Active back to Idle, releasing the underlying
// decoder. If the caller consumed the current file's entire size and
// that file carries a CRC, End verifies it. A short read
// (caller gave up early) skips verification rather than reporting a
// false checksum failure.
func (fr *FolderReader) End() error {
	fr.mu.Lock()
	defer fr.mu.Unlock()

	if fr.state != StreamActive {
		return newError(KindInvalidState, "End", fmt.Errorf("FolderReader is not active"))
	}

	var err error

	if fr.curHas && fr.wc.Count() == uint64(fr.curSize) { //nolint:gosec
		if got := fr.h.Sum32(); got != fr.curCRC {
			err = newError(KindChecksum, "End", fmt.Errorf("got %#08x, want %#08x", got, fr.curCRC))
		}
	}

	_ = fr.r.Close()

	if fr.zr != nil {
		fr.zr.Close()
		fr.zr = nil
	}

	fr.r = nil
	fr.h = nil
	fr.wc = nil
	fr.state = StreamIdle

	return err
}
