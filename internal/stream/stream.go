// Package stream implements the look-ahead-capable seekable byte source
// that the folder engine reads packed bytes through.
package stream

import (
	"bufio"
	"errors"
	"fmt"
	"io"
)

var (
	errInvalidWhence = errors.New("stream: invalid whence")
	errNegativeSeek  = errors.New("stream: negative seek")
	errSeekRange     = errors.New("stream: seek out of range")
)

// LookInStream is a look-ahead-capable seekable byte source. It satisfies
// io.Reader so the existing ulikunitz/xz and klauspost/compress decoders can
// consume it directly.
type LookInStream interface {
	io.Reader
	io.ByteReader

	// Look returns up to hint bytes visible without consuming them. The
	// returned slice is only valid until the next call to Look, Skip or
	// Read.
	Look(hint int) ([]byte, error)

	// Skip consumes n bytes previously returned by Look.
	Skip(n int) error

	// Seek repositions the stream, same semantics as io.Seeker.
	Seek(offset int64, whence int) (int64, error)
}

// sectionStream adapts an io.ReaderAt section into a LookInStream.
type sectionStream struct {
	r      io.ReaderAt
	base   int64
	size   int64
	pos    int64
	br     *bufio.Reader
	looked int // bytes currently exposed by the last Look call
}

// New returns a LookInStream over r[base:base+size].
func New(r io.ReaderAt, base, size int64) LookInStream {
	s := &sectionStream{r: r, base: base, size: size}
	s.br = bufio.NewReader(io.NewSectionReader(r, base, size))

	return s
}

func (s *sectionStream) Look(hint int) ([]byte, error) {
	b, err := s.br.Peek(hint)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, bufio.ErrBufferFull) {
		return nil, fmt.Errorf("stream: error looking ahead: %w", err)
	}

	s.looked = len(b)

	return b, nil
}

func (s *sectionStream) Skip(n int) error {
	if n > s.looked {
		return fmt.Errorf("stream: skip %d exceeds looked-ahead %d", n, s.looked)
	}

	if _, err := s.br.Discard(n); err != nil {
		return fmt.Errorf("stream: error skipping: %w", err)
	}

	s.pos += int64(n)
	s.looked -= n

	return nil
}

func (s *sectionStream) Read(p []byte) (int, error) {
	n, err := s.br.Read(p)
	s.pos += int64(n)
	s.looked = 0

	if err != nil && !errors.Is(err, io.EOF) {
		err = fmt.Errorf("stream: error reading: %w", err)
	}

	return n, err
}

func (s *sectionStream) ReadByte() (byte, error) {
	b, err := s.br.ReadByte()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return 0, err
		}

		return 0, fmt.Errorf("stream: error reading byte: %w", err)
	}

	s.pos++
	s.looked = 0

	return b, nil
}

func (s *sectionStream) Seek(offset int64, whence int) (int64, error) {
	var newPos int64

	switch whence {
	case io.SeekStart:
		newPos = offset
	case io.SeekCurrent:
		newPos = s.pos + offset
	case io.SeekEnd:
		newPos = s.size + offset
	default:
		return 0, errInvalidWhence
	}

	if newPos < 0 {
		return 0, errNegativeSeek
	}

	if newPos > s.size {
		return 0, errSeekRange
	}

	s.pos = newPos
	s.looked = 0
	s.br = bufio.NewReader(io.NewSectionReader(s.r, s.base+newPos, s.size-newPos))

	return newPos, nil
}

// ReadFull reads exactly len(buf) bytes from s, the way every primitive
// decoder consumes its declared input_byte_count.
func ReadFull(s LookInStream, buf []byte) error {
	if _, err := io.ReadFull(s, buf); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return io.ErrUnexpectedEOF
		}

		return fmt.Errorf("stream: error reading full: %w", err)
	}

	return nil
}
