package lzma_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bodgit/sevenzip/internal/lzma"
	"github.com/bodgit/sevenzip/internal/stream"
)

func TestDecodeBadProperties(t *testing.T) {
	t.Parallel()

	in := stream.New(bytes.NewReader(nil), 0, 0)
	out := make([]byte, 1)

	err := lzma.Decode([]byte{0x00, 0x01}, in, 0, out)
	assert.ErrorIs(t, err, lzma.ErrInsufficientProperties)
}
