package sevenzip

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorIs(t *testing.T) {
	t.Parallel()

	err := newError(KindChecksum, "TestErrorIs", errors.New("boom"))

	assert.ErrorIs(t, err, ErrChecksum)
	assert.NotErrorIs(t, err, ErrData)
}

func TestErrorUnwrap(t *testing.T) {
	t.Parallel()

	cause := errors.New("boom")
	err := newError(KindData, "op", cause)

	assert.Equal(t, cause, errors.Unwrap(err))
}

func TestErrorString(t *testing.T) {
	t.Parallel()

	err := newError(KindUnsupported, "op", nil)
	assert.Contains(t, err.Error(), "unsupported")
	assert.Contains(t, err.Error(), "op")
}
