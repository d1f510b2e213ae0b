package sevenzip

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bodgit/sevenzip/internal/method"
)

func TestApplyFilterDelta(t *testing.T) {
	t.Parallel()

	cfg := NewConfig()
	buf := []byte{0x01, 0x01, 0x01, 0x01}

	require.NoError(t, applyFilter(method.Delta, []byte{0x00}, buf, cfg))
	assert.Equal(t, []byte{0x01, 0x02, 0x03, 0x04}, buf)
}

func TestApplyFilterBCJAlwaysAllowed(t *testing.T) {
	t.Parallel()

	cfg := NewConfig(WithoutFilters())
	buf := make([]byte, 16)

	assert.NoError(t, applyFilter(method.BCJ, nil, buf, cfg))
}

func TestApplyFilterDisabled(t *testing.T) {
	t.Parallel()

	cfg := NewConfig(WithoutFilters())
	buf := make([]byte, 16)

	err := applyFilter(method.SPARC, nil, buf, cfg)
	assert.ErrorIs(t, err, ErrUnsupported)
}

func TestApplyFilterARM64RequiresNativeOption(t *testing.T) {
	t.Parallel()

	buf := make([]byte, 16)

	err := applyFilter(method.ARM64, nil, buf, NewConfig())
	assert.ErrorIs(t, err, ErrUnsupported)

	assert.NoError(t, applyFilter(method.ARM64, nil, buf, NewConfig(WithNativeARMFilters())))
}

func TestApplyFilterBadProperties(t *testing.T) {
	t.Parallel()

	cfg := NewConfig()
	buf := make([]byte, 4)

	err := applyFilter(method.Delta, []byte{1, 2}, buf, cfg)
	assert.ErrorIs(t, err, ErrData)
}
