package bra_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bodgit/sevenzip/internal/bra"
	"github.com/bodgit/sevenzip/internal/method"
)

func TestDecodeProperties(t *testing.T) {
	t.Parallel()

	pc, err := bra.DecodeProperties(nil)
	require.NoError(t, err)
	assert.Equal(t, uint32(0), pc)

	pc, err = bra.DecodeProperties([]byte{0x01, 0x00, 0x00, 0x00})
	require.NoError(t, err)
	assert.Equal(t, uint32(1), pc)

	_, err = bra.DecodeProperties([]byte{0x01, 0x02})
	assert.ErrorIs(t, err, bra.ErrInsufficientProperties)
}

func payload(n int) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = byte(i * 7 % 251)
	}

	return b
}

func TestDecodeDispatch(t *testing.T) {
	t.Parallel()

	tables := map[string]method.ID{
		"bcj":   method.BCJ,
		"arm":   method.ARM,
		"armt":  method.ARMT,
		"ppc":   method.PPC,
		"sparc": method.SPARC,
		"ia64":  method.IA64,
	}

	for name, id := range tables {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			buf := payload(64)
			require.NoError(t, bra.Decode(id, buf, nil))
			assert.Len(t, buf, 64)
		})
	}
}

func TestDecodeUnsupportedMethod(t *testing.T) {
	t.Parallel()

	buf := payload(8)
	assert.Error(t, bra.Decode(method.Copy, buf, nil))
}

func TestDecodeRISCVMisaligned(t *testing.T) {
	t.Parallel()

	buf := payload(8)
	err := bra.Decode(method.RISCV, buf, []byte{0x01, 0x00, 0x00, 0x00})
	assert.ErrorIs(t, err, bra.ErrMisalignedPC)
}

func TestDecodeARM64Misaligned(t *testing.T) {
	t.Parallel()

	buf := payload(8)
	err := bra.Decode(method.ARM64, buf, []byte{0x01, 0x00, 0x00, 0x00})
	assert.ErrorIs(t, err, bra.ErrMisalignedPC)
}
