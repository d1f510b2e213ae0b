package aes7z_test

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bodgit/sevenzip/internal/aes7z"
)

func TestDecryptRoundTrip(t *testing.T) {
	t.Parallel()

	key := make([]byte, 32)
	iv := make([]byte, aes.BlockSize)
	_, err := rand.Read(key)
	require.NoError(t, err)
	_, err = rand.Read(iv)
	require.NoError(t, err)

	plaintext := []byte("sixteen byte blk")
	require.Len(t, plaintext, aes.BlockSize)

	block, err := aes.NewCipher(key)
	require.NoError(t, err)

	ciphertext := make([]byte, len(plaintext))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(ciphertext, plaintext)

	require.NoError(t, aes7z.Decrypt(key, iv, ciphertext))
	assert.Equal(t, plaintext, ciphertext)
}

func TestDecryptBadBlockSize(t *testing.T) {
	t.Parallel()

	key := make([]byte, 32)
	iv := make([]byte, aes.BlockSize)
	buf := make([]byte, 5)

	assert.Error(t, aes7z.Decrypt(key, iv, buf))
}
