package aes7z

import (
	"crypto/aes"
	"crypto/cipher"
	"errors"
	"fmt"
)

var errBlockSize = errors.New("aes7z: input size is not a multiple of the block size")

// Decrypt performs AES-256-CBC decryption of buf in place. key must be 32
// bytes (the output of DeriveKey); len(buf) must be a multiple of
// aes.BlockSize.
func Decrypt(key, iv, buf []byte) error {
	if len(buf)%aes.BlockSize != 0 {
		return errBlockSize
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return fmt.Errorf("aes7z: error creating cipher: %w", err)
	}

	if len(buf) == 0 {
		return nil
	}

	cipher.NewCBCDecrypter(block, iv).CryptBlocks(buf, buf)

	return nil
}
