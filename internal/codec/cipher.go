// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package codec

import (
	"crypto/aes"
	"crypto/cipher"
	"fmt"
)

// iv is shared by every request. Changing it breaks compatibility with the vendor.
var iv = [aes.BlockSize]byte{
	0x53, 0x47, 0x1A, 0x3A, 0x36, 0x23, 0x16, 0x0B,
	0x53, 0x47, 0x1A, 0x3A, 0x36, 0x23, 0x16, 0x0B,
}

// Pad applies PKCS#7 padding to a 16-byte boundary. A full block is appended
// when len(b) is already a multiple of the block size.
func Pad(b []byte) []byte {
	n := aes.BlockSize - len(b)%aes.BlockSize
	out := make([]byte, len(b), len(b)+n)
	copy(out, b)
	for i := 0; i < n; i++ {
		out = append(out, byte(n))
	}
	return out
}

// Unpad strips PKCS#7 padding.
func Unpad(b []byte) ([]byte, error) {
	if len(b) == 0 {
		return nil, decodeErr(StagePadding, fmt.Errorf("empty input"))
	}
	n := int(b[len(b)-1])
	if n == 0 || n > aes.BlockSize || n > len(b) {
		return nil, decodeErr(StagePadding, fmt.Errorf("invalid pad length %d", n))
	}
	for _, c := range b[len(b)-n:] {
		if int(c) != n {
			return nil, decodeErr(StagePadding, fmt.Errorf("inconsistent pad bytes"))
		}
	}
	return b[:len(b)-n], nil
}

// Encrypt pads plain and encrypts it with AES-CBC under key and the fixed IV.
func Encrypt(plain, key []byte) ([]byte, error) {
	block, err := newBlock(key)
	if err != nil {
		return nil, err
	}
	padded := Pad(plain)
	out := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, iv[:]).CryptBlocks(out, padded)
	return out, nil
}

// Decrypt reverses Encrypt.
func Decrypt(ciphertext, key []byte) ([]byte, error) {
	block, err := newBlock(key)
	if err != nil {
		return nil, err
	}
	if len(ciphertext) == 0 || len(ciphertext)%aes.BlockSize != 0 {
		return nil, decodeErr(StageCipher, fmt.Errorf("ciphertext length %d is not a multiple of %d", len(ciphertext), aes.BlockSize))
	}
	out := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(block, iv[:]).CryptBlocks(out, ciphertext)
	return Unpad(out)
}

func newBlock(key []byte) (cipher.Block, error) {
	if len(key) != keyLen {
		return nil, fmt.Errorf("%w: got %d", ErrKeySize, len(key))
	}
	return aes.NewCipher(key)
}
