// Package crypto seals short opaque tokens with AES-256-CBC and HMAC-SHA256.
package crypto

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
)

const (
	// KeyLength is the AES-256 key length.
	KeyLength = 32

	aesBlockSize = 16
	ivLength     = 16
	macLength    = sha256.Size
)

// ErrInvalidToken is returned when a token is malformed or was not sealed with the key.
var ErrInvalidToken = errors.New("invalid token")

// pkcs7Pad pads data to be a multiple of blockSize using PKCS#7 padding.
func pkcs7Pad(data []byte, blockSize int) ([]byte, error) {
	if blockSize <= 0 || blockSize > 255 {
		return nil, errors.New("block size must be between 1 and 255")
	}
	padding := blockSize - (len(data) % blockSize)
	return append(data, bytes.Repeat([]byte{byte(padding)}, padding)...), nil
}

// pkcs7Unpad removes PKCS#7 padding from data.
func pkcs7Unpad(data []byte, blockSize int) ([]byte, error) {
	if len(data) == 0 || len(data)%blockSize != 0 {
		return nil, errors.New("data length is not a positive multiple of block size")
	}
	padding := int(data[len(data)-1])
	if padding == 0 || padding > blockSize {
		return nil, errors.New("invalid pkcs7 padding size")
	}
	for _, b := range data[len(data)-padding:] {
		if b != byte(padding) {
			return nil, errors.New("invalid pkcs7 padding bytes")
		}
	}
	return data[:len(data)-padding], nil
}

// deriveKeys splits the master key into independent encryption and MAC keys.
func deriveKeys(key []byte) (encKey, macKey []byte) {
	e := hmac.New(sha256.New, key)
	e.Write([]byte("formcraft/enc"))
	m := hmac.New(sha256.New, key)
	m.Write([]byte("formcraft/mac"))
	return e.Sum(nil), m.Sum(nil)
}

// Seal encrypts plaintext and authenticates the result. The token is
// base64url(iv || ciphertext || mac).
func Seal(plainText []byte, key []byte) (string, error) {
	if len(key) != KeyLength {
		return "", fmt.Errorf("invalid key length: must be %d bytes for AES-256", KeyLength)
	}
	encKey, macKey := deriveKeys(key)

	block, err := aes.NewCipher(encKey)
	if err != nil {
		return "", fmt.Errorf("failed to create AES cipher: %w", err)
	}

	iv := make([]byte, ivLength)
	if _, err := rand.Read(iv); err != nil {
		return "", fmt.Errorf("failed to generate IV: %w", err)
	}

	padded, err := pkcs7Pad(append([]byte(nil), plainText...), aesBlockSize)
	if err != nil {
		return "", fmt.Errorf("failed to pad plaintext: %w", err)
	}
	cipherText := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(cipherText, padded)

	out := make([]byte, 0, ivLength+len(cipherText)+macLength)
	out = append(out, iv...)
	out = append(out, cipherText...)
	mac := hmac.New(sha256.New, macKey)
	mac.Write(out)
	out = mac.Sum(out)

	return base64.RawURLEncoding.EncodeToString(out), nil
}

// Open verifies and decrypts a token produced by Seal.
func Open(token string, key []byte) ([]byte, error) {
	if len(key) != KeyLength {
		return nil, fmt.Errorf("invalid key length: must be %d bytes for AES-256", KeyLength)
	}
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return nil, ErrInvalidToken
	}
	if len(raw) < ivLength+aesBlockSize+macLength || (len(raw)-ivLength-macLength)%aesBlockSize != 0 {
		return nil, ErrInvalidToken
	}
	encKey, macKey := deriveKeys(key)

	body, sum := raw[:len(raw)-macLength], raw[len(raw)-macLength:]
	mac := hmac.New(sha256.New, macKey)
	mac.Write(body)
	if !hmac.Equal(sum, mac.Sum(nil)) {
		return nil, ErrInvalidToken
	}

	block, err := aes.NewCipher(encKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create AES cipher: %w", err)
	}
	iv, cipherText := body[:ivLength], body[ivLength:]
	plain := make([]byte, len(cipherText))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(plain, cipherText)

	unpadded, err := pkcs7Unpad(plain, aesBlockSize)
	if err != nil {
		return nil, ErrInvalidToken
	}
	return unpadded, nil
}
