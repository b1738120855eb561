package crypto

import (
	"bytes"
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testKey(b byte) []byte {
	return bytes.Repeat([]byte{b}, KeyLength)
}

func TestSealOpen_RoundTrip(t *testing.T) {
	for _, plain := range []string{"", "a", "form-1|sub-1|1700000000", string(bytes.Repeat([]byte("x"), 100))} {
		token, err := Seal([]byte(plain), testKey(1))
		require.NoError(t, err)

		got, err := Open(token, testKey(1))
		require.NoError(t, err)
		assert.Equal(t, plain, string(got))
	}
}

func TestSeal_RandomIV(t *testing.T) {
	a, err := Seal([]byte("same"), testKey(1))
	require.NoError(t, err)
	b, err := Seal([]byte("same"), testKey(1))
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestOpen_RejectsWrongKeyAndTampering(t *testing.T) {
	token, err := Seal([]byte("form-1|sub-1|1"), testKey(1))
	require.NoError(t, err)

	_, err = Open(token, testKey(2))
	assert.ErrorIs(t, err, ErrInvalidToken)

	raw, err := base64.RawURLEncoding.DecodeString(token)
	require.NoError(t, err)
	raw[0] ^= 0xff
	_, err = Open(base64.RawURLEncoding.EncodeToString(raw), testKey(1))
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = Open("not base64!", testKey(1))
	assert.ErrorIs(t, err, ErrInvalidToken)
	_, err = Open("AAAA", testKey(1))
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestKeyLength(t *testing.T) {
	_, err := Seal([]byte("x"), []byte("short"))
	assert.Error(t, err)
	_, err = Open("x", []byte("short"))
	assert.Error(t, err)
}

func TestPKCS7(t *testing.T) {
	padded, err := pkcs7Pad([]byte("abc"), 16)
	require.NoError(t, err)
	assert.Len(t, padded, 16)

	unpadded, err := pkcs7Unpad(padded, 16)
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), unpadded)

	full, err := pkcs7Pad(bytes.Repeat([]byte("a"), 16), 16)
	require.NoError(t, err)
	assert.Len(t, full, 32)

	_, err = pkcs7Unpad([]byte{1, 2, 3}, 16)
	assert.Error(t, err)
	bad := append(bytes.Repeat([]byte("a"), 15), 0)
	_, err = pkcs7Unpad(bad, 16)
	assert.Error(t, err)
}
