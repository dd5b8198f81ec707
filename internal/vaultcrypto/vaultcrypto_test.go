package vaultcrypto

import (
	"bytes"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testKey() []byte {
	key := make([]byte, 32)
	for i := range key {
		key[i] = byte(i)
	}
	return key
}

func TestSealOpen_Roundtrip(t *testing.T) {
	c, err := New(testKey())
	require.NoError(t, err)

	plaintext := []byte("hunter2")
	sealed, err := c.Seal(plaintext)
	require.NoError(t, err)

	assert.False(t, bytes.Contains(sealed, plaintext), "ciphertext must not contain the plaintext")

	opened, err := c.Open(sealed)
	require.NoError(t, err)
	assert.Equal(t, plaintext, opened)
}

func TestSeal_UniqueNonces(t *testing.T) {
	c, err := New(testKey())
	require.NoError(t, err)

	a, err := c.Seal([]byte("same value"))
	require.NoError(t, err)
	b, err := c.Seal([]byte("same value"))
	require.NoError(t, err)

	assert.NotEqual(t, a, b, "two seals of the same value must differ")
}

func TestOpen_TamperDetected(t *testing.T) {
	c, err := New(testKey())
	require.NoError(t, err)

	sealed, err := c.Seal([]byte("confidential"))
	require.NoError(t, err)

	sealed[len(sealed)-1] ^= 0xff
	_, err = c.Open(sealed)
	assert.ErrorIs(t, err, ErrCiphertextInvalid)
}

func TestOpen_TooShort(t *testing.T) {
	c, err := New(testKey())
	require.NoError(t, err)

	_, err = c.Open([]byte{0x01, 0x02})
	assert.ErrorIs(t, err, ErrCiphertextInvalid)
}

func TestNew_InvalidKeyLength(t *testing.T) {
	_, err := New([]byte("short"))
	assert.ErrorIs(t, err, ErrInvalidKey)
}

func TestNewFromHex(t *testing.T) {
	_, err := NewFromHex(hex.EncodeToString(testKey()))
	assert.NoError(t, err)

	_, err = NewFromHex("not-hex")
	assert.Error(t, err)

	_, err = NewFromHex("abcd")
	assert.ErrorIs(t, err, ErrInvalidKey)
}
