package crypt_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/veilforge/veil/crypt"
)

func TestDeriveKeyDeterministic(t *testing.T) {
	assert := assert.New(t)

	salt := []byte("0123456789abcdef")
	k1 := crypt.DeriveKey("hunter2", salt)
	k2 := crypt.DeriveKey("hunter2", salt)
	assert.Equal(k1, k2)
	assert.Len(k1, crypt.KeySize)

	// A different salt must produce a different key.
	k3 := crypt.DeriveKey("hunter2", []byte("fedcba9876543210"))
	assert.NotEqual(k1, k3)
}

func TestSealOpenRoundTrip(t *testing.T) {
	assert := assert.New(t)

	plaintext := []byte("attack at dawn")
	sealed, err := crypt.Seal(plaintext, "p@ss")
	assert.NoError(err)
	assert.Greater(len(sealed), crypt.SaltSize+crypt.NonceSize+len(plaintext))

	out, err := crypt.Open(sealed, "p@ss")
	assert.NoError(err)
	assert.Equal(plaintext, out)
}

func TestSealIsSaltedPerCall(t *testing.T) {
	assert := assert.New(t)

	a, err := crypt.Seal([]byte("same message"), "pw")
	assert.NoError(err)
	b, err := crypt.Seal([]byte("same message"), "pw")
	assert.NoError(err)
	assert.NotEqual(a, b)
}

func TestOpenWrongPassword(t *testing.T) {
	assert := assert.New(t)

	sealed, err := crypt.Seal([]byte("secret"), "right")
	assert.NoError(err)

	for _, pw := range []string{"wrong", "", "right ", "RIGHT", "rigth"} {
		out, err := crypt.Open(sealed, pw)
		assert.ErrorIs(err, crypt.ErrAuthentication)
		assert.Nil(out)
	}
}

func TestOpenTamperedBlock(t *testing.T) {
	assert := assert.New(t)

	sealed, err := crypt.Seal([]byte("secret"), "pw")
	assert.NoError(err)

	for _, i := range []int{0, crypt.SaltSize, crypt.SaltSize + crypt.NonceSize, len(sealed) - 1} {
		tampered := append([]byte(nil), sealed...)
		tampered[i] ^= 0x01
		_, err := crypt.Open(tampered, "pw")
		assert.ErrorIs(err, crypt.ErrAuthentication)
	}
}

func TestOpenShortBlock(t *testing.T) {
	_, err := crypt.Open([]byte("too short"), "pw")
	assert.ErrorIs(t, err, crypt.ErrAuthentication)
}

func TestZero(t *testing.T) {
	b := []byte{1, 2, 3, 4}
	crypt.Zero(b)
	assert.Equal(t, []byte{0, 0, 0, 0}, b)
}
