// Package crypt implements the password-derived authenticated encryption
// layer. A payload block is framed as salt || nonce || ciphertext, where the
// ciphertext carries the AES-GCM authentication tag. Keys are derived with
// PBKDF2-HMAC-SHA256 and wiped as soon as the cipher operation completes.
package crypt

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"

	"golang.org/x/crypto/pbkdf2"
)

const (
	// SaltSize is the length of the random KDF salt, generated fresh per
	// seal operation.
	SaltSize = 16
	// NonceSize is the length of the AES-GCM nonce.
	NonceSize = 12
	// KeySize is the length of the derived AES-256 key.
	KeySize = 32

	kdfIterations = 100_000
)

// ErrAuthentication is returned when a sealed block cannot be opened. A wrong
// password and a tampered block are indistinguishable by design.
var ErrAuthentication = errors.New("crypt: message authentication failed")

// DeriveKey stretches a password and salt into an AES-256 key. The caller
// owns the returned slice and must Zero it after use.
func DeriveKey(password string, salt []byte) []byte {
	return pbkdf2.Key([]byte(password), salt, kdfIterations, KeySize, sha256.New)
}

// Zero overwrites a byte slice in memory with zeros.
func Zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// Seal encrypts plaintext under a key derived from password. The salt and
// nonce are generated fresh and prepended to the returned block.
func Seal(plaintext []byte, password string) ([]byte, error) {
	salt := make([]byte, SaltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}
	nonce := make([]byte, NonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	key := DeriveKey(password, salt)
	defer Zero(key)

	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	out := make([]byte, 0, SaltSize+NonceSize+len(plaintext)+gcm.Overhead())
	out = append(out, salt...)
	out = append(out, nonce...)
	return gcm.Seal(out, nonce, plaintext, nil), nil
}

// Open decrypts a block produced by Seal. Any failure, including a short
// block, reports ErrAuthentication.
func Open(sealed []byte, password string) ([]byte, error) {
	if len(sealed) < SaltSize+NonceSize {
		return nil, ErrAuthentication
	}
	salt := sealed[:SaltSize]
	nonce := sealed[SaltSize : SaltSize+NonceSize]
	ciphertext := sealed[SaltSize+NonceSize:]

	key := DeriveKey(password, salt)
	defer Zero(key)

	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, ErrAuthentication
	}
	return plaintext, nil
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create AES cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create AES-GCM: %w", err)
	}
	return gcm, nil
}
