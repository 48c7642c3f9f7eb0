// Package seal wraps message text in AES-256-GCM before it is embedded.
//
// A sealed message is the ASCII string
//
//	hex(iv):hex(tag):hex(ciphertext)
//
// with a 12-byte random IV and a 16-byte authentication tag.
package seal

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

const (
	KeyLen = 32
	ivLen  = 12
	tagLen = 16
)

var (
	ErrInvalidKey     = errors.New("invalid seal key")
	ErrMalformed      = errors.New("malformed sealed message")
	ErrAuthentication = errors.New("sealed message failed authentication")
)

// ParseKey decodes a 64 character hex key.
func ParseKey(s string) ([]byte, error) {
	key, err := hex.DecodeString(strings.TrimSpace(s))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidKey, err)
	}
	if len(key) != KeyLen {
		return nil, fmt.Errorf("%w: key must decode to %d bytes, got %d", ErrInvalidKey, KeyLen, len(key))
	}
	return key, nil
}

// Seal encrypts plaintext with key.
func Seal(key, plaintext []byte) (string, error) {
	aead, err := newGCM(key)
	if err != nil {
		return "", err
	}
	iv := make([]byte, ivLen)
	if _, err := rand.Read(iv); err != nil {
		return "", fmt.Errorf("failed to generate iv: %w", err)
	}
	out := aead.Seal(nil, iv, plaintext, nil)
	ciphertext, tag := out[:len(out)-tagLen], out[len(out)-tagLen:]
	return hex.EncodeToString(iv) + ":" + hex.EncodeToString(tag) + ":" + hex.EncodeToString(ciphertext), nil
}

// Open reverses Seal.
func Open(key []byte, sealed string) ([]byte, error) {
	parts := strings.Split(sealed, ":")
	if len(parts) != 3 {
		return nil, fmt.Errorf("%w: want 3 parts, got %d", ErrMalformed, len(parts))
	}
	var raw [3][]byte
	for i, p := range parts {
		b, err := hex.DecodeString(p)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
		}
		raw[i] = b
	}
	iv, tag, ciphertext := raw[0], raw[1], raw[2]
	if len(iv) != ivLen || len(tag) != tagLen {
		return nil, fmt.Errorf("%w: iv %d bytes, tag %d bytes", ErrMalformed, len(iv), len(tag))
	}

	aead, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	plaintext, err := aead.Open(nil, iv, append(ciphertext, tag...), nil)
	if err != nil {
		return nil, ErrAuthentication
	}
	return plaintext, nil
}

// IsSealed reports whether s has the shape of a sealed message.
func IsSealed(s string) bool {
	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return false
	}
	for _, p := range parts {
		if _, err := hex.DecodeString(p); err != nil {
			return false
		}
	}
	return len(parts[0]) == ivLen*2 && len(parts[1]) == tagLen*2
}

// Digest returns the hex SHA-256 of plaintext.
func Digest(plaintext []byte) string {
	h := sha256.Sum256(plaintext)
	return hex.EncodeToString(h[:])
}

func newGCM(key []byte) (cipher.AEAD, error) {
	if len(key) != KeyLen {
		return nil, fmt.Errorf("%w: key must be %d bytes, got %d", ErrInvalidKey, KeyLen, len(key))
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidKey, err)
	}
	return cipher.NewGCM(block)
}
