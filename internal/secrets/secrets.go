// Package secrets implements the field-level encryption capability used for
// contact data at rest. Key lifecycle is managed externally: the cipher is
// constructed from a key supplied through configuration.
package secrets

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/crypto/nacl/secretbox"
)

// Cipher encrypts and decrypts short text fields with a 32-byte secret key.
type Cipher struct {
	key [32]byte
}

// NewCipher builds a Cipher from a base64-encoded 32-byte key.
func NewCipher(encodedKey string) (*Cipher, error) {
	raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(encodedKey))
	if err != nil {
		return nil, fmt.Errorf("decode encryption key: %w", err)
	}
	if len(raw) != 32 {
		return nil, errors.New("encryption key must be 32 bytes")
	}
	var c Cipher
	copy(c.key[:], raw)
	return &c, nil
}

// Encrypt seals the plaintext and returns a base64 token.
func (c *Cipher) Encrypt(plaintext string) (string, error) {
	var nonce [24]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return "", fmt.Errorf("generate nonce: %w", err)
	}
	sealed := secretbox.Seal(nonce[:], []byte(plaintext), &nonce, &c.key)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Decrypt opens a token produced by Encrypt.
func (c *Cipher) Decrypt(token string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(token)
	if err != nil {
		return "", fmt.Errorf("decode token: %w", err)
	}
	if len(raw) < 24 {
		return "", errors.New("token too short")
	}
	var nonce [24]byte
	copy(nonce[:], raw[:24])
	plaintext, ok := secretbox.Open(nil, raw[24:], &nonce, &c.key)
	if !ok {
		return "", errors.New("decryption failed")
	}
	return string(plaintext), nil
}

// HashEmail produces the deterministic digest stored alongside the encrypted
// email for exact-match lookup. Input is lowercased first.
func HashEmail(email string) string {
	sum := sha256.Sum256([]byte(strings.ToLower(strings.TrimSpace(email))))
	return hex.EncodeToString(sum[:])
}

// GenerateKey returns a fresh base64-encoded 32-byte key. Intended for
// provisioning, not runtime use.
func GenerateKey() (string, error) {
	raw := make([]byte, 32)
	if _, err := io.ReadFull(rand.Reader, raw); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(raw), nil
}
