// Package token generates the opaque secrets handed to clients and derives
// the lookup keys stored in their place. The contract across sesame: the
// client only ever sees the raw secret, the store only ever sees its hash.
package token

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"errors"
)

// DefaultSecretLength is the entropy of a generated secret in bytes.
const DefaultSecretLength = 32 // 256 bits

var ErrEmptyToken = errors.New("token and hash cannot be empty")

// Pair couples a raw secret with the lookup key derived from it.
type Pair struct {
	Raw  string // value handed to the client (link, cookie)
	Hash string // value persisted as the storage primary key
}

// Generate returns a URL-safe random secret of byteLength bytes of entropy.
// byteLength <= 0 falls back to DefaultSecretLength.
func Generate(byteLength int) (string, error) {
	if byteLength <= 0 {
		byteLength = DefaultSecretLength
	}

	bytes := make([]byte, byteLength)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}

	return base64.RawURLEncoding.EncodeToString(bytes), nil
}

// Hash derives the deterministic lookup key for a raw secret:
// SHA-256 over the UTF-8 bytes, hex-encoded.
func Hash(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

// NewPair generates a fresh secret together with its lookup key.
func NewPair() (*Pair, error) {
	raw, err := Generate(DefaultSecretLength)
	if err != nil {
		return nil, err
	}

	return &Pair{Raw: raw, Hash: Hash(raw)}, nil
}

// Verify reports whether raw hashes to storedHash.
// Constant-time comparison to prevent timing attacks.
func Verify(raw, storedHash string) (bool, error) {
	if raw == "" || storedHash == "" {
		return false, ErrEmptyToken
	}

	return subtle.ConstantTimeCompare([]byte(Hash(raw)), []byte(storedHash)) == 1, nil
}
