package flow

import (
	"crypto/rand"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"crypto/subtle"
	"hash"

	"golang.org/x/crypto/pbkdf2"
)

// PBKDF2 hasher defaults. Changing any of these invalidates verification of
// hashes stored under the old parameters; no version tag is stored alongside
// the hash.
const (
	DefaultSaltBytes  = 32
	DefaultIterations = 100000
	DefaultKeyLength  = 64
)

// PBKDF2Hasher derives salted password hashes stored as salt followed by the
// derived key. The derivation is intentionally expensive.
type PBKDF2Hasher struct {
	saltBytes  int
	iterations int
	keyLength  int
	digest     func() hash.Hash
}

// NewPBKDF2Hasher builds a hasher with the given parameters. Zero values fall
// back to the defaults; unknown digest names fall back to sha512.
func NewPBKDF2Hasher(saltBytes, iterations, keyLength int, digest string) *PBKDF2Hasher {
	h := &PBKDF2Hasher{
		saltBytes:  saltBytes,
		iterations: iterations,
		keyLength:  keyLength,
	}
	if h.saltBytes <= 0 {
		h.saltBytes = DefaultSaltBytes
	}
	if h.iterations <= 0 {
		h.iterations = DefaultIterations
	}
	if h.keyLength <= 0 {
		h.keyLength = DefaultKeyLength
	}
	switch digest {
	case "sha1":
		h.digest = sha1.New
	case "sha256":
		h.digest = sha256.New
	default:
		h.digest = sha512.New
	}
	return h
}

// Hash generates a fresh random salt and derives the stored value.
func (h *PBKDF2Hasher) Hash(password string) ([]byte, error) {
	salt := make([]byte, h.saltBytes)
	if _, err := rand.Read(salt); err != nil {
		return nil, err
	}
	key := pbkdf2.Key([]byte(password), salt, h.iterations, h.keyLength, h.digest)
	return append(salt, key...), nil
}

// Compare recomputes the derived key from the stored salt and compares in
// constant time. Malformed stored values compare false, never panic.
func (h *PBKDF2Hasher) Compare(password string, stored []byte) bool {
	if len(stored) != h.saltBytes+h.keyLength {
		return false
	}
	salt, expected := stored[:h.saltBytes], stored[h.saltBytes:]
	key := pbkdf2.Key([]byte(password), salt, h.iterations, h.keyLength, h.digest)
	return subtle.ConstantTimeCompare(key, expected) == 1
}
