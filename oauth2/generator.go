package oauth2

import (
	"crypto/rand"
	"encoding/hex"
)

// DefaultTokenLength is the length of generated opaque tokens and codes.
const DefaultTokenLength = 255

// GenerateToken produces an unpredictable hexadecimal string of the given
// length from a cryptographically secure source. Uniqueness across the token
// space is enforced by the storage layer, not here; the Engine retries on
// collision.
func GenerateToken(length int) (string, error) {
	if length <= 0 {
		length = DefaultTokenLength
	}
	buf := make([]byte, (length+1)/2)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf)[:length], nil
}
