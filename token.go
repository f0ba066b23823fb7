package account

import (
	"crypto/subtle"
	"strings"

	"github.com/google/uuid"
)

// TokenGenerator produces opaque tokens for reset links and
// confirmation keys
type TokenGenerator func() string

// DefaultTokenGenerator returns a random 32 character hex token
func DefaultTokenGenerator() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// tokensEqual compares tokens in constant time. Empty values never match.
func tokensEqual(stored, given string) bool {
	if stored == "" || given == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(stored), []byte(given)) == 1
}
