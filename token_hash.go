package claritycash

import (
	"crypto/sha256"
	"encoding/hex"
)

// HashToken returns the hex encoded SHA-256 digest of a token value.
// Log the hash, never the token itself: link tokens, public tokens and
// access tokens are all secrets, but their hashes are safe correlation IDs.
func HashToken(token string) string {
	hasher := sha256.New()
	hasher.Write([]byte(token))
	hashedBytes := hasher.Sum(nil)
	return hex.EncodeToString(hashedBytes)
}
