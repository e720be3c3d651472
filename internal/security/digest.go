package security

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
)

// Digest returns the SHA-256 hash of s, hex-encoded. Used for the integrity
// signature stored next to each encrypted security answer and for the email
// lookup column.
func Digest(s string) string {
	h := sha256.Sum256([]byte(s))
	return hex.EncodeToString(h[:])
}

// DigestEqual performs constant-time comparison of s's digest with a stored
// digest. Returns true only if they match.
func DigestEqual(s, storedDigest string) bool {
	return subtle.ConstantTimeCompare([]byte(Digest(s)), []byte(storedDigest)) == 1
}
