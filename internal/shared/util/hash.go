package util

import (
	"crypto/sha256"
	"encoding/hex"
)

// SHA256Hex returns the hex-encoded SHA-256 digest of s.
func SHA256Hex(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

// ShortHash returns the first n hex characters of SHA256Hex(s), for log
// correlation where the full digest is noise.
func ShortHash(s string, n int) string {
	full := SHA256Hex(s)
	if n <= 0 || n >= len(full) {
		return full
	}
	return full[:n]
}
