package hasher

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/satriahrh/cocoa-fruit/playground/domain"
)

// New returns a domain.Hasher backed by SHA‑256.
func New() domain.Hasher { return sha256Hasher{} }

type sha256Hasher struct{}

func (h sha256Hasher) Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Fingerprint hashes parts separated by NUL so that ("ab", "c") and
// ("a", "bc") differ, and keeps the first n hex characters.
func Fingerprint(h domain.Hasher, n int, parts ...string) string {
	sum := h.Hash([]byte(strings.Join(parts, "\x00")))
	if n > 0 && n < len(sum) {
		return sum[:n]
	}
	return sum
}
