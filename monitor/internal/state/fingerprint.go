package state

import (
	"crypto/sha256"
	"fmt"
)

// Fingerprint returns the SHA-256 hex digest of the content's UTF-8 bytes.
// Identical normalized content always yields an identical fingerprint, and
// for practical purposes fingerprint equality implies content equality.
func Fingerprint(content string) string {
	h := sha256.Sum256([]byte(content))
	return fmt.Sprintf("%x", h)
}
