// Package analysis inspects label images and extracted documents: it
// fingerprints image sets and flags internally inconsistent analyses.
package analysis

import (
	"crypto/sha256"
	"fmt"
	"regexp"

	"github.com/kiranshivaraju/nutrieye/pkg/models"
)

var reWhitespace = regexp.MustCompile(`\s+`)

// Fingerprint computes a stable SHA-256 fingerprint for an ordered image set.
// Whitespace inside the base64 payload does not affect the result.
func Fingerprint(parts []models.ImagePart) string {
	h := sha256.New()
	for _, p := range parts {
		h.Write([]byte(p.MIMEType))
		h.Write([]byte{0})
		h.Write([]byte(NormalizePayload(p.Data)))
		h.Write([]byte{0})
	}
	return fmt.Sprintf("%x", h.Sum(nil))
}

// NormalizePayload strips whitespace that line-wrapped base64 may carry.
func NormalizePayload(data string) string {
	return reWhitespace.ReplaceAllString(data, "")
}
