// Package imagecodec converts captured label images, delivered as data URLs,
// into the attachment format sent with an inference request.
package imagecodec

import (
	"errors"
	"fmt"
	"strings"

	"github.com/kiranshivaraju/nutrieye/pkg/models"
)

// MaxImages is the largest image set accepted for one analysis.
const MaxImages = 2

// DefaultMIMEType is used when a data URL prefix carries no usable media type.
const DefaultMIMEType = "image/jpeg"

// ErrMalformedInput is the sentinel wrapped by every MalformedInputError.
var ErrMalformedInput = errors.New("malformed image input")

// MalformedInputError identifies the offending entry of an image set.
// Index is -1 when the set as a whole is invalid.
type MalformedInputError struct {
	Index  int
	Reason string
}

func (e *MalformedInputError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("malformed image input: %s", e.Reason)
	}
	return fmt.Sprintf("malformed image input at index %d: %s", e.Index, e.Reason)
}

func (e *MalformedInputError) Unwrap() error { return ErrMalformedInput }

// Encode splits each data URL at its first comma and returns the payloads in order.
// It fails on the first malformed entry without inspecting the rest.
func Encode(dataURLs []string) ([]models.ImagePart, error) {
	if len(dataURLs) == 0 {
		return nil, &MalformedInputError{Index: -1, Reason: "at least one image is required"}
	}
	if len(dataURLs) > MaxImages {
		return nil, &MalformedInputError{
			Index:  -1,
			Reason: fmt.Sprintf("at most %d images are accepted, got %d", MaxImages, len(dataURLs)),
		}
	}

	parts := make([]models.ImagePart, 0, len(dataURLs))
	for i, u := range dataURLs {
		prefix, payload, ok := strings.Cut(u, ",")
		if !ok {
			return nil, &MalformedInputError{Index: i, Reason: "missing comma between data URL header and payload"}
		}
		parts = append(parts, models.ImagePart{
			Data:     payload,
			MIMEType: mimeType(prefix),
		})
	}
	return parts, nil
}

// mimeType extracts "image/png" from "data:image/png;base64".
func mimeType(prefix string) string {
	rest, ok := strings.CutPrefix(prefix, "data:")
	if !ok {
		return DefaultMIMEType
	}
	mt, _, _ := strings.Cut(rest, ";")
	mt = strings.TrimSpace(strings.ToLower(mt))
	if !strings.HasPrefix(mt, "image/") || len(mt) == len("image/") {
		return DefaultMIMEType
	}
	return mt
}
