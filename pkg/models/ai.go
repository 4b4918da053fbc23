// Package models contains shared data models used across the NutriEye codebase.
package models

import (
	"context"
	"strings"
)

// Oracle is the capability every inference backend must implement.
// Never call a specific backend directly; always inject this interface.
type Oracle interface {
	// Attempt issues exactly one inference call. A returned error means the
	// call itself could not be completed; a nil error with an unusable result
	// is left for the caller to classify.
	Attempt(ctx context.Context, req InferenceRequest) (*RawResult, error)
	// Name returns the backend identifier (e.g., "gemini", "openai").
	Name() string
}

// ImagePart is one encoded image attached to an inference request.
// Data holds the base64 payload exactly as it appeared after the data URL comma.
type ImagePart struct {
	Data     string `json:"data"`
	MIMEType string `json:"mime_type"`
}

// DecodingParams pins sampling so repeated calls over the same label converge.
type DecodingParams struct {
	Temperature float64
	TopK        int
}

// InferenceRequest is the fixed request shape sent to an Oracle.
type InferenceRequest struct {
	Instruction string
	Prompt      string
	Images      []ImagePart
	Schema      map[string]any
	Decoding    DecodingParams
}

// Candidate is one output alternative produced by the model.
type Candidate struct {
	Parts        []string
	FinishReason string
}

// RawResult is the unvalidated response of a single inference call.
type RawResult struct {
	Candidates []Candidate
	Model      string
}

// Text concatenates the content parts of the first candidate.
func (r *RawResult) Text() string {
	if r == nil || len(r.Candidates) == 0 {
		return ""
	}
	return strings.Join(r.Candidates[0].Parts, "")
}
