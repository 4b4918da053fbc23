package ai

import (
	"errors"
	"fmt"

	"github.com/kiranshivaraju/nutrieye/internal/extraction"
	"github.com/kiranshivaraju/nutrieye/internal/imagecodec"
)

var (
	ErrTransport       = errors.New("inference transport failure")
	ErrEmptyOutput     = errors.New("model produced no output")
	ErrConfiguration   = errors.New("inference backend not configured")
	ErrSchemaViolation = extraction.ErrSchemaViolation
	ErrMalformedInput  = imagecodec.ErrMalformedInput
)

// TransportError wraps a failure to complete an inference call.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("inference call failed: %v", e.Err)
}

func (e *TransportError) Unwrap() []error { return []error{ErrTransport, e.Err} }

// EmptyOutputError reports a response that carried no usable text.
type EmptyOutputError struct {
	Reason string
}

func (e *EmptyOutputError) Error() string {
	return fmt.Sprintf("model produced no output: %s", e.Reason)
}

func (e *EmptyOutputError) Unwrap() error { return ErrEmptyOutput }

// ExtractionError is the terminal failure after the attempt budget is spent.
// Its message names the kind of the last failure so callers never report a
// structuring problem as a connectivity one.
type ExtractionError struct {
	Attempts int
	Last     error
}

func (e *ExtractionError) Error() string {
	switch {
	case errors.Is(e.Last, ErrSchemaViolation):
		return fmt.Sprintf("the model's JSON did not match the extraction contract after %d attempts: %v", e.Attempts, e.Last)
	case errors.Is(e.Last, ErrEmptyOutput):
		return fmt.Sprintf("the model produced no output after %d attempts", e.Attempts)
	default:
		return fmt.Sprintf("the inference service was unreachable after %d attempts: %v", e.Attempts, e.Last)
	}
}

func (e *ExtractionError) Unwrap() error { return e.Last }

// outcome labels a failed attempt for metrics and logs.
func outcome(err error) string {
	switch {
	case errors.Is(err, ErrSchemaViolation):
		return "schema_violation"
	case errors.Is(err, ErrEmptyOutput):
		return "empty_output"
	default:
		return "transport"
	}
}
