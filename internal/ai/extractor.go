package ai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/kiranshivaraju/nutrieye/internal/extraction"
	"github.com/kiranshivaraju/nutrieye/internal/imagecodec"
	"github.com/kiranshivaraju/nutrieye/internal/metrics"
	"github.com/kiranshivaraju/nutrieye/pkg/models"
)

const (
	// MaxAttempts bounds the inference calls made for one extraction.
	MaxAttempts = 3

	baseBackoff = time.Second
	maxJitter   = 500 * time.Millisecond
)

// Extraction is a successful extraction plus the metadata needed to record it.
type Extraction struct {
	Analysis *models.NutritionalAnalysis
	Attempts int
	Provider string
	Model    string
}

// Extractor drives an Oracle until it returns a document satisfying the
// extraction contract or the attempt budget runs out.
type Extractor struct {
	oracle   models.Oracle
	contract *extraction.Contract
	timeout  time.Duration
	sleep    func(ctx context.Context, d time.Duration) error
	jitter   func() time.Duration
}

// Option customizes an Extractor.
type Option func(*Extractor)

// WithSleeper replaces the backoff sleep.
func WithSleeper(fn func(ctx context.Context, d time.Duration) error) Option {
	return func(e *Extractor) { e.sleep = fn }
}

// WithJitter replaces the backoff jitter source. fn must return a value in [0, 500ms).
func WithJitter(fn func() time.Duration) Option {
	return func(e *Extractor) { e.jitter = fn }
}

// NewExtractor creates an Extractor. A zero timeout disables the per-attempt deadline.
func NewExtractor(oracle models.Oracle, contract *extraction.Contract, timeout time.Duration, opts ...Option) *Extractor {
	e := &Extractor{
		oracle:   oracle,
		contract: contract,
		timeout:  timeout,
		sleep:    sleepContext,
		jitter:   randomJitter,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ProviderName returns the name of the underlying oracle.
func (e *Extractor) ProviderName() string { return e.oracle.Name() }

// Extract encodes data-URL images and extracts a validated analysis from them.
func (e *Extractor) Extract(ctx context.Context, images []string) (*models.NutritionalAnalysis, error) {
	parts, err := imagecodec.Encode(images)
	if err != nil {
		return nil, err
	}
	res, err := e.ExtractParts(ctx, parts)
	if err != nil {
		return nil, err
	}
	return res.Analysis, nil
}

// ExtractParts runs up to MaxAttempts sequential attempts with exponential
// backoff between them. Only the terminal outcome is returned.
func (e *Extractor) ExtractParts(ctx context.Context, parts []models.ImagePart) (*Extraction, error) {
	provider := e.oracle.Name()
	req := e.contract.Request(parts)
	start := time.Now()

	var last error
	for attempt := 1; attempt <= MaxAttempts; attempt++ {
		doc, model, err := e.attempt(ctx, req)
		if err == nil {
			metrics.ExtractionAttempts.WithLabelValues(provider, "success").Inc()
			metrics.ExtractionDuration.WithLabelValues(provider, "success").Observe(time.Since(start).Seconds())
			return &Extraction{Analysis: doc, Attempts: attempt, Provider: provider, Model: model}, nil
		}
		if errors.Is(err, ErrConfiguration) {
			metrics.ExtractionAttempts.WithLabelValues(provider, "configuration").Inc()
			return nil, err
		}

		last = err
		metrics.ExtractionAttempts.WithLabelValues(provider, outcome(err)).Inc()
		slog.WarnContext(ctx, "extraction attempt failed",
			"provider", provider,
			"attempt", attempt,
			"outcome", outcome(err),
			"error", err,
		)

		if attempt == MaxAttempts {
			break
		}
		if err := e.sleep(ctx, Backoff(attempt, e.jitter())); err != nil {
			metrics.ExtractionDuration.WithLabelValues(provider, "cancelled").Observe(time.Since(start).Seconds())
			return nil, fmt.Errorf("extraction cancelled after attempt %d: %w", attempt, err)
		}
	}

	metrics.ExtractionDuration.WithLabelValues(provider, "failure").Observe(time.Since(start).Seconds())
	return nil, &ExtractionError{Attempts: MaxAttempts, Last: last}
}

// attempt performs one inference call and validates its result in order:
// response present, candidates present, first candidate has content,
// trimmed text non-empty, text satisfies the schema.
func (e *Extractor) attempt(ctx context.Context, req models.InferenceRequest) (*models.NutritionalAnalysis, string, error) {
	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	raw, err := e.oracle.Attempt(ctx, req)
	if err != nil {
		if errors.Is(err, ErrConfiguration) {
			return nil, "", err
		}
		return nil, "", &TransportError{Err: err}
	}

	switch {
	case raw == nil:
		return nil, "", &EmptyOutputError{Reason: "no response"}
	case len(raw.Candidates) == 0:
		return nil, "", &EmptyOutputError{Reason: "no candidates"}
	case len(raw.Candidates[0].Parts) == 0:
		reason := "first candidate has no content"
		if fr := raw.Candidates[0].FinishReason; fr != "" {
			reason += " (finish reason " + fr + ")"
		}
		return nil, "", &EmptyOutputError{Reason: reason}
	}

	text := strings.TrimSpace(raw.Text())
	if text == "" {
		return nil, "", &EmptyOutputError{Reason: "blank text"}
	}

	doc, err := e.contract.Decode(text)
	if err != nil {
		return nil, "", err
	}
	return doc, raw.Model, nil
}

// Backoff returns the delay before the attempt following attempt n:
// 2^(n-1) seconds plus jitter.
func Backoff(n int, jitter time.Duration) time.Duration {
	return time.Duration(1<<(n-1))*baseBackoff + jitter
}

func randomJitter() time.Duration {
	return time.Duration(rand.Int64N(int64(maxJitter)))
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
