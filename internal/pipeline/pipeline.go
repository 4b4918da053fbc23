// Package pipeline composes extraction, guidance and curation into the single
// call that turns label photos into an enriched analysis.
package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/kiranshivaraju/nutrieye/internal/ai"
	"github.com/kiranshivaraju/nutrieye/internal/analysis"
	"github.com/kiranshivaraju/nutrieye/internal/curator"
	"github.com/kiranshivaraju/nutrieye/internal/guidance"
	"github.com/kiranshivaraju/nutrieye/internal/imagecodec"
	"github.com/kiranshivaraju/nutrieye/internal/metrics"
	"github.com/kiranshivaraju/nutrieye/pkg/models"
)

// postProcessTimeout bounds archiving and recording, which outlive a
// disconnected client.
const postProcessTimeout = 10 * time.Second

// Recorder persists completed analyses.
type Recorder interface {
	SaveAnalysis(ctx context.Context, rec *models.AnalysisRecord) error
}

// Archiver stores the label images of an analysis and returns their keys.
type Archiver interface {
	Archive(ctx context.Context, id uuid.UUID, parts []models.ImagePart) ([]string, error)
}

// Result is one enriched analysis and its identifier.
type Result struct {
	ID       uuid.UUID
	Analysis *models.NutritionalAnalysis
	Attempts int
}

// Pipeline runs one analysis per call. Safe for concurrent use.
type Pipeline struct {
	extractor *ai.Extractor
	curator   *curator.Curator
	recorder  Recorder
	archiver  Archiver
	now       func() time.Time
}

// Option customizes a Pipeline.
type Option func(*Pipeline)

// WithRecorder enables analysis history.
func WithRecorder(r Recorder) Option {
	return func(p *Pipeline) { p.recorder = r }
}

// WithArchiver enables label image archiving.
func WithArchiver(a Archiver) Option {
	return func(p *Pipeline) { p.archiver = a }
}

func New(extractor *ai.Extractor, cur *curator.Curator, opts ...Option) *Pipeline {
	p := &Pipeline{
		extractor: extractor,
		curator:   cur,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Analyze encodes the images, extracts a validated document and enriches it
// with consumption guidance and a curated replacement. Either a complete
// document or a single terminal error is returned.
func (p *Pipeline) Analyze(ctx context.Context, images []string) (*Result, error) {
	parts, err := imagecodec.Encode(images)
	if err != nil {
		return nil, err
	}

	ext, err := p.extractor.ExtractParts(ctx, parts)
	if err != nil {
		return nil, err
	}
	doc := ext.Analysis

	if findings := analysis.Inspect(doc); len(findings) > 0 {
		if analysis.SodiumMismatch(findings) {
			metrics.SodiumClassificationMismatch.Inc()
		}
		for _, f := range findings {
			slog.WarnContext(ctx, "inconsistent analysis field",
				"product", doc.ProductName,
				"finding", f.String(),
			)
		}
	}

	if worst := analysis.MostSevere(doc.DeepDive); worst != "" {
		metrics.WorstAdditiveLevel.WithLabelValues(string(worst)).Inc()
		if worst.Rank() >= models.WarningHigh.Rank() {
			slog.InfoContext(ctx, "high-risk additive found",
				"product", doc.ProductName,
				"warning_level", string(worst),
			)
		}
	}

	guide := guidance.Build(guidance.FromAnalysis(doc))
	doc.ConsumptionGuide = &guide
	doc.CuratedReplacement = p.curator.Select(doc.ProductClassification)

	res := &Result{ID: uuid.New(), Analysis: doc, Attempts: ext.Attempts}
	p.postProcess(ctx, res, ext, parts)
	return res, nil
}

// postProcess archives and records the analysis. Failures are logged only.
func (p *Pipeline) postProcess(ctx context.Context, res *Result, ext *ai.Extraction, parts []models.ImagePart) {
	if p.archiver == nil && p.recorder == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), postProcessTimeout)
	defer cancel()

	var keys []string
	if p.archiver != nil {
		var err error
		keys, err = p.archiver.Archive(ctx, res.ID, parts)
		if err != nil {
			slog.ErrorContext(ctx, "archiving label images failed", "analysis_id", res.ID, "error", err)
		}
	}

	if p.recorder == nil {
		return
	}
	rec := &models.AnalysisRecord{
		ID:          res.ID,
		Fingerprint: analysis.Fingerprint(parts),
		ImageCount:  len(parts),
		ImageKeys:   keys,
		Provider:    ext.Provider,
		Model:       ext.Model,
		ProductName: res.Analysis.ProductName,
		Category:    res.Analysis.ProductClassification.Category,
		Confidence:  res.Analysis.ProductClassification.Confidence,
		Score:       res.Analysis.Score,
		Attempts:    ext.Attempts,
		Analysis:    res.Analysis,
		CreatedAt:   p.now().UTC(),
	}
	if err := p.recorder.SaveAnalysis(ctx, rec); err != nil {
		slog.ErrorContext(ctx, "recording analysis failed", "analysis_id", res.ID, "error", err)
	}
}

const (
	msgStructuring = "A IA não conseguiu estruturar a análise do rótulo. Tente novamente com fotos mais nítidas."
	msgGeneric     = "Ocorreu um erro ao analisar o rótulo. Verifique sua conexão ou tente novamente com fotos mais nítidas."
)

// UserFacingMessage returns the Portuguese message shown to end users for a
// failed analysis.
func UserFacingMessage(err error) string {
	if errors.Is(err, ai.ErrSchemaViolation) {
		return msgStructuring
	}
	return msgGeneric
}
