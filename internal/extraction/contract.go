// Package extraction holds the fixed request/response contract between the
// pipeline and the inference backend: instruction text, response schema and
// the decoder that turns model output into a typed analysis.
package extraction

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/kiranshivaraju/nutrieye/pkg/models"
	"github.com/xeipuuv/gojsonschema"
)

//go:embed schema.json
var schemaJSON []byte

// ErrSchemaViolation is the sentinel wrapped by every SchemaViolationError.
var ErrSchemaViolation = errors.New("model output violates extraction schema")

// SchemaViolationError lists why a model response failed the contract.
type SchemaViolationError struct {
	Findings []string
}

func (e *SchemaViolationError) Error() string {
	return fmt.Sprintf("model output violates extraction schema: %s", strings.Join(e.Findings, "; "))
}

func (e *SchemaViolationError) Unwrap() error { return ErrSchemaViolation }

// Contract validates and decodes model output. Safe for concurrent use.
type Contract struct {
	schema *gojsonschema.Schema
}

// NewContract compiles the embedded response schema.
func NewContract() (*Contract, error) {
	s, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(schemaJSON))
	if err != nil {
		return nil, fmt.Errorf("compiling extraction schema: %w", err)
	}
	return &Contract{schema: s}, nil
}

// Schema returns a fresh copy of the response schema as a generic map.
func (c *Contract) Schema() map[string]any {
	var m map[string]any
	// schemaJSON is compiled in NewContract, so it is known to be valid JSON.
	_ = json.Unmarshal(schemaJSON, &m)
	return m
}

// Request builds the inference request for a set of encoded images.
func (c *Contract) Request(images []models.ImagePart) models.InferenceRequest {
	return models.InferenceRequest{
		Instruction: InstructionText,
		Prompt:      UserPrompt,
		Images:      images,
		Schema:      c.Schema(),
		Decoding:    models.DecodingParams{Temperature: 0, TopK: 1},
	}
}

// Decode validates text against the schema and only then decodes it.
func (c *Contract) Decode(text string) (*models.NutritionalAnalysis, error) {
	body := stripCodeFence(text)

	result, err := c.schema.Validate(gojsonschema.NewStringLoader(body))
	if err != nil {
		return nil, &SchemaViolationError{Findings: []string{fmt.Sprintf("not valid JSON: %v", err)}}
	}
	if !result.Valid() {
		findings := make([]string, len(result.Errors()))
		for i, desc := range result.Errors() {
			findings[i] = desc.String()
		}
		return nil, &SchemaViolationError{Findings: findings}
	}

	var doc models.NutritionalAnalysis
	if err := json.Unmarshal([]byte(body), &doc); err != nil {
		return nil, &SchemaViolationError{Findings: []string{fmt.Sprintf("decoding: %v", err)}}
	}
	// Derived fields are always recomputed locally.
	doc.ConsumptionGuide = nil
	doc.CuratedReplacement = nil
	return &doc, nil
}

// stripCodeFence removes a surrounding markdown code fence, which some
// OpenAI-compatible backends add even when asked for bare JSON.
func stripCodeFence(text string) string {
	s := strings.TrimSpace(text)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	} else {
		s = strings.TrimPrefix(s, "json")
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// ExpectedSodiumClassification maps sodium per 100g to its regulatory band
// for solid foods.
func ExpectedSodiumClassification(mg float64) string {
	switch {
	case mg <= 40:
		return "muito baixo"
	case mg <= 120:
		return "baixo"
	case mg <= 400:
		return "moderado"
	default:
		return "alto"
	}
}
