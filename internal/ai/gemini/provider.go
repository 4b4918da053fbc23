// Package gemini implements models.Oracle over the Gemini generateContent REST API.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/kiranshivaraju/nutrieye/internal/config"
	"github.com/kiranshivaraju/nutrieye/pkg/models"
)

// ErrAPI is returned when Gemini answers with a non-2xx status.
var ErrAPI = errors.New("gemini api error")

// Provider implements models.Oracle using Gemini.
type Provider struct {
	client *resty.Client
	model  string
	url    string
}

func NewProvider(cfg config.GeminiConfig) *Provider {
	client := resty.New().
		SetHeader("x-goog-api-key", cfg.APIKey).
		SetHeader("Content-Type", "application/json")

	return &Provider{
		client: client,
		model:  cfg.Model,
		url:    fmt.Sprintf("%s/models/%s:generateContent", strings.TrimRight(cfg.BaseURL, "/"), cfg.Model),
	}
}

func (p *Provider) Name() string { return "gemini" }

type generateRequest struct {
	SystemInstruction *content         `json:"systemInstruction,omitempty"`
	Contents          []content        `json:"contents"`
	GenerationConfig  generationConfig `json:"generationConfig"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inlineData,omitempty"`
}

type inlineData struct {
	MIMEType string `json:"mimeType"`
	Data     string `json:"data"`
}

type generationConfig struct {
	Temperature      float64        `json:"temperature"`
	TopK             int            `json:"topK"`
	ResponseMIMEType string         `json:"responseMimeType"`
	ResponseSchema   map[string]any `json:"responseSchema,omitempty"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
		FinishReason string `json:"finishReason"`
	} `json:"candidates"`
	ModelVersion string `json:"modelVersion"`
	Error        *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error,omitempty"`
}

// Attempt sends one generateContent call. Images precede the prompt text in
// the user turn, in the order they were supplied.
func (p *Provider) Attempt(ctx context.Context, req models.InferenceRequest) (*models.RawResult, error) {
	parts := make([]part, 0, len(req.Images)+1)
	for _, img := range req.Images {
		parts = append(parts, part{InlineData: &inlineData{MIMEType: img.MIMEType, Data: img.Data}})
	}
	parts = append(parts, part{Text: req.Prompt})

	body := generateRequest{
		Contents: []content{{Role: "user", Parts: parts}},
		GenerationConfig: generationConfig{
			Temperature:      req.Decoding.Temperature,
			TopK:             req.Decoding.TopK,
			ResponseMIMEType: "application/json",
			ResponseSchema:   ResponseSchema(req.Schema),
		},
	}
	if req.Instruction != "" {
		body.SystemInstruction = &content{Parts: []part{{Text: req.Instruction}}}
	}

	var out generateResponse
	resp, err := p.client.R().
		SetContext(ctx).
		SetBody(body).
		SetResult(&out).
		SetError(&out).
		Post(p.url)
	if err != nil {
		return nil, fmt.Errorf("calling gemini: %w", err)
	}
	if resp.IsError() {
		if out.Error != nil {
			return nil, fmt.Errorf("%w: HTTP %d %s: %s", ErrAPI, resp.StatusCode(), out.Error.Status, out.Error.Message)
		}
		return nil, fmt.Errorf("%w: HTTP %d: %s", ErrAPI, resp.StatusCode(), resp.String())
	}

	result := &models.RawResult{Model: p.model}
	if out.ModelVersion != "" {
		result.Model = out.ModelVersion
	}
	for _, c := range out.Candidates {
		cand := models.Candidate{FinishReason: c.FinishReason}
		for _, pt := range c.Content.Parts {
			if pt.Text != "" {
				cand.Parts = append(cand.Parts, pt.Text)
			}
		}
		result.Candidates = append(result.Candidates, cand)
	}
	return result, nil
}

// unsupportedKeys are JSON Schema keywords the Gemini responseSchema rejects.
var unsupportedKeys = map[string]bool{
	"$schema":              true,
	"$id":                  true,
	"title":                true,
	"additionalProperties": true,
}

// ResponseSchema converts a JSON Schema document into the OpenAPI subset
// Gemini accepts for structured output.
func ResponseSchema(schema map[string]any) map[string]any {
	if schema == nil {
		return nil
	}
	out := make(map[string]any, len(schema))
	for k, v := range schema {
		if unsupportedKeys[k] {
			continue
		}
		switch k {
		case "type":
			if s, ok := v.(string); ok {
				out[k] = strings.ToUpper(s)
				continue
			}
			out[k] = v
		case "properties":
			props, ok := v.(map[string]any)
			if !ok {
				out[k] = v
				continue
			}
			converted := make(map[string]any, len(props))
			for name, sub := range props {
				if m, ok := sub.(map[string]any); ok {
					converted[name] = ResponseSchema(m)
				} else {
					converted[name] = sub
				}
			}
			out[k] = converted
		case "items":
			if m, ok := v.(map[string]any); ok {
				out[k] = ResponseSchema(m)
				continue
			}
			out[k] = v
		default:
			out[k] = v
		}
	}
	return out
}

var _ models.Oracle = (*Provider)(nil)
