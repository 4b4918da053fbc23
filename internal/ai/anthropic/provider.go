// Package anthropic implements models.Oracle over the Anthropic Messages API.
package anthropic

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/kiranshivaraju/nutrieye/internal/config"
	"github.com/kiranshivaraju/nutrieye/pkg/models"
)

// ErrAPI is returned when Anthropic answers with a non-2xx status.
var ErrAPI = errors.New("anthropic api error")

const (
	apiVersion = "2023-06-01"
	maxTokens  = 8192
)

// Provider implements models.Oracle using Anthropic.
type Provider struct {
	client   *resty.Client
	model    string
	endpoint string
}

func NewProvider(cfg config.AnthropicConfig) *Provider {
	client := resty.New().
		SetHeader("x-api-key", cfg.APIKey).
		SetHeader("anthropic-version", apiVersion).
		SetHeader("Content-Type", "application/json")

	return &Provider{
		client:   client,
		model:    cfg.Model,
		endpoint: strings.TrimRight(cfg.BaseURL, "/") + "/v1/messages",
	}
}

func (p *Provider) Name() string { return "anthropic" }

type messagesRequest struct {
	Model       string    `json:"model"`
	MaxTokens   int       `json:"max_tokens"`
	System      string    `json:"system,omitempty"`
	Temperature float64   `json:"temperature"`
	TopK        int       `json:"top_k,omitempty"`
	Messages    []message `json:"messages"`
}

type message struct {
	Role    string  `json:"role"`
	Content []block `json:"content"`
}

type block struct {
	Type   string       `json:"type"`
	Text   string       `json:"text,omitempty"`
	Source *imageSource `json:"source,omitempty"`
}

type imageSource struct {
	Type      string `json:"type"`
	MediaType string `json:"media_type"`
	Data      string `json:"data"`
}

type messagesResponse struct {
	Model   string `json:"model"`
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
	Error      *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Attempt sends one Messages call. The Messages API has no structured output
// mode, so the schema travels in the user turn after the prompt.
func (p *Provider) Attempt(ctx context.Context, req models.InferenceRequest) (*models.RawResult, error) {
	blocks := make([]block, 0, len(req.Images)+1)
	for _, img := range req.Images {
		blocks = append(blocks, block{
			Type:   "image",
			Source: &imageSource{Type: "base64", MediaType: img.MIMEType, Data: img.Data},
		})
	}
	prompt := req.Prompt
	if req.Schema != nil {
		schema, err := json.Marshal(req.Schema)
		if err != nil {
			return nil, fmt.Errorf("encoding response schema: %w", err)
		}
		prompt += "\n\nResponda somente com um objeto JSON que siga este JSON Schema:\n" + string(schema)
	}
	blocks = append(blocks, block{Type: "text", Text: prompt})

	body := messagesRequest{
		Model:       p.model,
		MaxTokens:   maxTokens,
		System:      req.Instruction,
		Temperature: req.Decoding.Temperature,
		TopK:        req.Decoding.TopK,
		Messages:    []message{{Role: "user", Content: blocks}},
	}

	var out messagesResponse
	resp, err := p.client.R().
		SetContext(ctx).
		SetBody(body).
		SetResult(&out).
		SetError(&out).
		Post(p.endpoint)
	if err != nil {
		return nil, fmt.Errorf("calling anthropic: %w", err)
	}
	if resp.IsError() {
		if out.Error != nil {
			return nil, fmt.Errorf("%w: HTTP %d %s: %s", ErrAPI, resp.StatusCode(), out.Error.Type, out.Error.Message)
		}
		return nil, fmt.Errorf("%w: HTTP %d: %s", ErrAPI, resp.StatusCode(), resp.String())
	}

	result := &models.RawResult{Model: p.model}
	if out.Model != "" {
		result.Model = out.Model
	}
	if out.Content == nil && out.StopReason == "" {
		return result, nil
	}
	cand := models.Candidate{FinishReason: out.StopReason}
	for _, c := range out.Content {
		if c.Type == "text" && c.Text != "" {
			cand.Parts = append(cand.Parts, c.Text)
		}
	}
	result.Candidates = []models.Candidate{cand}
	return result, nil
}

var _ models.Oracle = (*Provider)(nil)
