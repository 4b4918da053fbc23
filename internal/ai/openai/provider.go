// Package openai implements models.Oracle over the OpenAI chat completions API.
// The same provider serves OpenAI-compatible servers such as Ollama and vLLM.
package openai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/kiranshivaraju/nutrieye/internal/config"
	"github.com/kiranshivaraju/nutrieye/pkg/models"
)

// ErrAPI is returned when the server answers with a non-2xx status.
var ErrAPI = errors.New("openai api error")

// schemaName is the response_format schema identifier.
const schemaName = "nutritional_analysis"

// Provider implements models.Oracle using an OpenAI-compatible endpoint.
type Provider struct {
	client   *resty.Client
	name     string
	model    string
	endpoint string
	sendTopK bool
}

// NewProvider returns a Provider for the hosted OpenAI API.
func NewProvider(cfg config.OpenAIConfig) *Provider {
	return newProvider("openai", cfg.APIKey, cfg.Model, cfg.BaseURL, false)
}

// NewCompatible returns a Provider for a self-hosted OpenAI-compatible server.
// These servers accept top_k, so it is forwarded.
func NewCompatible(name, baseURL, model string) *Provider {
	return newProvider(name, "", model, baseURL, true)
}

func newProvider(name, apiKey, model, baseURL string, sendTopK bool) *Provider {
	client := resty.New().SetHeader("Content-Type", "application/json")
	if apiKey != "" {
		client.SetHeader("Authorization", "Bearer "+apiKey)
	}
	return &Provider{
		client:   client,
		name:     name,
		model:    model,
		endpoint: strings.TrimRight(baseURL, "/") + "/chat/completions",
		sendTopK: sendTopK,
	}
}

func (p *Provider) Name() string { return p.name }

type chatRequest struct {
	Model          string         `json:"model"`
	Messages       []chatMessage  `json:"messages"`
	Temperature    float64        `json:"temperature"`
	TopK           *int           `json:"top_k,omitempty"`
	ResponseFormat responseFormat `json:"response_format"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

type textContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type imageContent struct {
	Type     string   `json:"type"`
	ImageURL imageURL `json:"image_url"`
}

type imageURL struct {
	URL    string `json:"url"`
	Detail string `json:"detail,omitempty"`
}

type responseFormat struct {
	Type       string      `json:"type"`
	JSONSchema *jsonSchema `json:"json_schema,omitempty"`
}

type jsonSchema struct {
	Name   string         `json:"name"`
	Schema map[string]any `json:"schema"`
	Strict bool           `json:"strict"`
}

type chatResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// Attempt sends one chat completion. Images are sent as data URLs ahead of
// the prompt text.
func (p *Provider) Attempt(ctx context.Context, req models.InferenceRequest) (*models.RawResult, error) {
	user := make([]any, 0, len(req.Images)+1)
	for _, img := range req.Images {
		user = append(user, imageContent{
			Type:     "image_url",
			ImageURL: imageURL{URL: fmt.Sprintf("data:%s;base64,%s", img.MIMEType, img.Data), Detail: "high"},
		})
	}
	user = append(user, textContent{Type: "text", Text: req.Prompt})

	body := chatRequest{
		Model: p.model,
		Messages: []chatMessage{
			{Role: "system", Content: req.Instruction},
			{Role: "user", Content: user},
		},
		Temperature:    req.Decoding.Temperature,
		ResponseFormat: responseFormat{Type: "json_object"},
	}
	if req.Schema != nil {
		body.ResponseFormat = responseFormat{
			Type:       "json_schema",
			JSONSchema: &jsonSchema{Name: schemaName, Schema: req.Schema},
		}
	}
	if p.sendTopK {
		topK := req.Decoding.TopK
		body.TopK = &topK
	}

	var out chatResponse
	resp, err := p.client.R().
		SetContext(ctx).
		SetBody(body).
		SetResult(&out).
		SetError(&out).
		Post(p.endpoint)
	if err != nil {
		return nil, fmt.Errorf("calling %s: %w", p.name, err)
	}
	if resp.IsError() {
		if out.Error != nil {
			return nil, fmt.Errorf("%w: %s HTTP %d: %s", ErrAPI, p.name, resp.StatusCode(), out.Error.Message)
		}
		return nil, fmt.Errorf("%w: %s HTTP %d: %s", ErrAPI, p.name, resp.StatusCode(), resp.String())
	}

	result := &models.RawResult{Model: p.model}
	if out.Model != "" {
		result.Model = out.Model
	}
	for _, c := range out.Choices {
		cand := models.Candidate{FinishReason: c.FinishReason}
		if c.Message.Content != "" {
			cand.Parts = []string{c.Message.Content}
		}
		result.Candidates = append(result.Candidates, cand)
	}
	return result, nil
}

var _ models.Oracle = (*Provider)(nil)
