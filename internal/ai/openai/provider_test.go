package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kiranshivaraju/nutrieye/internal/config"
	"github.com/kiranshivaraju/nutrieye/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chatServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)
	return ts
}

func testRequest() models.InferenceRequest {
	return models.InferenceRequest{
		Instruction: "system text",
		Prompt:      "analyze",
		Images:      []models.ImagePart{{Data: "AAAA", MIMEType: "image/png"}},
		Schema:      map[string]any{"type": "object"},
		Decoding:    models.DecodingParams{Temperature: 0, TopK: 1},
	}
}

func okHandler(t *testing.T, got *map[string]any) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		if got != nil {
			require.NoError(t, json.NewDecoder(r.Body).Decode(got))
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"model":"gpt-4o-mini-2024","choices":[{"message":{"content":"{\"ok\":true}"},"finish_reason":"stop"}]}`))
	}
}

func TestAttempt_OpenAIRequestShape(t *testing.T) {
	var got map[string]any
	var auth string
	ts := chatServer(t, func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		okHandler(t, &got)(w, r)
	})

	p := NewProvider(config.OpenAIConfig{APIKey: "sk-test", Model: "gpt-4o-mini", BaseURL: ts.URL + "/v1/"})
	res, err := p.Attempt(context.Background(), testRequest())
	require.NoError(t, err)

	assert.Equal(t, "Bearer sk-test", auth)
	assert.Equal(t, "gpt-4o-mini", got["model"])
	assert.Equal(t, float64(0), got["temperature"])
	assert.NotContains(t, got, "top_k")

	msgs := got["messages"].([]any)
	require.Len(t, msgs, 2)
	assert.Equal(t, "system text", msgs[0].(map[string]any)["content"])
	user := msgs[1].(map[string]any)["content"].([]any)
	require.Len(t, user, 2)
	img := user[0].(map[string]any)["image_url"].(map[string]any)
	assert.Equal(t, "data:image/png;base64,AAAA", img["url"])
	assert.Equal(t, "analyze", user[1].(map[string]any)["text"])

	format := got["response_format"].(map[string]any)
	assert.Equal(t, "json_schema", format["type"])
	assert.Equal(t, "nutritional_analysis", format["json_schema"].(map[string]any)["name"])

	assert.Equal(t, `{"ok":true}`, res.Text())
	assert.Equal(t, "stop", res.Candidates[0].FinishReason)
	assert.Equal(t, "gpt-4o-mini-2024", res.Model)
}

func TestAttempt_CompatibleSendsTopKWithoutAuth(t *testing.T) {
	var got map[string]any
	var auth string
	ts := chatServer(t, func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		okHandler(t, &got)(w, r)
	})

	p := NewCompatible("ollama", ts.URL+"/v1", "llava")
	_, err := p.Attempt(context.Background(), testRequest())
	require.NoError(t, err)

	assert.Empty(t, auth)
	assert.Equal(t, float64(1), got["top_k"])
	assert.Equal(t, "ollama", p.Name())
}

func TestAttempt_NoChoices(t *testing.T) {
	ts := chatServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[]}`))
	})

	res, err := NewCompatible("vllm", ts.URL, "m").Attempt(context.Background(), testRequest())
	require.NoError(t, err)
	assert.Empty(t, res.Candidates)
	assert.Equal(t, "m", res.Model)
}

func TestAttempt_EmptyContent(t *testing.T) {
	ts := chatServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":""},"finish_reason":"length"}]}`))
	})

	res, err := NewCompatible("vllm", ts.URL, "m").Attempt(context.Background(), testRequest())
	require.NoError(t, err)
	require.Len(t, res.Candidates, 1)
	assert.Empty(t, res.Candidates[0].Parts)
	assert.Equal(t, "length", res.Candidates[0].FinishReason)
}

func TestAttempt_HTTPError(t *testing.T) {
	ts := chatServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"Rate limit reached","type":"requests"}}`))
	})

	_, err := NewProvider(config.OpenAIConfig{APIKey: "k", Model: "m", BaseURL: ts.URL}).Attempt(context.Background(), testRequest())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrAPI))
	assert.Contains(t, err.Error(), "429")
	assert.Contains(t, err.Error(), "Rate limit reached")
}

func TestAttempt_Unreachable(t *testing.T) {
	ts := chatServer(t, func(w http.ResponseWriter, r *http.Request) {})
	url := ts.URL
	ts.Close()

	_, err := NewCompatible("ollama", url, "llava").Attempt(context.Background(), testRequest())
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrAPI))
}
