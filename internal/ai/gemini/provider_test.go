package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/kiranshivaraju/nutrieye/internal/config"
	"github.com/kiranshivaraju/nutrieye/internal/extraction"
	"github.com/kiranshivaraju/nutrieye/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- helpers ---

func geminiServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)
	return ts
}

func newTestProvider(baseURL string) *Provider {
	return NewProvider(config.GeminiConfig{APIKey: "test-key", Model: "gemini-test", BaseURL: baseURL})
}

func testRequest() models.InferenceRequest {
	return models.InferenceRequest{
		Instruction: "system text",
		Prompt:      "analyze",
		Images: []models.ImagePart{
			{Data: "AAAA", MIMEType: "image/png"},
			{Data: "BBBB", MIMEType: "image/jpeg"},
		},
		Schema: map[string]any{
			"$schema":              "http://json-schema.org/draft-07/schema#",
			"type":                 "object",
			"additionalProperties": false,
			"properties": map[string]any{
				"score": map[string]any{"type": "number"},
				"tags":  map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
			},
			"required": []any{"score"},
		},
		Decoding: models.DecodingParams{Temperature: 0, TopK: 1},
	}
}

// --- Attempt tests ---

func TestAttempt_SendsRequestShape(t *testing.T) {
	var got map[string]any
	ts := geminiServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/models/gemini-test:generateContent", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "test-key", r.Header.Get("x-goog-api-key"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"{}"}]},"finishReason":"STOP"}]}`))
	})

	_, err := newTestProvider(ts.URL).Attempt(context.Background(), testRequest())
	require.NoError(t, err)

	system := got["systemInstruction"].(map[string]any)["parts"].([]any)[0].(map[string]any)
	assert.Equal(t, "system text", system["text"])

	parts := got["contents"].([]any)[0].(map[string]any)["parts"].([]any)
	require.Len(t, parts, 3)
	first := parts[0].(map[string]any)["inlineData"].(map[string]any)
	assert.Equal(t, "image/png", first["mimeType"])
	assert.Equal(t, "AAAA", first["data"])
	second := parts[1].(map[string]any)["inlineData"].(map[string]any)
	assert.Equal(t, "BBBB", second["data"])
	assert.Equal(t, "analyze", parts[2].(map[string]any)["text"])

	gen := got["generationConfig"].(map[string]any)
	assert.Equal(t, float64(0), gen["temperature"])
	assert.Equal(t, float64(1), gen["topK"])
	assert.Equal(t, "application/json", gen["responseMimeType"])
	schema := gen["responseSchema"].(map[string]any)
	assert.Equal(t, "OBJECT", schema["type"])
	assert.NotContains(t, schema, "$schema")
	assert.NotContains(t, schema, "additionalProperties")
}

func TestAttempt_ParsesCandidates(t *testing.T) {
	ts := geminiServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"candidates":[{"content":{"parts":[{"text":"{\"a\":"},{"text":"1}"}]},"finishReason":"STOP"}],
			"modelVersion":"gemini-2.5-flash-001"
		}`))
	})

	res, err := newTestProvider(ts.URL).Attempt(context.Background(), testRequest())
	require.NoError(t, err)
	require.Len(t, res.Candidates, 1)
	assert.Equal(t, `{"a":1}`, res.Text())
	assert.Equal(t, "STOP", res.Candidates[0].FinishReason)
	assert.Equal(t, "gemini-2.5-flash-001", res.Model)
}

func TestAttempt_NoCandidatesIsNotAnError(t *testing.T) {
	ts := geminiServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"promptFeedback":{"blockReason":"SAFETY"}}`))
	})

	res, err := newTestProvider(ts.URL).Attempt(context.Background(), testRequest())
	require.NoError(t, err)
	assert.Empty(t, res.Candidates)
	assert.Equal(t, "gemini-test", res.Model)
}

func TestAttempt_CandidateWithoutContent(t *testing.T) {
	ts := geminiServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[{"finishReason":"MAX_TOKENS"}]}`))
	})

	res, err := newTestProvider(ts.URL).Attempt(context.Background(), testRequest())
	require.NoError(t, err)
	require.Len(t, res.Candidates, 1)
	assert.Empty(t, res.Candidates[0].Parts)
	assert.Equal(t, "MAX_TOKENS", res.Candidates[0].FinishReason)
}

func TestAttempt_HTTPError(t *testing.T) {
	ts := geminiServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error":{"code":403,"message":"API key not valid","status":"PERMISSION_DENIED"}}`))
	})

	_, err := newTestProvider(ts.URL).Attempt(context.Background(), testRequest())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrAPI))
	assert.Contains(t, err.Error(), "API key not valid")
	assert.Contains(t, err.Error(), "403")
}

func TestAttempt_ContextCancelled(t *testing.T) {
	ts := geminiServer(t, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := newTestProvider(ts.URL).Attempt(ctx, testRequest())
	require.Error(t, err)
}

func TestName(t *testing.T) {
	assert.Equal(t, "gemini", newTestProvider("http://localhost").Name())
}

// --- ResponseSchema tests ---

func TestResponseSchema_ConvertsNested(t *testing.T) {
	out := ResponseSchema(testRequest().Schema)

	assert.Equal(t, "OBJECT", out["type"])
	props := out["properties"].(map[string]any)
	assert.Equal(t, "NUMBER", props["score"].(map[string]any)["type"])
	tags := props["tags"].(map[string]any)
	assert.Equal(t, "ARRAY", tags["type"])
	assert.Equal(t, "STRING", tags["items"].(map[string]any)["type"])
	assert.Equal(t, []any{"score"}, out["required"])
}

func TestResponseSchema_KeepsReplacementItemRequired(t *testing.T) {
	contract, err := extraction.NewContract()
	require.NoError(t, err)

	props := ResponseSchema(contract.Schema())["properties"].(map[string]any)
	food := props["replacements_food"].(map[string]any)["items"].(map[string]any)
	market := props["replacements_market"].(map[string]any)["items"].(map[string]any)

	assert.Equal(t, "OBJECT", food["type"])
	assert.ElementsMatch(t, []any{"name", "calories", "ingredients_brief"}, food["required"])
	assert.ElementsMatch(t, []any{"name", "benefit"}, market["required"])
}

func TestResponseSchema_DoesNotMutateInput(t *testing.T) {
	in := testRequest().Schema
	_ = ResponseSchema(in)
	assert.Equal(t, "object", in["type"])
	assert.Contains(t, in, "$schema")
}

func TestResponseSchema_Nil(t *testing.T) {
	assert.Nil(t, ResponseSchema(nil))
}
