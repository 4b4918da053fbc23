package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/ThinkInAIXYZ/go-mcp/protocol"
	"github.com/kiranshivaraju/nutrieye/internal/ai"
	mw "github.com/kiranshivaraju/nutrieye/internal/api/middleware"
	"github.com/kiranshivaraju/nutrieye/internal/api/response"
	"github.com/kiranshivaraju/nutrieye/internal/pipeline"
)

// AnalyzeLabelTool is the only tool served on /mcp/tools/call.
const AnalyzeLabelTool = "analyze_label"

type analyzeLabelParams struct {
	Base64Images []string `json:"base64Images"`
}

// NewMCPToolHandler returns an http.HandlerFunc for POST /mcp/tools/call.
// The enriched document is returned as the text content of the tool result.
// Exhausted extractions are reported in-band as an error result carrying the
// end-user message.
func NewMCPToolHandler(svc Analyzer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req protocol.CallToolRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.Failure(w, http.StatusBadRequest, "Invalid JSON", err.Error())
			return
		}

		if req.Name != AnalyzeLabelTool {
			response.Failure(w, http.StatusNotFound, fmt.Sprintf("Unknown tool: %s", req.Name), nil)
			return
		}

		var params analyzeLabelParams
		if err := extractParams(&req, &params); err != nil || !validImageCount(params.Base64Images) {
			response.Failure(w, http.StatusBadRequest, "Missing base64Images array", nil)
			return
		}

		res, err := svc.Analyze(r.Context(), params.Base64Images)
		var extErr *ai.ExtractionError
		if errors.As(err, &extErr) {
			slog.Warn("analyze_label tool failed",
				"request_id", mw.GetRequestID(r),
				"error", err,
			)
			response.Raw(w, http.StatusOK, errorResult(pipeline.UserFacingMessage(err)))
			return
		}
		if err != nil {
			writeAnalyzeError(w, r, err)
			return
		}

		result, err := textResult(res.Analysis)
		if err != nil {
			slog.Error("encode tool result", "request_id", mw.GetRequestID(r), "error", err)
			response.Failure(w, http.StatusInternalServerError, "Internal Server Error", nil)
			return
		}

		w.Header().Set("X-Analysis-ID", res.ID.String())
		response.Raw(w, http.StatusOK, result)
	}
}

// extractParams converts the free-form Arguments map into target.
func extractParams(req *protocol.CallToolRequest, target any) error {
	raw, err := json.Marshal(req.Arguments)
	if err != nil {
		return fmt.Errorf("marshal arguments: %w", err)
	}
	if err := json.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("unmarshal arguments: %w", err)
	}
	return nil
}

func textResult(v any) (*protocol.CallToolResult, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return &protocol.CallToolResult{
		Content: []protocol.Content{
			protocol.TextContent{
				Type: "text",
				Text: string(b),
			},
		},
	}, nil
}

func errorResult(msg string) *protocol.CallToolResult {
	return &protocol.CallToolResult{
		Content: []protocol.Content{
			protocol.TextContent{
				Type: "text",
				Text: msg,
			},
		},
		IsError: true,
	}
}
