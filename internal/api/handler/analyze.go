package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/kiranshivaraju/nutrieye/internal/ai"
	mw "github.com/kiranshivaraju/nutrieye/internal/api/middleware"
	"github.com/kiranshivaraju/nutrieye/internal/api/response"
	"github.com/kiranshivaraju/nutrieye/internal/imagecodec"
	"github.com/kiranshivaraju/nutrieye/internal/pipeline"
)

// Analyzer defines the interface the analyze handlers depend on.
type Analyzer interface {
	Analyze(ctx context.Context, images []string) (*pipeline.Result, error)
}

type analyzeRequest struct {
	Base64Images []string `json:"base64Images"`
}

// NewAnalyzeHandler returns an http.HandlerFunc for POST /analyze.
// Success writes the bare enriched document; failures use the flat
// {"error","details"} body.
func NewAnalyzeHandler(svc Analyzer, maxBodyBytes int64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if maxBodyBytes > 0 {
			r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
		}

		var req analyzeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				response.Failure(w, http.StatusRequestEntityTooLarge, "Request body too large", nil)
				return
			}
			response.Failure(w, http.StatusBadRequest, "Missing base64Images array", nil)
			return
		}
		if !validImageCount(req.Base64Images) {
			response.Failure(w, http.StatusBadRequest, "Missing base64Images array", nil)
			return
		}

		res, err := svc.Analyze(r.Context(), req.Base64Images)
		if err != nil {
			writeAnalyzeError(w, r, err)
			return
		}

		w.Header().Set("X-Analysis-ID", res.ID.String())
		response.Raw(w, http.StatusOK, res.Analysis)
	}
}

func validImageCount(images []string) bool {
	return len(images) > 0 && len(images) <= imagecodec.MaxImages
}

func writeAnalyzeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ai.ErrMalformedInput):
		response.Failure(w, http.StatusBadRequest, "Malformed base64Images", err.Error())
	case errors.Is(err, ai.ErrConfiguration):
		slog.Error("analysis backend misconfigured",
			"request_id", mw.GetRequestID(r),
			"error", err,
		)
		response.Failure(w, http.StatusInternalServerError, "Server configuration error", nil)
	default:
		slog.Error("analysis failed",
			"request_id", mw.GetRequestID(r),
			"error", err,
		)
		response.Failure(w, http.StatusInternalServerError, "Internal Server Error", err.Error())
	}
}
