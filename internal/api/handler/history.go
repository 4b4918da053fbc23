package handler

import (
	"errors"
	"math"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/kiranshivaraju/nutrieye/internal/api/response"
	"github.com/kiranshivaraju/nutrieye/internal/store"
	"github.com/kiranshivaraju/nutrieye/pkg/models"
)

// NewListAnalysesHandler returns an http.HandlerFunc for GET /api/v1/analyses.
// Optional filters: category, fingerprint. Pagination: page, limit.
func NewListAnalysesHandler(s store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()

		limit, err := queryInt(q.Get("limit"), 20)
		if err != nil || limit < 1 || limit > 100 {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "limit must be between 1 and 100", nil)
			return
		}
		page, err := queryInt(q.Get("page"), 1)
		if err != nil || page < 1 {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "page must be a positive integer", nil)
			return
		}
		// page*limit feeds both the SQL offset and has_next.
		if page > math.MaxInt32/limit {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "page is out of range", nil)
			return
		}

		category := models.Category(q.Get("category"))
		if category != "" && !category.Valid() {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "unknown category", nil)
			return
		}

		recs, total, err := s.ListAnalyses(r.Context(), store.AnalysisFilter{
			Category:    category,
			Fingerprint: q.Get("fingerprint"),
			Page:        page,
			Limit:       limit,
		})
		if err != nil {
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list analyses", nil)
			return
		}
		if recs == nil {
			recs = []*models.AnalysisRecord{}
		}

		response.Collection(w, recs, response.PaginationMeta{
			Page:    page,
			Limit:   limit,
			Total:   total,
			HasNext: page*limit < total,
		})
	}
}

// NewGetAnalysisHandler returns an http.HandlerFunc for GET /api/v1/analyses/{id}.
func NewGetAnalysisHandler(s store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_ANALYSIS_ID", "Invalid analysis ID", nil)
			return
		}

		rec, err := s.GetAnalysis(r.Context(), id)
		if errors.Is(err, store.ErrNotFound) {
			response.Error(w, http.StatusNotFound, "ANALYSIS_NOT_FOUND", "Analysis not found", nil)
			return
		}
		if err != nil {
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load analysis", nil)
			return
		}

		response.JSON(w, rec)
	}
}

func queryInt(raw string, def int) (int, error) {
	if raw == "" {
		return def, nil
	}
	return strconv.Atoi(raw)
}
