// internal/server/handlers/analysis.go

package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"reelscope/internal/domain/insight"
)

// AnalysisHandler handles analysis-run HTTP requests
type AnalysisHandler struct {
	coordinator insight.Coordinator
}

// NewAnalysisHandler creates a new analysis handler
func NewAnalysisHandler(coordinator insight.Coordinator) *AnalysisHandler {
	return &AnalysisHandler{
		coordinator: coordinator,
	}
}

// CreateAnalysis starts a new analysis run
func (h *AnalysisHandler) CreateAnalysis(w http.ResponseWriter, r *http.Request) {
	var opts insight.RunOptions
	if err := json.NewDecoder(r.Body).Decode(&opts); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	run, err := h.coordinator.StartRun(r.Context(), opts)
	if err != nil {
		if errors.Is(err, insight.ErrInvalidOptions) {
			respondWithError(w, http.StatusBadRequest, err.Error(), nil)
		} else {
			respondWithError(w, http.StatusInternalServerError, "Failed to start analysis", err)
		}
		return
	}

	respondWithJSON(w, http.StatusAccepted, run)
}

// ListAnalyses returns recent analysis runs
func (h *AnalysisHandler) ListAnalyses(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	runs, err := h.coordinator.ListRuns(r.Context(), limit)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to list analyses", err)
		return
	}

	if runs == nil {
		runs = []insight.Run{}
	}

	respondWithJSON(w, http.StatusOK, runs)
}

// GetAnalysis returns a specific analysis run by ID
func (h *AnalysisHandler) GetAnalysis(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		respondWithError(w, http.StatusBadRequest, "Missing analysis ID", nil)
		return
	}

	run, err := h.coordinator.GetRun(r.Context(), id)
	if err != nil {
		if errors.Is(err, insight.ErrRunNotFound) {
			respondWithError(w, http.StatusNotFound, "Analysis not found", nil)
		} else {
			respondWithError(w, http.StatusInternalServerError, "Failed to get analysis", err)
		}
		return
	}

	respondWithJSON(w, http.StatusOK, run)
}

// GetInsights returns the result document of a completed analysis run
func (h *AnalysisHandler) GetInsights(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		respondWithError(w, http.StatusBadRequest, "Missing analysis ID", nil)
		return
	}

	doc, err := h.coordinator.GetResult(r.Context(), id)
	if err != nil {
		if errors.Is(err, insight.ErrResultNotFound) {
			respondWithError(w, http.StatusNotFound, "Insights not available for this analysis", nil)
		} else {
			respondWithError(w, http.StatusInternalServerError, "Failed to get insights", err)
		}
		return
	}

	respondWithJSON(w, http.StatusOK, doc)
}

// Helper for JSON responses
func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("Failed to marshal response"))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

// Helper for error responses
func respondWithError(w http.ResponseWriter, code int, message string, err error) {
	response := map[string]string{"error": message}

	if err != nil && code >= 500 {
		log.Error().Err(err).Int("code", code).Str("message", message).Msg("HTTP error")
	}

	jsonResponse, _ := json.Marshal(response)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(jsonResponse)
}
