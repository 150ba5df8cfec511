// Reelquest - Natural-Language Media Discovery Engine
// Copyright 2026 Reelquest Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api exposes the HTTP surface: the search endpoint, health probes,
// and Prometheus metrics, routed with Chi and its middleware ecosystem.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	json "github.com/goccy/go-json"

	"reelquest/internal/config"
	"reelquest/internal/logging"
	"reelquest/internal/models"
	"reelquest/internal/search"
	"reelquest/internal/validation"
)

// Searcher runs one search. *search.Service satisfies it; handler tests
// substitute stubs.
type Searcher interface {
	Search(ctx context.Context, query string, countHint int) (*search.Result, error)
}

// Handler holds the HTTP handlers and their collaborators.
type Handler struct {
	searcher Searcher
	cfg      *config.APIConfig
}

// NewHandler creates the API handler set.
func NewHandler(searcher Searcher, cfg *config.APIConfig) *Handler {
	return &Handler{searcher: searcher, cfg: cfg}
}

// searchRequest is the POST /api/v1/search body.
type searchRequest struct {
	// Query is the free-text search query.
	Query string `json:"query" validate:"required,min=1"`

	// Count optionally overrides how many results to return.
	Count int `json:"count" validate:"omitempty,min=1,max=50"`
}

// searchResult is the wire shape of one ranked result.
type searchResult struct {
	CatalogID      int     `json:"catalog_id"`
	MediaType      string  `json:"media_type"`
	Name           string  `json:"name"`
	Overview       string  `json:"overview"`
	PosterPath     string  `json:"poster_path,omitempty"`
	VoteAverage    float64 `json:"vote_average"`
	VoteCount      int     `json:"vote_count"`
	Year           int     `json:"year,omitempty"`
	RelevanceScore float64 `json:"relevance_score"`
	Reasoning      string  `json:"reasoning"`
}

// searchResponse is the POST /api/v1/search response body.
type searchResponse struct {
	Results []searchResult `json:"results"`
	TraceID string         `json:"trace_id"`
}

// Search handles POST /api/v1/search.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16)).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, codeBadRequest, "invalid JSON body", nil)
		return
	}

	if verr := validation.ValidateStruct(&req); verr != nil {
		respondError(w, http.StatusBadRequest, codeValidation, verr.Error(), verr.Fields)
		return
	}
	if len(req.Query) > h.cfg.MaxQueryLength {
		respondError(w, http.StatusBadRequest, codeValidation,
			fmt.Sprintf("query must be at most %d characters", h.cfg.MaxQueryLength), nil)
		return
	}

	result, err := h.searcher.Search(r.Context(), req.Query, req.Count)
	if err != nil {
		h.respondSearchError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, searchResponse{
		Results: toWireResults(result.Results),
		TraceID: logging.TraceIDFromContext(r.Context()),
	})
}

// respondSearchError maps pipeline failures to HTTP statuses. A client
// disconnect gets no body; nobody is listening.
func (h *Handler) respondSearchError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, context.Canceled):
		if r.Context().Err() != nil {
			return
		}
		respondError(w, http.StatusServiceUnavailable, codeUnavailable, "search was cancelled", nil)
	case errors.Is(err, context.DeadlineExceeded):
		respondError(w, http.StatusGatewayTimeout, codeTimeout, "search timed out", nil)
	default:
		logging.Ctx(r.Context()).Error().Err(err).Msg("search failed")
		respondError(w, http.StatusInternalServerError, codeInternal, "internal error", nil)
	}
}

func toWireResults(ranked []models.RankedResult) []searchResult {
	results := make([]searchResult, len(ranked))
	for i, rr := range ranked {
		results[i] = searchResult{
			CatalogID:      rr.Candidate.Key.CatalogID,
			MediaType:      string(rr.Candidate.Key.MediaType),
			Name:           rr.Candidate.Name,
			Overview:       rr.Candidate.Overview,
			PosterPath:     rr.Candidate.PosterPath,
			VoteAverage:    rr.Candidate.VoteAverage,
			VoteCount:      rr.Candidate.VoteCount,
			Year:           rr.Candidate.Year,
			RelevanceScore: rr.RelevanceScore,
			Reasoning:      rr.Reasoning,
		}
	}
	return results
}

// Health handles GET /api/v1/health.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// HealthLive handles GET /api/v1/health/live. Liveness means the process is
// serving; it never checks dependencies.
func (h *Handler) HealthLive(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "alive"})
}

// HealthReady handles GET /api/v1/health/ready.
func (h *Handler) HealthReady(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
