// Reelquest - Natural-Language Media Discovery Engine
// Copyright 2026 Reelquest Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	json "github.com/goccy/go-json"

	"reelquest/internal/config"
	"reelquest/internal/models"
	"reelquest/internal/search"
)

// stubSearcher returns a canned search result or error.
type stubSearcher struct {
	result *search.Result
	err    error

	gotQuery string
	gotCount int
}

func (s *stubSearcher) Search(ctx context.Context, query string, countHint int) (*search.Result, error) {
	s.gotQuery = query
	s.gotCount = countHint
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

func testAPIConfig() *config.APIConfig {
	return &config.APIConfig{
		RateLimitRequests: 100,
		RateLimitWindow:   time.Minute,
		CORSOrigins:       []string{},
		MaxQueryLength:    500,
	}
}

func newTestRouter(searcher Searcher) http.Handler {
	cfg := testAPIConfig()
	return NewRouter(NewHandler(searcher, cfg), cfg)
}

func rankedFixture() *search.Result {
	return &search.Result{
		State: search.StateAssembled,
		Results: []models.RankedResult{
			{
				Candidate: models.Candidate{
					Key:         models.CandidateKey{MediaType: models.MediaTypeMovie, CatalogID: 27205},
					Name:        "Inception",
					Overview:    "A thief who steals corporate secrets...",
					VoteAverage: 8.4,
					VoteCount:   34000,
					Year:        2010,
					PosterPath:  "/poster.jpg",
					Source:      models.SourceExactMatch,
				},
				RelevanceScore: 0.82,
				Reasoning:      "Because it closely matches a title you named and it is highly rated.",
			},
		},
	}
}

func TestSearchEndpoint(t *testing.T) {
	searcher := &stubSearcher{result: rankedFixture()}
	router := newTestRouter(searcher)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/search",
		strings.NewReader(`{"query": "mind-bending movies", "count": 5}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body: %s", rec.Code, rec.Body.String())
	}
	if searcher.gotQuery != "mind-bending movies" || searcher.gotCount != 5 {
		t.Errorf("searcher got (%q, %d)", searcher.gotQuery, searcher.gotCount)
	}

	var resp searchResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if len(resp.Results) != 1 {
		t.Fatalf("results = %d, want 1", len(resp.Results))
	}
	got := resp.Results[0]
	if got.CatalogID != 27205 || got.MediaType != "movie" || got.Name != "Inception" {
		t.Errorf("result = %+v", got)
	}
	if got.RelevanceScore != 0.82 {
		t.Errorf("relevance score = %f, want 0.82", got.RelevanceScore)
	}
	if resp.TraceID == "" {
		t.Error("response must carry a trace id")
	}
	if rec.Header().Get("X-Trace-ID") == "" {
		t.Error("response must carry the X-Trace-ID header")
	}
}

func TestSearchEndpointValidation(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		wantCode string
	}{
		{"missing query", `{}`, codeValidation},
		{"empty query", `{"query": ""}`, codeValidation},
		{"count too large", `{"query": "x", "count": 100}`, codeValidation},
		{"negative count", `{"query": "x", "count": -1}`, codeValidation},
		{"invalid JSON", `{"query": `, codeBadRequest},
		{"query too long", `{"query": "` + strings.Repeat("a", 501) + `"}`, codeValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newTestRouter(&stubSearcher{result: rankedFixture()})
			req := httptest.NewRequest(http.MethodPost, "/api/v1/search", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", rec.Code)
			}
			var envelope errorEnvelope
			if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
				t.Fatalf("decoding error envelope: %v", err)
			}
			if envelope.Error.Code != tt.wantCode {
				t.Errorf("error code = %q, want %q", envelope.Error.Code, tt.wantCode)
			}
		})
	}
}

func TestSearchEndpointTimeout(t *testing.T) {
	router := newTestRouter(&stubSearcher{err: context.DeadlineExceeded})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/search", strings.NewReader(`{"query": "slow"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusGatewayTimeout {
		t.Errorf("status = %d, want 504", rec.Code)
	}
}

func TestHealthEndpoints(t *testing.T) {
	router := newTestRouter(&stubSearcher{})

	for _, path := range []string{"/api/v1/health", "/api/v1/health/live", "/api/v1/health/ready"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Errorf("GET %s status = %d, want 200", path, rec.Code)
		}
	}
}

func TestMetricsEndpoint(t *testing.T) {
	router := newTestRouter(&stubSearcher{})

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("GET /metrics status = %d, want 200", rec.Code)
	}
}
