// Reelquest - Natural-Language Media Discovery Engine
// Copyright 2026 Reelquest Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

package search

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"reelquest/internal/config"
	"reelquest/internal/discovery"
	"reelquest/internal/intent"
	"reelquest/internal/logging"
	"reelquest/internal/models"
	"reelquest/internal/ranking"
	"reelquest/internal/tmdb"
)

// stubExtractor returns a fixed intent or error.
type stubExtractor struct {
	intent models.Intent
	err    error
}

func (s *stubExtractor) ExtractIntent(ctx context.Context, query string) (models.Intent, error) {
	if err := ctx.Err(); err != nil {
		return models.Intent{}, err
	}
	if s.err != nil {
		return models.Intent{}, fmt.Errorf("%w: %v", intent.ErrExtraction, s.err)
	}
	return s.intent, nil
}

// stubCatalog serves canned multi-search and discover pages.
type stubCatalog struct {
	multiHits    []tmdb.MultiResult
	discoverHits []tmdb.MediaResult
	genres       map[string]int
}

func (s *stubCatalog) SearchMulti(ctx context.Context, query string, page int) ([]tmdb.MultiResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.multiHits, nil
}

func (s *stubCatalog) Discover(ctx context.Context, mt models.MediaType, q tmdb.DiscoverQuery) ([]tmdb.MediaResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if mt != models.MediaTypeMovie {
		return nil, nil
	}
	return s.discoverHits, nil
}

func (s *stubCatalog) Similar(ctx context.Context, mt models.MediaType, id int) ([]tmdb.MediaResult, error) {
	return nil, ctx.Err()
}

func (s *stubCatalog) Recommendations(ctx context.Context, mt models.MediaType, id int) ([]tmdb.MediaResult, error) {
	return nil, ctx.Err()
}

func (s *stubCatalog) GenreMap(ctx context.Context, mt models.MediaType) (map[string]int, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.genres == nil {
		return map[string]int{}, nil
	}
	return s.genres, nil
}

func (s *stubCatalog) MovieDetails(ctx context.Context, id int) (*tmdb.MovieDetails, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &tmdb.MovieDetails{ID: id, Runtime: 120}, nil
}

func newTestService(extractor intent.Extractor, catalog discovery.Catalog) *Service {
	discoveryCfg := &config.DiscoveryConfig{
		MinVoteCount:         50,
		PageSize:             20,
		ExactMatchThreshold:  0.9,
		PersonMatchThreshold: 0.6,
	}
	rankingCfg := &config.RankingConfig{
		Weights: config.FactorWeights{
			Base: 1.0, GenreOverlap: 0.8, ThemeOverlap: 0.7, PeopleOverlap: 0.9,
			YearProximity: 0.5, LanguageMatch: 0.3, RuntimeMatch: 0.4, QualitySignal: 0.6,
		},
		YearDecayWindow: 10,
		RecentYears:     3,
		DefaultCount:    12,
		MaxCount:        50,
	}
	return NewService(
		extractor,
		discovery.NewResolver(catalog, discoveryCfg),
		discovery.NewEngine(catalog, discoveryCfg),
		ranking.NewRanker(rankingCfg),
		rankingCfg,
	)
}

func discoverPage(n int) []tmdb.MediaResult {
	hits := make([]tmdb.MediaResult, n)
	for i := range hits {
		hits[i] = tmdb.MediaResult{
			ID:          1000 + i,
			Title:       fmt.Sprintf("Movie %d", i),
			VoteAverage: 7.0,
			VoteCount:   500,
			ReleaseDate: "2015-01-01",
		}
	}
	return hits
}

func TestSearchExactLookup(t *testing.T) {
	extractor := &stubExtractor{intent: models.Intent{Titles: []string{"Inception"}}}
	catalog := &stubCatalog{
		multiHits: []tmdb.MultiResult{
			{ID: 27205, MediaType: "movie", Title: "Inception", ReleaseDate: "2010-07-16", VoteAverage: 8.4, VoteCount: 34000},
		},
	}
	svc := newTestService(extractor, catalog)

	result, err := svc.Search(context.Background(), "Inception", 0)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if result.State != StateExactLookup {
		t.Errorf("state = %v, want exact_lookup", result.State)
	}
	if len(result.Results) != 1 {
		t.Fatalf("results = %d, want exactly 1", len(result.Results))
	}
	if result.Results[0].RelevanceScore != 1.0 {
		t.Errorf("score = %f, want 1.0", result.Results[0].RelevanceScore)
	}
	if result.Results[0].Reasoning != "Exact title match" {
		t.Errorf("reasoning = %q, want %q", result.Results[0].Reasoning, "Exact title match")
	}
}

func TestSearchSuggestionsSeedExactMatchIntoPool(t *testing.T) {
	extractor := &stubExtractor{intent: models.Intent{
		Titles:                []string{"Inception"},
		RequestingSuggestions: true,
	}}
	catalog := &stubCatalog{
		multiHits: []tmdb.MultiResult{
			{ID: 27205, MediaType: "movie", Title: "Inception", ReleaseDate: "2010-07-16", VoteAverage: 8.4, VoteCount: 34000},
		},
		discoverHits: discoverPage(5),
	}
	svc := newTestService(extractor, catalog)

	result, err := svc.Search(context.Background(), "movies like Inception", 0)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if result.State != StateAssembled {
		t.Errorf("state = %v, want assembled", result.State)
	}
	if len(result.Results) < 2 {
		t.Fatalf("results = %d, want the exact match plus suggestions", len(result.Results))
	}
	// The exact match has the highest source confidence; it ranks first.
	if result.Results[0].Candidate.Key.CatalogID != 27205 {
		t.Errorf("first result = %d, want the seed title 27205", result.Results[0].Candidate.Key.CatalogID)
	}
	if result.Results[0].RelevanceScore >= 1.0 {
		t.Error("a ranked suggestion list must not carry the fixed exact-lookup score")
	}
}

func TestSearchTruncation(t *testing.T) {
	three := 3
	tests := []struct {
		name      string
		intent    models.Intent
		countHint int
		wantMax   int
	}{
		{
			name:    "default cap",
			intent:  models.Intent{RequestingSuggestions: true},
			wantMax: 12,
		},
		{
			name:      "hint overrides default",
			intent:    models.Intent{RequestingSuggestions: true},
			countHint: 5,
			wantMax:   5,
		},
		{
			name:    "parsed count respected",
			intent:  models.Intent{RequestingSuggestions: true, RequestedCount: &three},
			wantMax: 3,
		},
		{
			name:      "hint beats parsed count",
			intent:    models.Intent{RequestingSuggestions: true, RequestedCount: &three},
			countHint: 7,
			wantMax:   7,
		},
		{
			name:      "hard cap",
			intent:    models.Intent{RequestingSuggestions: true},
			countHint: 500,
			wantMax:   50,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			extractor := &stubExtractor{intent: tt.intent}
			catalog := &stubCatalog{discoverHits: discoverPage(60)}
			svc := newTestService(extractor, catalog)

			result, err := svc.Search(context.Background(), "something to watch", tt.countHint)
			if err != nil {
				t.Fatalf("Search() error = %v", err)
			}
			if len(result.Results) > tt.wantMax {
				t.Errorf("results = %d, want at most %d", len(result.Results), tt.wantMax)
			}
		})
	}
}

func TestSearchExtractionFailureDegradesToDefault(t *testing.T) {
	extractor := &stubExtractor{err: errors.New("model unavailable")}
	catalog := &stubCatalog{discoverHits: discoverPage(4)}
	svc := newTestService(extractor, catalog)

	result, err := svc.Search(context.Background(), "anything good", 0)
	if err != nil {
		t.Fatalf("Search() must survive extraction failure, got %v", err)
	}
	if result.State != StateAssembled {
		t.Errorf("state = %v, want assembled", result.State)
	}
	if len(result.Results) == 0 {
		t.Error("default intent must still produce discovery results")
	}
}

func TestSearchEmptyResultIsValid(t *testing.T) {
	extractor := &stubExtractor{intent: models.Intent{RequestingSuggestions: true}}
	svc := newTestService(extractor, &stubCatalog{})

	result, err := svc.Search(context.Background(), "obscure request", 0)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if result.State != StateAssembled {
		t.Errorf("state = %v, want assembled", result.State)
	}
	if len(result.Results) != 0 {
		t.Errorf("results = %d, want 0", len(result.Results))
	}
}

func TestSearchCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	extractor := &stubExtractor{intent: models.Intent{RequestingSuggestions: true}}
	svc := newTestService(extractor, &stubCatalog{discoverHits: discoverPage(4)})

	result, err := svc.Search(ctx, "anything", 0)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Search() error = %v, want context.Canceled", err)
	}
	if result != nil {
		t.Error("a cancelled search must not return partial results")
	}
}

func TestSearchLogsPipelineStages(t *testing.T) {
	var buf bytes.Buffer
	logging.Init(logging.Config{Level: "debug", Format: "json", Output: &buf})
	defer logging.Init(logging.Config{})

	extractor := &stubExtractor{intent: models.Intent{RequestingSuggestions: true}}
	svc := newTestService(extractor, &stubCatalog{discoverHits: discoverPage(4)})

	if _, err := svc.Search(context.Background(), "something to watch", 0); err != nil {
		t.Fatalf("Search() error = %v", err)
	}

	output := buf.String()
	for _, state := range []State{StateIntentParsed, StateResolving, StateDiscovery, StateRanked, StateAssembled} {
		if !strings.Contains(output, fmt.Sprintf("%q", string(state))) {
			t.Errorf("log output missing stage %q: %s", state, output)
		}
	}
}
