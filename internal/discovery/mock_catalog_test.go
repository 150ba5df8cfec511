// Reelquest - Natural-Language Media Discovery Engine
// Copyright 2026 Reelquest Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

package discovery

import (
	"context"
	"sync"

	"reelquest/internal/models"
	"reelquest/internal/tmdb"
)

// mockCatalog implements Catalog with per-operation stubs. Unstubbed
// operations return empty results.
type mockCatalog struct {
	mu sync.Mutex

	searchMultiFn     func(query string, page int) ([]tmdb.MultiResult, error)
	discoverFn        func(mt models.MediaType, q tmdb.DiscoverQuery) ([]tmdb.MediaResult, error)
	similarFn         func(mt models.MediaType, id int) ([]tmdb.MediaResult, error)
	recommendationsFn func(mt models.MediaType, id int) ([]tmdb.MediaResult, error)
	genreMapFn        func(mt models.MediaType) (map[string]int, error)
	movieDetailsFn    func(id int) (*tmdb.MovieDetails, error)

	discoverCalls []tmdb.DiscoverQuery
}

func (m *mockCatalog) SearchMulti(ctx context.Context, query string, page int) ([]tmdb.MultiResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if m.searchMultiFn == nil {
		return nil, nil
	}
	return m.searchMultiFn(query, page)
}

func (m *mockCatalog) Discover(ctx context.Context, mt models.MediaType, q tmdb.DiscoverQuery) ([]tmdb.MediaResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	m.discoverCalls = append(m.discoverCalls, q)
	m.mu.Unlock()
	if m.discoverFn == nil {
		return nil, nil
	}
	return m.discoverFn(mt, q)
}

func (m *mockCatalog) Similar(ctx context.Context, mt models.MediaType, id int) ([]tmdb.MediaResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if m.similarFn == nil {
		return nil, nil
	}
	return m.similarFn(mt, id)
}

func (m *mockCatalog) Recommendations(ctx context.Context, mt models.MediaType, id int) ([]tmdb.MediaResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if m.recommendationsFn == nil {
		return nil, nil
	}
	return m.recommendationsFn(mt, id)
}

func (m *mockCatalog) GenreMap(ctx context.Context, mt models.MediaType) (map[string]int, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if m.genreMapFn == nil {
		return map[string]int{}, nil
	}
	return m.genreMapFn(mt)
}

func (m *mockCatalog) MovieDetails(ctx context.Context, id int) (*tmdb.MovieDetails, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if m.movieDetailsFn == nil {
		return &tmdb.MovieDetails{ID: id}, nil
	}
	return m.movieDetailsFn(id)
}
