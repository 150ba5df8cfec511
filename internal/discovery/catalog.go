// Reelquest - Natural-Language Media Discovery Engine
// Copyright 2026 Reelquest Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package discovery gathers catalog candidates for a parsed intent: resolving
// named titles and people, fanning out concurrent filtered catalog queries,
// and merging the heterogeneous result sets into one deduplicated pool.
package discovery

import (
	"context"

	"reelquest/internal/models"
	"reelquest/internal/tmdb"
)

// Catalog is the subset of catalog-client operations discovery consumes.
// *tmdb.Client satisfies it; tests substitute mocks.
type Catalog interface {
	SearchMulti(ctx context.Context, query string, page int) ([]tmdb.MultiResult, error)
	Discover(ctx context.Context, mt models.MediaType, q tmdb.DiscoverQuery) ([]tmdb.MediaResult, error)
	Similar(ctx context.Context, mt models.MediaType, id int) ([]tmdb.MediaResult, error)
	Recommendations(ctx context.Context, mt models.MediaType, id int) ([]tmdb.MediaResult, error)
	GenreMap(ctx context.Context, mt models.MediaType) (map[string]int, error)
	MovieDetails(ctx context.Context, id int) (*tmdb.MovieDetails, error)
}
