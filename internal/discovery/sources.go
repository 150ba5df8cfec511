// Reelquest - Natural-Language Media Discovery Engine
// Copyright 2026 Reelquest Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

package discovery

import (
	"context"

	"reelquest/internal/models"
	"reelquest/internal/tmdb"
)

// Source produces candidates for one discovery strategy. New sources plug in
// without touching the merge or ranking stages.
type Source interface {
	// Name identifies the source in logs and metrics.
	Name() string

	// Produce gathers candidates. A failure isolates to this source: the
	// engine logs it and the source contributes zero candidates.
	Produce(ctx context.Context) ([]models.Candidate, error)
}

// plan carries the per-request inputs shared by the sources: resolved genre
// ids (split by whether they arrived via an explicit genre or a mood
// mapping), resolved people, the similarity seed and the media types in
// scope.
type plan struct {
	catalog      Catalog
	intent       models.Intent
	mediaTypes   []models.MediaType
	genreIDs     []int
	explicitIDs  map[int]struct{}
	moodOnlyIDs  map[int]struct{}
	personIDs    []int
	seed         *models.CandidateKey
	minVoteCount int
	pageSize     int
}

// capHits bounds how many hits one source contributes per media type.
func (p *plan) capHits(hits []tmdb.MediaResult) []tmdb.MediaResult {
	if p.pageSize > 0 && len(hits) > p.pageSize {
		return hits[:p.pageSize]
	}
	return hits
}

// annotate records which requested signals a discover hit carried.
func (p *plan) annotate(cand *models.Candidate, hitGenres []int) {
	for _, id := range hitGenres {
		if _, ok := p.explicitIDs[id]; ok {
			cand.AddGenreMatch(id)
		} else if _, ok := p.moodOnlyIDs[id]; ok {
			cand.AddGenreMatch(id)
			cand.MoodMatched = true
		}
	}
}

// genreDiscoverySource issues the popularity-sorted discover query.
type genreDiscoverySource struct{ p *plan }

func (s *genreDiscoverySource) Name() string { return "genre_discovery" }

func (s *genreDiscoverySource) Produce(ctx context.Context) ([]models.Candidate, error) {
	return discoverAcrossTypes(ctx, s.p, tmdb.SortPopularity, func(hit tmdb.MediaResult) models.SourceConfidence {
		return models.SourceGenreDiscovery
	})
}

// qualityDiscoverySource issues the rating-sorted discover query. Hits that
// surface with a high rating carry QualityDiscovery confidence; the rest are
// ordinary genre-discovery hits that happened to appear on this page too.
type qualityDiscoverySource struct{ p *plan }

// qualityRatingFloor is the vote average above which a rating-sorted hit is
// considered a quality signal rather than an incidental one.
const qualityRatingFloor = 7.0

func (s *qualityDiscoverySource) Name() string { return "quality_discovery" }

func (s *qualityDiscoverySource) Produce(ctx context.Context) ([]models.Candidate, error) {
	return discoverAcrossTypes(ctx, s.p, tmdb.SortRating, func(hit tmdb.MediaResult) models.SourceConfidence {
		if hit.VoteAverage >= qualityRatingFloor {
			return models.SourceQualityDiscovery
		}
		return models.SourceGenreDiscovery
	})
}

// discoverAcrossTypes runs the filtered discover query for every media type
// in scope and converts hits to annotated candidates.
func discoverAcrossTypes(ctx context.Context, p *plan, sortBy string,
	confidence func(tmdb.MediaResult) models.SourceConfidence) ([]models.Candidate, error) {

	query := tmdb.DiscoverQuery{
		GenreIDs:     p.genreIDs,
		MinVoteCount: p.minVoteCount,
		SortBy:       sortBy,
		Page:         1,
	}
	if p.intent.YearFrom != nil {
		query.YearFrom = *p.intent.YearFrom
	}
	if p.intent.YearTo != nil {
		query.YearTo = *p.intent.YearTo
	}
	if p.intent.RuntimeMaxMinutes != nil {
		query.RuntimeMaxMinutes = *p.intent.RuntimeMaxMinutes
	}

	var out []models.Candidate
	for _, mt := range p.mediaTypes {
		hits, err := p.catalog.Discover(ctx, mt, query)
		if err != nil {
			return out, err
		}
		for _, hit := range p.capHits(hits) {
			cand := hit.ToCandidate(mt, confidence(hit))
			p.annotate(&cand, hit.GenreIDs)
			out = append(out, cand)
		}
	}
	return out, nil
}

// similarSource looks up catalog "similar" entries for the seed title.
type similarSource struct{ p *plan }

func (s *similarSource) Name() string { return "similar" }

func (s *similarSource) Produce(ctx context.Context) ([]models.Candidate, error) {
	return seededList(ctx, s.p, models.SourceSimilar, s.p.catalog.Similar)
}

// recommendationSource looks up catalog recommendations for the seed title.
type recommendationSource struct{ p *plan }

func (s *recommendationSource) Name() string { return "recommendation" }

func (s *recommendationSource) Produce(ctx context.Context) ([]models.Candidate, error) {
	return seededList(ctx, s.p, models.SourceRecommendation, s.p.catalog.Recommendations)
}

func seededList(ctx context.Context, p *plan, source models.SourceConfidence,
	fetch func(context.Context, models.MediaType, int) ([]tmdb.MediaResult, error)) ([]models.Candidate, error) {

	hits, err := fetch(ctx, p.seed.MediaType, p.seed.CatalogID)
	if err != nil {
		return nil, err
	}

	hits = p.capHits(hits)
	out := make([]models.Candidate, 0, len(hits))
	for _, hit := range hits {
		cand := hit.ToCandidate(p.seed.MediaType, source)
		p.annotate(&cand, hit.GenreIDs)
		out = append(out, cand)
	}
	return out, nil
}

// personSource issues a person-filtered discover query. The catalog only
// supports people filters on movie discovery, so show-only intents produce
// nothing here.
type personSource struct{ p *plan }

func (s *personSource) Name() string { return "person_search" }

func (s *personSource) Produce(ctx context.Context) ([]models.Candidate, error) {
	if !s.p.intent.WantsMovies() {
		return nil, nil
	}

	query := tmdb.DiscoverQuery{
		PersonIDs:    s.p.personIDs,
		MinVoteCount: s.p.minVoteCount,
		SortBy:       tmdb.SortPopularity,
		Page:         1,
	}
	if s.p.intent.YearFrom != nil {
		query.YearFrom = *s.p.intent.YearFrom
	}
	if s.p.intent.YearTo != nil {
		query.YearTo = *s.p.intent.YearTo
	}

	hits, err := s.p.catalog.Discover(ctx, models.MediaTypeMovie, query)
	if err != nil {
		return nil, err
	}

	hits = s.p.capHits(hits)
	out := make([]models.Candidate, 0, len(hits))
	for _, hit := range hits {
		cand := hit.ToCandidate(models.MediaTypeMovie, models.SourcePersonSearch)
		s.p.annotate(&cand, hit.GenreIDs)
		// The discover filter already guarantees the credit; record every
		// resolved person as matched.
		for _, id := range s.p.personIDs {
			cand.AddPersonMatch(id)
		}
		out = append(out, cand)
	}
	return out, nil
}
