// Reelquest - Natural-Language Media Discovery Engine
// Copyright 2026 Reelquest Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

package discovery

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"reelquest/internal/config"
	"reelquest/internal/logging"
	"reelquest/internal/metrics"
	"reelquest/internal/models"
)

// Engine fans the discovery sources out concurrently and merges their
// results into one deduplicated candidate pool.
type Engine struct {
	catalog Catalog
	cfg     *config.DiscoveryConfig
	logger  zerolog.Logger
}

// NewEngine creates a discovery engine.
func NewEngine(catalog Catalog, cfg *config.DiscoveryConfig) *Engine {
	return &Engine{
		catalog: catalog,
		cfg:     cfg,
		logger:  logging.Logger().With().Str("component", "discovery").Logger(),
	}
}

// Discover runs every applicable source for the intent and returns the
// merged pool plus the resolved query signals the ranker scores against.
// Near-exact title hits from resolution enter the pool alongside discovery
// output. Source failures are isolated; only cancellation fails the whole
// stage.
func (e *Engine) Discover(ctx context.Context, in models.Intent, res *Resolution) ([]models.Candidate, models.QuerySignals, error) {
	p, err := e.buildPlan(ctx, in, res)
	if err != nil {
		return nil, models.QuerySignals{}, err
	}

	sources := e.selectSources(p)

	// Fan out with one goroutine per source and join on an indexed results
	// slice so output stays attributable without channel plumbing.
	results := make([][]models.Candidate, len(sources))
	var wg sync.WaitGroup
	for i, src := range sources {
		wg.Add(1)
		go func(i int, src Source) {
			defer wg.Done()
			cands, err := src.Produce(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				metrics.DiscoverySourceFailures.WithLabelValues(src.Name()).Inc()
				e.logger.Warn().Err(err).Str("source", src.Name()).Msg("discovery source failed")
				return
			}
			metrics.DiscoverySourceCandidates.WithLabelValues(src.Name()).Add(float64(len(cands)))
			results[i] = cands
		}(i, src)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, models.QuerySignals{}, err
	}

	pool := make([]models.Candidate, 0, len(res.Pool))
	pool = append(pool, res.Pool...)
	for _, cands := range results {
		pool = append(pool, cands...)
	}

	merged := Merge(pool)
	e.logger.Debug().
		Int("sources", len(sources)).
		Int("raw", len(pool)).
		Int("merged", len(merged)).
		Msg("discovery complete")
	return merged, p.signals(), nil
}

// signals exposes the resolved request-side id sets for ranking.
func (p *plan) signals() models.QuerySignals {
	personIDs := make(map[int]struct{}, len(p.personIDs))
	for _, id := range p.personIDs {
		personIDs[id] = struct{}{}
	}
	return models.QuerySignals{
		ExplicitGenreIDs: p.explicitIDs,
		MoodGenreIDs:     p.moodOnlyIDs,
		PersonIDs:        personIDs,
	}
}

// buildPlan resolves the intent's genre and mood names to catalog genre ids
// and assembles the shared source inputs. Genre-map failures degrade to an
// unfiltered plan rather than failing the request.
func (e *Engine) buildPlan(ctx context.Context, in models.Intent, res *Resolution) (*plan, error) {
	p := &plan{
		catalog:      e.catalog,
		intent:       in,
		explicitIDs:  make(map[int]struct{}),
		moodOnlyIDs:  make(map[int]struct{}),
		personIDs:    res.PersonIDs,
		seed:         res.Seed,
		minVoteCount: e.cfg.MinVoteCount,
		pageSize:     e.cfg.PageSize,
	}

	if in.WantsMovies() {
		p.mediaTypes = append(p.mediaTypes, models.MediaTypeMovie)
	}
	if in.WantsShows() {
		p.mediaTypes = append(p.mediaTypes, models.MediaTypeShow)
	}

	genreIDs, err := e.lookupGenres(ctx, p.mediaTypes, in.Genres)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		e.logger.Warn().Err(err).Msg("genre lookup failed, discovering unfiltered")
	}
	for _, id := range genreIDs {
		p.explicitIDs[id] = struct{}{}
	}

	moodIDs, err := e.lookupGenres(ctx, p.mediaTypes, MoodGenreKeywords(in.Moods))
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		e.logger.Warn().Err(err).Msg("mood genre lookup failed")
	}
	for _, id := range moodIDs {
		if _, explicit := p.explicitIDs[id]; !explicit {
			p.moodOnlyIDs[id] = struct{}{}
		}
	}

	p.genreIDs = append(p.genreIDs, genreIDs...)
	moodOnly := make([]int, 0, len(p.moodOnlyIDs))
	for id := range p.moodOnlyIDs {
		moodOnly = append(moodOnly, id)
	}
	sort.Ints(moodOnly)
	p.genreIDs = append(p.genreIDs, moodOnly...)

	return p, nil
}

// lookupGenres maps genre names to ids using the genre taxonomy of every
// media type in scope. Names that resolve for either type count; unknown
// names are skipped.
func (e *Engine) lookupGenres(ctx context.Context, types []models.MediaType, names []string) ([]int, error) {
	if len(names) == 0 {
		return nil, nil
	}

	seen := make(map[int]struct{})
	var ids []int
	var lastErr error
	for _, mt := range types {
		genreMap, err := e.catalog.GenreMap(ctx, mt)
		if err != nil {
			lastErr = err
			continue
		}
		for _, name := range names {
			id, ok := genreMap[strings.ToLower(strings.TrimSpace(name))]
			if !ok {
				continue
			}
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 && lastErr != nil {
		return nil, lastErr
	}
	return ids, nil
}

// selectSources picks the sources the plan has signals for. Quality
// discovery always runs so an unconstrained query still yields well-rated
// popular picks.
func (e *Engine) selectSources(p *plan) []Source {
	sources := []Source{&qualityDiscoverySource{p: p}}
	if len(p.genreIDs) > 0 {
		sources = append(sources, &genreDiscoverySource{p: p})
	}
	if p.seed != nil {
		sources = append(sources,
			&similarSource{p: p},
			&recommendationSource{p: p},
		)
	}
	if len(p.personIDs) > 0 {
		sources = append(sources, &personSource{p: p})
	}
	return sources
}
