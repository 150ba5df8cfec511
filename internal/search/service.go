// Reelquest - Natural-Language Media Discovery Engine
// Copyright 2026 Reelquest Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package search orchestrates the discovery pipeline: intent extraction,
// title/person resolution, concurrent candidate discovery, ranking, and
// response assembly. The pipeline moves strictly forward through its states;
// cancellation at any stage yields a cancellation outcome, never a partial
// result list.
package search

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"reelquest/internal/config"
	"reelquest/internal/discovery"
	"reelquest/internal/intent"
	"reelquest/internal/logging"
	"reelquest/internal/metrics"
	"reelquest/internal/models"
	"reelquest/internal/ranking"
)

// State names a pipeline stage, used in logs and metrics labels.
type State string

const (
	StateIntentParsed State = "intent_parsed"
	StateResolving    State = "resolving"
	StateExactLookup  State = "exact_lookup"
	StateDiscovery    State = "discovery"
	StateRanked       State = "ranked"
	StateAssembled    State = "assembled"
	StateCancelled    State = "cancelled"
)

// exactMatchReasoning is the fixed justification for an exact-lookup result.
const exactMatchReasoning = "Exact title match"

// Result is the assembled outcome of one search.
type Result struct {
	// Results is the ordered, truncated ranked list. Empty is valid.
	Results []models.RankedResult

	// State is the terminal pipeline state, exact_lookup or assembled.
	State State

	// Intent is the parsed intent, exposed for handler-level logging.
	Intent models.Intent
}

// Service runs the end-to-end search pipeline.
type Service struct {
	extractor intent.Extractor
	resolver  *discovery.Resolver
	engine    *discovery.Engine
	ranker    *ranking.Ranker
	cfg       *config.RankingConfig
	logger    zerolog.Logger
}

// NewService wires the pipeline stages together.
func NewService(extractor intent.Extractor, resolver *discovery.Resolver,
	engine *discovery.Engine, ranker *ranking.Ranker, cfg *config.RankingConfig) *Service {
	return &Service{
		extractor: extractor,
		resolver:  resolver,
		engine:    engine,
		ranker:    ranker,
		cfg:       cfg,
		logger:    logging.Logger().With().Str("component", "search").Logger(),
	}
}

// Search turns a free-text query into an ordered ranked result list.
// countHint, when positive, overrides the count the intent extractor parsed
// from the query text. Cancellation returns ctx.Err().
func (s *Service) Search(ctx context.Context, query string, countHint int) (*Result, error) {
	start := time.Now()
	log := logging.Ctx(ctx).With().Str("component", "search").Logger()

	in, err := intent.ExtractOrDefault(ctx, s.extractor, query)
	if err != nil {
		if ctx.Err() != nil {
			return nil, s.cancelled(ctx, start)
		}
		metrics.IntentExtractionFailures.Inc()
		log.Warn().Err(err).Msg("intent extraction failed, using default intent")
	}
	log.Debug().Interface("intent", in).Str("state", string(StateIntentParsed)).Msg("intent parsed")

	log.Debug().Str("state", string(StateResolving)).
		Int("titles", len(in.Titles)).Int("people", len(in.People)).
		Msg("resolving names")
	res, err := s.resolver.Resolve(ctx, in)
	if err != nil {
		return nil, s.cancelled(ctx, start)
	}

	// A verified exact match answers a direct lookup by itself. Only a
	// suggestion query turns it into a discovery seed instead.
	if res.ExactMatch != nil && !in.RequestingSuggestions {
		result := &Result{
			Results: []models.RankedResult{{
				Candidate:      *res.ExactMatch,
				RelevanceScore: 1.0,
				Reasoning:      exactMatchReasoning,
			}},
			State:  StateExactLookup,
			Intent: in,
		}
		s.finish(log, start, StateExactLookup, 1)
		return result, nil
	}
	if res.ExactMatch != nil {
		res.Pool = append(res.Pool, *res.ExactMatch)
	}

	pool, signals, err := s.engine.Discover(ctx, in, res)
	if err != nil {
		return nil, s.cancelled(ctx, start)
	}
	log.Debug().Str("state", string(StateDiscovery)).
		Int("pool", len(pool)).Msg("discovery pool gathered")

	ranked := s.ranker.Rank(in, signals, pool)
	if err := ctx.Err(); err != nil {
		return nil, s.cancelled(ctx, start)
	}
	log.Debug().Str("state", string(StateRanked)).
		Int("ranked", len(ranked)).Msg("candidates ranked")

	ranked = s.truncate(ranked, in, countHint)
	s.finish(log, start, StateAssembled, len(ranked))
	return &Result{Results: ranked, State: StateAssembled, Intent: in}, nil
}

// truncate applies the result cap: an explicit hint wins, then the count
// parsed from the query, then the default. Everything is bounded by the
// configured maximum.
func (s *Service) truncate(ranked []models.RankedResult, in models.Intent, countHint int) []models.RankedResult {
	limit := s.cfg.DefaultCount
	switch {
	case countHint > 0:
		limit = countHint
	case in.RequestedCount != nil && *in.RequestedCount > 0:
		limit = *in.RequestedCount
	}
	if limit > s.cfg.MaxCount {
		limit = s.cfg.MaxCount
	}
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

func (s *Service) finish(log zerolog.Logger, start time.Time, state State, count int) {
	elapsed := time.Since(start)
	metrics.SearchOutcomes.WithLabelValues(string(state)).Inc()
	metrics.SearchDuration.WithLabelValues(string(state)).Observe(elapsed.Seconds())
	log.Info().
		Str("state", string(state)).
		Int("results", count).
		Dur("elapsed", elapsed).
		Msg("search complete")
}

// cancelled records the cancellation outcome and propagates the context
// error so callers can distinguish deadline expiry from client abort.
func (s *Service) cancelled(ctx context.Context, start time.Time) error {
	metrics.SearchOutcomes.WithLabelValues(string(StateCancelled)).Inc()
	metrics.SearchDuration.WithLabelValues(string(StateCancelled)).Observe(time.Since(start).Seconds())
	if err := ctx.Err(); err != nil {
		return err
	}
	return context.Canceled
}
