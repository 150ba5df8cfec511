// Reelquest - Natural-Language Media Discovery Engine
// Copyright 2026 Reelquest Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

package ranking

import (
	"math"
	"strings"
	"testing"
	"time"

	"reelquest/internal/config"
	"reelquest/internal/models"
)

func testRankingConfig() *config.RankingConfig {
	return &config.RankingConfig{
		Weights: config.FactorWeights{
			Base:          1.0,
			GenreOverlap:  0.8,
			ThemeOverlap:  0.7,
			PeopleOverlap: 0.9,
			YearProximity: 0.5,
			LanguageMatch: 0.3,
			RuntimeMatch:  0.4,
			QualitySignal: 0.6,
		},
		YearDecayWindow: 10,
		RecentYears:     3,
		DefaultCount:    12,
		MaxCount:        50,
	}
}

func testRanker() *Ranker {
	r := NewRanker(testRankingConfig())
	r.now = func() time.Time { return time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC) }
	return r
}

func intPtr(n int) *int { return &n }

func movieCandidate(id int, source models.SourceConfidence) models.Candidate {
	return models.Candidate{
		Key:         models.CandidateKey{MediaType: models.MediaTypeMovie, CatalogID: id},
		Name:        "Candidate",
		VoteAverage: 7.0,
		VoteCount:   500,
		Year:        2015,
		Source:      source,
	}
}

func TestRankScoresStayInRange(t *testing.T) {
	r := testRanker()
	pool := []models.Candidate{
		movieCandidate(1, models.SourceExactMatch),
		movieCandidate(2, models.SourceGenreDiscovery),
	}
	pool[0].VoteAverage = 10
	pool[0].VoteCount = 100000

	ranked := r.Rank(models.Intent{}, models.QuerySignals{}, pool)
	for _, rr := range ranked {
		if rr.RelevanceScore < 0 || rr.RelevanceScore > 1 {
			t.Errorf("score %f out of [0,1]", rr.RelevanceScore)
		}
	}
}

func TestRankIsDeterministic(t *testing.T) {
	r := testRanker()
	pool := []models.Candidate{
		movieCandidate(3, models.SourceSimilar),
		movieCandidate(1, models.SourceGenreDiscovery),
		movieCandidate(2, models.SourceRecommendation),
	}
	in := models.Intent{Moods: []string{"dark"}}
	sig := models.QuerySignals{}

	first := r.Rank(in, sig, pool)
	second := r.Rank(in, sig, pool)
	if len(first) != len(second) {
		t.Fatalf("lengths differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].Candidate.Key != second[i].Candidate.Key {
			t.Errorf("order differs at %d", i)
		}
		if first[i].RelevanceScore != second[i].RelevanceScore {
			t.Errorf("score differs at %d", i)
		}
	}
}

func TestRankDropsZeroScoreCandidates(t *testing.T) {
	r := testRanker()

	// No source confidence, no signals, no votes, runtime over the ceiling:
	// every factor is zero.
	dead := models.Candidate{
		Key:            models.CandidateKey{MediaType: models.MediaTypeMovie, CatalogID: 1},
		RuntimeMinutes: 200,
		Source:         models.SourceNone,
	}
	alive := movieCandidate(2, models.SourceGenreDiscovery)

	in := models.Intent{RuntimeMaxMinutes: intPtr(90)}
	ranked := r.Rank(in, models.QuerySignals{}, []models.Candidate{dead, alive})

	for _, rr := range ranked {
		if rr.Candidate.Key.CatalogID == 1 {
			t.Error("zero-score candidate must be dropped")
		}
	}
	if len(ranked) != 1 {
		t.Fatalf("ranked length = %d, want 1", len(ranked))
	}
}

func TestRankRuntimeCeilingIsSoft(t *testing.T) {
	r := testRanker()

	over := movieCandidate(1, models.SourceGenreDiscovery)
	over.RuntimeMinutes = 150
	within := movieCandidate(2, models.SourceGenreDiscovery)
	within.RuntimeMinutes = 95
	unknown := movieCandidate(3, models.SourceGenreDiscovery)

	in := models.Intent{RuntimeMaxMinutes: intPtr(120)}
	ranked := r.Rank(in, models.QuerySignals{}, []models.Candidate{over, within, unknown})
	if len(ranked) != 3 {
		t.Fatalf("ranked length = %d, want all 3: over-ceiling candidates rank lower, not out", len(ranked))
	}
	if ranked[0].Candidate.Key.CatalogID != 2 {
		t.Errorf("first = %d, want the within-ceiling candidate", ranked[0].Candidate.Key.CatalogID)
	}
	if ranked[1].Candidate.Key.CatalogID != 3 {
		t.Errorf("second = %d, want the unknown-runtime candidate on neutral credit", ranked[1].Candidate.Key.CatalogID)
	}
	if ranked[2].Candidate.Key.CatalogID != 1 {
		t.Errorf("last = %d, want the over-ceiling candidate", ranked[2].Candidate.Key.CatalogID)
	}
}

func TestRankGenreOverlapMoodPartialCredit(t *testing.T) {
	r := testRanker()

	explicit := movieCandidate(1, models.SourceGenreDiscovery)
	explicit.AddGenreMatch(35)
	viaMood := movieCandidate(2, models.SourceGenreDiscovery)
	viaMood.AddGenreMatch(10751)
	viaMood.MoodMatched = true

	sig := models.QuerySignals{
		ExplicitGenreIDs: map[int]struct{}{35: {}},
		MoodGenreIDs:     map[int]struct{}{10751: {}},
	}
	ranked := r.Rank(models.Intent{}, sig, []models.Candidate{viaMood, explicit})
	if len(ranked) != 2 {
		t.Fatalf("ranked length = %d, want 2", len(ranked))
	}
	if ranked[0].Candidate.Key.CatalogID != 1 {
		t.Error("an explicit genre match must outrank an equal mood-mapped match")
	}
	if ranked[1].RelevanceScore >= ranked[0].RelevanceScore {
		t.Error("mood credit must be partial, not equal")
	}
	if ranked[1].RelevanceScore <= 0 {
		t.Error("mood credit must still be positive")
	}

	// The candidates differ only in genre credit: 1.0 explicit vs the 0.7
	// mood credit, over the two requested genre ids, weighted and normalized
	// over the weight sum.
	cfg := testRankingConfig()
	wantDelta := (1.0 - moodCredit) / float64(sig.GenreCount()) *
		cfg.Weights.GenreOverlap / cfg.Weights.Sum()
	delta := ranked[0].RelevanceScore - ranked[1].RelevanceScore
	if math.Abs(delta-wantDelta) > 1e-9 {
		t.Errorf("score delta = %v, want %v", delta, wantDelta)
	}
}

func TestRankYearProximityDecay(t *testing.T) {
	r := testRanker()

	inRange := movieCandidate(1, models.SourceGenreDiscovery)
	inRange.Year = 1995
	near := movieCandidate(2, models.SourceGenreDiscovery)
	near.Year = 2003 // 4 years past the range
	far := movieCandidate(3, models.SourceGenreDiscovery)
	far.Year = 2015 // past the decay window

	in := models.Intent{YearFrom: intPtr(1990), YearTo: intPtr(1999)}
	ranked := r.Rank(in, models.QuerySignals{}, []models.Candidate{far, near, inRange})

	if ranked[0].Candidate.Year != 1995 {
		t.Errorf("first year = %d, want the in-range 1995", ranked[0].Candidate.Year)
	}
	if ranked[1].Candidate.Year != 2003 {
		t.Errorf("second year = %d, want the near-range 2003", ranked[1].Candidate.Year)
	}
}

func TestRankTieBreaks(t *testing.T) {
	r := testRanker()

	// Vote counts past 500 saturate the quality factor, so these two score
	// identically and only the tie-break separates them.
	popular := movieCandidate(10, models.SourceGenreDiscovery)
	popular.VoteCount = 1000
	lessPopular := movieCandidate(2, models.SourceGenreDiscovery)
	lessPopular.VoteCount = 600

	ranked := r.Rank(models.Intent{}, models.QuerySignals{}, []models.Candidate{lessPopular, popular})
	if len(ranked) != 2 {
		t.Fatalf("ranked length = %d, want 2", len(ranked))
	}
	if ranked[0].RelevanceScore != ranked[1].RelevanceScore {
		t.Fatalf("expected a score tie, got %f vs %f", ranked[0].RelevanceScore, ranked[1].RelevanceScore)
	}
	if ranked[0].Candidate.VoteCount != 1000 {
		t.Error("equal scores must order by vote count descending")
	}

	// A confidence gap outranks a vote-count gap.
	similar := movieCandidate(5, models.SourceSimilar)
	similar.VoteCount = 600
	ranked = r.Rank(models.Intent{}, models.QuerySignals{}, []models.Candidate{popular, similar})
	if ranked[0].Candidate.Source != models.SourceSimilar {
		t.Error("higher source confidence must rank first")
	}
}

func TestRankReasoningFormat(t *testing.T) {
	r := testRanker()

	cand := movieCandidate(1, models.SourceSimilar)
	cand.AddGenreMatch(35)
	cand.VoteAverage = 8.5
	cand.VoteCount = 12000

	sig := models.QuerySignals{ExplicitGenreIDs: map[int]struct{}{35: {}}}
	ranked := r.Rank(models.Intent{Genres: []string{"comedy"}}, sig, []models.Candidate{cand})
	if len(ranked) != 1 {
		t.Fatalf("ranked length = %d, want 1", len(ranked))
	}

	reasoning := ranked[0].Reasoning
	if !strings.HasPrefix(reasoning, "Because ") {
		t.Errorf("reasoning %q must start with \"Because \"", reasoning)
	}
	if !strings.HasSuffix(reasoning, ".") {
		t.Errorf("reasoning %q must end with a period", reasoning)
	}
	if !strings.Contains(reasoning, "genres") {
		t.Errorf("reasoning %q should mention the genre match", reasoning)
	}
}
