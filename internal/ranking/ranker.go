// Reelquest - Natural-Language Media Discovery Engine
// Copyright 2026 Reelquest Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ranking scores merged candidates with a weighted multi-factor
// model and renders a short natural-language justification per result.
// Ranking is a pure function of the gathered signals: identical inputs
// always yield an identical ordered output.
package ranking

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"reelquest/internal/config"
	"reelquest/internal/models"
)

// moodCredit is the partial credit a genre match earns when it arrived via
// mood mapping instead of an explicit genre.
const moodCredit = 0.7

// recentBoost is the flat year-proximity value granted to recent releases
// when the query named no year range.
const recentBoost = 0.3

// unknownRuntimeCredit is the neutral value used when a runtime ceiling was
// requested but the candidate's runtime is unknown.
const unknownRuntimeCredit = 0.5

// factor identifies one term of the weighted model.
type factor int

const (
	factorBase factor = iota
	factorGenreOverlap
	factorThemeOverlap
	factorPeopleOverlap
	factorYearProximity
	factorLanguageMatch
	factorRuntimeMatch
	factorQualitySignal
	factorCount
)

// Ranker computes relevance scores and reasoning strings.
type Ranker struct {
	cfg *config.RankingConfig

	// now is injectable so recency scoring stays deterministic in tests.
	now func() time.Time
}

// NewRanker creates a ranker using the configured factor weights.
func NewRanker(cfg *config.RankingConfig) *Ranker {
	return &Ranker{cfg: cfg, now: time.Now}
}

// Rank scores every candidate against the intent and signals, drops
// candidates whose score rounds to zero at three decimals, and returns the
// survivors in final presentation order.
func (r *Ranker) Rank(in models.Intent, sig models.QuerySignals, pool []models.Candidate) []models.RankedResult {
	themeTokens := r.themeTokens(in)

	results := make([]models.RankedResult, 0, len(pool))
	for i := range pool {
		cand := pool[i]
		factors := r.scoreFactors(in, sig, themeTokens, &cand)
		score := r.relevance(factors)
		if math.Round(score*1000) == 0 {
			continue
		}
		results = append(results, models.RankedResult{
			Candidate:      cand,
			RelevanceScore: score,
			Reasoning:      r.reasoning(factors, &cand, in),
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		a, b := results[i], results[j]
		if a.RelevanceScore != b.RelevanceScore {
			return a.RelevanceScore > b.RelevanceScore
		}
		if ao, bo := a.Candidate.Source.Ordinal(), b.Candidate.Source.Ordinal(); ao != bo {
			return ao > bo
		}
		if a.Candidate.VoteCount != b.Candidate.VoteCount {
			return a.Candidate.VoteCount > b.Candidate.VoteCount
		}
		// Final tie-break on identity keeps the order fully deterministic.
		if a.Candidate.Key.MediaType != b.Candidate.Key.MediaType {
			return a.Candidate.Key.MediaType < b.Candidate.Key.MediaType
		}
		return a.Candidate.Key.CatalogID < b.Candidate.Key.CatalogID
	})

	return results
}

// themeTokens derives the token set theme overlap measures against: every
// genre and mood keyword the intent carries, tokenized like overview text.
func (r *Ranker) themeTokens(in models.Intent) map[string]struct{} {
	return tokenize(strings.Join(append(append([]string{}, in.Genres...), in.Moods...), " "))
}

// scoreFactors evaluates every model factor for one candidate.
func (r *Ranker) scoreFactors(in models.Intent, sig models.QuerySignals, themeTokens map[string]struct{}, cand *models.Candidate) [factorCount]float64 {
	var f [factorCount]float64
	f[factorBase] = cand.Source.Normalized()
	f[factorGenreOverlap] = genreOverlap(sig, cand)
	f[factorThemeOverlap] = overlapRatio(themeTokens, tokenize(cand.Overview))
	f[factorPeopleOverlap] = peopleOverlap(sig, cand)
	f[factorYearProximity] = r.yearProximity(in, cand)
	f[factorLanguageMatch] = languageMatch(in, cand)
	f[factorRuntimeMatch] = runtimeMatch(in, cand)
	f[factorQualitySignal] = qualitySignal(cand)
	return f
}

// relevance folds the factors into the normalized weighted score.
func (r *Ranker) relevance(f [factorCount]float64) float64 {
	w := r.cfg.Weights
	score := f[factorBase]*w.Base +
		f[factorGenreOverlap]*w.GenreOverlap +
		f[factorThemeOverlap]*w.ThemeOverlap +
		f[factorPeopleOverlap]*w.PeopleOverlap +
		f[factorYearProximity]*w.YearProximity +
		f[factorLanguageMatch]*w.LanguageMatch +
		f[factorRuntimeMatch]*w.RuntimeMatch +
		f[factorQualitySignal]*w.QualitySignal

	normalized := score / w.Sum()
	return math.Max(0, math.Min(1, normalized))
}

// genreOverlap gives full credit for explicitly requested genres and partial
// credit for mood-mapped ones, over the total requested genre count.
func genreOverlap(sig models.QuerySignals, cand *models.Candidate) float64 {
	total := sig.GenreCount()
	if total == 0 {
		return 0
	}
	credit := 0.0
	for id := range cand.MatchedGenreIDs {
		if _, ok := sig.ExplicitGenreIDs[id]; ok {
			credit += 1.0
		} else if _, ok := sig.MoodGenreIDs[id]; ok {
			credit += moodCredit
		}
	}
	return credit / float64(total)
}

func peopleOverlap(sig models.QuerySignals, cand *models.Candidate) float64 {
	if len(sig.PersonIDs) == 0 {
		return 0
	}
	matched := 0
	for id := range cand.MatchedPersonIDs {
		if _, ok := sig.PersonIDs[id]; ok {
			matched++
		}
	}
	return float64(matched) / float64(len(sig.PersonIDs))
}

// yearProximity is 1.0 inside the requested range and decays linearly to
// zero across the configured window outside it. Year constraints are soft:
// out-of-window candidates score zero here but are not excluded. Without a
// requested range, recent releases get a small flat boost.
func (r *Ranker) yearProximity(in models.Intent, cand *models.Candidate) float64 {
	if !in.HasYearRange() {
		if cand.Year != 0 && r.now().Year()-cand.Year <= r.cfg.RecentYears {
			return recentBoost
		}
		return 0
	}
	if cand.Year == 0 {
		return 0
	}

	distance := 0
	if in.YearFrom != nil && cand.Year < *in.YearFrom {
		distance = *in.YearFrom - cand.Year
	} else if in.YearTo != nil && cand.Year > *in.YearTo {
		distance = cand.Year - *in.YearTo
	}
	if distance == 0 {
		return 1.0
	}
	if distance >= r.cfg.YearDecayWindow {
		return 0
	}
	return 1.0 - float64(distance)/float64(r.cfg.YearDecayWindow)
}

func languageMatch(in models.Intent, cand *models.Candidate) float64 {
	if in.Language != "" && strings.EqualFold(in.Language, cand.OriginalLanguage) {
		return 1.0
	}
	return 0
}

// runtimeMatch treats the requested ceiling as a soft factor: a known
// runtime over the ceiling scores zero rather than excluding the candidate.
func runtimeMatch(in models.Intent, cand *models.Candidate) float64 {
	if in.RuntimeMaxMinutes == nil {
		return unknownRuntimeCredit
	}
	if cand.RuntimeMinutes == 0 {
		return unknownRuntimeCredit
	}
	if cand.RuntimeMinutes <= *in.RuntimeMaxMinutes {
		return 1.0
	}
	return 0
}

func qualitySignal(cand *models.Candidate) float64 {
	return 0.7*(cand.VoteAverage/10.0) + 0.3*math.Min(float64(cand.VoteCount)/500.0, 1.0)
}

// reasoning renders the two or three highest-weighted non-zero factor
// contributions as a "Because ..." sentence.
func (r *Ranker) reasoning(f [factorCount]float64, cand *models.Candidate, in models.Intent) string {
	weights := [factorCount]float64{
		factorBase:          r.cfg.Weights.Base,
		factorGenreOverlap:  r.cfg.Weights.GenreOverlap,
		factorThemeOverlap:  r.cfg.Weights.ThemeOverlap,
		factorPeopleOverlap: r.cfg.Weights.PeopleOverlap,
		factorYearProximity: r.cfg.Weights.YearProximity,
		factorLanguageMatch: r.cfg.Weights.LanguageMatch,
		factorRuntimeMatch:  r.cfg.Weights.RuntimeMatch,
		factorQualitySignal: r.cfg.Weights.QualitySignal,
	}

	type contribution struct {
		factor factor
		value  float64
	}
	contribs := make([]contribution, 0, factorCount)
	for i := factor(0); i < factorCount; i++ {
		// The neutral runtime credit is a scoring convention, not something
		// the user asked for; keep it out of the explanation.
		if i == factorRuntimeMatch && (in.RuntimeMaxMinutes == nil || cand.RuntimeMinutes == 0) {
			continue
		}
		if v := f[i] * weights[i]; v > 0 {
			contribs = append(contribs, contribution{factor: i, value: v})
		}
	}
	sort.SliceStable(contribs, func(i, j int) bool {
		return contribs[i].value > contribs[j].value
	})
	if len(contribs) == 0 {
		return "Because it broadly fits your request."
	}

	// Different factors can phrase identically (a person-search base and the
	// people-overlap factor, for instance); keep each phrase once.
	seen := make(map[string]struct{}, 3)
	phrases := make([]string, 0, 3)
	for _, c := range contribs {
		phrase := factorPhrase(c.factor, cand, in)
		if _, dup := seen[phrase]; dup {
			continue
		}
		seen[phrase] = struct{}{}
		phrases = append(phrases, phrase)
		if len(phrases) == 3 {
			break
		}
	}

	switch len(phrases) {
	case 1:
		return fmt.Sprintf("Because %s.", phrases[0])
	case 2:
		return fmt.Sprintf("Because %s and %s.", phrases[0], phrases[1])
	default:
		return fmt.Sprintf("Because %s, %s, and %s.", phrases[0], phrases[1], phrases[2])
	}
}

func factorPhrase(fa factor, cand *models.Candidate, in models.Intent) string {
	switch fa {
	case factorBase:
		switch cand.Source {
		case models.SourceExactMatch, models.SourceMultiSearchExact:
			return "it closely matches a title you named"
		case models.SourceSimilar:
			return "it is similar to a title you named"
		case models.SourceRecommendation:
			return "it is recommended alongside a title you named"
		case models.SourcePersonSearch:
			return "it features people you mentioned"
		default:
			return "it is a popular pick for your request"
		}
	case factorGenreOverlap:
		if cand.MoodMatched && len(in.Genres) == 0 {
			return "it fits the mood you asked for"
		}
		return "it matches your genres"
	case factorThemeOverlap:
		return "its story fits your themes"
	case factorPeopleOverlap:
		return "it features people you mentioned"
	case factorYearProximity:
		if in.HasYearRange() {
			return "it is from the era you asked for"
		}
		return "it is a recent release"
	case factorLanguageMatch:
		return "it is in your preferred language"
	case factorRuntimeMatch:
		return "it fits your runtime limit"
	case factorQualitySignal:
		return "it is highly rated"
	default:
		return "it fits your request"
	}
}
