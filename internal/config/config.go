// Reelquest - Natural-Language Media Discovery Engine
// Copyright 2026 Reelquest Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config loads and validates Reelquest configuration via Koanf v2
// with layered sources: built-in defaults, an optional YAML config file, and
// environment variables (highest priority).
package config

import (
	"fmt"
	"time"
)

// Config is the root configuration for the Reelquest server.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	TMDB      TMDBConfig      `koanf:"tmdb"`
	Intent    IntentConfig    `koanf:"intent"`
	Discovery DiscoveryConfig `koanf:"discovery"`
	Ranking   RankingConfig   `koanf:"ranking"`
	API       APIConfig       `koanf:"api"`
	Logging   LoggingConfig   `koanf:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	Environment     string        `koanf:"environment"`
}

// TMDBConfig holds catalog client settings.
type TMDBConfig struct {
	BaseURL string        `koanf:"base_url"`
	APIKey  string        `koanf:"api_key"`
	Timeout time.Duration `koanf:"timeout"`

	// RateLimitRequests per RateLimitWindow bounds all catalog calls through
	// a shared limiter. The public TMDB quota is roughly 40 requests per
	// 10-second window.
	RateLimitRequests int           `koanf:"rate_limit_requests"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`

	// Circuit breaker thresholds.
	BreakerMinRequests  uint32        `koanf:"breaker_min_requests"`
	BreakerFailureRatio float64       `koanf:"breaker_failure_ratio"`
	BreakerOpenTimeout  time.Duration `koanf:"breaker_open_timeout"`

	// GenreCacheTTL bounds how long the genre-name map is memoized.
	GenreCacheTTL time.Duration `koanf:"genre_cache_ttl"`
}

// IntentConfig holds intent-extractor settings. The extractor speaks the
// OpenAI-compatible chat-completions protocol so any conforming endpoint
// (hosted or local) can serve it.
type IntentConfig struct {
	BaseURL string        `koanf:"base_url"`
	APIKey  string        `koanf:"api_key"`
	Model   string        `koanf:"model"`
	Timeout time.Duration `koanf:"timeout"`
}

// DiscoveryConfig holds candidate-gathering settings.
type DiscoveryConfig struct {
	// MinVoteCount is the quality floor for discover queries; entries with
	// fewer votes are suppressed as unreliable long tail.
	MinVoteCount int `koanf:"min_vote_count"`

	// PageSize caps how many hits each source contributes.
	PageSize int `koanf:"page_size"`

	// ExactMatchThreshold is the title-similarity floor for an exact match.
	ExactMatchThreshold float64 `koanf:"exact_match_threshold"`

	// PersonMatchThreshold is the name-similarity floor for resolving people.
	PersonMatchThreshold float64 `koanf:"person_match_threshold"`
}

// RankingConfig holds ranker settings. Weights live here so they can be
// retuned without touching pipeline logic.
type RankingConfig struct {
	Weights FactorWeights `koanf:"weights"`

	// YearDecayWindow is how many years outside the requested range the
	// year-proximity factor takes to decay to zero.
	YearDecayWindow int `koanf:"year_decay_window"`

	// RecentYears is the window treated as "recent" when no year was
	// requested; such releases get a small flat boost.
	RecentYears int `koanf:"recent_years"`

	// DefaultCount is the result cap when the query names no count.
	DefaultCount int `koanf:"default_count"`

	// MaxCount is the hard cap on requested result counts.
	MaxCount int `koanf:"max_count"`
}

// FactorWeights defines the relative contribution of each ranking factor.
// These are literal tunable constants (spec'd defaults in DefaultConfig);
// the ranker normalizes by their sum.
type FactorWeights struct {
	Base          float64 `koanf:"base"`
	GenreOverlap  float64 `koanf:"genre_overlap"`
	ThemeOverlap  float64 `koanf:"theme_overlap"`
	PeopleOverlap float64 `koanf:"people_overlap"`
	YearProximity float64 `koanf:"year_proximity"`
	LanguageMatch float64 `koanf:"language_match"`
	RuntimeMatch  float64 `koanf:"runtime_match"`
	QualitySignal float64 `koanf:"quality_signal"`
}

// Sum returns the total of all factor weights.
func (w FactorWeights) Sum() float64 {
	return w.Base + w.GenreOverlap + w.ThemeOverlap + w.PeopleOverlap +
		w.YearProximity + w.LanguageMatch + w.RuntimeMatch + w.QualitySignal
}

// ToMap returns the weights keyed by factor name, for logging and reasoning.
func (w FactorWeights) ToMap() map[string]float64 {
	return map[string]float64{
		"base":           w.Base,
		"genre_overlap":  w.GenreOverlap,
		"theme_overlap":  w.ThemeOverlap,
		"people_overlap": w.PeopleOverlap,
		"year_proximity": w.YearProximity,
		"language_match": w.LanguageMatch,
		"runtime_match":  w.RuntimeMatch,
		"quality_signal": w.QualitySignal,
	}
}

// APIConfig holds edge settings for the HTTP surface.
type APIConfig struct {
	RateLimitRequests int           `koanf:"rate_limit_requests"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	CORSOrigins       []string      `koanf:"cors_origins"`
	MaxQueryLength    int           `koanf:"max_query_length"`
}

// LoggingConfig holds logger settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// defaultConfig returns a Config with all sensible default values. Defaults
// are applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8460,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			Environment:     "development",
		},
		TMDB: TMDBConfig{
			BaseURL:             "https://api.themoviedb.org/3",
			APIKey:              "",
			Timeout:             15 * time.Second,
			RateLimitRequests:   40,
			RateLimitWindow:     10 * time.Second,
			BreakerMinRequests:  10,
			BreakerFailureRatio: 0.6,
			BreakerOpenTimeout:  2 * time.Minute,
			GenreCacheTTL:       24 * time.Hour,
		},
		Intent: IntentConfig{
			BaseURL: "https://api.openai.com/v1",
			APIKey:  "",
			Model:   "gpt-4o-mini",
			Timeout: 20 * time.Second,
		},
		Discovery: DiscoveryConfig{
			MinVoteCount:         50,
			PageSize:             20,
			ExactMatchThreshold:  0.9,
			PersonMatchThreshold: 0.6,
		},
		Ranking: RankingConfig{
			Weights: FactorWeights{
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
		},
		API: APIConfig{
			RateLimitRequests: 100,
			RateLimitWindow:   time.Minute,
			CORSOrigins:       []string{},
			MaxQueryLength:    500,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be in 1..65535, got %d", c.Server.Port)
	}
	if c.TMDB.BaseURL == "" {
		return fmt.Errorf("tmdb.base_url must not be empty")
	}
	if c.TMDB.RateLimitRequests < 1 {
		return fmt.Errorf("tmdb.rate_limit_requests must be positive, got %d", c.TMDB.RateLimitRequests)
	}
	if c.TMDB.RateLimitWindow <= 0 {
		return fmt.Errorf("tmdb.rate_limit_window must be positive, got %v", c.TMDB.RateLimitWindow)
	}
	if c.TMDB.BreakerFailureRatio <= 0 || c.TMDB.BreakerFailureRatio > 1 {
		return fmt.Errorf("tmdb.breaker_failure_ratio must be in (0, 1], got %f", c.TMDB.BreakerFailureRatio)
	}
	if c.Discovery.MinVoteCount < 0 {
		return fmt.Errorf("discovery.min_vote_count must be non-negative, got %d", c.Discovery.MinVoteCount)
	}
	if c.Discovery.ExactMatchThreshold <= 0 || c.Discovery.ExactMatchThreshold > 1 {
		return fmt.Errorf("discovery.exact_match_threshold must be in (0, 1], got %f", c.Discovery.ExactMatchThreshold)
	}
	if err := validateWeights(c.Ranking.Weights); err != nil {
		return err
	}
	if c.Ranking.DefaultCount < 1 {
		return fmt.Errorf("ranking.default_count must be positive, got %d", c.Ranking.DefaultCount)
	}
	if c.Ranking.MaxCount < c.Ranking.DefaultCount {
		return fmt.Errorf("ranking.max_count must be >= ranking.default_count, got %d < %d",
			c.Ranking.MaxCount, c.Ranking.DefaultCount)
	}
	if c.API.MaxQueryLength < 1 {
		return fmt.Errorf("api.max_query_length must be positive, got %d", c.API.MaxQueryLength)
	}
	return nil
}

func validateWeights(w FactorWeights) error {
	for name, v := range w.ToMap() {
		if v < 0 {
			return fmt.Errorf("ranking.weights.%s must be non-negative, got %f", name, v)
		}
	}
	if w.Sum() == 0 {
		return fmt.Errorf("ranking.weights must not all be zero")
	}
	return nil
}
