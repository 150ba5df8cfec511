// Reelquest - Natural-Language Media Discovery Engine
// Copyright 2026 Reelquest Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists where config files are searched, in priority order.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/reelquest/config.yaml",
	"/etc/reelquest/config.yml",
}

// ConfigPathEnvVar overrides the config file path when set.
const ConfigPathEnvVar = "REELQUEST_CONFIG"

// envPrefix namespaces all Reelquest environment variables.
const envPrefix = "REELQUEST_"

// Load loads configuration with layered sources (highest priority wins):
// environment variables > config file > built-in defaults.
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	// REELQUEST_TMDB_API_KEY -> tmdb.api_key, REELQUEST_SERVER_PORT ->
	// server.port, and so on. Unprefixed variables are ignored so random
	// environment state cannot pollute the config.
	if err := k.Load(env.Provider(envPrefix, ".", envTransform), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// envTransform maps REELQUEST_SECTION_SOME_KEY to section.some_key. The
// first underscore-delimited token selects the section; the remainder is the
// key, except for nested ranking weights which keep their own prefix.
func envTransform(key string) string {
	key = strings.ToLower(strings.TrimPrefix(key, envPrefix))

	// Explicit mappings for keys whose section or nesting is ambiguous
	// under the generic split.
	explicit := map[string]string{
		"ranking_weights_base":           "ranking.weights.base",
		"ranking_weights_genre_overlap":  "ranking.weights.genre_overlap",
		"ranking_weights_theme_overlap":  "ranking.weights.theme_overlap",
		"ranking_weights_people_overlap": "ranking.weights.people_overlap",
		"ranking_weights_year_proximity": "ranking.weights.year_proximity",
		"ranking_weights_language_match": "ranking.weights.language_match",
		"ranking_weights_runtime_match":  "ranking.weights.runtime_match",
		"ranking_weights_quality_signal": "ranking.weights.quality_signal",
	}
	if mapped, ok := explicit[key]; ok {
		return mapped
	}

	section, rest, found := strings.Cut(key, "_")
	if !found {
		return ""
	}
	switch section {
	case "server", "tmdb", "intent", "discovery", "ranking", "api", "logging":
		return section + "." + rest
	default:
		return ""
	}
}

// findConfigFile returns the first config file that exists, or "".
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// sliceConfigPaths lists config paths parsed as comma-separated slices when
// they arrive as strings from the environment.
var sliceConfigPaths = []string{
	"api.cors_origins",
}

func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		val := k.Get(path)
		strVal, ok := val.(string)
		if !ok || strVal == "" {
			continue
		}
		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) > 0 {
			if err := k.Set(path, trimmed); err != nil {
				return fmt.Errorf("failed to set %s: %w", path, err)
			}
		}
	}
	return nil
}
