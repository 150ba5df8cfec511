// Reelquest - Natural-Language Media Discovery Engine
// Copyright 2026 Reelquest Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

package intent

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/goccy/go-json"

	"reelquest/internal/config"
	"reelquest/internal/models"
)

// systemPrompt instructs the model to emit only the intent JSON object.
const systemPrompt = `You extract structured intent from natural-language movie and TV queries.
Respond with ONLY a JSON object, no prose, using this schema:
{
  "titles": [string],            // explicitly named titles, in order
  "people": [string],            // named actors, directors, creators
  "genres": [string],            // explicit genre names
  "moods": [string],             // tonal cues like "feel-good", "dark"
  "year_from": int|null,
  "year_to": int|null,
  "runtime_max_minutes": int|null,
  "media_types": [string],       // subset of ["movie","show"], empty = both
  "requested_count": int|null,
  "language": string,            // ISO 639-1 preference, "" = none
  "requesting_suggestions": bool // true when the user wants recommendations
}`

// LLMExtractor implements Extractor against any OpenAI-compatible
// chat-completions endpoint.
type LLMExtractor struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
}

// NewLLMExtractor creates an extractor from configuration.
func NewLLMExtractor(cfg *config.IntentConfig) *LLMExtractor {
	return &LLMExtractor{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// ExtractIntent sends the query to the model and parses the JSON reply.
func (e *LLMExtractor) ExtractIntent(ctx context.Context, query string) (models.Intent, error) {
	payload, err := json.Marshal(chatRequest{
		Model: e.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: query},
		},
		Temperature: 0,
	})
	if err != nil {
		return models.Intent{}, fmt.Errorf("%w: marshal request: %v", ErrExtraction, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		e.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return models.Intent{}, fmt.Errorf("%w: create request: %v", ErrExtraction, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if e.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+e.apiKey)
	}

	resp, err := e.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return models.Intent{}, ctx.Err()
		}
		return models.Intent{}, fmt.Errorf("%w: %v", ErrExtraction, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return models.Intent{}, fmt.Errorf("%w: read response: %v", ErrExtraction, err)
	}
	if resp.StatusCode != http.StatusOK {
		return models.Intent{}, fmt.Errorf("%w: provider returned status %d", ErrExtraction, resp.StatusCode)
	}

	var chat chatResponse
	if err := json.Unmarshal(body, &chat); err != nil {
		return models.Intent{}, fmt.Errorf("%w: decode response: %v", ErrExtraction, err)
	}
	if len(chat.Choices) == 0 {
		return models.Intent{}, fmt.Errorf("%w: empty completion", ErrExtraction)
	}

	return parseIntentJSON(chat.Choices[0].Message.Content)
}

// parseIntentJSON parses the model output, tolerating fenced code blocks and
// leading prose around the JSON object.
func parseIntentJSON(content string) (models.Intent, error) {
	raw := extractJSONObject(content)
	if raw == "" {
		return models.Intent{}, fmt.Errorf("%w: no JSON object in completion", ErrExtraction)
	}

	var in models.Intent
	if err := json.Unmarshal([]byte(raw), &in); err != nil {
		return models.Intent{}, fmt.Errorf("%w: malformed intent JSON: %v", ErrExtraction, err)
	}

	in = sanitizeIntent(in)
	return in, nil
}

// extractJSONObject returns the first balanced {...} block in the content.
func extractJSONObject(content string) string {
	start := strings.IndexByte(content, '{')
	if start < 0 {
		return ""
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(content); i++ {
		c := content[i]
		switch {
		case escaped:
			escaped = false
		case c == '\\' && inString:
			escaped = true
		case c == '"':
			inString = !inString
		case inString:
		case c == '{':
			depth++
		case c == '}':
			depth--
			if depth == 0 {
				return content[start : i+1]
			}
		}
	}
	return ""
}

// sanitizeIntent drops values the model should not have produced.
func sanitizeIntent(in models.Intent) models.Intent {
	if in.RequestedCount != nil && *in.RequestedCount < 1 {
		in.RequestedCount = nil
	}
	if in.RuntimeMaxMinutes != nil && *in.RuntimeMaxMinutes < 1 {
		in.RuntimeMaxMinutes = nil
	}
	if in.YearFrom != nil && in.YearTo != nil && *in.YearFrom > *in.YearTo {
		in.YearFrom, in.YearTo = in.YearTo, in.YearFrom
	}

	valid := in.MediaTypes[:0]
	for _, mt := range in.MediaTypes {
		if parsed, ok := models.ParseMediaType(string(mt)); ok {
			valid = append(valid, parsed)
		}
	}
	in.MediaTypes = valid
	return in
}
