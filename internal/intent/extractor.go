// Reelquest - Natural-Language Media Discovery Engine
// Copyright 2026 Reelquest Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package intent adapts an opaque natural-language model into structured
// query intents. The model is an external collaborator: a parse failure
// degrades to an unconstrained discovery search, never an aborted request.
package intent

import (
	"context"
	"errors"

	"reelquest/internal/models"
)

// ErrExtraction wraps any extractor failure so callers can distinguish
// recoverable extraction problems from cancellation.
var ErrExtraction = errors.New("intent extraction failed")

// Extractor converts raw query text into a structured Intent.
type Extractor interface {
	// ExtractIntent parses the query. Implementations must return
	// ctx.Err() unwrapped on cancellation; any other failure is wrapped
	// in ErrExtraction.
	ExtractIntent(ctx context.Context, query string) (models.Intent, error)
}

// ExtractOrDefault runs the extractor, substituting the default intent on
// any failure except cancellation, which propagates untouched.
func ExtractOrDefault(ctx context.Context, e Extractor, query string) (models.Intent, error) {
	in, err := e.ExtractIntent(ctx, query)
	if err == nil {
		return in, nil
	}
	if ctx.Err() != nil {
		return models.Intent{}, ctx.Err()
	}
	return models.DefaultIntent(), err
}
