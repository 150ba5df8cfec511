// Reelquest - Natural-Language Media Discovery Engine
// Copyright 2026 Reelquest Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

package logging

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

func TestInitAndLevelHelpers(t *testing.T) {
	var buf bytes.Buffer

	Init(Config{
		Level:  "debug",
		Format: "json",
		Output: &buf,
	})

	Debug().Msg("debug message")
	Info().Msg("info message")
	Warn().Msg("warn message")
	Error().Msg("error message")

	output := buf.String()
	for _, want := range []string{
		`"level":"debug"`,
		`"level":"info"`,
		`"level":"warn"`,
		`"level":"error"`,
		"warn message",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("expected output to contain %q, got: %s", want, output)
		}
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer

	Init(Config{
		Level:  "warn",
		Format: "json",
		Output: &buf,
	})

	Info().Msg("should be dropped")
	Warn().Msg("should be kept")

	output := buf.String()
	if strings.Contains(output, "should be dropped") {
		t.Errorf("info message logged at warn level: %s", output)
	}
	if !strings.Contains(output, "should be kept") {
		t.Errorf("warn message missing: %s", output)
	}
}

func TestCtxAttachesTraceID(t *testing.T) {
	var buf bytes.Buffer

	Init(Config{
		Level:  "debug",
		Format: "json",
		Output: &buf,
	})

	ctx := ContextWithTraceID(context.Background(), "trace-123")
	Ctx(ctx).Warn().Msg("annotated")

	output := buf.String()
	if !strings.Contains(output, `"trace_id":"trace-123"`) {
		t.Errorf("expected trace_id in output, got: %s", output)
	}
	if !strings.Contains(output, "annotated") {
		t.Errorf("expected message in output, got: %s", output)
	}
}

func TestCtxWithoutTraceID(t *testing.T) {
	var buf bytes.Buffer

	Init(Config{
		Level:  "debug",
		Format: "json",
		Output: &buf,
	})

	Ctx(context.Background()).Info().Msg("plain")

	output := buf.String()
	if strings.Contains(output, "trace_id") {
		t.Errorf("expected no trace_id without one in context, got: %s", output)
	}
}

func TestTraceIDRoundTrip(t *testing.T) {
	t.Parallel()

	id := GenerateTraceID()
	if id == "" {
		t.Fatal("GenerateTraceID returned empty string")
	}

	ctx := ContextWithTraceID(context.Background(), id)
	if got := TraceIDFromContext(ctx); got != id {
		t.Errorf("TraceIDFromContext = %q, want %q", got, id)
	}
	if got := TraceIDFromContext(context.Background()); got != "" {
		t.Errorf("TraceIDFromContext on empty context = %q, want empty", got)
	}
}
