// Fiscalis - Environmental Infraction Records API
// Copyright 2026 D. Ferraz (dferraz)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/dferraz/fiscalis

package logging

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestInitLevelFiltering(t *testing.T) {
	buf := &bytes.Buffer{}
	Init(Config{Level: "warn", Format: "json", Output: buf})
	defer Init(DefaultConfig())

	Info().Msg("should be filtered")
	Warn().Msg("should appear")

	out := buf.String()
	if strings.Contains(out, "should be filtered") {
		t.Error("info message logged despite warn level")
	}
	if !strings.Contains(out, "should appear") {
		t.Error("warn message missing from output")
	}
}

func TestCtxAttachesRequestID(t *testing.T) {
	buf := &bytes.Buffer{}
	SetLogger(NewTestLogger(buf))
	defer Init(DefaultConfig())

	ctx := ContextWithRequestID(context.Background(), "req-123")
	Ctx(ctx).Info().Msg("with id")

	if !strings.Contains(buf.String(), "req-123") {
		t.Errorf("output %q does not carry the request id", buf.String())
	}
}

func TestCtxWithoutRequestID(t *testing.T) {
	buf := &bytes.Buffer{}
	SetLogger(NewTestLogger(buf))
	defer Init(DefaultConfig())

	Ctx(context.Background()).Info().Msg("no id")

	if strings.Contains(buf.String(), "request_id") {
		t.Errorf("output %q carries an unexpected request id", buf.String())
	}
}

func TestRequestIDFromContext(t *testing.T) {
	if got := RequestIDFromContext(context.Background()); got != "" {
		t.Errorf("RequestIDFromContext() = %q, want empty for a bare context", got)
	}
	ctx := ContextWithRequestID(context.Background(), "abc")
	if got := RequestIDFromContext(ctx); got != "abc" {
		t.Errorf("RequestIDFromContext() = %q, want abc", got)
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  zerolog.Level
	}{
		{"trace", zerolog.TraceLevel},
		{"debug", zerolog.DebugLevel},
		{"info", zerolog.InfoLevel},
		{"WARN", zerolog.WarnLevel},
		{"warning", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"disabled", zerolog.Disabled},
		{"bogus", zerolog.InfoLevel},
	}
	for _, tt := range tests {
		if got := parseLevel(tt.input); got != tt.want {
			t.Errorf("parseLevel(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}
