// Touriscope - Smart Tourism Analytics and PLS-SEM Modeling
// Copyright 2026 M. Redondo (mredondo)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mredondo/touriscope

package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zerolog.Level
	}{
		{"trace", zerolog.TraceLevel},
		{"debug", zerolog.DebugLevel},
		{"info", zerolog.InfoLevel},
		{"warn", zerolog.WarnLevel},
		{"warning", zerolog.WarnLevel},
		{"ERROR", zerolog.ErrorLevel},
		{"fatal", zerolog.FatalLevel},
		{"disabled", zerolog.Disabled},
		{"", zerolog.InfoLevel},
		{"bogus", zerolog.InfoLevel},
	}
	for _, tt := range tests {
		if got := parseLevel(tt.in); got != tt.want {
			t.Errorf("parseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestInit_JSONOutput(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: "debug", Format: "json", Output: &buf, Timestamp: true})
	defer Init(DefaultConfig())

	Info().Str("region", "Canarias").Msg("collection finished")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, buf.String())
	}
	if entry["level"] != "info" || entry["region"] != "Canarias" {
		t.Errorf("unexpected entry: %v", entry)
	}
	if _, ok := entry["time"]; !ok {
		t.Error("timestamp field missing")
	}
}

func TestCtx_CarriesIDs(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: "debug", Output: &buf})
	defer Init(DefaultConfig())

	ctx := ContextWithCorrelationID(context.Background(), "abcd1234")
	ctx = ContextWithRequestID(ctx, "req-1")

	Ctx(ctx).Info().Msg("hello")

	out := buf.String()
	if !strings.Contains(out, `"correlation_id":"abcd1234"`) {
		t.Errorf("correlation ID missing from %s", out)
	}
	if !strings.Contains(out, `"request_id":"req-1"`) {
		t.Errorf("request ID missing from %s", out)
	}

	if got := CorrelationIDFromContext(context.Background()); got != "" {
		t.Errorf("empty context returned correlation ID %q", got)
	}
}

func TestGenerateCorrelationID_Length(t *testing.T) {
	if id := GenerateCorrelationID(); len(id) != 8 {
		t.Errorf("correlation ID %q has length %d, want 8", id, len(id))
	}
}

func TestSlogHandler_RoutesThroughZerolog(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: "debug", Output: &buf})
	defer Init(DefaultConfig())

	slogger := slog.New(NewSlogHandler())
	slogger.Warn("supervisor restart", slog.String("service", "collector"), slog.Int("attempt", 2))

	out := buf.String()
	if !strings.Contains(out, `"level":"warn"`) {
		t.Errorf("warn level missing from %s", out)
	}
	if !strings.Contains(out, `"service":"collector"`) || !strings.Contains(out, `"attempt":2`) {
		t.Errorf("attributes missing from %s", out)
	}
}

func TestSlogHandler_Groups(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: "debug", Output: &buf})
	defer Init(DefaultConfig())

	slogger := slog.New(NewSlogHandler()).WithGroup("job")
	slogger.Info("done", slog.String("name", "analysis"))

	if !strings.Contains(buf.String(), `"job.name":"analysis"`) {
		t.Errorf("group prefix missing from %s", buf.String())
	}
}
