// ProcureRec - Procurement Recommendation and Bundle Assembly Engine
// Copyright 2026 ProcureHQ
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/procurehq/procurerec

package logging

import (
	"bytes"
	"strings"
	"testing"

	json "github.com/goccy/go-json"
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
		{"error", zerolog.ErrorLevel},
		{"disabled", zerolog.Disabled},
		{"DEBUG", zerolog.DebugLevel},
		{"bogus", zerolog.InfoLevel},
		{"", zerolog.InfoLevel},
	}
	for _, tt := range tests {
		if got := parseLevel(tt.in); got != tt.want {
			t.Errorf("parseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestInitJSONOutput(t *testing.T) {
	defer Init(DefaultConfig())

	var buf bytes.Buffer
	Init(Config{Level: "debug", Format: "json", Output: &buf})

	Info().Str("component", "test").Msg("hello")

	var event map[string]any
	if err := json.Unmarshal(buf.Bytes(), &event); err != nil {
		t.Fatalf("output is not JSON: %v (%q)", err, buf.String())
	}
	if event["message"] != "hello" || event["component"] != "test" {
		t.Errorf("event = %v", event)
	}
	if _, ok := event["time"]; !ok {
		t.Error("event missing timestamp")
	}
}

func TestInitLevelFilter(t *testing.T) {
	defer Init(DefaultConfig())

	var buf bytes.Buffer
	Init(Config{Level: "error", Output: &buf})

	Info().Msg("filtered")
	if buf.Len() != 0 {
		t.Errorf("info event leaked past error level: %q", buf.String())
	}

	Error().Msg("kept")
	if !strings.Contains(buf.String(), "kept") {
		t.Errorf("error event missing: %q", buf.String())
	}
}

func TestInitConsoleFormat(t *testing.T) {
	defer Init(DefaultConfig())

	var buf bytes.Buffer
	Init(Config{Level: "info", Format: "console", Output: &buf})

	Info().Msg("console line")
	out := buf.String()
	if strings.HasPrefix(strings.TrimSpace(out), "{") {
		t.Errorf("console format produced JSON: %q", out)
	}
	if !strings.Contains(out, "console line") {
		t.Errorf("message missing from console output: %q", out)
	}
}

func TestSetLogger(t *testing.T) {
	defer Init(DefaultConfig())

	var buf bytes.Buffer
	SetLogger(NewTestLogger(&buf))

	Info().Msg("injected")
	if !strings.Contains(buf.String(), "injected") {
		t.Errorf("replaced logger not used: %q", buf.String())
	}
}

func TestWithAddsFields(t *testing.T) {
	defer Init(DefaultConfig())

	var buf bytes.Buffer
	Init(Config{Level: "info", Output: &buf})

	child := With().Str("service", "engine").Logger()
	child.Info().Msg("scoped")

	if !strings.Contains(buf.String(), `"service":"engine"`) {
		t.Errorf("child logger fields missing: %q", buf.String())
	}
}
