package sysutil

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func TestParseLevel(t *testing.T) {
	cases := []struct {
		in   string
		want zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"  DeBuG  ", zerolog.DebugLevel},
		{"info", zerolog.InfoLevel},
		{"", zerolog.InfoLevel},
		{"warn", zerolog.WarnLevel},
		{"warning", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"fatal", zerolog.FatalLevel},
		{"panic", zerolog.PanicLevel},
		{"unknown", zerolog.InfoLevel},
	}
	for _, tc := range cases {
		if got := ParseLevel(tc.in); got != tc.want {
			t.Fatalf("ParseLevel(%q) = %v; want %v", tc.in, got, tc.want)
		}
	}
}

func preserveLogging(t *testing.T) {
	t.Helper()
	origLevel := zerolog.GlobalLevel()
	origLogger := log.Logger
	origTime := zerolog.TimeFieldFormat
	origDur := zerolog.DurationFieldUnit
	t.Cleanup(func() {
		zerolog.SetGlobalLevel(origLevel)
		log.Logger = origLogger
		zerolog.TimeFieldFormat = origTime
		zerolog.DurationFieldUnit = origDur
	})
}

func TestSetupLogger_JSON(t *testing.T) {
	preserveLogging(t)

	var buf bytes.Buffer
	SetupLogger(&buf, "warn", false)

	if zerolog.GlobalLevel() != zerolog.WarnLevel {
		t.Fatalf("global level = %v", zerolog.GlobalLevel())
	}

	log.Info().Msg("dropped")
	log.Warn().Dur("took", 1500*time.Millisecond).Msg("kept")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("want 1 line, got %d: %q", len(lines), buf.String())
	}
	var m map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &m); err != nil {
		t.Fatalf("not json: %v", err)
	}
	if m["message"] != "kept" || m["service"] != "phone-api" || m["took"] != float64(1500) {
		t.Fatalf("unexpected entry: %v", m)
	}
	if _, ok := m["time"]; !ok {
		t.Fatalf("missing timestamp: %v", m)
	}
}

func TestSetupLogger_Pretty(t *testing.T) {
	preserveLogging(t)

	var buf bytes.Buffer
	l := SetupLogger(&buf, "debug", true)
	l.Debug().Msg("hello")

	out := buf.String()
	if !strings.Contains(out, "hello") || strings.HasPrefix(out, "{") {
		t.Fatalf("expected console output, got %q", out)
	}
}

func TestFirstNonEmpty(t *testing.T) {
	if got := FirstNonEmpty(); got != "" {
		t.Fatalf("FirstNonEmpty() = %q", got)
	}
	if got := FirstNonEmpty(" ", "\t", "\n"); got != "" {
		t.Fatalf("FirstNonEmpty(blanks) = %q", got)
	}
	if got := FirstNonEmpty("", " key ", "other"); got != " key " {
		t.Fatalf("FirstNonEmpty = %q", got)
	}
}
