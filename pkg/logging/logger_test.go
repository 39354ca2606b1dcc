package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

// capture installs a global logger writing JSON lines into a buffer.
func capture(t *testing.T, level LogLevel) *bytes.Buffer {
	t.Helper()
	buf := &bytes.Buffer{}
	Setup(Config{Level: level, Output: buf})
	t.Cleanup(func() { Setup(Config{Level: LevelError, Output: &bytes.Buffer{}}) })
	return buf
}

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var lines []map[string]any
	for _, raw := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if raw == "" {
			continue
		}
		var line map[string]any
		if err := json.Unmarshal([]byte(raw), &line); err != nil {
			t.Fatalf("log line is not JSON: %q: %v", raw, err)
		}
		lines = append(lines, line)
	}
	return lines
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Level != LevelInfo || cfg.Pretty || cfg.Output == nil {
		t.Errorf("unexpected default config: %+v", cfg)
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[LogLevel]zerolog.Level{
		LevelDebug: zerolog.DebugLevel,
		LevelInfo:  zerolog.InfoLevel,
		LevelWarn:  zerolog.WarnLevel,
		LevelError: zerolog.ErrorLevel,
		"WARNING":  zerolog.WarnLevel,
		" Debug ":  zerolog.DebugLevel,
		"":         zerolog.InfoLevel,
		"verbose":  zerolog.InfoLevel,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestNewLogger_Fields(t *testing.T) {
	buf := capture(t, LevelInfo)

	logger := NewLogger("pipeline")
	logger.Info().Str("run_id", "r-1").Msg("Committed fetched records")

	lines := decodeLines(t, buf)
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d", len(lines))
	}
	line := lines[0]
	for field, want := range map[string]string{
		"service":   ServiceName,
		"component": "pipeline",
		"run_id":    "r-1",
		"level":     "info",
		"message":   "Committed fetched records",
	} {
		if line[field] != want {
			t.Errorf("%s = %v, want %q", field, line[field], want)
		}
	}
	if _, ok := line["time"]; !ok {
		t.Error("expected a timestamp")
	}
}

func TestLevelFiltering(t *testing.T) {
	tests := []struct {
		level LogLevel
		want  []string
	}{
		{LevelDebug, []string{"debug", "info", "warn", "error"}},
		{LevelInfo, []string{"info", "warn", "error"}},
		{LevelWarn, []string{"warn", "error"}},
		{LevelError, []string{"error"}},
	}

	for _, tt := range tests {
		t.Run(string(tt.level), func(t *testing.T) {
			buf := capture(t, tt.level)
			logger := NewLogger("cache")

			logger.Debug().Msg("cache hit")
			logger.Info().Msg("entry stored")
			logger.Warn().Msg("cache read failed")
			logger.Error().Msg("store unavailable")

			var got []string
			for _, line := range decodeLines(t, buf) {
				got = append(got, line["level"].(string))
			}
			if strings.Join(got, ",") != strings.Join(tt.want, ",") {
				t.Errorf("levels = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSetup_Pretty(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := Setup(Config{Level: LevelInfo, Pretty: true, Output: buf})
	t.Cleanup(func() { Setup(Config{Level: LevelError, Output: &bytes.Buffer{}}) })

	logger.Info().Msg("server listening")

	out := buf.String()
	if !strings.Contains(out, "server listening") {
		t.Fatalf("expected message in output, got %q", out)
	}
	if strings.HasPrefix(strings.TrimSpace(out), "{") {
		t.Errorf("pretty output should not be JSON: %q", out)
	}
}

func TestSetup_NilOutput(t *testing.T) {
	logger := Setup(Config{Level: LevelError})
	t.Cleanup(func() { Setup(Config{Level: LevelError, Output: &bytes.Buffer{}}) })
	logger.Debug().Msg("discarded")
}
