package logging

import (
	"bytes"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/contre95/tubequeue/src/features/config"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]log.Level{
		"debug": log.DebugLevel,
		"info":  log.InfoLevel,
		"warn":  log.WarnLevel,
		"error": log.ErrorLevel,
		"":      log.InfoLevel,
		"loud":  log.InfoLevel,
	}
	for in, want := range tests {
		if got := parseLevel(in); got != want {
			t.Errorf("parseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestNewLogger_RespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, config.Logger{Enabled: true, Level: "warn", Format: "logfmt"})

	logger.Info("hidden message")
	logger.Warn("visible message", "chat", 42)

	out := buf.String()
	if strings.Contains(out, "hidden message") {
		t.Errorf("info record written at warn level:\n%s", out)
	}
	if !strings.Contains(out, "visible message") {
		t.Errorf("warn record missing:\n%s", out)
	}
}

func TestNewLogger_Disabled(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, config.Logger{Enabled: false, Level: "debug"})
	logger.Error("nobody hears this")
	if buf.Len() != 0 {
		t.Errorf("disabled logger wrote %q", buf.String())
	}
}
