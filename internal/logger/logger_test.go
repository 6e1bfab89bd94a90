package logger

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestNew_ProductionWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	l := New("info", true, &buf)
	l.Info().Str("k", "v").Msg("hello")
	out := buf.String()
	if !strings.HasPrefix(out, "{") || !strings.Contains(out, `"k":"v"`) || !strings.Contains(out, `"message":"hello"`) {
		t.Errorf("unexpected output %q", out)
	}
}

func TestNew_ConsoleOutput(t *testing.T) {
	var buf bytes.Buffer
	l := New("debug", false, &buf)
	l.Debug().Msg("hello")
	out := buf.String()
	if strings.HasPrefix(out, "{") || !strings.Contains(out, "hello") {
		t.Errorf("console output expected, got %q", out)
	}
}

func TestNew_Level(t *testing.T) {
	tests := []struct {
		in   string
		want zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"WARN", zerolog.WarnLevel},
		{" error ", zerolog.ErrorLevel},
		{"", zerolog.InfoLevel},
		{"bogus", zerolog.InfoLevel},
	}
	for _, tt := range tests {
		if got := New(tt.in, true, &bytes.Buffer{}).GetLevel(); got != tt.want {
			t.Errorf("New(%q).GetLevel() = %v, want %v", tt.in, got, tt.want)
		}
	}
}
