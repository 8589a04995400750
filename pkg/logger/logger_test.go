package logger

import (
	"testing"

	"github.com/rs/zerolog"

	"github.com/RIMANOuk/gallery-grabber/pkg/config"
)

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected zerolog.Level
		wantErr  bool
	}{
		{"debug", zerolog.DebugLevel, false},
		{"info", zerolog.InfoLevel, false},
		{"", zerolog.InfoLevel, false},
		{"warn", zerolog.WarnLevel, false},
		{"warning", zerolog.WarnLevel, false},
		{"error", zerolog.ErrorLevel, false},
		{"fatal", zerolog.FatalLevel, false},
		{"disabled", zerolog.Disabled, false},
		{"DEBUG", zerolog.DebugLevel, false},
		{"loud", zerolog.InfoLevel, true},
	}

	for _, test := range tests {
		level, err := parseLogLevel(test.input)
		if test.wantErr {
			if err == nil {
				t.Errorf("parseLogLevel(%q): expected error", test.input)
			}
			continue
		}
		if err != nil {
			t.Errorf("parseLogLevel(%q): unexpected error %v", test.input, err)
			continue
		}
		if level != test.expected {
			t.Errorf("parseLogLevel(%q) = %v, want %v", test.input, level, test.expected)
		}
	}
}

func TestNewRejectsInvalidLevel(t *testing.T) {
	if _, err := New(&config.LoggingConfig{Level: "loud"}); err == nil {
		t.Error("Expected error for invalid log level")
	}
}

func TestWithFieldsReturnsNewLogger(t *testing.T) {
	base, err := New(&config.LoggingConfig{Level: "disabled"})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	derived := base.WithField("token", "abc")
	if derived == base {
		t.Error("Expected WithField to return a derived logger")
	}
	// must not panic with the added field
	derived.Info("scan stored")
}

func TestTestLoggerCapturesMessages(t *testing.T) {
	log := NewTestLogger()
	log.Info("hello")
	log.WarnWithFields("skipping failed archive member", map[string]interface{}{"url": "https://x.test/a.jpg"})

	if !log.HasMessage("INFO", "hello") {
		t.Error("Expected INFO message captured")
	}
	if !log.HasMessage("WARN", "skipping failed archive member") {
		t.Error("Expected WARN message captured")
	}
	if len(log.Messages()) != 2 {
		t.Errorf("Expected 2 messages, got %d", len(log.Messages()))
	}
}
