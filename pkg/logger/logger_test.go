package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestNewLevels(t *testing.T) {
	l := New(LoggingConfig{Level: "debug"})
	if l.Logger.GetLevel() != logrus.DebugLevel {
		t.Errorf("level = %v, want debug", l.Logger.GetLevel())
	}

	l = New(LoggingConfig{Level: "not-a-level"})
	if l.Logger.GetLevel() != logrus.InfoLevel {
		t.Errorf("unknown level should fall back to info, got %v", l.Logger.GetLevel())
	}
}

func TestJSONFormat(t *testing.T) {
	l := New(LoggingConfig{Level: "info", Format: "json"})
	var buf bytes.Buffer
	l.Logger.SetOutput(&buf)

	l.WithField("game", "Celeste").Info("rating recomputed")

	var record map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("output is not JSON: %v (%q)", err, buf.String())
	}
	if record["game"] != "Celeste" {
		t.Errorf("field lost: %v", record)
	}
	if record["msg"] != "rating recomputed" {
		t.Errorf("message lost: %v", record)
	}
}

func TestChaining(t *testing.T) {
	l := NewDefault("storage")
	var buf bytes.Buffer
	l.Logger.SetOutput(&buf)

	l.WithField("id", 7).WithField("driver", "memory").Warn("slow query")

	out := buf.String()
	for _, want := range []string{"component=storage", "id=7", "driver=memory", "slow query"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q: %s", want, out)
		}
	}
}
