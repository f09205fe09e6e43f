package notify

import (
	"bytes"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestRecorder(t *testing.T) {
	var r Recorder
	if _, ok := r.Last(); ok {
		t.Fatalf("expected empty recorder")
	}

	r.Success("Booking Confirmed on 2025-12-01!")
	r.Warning("refresh failed")

	notices := r.Notices()
	if len(notices) != 2 || notices[0].Level != LevelSuccess {
		t.Fatalf("unexpected notices %+v", notices)
	}
	last, _ := r.Last()
	if last.Level != LevelWarning || last.Message != "refresh failed" {
		t.Fatalf("unexpected last notice %+v", last)
	}
}

func TestLogNotifier(t *testing.T) {
	var buf bytes.Buffer
	log := logrus.New()
	log.SetOutput(&buf)
	log.SetFormatter(&logrus.TextFormatter{DisableColors: true, DisableTimestamp: true})

	NewLogNotifier(log).Error("Failed to load services")

	out := buf.String()
	if !strings.Contains(out, "Failed to load services") || !strings.Contains(out, "notice=error") {
		t.Fatalf("unexpected log output %q", out)
	}
}
