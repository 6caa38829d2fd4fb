package eventlogger

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/arung-agamani/audiocontrold/internal/audiocontrol"
	"github.com/arung-agamani/audiocontrold/internal/events"
)

func TestEventLoggerFiltersByEventTypes(t *testing.T) {
	bus := events.New()
	ac := audiocontrol.New(bus, nil)

	logger, err := New([]byte(`{"event_types": ["queue_changed"]}`), nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	logger.Initialize(ac.WeakRef())

	src := events.PlayerSource{PlayerName: "p", PlayerID: "1"}
	bus.Publish(events.NewVolumeChanged(src, 10, false))
	bus.Publish(events.NewQueueChanged(src))

	time.Sleep(50 * time.Millisecond)

	// The bus path above only shows that delivery does not panic; the filter
	// itself is checked synchronously against a logger writing to a buffer.
	var buf bytes.Buffer
	direct, err := New([]byte(`{"event_types": ["queue_changed"]}`), slog.New(slog.NewTextHandler(&buf, nil)))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	direct.HandleEvent(events.NewVolumeChanged(src, 10, false))
	direct.HandleEvent(events.NewQueueChanged(src))

	out := buf.String()
	if strings.Contains(out, string(events.KindVolumeChanged)) {
		t.Fatalf("volume_changed should have been filtered out, log: %q", out)
	}
	if !strings.Contains(out, string(events.KindQueueChanged)) {
		t.Fatalf("queue_changed should have been logged, log: %q", out)
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]bool{
		"":        true,
		"info":    true,
		"debug":   true,
		"trace":   true,
		"warn":    true,
		"error":   true,
		"bogus":   false,
	}
	for level, wantOK := range cases {
		_, err := parseLevel(level)
		if (err == nil) != wantOK {
			t.Errorf("parseLevel(%q): err=%v, want ok=%v", level, err, wantOK)
		}
	}
}

func TestNewRejectsUnknownLogLevel(t *testing.T) {
	if _, err := New([]byte(`{"log_level": "bogus"}`), nil); err == nil {
		t.Fatal("expected an error for an unknown log_level")
	}
}
