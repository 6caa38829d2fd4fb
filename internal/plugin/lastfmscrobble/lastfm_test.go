package lastfmscrobble

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/arung-agamani/audiocontrold/internal/events"
)

func testLogger() *slog.Logger { return slog.Default() }

type fakeScrobbler struct {
	nowPlaying []events.Song
	scrobbled  []events.Song
	failNext   bool
}

func (f *fakeScrobbler) UpdateNowPlaying(ctx context.Context, song events.Song) error {
	if f.failNext {
		return errors.New("boom")
	}
	f.nowPlaying = append(f.nowPlaying, song)
	return nil
}

func (f *fakeScrobbler) Scrobble(ctx context.Context, song events.Song, startedAt time.Time) error {
	f.scrobbled = append(f.scrobbled, song)
	return nil
}

func TestNewRequiresAllConfigFields(t *testing.T) {
	cases := []string{
		`{}`,
		`{"api_key": "k"}`,
		`{"api_key": "k", "api_secret": "s"}`,
	}
	for _, c := range cases {
		if _, err := New([]byte(c), nil); err == nil {
			t.Errorf("New(%s): expected error for incomplete config", c)
		}
	}

	if _, err := New([]byte(`{"api_key":"k","api_secret":"s","username":"u"}`), nil); err != nil {
		t.Fatalf("New with complete config: %v", err)
	}
}

func TestHandleEventReportsNowPlayingAndScrobblesAfterThreshold(t *testing.T) {
	fake := &fakeScrobbler{}
	p := &Plugin{scrobbler: fake, username: "u", log: testLogger()}

	song1 := events.Song{Title: "First", Artist: "A"}
	song2 := events.Song{Title: "Second", Artist: "A"}

	p.HandleEvent(events.NewSongChanged(events.PlayerSource{PlayerName: "p", PlayerID: "1"}, &song1))
	if len(fake.nowPlaying) != 1 || fake.nowPlaying[0].Title != "First" {
		t.Fatalf("expected now-playing update for First, got %+v", fake.nowPlaying)
	}

	p.mu.Lock()
	p.since = time.Now().Add(-minPlayedForScrobble - time.Second)
	p.mu.Unlock()

	p.HandleEvent(events.NewSongChanged(events.PlayerSource{PlayerName: "p", PlayerID: "1"}, &song2))

	if len(fake.scrobbled) != 1 || fake.scrobbled[0].Title != "First" {
		t.Fatalf("expected First to be scrobbled once threshold passed, got %+v", fake.scrobbled)
	}
	if len(fake.nowPlaying) != 2 || fake.nowPlaying[1].Title != "Second" {
		t.Fatalf("expected now-playing update for Second, got %+v", fake.nowPlaying)
	}
}

func TestHandleEventIgnoresNonSongChanged(t *testing.T) {
	fake := &fakeScrobbler{}
	p := &Plugin{scrobbler: fake, username: "u", log: testLogger()}

	p.HandleEvent(events.NewQueueChanged(events.PlayerSource{PlayerName: "p", PlayerID: "1"}))

	if len(fake.nowPlaying) != 0 || len(fake.scrobbled) != 0 {
		t.Fatal("expected non-SongChanged events to be ignored")
	}
}
