package activemonitor

import (
	"testing"
	"time"

	"github.com/arung-agamani/audiocontrold/internal/audiocontrol"
	"github.com/arung-agamani/audiocontrold/internal/events"
	"github.com/arung-agamani/audiocontrold/internal/player"
)

type fakeController struct {
	source events.PlayerSource
}

func (f *fakeController) PlayerName() string                    { return f.source.PlayerName }
func (f *fakeController) PlayerID() string                      { return f.source.PlayerID }
func (f *fakeController) Source() events.PlayerSource            { return f.source }
func (f *fakeController) State() events.PlaybackState            { return events.PlaybackUnknown }
func (f *fakeController) CurrentSong() *events.Song               { return nil }
func (f *fakeController) Capabilities() player.CapabilitySet      { return player.NewCapabilitySet() }
func (f *fakeController) Volume() int                              { return 0 }
func (f *fakeController) Position() float64                        { return 0 }
func (f *fakeController) LoopMode() events.LoopMode                 { return events.LoopNone }
func (f *fakeController) Shuffle() bool                             { return false }
func (f *fakeController) Play() error                               { return nil }
func (f *fakeController) Pause() error                              { return nil }
func (f *fakeController) Stop() error                               { return nil }
func (f *fakeController) Next() error                               { return player.ErrUnsupported }
func (f *fakeController) Previous() error                           { return player.ErrUnsupported }
func (f *fakeController) Seek(seconds float64) error                { return player.ErrUnsupported }
func (f *fakeController) SetVolume(volume int) error                { return player.ErrUnsupported }
func (f *fakeController) SetMute(muted bool) error                  { return player.ErrUnsupported }
func (f *fakeController) SetLoop(mode events.LoopMode) error         { return player.ErrUnsupported }
func (f *fakeController) SetShuffle(enabled bool) error             { return player.ErrUnsupported }

// S3 — active-player arbitration.
func TestActiveMonitorPromotesOnPlaying(t *testing.T) {
	bus := events.New()
	ac := audiocontrol.New(bus, nil)

	ac.Registry.Register(&fakeController{source: events.PlayerSource{PlayerName: "mpris", PlayerID: "vlc"}})
	ac.Registry.Register(&fakeController{source: events.PlayerSource{PlayerName: "lms", PlayerID: "srv"}})

	monitor, err := New(nil, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	monitor.Initialize(ac.WeakRef())
	ac.AddPlugin(monitor)

	_, ch := bus.SubscribeAll()

	bus.Publish(events.NewStateChanged(events.PlayerSource{PlayerName: "lms", PlayerID: "srv"}, events.PlaybackPlaying))

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if idx, ok := ac.Registry.ActiveIndex(); ok && idx == 1 {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}

	idx, ok := ac.Registry.ActiveIndex()
	if !ok || idx != 1 {
		t.Fatalf("expected index 1 active, got %d,%v", idx, ok)
	}

	found := false
	for i := 0; i < 2 && !found; i++ {
		select {
		case ev := <-ch:
			if ev.Kind == events.KindActivePlayerChanged {
				found = true
			}
		case <-time.After(time.Second):
		}
	}
	if !found {
		t.Fatal("expected an ActivePlayerChanged event")
	}
}

func TestActiveMonitorDisabledDoesNotSubscribe(t *testing.T) {
	bus := events.New()
	ac := audiocontrol.New(bus, nil)
	ac.Registry.Register(&fakeController{source: events.PlayerSource{PlayerName: "mpris", PlayerID: "vlc"}})

	disabled := false
	monitor, err := New([]byte(`{"enabled": false}`), nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	_ = disabled
	monitor.Initialize(ac.WeakRef())

	bus.Publish(events.NewStateChanged(events.PlayerSource{PlayerName: "mpris", PlayerID: "vlc"}, events.PlaybackPlaying))
	time.Sleep(50 * time.Millisecond)

	if _, ok := ac.Registry.ActiveIndex(); ok {
		t.Fatal("expected disabled monitor not to promote any controller")
	}
}
