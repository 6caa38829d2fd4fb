package player

import "github.com/arung-agamani/audiocontrold/internal/events"

// fakeController is a minimal in-memory Controller for registry and
// arbitration tests. Play, Pause, Stop and SetVolume succeed and update the
// fake's state; the other commands return ErrUnsupported.
type fakeController struct {
	name, id string
	state    events.PlaybackState
	volume   int
}

func newFakeController(name, id string) *fakeController {
	return &fakeController{name: name, id: id, state: events.PlaybackUnknown}
}

func (f *fakeController) PlayerName() string { return f.name }
func (f *fakeController) PlayerID() string   { return f.id }
func (f *fakeController) Source() events.PlayerSource {
	return events.PlayerSource{PlayerName: f.name, PlayerID: f.id}
}

func (f *fakeController) State() events.PlaybackState   { return f.state }
func (f *fakeController) CurrentSong() *events.Song     { return nil }
func (f *fakeController) Capabilities() CapabilitySet   { return NewCapabilitySet() }
func (f *fakeController) Volume() int                   { return f.volume }
func (f *fakeController) Position() float64              { return 0 }
func (f *fakeController) LoopMode() events.LoopMode      { return events.LoopNone }
func (f *fakeController) Shuffle() bool                  { return false }

func (f *fakeController) Play() error                      { f.state = events.PlaybackPlaying; return nil }
func (f *fakeController) Pause() error                     { f.state = events.PlaybackPaused; return nil }
func (f *fakeController) Stop() error                       { f.state = events.PlaybackStopped; return nil }
func (f *fakeController) Next() error                        { return ErrUnsupported }
func (f *fakeController) Previous() error                    { return ErrUnsupported }
func (f *fakeController) Seek(seconds float64) error         { return ErrUnsupported }
func (f *fakeController) SetVolume(volume int) error         { f.volume = volume; return nil }
func (f *fakeController) SetMute(muted bool) error           { return ErrUnsupported }
func (f *fakeController) SetLoop(mode events.LoopMode) error { return ErrUnsupported }
func (f *fakeController) SetShuffle(enabled bool) error      { return ErrUnsupported }
