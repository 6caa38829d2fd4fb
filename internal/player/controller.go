package player

import (
	"errors"

	"github.com/arung-agamani/audiocontrold/internal/events"
)

// ErrUnsupported is returned by a Controller command method the backend
// does not implement. Callers must treat this as an expected, typed
// failure — never a panic.
var ErrUnsupported = errors.New("player: command not supported by this controller")

// Capability names a command or query a Controller supports. The set is
// open-ended (backends differ); consumers test membership rather than
// switching on a closed enum.
type Capability string

// CapabilitySet is a small, order-independent set of capability names.
type CapabilitySet map[Capability]struct{}

// NewCapabilitySet builds a set from a list of names.
func NewCapabilitySet(caps ...Capability) CapabilitySet {
	set := make(CapabilitySet, len(caps))
	for _, c := range caps {
		set[c] = struct{}{}
	}
	return set
}

// Has reports whether name is present in the set.
func (s CapabilitySet) Has(name Capability) bool {
	_, ok := s[name]
	return ok
}

// Slice returns the capability names in no particular order, for
// serialization via events.CapabilitiesChanged.
func (s CapabilitySet) Slice() []string {
	out := make([]string, 0, len(s))
	for c := range s {
		out = append(out, string(c))
	}
	return out
}

// Controller is the inward-facing interface every backend adapter (MPRIS,
// LMS, Bluetooth, ...) implements. The core only ever talks to a backend
// through this interface — backend-specific protocol details never leak
// past it.
type Controller interface {
	// PlayerName and PlayerID together form this controller's stable
	// PlayerSource identity.
	PlayerName() string
	PlayerID() string

	Source() events.PlayerSource

	State() events.PlaybackState
	CurrentSong() *events.Song
	Capabilities() CapabilitySet
	Volume() int
	Position() float64
	LoopMode() events.LoopMode
	Shuffle() bool

	Play() error
	Pause() error
	Stop() error
	Next() error
	Previous() error
	Seek(seconds float64) error
	SetVolume(volume int) error
	SetMute(muted bool) error
	SetLoop(mode events.LoopMode) error
	SetShuffle(enabled bool) error
}
