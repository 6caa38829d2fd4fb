package events

import "encoding/json"

// PlayerSource is the stable identity of a player controller as seen by
// event consumers: immutable and cheap to copy.
type PlayerSource struct {
	PlayerName string `json:"player_name"`
	PlayerID   string `json:"player_id"`
}

// PlaybackState mirrors a controller's reported playback status.
type PlaybackState string

const (
	PlaybackPlaying      PlaybackState = "playing"
	PlaybackPaused       PlaybackState = "paused"
	PlaybackStopped      PlaybackState = "stopped"
	PlaybackKilled       PlaybackState = "killed"
	PlaybackDisconnected PlaybackState = "disconnected"
	PlaybackUnknown      PlaybackState = "unknown"
)

// LoopMode mirrors a controller's repeat/loop setting.
type LoopMode string

const (
	LoopNone     LoopMode = "none"
	LoopTrack    LoopMode = "track"
	LoopPlaylist LoopMode = "playlist"
)

// Song is the minimal "currently playing" descriptor carried by
// SongChanged. It is intentionally sparse — enrichment belongs to plugins,
// not the core event model.
type Song struct {
	Title  string `json:"title"`
	Artist string `json:"artist,omitempty"`
	Album  string `json:"album,omitempty"`
}

// Kind identifies a PlayerEvent's variant. Lowercase-with-underscores to
// match the on-the-wire "type" field for HTTP push consumers.
type Kind string

const (
	KindStateChanged          Kind = "state_changed"
	KindSongChanged           Kind = "song_changed"
	KindLoopModeChanged       Kind = "loop_mode_changed"
	KindRandomChanged         Kind = "random_changed"
	KindCapabilitiesChanged   Kind = "capabilities_changed"
	KindPositionChanged       Kind = "position_changed"
	KindDatabaseUpdating      Kind = "database_updating"
	KindQueueChanged          Kind = "queue_changed"
	KindSongInformationUpdate Kind = "song_information_update"
	KindActivePlayerChanged   Kind = "active_player_changed"
	KindVolumeChanged         Kind = "volume_changed"
)

// PlayerEvent is the tagged union of everything the bus carries. Only the
// fields relevant to Kind are meaningful; it is a value type, safe to copy
// and share across goroutines once constructed.
type PlayerEvent struct {
	Kind   Kind
	Source PlayerSource

	// StateChanged
	State PlaybackState

	// SongChanged
	Song *Song

	// LoopModeChanged
	Mode LoopMode

	// RandomChanged
	RandomEnabled bool

	// CapabilitiesChanged
	Capabilities []string

	// PositionChanged
	PositionSeconds float64

	// DatabaseUpdating
	InProgress bool

	// SongInformationUpdate
	PartialMetadata map[string]string

	// ActivePlayerChanged
	NewActiveSource *PlayerSource

	// VolumeChanged
	Volume int
	Muted  bool
}

func NewStateChanged(source PlayerSource, state PlaybackState) PlayerEvent {
	return PlayerEvent{Kind: KindStateChanged, Source: source, State: state}
}

func NewSongChanged(source PlayerSource, song *Song) PlayerEvent {
	return PlayerEvent{Kind: KindSongChanged, Source: source, Song: song}
}

func NewLoopModeChanged(source PlayerSource, mode LoopMode) PlayerEvent {
	return PlayerEvent{Kind: KindLoopModeChanged, Source: source, Mode: mode}
}

func NewRandomChanged(source PlayerSource, enabled bool) PlayerEvent {
	return PlayerEvent{Kind: KindRandomChanged, Source: source, RandomEnabled: enabled}
}

func NewCapabilitiesChanged(source PlayerSource, capabilities []string) PlayerEvent {
	return PlayerEvent{Kind: KindCapabilitiesChanged, Source: source, Capabilities: capabilities}
}

func NewPositionChanged(source PlayerSource, seconds float64) PlayerEvent {
	return PlayerEvent{Kind: KindPositionChanged, Source: source, PositionSeconds: seconds}
}

func NewDatabaseUpdating(source PlayerSource, inProgress bool) PlayerEvent {
	return PlayerEvent{Kind: KindDatabaseUpdating, Source: source, InProgress: inProgress}
}

func NewQueueChanged(source PlayerSource) PlayerEvent {
	return PlayerEvent{Kind: KindQueueChanged, Source: source}
}

func NewSongInformationUpdate(source PlayerSource, partial map[string]string) PlayerEvent {
	return PlayerEvent{Kind: KindSongInformationUpdate, Source: source, PartialMetadata: partial}
}

func NewActivePlayerChanged(newActive *PlayerSource) PlayerEvent {
	return PlayerEvent{Kind: KindActivePlayerChanged, NewActiveSource: newActive}
}

func NewVolumeChanged(source PlayerSource, volume int, muted bool) PlayerEvent {
	return PlayerEvent{Kind: KindVolumeChanged, Source: source, Volume: volume, Muted: muted}
}

// eventWire is the flattened on-the-wire shape: {"type": "...", ...payload
// fields..., "source": {...}}. ActivePlayerChanged has no per-controller
// source, so Source is omitted for it.
type eventWire struct {
	Type            Kind              `json:"type"`
	Source          *PlayerSource     `json:"source,omitempty"`
	State           PlaybackState     `json:"state,omitempty"`
	Song            *Song             `json:"song,omitempty"`
	Mode            LoopMode          `json:"mode,omitempty"`
	RandomEnabled   *bool             `json:"enabled,omitempty"`
	Capabilities    []string          `json:"capabilities,omitempty"`
	PositionSeconds *float64          `json:"position,omitempty"`
	InProgress      *bool             `json:"in_progress,omitempty"`
	PartialMetadata map[string]string `json:"metadata,omitempty"`
	NewActiveSource *PlayerSource     `json:"new_active_source,omitempty"`
	Volume          *int              `json:"volume,omitempty"`
	Muted           *bool             `json:"muted,omitempty"`
}

// MarshalJSON renders the event per the HTTP push consumer contract: a
// "type" discriminant plus the variant's payload fields, flattened.
func (e PlayerEvent) MarshalJSON() ([]byte, error) {
	wire := eventWire{Type: e.Kind}

	switch e.Kind {
	case KindStateChanged:
		wire.Source = &e.Source
		wire.State = e.State
	case KindSongChanged:
		wire.Source = &e.Source
		wire.Song = e.Song
	case KindLoopModeChanged:
		wire.Source = &e.Source
		wire.Mode = e.Mode
	case KindRandomChanged:
		wire.Source = &e.Source
		wire.RandomEnabled = &e.RandomEnabled
	case KindCapabilitiesChanged:
		wire.Source = &e.Source
		wire.Capabilities = e.Capabilities
	case KindPositionChanged:
		wire.Source = &e.Source
		wire.PositionSeconds = &e.PositionSeconds
	case KindDatabaseUpdating:
		wire.Source = &e.Source
		wire.InProgress = &e.InProgress
	case KindQueueChanged:
		wire.Source = &e.Source
	case KindSongInformationUpdate:
		wire.Source = &e.Source
		wire.PartialMetadata = e.PartialMetadata
	case KindActivePlayerChanged:
		wire.NewActiveSource = e.NewActiveSource
	case KindVolumeChanged:
		wire.Source = &e.Source
		wire.Volume = &e.Volume
		wire.Muted = &e.Muted
	}

	return json.Marshal(wire)
}
