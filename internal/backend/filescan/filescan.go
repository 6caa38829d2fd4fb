// Package filescan is a demo Player Controller backend: it scans a local
// directory for audio files, reads their ID3/tag metadata, and exposes them
// as a playable queue satisfying player.Controller.
package filescan

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/dhowden/tag"

	"github.com/arung-agamani/audiocontrold/internal/events"
	"github.com/arung-agamani/audiocontrold/internal/player"
)

var supportedExtensions = []string{".mp3", ".flac", ".ogg", ".m4a", ".wav"}

func isSupported(ext string) bool {
	ext = strings.ToLower(ext)
	for _, s := range supportedExtensions {
		if ext == s {
			return true
		}
	}
	return false
}

type scannedTrack struct {
	path string
	song events.Song
}

// Backend is a filesystem-scan-backed Controller: a simple linear queue of
// local audio files.
type Backend struct {
	name, id string
	bus      *events.Bus

	mu      sync.RWMutex
	tracks  []scannedTrack
	index   int
	state   events.PlaybackState
	volume  int
	loop    events.LoopMode
	shuffle bool
}

// NewFromDirectory walks dir recursively for supported audio files, reading
// whatever ID3/tag metadata is present, and returns a Backend ready to
// register with a player.Registry. Individual unreadable files are logged
// and skipped rather than aborting the whole scan; only a failure to access
// dir itself is fatal. Tracks are ordered by file path.
func NewFromDirectory(name, id, dir string, bus *events.Bus) (*Backend, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("filescan: cannot access %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("filescan: %s is not a directory", dir)
	}

	var tracks []scannedTrack
	walkErr := filepath.Walk(dir, func(path string, fi os.FileInfo, err error) error {
		if err != nil {
			slog.Warn("filescan: error accessing path during scan", "path", path, "error", err)
			return nil
		}
		if fi.IsDir() || !isSupported(filepath.Ext(fi.Name())) {
			return nil
		}

		tracks = append(tracks, scannedTrack{
			path: path,
			song: readSong(path, fi.Name()),
		})
		return nil
	})
	if walkErr != nil {
		return nil, fmt.Errorf("filescan: walking %s: %w", dir, walkErr)
	}

	sort.Slice(tracks, func(i, j int) bool { return tracks[i].path < tracks[j].path })

	return &Backend{
		name:   name,
		id:     id,
		bus:    bus,
		tracks: tracks,
		index:  -1,
		state:  events.PlaybackStopped,
		volume: 100,
		loop:   events.LoopNone,
	}, nil
}

func readSong(path, fallbackTitle string) events.Song {
	song := events.Song{Title: strings.TrimSuffix(fallbackTitle, filepath.Ext(fallbackTitle))}

	f, err := os.Open(path)
	if err != nil {
		return song
	}
	defer f.Close()

	m, err := tag.ReadFrom(f)
	if err != nil {
		return song
	}

	if m.Title() != "" {
		song.Title = m.Title()
	}
	song.Artist = m.Artist()
	song.Album = m.Album()
	return song
}

func (b *Backend) PlayerName() string { return b.name }
func (b *Backend) PlayerID() string   { return b.id }

func (b *Backend) Source() events.PlayerSource {
	return events.PlayerSource{PlayerName: b.name, PlayerID: b.id}
}

func (b *Backend) State() events.PlaybackState {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.state
}

func (b *Backend) CurrentSong() *events.Song {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.index < 0 || b.index >= len(b.tracks) {
		return nil
	}
	song := b.tracks[b.index].song
	return &song
}

func (b *Backend) Capabilities() player.CapabilitySet {
	return player.NewCapabilitySet("play", "pause", "stop", "next", "previous", "set_volume")
}

func (b *Backend) Volume() int              { b.mu.RLock(); defer b.mu.RUnlock(); return b.volume }
func (b *Backend) Position() float64        { return 0 }
func (b *Backend) LoopMode() events.LoopMode { b.mu.RLock(); defer b.mu.RUnlock(); return b.loop }
func (b *Backend) Shuffle() bool            { b.mu.RLock(); defer b.mu.RUnlock(); return b.shuffle }

func (b *Backend) setState(state events.PlaybackState) {
	b.mu.Lock()
	b.state = state
	b.mu.Unlock()
	b.bus.Publish(events.NewStateChanged(b.Source(), state))
}

func (b *Backend) publishCurrentSong() {
	b.bus.Publish(events.NewSongChanged(b.Source(), b.CurrentSong()))
}

func (b *Backend) Play() error {
	b.mu.Lock()
	if len(b.tracks) == 0 {
		b.mu.Unlock()
		return player.ErrUnsupported
	}
	if b.index < 0 {
		b.index = 0
	}
	b.mu.Unlock()

	b.setState(events.PlaybackPlaying)
	b.publishCurrentSong()
	return nil
}

func (b *Backend) Pause() error {
	b.setState(events.PlaybackPaused)
	return nil
}

func (b *Backend) Stop() error {
	b.setState(events.PlaybackStopped)
	return nil
}

func (b *Backend) advance(delta int) error {
	b.mu.Lock()
	if len(b.tracks) == 0 {
		b.mu.Unlock()
		return player.ErrUnsupported
	}
	b.index = (b.index + delta + len(b.tracks)) % len(b.tracks)
	b.mu.Unlock()

	b.publishCurrentSong()
	return nil
}

func (b *Backend) Next() error     { return b.advance(1) }
func (b *Backend) Previous() error { return b.advance(-1) }

func (b *Backend) Seek(seconds float64) error {
	b.bus.Publish(events.NewPositionChanged(b.Source(), seconds))
	return nil
}

func (b *Backend) SetVolume(volume int) error {
	b.mu.Lock()
	b.volume = volume
	b.mu.Unlock()
	b.bus.Publish(events.NewVolumeChanged(b.Source(), volume, false))
	return nil
}

func (b *Backend) SetMute(muted bool) error {
	b.bus.Publish(events.NewVolumeChanged(b.Source(), b.Volume(), muted))
	return nil
}

func (b *Backend) SetLoop(mode events.LoopMode) error {
	b.mu.Lock()
	b.loop = mode
	b.mu.Unlock()
	b.bus.Publish(events.NewLoopModeChanged(b.Source(), mode))
	return nil
}

func (b *Backend) SetShuffle(enabled bool) error {
	b.mu.Lock()
	b.shuffle = enabled
	b.mu.Unlock()
	b.bus.Publish(events.NewRandomChanged(b.Source(), enabled))
	return nil
}

// TrackCount reports how many playable files the scan found.
func (b *Backend) TrackCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.tracks)
}
