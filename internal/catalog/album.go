package catalog

import (
	"encoding/json"
	"sort"
	"strconv"
	"strings"
	"sync"
)

// Album represents a single release in the catalog. Artists and tracks are
// independently lockable so that a backend scan mutating one album's track
// list never blocks a reader of another album, and never blocks a reader of
// the same album's artist list.
type Album struct {
	ID          Identifier `json:"-"`
	Name        string     `json:"-"`
	ReleaseDate *Date      `json:"-"`
	CoverArt    string     `json:"-"`
	URI         string     `json:"-"`

	artistsMu   sync.RWMutex
	artists     []string
	artistsFlat string

	tracksMu sync.RWMutex
	tracks   []Track
}

// NewAlbum creates an empty Album with the given id and name.
func NewAlbum(id Identifier, name string) *Album {
	return &Album{ID: id, Name: name}
}

// Artists returns a snapshot copy of the album's artist-name list.
func (a *Album) Artists() []string {
	a.artistsMu.RLock()
	defer a.artistsMu.RUnlock()
	out := make([]string, len(a.artists))
	copy(out, a.artists)
	return out
}

// SetArtists replaces the album's artist-name list.
func (a *Album) SetArtists(artists []string) {
	a.artistsMu.Lock()
	defer a.artistsMu.Unlock()
	a.artists = append([]string(nil), artists...)
}

// AddArtist appends a single artist name, preserving insertion order.
func (a *Album) AddArtist(name string) {
	a.artistsMu.Lock()
	defer a.artistsMu.Unlock()
	a.artists = append(a.artists, name)
}

// ArtistsFlat returns the optional pre-flattened artist string and whether
// it is set. Nothing in this package sets it: the legacy "artist" field is
// split into the artist list by UnmarshalJSON instead.
func (a *Album) ArtistsFlat() (string, bool) {
	a.artistsMu.RLock()
	defer a.artistsMu.RUnlock()
	return a.artistsFlat, a.artistsFlat != ""
}

// Tracks returns a snapshot copy of the album's track list.
func (a *Album) Tracks() []Track {
	a.tracksMu.RLock()
	defer a.tracksMu.RUnlock()
	out := make([]Track, len(a.tracks))
	copy(out, a.tracks)
	return out
}

// SetTracks replaces the album's track list.
func (a *Album) SetTracks(tracks []Track) {
	a.tracksMu.Lock()
	defer a.tracksMu.Unlock()
	a.tracks = append([]Track(nil), tracks...)
}

// AddTrack appends a single track.
func (a *Album) AddTrack(t Track) {
	a.tracksMu.Lock()
	defer a.tracksMu.Unlock()
	a.tracks = append(a.tracks, t)
}

// TrackCount returns the number of tracks currently on the album.
func (a *Album) TrackCount() int {
	a.tracksMu.RLock()
	defer a.tracksMu.RUnlock()
	return len(a.tracks)
}

// discNumberOf parses a track's disc number, defaulting to 1 on absence or
// parse failure, per the catalog's canonical track ordering rule.
func discNumberOf(t Track) uint64 {
	if t.DiscNumber == nil {
		return 1
	}
	n, err := strconv.ParseUint(strings.TrimSpace(*t.DiscNumber), 10, 64)
	if err != nil {
		return 1
	}
	return n
}

func trackNumberOf(t Track) uint16 {
	if t.TrackNumber == nil {
		return 0
	}
	return *t.TrackNumber
}

// SortTracks sorts the album's tracks in place by (disc number, track
// number), both defaulted when absent or unparseable. The sort is stable:
// tracks tying on both keys keep their relative order.
func (a *Album) SortTracks() {
	a.tracksMu.Lock()
	defer a.tracksMu.Unlock()

	sort.SliceStable(a.tracks, func(i, j int) bool {
		di, dj := discNumberOf(a.tracks[i]), discNumberOf(a.tracks[j])
		if di != dj {
			return di < dj
		}
		return trackNumberOf(a.tracks[i]) < trackNumberOf(a.tracks[j])
	})
}

// Equal reports whether two albums share the same identity. Content is
// deliberately ignored: per the catalog's identity contract, equality is
// defined only over id.
func (a *Album) Equal(other *Album) bool {
	if a == nil || other == nil {
		return a == other
	}
	return a.ID == other.ID
}

// albumWire is the flat, on-the-wire representation of an Album.
type albumWire struct {
	ID          Identifier `json:"id"`
	Name        string     `json:"name"`
	Artists     []string   `json:"artists"`
	ReleaseDate *Date      `json:"release_date,omitempty"`
	Tracks      []Track    `json:"tracks"`
	CoverArt    string     `json:"cover_art,omitempty"`
	URI         string     `json:"uri,omitempty"`
}

// albumWireIn additionally accepts the legacy scalar "artist" field for
// backward-compatible deserialization.
type albumWireIn struct {
	albumWire
	Artist *string `json:"artist,omitempty"`
}

// MarshalJSON renders the album as a flat object: {id, name, artists,
// release_date, tracks, cover_art, uri}.
func (a *Album) MarshalJSON() ([]byte, error) {
	return json.Marshal(albumWire{
		ID:          a.ID,
		Name:        a.Name,
		Artists:     a.Artists(),
		ReleaseDate: a.ReleaseDate,
		Tracks:      a.Tracks(),
		CoverArt:    a.CoverArt,
		URI:         a.URI,
	})
}

// UnmarshalJSON accepts the current flat shape and, when "artists" is absent
// or empty, the legacy comma-separated "artist" scalar, splitting on "," and
// trimming whitespace, dropping empties.
func (a *Album) UnmarshalJSON(data []byte) error {
	var in albumWireIn
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}

	artists := in.Artists
	if len(artists) == 0 && in.Artist != nil {
		for _, name := range strings.Split(*in.Artist, ",") {
			name = strings.TrimSpace(name)
			if name != "" {
				artists = append(artists, name)
			}
		}
	}

	a.ID = in.ID
	a.Name = in.Name
	a.ReleaseDate = in.ReleaseDate
	a.CoverArt = in.CoverArt
	a.URI = in.URI
	a.SetArtists(artists)
	a.SetTracks(in.Tracks)
	return nil
}
