package catalog

import (
	"encoding/json"
	"sync"
)

// Catalog is the thread-safe, in-memory store of all known artists, albums,
// and tracks, keyed by Identifier, plus the AlbumArtists index.
//
// Lock ordering (to avoid deadlock, per the concurrency model): the
// catalog's own mutex always comes before any per-album lock. Most methods
// release c.mu before touching an album (UpsertTrack, RebuildIndex);
// MarshalJSON holds the read lock while each album serializes under its own
// locks. Catalog methods never call back out to user code while holding c.mu.
type Catalog struct {
	mu      sync.RWMutex
	artists map[Identifier]*Artist
	albums  map[Identifier]*Album
	index   *AlbumArtists
}

// New creates an empty Catalog.
func New() *Catalog {
	return &Catalog{
		artists: make(map[Identifier]*Artist),
		albums:  make(map[Identifier]*Album),
		index:   NewAlbumArtists(),
	}
}

// UpsertArtist inserts or replaces the artist keyed by its id.
func (c *Catalog) UpsertArtist(artist *Artist) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.artists[artist.ID] = artist
}

// UpsertAlbum inserts the album keyed by its id if absent; if an album with
// that id already exists it is left in place (albums are hot, independently
// mutated entities — callers mutate the returned/existing *Album directly
// rather than replacing it wholesale). Returns the canonical album.
func (c *Catalog) UpsertAlbum(album *Album) *Album {
	c.mu.Lock()
	defer c.mu.Unlock()

	if existing, ok := c.albums[album.ID]; ok {
		return existing
	}
	c.albums[album.ID] = album
	return album
}

// UpsertTrack appends t to the album identified by albumID (if it exists)
// and re-sorts the album's track list, returning whether the album was
// found. The catalog lock is released before the per-album track lock is
// taken, preserving the catalog→album lock order.
func (c *Catalog) UpsertTrack(albumID Identifier, t Track) bool {
	c.mu.RLock()
	album, ok := c.albums[albumID]
	c.mu.RUnlock()

	if !ok {
		return false
	}

	album.AddTrack(t)
	album.SortTracks()
	return true
}

// GetArtistByID returns the artist with the given id, or (nil, false).
func (c *Catalog) GetArtistByID(id Identifier) (*Artist, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	a, ok := c.artists[id]
	return a, ok
}

// GetAlbumByID returns the album with the given id, or (nil, false).
func (c *Catalog) GetAlbumByID(id Identifier) (*Album, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	a, ok := c.albums[id]
	return a, ok
}

// Artists returns a snapshot slice of all known artists.
func (c *Catalog) Artists() []*Artist {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]*Artist, 0, len(c.artists))
	for _, a := range c.artists {
		out = append(out, a)
	}
	return out
}

// Albums returns a snapshot slice of all known albums.
func (c *Catalog) Albums() []*Album {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]*Album, 0, len(c.albums))
	for _, a := range c.albums {
		out = append(out, a)
	}
	return out
}

// artistNameIndex builds the name→id lookup BuildFrom needs. When several
// artists share a name, whichever map iteration visits last wins. Caller
// must hold c.mu.
func (c *Catalog) artistNameIndex() map[string]Identifier {
	out := make(map[string]Identifier, len(c.artists))
	for _, a := range c.artists {
		out[a.Name] = a.ID
	}
	return out
}

// Index returns the catalog's current AlbumArtists index.
func (c *Catalog) Index() *AlbumArtists {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.index
}

// RebuildIndex rebuilds the AlbumArtists index by scanning every album's
// artist-name list and resolving names against the current artist set.
// Names with no matching artist are silently dropped, per the catalog's
// ingestion contract.
func (c *Catalog) RebuildIndex() {
	c.mu.Lock()
	albums := make([]*Album, 0, len(c.albums))
	for _, a := range c.albums {
		albums = append(albums, a)
	}
	names := c.artistNameIndex()
	c.mu.Unlock()

	c.mu.Lock()
	c.index = BuildFrom(albums, names)
	c.mu.Unlock()
}

// Clear drops all artists, albums, and index entries. There is no eviction
// policy beyond this explicit reset — bounded memory is a property of the
// music library, not of the daemon.
func (c *Catalog) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.artists = make(map[Identifier]*Artist)
	c.albums = make(map[Identifier]*Album)
	c.index = NewAlbumArtists()
}

// Stats is a cheap, count-only health/size snapshot: a byte-level accounting
// has no faithful Go equivalent here and isn't actionable, so counts it is.
type Stats struct {
	Artists         int `json:"artists"`
	Albums          int `json:"albums"`
	AlbumArtistRefs int `json:"albumArtistRefs"`
}

// Stats returns entity counts for diagnostics.
func (c *Catalog) Stats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return Stats{
		Artists:         len(c.artists),
		Albums:          len(c.albums),
		AlbumArtistRefs: c.index.Count(),
	}
}

// snapshotWire is the JSON shape produced by Catalog.MarshalJSON.
type snapshotWire struct {
	Artists []*Artist `json:"artists"`
	Albums  []*Album  `json:"albums"`
}

// MarshalJSON produces a full catalog snapshot: artists and albums, each
// serialized with their own (Un)MarshalJSON rules (Album's flat shape with
// inline track/artist-name lists per the serialization contract).
func (c *Catalog) MarshalJSON() ([]byte, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	artists := make([]*Artist, 0, len(c.artists))
	for _, a := range c.artists {
		artists = append(artists, a)
	}
	albums := make([]*Album, 0, len(c.albums))
	for _, a := range c.albums {
		albums = append(albums, a)
	}

	return json.Marshal(snapshotWire{Artists: artists, Albums: albums})
}

// UnmarshalJSON loads a catalog snapshot produced by MarshalJSON (or a
// legacy payload per Album's own UnmarshalJSON rules), replacing current
// content and rebuilding the AlbumArtists index.
func (c *Catalog) UnmarshalJSON(data []byte) error {
	var wire snapshotWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}

	c.mu.Lock()
	c.artists = make(map[Identifier]*Artist, len(wire.Artists))
	for _, a := range wire.Artists {
		c.artists[a.ID] = a
	}
	c.albums = make(map[Identifier]*Album, len(wire.Albums))
	for _, a := range wire.Albums {
		c.albums[a.ID] = a
	}
	c.mu.Unlock()

	c.RebuildIndex()
	return nil
}
