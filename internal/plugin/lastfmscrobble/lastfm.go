// Package lastfmscrobble implements the bundled "lastfm" plugin: it
// implements the action-plugin contract plus a real (if minimal)
// Audioscrobbler-protocol client behind a Scrobbler interface, so the
// contract is exercised by genuine HTTP/rate-limiting code rather than
// stubbed out.
package lastfmscrobble

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/arung-agamani/audiocontrold/internal/audiocontrol"
	"github.com/arung-agamani/audiocontrold/internal/events"
	"github.com/arung-agamani/audiocontrold/internal/plugin"
)

const (
	TypeName = "lastfm"
	version  = "1.0.0"

	apiBaseURL = "https://ws.audioscrobbler.com/2.0/"

	// minPlayedForScrobble approximates Last.fm's own scrobble rule: a
	// track is submitted only once it has played for at least this long.
	// events.Song carries no duration, so the half-duration alternative
	// is not applied.
	minPlayedForScrobble = 30 * time.Second
)

type rawConfig struct {
	APIKey    string `json:"api_key"`
	APISecret string `json:"api_secret"`
	Username  string `json:"username"`
}

// Scrobbler is the outward HTTP boundary; the plugin depends on this
// interface, not on net/http directly, so tests can substitute a fake.
type Scrobbler interface {
	UpdateNowPlaying(ctx context.Context, song events.Song) error
	Scrobble(ctx context.Context, song events.Song, startedAt time.Time) error
}

// Plugin is the lastfm scrobbler plugin.
type Plugin struct {
	plugin.BaseActionPlugin

	scrobbler Scrobbler
	username  string
	log       *slog.Logger

	mu        sync.Mutex
	nowPlaying *events.Song
	since      time.Time
}

// New parses {"api_key", "api_secret", "username"} and constructs a Plugin
// backed by a real Audioscrobbler client. All three fields are required;
// missing config causes the constructor to return an error so the host
// logs and skips this entry rather than loading a half-configured plugin.
func New(raw json.RawMessage, log *slog.Logger) (*Plugin, error) {
	var cfg rawConfig
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &cfg); err != nil {
			return nil, fmt.Errorf("lastfm: invalid config: %w", err)
		}
	}
	if cfg.APIKey == "" || cfg.APISecret == "" || cfg.Username == "" {
		return nil, fmt.Errorf("lastfm: api_key, api_secret, and username are all required")
	}
	if log == nil {
		log = slog.Default()
	}

	return &Plugin{
		scrobbler: newHTTPScrobbler(cfg.APIKey, cfg.APISecret, cfg.Username),
		username:  cfg.Username,
		log:       log,
	}, nil
}

// Constructor adapts New to plugin.Constructor for Factory registration.
func Constructor(log *slog.Logger) func(json.RawMessage) (plugin.ActionPlugin, error) {
	return func(raw json.RawMessage) (plugin.ActionPlugin, error) {
		return New(raw, log)
	}
}

func (p *Plugin) Name() string    { return TypeName }
func (p *Plugin) Version() string { return version }
func (p *Plugin) Init() bool      { return true }
func (p *Plugin) Shutdown() bool {
	p.UnsubscribeFromEventBus()
	return true
}

func (p *Plugin) Initialize(controller *audiocontrol.WeakRef) {
	c, ok := controller.Upgrade()
	if !ok {
		return
	}
	p.BaseActionPlugin.Initialize(controller, c.Bus)
	p.SubscribeToEventBus(p.HandleEvent)
}

// HandleEvent scrobbles the previously-playing song once it has played
// long enough, and reports the new one as now-playing, on every
// SongChanged.
func (p *Plugin) HandleEvent(event events.PlayerEvent) {
	if event.Kind != events.KindSongChanged {
		return
	}

	ctx := context.Background()

	p.mu.Lock()
	prev, since := p.nowPlaying, p.since
	p.nowPlaying = event.Song
	p.since = time.Now()
	p.mu.Unlock()

	if prev != nil && time.Since(since) >= minPlayedForScrobble {
		if err := p.scrobbler.Scrobble(ctx, *prev, since); err != nil {
			p.log.Warn("lastfm: scrobble failed", "error", err, "track", prev.Title)
		}
	}

	if event.Song != nil {
		if err := p.scrobbler.UpdateNowPlaying(ctx, *event.Song); err != nil {
			p.log.Warn("lastfm: now-playing update failed", "error", err, "track", event.Song.Title)
		}
	}
}

// httpScrobbler is the real (network-capable, but only reached when the
// caller supplies live credentials) Audioscrobbler-protocol implementation.
type httpScrobbler struct {
	client    *http.Client
	limiter   *rate.Limiter
	apiKey    string
	apiSecret string
	username  string
}

func newHTTPScrobbler(apiKey, apiSecret, username string) *httpScrobbler {
	return &httpScrobbler{
		client:    &http.Client{Timeout: 10 * time.Second},
		limiter:   rate.NewLimiter(rate.Every(200*time.Millisecond), 1),
		apiKey:    apiKey,
		apiSecret: apiSecret,
		username:  username,
	}
}

func (s *httpScrobbler) UpdateNowPlaying(ctx context.Context, song events.Song) error {
	params := map[string]string{
		"method": "track.updateNowPlaying",
		"artist": song.Artist,
		"track":  song.Title,
		"album":  song.Album,
		"user":   s.username,
	}
	return s.call(ctx, params)
}

func (s *httpScrobbler) Scrobble(ctx context.Context, song events.Song, startedAt time.Time) error {
	params := map[string]string{
		"method":    "track.scrobble",
		"artist":    song.Artist,
		"track":     song.Title,
		"album":     song.Album,
		"timestamp": fmt.Sprintf("%d", startedAt.Unix()),
	}
	return s.call(ctx, params)
}

// call signs params with the Audioscrobbler method signature (md5 of the
// sorted key-value pairs plus the shared secret) and POSTs them,
// rate-limited to stay under Last.fm's informal ~5 req/s ceiling.
func (s *httpScrobbler) call(ctx context.Context, params map[string]string) error {
	if err := s.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("lastfm: rate limiter: %w", err)
	}

	params["api_key"] = s.apiKey
	params["api_sig"] = s.sign(params)

	form := url.Values{}
	for k, v := range params {
		form.Set(k, v)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiBaseURL, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("lastfm: building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("lastfm: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("lastfm: api returned status %d", resp.StatusCode)
	}
	return nil
}

func (s *httpScrobbler) sign(params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		b.WriteString(k)
		b.WriteString(params[k])
	}
	b.WriteString(s.apiSecret)

	sum := md5.Sum([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}
