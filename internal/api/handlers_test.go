package api

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/arung-agamani/audiocontrold/internal/audiocontrol"
	"github.com/arung-agamani/audiocontrold/internal/auth"
	"github.com/arung-agamani/audiocontrold/internal/catalog"
	"github.com/arung-agamani/audiocontrold/internal/events"
	"github.com/arung-agamani/audiocontrold/internal/player"
)

type noopController struct {
	name, id string
	state    events.PlaybackState
}

func (c *noopController) PlayerName() string           { return c.name }
func (c *noopController) PlayerID() string              { return c.id }
func (c *noopController) Source() events.PlayerSource   { return events.PlayerSource{PlayerName: c.name, PlayerID: c.id} }
func (c *noopController) State() events.PlaybackState   { return c.state }
func (c *noopController) CurrentSong() *events.Song     { return nil }
func (c *noopController) Capabilities() player.CapabilitySet { return player.NewCapabilitySet() }
func (c *noopController) Volume() int                   { return 0 }
func (c *noopController) Position() float64             { return 0 }
func (c *noopController) LoopMode() events.LoopMode      { return events.LoopNone }
func (c *noopController) Shuffle() bool                  { return false }
func (c *noopController) Play() error                   { return nil }
func (c *noopController) Pause() error                   { return nil }
func (c *noopController) Stop() error                    { return nil }
func (c *noopController) Next() error                    { return player.ErrUnsupported }
func (c *noopController) Previous() error                { return player.ErrUnsupported }
func (c *noopController) Seek(float64) error             { return player.ErrUnsupported }
func (c *noopController) SetVolume(int) error             { return nil }
func (c *noopController) SetMute(bool) error              { return player.ErrUnsupported }
func (c *noopController) SetLoop(events.LoopMode) error   { return player.ErrUnsupported }
func (c *noopController) SetShuffle(bool) error           { return player.ErrUnsupported }

func newTestServer() (*Server, *audiocontrol.Controller) {
	bus := events.New()
	ctrl := audiocontrol.New(bus, nil)
	cat := catalog.New()
	return New(ctrl, cat, nil), ctrl
}

func newGuardedTestServer() *Server {
	bus := events.New()
	ctrl := audiocontrol.New(bus, nil)
	cat := catalog.New()
	a := auth.New(auth.Config{
		Username:  "admin",
		Password:  "secret",
		JWTSecret: "a-sufficiently-long-test-secret-value",
		TokenTTL:  time.Minute,
	})
	return New(ctrl, cat, a)
}

func TestLoginWithValidCredentialsReturnsToken(t *testing.T) {
	s := newGuardedTestServer()

	body := strings.NewReader(`{"username": "admin", "password": "secret"}`)
	req := httptest.NewRequest(http.MethodPost, "/auth/login", body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body=%s", rec.Code, rec.Body.String())
	}

	var resp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("response is not valid JSON: %v", err)
	}
	if resp["token"] == "" {
		t.Fatal("expected a non-empty token in the response")
	}
}

func TestLoginWithInvalidCredentialsIsUnauthorized(t *testing.T) {
	s := newGuardedTestServer()

	body := strings.NewReader(`{"username": "admin", "password": "wrong"}`)
	req := httptest.NewRequest(http.MethodPost, "/auth/login", body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestGuardedEndpointRequiresTokenFromLogin(t *testing.T) {
	s := newGuardedTestServer()

	req := httptest.NewRequest(http.MethodGet, "/catalog/snapshot", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("without token: status = %d, want 401", rec.Code)
	}

	loginBody := strings.NewReader(`{"username": "admin", "password": "secret"}`)
	loginReq := httptest.NewRequest(http.MethodPost, "/auth/login", loginBody)
	loginReq.Header.Set("Content-Type", "application/json")
	loginRec := httptest.NewRecorder()
	s.Handler().ServeHTTP(loginRec, loginReq)

	var resp map[string]string
	if err := json.Unmarshal(loginRec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("login response is not valid JSON: %v", err)
	}

	authedReq := httptest.NewRequest(http.MethodGet, "/catalog/snapshot", nil)
	authedReq.Header.Set("Authorization", "Bearer "+resp["token"])
	authedRec := httptest.NewRecorder()
	s.Handler().ServeHTTP(authedRec, authedReq)
	if authedRec.Code != http.StatusOK {
		t.Fatalf("with token: status = %d, want 200, body=%s", authedRec.Code, authedRec.Body.String())
	}
}

func TestHealthzReportsOK(t *testing.T) {
	s, _ := newTestServer()

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestSetActivePlayerOutOfRangeReturnsConflict(t *testing.T) {
	s, _ := newTestServer()

	body := strings.NewReader(`{"index": 5}`)
	req := httptest.NewRequest(http.MethodPost, "/control/active-player", body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", rec.Code)
	}
}

func TestSetActivePlayerPromotesRegisteredController(t *testing.T) {
	s, ctrl := newTestServer()
	idx := ctrl.Registry.Register(&noopController{name: "test", id: "1", state: events.PlaybackPlaying})

	body := strings.NewReader(`{"index": 0}`)
	req := httptest.NewRequest(http.MethodPost, "/control/active-player", body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body=%s", rec.Code, rec.Body.String())
	}

	active, ok := ctrl.Registry.ActiveIndex()
	if !ok || active != idx {
		t.Fatalf("active index = %d, %v; want %d, true", active, ok, idx)
	}
}

func TestCatalogSnapshotReturnsJSON(t *testing.T) {
	s, _ := newTestServer()

	req := httptest.NewRequest(http.MethodGet, "/catalog/snapshot", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var out map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("response is not valid JSON: %v", err)
	}
}

func TestEventsStreamDeliversPublishedEvent(t *testing.T) {
	s, ctrl := newTestServer()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	req := httptest.NewRequest(http.MethodGet, "/events", nil).WithContext(ctx)
	rec := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		defer close(done)
		s.Handler().ServeHTTP(rec, req)
	}()

	// Give the handler a moment to subscribe before publishing.
	time.Sleep(50 * time.Millisecond)
	ctrl.Bus.Publish(events.NewStateChanged(events.PlayerSource{PlayerName: "test", PlayerID: "1"}, events.PlaybackPlaying))

	time.Sleep(50 * time.Millisecond)
	cancel()
	<-done

	reader := bufio.NewReader(strings.NewReader(rec.Body.String()))
	found := false
	for {
		line, err := reader.ReadString('\n')
		if strings.HasPrefix(line, "data: ") {
			found = true
			break
		}
		if err == io.EOF {
			break
		}
	}
	if !found {
		t.Fatalf("expected an SSE data line in body: %q", rec.Body.String())
	}
}
