package plugin

import (
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/arung-agamani/audiocontrold/internal/audiocontrol"
	"github.com/arung-agamani/audiocontrold/internal/events"
)

type stubPlugin struct {
	typeName string
}

func (s *stubPlugin) Name() string                                            { return s.typeName }
func (s *stubPlugin) Version() string                                         { return "v1" }
func (s *stubPlugin) Init() bool                                              { return true }
func (s *stubPlugin) Shutdown() bool                                          { return true }
func (s *stubPlugin) Initialize(controller *audiocontrol.WeakRef)             {}
func (s *stubPlugin) HandleEvent(event events.PlayerEvent)                   {}

func newTestFactory() *Factory {
	f := NewFactory(slog.Default())
	f.Register("ok-type", func(config json.RawMessage) (ActionPlugin, error) {
		return &stubPlugin{typeName: "ok-type"}, nil
	})
	f.Register("requires-config", func(config json.RawMessage) (ActionPlugin, error) {
		if len(config) == 0 || string(config) == "null" {
			return nil, errors.New("missing required config")
		}
		return &stubPlugin{typeName: "requires-config"}, nil
	})
	return f
}

func TestFactoryCreateFromJSONSingle(t *testing.T) {
	f := newTestFactory()

	lp, err := f.CreateFromJSON([]byte(`{"ok-type": {"enabled": true}}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if lp.TypeName != "ok-type" {
		t.Fatalf("got type %q, want ok-type", lp.TypeName)
	}
	if lp.InstanceID.String() == "" {
		t.Fatal("expected a non-empty instance id")
	}
}

func TestFactoryUnknownType(t *testing.T) {
	f := newTestFactory()

	_, err := f.CreateFromJSON([]byte(`{"nonexistent": {}}`))
	if !errors.Is(err, ErrUnknownPluginType) {
		t.Fatalf("expected ErrUnknownPluginType, got %v", err)
	}
}

func TestFactoryMultiKeyObjectRejected(t *testing.T) {
	f := newTestFactory()

	_, err := f.CreateFromJSON([]byte(`{"ok-type": {}, "other": {}}`))
	if err == nil {
		t.Fatal("expected an error for a multi-key config object")
	}
}

func TestFactoryCreatePluginsFromJSONArraySkipsBadEntries(t *testing.T) {
	f := newTestFactory()

	data := []byte(`[
		{"ok-type": {}},
		{"nonexistent": {}},
		{"requires-config": null},
		{"requires-config": {"api_key": "x"}}
	]`)

	loaded := f.CreatePluginsFromJSON(data)
	if len(loaded) != 2 {
		t.Fatalf("expected 2 successfully loaded plugins, got %d", len(loaded))
	}
	if loaded[0].TypeName != "ok-type" || loaded[1].TypeName != "requires-config" {
		t.Fatalf("unexpected loaded types: %+v, %+v", loaded[0], loaded[1])
	}
}

func TestFactoryInstanceIDsAreUnique(t *testing.T) {
	f := newTestFactory()

	lp1, _ := f.CreateFromJSON([]byte(`{"ok-type": {}}`))
	lp2, _ := f.CreateFromJSON([]byte(`{"ok-type": {}}`))

	if lp1.InstanceID == lp2.InstanceID {
		t.Fatal("expected distinct instance ids for separate constructor calls")
	}
}
