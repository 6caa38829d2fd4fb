// Package activemonitor implements the bundled "active-monitor" plugin:
// whichever controller starts playing becomes the active player, unless it
// already is. A manual selection lasts only until the next Playing event.
package activemonitor

import (
	"encoding/json"
	"log/slog"

	"github.com/arung-agamani/audiocontrold/internal/audiocontrol"
	"github.com/arung-agamani/audiocontrold/internal/events"
	"github.com/arung-agamani/audiocontrold/internal/plugin"
)

const (
	TypeName = "active-monitor"
	version  = "1.0.0"
)

type config struct {
	Enabled *bool `json:"enabled"`
}

// Monitor is the active-monitor plugin: on StateChanged{Playing} from a
// registered controller that isn't already active, it promotes that
// controller to active.
type Monitor struct {
	plugin.BaseActionPlugin

	enabled bool
	log     *slog.Logger
}

// New constructs a Monitor from JSON config: {"enabled": bool}, defaulting
// to enabled when config is absent.
func New(raw json.RawMessage, log *slog.Logger) (*Monitor, error) {
	cfg := config{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &cfg); err != nil {
			return nil, err
		}
	}
	if log == nil {
		log = slog.Default()
	}

	enabled := true
	if cfg.Enabled != nil {
		enabled = *cfg.Enabled
	}

	return &Monitor{enabled: enabled, log: log}, nil
}

// Constructor adapts New to plugin.Constructor for Factory registration.
func Constructor(log *slog.Logger) func(json.RawMessage) (plugin.ActionPlugin, error) {
	return func(raw json.RawMessage) (plugin.ActionPlugin, error) {
		return New(raw, log)
	}
}

func (m *Monitor) Name() string    { return TypeName }
func (m *Monitor) Version() string { return version }
func (m *Monitor) Init() bool      { return true }
func (m *Monitor) Shutdown() bool {
	m.UnsubscribeFromEventBus()
	return true
}

func (m *Monitor) Initialize(controller *audiocontrol.WeakRef) {
	m.BaseActionPlugin.Initialize(controller, bus(controller))
	if !m.enabled {
		return
	}
	m.SubscribeToEventBus(m.HandleEvent)
}

// bus recovers the bus handle through the same weak reference the plugin
// was handed — plugins are never wired the bus directly, only via the
// controller they can upgrade to.
func bus(controller *audiocontrol.WeakRef) *events.Bus {
	c, ok := controller.Upgrade()
	if !ok {
		return nil
	}
	return c.Bus
}

// HandleEvent implements the arbitration policy: on StateChanged{Playing}
// from a source resolvable to a registered controller that isn't already
// active, set it active. Unresolvable sources are logged at warn and
// otherwise ignored; this method never calls back into the controller
// while holding any lock of its own — it upgrades, reads, and releases
// before issuing the command.
func (m *Monitor) HandleEvent(event events.PlayerEvent) {
	if event.Kind != events.KindStateChanged || event.State != events.PlaybackPlaying {
		return
	}

	controller, ok := m.Controller.Upgrade()
	if !ok {
		return
	}

	index, ok := controller.Registry.FindBySource(event.Source.PlayerName, event.Source.PlayerID)
	if !ok {
		m.log.Warn("active-monitor: unresolvable playing source", "player_name", event.Source.PlayerName, "player_id", event.Source.PlayerID)
		return
	}

	if active, isActive := controller.Registry.ActiveIndex(); isActive && active == index {
		return
	}

	controller.Registry.SetActiveController(index)
}
