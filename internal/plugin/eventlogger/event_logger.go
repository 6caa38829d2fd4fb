// Package eventlogger implements the bundled "event-logger" plugin: logs
// bus events at a configurable level, optionally filtered to the active
// player and/or a fixed set of event types.
package eventlogger

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/arung-agamani/audiocontrold/internal/audiocontrol"
	"github.com/arung-agamani/audiocontrold/internal/events"
	"github.com/arung-agamani/audiocontrold/internal/plugin"
)

const (
	TypeName = "event-logger"
	version  = "1.0.0"
)

type rawConfig struct {
	OnlyActive bool     `json:"only_active"`
	LogLevel   string   `json:"log_level"`
	EventTypes []string `json:"event_types"`
}

// Logger is the event-logger plugin.
type Logger struct {
	plugin.BaseActionPlugin

	onlyActive bool
	level      slog.Level
	eventTypes map[events.Kind]struct{} // nil means "all"
	log        *slog.Logger
}

// New parses the event-logger's config: only_active, log_level, event_types.
func New(raw json.RawMessage, log *slog.Logger) (*Logger, error) {
	var cfg rawConfig
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &cfg); err != nil {
			return nil, fmt.Errorf("event-logger: invalid config: %w", err)
		}
	}
	if log == nil {
		log = slog.Default()
	}

	level, err := parseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	var types map[events.Kind]struct{}
	if len(cfg.EventTypes) > 0 {
		types = make(map[events.Kind]struct{}, len(cfg.EventTypes))
		for _, t := range cfg.EventTypes {
			types[events.Kind(t)] = struct{}{}
		}
	}

	return &Logger{
		onlyActive: cfg.OnlyActive,
		level:      level,
		eventTypes: types,
		log:        log,
	}, nil
}

func parseLevel(s string) (slog.Level, error) {
	switch s {
	case "", "info":
		return slog.LevelInfo, nil
	case "trace", "debug":
		return slog.LevelDebug, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("event-logger: unknown log_level %q", s)
	}
}

// Constructor adapts New to plugin.Constructor for Factory registration.
func Constructor(log *slog.Logger) func(json.RawMessage) (plugin.ActionPlugin, error) {
	return func(raw json.RawMessage) (plugin.ActionPlugin, error) {
		return New(raw, log)
	}
}

func (l *Logger) Name() string    { return TypeName }
func (l *Logger) Version() string { return version }
func (l *Logger) Init() bool      { return true }
func (l *Logger) Shutdown() bool {
	l.UnsubscribeFromEventBus()
	return true
}

func (l *Logger) Initialize(controller *audiocontrol.WeakRef) {
	c, ok := controller.Upgrade()
	if !ok {
		return
	}
	l.BaseActionPlugin.Initialize(controller, c.Bus)
	l.SubscribeToEventBus(l.HandleEvent)
}

// HandleEvent logs event at the configured level, applying the
// only_active and event_types filters.
func (l *Logger) HandleEvent(event events.PlayerEvent) {
	if l.eventTypes != nil {
		if _, ok := l.eventTypes[event.Kind]; !ok {
			return
		}
	}

	if l.onlyActive && !l.isFromActivePlayer(event) {
		return
	}

	l.log.Log(context.Background(), l.level, "player event", "type", event.Kind, "source", event.Source)
}

func (l *Logger) isFromActivePlayer(event events.PlayerEvent) bool {
	c, ok := l.Controller.Upgrade()
	if !ok {
		return false
	}
	active, ok := c.Registry.GetActiveController()
	if !ok {
		return false
	}
	return active.Source() == event.Source
}
