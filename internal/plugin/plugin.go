package plugin

import (
	"github.com/arung-agamani/audiocontrold/internal/audiocontrol"
	"github.com/arung-agamani/audiocontrold/internal/events"
)

// Plugin is the contract every loaded plugin satisfies, independent of
// whether it acts on events.
type Plugin interface {
	Name() string
	Version() string

	// Init runs one-shot startup. A false return means the plugin is
	// discarded by the host (e.g. missing required resources).
	Init() bool

	// Shutdown runs one-shot teardown and must be idempotent.
	Shutdown() bool
}

// ActionPlugin additionally reacts to bus events once wired to the
// controller.
type ActionPlugin interface {
	Plugin

	// Initialize receives the non-owning back-reference to the Audio
	// Controller, typically subscribing to the event bus here.
	Initialize(controller *audiocontrol.WeakRef)

	// HandleEvent is invoked for each event the plugin subscribed to.
	HandleEvent(event events.PlayerEvent)
}
