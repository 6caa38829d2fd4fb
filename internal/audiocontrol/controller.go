package audiocontrol

import (
	"log/slog"
	"sync"

	"github.com/arung-agamani/audiocontrold/internal/events"
	"github.com/arung-agamani/audiocontrold/internal/player"
)

// Plugin is the minimal shape Controller needs to hold and tear down a
// loaded plugin. It is defined here, on the consumer side, rather than
// imported from the plugin package, so that package plugin can depend on
// audiocontrol (for WeakRef) without audiocontrol depending back on it.
type Plugin interface {
	Name() string
	Version() string
	Shutdown() bool
}

// Controller is the composition root: it holds the controller registry, a
// handle to the event bus, and the loaded plugin set. Plugins reach it only
// through a WeakRef, never a direct pointer, so Shutdown can deterministically
// invalidate every outstanding reference before plugins are torn down.
type Controller struct {
	Registry *player.Registry
	Bus      *events.Bus

	mu       sync.Mutex
	plugins  []Plugin
	weakRefs []*WeakRef
	log      *slog.Logger
}

// New creates a Controller wired to bus, with a fresh Registry publishing
// active-player transitions on that same bus.
func New(bus *events.Bus, log *slog.Logger) *Controller {
	if log == nil {
		log = slog.Default()
	}
	return &Controller{
		Registry: player.NewRegistry(bus),
		Bus:      bus,
		log:      log,
	}
}

// WeakRef returns a fresh non-owning reference to c, for handing to a
// plugin at initialization.
func (c *Controller) WeakRef() *WeakRef {
	ref := newWeakRef(c)

	c.mu.Lock()
	c.weakRefs = append(c.weakRefs, ref)
	c.mu.Unlock()

	return ref
}

// AddPlugin registers a loaded plugin so Shutdown will tear it down.
func (c *Controller) AddPlugin(p Plugin) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.plugins = append(c.plugins, p)
}

// Plugins returns a snapshot of the currently loaded plugins.
func (c *Controller) Plugins() []Plugin {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Plugin, len(c.plugins))
	copy(out, c.plugins)
	return out
}

// Shutdown invalidates every WeakRef handed out (so in-flight plugin
// handlers observe a failed Upgrade and abandon gracefully) and then calls
// Shutdown on every loaded plugin. Idempotent: safe to call more than once.
func (c *Controller) Shutdown() {
	c.mu.Lock()
	refs := c.weakRefs
	c.weakRefs = nil
	plugins := c.plugins
	c.mu.Unlock()

	for _, ref := range refs {
		ref.teardown()
	}

	for _, p := range plugins {
		if !p.Shutdown() {
			c.log.Warn("plugin shutdown reported failure", "plugin", p.Name(), "version", p.Version())
		}
	}
}
