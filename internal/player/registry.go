package player

import (
	"sync"

	"github.com/arung-agamani/audiocontrold/internal/events"
)

// noActive is the sentinel index meaning "no controller is currently
// active" (the NoneActive state).
const noActive = -1

// Registry holds the ordered, append-only set of registered Controllers
// and tracks which one (if any) is active — the single target of
// user-facing commands and the default "current song" source.
//
// Registration indices are stable for the process lifetime: once assigned,
// an index is never reused or shifted, even if a controller is later
// considered stale by its backend.
type Registry struct {
	mu          sync.RWMutex
	controllers []Controller
	active      int

	bus *events.Bus
}

// NewRegistry creates an empty registry that publishes ActivePlayerChanged
// events to bus on every active-slot transition.
func NewRegistry(bus *events.Bus) *Registry {
	return &Registry{active: noActive, bus: bus}
}

// Register appends controller and returns its stable index.
func (r *Registry) Register(c Controller) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.controllers = append(r.controllers, c)
	return len(r.controllers) - 1
}

// ListControllers returns a snapshot of all registered controllers in
// registration order.
func (r *Registry) ListControllers() []Controller {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Controller, len(r.controllers))
	copy(out, r.controllers)
	return out
}

// GetActiveController returns the currently active controller, or
// (nil, false) if the state machine is in NoneActive.
func (r *Registry) GetActiveController() (Controller, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.active == noActive || r.active >= len(r.controllers) {
		return nil, false
	}
	return r.controllers[r.active], true
}

// ActiveIndex returns the currently active index and whether one is set.
func (r *Registry) ActiveIndex() (int, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.active, r.active != noActive
}

// SetActiveController transitions the active slot to index. Returns false
// without effect if index is out of range, or if index already equals the
// current active index (a deliberate no-op convention — see DESIGN.md).
// On a real transition it emits exactly one ActivePlayerChanged event.
func (r *Registry) SetActiveController(index int) bool {
	r.mu.Lock()
	if index < 0 || index >= len(r.controllers) {
		r.mu.Unlock()
		return false
	}
	if index == r.active {
		r.mu.Unlock()
		return false
	}

	r.active = index
	newSource := r.controllers[index].Source()
	r.mu.Unlock()

	r.bus.Publish(events.NewActivePlayerChanged(&newSource))
	return true
}

// Deregister removes controller registration effects on the active slot:
// if index was active, the registry transitions to NoneActive and emits
// ActivePlayerChanged(nil). The controller itself remains addressable by
// index (indices are stable and never reused) but is marked inert by the
// caller's own bookkeeping; Registry only tracks activity, not liveness.
func (r *Registry) Deregister(index int) {
	r.mu.Lock()
	if r.active != index {
		r.mu.Unlock()
		return
	}
	r.active = noActive
	r.mu.Unlock()

	r.bus.Publish(events.NewActivePlayerChanged(nil))
}

// FindBySource returns the index of the first controller whose Source
// matches (name, id), or (0, false) if none match.
func (r *Registry) FindBySource(name, id string) (int, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for i, c := range r.controllers {
		src := c.Source()
		if src.PlayerName == name && src.PlayerID == id {
			return i, true
		}
	}
	return 0, false
}
