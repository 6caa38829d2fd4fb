package plugin

import (
	"sync"

	"github.com/arung-agamani/audiocontrold/internal/audiocontrol"
	"github.com/arung-agamani/audiocontrold/internal/events"
)

// BaseActionPlugin is a reusable mixin for ActionPlugin implementations: it
// owns the subscription id and worker handle, and provides
// subscribe/unsubscribe helpers so concrete plugins don't each reimplement
// bus bookkeeping. Embed it and call Initialize from the embedding type's
// own Initialize, or call it directly if no further wiring is needed.
type BaseActionPlugin struct {
	Controller *audiocontrol.WeakRef
	Bus        *events.Bus

	mu     sync.Mutex
	subID  events.SubscriberID
	handle *events.WorkerHandle
	active bool
}

// Initialize stores the controller back-reference. Concrete plugins embed
// BaseActionPlugin and call this from their own Initialize before
// subscribing.
func (b *BaseActionPlugin) Initialize(controller *audiocontrol.WeakRef, bus *events.Bus) {
	b.Controller = controller
	b.Bus = bus
}

// SubscribeToEventBus subscribes with interest All, spawns a worker
// invoking handler for each event until the channel closes, and records
// the subscription so UnsubscribeFromEventBus can tear it down.
func (b *BaseActionPlugin) SubscribeToEventBus(handler func(events.PlayerEvent)) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.active {
		return
	}

	id, ch := b.Bus.SubscribeAll()
	b.subID = id
	b.handle = b.Bus.SpawnWorker(id, ch, handler)
	b.active = true
}

// UnsubscribeFromEventBus removes the subscription; the worker goroutine
// observes the resulting channel closure and exits on its own. This call
// does not block on that exit — teardown is fire-and-forget, matching the
// host's own shutdown discipline.
func (b *BaseActionPlugin) UnsubscribeFromEventBus() {
	b.mu.Lock()
	if !b.active {
		b.mu.Unlock()
		return
	}
	id := b.subID
	b.active = false
	b.mu.Unlock()

	b.Bus.Unsubscribe(id)
}
