package audiocontrol

import "sync/atomic"

// WeakRef is the Go stand-in for a non-owning back-reference. Go has no
// native weak pointer, so this pairs a plain pointer with an atomic
// "torn down" flag flipped exactly once by the owner's Shutdown. Holders
// must call Upgrade before every use; a failed upgrade means the owner has
// been torn down and the holder must abandon its current unit of work
// rather than dereference a possibly-freed target.
type WeakRef struct {
	target  *Controller
	tornDown atomic.Bool
}

func newWeakRef(target *Controller) *WeakRef {
	return &WeakRef{target: target}
}

// Upgrade returns the underlying Controller and true, or (nil, false) once
// the owner has torn it down.
func (w *WeakRef) Upgrade() (*Controller, bool) {
	if w.tornDown.Load() {
		return nil, false
	}
	return w.target, true
}

// teardown marks the reference permanently invalid. Idempotent.
func (w *WeakRef) teardown() {
	w.tornDown.Store(true)
}
