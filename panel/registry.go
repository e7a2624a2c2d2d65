// Package panel implements the cross-plugin panel coordination protocol:
// a close registry enforcing the single-open-panel invariant, a capability
// table plugins register their panel actions into, a command bus bridging
// generic Save/Cancel controls to whichever form is active, and a generic
// per-plugin panel context owning the collection and mode state machine.
//
// Everything here is in-process state tied to plugin mount/unmount; none
// of it is persisted or part of any wire format.
package panel

import (
	"log/slog"
	"sync"
)

// CloseFunc closes a plugin's panel. It must be safe to call when the
// panel is already closed.
type CloseFunc func()

// CloseRegistry maps plugin names to their panel close functions. Opening
// any plugin's panel runs every other plugin's close function, so at most
// one panel is open at a time.
type CloseRegistry struct {
	mu      sync.Mutex
	closers map[string]CloseFunc
	logger  *slog.Logger
}

// NewCloseRegistry creates an empty CloseRegistry.
func NewCloseRegistry(logger *slog.Logger) *CloseRegistry {
	if logger == nil {
		logger = slog.Default()
	}
	return &CloseRegistry{
		closers: make(map[string]CloseFunc),
		logger:  logger,
	}
}

// Register installs the close function for a plugin. Registration is an
// idempotent overwrite: the last registration for a name wins.
func (r *CloseRegistry) Register(name string, fn CloseFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closers[name] = fn
}

// Unregister removes a plugin's close function. Calling it for a name
// that was never registered is a no-op.
func (r *CloseRegistry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.closers, name)
}

// CloseOthers invokes every registered close function except the one for
// exceptName. Each callback runs isolated: a panicking close handler is
// logged and the remaining handlers still run.
func (r *CloseRegistry) CloseOthers(exceptName string) {
	r.mu.Lock()
	fns := make(map[string]CloseFunc, len(r.closers))
	for name, fn := range r.closers {
		if name != exceptName {
			fns[name] = fn
		}
	}
	r.mu.Unlock()

	for name, fn := range fns {
		r.invoke(name, fn)
	}
}

func (r *CloseRegistry) invoke(name string, fn CloseFunc) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Warn("panel close handler panicked", "plugin", name, "panic", rec)
		}
	}()
	fn()
}

// Len reports how many plugins currently have a close function installed.
func (r *CloseRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.closers)
}
