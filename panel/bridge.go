package panel

import (
	"log/slog"
	"sync"
)

// FormHandlers are the submit/cancel entry points of a mounted form.
type FormHandlers struct {
	Submit func()
	Cancel func()
}

// FormBridge decouples the shell's generic Save/Cancel buttons from the
// active plugin's form component. Forms install their handlers under the
// plugin name on mount and remove them on unmount; the shell invokes by
// name. Because the close registry keeps at most one panel open, at most
// one form's handlers are installed at any time.
type FormBridge struct {
	mu       sync.Mutex
	handlers map[string]FormHandlers
	logger   *slog.Logger
}

// NewFormBridge creates an empty FormBridge.
func NewFormBridge(logger *slog.Logger) *FormBridge {
	if logger == nil {
		logger = slog.Default()
	}
	return &FormBridge{
		handlers: make(map[string]FormHandlers),
		logger:   logger,
	}
}

// RegisterFormHandlers installs a form's handlers; last wins.
func (b *FormBridge) RegisterFormHandlers(pluginName string, h FormHandlers) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[pluginName] = h
}

// UnregisterFormHandlers removes a form's handlers; no-op when absent.
func (b *FormBridge) UnregisterFormHandlers(pluginName string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.handlers, pluginName)
}

// InvokeSubmit calls the installed submit handler for a plugin. A stale
// or missing handler is logged and ignored; nothing is queued or retried.
func (b *FormBridge) InvokeSubmit(pluginName string) {
	b.mu.Lock()
	h, ok := b.handlers[pluginName]
	b.mu.Unlock()
	if !ok || h.Submit == nil {
		b.logger.Warn("no submit handler installed", "plugin", pluginName)
		return
	}
	h.Submit()
}

// InvokeCancel calls the installed cancel handler for a plugin, with the
// same missing-handler semantics as InvokeSubmit.
func (b *FormBridge) InvokeCancel(pluginName string) {
	b.mu.Lock()
	h, ok := b.handlers[pluginName]
	b.mu.Unlock()
	if !ok || h.Cancel == nil {
		b.logger.Warn("no cancel handler installed", "plugin", pluginName)
		return
	}
	h.Cancel()
}
