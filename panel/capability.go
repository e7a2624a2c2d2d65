package panel

import (
	"log/slog"
	"sync"
)

// Capabilities is the set of panel actions a plugin exposes to the shell.
// Plugins register the struct under their plural name at mount time; the
// shell consumes it by key lookup, so it never imports plugin code and no
// name synthesis happens on the call path. Nil entries are legal and mean
// the plugin does not support that action.
type Capabilities struct {
	OpenForCreate func()
	OpenForEdit   func(item any)
	OpenForView   func(item any)
	Close         func()
	Submit        func()
	Cancel        func()
}

// CapabilityTable maps plugin names to their registered Capabilities and
// resolves legacy string commands onto them.
type CapabilityTable struct {
	mu     sync.Mutex
	caps   map[string]Capabilities
	logger *slog.Logger
}

// NewCapabilityTable creates an empty CapabilityTable.
func NewCapabilityTable(logger *slog.Logger) *CapabilityTable {
	if logger == nil {
		logger = slog.Default()
	}
	return &CapabilityTable{
		caps:   make(map[string]Capabilities),
		logger: logger,
	}
}

// Register installs a plugin's capabilities; last registration wins.
func (t *CapabilityTable) Register(pluginName string, caps Capabilities) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.caps[pluginName] = caps
}

// Unregister removes a plugin's capabilities; no-op when absent.
func (t *CapabilityTable) Unregister(pluginName string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.caps, pluginName)
}

// Lookup returns the capabilities registered for a plugin.
func (t *CapabilityTable) Lookup(pluginName string) (Capabilities, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	caps, ok := t.caps[pluginName]
	return caps, ok
}

// Open invokes the plugin's opener for the given mode. A missing plugin
// or nil capability logs a warning and does nothing; panel actions are
// never fatal.
func (t *CapabilityTable) Open(pluginName string, mode Mode, item any) {
	caps, ok := t.Lookup(pluginName)
	if !ok {
		t.warnMissing(pluginName, "open")
		return
	}
	switch mode {
	case ModeCreate:
		if caps.OpenForCreate == nil {
			t.warnMissing(pluginName, "open-create")
			return
		}
		caps.OpenForCreate()
	case ModeEdit:
		if caps.OpenForEdit == nil {
			t.warnMissing(pluginName, "open-edit")
			return
		}
		caps.OpenForEdit(item)
	case ModeView:
		if caps.OpenForView == nil {
			t.warnMissing(pluginName, "open-view")
			return
		}
		caps.OpenForView(item)
	default:
		t.logger.Warn("unknown panel mode", "plugin", pluginName, "mode", mode)
	}
}

// Close invokes the plugin's close capability, if any.
func (t *CapabilityTable) Close(pluginName string) {
	caps, ok := t.Lookup(pluginName)
	if !ok || caps.Close == nil {
		t.warnMissing(pluginName, "close")
		return
	}
	caps.Close()
}

// Dispatch resolves a legacy string command (see DeriveFunctionName)
// against the registered plugins and invokes the matching capability.
// It reports whether a handler ran; unresolvable commands log a warning
// and return false, matching the old silent no-op behavior.
func (t *CapabilityTable) Dispatch(command string, item any) bool {
	t.mu.Lock()
	names := make([]string, 0, len(t.caps))
	for name := range t.caps {
		names = append(names, name)
	}
	t.mu.Unlock()

	for _, name := range names {
		for _, mode := range []Mode{ModeCreate, ModeEdit, ModeView} {
			if DeriveFunctionName("open", mode, name) == command {
				t.Open(name, mode, item)
				return true
			}
		}
		if DeriveFunctionName("close", "", name) == command {
			t.Close(name)
			return true
		}
	}
	t.logger.Warn("unresolved panel command", "command", command)
	return false
}

func (t *CapabilityTable) warnMissing(pluginName, action string) {
	t.logger.Warn("panel capability not registered", "plugin", pluginName, "action", action)
}
