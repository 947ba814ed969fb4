package hostinterface

import (
	"sync"

	"github.com/sailnavsim/advancedboats/internal/dispatcher"
)

// configStruct is the state shared by the exported entry points.
type configStruct struct {
	mu sync.RWMutex

	// version is returned by advboats_version
	version string

	// dispatcher handles text commands
	dispatcher *dispatcher.Dispatcher
}

// Config defines how calls into this library are handled.
var Config = &configStruct{version: "No version set"}

// SetVersion sets the version string returned to the host.
func SetVersion(version string) {
	Config.mu.Lock()
	defer Config.mu.Unlock()
	Config.version = version
}

// Version returns the configured version string.
func Version() string {
	Config.mu.RLock()
	defer Config.mu.RUnlock()
	return Config.version
}

// SetDispatcher sets the dispatcher for text commands.
func SetDispatcher(d *dispatcher.Dispatcher) {
	Config.mu.Lock()
	defer Config.mu.Unlock()
	Config.dispatcher = d
}

// GetDispatcher returns the configured dispatcher, or nil if not set
func GetDispatcher() *dispatcher.Dispatcher {
	Config.mu.RLock()
	defer Config.mu.RUnlock()
	return Config.dispatcher
}
