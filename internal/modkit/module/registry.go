package module

import (
	"slices"
	"sync"
)

// registry maps module name to the port set it registered at mount time.
// The API registers every module; meta reads the names back
var registry struct {
	sync.RWMutex
	ports map[string]any
}

// Register records ports under name, replacing an earlier entry
func Register(name string, ports any) {
	registry.Lock()
	defer registry.Unlock()
	if registry.ports == nil {
		registry.ports = make(map[string]any)
	}
	registry.ports[name] = ports
}

// PortsAs looks up name and asserts its ports to T
func PortsAs[T any](name string) (T, bool) {
	registry.RLock()
	defer registry.RUnlock()
	v, ok := registry.ports[name].(T)
	return v, ok
}

// Names lists registered modules, sorted
func Names() []string {
	registry.RLock()
	defer registry.RUnlock()
	out := make([]string, 0, len(registry.ports))
	for n := range registry.ports {
		out = append(out, n)
	}
	slices.Sort(out)
	return out
}

// Reset empties the registry; tests only
func Reset() {
	registry.Lock()
	registry.ports = nil
	registry.Unlock()
}
