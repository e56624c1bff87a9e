package logger

import (
	"sort"
	"sync"
)

// Components that log through Get. Setup registers a child logger for each.
const (
	ComponentDAG           = "dag"
	ComponentProvider      = "provider"
	ComponentObservability = "observability"
)

var registry = &componentRegistry{loggers: make(map[string]*Logger)}

type componentRegistry struct {
	mu      sync.RWMutex
	loggers map[string]*Logger
}

// Register stores a named logger, replacing any previous one.
func Register(name string, l *Logger) {
	registry.mu.Lock()
	defer registry.mu.Unlock()
	registry.loggers[name] = l
}

// Get returns the logger registered under name. Unregistered names get the
// global logger tagged with the component, so Get is safe to call before
// Setup and from concurrent runs.
func Get(name string) *Logger {
	registry.mu.RLock()
	l, ok := registry.loggers[name]
	registry.mu.RUnlock()
	if ok {
		return l
	}
	return GetGlobalLogger().WithComponent(name)
}

// Registered returns the sorted names of registered loggers.
func Registered() []string {
	registry.mu.RLock()
	defer registry.mu.RUnlock()
	names := make([]string, 0, len(registry.loggers))
	for name := range registry.loggers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Setup installs a global logger built from cfg and registers a
// component-tagged child for the built-in components plus any extra names.
func Setup(cfg *Config, service string, extra ...string) *Logger {
	cfg.ApplyDefaults()
	l := New(cfg, service)
	SetGlobalLogger(l)

	names := append([]string{ComponentDAG, ComponentProvider, ComponentObservability}, extra...)
	registry.mu.Lock()
	defer registry.mu.Unlock()
	for _, name := range names {
		registry.loggers[name] = l.WithComponent(name)
	}
	return l
}
