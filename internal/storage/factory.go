package storage

import (
	"fmt"
	"sort"
	"sync"

	"github.com/Pvngu/tecnm-monorepo-sub000/internal/config"
)

// FactoryFunc builds a backend from the storage section of the configuration.
type FactoryFunc func(*config.StorageConfig) (Storage, error)

var (
	factoriesMu sync.RWMutex
	factories   = make(map[string]FactoryFunc)
)

// Register registers a storage backend factory under name.
func Register(name string, factory FactoryFunc) {
	factoriesMu.Lock()
	defer factoriesMu.Unlock()
	factories[name] = factory
}

// Backends returns the registered backend names in sorted order.
func Backends() []string {
	factoriesMu.RLock()
	defer factoriesMu.RUnlock()
	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NewStorage creates the backend selected by cfg.Backend.
func NewStorage(cfg *config.StorageConfig) (Storage, error) {
	factoriesMu.RLock()
	factory, ok := factories[cfg.Backend]
	factoriesMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unsupported storage backend: %q (registered: %v)", cfg.Backend, Backends())
	}
	return factory(cfg)
}
