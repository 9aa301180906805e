package engine

import (
	"fmt"
	"sort"
	"sync"

	"github.com/charmbracelet/log"
)

// Info describes a registered engine.
type Info struct {
	Name  string
	Title string
}

// Factory creates a fresh engine instance. Each surface owner gets its own.
type Factory func(logger *log.Logger) (Handle, error)

var (
	factories = make(map[string]Factory)
	titles    = make(map[string]string)
	mu        sync.RWMutex
)

// Register adds an engine factory under name. Engines call it from init.
// Panics if name is already registered.
func Register(name, title string, f Factory) {
	mu.Lock()
	defer mu.Unlock()

	if _, exists := factories[name]; exists {
		panic(fmt.Sprintf("engine: %q already registered", name))
	}
	factories[name] = f
	titles[name] = title
}

// List returns all registered engines sorted by name.
func List() []Info {
	mu.RLock()
	defer mu.RUnlock()

	result := make([]Info, 0, len(factories))
	for name := range factories {
		result = append(result, Info{Name: name, Title: titles[name]})
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Name < result[j].Name
	})
	return result
}

// Create instantiates the engine registered under name.
func Create(name string, logger *log.Logger) (Handle, error) {
	mu.RLock()
	f, ok := factories[name]
	mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownEngine, name)
	}
	if logger == nil {
		logger = log.Default()
	}
	h, err := f(logger.WithPrefix("engine"))
	if err != nil {
		return nil, fmt.Errorf("engine: cannot create %q: %w", name, err)
	}
	return h, nil
}

// Exists reports whether name is registered.
func Exists(name string) bool {
	mu.RLock()
	defer mu.RUnlock()

	_, ok := factories[name]
	return ok
}
