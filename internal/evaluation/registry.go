package evaluation

import (
	"fmt"
	"sort"
	"sync"
)

// registry maps evaluator names to implementations. Duplicate registration
// is rejected so an evaluator can never be silently overridden.
var (
	registryMu sync.RWMutex
	registry   = make(map[string]Evaluator)
)

// Register adds an evaluator to the registry
func Register(ev Evaluator) error {
	registryMu.Lock()
	defer registryMu.Unlock()

	name := ev.Name()
	if _, exists := registry[name]; exists {
		return fmt.Errorf("%w: evaluator %q already registered", ErrInvalidConfig, name)
	}
	registry[name] = ev
	return nil
}

// Get returns a registered evaluator by name
func Get(name string) (Evaluator, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	ev, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("%w: evaluator %q not registered (available: %v)",
			ErrInvalidConfig, name, listLocked())
	}
	return ev, nil
}

// List returns the registered evaluator names, sorted
func List() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return listLocked()
}

func listLocked() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func init() {
	// Built-in evaluators. Registration cannot collide at init time.
	if err := Register(&CommonEvaluator{}); err != nil {
		panic(err)
	}
	if err := Register(&FastEvaluator{}); err != nil {
		panic(err)
	}
}
