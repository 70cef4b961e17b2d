package factors

import (
	"fmt"
	"sort"
	"sync"
)

// Registry holds factor definitions by name. Duplicate names are rejected
// so a definition can never be silently replaced.
type Registry struct {
	mu   sync.RWMutex
	defs map[string]Definition
}

// NewRegistry returns an empty registry
func NewRegistry() *Registry {
	return &Registry{defs: make(map[string]Definition)}
}

// Register adds a definition, rejecting duplicates
func (r *Registry) Register(d Definition) error {
	if err := d.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.defs[d.Name]; exists {
		return fmt.Errorf("factor %q already registered", d.Name)
	}
	r.defs[d.Name] = d
	return nil
}

// Get returns a definition by name
func (r *Registry) Get(name string) (Definition, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	d, ok := r.defs[name]
	if !ok {
		return Definition{}, fmt.Errorf("factor %q not registered (available: %v)", name, r.listLocked())
	}
	return d, nil
}

// List returns all registered names, sorted
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.listLocked()
}

// All returns every registered definition in name order
func (r *Registry) All() []Definition {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Definition, 0, len(r.defs))
	for _, name := range r.listLocked() {
		out = append(out, r.defs[name])
	}
	return out
}

func (r *Registry) listLocked() []string {
	names := make([]string, 0, len(r.defs))
	for name := range r.defs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// builtinFamily pairs a transform with its identity and field needs
type builtinFamily struct {
	name    string
	version string
	fields  []string
	fn      Transform
}

var builtinFamilies = []builtinFamily{
	{"momentum", "1.0.0", []string{FieldClose}, momentum},
	{"reversal", "1.0.0", []string{FieldClose}, reversal},
	{"volatility", "1.0.0", []string{FieldClose}, volatility},
	{"volume_ratio", "1.0.0", []string{FieldVolume}, volumeRatio},
	{"updown_power", "1.0.0", []string{FieldClose, FieldVolume}, updownPower},
}

var builtinWindows = []int{5, 20, 60}

// Builtins returns a registry pre-loaded with every built-in family at every
// standard window, named <family>_<window>
func Builtins() *Registry {
	r := NewRegistry()
	for _, fam := range builtinFamilies {
		for _, w := range builtinWindows {
			d := Definition{
				Name:           fmt.Sprintf("%s_%d", fam.name, w),
				Version:        fam.version,
				Window:         w,
				RequiredFields: fam.fields,
				Transform:      fam.fn,
			}
			if err := r.Register(d); err != nil {
				// Names are generated and cannot collide
				panic(err)
			}
		}
	}
	return r
}
