package codegen

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// ErrUnsupportedFramework is matched by every UnsupportedFrameworkError.
var ErrUnsupportedFramework = errors.New("codegen: unsupported framework")

// UnsupportedFrameworkError names a framework no generator is registered for.
type UnsupportedFrameworkError struct {
	Framework string
}

func (e *UnsupportedFrameworkError) Error() string {
	return fmt.Sprintf("Unsupported framework: %s", e.Framework)
}

// Is lets errors.Is match ErrUnsupportedFramework.
func (e *UnsupportedFrameworkError) Is(target error) bool {
	return target == ErrUnsupportedFramework
}

// Registry stores generators by lower-cased name.
type Registry struct {
	mu         sync.RWMutex
	generators map[string]Generator
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		generators: make(map[string]Generator),
	}
}

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Register adds a generator under its Name(). Duplicate names return an error.
func (r *Registry) Register(gen Generator) error {
	if gen == nil {
		return errors.New("codegen: generator is required")
	}
	name := normalizeName(gen.Name())
	if name == "" {
		return errors.New("codegen: generator name is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.generators[name]; exists {
		return fmt.Errorf("codegen: generator %q already registered", name)
	}
	r.generators[name] = gen
	return nil
}

// MustRegister panics on registration failure. Useful for init-time wiring.
func (r *Registry) MustRegister(gen Generator) {
	if err := r.Register(gen); err != nil {
		panic(err)
	}
}

// Get retrieves a generator by case-insensitive name.
func (r *Registry) Get(name string) (Generator, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	gen, ok := r.generators[normalizeName(name)]
	if !ok {
		return nil, &UnsupportedFrameworkError{Framework: name}
	}
	return gen, nil
}

// Has reports whether a generator is registered under name.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.generators[normalizeName(name)]
	return ok
}

// List returns the registered names, sorted.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.generators))
	for name := range r.generators {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
