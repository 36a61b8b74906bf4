package smcore

import (
	"fmt"
	"sort"
	"sync"
)

// Registry maps shape names to typed constructors. Generated code builds one
// registry per service at init time; the codec uses it to construct nested
// objects during decode instead of resolving type names dynamically.
type Registry struct {
	mu    sync.RWMutex
	ctors map[string]func() any
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{ctors: make(map[string]func() any)}
}

// Register binds a shape name to a constructor returning a pointer to the
// zero value of the generated struct for that shape. Registering the same
// name twice panics: the mapping is built once at generation time and a
// duplicate indicates conflicting generated code.
func (r *Registry) Register(shapeName string, ctor func() any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.ctors[shapeName]; ok {
		panic(fmt.Sprintf("smcore: shape %q registered twice", shapeName))
	}
	r.ctors[shapeName] = ctor
}

// New constructs a fresh object for the named shape.
func (r *Registry) New(shapeName string) (any, error) {
	r.mu.RLock()
	ctor, ok := r.ctors[shapeName]
	r.mu.RUnlock()
	if !ok {
		return nil, &ShapeError{ShapeName: shapeName, Detail: "no constructor registered"}
	}
	return ctor(), nil
}

// Shapes returns the registered shape names, sorted.
func (r *Registry) Shapes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.ctors))
	for name := range r.ctors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
