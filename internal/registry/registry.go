// Package registry maps capability names to the provider connection that serves them.
package registry

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/alphadose/haxmap"
	"github.com/casualjim/hoot/tool"
)

var (
	// ErrNotFound is returned when no provider advertises a capability.
	ErrNotFound = errors.New("capability not found")
	// ErrDuplicateCapability is returned when a capability name is already registered.
	ErrDuplicateCapability = errors.New("duplicate capability")
	// ErrDuplicateProvider is returned when a provider id is already registered.
	ErrDuplicateProvider = errors.New("duplicate provider")
)

// Binding is one connected provider together with the capabilities it advertised.
type Binding struct {
	ID           string
	Conn         tool.Connection
	Capabilities []tool.Spec
}

// Registry holds provider bindings in registration order.
// Lookups are lock free, registration is serialized.
type Registry struct {
	mu       sync.Mutex
	bindings []*Binding
	ids      *haxmap.Map[string, *Binding]
	names    *haxmap.Map[string, *Binding]
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		ids:   haxmap.New[string, *Binding](),
		names: haxmap.New[string, *Binding](),
	}
}

// Register adds a binding. The registration is all or nothing: when the provider id or any of its
// capability names is already taken the registry is left unchanged.
func (r *Registry) Register(b Binding) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.ids.Get(b.ID); exists {
		return fmt.Errorf("%w: %s", ErrDuplicateProvider, b.ID)
	}

	seen := make(map[string]struct{}, len(b.Capabilities))
	for _, spec := range b.Capabilities {
		if owner, exists := r.names.Get(spec.Name); exists {
			return fmt.Errorf("%w: %q advertised by %s is already provided by %s", ErrDuplicateCapability, spec.Name, b.ID, owner.ID)
		}
		if _, dup := seen[spec.Name]; dup {
			return fmt.Errorf("%w: %q advertised twice by %s", ErrDuplicateCapability, spec.Name, b.ID)
		}
		seen[spec.Name] = struct{}{}
	}

	bound := &Binding{
		ID:           b.ID,
		Conn:         b.Conn,
		Capabilities: slices.Clone(b.Capabilities),
	}
	r.bindings = append(r.bindings, bound)
	r.ids.Set(bound.ID, bound)
	for _, spec := range bound.Capabilities {
		r.names.Set(spec.Name, bound)
	}
	return nil
}

// Resolve returns the binding that serves the named capability.
func (r *Registry) Resolve(name string) (Binding, error) {
	b, ok := r.names.Get(name)
	if !ok {
		return Binding{}, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return *b, nil
}

// Provider returns the binding registered under id.
func (r *Registry) Provider(id string) (Binding, bool) {
	b, ok := r.ids.Get(id)
	if !ok {
		return Binding{}, false
	}
	return *b, true
}

// AllCapabilities returns every capability, providers in registration order and each provider's
// capabilities in advertised order.
func (r *Registry) AllCapabilities() []tool.Spec {
	r.mu.Lock()
	defer r.mu.Unlock()

	var all []tool.Spec
	for _, b := range r.bindings {
		all = append(all, b.Capabilities...)
	}
	return all
}

// Bindings returns the registered bindings in registration order.
func (r *Registry) Bindings() []Binding {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Binding, len(r.bindings))
	for i, b := range r.bindings {
		out[i] = *b
	}
	return out
}

// Len returns the number of registered providers.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.bindings)
}

// Close closes every connection and empties the registry. A failure to close one provider does
// not prevent closing the others, all failures are joined.
func (r *Registry) Close() error {
	r.mu.Lock()
	bindings := r.bindings
	r.bindings = nil
	for _, b := range bindings {
		r.ids.Del(b.ID)
		for _, spec := range b.Capabilities {
			r.names.Del(spec.Name)
		}
	}
	r.mu.Unlock()

	var errs []error
	for _, b := range bindings {
		if b.Conn == nil {
			continue
		}
		if err := b.Conn.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s: %w", b.ID, err))
		}
	}
	return errors.Join(errs...)
}
