package provider

import (
	"fmt"

	"github.com/icebob/kantab-sub001/internal/logger"
)

type entry struct {
	desc     Descriptor
	strategy Strategy // nil while the provider is disabled
}

// Registry holds one descriptor per identity provider. A provider whose
// strategy could not be built (missing credentials, failed discovery)
// stays registered but disabled; lookups report it as unavailable
// instead of failing, so the remaining providers keep working.
type Registry struct {
	entries map[string]*entry
	order   []string
}

func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]*entry)}
}

// Register records a descriptor. Each name may be registered exactly once.
func (r *Registry) Register(desc Descriptor) error {
	if desc.Name == "" {
		return fmt.Errorf("provider: descriptor has no name")
	}
	if desc.Normalize == nil {
		return fmt.Errorf("provider %q: descriptor has no normalizer", desc.Name)
	}
	if _, ok := r.entries[desc.Name]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicate, desc.Name)
	}

	r.entries[desc.Name] = &entry{desc: desc}
	r.order = append(r.order, desc.Name)
	return nil
}

// Enable attaches a built strategy to a registered descriptor.
func (r *Registry) Enable(s Strategy) error {
	e, ok := r.entries[s.Name()]
	if !ok {
		return fmt.Errorf("provider: enable unregistered provider %q", s.Name())
	}
	e.strategy = s
	return nil
}

// Disable logs why a provider is unavailable and leaves it registered.
// Startup continues with the remaining providers.
func (r *Registry) Disable(name string, reason error) {
	logger.Warn("auth provider disabled", map[string]any{
		"provider": name,
		"reason":   reason.Error(),
	})
}

// Load resolves a provider's strategy. The second descriptor return
// carries the normalizer. ok is false for unknown or disabled providers.
func (r *Registry) Load(name string) (Strategy, Descriptor, bool) {
	e, ok := r.entries[name]
	if !ok || e.strategy == nil {
		return nil, Descriptor{}, false
	}
	return e.strategy, e.desc, true
}

// Enabled lists providers that have a working strategy, in registration
// order. Used for route registration and diagnostics.
func (r *Registry) Enabled() []string {
	var names []string
	for _, name := range r.order {
		if r.entries[name].strategy != nil {
			names = append(names, name)
		}
	}
	return names
}
