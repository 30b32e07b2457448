// Package provider supplies event descriptors from heterogeneous
// sources: the internal store-backed provider and any number of
// registered external providers. Discovery is explicit: callers
// build a Registry and hand it to the Catalog rather than relying on
// a process-wide hook table.
package provider

import (
	"context"
	"fmt"

	"github.com/stokes-dk/reg-man-rc-sub001/internal/events"
)

// Provider is a source of event descriptors.
type Provider interface {
	// ID uniquely identifies the source system.
	ID() string
	// Name is the source's display name.
	Name() string
	// AllDescriptors returns every descriptor the provider currently
	// exposes.
	AllDescriptors(ctx context.Context) ([]events.Descriptor, error)
	// DescriptorByID fetches one descriptor by its id within this
	// provider's namespace. A miss returns store.ErrNotFound (or a
	// provider-specific wrapped error); callers wanting best-effort
	// semantics go through Catalog.DescriptorByKey instead.
	DescriptorByID(ctx context.Context, descriptorID string) (events.Descriptor, error)
}

// Registry holds the internal provider plus every registered
// external provider, in registration order.
type Registry struct {
	internal  *InternalProvider
	externals []Provider
	byID      map[string]Provider
}

// NewRegistry builds a registry around the internal provider.
func NewRegistry(internal *InternalProvider) *Registry {
	r := &Registry{
		internal: internal,
		byID:     map[string]Provider{internal.ID(): internal},
	}
	return r
}

// Register adds an external provider. Duplicate provider ids are
// rejected.
func (r *Registry) Register(p Provider) error {
	if p.ID() == "" {
		return fmt.Errorf("provider has empty id")
	}
	if _, exists := r.byID[p.ID()]; exists {
		return fmt.Errorf("provider %q already registered", p.ID())
	}
	r.externals = append(r.externals, p)
	r.byID[p.ID()] = p
	return nil
}

// Internal returns the internal provider.
func (r *Registry) Internal() *InternalProvider { return r.internal }

// Externals returns the registered external providers in
// registration order.
func (r *Registry) Externals() []Provider { return r.externals }

// Provider looks a provider up by id.
func (r *Registry) Provider(id string) (Provider, bool) {
	if id == "" {
		id = events.InternalProviderID
	}
	p, ok := r.byID[id]
	return p, ok
}

// ProviderNames returns the id → display name table for every known
// provider. Recomputed on each call; the registry holds no derived
// caches.
func (r *Registry) ProviderNames() map[string]string {
	names := make(map[string]string, 1+len(r.externals))
	names[r.internal.ID()] = r.internal.Name()
	for _, p := range r.externals {
		names[p.ID()] = p.Name()
	}
	return names
}
