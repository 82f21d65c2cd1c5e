package shipping

import (
	"fmt"

	"github.com/ecomkit/checkout-service/internal/domain/ports"
)

// Registry maps carrier type identifiers to their label providers. It
// is assembled and validated once at startup; lookups at shipment time
// never probe for capabilities dynamically.
type Registry struct {
	providers map[string]ports.LabelProvider
}

// NewRegistry builds a registry from the given providers. Duplicate
// carrier types are a wiring mistake and fail startup.
func NewRegistry(providers ...ports.LabelProvider) (*Registry, error) {
	r := &Registry{providers: make(map[string]ports.LabelProvider, len(providers))}
	for _, p := range providers {
		carrierType := p.CarrierType()
		if carrierType == "" {
			return nil, fmt.Errorf("label provider %T has an empty carrier type", p)
		}
		if _, exists := r.providers[carrierType]; exists {
			return nil, fmt.Errorf("duplicate label provider for carrier type %q", carrierType)
		}
		r.providers[carrierType] = p
	}
	return r, nil
}

// Lookup returns the provider for a carrier type.
func (r *Registry) Lookup(carrierType string) (ports.LabelProvider, bool) {
	p, ok := r.providers[carrierType]
	return p, ok
}

// CarrierTypes lists the registered carrier types.
func (r *Registry) CarrierTypes() []string {
	types := make([]string, 0, len(r.providers))
	for t := range r.providers {
		types = append(types, t)
	}
	return types
}
