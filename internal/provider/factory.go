package provider

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// ErrUnknownModel is returned when no registered provider claims a model id.
var ErrUnknownModel = fmt.Errorf("unknown model")

// Factory routes model identifiers to the provider responsible for them.
// Dispatch is closed: adding a backend is an explicit registration, and the
// same id always routes to the same variant. Safe for concurrent use.
type Factory struct {
	mu        sync.RWMutex
	providers map[string]Provider
	routes    []route
}

type route struct {
	prefix   string
	provider string
}

// NewFactory creates an empty Factory.
func NewFactory() *Factory {
	return &Factory{providers: make(map[string]Provider)}
}

// Register adds a provider and the model-id prefixes that route to it.
// Re-registering a name overwrites it (last-write-wins); its routes are
// appended in registration order, and the first matching prefix wins.
func (f *Factory) Register(p Provider, prefixes ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.providers[p.Name()] = p
	for _, prefix := range prefixes {
		f.routes = append(f.routes, route{prefix: prefix, provider: p.Name()})
	}
}

// GetProviderForModel resolves a model id to its provider. Routing is pure
// prefix matching; unknown ids return ErrUnknownModel with the known
// prefixes listed.
func (f *Factory) GetProviderForModel(modelID string) (Provider, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	for _, r := range f.routes {
		if strings.HasPrefix(modelID, r.prefix) {
			return f.providers[r.provider], nil
		}
	}

	prefixes := make([]string, 0, len(f.routes))
	for _, r := range f.routes {
		prefixes = append(prefixes, r.prefix)
	}
	return nil, fmt.Errorf("%w: %q (known prefixes: %s)", ErrUnknownModel, modelID, strings.Join(prefixes, ", "))
}

// Get retrieves a provider by name, or nil when not registered.
func (f *Factory) Get(name string) Provider {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.providers[name]
}

// Providers returns all registered providers in alphabetical order.
func (f *Factory) Providers() []Provider {
	f.mu.RLock()
	defer f.mu.RUnlock()

	out := make([]Provider, 0, len(f.providers))
	for _, p := range f.providers {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out
}

// Routes returns the routing table in match order, as prefix/provider pairs.
func (f *Factory) Routes() [][2]string {
	f.mu.RLock()
	defer f.mu.RUnlock()

	out := make([][2]string, 0, len(f.routes))
	for _, r := range f.routes {
		out = append(out, [2]string{r.prefix, r.provider})
	}
	return out
}

// ProviderStatus pairs a provider name with its installation probe result,
// for diagnostics.
type ProviderStatus struct {
	Name   string
	Status InstallationStatus
}

// Doctor probes every registered provider, in alphabetical order.
func (f *Factory) Doctor(ctx context.Context) []ProviderStatus {
	providers := f.Providers()
	statuses := make([]ProviderStatus, 0, len(providers))
	for _, p := range providers {
		statuses = append(statuses, ProviderStatus{
			Name:   p.Name(),
			Status: p.CheckInstallation(ctx),
		})
	}
	return statuses
}
