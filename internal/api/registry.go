package api

import (
	"fmt"
	"sort"
	"sync"

	"github.com/ShayCichocki/arbor/internal/generate"
)

// Provider names understood by the CLI.
const (
	ProviderAnthropic = "anthropic"
	ProviderBedrock   = "bedrock"
)

// Registry maps provider names to structured-output clients. It is passed
// explicitly to whoever needs a client; there is no package-level default.
type Registry struct {
	mu      sync.RWMutex
	clients map[string]generate.Client
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{clients: make(map[string]generate.Client)}
}

// Register adds a client under name.
func (r *Registry) Register(name string, client generate.Client) error {
	if name == "" {
		return fmt.Errorf("provider name is required")
	}
	if client == nil {
		return fmt.Errorf("provider %s: nil client", name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.clients[name]; exists {
		return fmt.Errorf("provider %s already registered", name)
	}
	r.clients[name] = client
	return nil
}

// Client returns the client registered under name.
func (r *Registry) Client(name string) (generate.Client, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	client, ok := r.clients[name]
	if !ok {
		return nil, fmt.Errorf("provider %s not found", name)
	}
	return client, nil
}

// List returns registered provider names in sorted order.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.clients))
	for name := range r.clients {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
