// Package integrations wires third-party CRM providers into a single HTTP
// surface for the downstream catalog browser.
package integrations

import (
	"net/http"
	"sort"
	"sync"
)

// Routes is the set of HTTP endpoints every provider exposes.
type Routes interface {
	Authorize(w http.ResponseWriter, r *http.Request)
	OAuth2Callback(w http.ResponseWriter, r *http.Request)
	Credentials(w http.ResponseWriter, r *http.Request)
	Items(w http.ResponseWriter, r *http.Request)
}

// Registry holds named providers and mounts their endpoints under
// /integrations/<name>/.
type Registry struct {
	mu        sync.RWMutex
	providers map[string]Routes
}

// NewRegistry constructs an empty Registry.
func NewRegistry() *Registry {
	return &Registry{providers: map[string]Routes{}}
}

// Register adds or replaces a provider under the given name.
func (g *Registry) Register(name string, p Routes) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.providers[name] = p
}

// Names returns the registered provider names, sorted.
func (g *Registry) Names() []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	names := make([]string, 0, len(g.providers))
	for name := range g.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Mount attaches every provider's endpoints to the mux.
func (g *Registry) Mount(mux *http.ServeMux) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	for name, p := range g.providers {
		base := "/integrations/" + name
		mux.HandleFunc("POST "+base+"/authorize", p.Authorize)
		mux.HandleFunc("GET "+base+"/oauth2callback", p.OAuth2Callback)
		mux.HandleFunc("POST "+base+"/credentials", p.Credentials)
		mux.HandleFunc("POST "+base+"/items", p.Items)
	}
}
