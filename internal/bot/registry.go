package bot

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// ProviderFactory builds one chat provider. model overrides the configured
// default when non-empty; factories that take no model ignore it.
type ProviderFactory func(ctx context.Context, model string) (Provider, error)

// Registry resolves the BOT_PROVIDER setting to a FoodieBot backend. The
// server registers scripted, gemini and openrouter at startup and resolves
// the configured one once; nothing re-registers after that.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]ProviderFactory
}

func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]ProviderFactory)}
}

func (r *Registry) Register(name string, f ProviderFactory) {
	name = strings.ToLower(strings.TrimSpace(name))
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = f
}

// Get builds the named provider. The error for an unknown name lists what is
// registered, since it usually means a BOT_PROVIDER typo in the environment.
func (r *Registry) Get(ctx context.Context, name string, model string) (Provider, error) {
	name = strings.ToLower(strings.TrimSpace(name))

	r.mu.RLock()
	f, ok := r.factories[name]
	var known []string
	if !ok {
		known = make([]string, 0, len(r.factories))
		for k := range r.factories {
			known = append(known, k)
		}
	}
	r.mu.RUnlock()

	if !ok {
		sort.Strings(known)
		return nil, fmt.Errorf("unknown bot provider %q (registered: %s)", name, strings.Join(known, ", "))
	}
	return f(ctx, model)
}
