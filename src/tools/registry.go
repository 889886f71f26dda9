package tools

import (
	"fmt"
	"strings"
	"sync"
)

// Registry holds the enabled tools for one persona. Declaration order is
// preserved and is the deterministic ordering used downstream.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]Tool
	order []string
}

func NewRegistry(ts []Tool) *Registry {
	r := &Registry{tools: make(map[string]Tool)}
	for _, t := range ts {
		_ = r.Register(t) // skip invalid entries silently
	}
	return r
}

// Register adds a tool keyed by its lower-cased name. Duplicates are an error.
func (r *Registry) Register(t Tool) error {
	if t == nil {
		return fmt.Errorf("tool is nil")
	}
	key := strings.ToLower(strings.TrimSpace(t.Spec().Name))
	if key == "" {
		return fmt.Errorf("tool name is empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tools[key]; exists {
		return fmt.Errorf("tool %s already registered", t.Spec().Name)
	}
	r.tools[key] = t
	r.order = append(r.order, key)
	return nil
}

// Lookup returns the tool registered under name, case-insensitively.
func (r *Registry) Lookup(name string) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tools[strings.ToLower(strings.TrimSpace(name))]
	return t, ok
}

// Names returns the registered identifiers in declaration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Specs returns the tool specs in declaration order.
func (r *Registry) Specs() []Spec {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Spec, 0, len(r.order))
	for _, key := range r.order {
		out = append(out, r.tools[key].Spec())
	}
	return out
}

// Len reports how many tools are enabled.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}
