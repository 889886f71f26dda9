package rag

import (
	"fmt"
	"strings"
	"sync"
)

// Framework holds the named bots of one deployment. Registration order is
// preserved for listings.
type Framework struct {
	mu    sync.RWMutex
	bots  map[string]*Bot
	order []string
}

func NewFramework() *Framework {
	return &Framework{bots: make(map[string]*Bot)}
}

// Register adds a bot under its lower-cased name. Duplicates are an error.
func (f *Framework) Register(b *Bot) error {
	if b == nil {
		return fmt.Errorf("bot is nil")
	}
	key := strings.ToLower(strings.TrimSpace(b.Name()))
	if key == "" {
		return fmt.Errorf("bot name is empty")
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if _, exists := f.bots[key]; exists {
		return fmt.Errorf("bot %s already registered", b.Name())
	}
	f.bots[key] = b
	f.order = append(f.order, key)
	return nil
}

// Bot returns the bot registered under name, case-insensitively.
func (f *Framework) Bot(name string) (*Bot, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	b, ok := f.bots[strings.ToLower(strings.TrimSpace(name))]
	return b, ok
}

// Names returns the registered bot names in registration order.
func (f *Framework) Names() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]string, len(f.order))
	copy(out, f.order)
	return out
}
