// Package framework serves sales-methodology definitions from a closed catalogue.
package framework

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"github.com/kiranshivaraju/callcoach/pkg/models"
)

// ErrUnknownFramework is returned for names outside the catalogue.
var ErrUnknownFramework = errors.New("unknown framework")

// Names is the closed set of supported frameworks.
var Names = []string{"meddic", "bant", "spiced", "spin", "challenger", "sandler"}

// Normalize lowercases and trims a framework name.
func Normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func IsKnown(name string) bool {
	return slices.Contains(Names, Normalize(name))
}

// Registry caches definitions after their first successful load.
type Registry struct {
	loader Loader

	mu    sync.RWMutex
	cache map[string]*models.FrameworkDefinition
}

func NewRegistry(loader Loader) *Registry {
	return &Registry{loader: loader, cache: make(map[string]*models.FrameworkDefinition)}
}

// Get returns the definition for name. Names outside the catalogue yield
// ErrUnknownFramework. A load failure yields an uncached stub with no
// components, which callers must treat as unscoreable.
func (r *Registry) Get(ctx context.Context, name string) (*models.FrameworkDefinition, error) {
	key := Normalize(name)
	if !slices.Contains(Names, key) {
		return nil, fmt.Errorf("%w: %q (supported: %s)", ErrUnknownFramework, name, strings.Join(Names, ", "))
	}

	r.mu.RLock()
	def, ok := r.cache[key]
	r.mu.RUnlock()
	if ok {
		return def, nil
	}

	def, err := r.loader.Load(ctx, key)
	if err != nil {
		slog.Error("framework definition unavailable", "framework", key, "error", err)
		return &models.FrameworkDefinition{
			Name:        key,
			Description: "Definition unavailable",
			Components:  []models.FrameworkComponent{},
		}, nil
	}
	// Analyses are keyed by catalogue name whatever the file says.
	def.Name = key

	r.mu.Lock()
	r.cache[key] = def
	r.mu.Unlock()
	return def, nil
}

// List returns every catalogue definition in catalogue order.
func (r *Registry) List(ctx context.Context) []*models.FrameworkDefinition {
	out := make([]*models.FrameworkDefinition, 0, len(Names))
	for _, n := range Names {
		def, _ := r.Get(ctx, n)
		out = append(out, def)
	}
	return out
}

// Invalidate drops every cached definition so the next Get reloads it.
func (r *Registry) Invalidate() {
	r.mu.Lock()
	r.cache = make(map[string]*models.FrameworkDefinition)
	r.mu.Unlock()
	slog.Info("framework definitions invalidated")
}
