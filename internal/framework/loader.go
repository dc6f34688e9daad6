package framework

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/kiranshivaraju/callcoach/internal/store"
	"github.com/kiranshivaraju/callcoach/pkg/models"
	"gopkg.in/yaml.v3"
)

// ErrDefinitionNotFound means a loader has no definition for the name.
var ErrDefinitionNotFound = errors.New("framework definition not found")

//go:embed definitions/*.yaml
var embedded embed.FS

// Loader reads one framework definition by normalized name.
type Loader interface {
	Load(ctx context.Context, name string) (*models.FrameworkDefinition, error)
}

// EmbeddedLoader serves the definitions compiled into the binary.
type EmbeddedLoader struct{}

func (EmbeddedLoader) Load(_ context.Context, name string) (*models.FrameworkDefinition, error) {
	data, err := embedded.ReadFile("definitions/" + name + ".yaml")
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s (embedded)", ErrDefinitionNotFound, name)
	}
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// DirLoader reads <Dir>/<name>.yaml.
type DirLoader struct {
	Dir string
}

func (l DirLoader) Load(_ context.Context, name string) (*models.FrameworkDefinition, error) {
	data, err := os.ReadFile(filepath.Join(l.Dir, name+".yaml"))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s (dir %s)", ErrDefinitionNotFound, name, l.Dir)
	}
	if err != nil {
		return nil, fmt.Errorf("reading definition: %w", err)
	}
	return Parse(data)
}

// DefinitionStore is the subset of the store holding definition overrides.
type DefinitionStore interface {
	GetFrameworkDefinition(ctx context.Context, name string) (*models.FrameworkDefinition, error)
}

// StoreLoader reads overrides saved in the database.
type StoreLoader struct {
	Store DefinitionStore
}

func (l StoreLoader) Load(ctx context.Context, name string) (*models.FrameworkDefinition, error) {
	def, err := l.Store.GetFrameworkDefinition(ctx, name)
	if errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s (store)", ErrDefinitionNotFound, name)
	}
	if err != nil {
		return nil, err
	}
	return def, nil
}

// ChainLoader tries loaders in order. A failing loader is logged and skipped
// so an unavailable override source does not hide the embedded default.
type ChainLoader []Loader

func (c ChainLoader) Load(ctx context.Context, name string) (*models.FrameworkDefinition, error) {
	var lastErr error
	for _, l := range c {
		def, err := l.Load(ctx, name)
		if err == nil {
			return def, nil
		}
		if !errors.Is(err, ErrDefinitionNotFound) {
			slog.Warn("framework loader failed", "framework", name, "error", err)
			lastErr = err
		}
	}
	if lastErr != nil {
		return nil, lastErr
	}
	return nil, fmt.Errorf("%w: %s", ErrDefinitionNotFound, name)
}

// Parse decodes and validates a YAML definition.
func Parse(data []byte) (*models.FrameworkDefinition, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var def models.FrameworkDefinition
	if err := dec.Decode(&def); err != nil {
		return nil, fmt.Errorf("parsing definition: %w", err)
	}
	if err := Validate(&def); err != nil {
		return nil, err
	}
	return &def, nil
}

// Validate checks that every component and sub-component is named.
func Validate(def *models.FrameworkDefinition) error {
	for i, c := range def.Components {
		if c.Name == "" {
			return fmt.Errorf("component %d has no name", i)
		}
		for j, sc := range c.SubComponents {
			if sc.Name == "" {
				return fmt.Errorf("component %q sub-component %d has no name", c.Name, j)
			}
		}
	}
	return nil
}
