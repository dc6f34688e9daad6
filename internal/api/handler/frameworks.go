package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/kiranshivaraju/callcoach/internal/api/response"
	"github.com/kiranshivaraju/callcoach/internal/framework"
	"github.com/kiranshivaraju/callcoach/pkg/models"
)

// FrameworkCatalog exposes the framework registry.
type FrameworkCatalog interface {
	Get(ctx context.Context, name string) (*models.FrameworkDefinition, error)
	List(ctx context.Context) []*models.FrameworkDefinition
	Invalidate()
}

// DefinitionWriter persists framework definition overrides.
type DefinitionWriter interface {
	UpsertFrameworkDefinition(ctx context.Context, def *models.FrameworkDefinition) error
	DeleteFrameworkDefinition(ctx context.Context, name string) error
}

type frameworkSummary struct {
	Name          string `json:"name"`
	Description   string `json:"description"`
	Components    int    `json:"components"`
	SubComponents int    `json:"subComponents"`
	Available     bool   `json:"available"`
}

// NewListFrameworksHandler returns an http.HandlerFunc for GET /api/v1/frameworks.
func NewListFrameworksHandler(catalog FrameworkCatalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		defs := catalog.List(r.Context())
		out := make([]frameworkSummary, 0, len(defs))
		for _, d := range defs {
			subs := 0
			for _, c := range d.Components {
				subs += len(c.SubComponents)
			}
			out = append(out, frameworkSummary{
				Name:          d.Name,
				Description:   d.Description,
				Components:    len(d.Components),
				SubComponents: subs,
				Available:     d.Scoreable(),
			})
		}
		response.List(w, out)
	}
}

// NewGetFrameworkHandler returns an http.HandlerFunc for GET /api/v1/frameworks/{name}.
func NewGetFrameworkHandler(catalog FrameworkCatalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		def, err := catalog.Get(r.Context(), chi.URLParam(r, "name"))
		if errors.Is(err, framework.ErrUnknownFramework) {
			response.Error(w, http.StatusNotFound, "NOT_FOUND", err.Error(), nil)
			return
		}
		if err != nil {
			writeError(w, r, err)
			return
		}
		response.JSON(w, def)
	}
}

// NewReloadFrameworksHandler returns an http.HandlerFunc for POST /api/v1/admin/frameworks/reload.
func NewReloadFrameworksHandler(catalog FrameworkCatalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		catalog.Invalidate()
		slog.Info("framework cache invalidated", "trigger", "api")
		response.JSON(w, map[string]string{"status": "reloaded"})
	}
}

// NewPutFrameworkHandler returns an http.HandlerFunc for PUT /api/v1/admin/frameworks/{name}.
// The body replaces the stored override for a catalogue framework.
func NewPutFrameworkHandler(catalog FrameworkCatalog, defs DefinitionWriter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name, ok := knownName(w, r)
		if !ok {
			return
		}
		var def models.FrameworkDefinition
		if !decode(w, r, &def) {
			return
		}
		def.Name = name
		if !def.Scoreable() {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "definition needs at least one component", nil)
			return
		}
		if err := framework.Validate(&def); err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", err.Error(), nil)
			return
		}
		if err := defs.UpsertFrameworkDefinition(r.Context(), &def); err != nil {
			writeError(w, r, err)
			return
		}
		catalog.Invalidate()
		slog.Info("framework override stored", "framework", name)
		response.JSON(w, &def)
	}
}

// NewDeleteFrameworkHandler returns an http.HandlerFunc for DELETE /api/v1/admin/frameworks/{name}.
// Deleting an override falls back to the file or embedded definition.
func NewDeleteFrameworkHandler(catalog FrameworkCatalog, defs DefinitionWriter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name, ok := knownName(w, r)
		if !ok {
			return
		}
		if err := defs.DeleteFrameworkDefinition(r.Context(), name); err != nil {
			writeError(w, r, err)
			return
		}
		catalog.Invalidate()
		slog.Info("framework override removed", "framework", name)
		response.NoContent(w)
	}
}

func knownName(w http.ResponseWriter, r *http.Request) (string, bool) {
	name := framework.Normalize(chi.URLParam(r, "name"))
	if !framework.IsKnown(name) {
		response.Error(w, http.StatusNotFound, "NOT_FOUND", "unknown framework: "+name, nil)
		return "", false
	}
	return name, true
}
