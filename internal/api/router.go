package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	mw "github.com/kiranshivaraju/callcoach/internal/api/middleware"
	"github.com/kiranshivaraju/callcoach/internal/api/response"
	"github.com/kiranshivaraju/callcoach/pkg/models"
)

// Dependencies holds all handler and middleware dependencies for the router.
type Dependencies struct {
	Auth      *mw.Auth
	RateLimit *mw.RateLimit

	HealthHandler http.HandlerFunc

	SearchCalls    http.HandlerFunc
	SelectCall     http.HandlerFunc
	GetCallDetails http.HandlerFunc

	AnalyzeFrameworks http.HandlerFunc

	ListFrameworks   http.HandlerFunc
	GetFramework     http.HandlerFunc
	ReloadFrameworks http.HandlerFunc
	PutFramework     http.HandlerFunc
	DeleteFramework  http.HandlerFunc

	CreateKeyHandler http.HandlerFunc
	ListKeysHandler  http.HandlerFunc
	RevokeKeyHandler http.HandlerFunc
}

// NewRouter builds the Chi router with middleware stack and all routes.
func NewRouter(deps Dependencies) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(mw.RequestID)
	r.Use(mw.Logger)
	r.Use(mw.Recovery)

	// Public health check
	r.Get("/api/v1/health", orNotImplemented(deps.HealthHandler))

	// Protected routes
	r.Group(func(r chi.Router) {
		r.Use(deps.Auth.Authenticate)
		r.Use(deps.RateLimit.Limit)

		r.Post("/api/v1/calls/search", orNotImplemented(deps.SearchCalls))
		r.Post("/api/v1/calls/select", orNotImplemented(deps.SelectCall))
		r.Get("/api/v1/calls/{callID}", orNotImplemented(deps.GetCallDetails))

		r.Post("/api/v1/analysis/frameworks", orNotImplemented(deps.AnalyzeFrameworks))

		r.Get("/api/v1/frameworks", orNotImplemented(deps.ListFrameworks))
		r.Get("/api/v1/frameworks/{name}", orNotImplemented(deps.GetFramework))

		// Admin routes
		r.Group(func(r chi.Router) {
			r.Use(deps.Auth.RequireScope(models.ScopeAdmin))

			r.Post("/api/v1/admin/frameworks/reload", orNotImplemented(deps.ReloadFrameworks))
			r.Put("/api/v1/admin/frameworks/{name}", orNotImplemented(deps.PutFramework))
			r.Delete("/api/v1/admin/frameworks/{name}", orNotImplemented(deps.DeleteFramework))

			r.Post("/api/v1/admin/keys", orNotImplemented(deps.CreateKeyHandler))
			r.Get("/api/v1/admin/keys", orNotImplemented(deps.ListKeysHandler))
			r.Delete("/api/v1/admin/keys/{keyID}", orNotImplemented(deps.RevokeKeyHandler))
		})
	})

	return r
}

// orNotImplemented returns the handler if non-nil, or a 501 placeholder.
func orNotImplemented(h http.HandlerFunc) http.HandlerFunc {
	if h != nil {
		return h
	}
	return func(w http.ResponseWriter, r *http.Request) {
		response.Error(w, http.StatusNotImplemented, "NOT_IMPLEMENTED", "Endpoint not yet implemented", nil)
	}
}
