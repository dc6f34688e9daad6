package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/kiranshivaraju/callcoach/internal/api"
	mw "github.com/kiranshivaraju/callcoach/internal/api/middleware"
	"github.com/kiranshivaraju/callcoach/internal/cache"
	"github.com/kiranshivaraju/callcoach/internal/store"
	"github.com/kiranshivaraju/callcoach/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// --- stub store that returns empty results (all auth fails) ---

type stubStore struct {
	keys []*models.APIKey
}

func (s *stubStore) Ping(_ context.Context) error { return nil }
func (s *stubStore) GetAPIKeyByPrefix(_ context.Context, _ string) ([]*models.APIKey, error) {
	return s.keys, nil
}
func (s *stubStore) UpdateAPIKeyLastUsed(_ context.Context, _ uuid.UUID) error { return nil }
func (s *stubStore) CreateAPIKey(_ context.Context, _ *models.APIKey) error    { return nil }
func (s *stubStore) ListAPIKeys(_ context.Context) ([]*models.APIKey, error)   { return nil, nil }
func (s *stubStore) RevokeAPIKey(_ context.Context, _ uuid.UUID) error         { return nil }
func (s *stubStore) GetFrameworkDefinition(_ context.Context, _ string) (*models.FrameworkDefinition, error) {
	return nil, store.ErrNotFound
}
func (s *stubStore) UpsertFrameworkDefinition(_ context.Context, _ *models.FrameworkDefinition) error {
	return nil
}
func (s *stubStore) DeleteFrameworkDefinition(_ context.Context, _ string) error { return nil }

// --- stub cache ---

type stubCache struct{}

func (c *stubCache) Set(_ context.Context, _ string, _ []byte, _ time.Duration) error { return nil }
func (c *stubCache) Get(_ context.Context, _ string) ([]byte, bool, error)            { return nil, false, nil }
func (c *stubCache) Delete(_ context.Context, _ string) error                         { return nil }
func (c *stubCache) Ping(_ context.Context) error                                     { return nil }
func (c *stubCache) IncrWithExpiry(_ context.Context, _ string, _ time.Duration) (int64, error) {
	return 1, nil
}

// --- router tests ---

func newTestRouter() http.Handler {
	return api.NewRouter(api.Dependencies{
		Auth:      mw.NewAuth(&stubStore{}),
		RateLimit: mw.NewRateLimit(&stubCache{}, 60),
		HealthHandler: func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte(`{"status":"ok"}`))
		},
	})
}

func TestRouter_HealthEndpoint_Public(t *testing.T) {
	router := newTestRouter()

	req := httptest.NewRequest("GET", "/api/v1/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRouter_ProtectedEndpoints_RequireAuth(t *testing.T) {
	router := newTestRouter()

	endpoints := []struct {
		method string
		path   string
	}{
		{"POST", "/api/v1/calls/search"},
		{"POST", "/api/v1/calls/select"},
		{"GET", "/api/v1/calls/c1"},
		{"POST", "/api/v1/analysis/frameworks"},
		{"GET", "/api/v1/frameworks"},
		{"GET", "/api/v1/frameworks/meddic"},
		{"POST", "/api/v1/admin/frameworks/reload"},
		{"PUT", "/api/v1/admin/frameworks/bant"},
		{"DELETE", "/api/v1/admin/frameworks/bant"},
		{"POST", "/api/v1/admin/keys"},
		{"GET", "/api/v1/admin/keys"},
		{"DELETE", "/api/v1/admin/keys/" + uuid.NewString()},
	}

	for _, ep := range endpoints {
		t.Run(ep.method+" "+ep.path, func(t *testing.T) {
			req := httptest.NewRequest(ep.method, ep.path, nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusUnauthorized, w.Code)

			var body map[string]any
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			errObj := body["error"].(map[string]any)
			assert.Equal(t, "INVALID_TOKEN", errObj["code"])
		})
	}
}

func newAuthedRouter(t *testing.T, rawKey string, scopes ...string) http.Handler {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(rawKey), bcrypt.MinCost)
	require.NoError(t, err)
	st := &stubStore{keys: []*models.APIKey{{
		ID:        uuid.New(),
		KeyHash:   string(hash),
		KeyPrefix: rawKey[:mw.KeyPrefixLen],
		Scopes:    scopes,
	}}}
	return api.NewRouter(api.Dependencies{
		Auth:      mw.NewAuth(st),
		RateLimit: mw.NewRateLimit(&stubCache{}, 60),
	})
}

func TestRouter_UnwiredHandler_NotImplemented(t *testing.T) {
	rawKey := "cc_router_read_key_123456"
	router := newAuthedRouter(t, rawKey, "read")

	req := httptest.NewRequest("POST", "/api/v1/calls/search", nil)
	req.Header.Set("Authorization", "Bearer "+rawKey)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotImplemented, w.Code)
}

func TestRouter_AdminRoutes_RequireAdminScope(t *testing.T) {
	rawKey := "cc_router_read_key_123456"
	router := newAuthedRouter(t, rawKey, "read")

	req := httptest.NewRequest("POST", "/api/v1/admin/frameworks/reload", nil)
	req.Header.Set("Authorization", "Bearer "+rawKey)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRouter_SetsRequestID(t *testing.T) {
	router := newTestRouter()

	req := httptest.NewRequest("GET", "/api/v1/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.NotEmpty(t, w.Header().Get(mw.RequestIDHeader))
}

func TestRouter_NotFound(t *testing.T) {
	router := newTestRouter()

	req := httptest.NewRequest("GET", "/api/v1/nonexistent", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

// Verify unused interfaces are satisfied
var _ store.Store = (*stubStore)(nil)
var _ cache.Cache = (*stubCache)(nil)
