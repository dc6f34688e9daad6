package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/kiranshivaraju/callcoach/internal/ai/mock"
	"github.com/kiranshivaraju/callcoach/internal/api"
	"github.com/kiranshivaraju/callcoach/internal/cache"
	"github.com/kiranshivaraju/callcoach/internal/config"
	"github.com/kiranshivaraju/callcoach/internal/framework"
	"github.com/kiranshivaraju/callcoach/internal/recording"
	recmock "github.com/kiranshivaraju/callcoach/internal/recording/mock"
	"github.com/kiranshivaraju/callcoach/internal/store"
	"github.com/kiranshivaraju/callcoach/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// ─── mock store ──────────────────────────────────────────────────────────────

type testStore struct {
	pingErr error
	keys    []*models.APIKey
	defs    map[string]*models.FrameworkDefinition
}

func (s *testStore) Ping(_ context.Context) error { return s.pingErr }
func (s *testStore) GetAPIKeyByPrefix(_ context.Context, _ string) ([]*models.APIKey, error) {
	return s.keys, nil
}
func (s *testStore) UpdateAPIKeyLastUsed(_ context.Context, _ uuid.UUID) error { return nil }
func (s *testStore) CreateAPIKey(_ context.Context, k *models.APIKey) error {
	s.keys = append(s.keys, k)
	return nil
}
func (s *testStore) ListAPIKeys(_ context.Context) ([]*models.APIKey, error) { return s.keys, nil }
func (s *testStore) RevokeAPIKey(_ context.Context, _ uuid.UUID) error       { return store.ErrNotFound }
func (s *testStore) GetFrameworkDefinition(_ context.Context, name string) (*models.FrameworkDefinition, error) {
	if d, ok := s.defs[name]; ok {
		return d, nil
	}
	return nil, store.ErrNotFound
}
func (s *testStore) UpsertFrameworkDefinition(_ context.Context, d *models.FrameworkDefinition) error {
	if s.defs == nil {
		s.defs = map[string]*models.FrameworkDefinition{}
	}
	s.defs[d.Name] = d
	return nil
}
func (s *testStore) DeleteFrameworkDefinition(_ context.Context, name string) error {
	if _, ok := s.defs[name]; !ok {
		return store.ErrNotFound
	}
	delete(s.defs, name)
	return nil
}

var _ store.Store = (*testStore)(nil)

// ─── mock cache ──────────────────────────────────────────────────────────────

type testCache struct {
	pingErr error
}

func (c *testCache) Set(_ context.Context, _ string, _ []byte, _ time.Duration) error { return nil }
func (c *testCache) Get(_ context.Context, _ string) ([]byte, bool, error)            { return nil, false, nil }
func (c *testCache) Delete(_ context.Context, _ string) error                         { return nil }
func (c *testCache) Ping(_ context.Context) error                                     { return c.pingErr }
func (c *testCache) IncrWithExpiry(_ context.Context, _ string, _ time.Duration) (int64, error) {
	return 1, nil
}

var _ cache.Cache = (*testCache)(nil)

// ─── wiring ──────────────────────────────────────────────────────────────────

const adminKey = "cc_admin_wiring_test_key_0001"

func testConfig() *config.Config {
	return &config.Config{
		Server:   config.ServerConfig{RateLimitPerMin: 60},
		AI:       config.AIConfig{MaxTokens: 4000, InferenceTimeout: 5 * time.Second},
		Analysis: config.AnalysisConfig{Workers: 2, Timeout: 30 * time.Second, MaxTranscriptChars: 20000},
	}
}

func testServer(t *testing.T, st *testStore) http.Handler {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(adminKey), bcrypt.MinCost)
	require.NoError(t, err)
	st.keys = append(st.keys, &models.APIKey{
		ID:        uuid.New(),
		Name:      "admin",
		KeyHash:   string(hash),
		KeyPrefix: adminKey[:8],
		Scopes:    []string{"read", "admin"},
	})

	started := time.Now().Add(-48 * time.Hour)
	recordings := recmock.WithCalls(
		[]models.CallRecord{{
			ID:              "c1",
			Title:           "Acme Corp - Discovery",
			StartedAt:       started,
			DurationSeconds: 1800,
			Participants: []models.Participant{
				{Name: "Dana Seller", SpeakerID: "s1", Affiliation: models.AffiliationInternal},
				{Name: "Pat Buyer", SpeakerID: "s2", Affiliation: models.AffiliationExternal},
			},
		}},
		map[string][]recording.Monologue{"c1": {
			{SpeakerID: "s1", Sentences: []recording.Sentence{{Start: 0, End: 4000, Text: "What budget have you set aside?"}}},
			{SpeakerID: "s2", Sentences: []recording.Sentence{{Start: 5000, End: 9000, Text: "Around fifty thousand this year."}}},
		}},
	)

	registry := framework.NewRegistry(frameworkLoader(config.FrameworksConfig{}, st))
	return api.NewRouter(dependencies(testConfig(), st, &testCache{}, recordings, registry, mock.NewMockProvider()))
}

func call(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	req.Header.Set("Authorization", "Bearer "+adminKey)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func data(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	d, ok := body["data"].(map[string]any)
	require.True(t, ok, "no data object in %s", w.Body.String())
	return d
}

func TestDependencies_EveryRouteWired(t *testing.T) {
	h := testServer(t, &testStore{})

	routes := []struct {
		method, path, body string
	}{
		{"GET", "/api/v1/health", ""},
		{"POST", "/api/v1/calls/search", `{"customerName":"Acme"}`},
		{"POST", "/api/v1/calls/select", `{"callId":"c1"}`},
		{"GET", "/api/v1/calls/c1", ""},
		{"POST", "/api/v1/analysis/frameworks", `{"callIds":["c1"],"frameworks":["bant"]}`},
		{"GET", "/api/v1/frameworks", ""},
		{"GET", "/api/v1/frameworks/meddic", ""},
		{"POST", "/api/v1/admin/frameworks/reload", ""},
		{"PUT", "/api/v1/admin/frameworks/spin", `{"components":[{"name":"Situation","subComponents":[{"name":"Context"}]}]}`},
		{"DELETE", "/api/v1/admin/frameworks/spin", ""},
		{"POST", "/api/v1/admin/keys", `{"name":"ci"}`},
		{"GET", "/api/v1/admin/keys", ""},
		{"DELETE", "/api/v1/admin/keys/" + uuid.NewString(), ""},
	}
	for _, rt := range routes {
		t.Run(rt.method+" "+rt.path, func(t *testing.T) {
			w := call(t, h, rt.method, rt.path, rt.body)
			assert.NotEqual(t, http.StatusNotImplemented, w.Code, w.Body.String())
			assert.NotEqual(t, http.StatusUnauthorized, w.Code, w.Body.String())
		})
	}
}

func TestDependencies_SearchSelectAnalyze(t *testing.T) {
	h := testServer(t, &testStore{})

	w := call(t, h, "POST", "/api/v1/calls/search", `{"customerName":"acme","dateRange":"last 7 days"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	matches := data(t, w)["matches"].([]any)
	require.Len(t, matches, 1)
	assert.Equal(t, "c1", matches[0].(map[string]any)["id"])

	w = call(t, h, "POST", "/api/v1/calls/select", `{"selectionNumber":1,"customerName":"acme","dateRange":"last 7 days"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "c1", data(t, w)["id"])

	w = call(t, h, "GET", "/api/v1/calls/c1", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	transcript := data(t, w)["transcript"].([]any)
	require.Len(t, transcript, 2)
	assert.Equal(t, "Dana Seller", transcript[0].(map[string]any)["resolvedSpeakerName"])

	w = call(t, h, "POST", "/api/v1/analysis/frameworks", `{"callIds":["c1"],"frameworks":["bant","meddic"]}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	agg := data(t, w)
	assert.NotEmpty(t, agg["requestId"])
	assert.Len(t, agg["callAnalyses"], 2)
}

func TestDependencies_UnknownCall(t *testing.T) {
	h := testServer(t, &testStore{})

	w := call(t, h, "GET", "/api/v1/calls/nope", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = call(t, h, "POST", "/api/v1/analysis/frameworks", `{"callIds":["nope"],"frameworks":["bant"]}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestDependencies_FrameworkOverrideRoundTrip(t *testing.T) {
	st := &testStore{}
	h := testServer(t, st)

	w := call(t, h, "GET", "/api/v1/frameworks/spin", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEqual(t, "Custom SPIN", data(t, w)["description"])

	w = call(t, h, "PUT", "/api/v1/admin/frameworks/spin",
		`{"description":"Custom SPIN","components":[{"name":"Situation","subComponents":[{"name":"Context"}]}]}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = call(t, h, "GET", "/api/v1/frameworks/spin", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Custom SPIN", data(t, w)["description"])

	w = call(t, h, "DELETE", "/api/v1/admin/frameworks/spin", "")
	require.Equal(t, http.StatusNoContent, w.Code)

	w = call(t, h, "GET", "/api/v1/frameworks/spin", "")
	assert.NotEqual(t, "Custom SPIN", data(t, w)["description"])
}

// ─── framework loader ────────────────────────────────────────────────────────

func TestFrameworkLoader(t *testing.T) {
	chain := frameworkLoader(config.FrameworksConfig{}, &testStore{}).(framework.ChainLoader)
	assert.Len(t, chain, 2)

	chain = frameworkLoader(config.FrameworksConfig{Dir: t.TempDir()}, &testStore{}).(framework.ChainLoader)
	require.Len(t, chain, 3)
	assert.IsType(t, framework.DirLoader{}, chain[1])

	def, err := chain.Load(context.Background(), "bant")
	require.NoError(t, err)
	assert.Equal(t, "bant", def.Name)
}

// ─── run() config validation tests ──────────────────────────────────────────

func TestRun_FailsOnMissingConfig(t *testing.T) {
	// Clear all env vars that config.Load() requires
	for _, key := range []string{
		"DATABASE_URL", "REDIS_URL", "RECORDING_BASE_URL", "AI_PROVIDER",
	} {
		t.Setenv(key, "")
	}

	err := run()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load config")
}

func TestRun_FailsOnInvalidDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "not-a-valid-url")
	t.Setenv("REDIS_URL", "redis://localhost:6379")
	t.Setenv("RECORDING_BASE_URL", "http://localhost:3100")
	t.Setenv("AI_PROVIDER", "mock")
	t.Setenv("FRAMEWORKS_DIR", "")

	err := run()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connect database")
}

// ─── shutdown timeout constant test ─────────────────────────────────────────

func TestShutdownTimeout(t *testing.T) {
	assert.Equal(t, 30*time.Second, shutdownTimeout)
}
