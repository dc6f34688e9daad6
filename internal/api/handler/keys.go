package handler

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	mw "github.com/kiranshivaraju/callcoach/internal/api/middleware"
	"github.com/kiranshivaraju/callcoach/internal/api/response"
	"github.com/kiranshivaraju/callcoach/internal/store"
	"github.com/kiranshivaraju/callcoach/pkg/models"
	"golang.org/x/crypto/bcrypt"
)

// KeyPrefix starts every generated API key.
const KeyPrefix = "cc_"

const keyRandomBytes = 24

// KeyStore manages API keys.
type KeyStore interface {
	CreateAPIKey(ctx context.Context, key *models.APIKey) error
	ListAPIKeys(ctx context.Context) ([]*models.APIKey, error)
	RevokeAPIKey(ctx context.Context, id uuid.UUID) error
}

type createKeyBody struct {
	Name   string   `json:"name"   validate:"required,max=100"`
	Scopes []string `json:"scopes" validate:"omitempty,dive,oneof=read admin"`
}

type createdKey struct {
	*models.APIKey
	Key string `json:"key"`
}

// NewCreateKeyHandler returns an http.HandlerFunc for POST /api/v1/admin/keys.
// The raw key is returned once and never stored.
func NewCreateKeyHandler(keys KeyStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body createKeyBody
		if !decode(w, r, &body) {
			return
		}
		scopes := body.Scopes
		if len(scopes) == 0 {
			scopes = []string{models.ScopeRead}
		}

		raw, err := generateKey()
		if err != nil {
			writeError(w, r, err)
			return
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(raw), bcrypt.DefaultCost)
		if err != nil {
			writeError(w, r, err)
			return
		}

		now := time.Now().UTC()
		key := &models.APIKey{
			ID:        uuid.New(),
			Name:      body.Name,
			KeyHash:   string(hash),
			KeyPrefix: raw[:mw.KeyPrefixLen],
			Scopes:    scopes,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := keys.CreateAPIKey(r.Context(), key); err != nil {
			if errors.Is(err, store.ErrDuplicateKey) {
				response.Error(w, http.StatusConflict, "CONFLICT", "API key already exists", nil)
				return
			}
			writeError(w, r, err)
			return
		}
		response.Created(w, createdKey{APIKey: key, Key: raw})
	}
}

// NewListKeysHandler returns an http.HandlerFunc for GET /api/v1/admin/keys.
func NewListKeysHandler(keys KeyStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := keys.ListAPIKeys(r.Context())
		if err != nil {
			writeError(w, r, err)
			return
		}
		response.List(w, list)
	}
}

// NewRevokeKeyHandler returns an http.HandlerFunc for DELETE /api/v1/admin/keys/{keyID}.
func NewRevokeKeyHandler(keys KeyStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "keyID"))
		if err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "keyID must be a UUID", nil)
			return
		}
		if err := keys.RevokeAPIKey(r.Context(), id); err != nil {
			writeError(w, r, err)
			return
		}
		response.NoContent(w)
	}
}

func generateKey() (string, error) {
	b := make([]byte, keyRandomBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return KeyPrefix + hex.EncodeToString(b), nil
}
