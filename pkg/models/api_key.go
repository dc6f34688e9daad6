package models

import (
	"slices"
	"time"

	"github.com/google/uuid"
)

// API key scopes. Admin keys manage keys and framework overrides.
const (
	ScopeRead  = "read"
	ScopeAdmin = "admin"
)

// APIKey authenticates a caller of the coaching API.
// Raw keys are shown once at creation; only the bcrypt hash is stored.
type APIKey struct {
	ID         uuid.UUID  `db:"id"           json:"id"`
	Name       string     `db:"name"         json:"name"`
	KeyHash    string     `db:"key_hash"     json:"-"`
	KeyPrefix  string     `db:"key_prefix"   json:"key_prefix"`
	Scopes     []string   `db:"scopes"       json:"scopes"`
	LastUsedAt *time.Time `db:"last_used_at" json:"last_used_at,omitempty"`
	DeletedAt  *time.Time `db:"deleted_at"   json:"-"`
	CreatedAt  time.Time  `db:"created_at"   json:"created_at"`
	UpdatedAt  time.Time  `db:"updated_at"   json:"updated_at"`
}

// HasScope reports whether the key grants scope. Admin implies read.
func (k APIKey) HasScope(scope string) bool {
	if slices.Contains(k.Scopes, scope) {
		return true
	}
	return scope == ScopeRead && slices.Contains(k.Scopes, ScopeAdmin)
}
