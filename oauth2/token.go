package oauth2

import (
	"time"

	"github.com/google/uuid"
)

// AuthorizationCode is a short-lived, single-use proof that a user approved a
// client's access request. The redirect URI stored here must match the one
// presented at exchange byte-for-byte.
type AuthorizationCode struct {
	Code        string
	ClientID    uuid.UUID
	UserID      uuid.UUID
	RedirectURI string
	Scopes      []string
	ExpiresAt   time.Time
}

func (c *AuthorizationCode) Expired(now time.Time) bool {
	return !now.Before(c.ExpiresAt)
}

// Token is an access/refresh credential pair. The pair rotates together on
// refresh: the row keeps its identity, both values and both expiries change.
// UserID is nil for client-credentials grants.
type Token struct {
	ID               uuid.UUID
	AccessToken      string
	AccessExpiresAt  time.Time
	RefreshToken     string
	RefreshExpiresAt time.Time
	ClientID         uuid.UUID
	UserID           *uuid.UUID
	Scopes           []string
}

func (t *Token) AccessExpired(now time.Time) bool {
	return !t.AccessExpiresAt.IsZero() && !now.Before(t.AccessExpiresAt)
}

func (t *Token) RefreshExpired(now time.Time) bool {
	return !t.RefreshExpiresAt.IsZero() && !now.Before(t.RefreshExpiresAt)
}
