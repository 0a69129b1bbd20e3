// Package domain defines the persistence and hashing contracts shared across
// authgate.
package domain

import (
	"context"

	"github.com/authgate/authgate/identity"
	"github.com/authgate/authgate/oauth2"
	"github.com/google/uuid"
)

// Storage aggregates every persistence concern the server needs. The gorm
// repository in the persistence package is the default implementation.
type Storage interface {
	UserStorage
	oauth2.ClientStore
	oauth2.CodeStore
	oauth2.TokenStore
}

// UserStorage persists identity principals. Login lookup matches username or
// email case-insensitively.
type UserStorage interface {
	CreateUser(ctx context.Context, user *identity.User) error
	GetUser(ctx context.Context, id uuid.UUID) (*identity.User, error)
	GetUserByLogin(ctx context.Context, login string) (*identity.User, error)
}

// Hasher defines the interface for password hashing and verification. The
// stored value is opaque to everything but the implementation.
type Hasher interface {
	Hash(password string) ([]byte, error)
	Compare(password string, stored []byte) bool
}
