package oauth2

import (
	"context"

	"github.com/google/uuid"
)

// ClientStore defines the interface for managing OAuth2 clients.
type ClientStore interface {
	CreateClient(ctx context.Context, client *Client) error
	GetClient(ctx context.Context, id uuid.UUID) (*Client, error)
	GetClientByIDAndSecret(ctx context.Context, id uuid.UUID, secret string) (*Client, error)
}

// CodeStore defines the interface for managing authorization codes.
//
// ConsumeAuthorizationCode deletes the code and returns it, succeeding for at
// most one caller per code; a second consume of the same code returns
// ErrNotFound. That single-winner semantic is what enforces single use under
// concurrent exchange attempts.
type CodeStore interface {
	CreateAuthorizationCode(ctx context.Context, code *AuthorizationCode) error
	GetAuthorizationCode(ctx context.Context, code string) (*AuthorizationCode, error)
	ConsumeAuthorizationCode(ctx context.Context, code string) (*AuthorizationCode, error)
}

// TokenStore defines the interface for managing access/refresh token pairs.
//
// RotateCredentials overwrites both token values and both expiries on the row
// identified by token.ID, conditional on the row still carrying staleRefresh.
// It returns ErrNotFound when another rotation got there first.
type TokenStore interface {
	CreateToken(ctx context.Context, token *Token) error
	GetTokenByAccessToken(ctx context.Context, accessToken string) (*Token, error)
	GetTokenByRefreshToken(ctx context.Context, refreshToken string) (*Token, error)
	RotateCredentials(ctx context.Context, token *Token, staleRefresh string) error
	DeleteToken(ctx context.Context, id uuid.UUID) error
}
