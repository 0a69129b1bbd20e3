package oauth2

import (
	"context"
	"errors"
	"time"

	"github.com/authgate/authgate/identity"
	"github.com/google/uuid"
)

// UserStore resolves the user owning a token during bearer validation.
type UserStore interface {
	GetUser(ctx context.Context, id uuid.UUID) (*identity.User, error)
}

// EngineOptions carries the grant parameters. Values are fixed at startup and
// read-only afterwards.
type EngineOptions struct {
	TokenLength      int
	AuthCodeTTL      time.Duration
	AccessTokenTTL   time.Duration
	RefreshTokenTTL  time.Duration
	GenerateAttempts int
}

const defaultGenerateAttempts = 3

// Engine implements the three grant state machines. It holds no cross-request
// state; the stores are its only shared resource.
type Engine struct {
	clients ClientStore
	codes   CodeStore
	tokens  TokenStore
	users   UserStore
	opts    EngineOptions
}

func NewEngine(clients ClientStore, codes CodeStore, tokens TokenStore, users UserStore, opts EngineOptions) *Engine {
	if opts.TokenLength <= 0 {
		opts.TokenLength = DefaultTokenLength
	}
	if opts.AuthCodeTTL <= 0 {
		opts.AuthCodeTTL = time.Minute
	}
	if opts.AccessTokenTTL <= 0 {
		opts.AccessTokenTTL = time.Hour
	}
	if opts.RefreshTokenTTL <= 0 {
		opts.RefreshTokenTTL = 7 * 24 * time.Hour
	}
	if opts.GenerateAttempts <= 0 {
		opts.GenerateAttempts = defaultGenerateAttempts
	}
	return &Engine{clients: clients, codes: codes, tokens: tokens, users: users, opts: opts}
}

// Grant is the outcome of a successful token grant.
type Grant struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
	UserID       *uuid.UUID
	Scopes       []string
}

// ValidateAuthorizationRequest checks the client exists and the redirect URI
// is registered for it. It runs before any code is issued and the redirect
// check repeats independently at issue and exchange time.
func (e *Engine) ValidateAuthorizationRequest(ctx context.Context, clientID uuid.UUID, redirectURI string) (*Client, error) {
	client, err := e.clients.GetClient(ctx, clientID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrUnknownClient
		}
		return nil, err
	}
	if !client.ValidateRedirectURI(redirectURI) {
		return nil, ErrInvalidRedirectURI
	}
	return client, nil
}

// IssueAuthorizationCode mints a single-use code for an approved
// (client, user) pair. An empty scope request grants the client's full
// allowed set.
func (e *Engine) IssueAuthorizationCode(ctx context.Context, client *Client, userID uuid.UUID, redirectURI, scope string) (string, error) {
	if !client.ValidateRedirectURI(redirectURI) {
		return "", ErrInvalidRedirectURI
	}
	scopes, err := ResolveScope(scope, client.Scopes)
	if err != nil {
		return "", err
	}

	for attempt := 0; attempt < e.opts.GenerateAttempts; attempt++ {
		code, err := GenerateToken(e.opts.TokenLength)
		if err != nil {
			return "", err
		}
		err = e.codes.CreateAuthorizationCode(ctx, &AuthorizationCode{
			Code:        code,
			ClientID:    client.ID,
			UserID:      userID,
			RedirectURI: redirectURI,
			Scopes:      scopes,
			ExpiresAt:   time.Now().Add(e.opts.AuthCodeTTL),
		})
		if errors.Is(err, ErrDuplicate) {
			continue
		}
		if err != nil {
			return "", err
		}
		return code, nil
	}
	return "", ErrTokenSpaceExhausted
}

// ExchangeAuthorizationCode trades a code for a token pair. The code is
// consumed atomically: of two concurrent exchanges of the same code, exactly
// one succeeds and the other observes ErrInvalidGrant.
func (e *Engine) ExchangeAuthorizationCode(ctx context.Context, client *Client, code, redirectURI string) (*Grant, error) {
	authCode, err := e.codes.GetAuthorizationCode(ctx, code)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrInvalidGrant
		}
		return nil, err
	}
	if authCode.Expired(time.Now()) ||
		authCode.ClientID != client.ID ||
		authCode.RedirectURI != redirectURI {
		return nil, ErrInvalidGrant
	}

	// The consume is the success gate: it deletes the row and fails for every
	// caller but one.
	if _, err := e.codes.ConsumeAuthorizationCode(ctx, code); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrInvalidGrant
		}
		return nil, err
	}

	userID := authCode.UserID
	token, err := e.mintToken(ctx, client.ID, &userID, authCode.Scopes)
	if err != nil {
		return nil, err
	}
	return grantFromToken(token), nil
}

// ClientCredentials issues a token pair bound to the client alone. The
// requested scope is accepted but ignored; the token carries the client's
// full allowed set and no user.
func (e *Engine) ClientCredentials(ctx context.Context, client *Client, scope string) (*Grant, error) {
	token, err := e.mintToken(ctx, client.ID, nil, client.Scopes)
	if err != nil {
		return nil, err
	}
	return grantFromToken(token), nil
}

// Refresh rotates a token pair in place. The old values become permanently
// invalid the instant the row is overwritten; a concurrent refresh with the
// same stale token loses the conditional update and fails with
// ErrInvalidGrant.
func (e *Engine) Refresh(ctx context.Context, client *Client, refreshToken string) (*Grant, error) {
	token, err := e.tokens.GetTokenByRefreshToken(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrInvalidGrant
		}
		return nil, err
	}
	if token.RefreshExpired(time.Now()) || token.ClientID != client.ID {
		return nil, ErrInvalidGrant
	}

	for attempt := 0; attempt < e.opts.GenerateAttempts; attempt++ {
		access, refresh, err := e.generatePair()
		if err != nil {
			return nil, err
		}
		now := time.Now()
		token.AccessToken = access
		token.AccessExpiresAt = now.Add(e.opts.AccessTokenTTL)
		token.RefreshToken = refresh
		token.RefreshExpiresAt = now.Add(e.opts.RefreshTokenTTL)

		err = e.tokens.RotateCredentials(ctx, token, refreshToken)
		switch {
		case errors.Is(err, ErrDuplicate):
			continue
		case errors.Is(err, ErrNotFound):
			return nil, ErrInvalidGrant
		case err != nil:
			return nil, err
		}
		return grantFromToken(token), nil
	}
	return nil, ErrTokenSpaceExhausted
}

// ResolveAccessToken validates a bearer token. Expired rows are deleted on
// sight and reported invalid. The user is nil for client-credentials tokens.
func (e *Engine) ResolveAccessToken(ctx context.Context, accessToken string) (*identity.User, []string, error) {
	token, err := e.tokens.GetTokenByAccessToken(ctx, accessToken)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil, ErrInvalidGrant
		}
		return nil, nil, err
	}
	if token.AccessExpired(time.Now()) {
		// Lazy cleanup; the result is invalid either way.
		_ = e.tokens.DeleteToken(ctx, token.ID)
		return nil, nil, ErrInvalidGrant
	}
	if token.UserID == nil {
		return nil, token.Scopes, nil
	}
	user, err := e.users.GetUser(ctx, *token.UserID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil, ErrInvalidGrant
		}
		return nil, nil, err
	}
	return user, token.Scopes, nil
}

func (e *Engine) mintToken(ctx context.Context, clientID uuid.UUID, userID *uuid.UUID, scopes []string) (*Token, error) {
	for attempt := 0; attempt < e.opts.GenerateAttempts; attempt++ {
		access, refresh, err := e.generatePair()
		if err != nil {
			return nil, err
		}
		now := time.Now()
		token := &Token{
			ID:               uuid.New(),
			AccessToken:      access,
			AccessExpiresAt:  now.Add(e.opts.AccessTokenTTL),
			RefreshToken:     refresh,
			RefreshExpiresAt: now.Add(e.opts.RefreshTokenTTL),
			ClientID:         clientID,
			UserID:           userID,
			Scopes:           scopes,
		}
		err = e.tokens.CreateToken(ctx, token)
		if errors.Is(err, ErrDuplicate) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return token, nil
	}
	return nil, ErrTokenSpaceExhausted
}

func (e *Engine) generatePair() (access, refresh string, err error) {
	if access, err = GenerateToken(e.opts.TokenLength); err != nil {
		return "", "", err
	}
	if refresh, err = GenerateToken(e.opts.TokenLength); err != nil {
		return "", "", err
	}
	return access, refresh, nil
}

func grantFromToken(t *Token) *Grant {
	return &Grant{
		AccessToken:  t.AccessToken,
		RefreshToken: t.RefreshToken,
		ExpiresAt:    t.AccessExpiresAt,
		UserID:       t.UserID,
		Scopes:       t.Scopes,
	}
}
