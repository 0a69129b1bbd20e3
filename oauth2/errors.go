package oauth2

import "errors"

// Grant-level failures. Handlers map these onto the OAuth 2.0 error taxonomy;
// callers never learn which internal check rejected a grant beyond what the
// wire error code conveys.
var (
	ErrUnknownClient       = errors.New("oauth2: unknown client")
	ErrInvalidRedirectURI  = errors.New("oauth2: redirect uri not registered for client")
	ErrInvalidGrant        = errors.New("oauth2: invalid grant")
	ErrScopeNotAllowed     = errors.New("oauth2: requested scope not allowed")
	ErrInvalidCredentials  = errors.New("oauth2: invalid credentials")
	ErrTokenSpaceExhausted = errors.New("oauth2: token generation retry budget exceeded")
)

// Storage sentinels. Store implementations translate their driver errors to
// these; anything else propagates to the transport layer as a storage fault.
var (
	ErrNotFound  = errors.New("oauth2: not found")
	ErrDuplicate = errors.New("oauth2: duplicate key")
)
