// Package oauth2 implements the grant and token lifecycle of the authgate
// authorization server: the authorization-code, client-credentials, and
// refresh-token grants, opaque credential generation, scope policy, and
// bearer-token resolution. Persistence is abstracted behind store interfaces;
// the HTTP boundary lives in the api package.
package oauth2

import "github.com/google/uuid"

// Client is a registered application. Every issuance checks the requested
// redirect URI and scopes against the allowed sets stored here.
type Client struct {
	ID           uuid.UUID  `json:"id"`
	Secret       string     `json:"-"`
	Name         string     `json:"name"`
	Description  string     `json:"description,omitempty"`
	UserID       *uuid.UUID `json:"user_id,omitempty"`
	Confidential bool       `json:"confidential"`
	RedirectURIs []string   `json:"redirect_uris"`
	Scopes       []string   `json:"scopes"`
}

// ValidateRedirectURI reports whether uri is registered for the client.
// Exact string match, no normalization.
func (c *Client) ValidateRedirectURI(uri string) bool {
	for _, u := range c.RedirectURIs {
		if u == uri {
			return true
		}
	}
	return false
}

// ValidateScope reports whether every scope named in the request string is in
// the client's allowed set.
func (c *Client) ValidateScope(scope string) bool {
	return ScopeAllowed(SplitScope(scope), c.Scopes)
}
