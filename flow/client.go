package flow

import (
	"context"
	"errors"

	"github.com/authgate/authgate/oauth2"
	"github.com/google/uuid"
)

// ClientVerifier authenticates OAuth2 clients by id and secret, whether the
// credentials arrived via HTTP Basic auth or the request body.
type ClientVerifier struct {
	clients oauth2.ClientStore
}

func NewClientVerifier(clients oauth2.ClientStore) *ClientVerifier {
	return &ClientVerifier{clients: clients}
}

// Verify resolves the client or fails with ErrInvalidCredentials. Unknown ids
// and wrong secrets are indistinguishable to the caller.
func (v *ClientVerifier) Verify(ctx context.Context, id uuid.UUID, secret string) (*oauth2.Client, error) {
	client, err := v.clients.GetClientByIDAndSecret(ctx, id, secret)
	if err != nil {
		if errors.Is(err, oauth2.ErrNotFound) {
			return nil, oauth2.ErrInvalidCredentials
		}
		return nil, err
	}
	return client, nil
}
