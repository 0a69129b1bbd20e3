package authgate

import (
	"github.com/authgate/authgate/config"
	"github.com/authgate/authgate/domain"
	"github.com/authgate/authgate/flow"
	"github.com/authgate/authgate/identity"
	"github.com/authgate/authgate/oauth2"
	"github.com/authgate/authgate/session"
)

// Default types for convenience
type User = identity.User
type Client = oauth2.Client
type Token = oauth2.Token

// NewDefaultHasher builds the credential hasher from configuration.
func NewDefaultHasher(cfg *config.Config) domain.Hasher {
	return flow.NewPBKDF2Hasher(cfg.PasswordSaltBytes, cfg.PasswordIterations, cfg.PasswordKeyLength, cfg.PasswordDigest)
}

// NewDefaultEngine wires the grant engine onto a storage implementation using
// the configured lifetimes.
func NewDefaultEngine(storage domain.Storage, cfg *config.Config) *oauth2.Engine {
	return oauth2.NewEngine(storage, storage, storage, storage, oauth2.EngineOptions{
		TokenLength:     cfg.TokenLength,
		AuthCodeTTL:     cfg.AuthCodeTTL,
		AccessTokenTTL:  cfg.AccessTokenTTL,
		RefreshTokenTTL: cfg.RefreshTokenTTL,
	})
}

// NewDefaultLoginManager creates a LoginManager with the configured hasher.
func NewDefaultLoginManager(storage domain.Storage, cfg *config.Config) *flow.LoginManager {
	return flow.NewLoginManager(storage, NewDefaultHasher(cfg))
}

// NewDefaultRegistrationManager creates a RegistrationManager with the
// configured hasher.
func NewDefaultRegistrationManager(storage domain.Storage, cfg *config.Config) *flow.RegistrationManager {
	return flow.NewRegistrationManager(storage, NewDefaultHasher(cfg))
}

// NewDefaultSessionManager creates the login-session manager.
func NewDefaultSessionManager(cfg *config.Config) *session.Manager {
	return session.NewManager(cfg.SessionSecret, cfg.SessionTTL)
}
