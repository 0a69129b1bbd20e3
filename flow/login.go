package flow

import (
	"context"
	"errors"

	"github.com/authgate/authgate/domain"
	"github.com/authgate/authgate/identity"
	"github.com/authgate/authgate/oauth2"
)

// Hook runs before or after a login attempt.
type Hook func(ctx context.Context, user *identity.User) error

// LoginManager authenticates users by username or email plus password.
type LoginManager struct {
	users     domain.UserStorage
	hasher    domain.Hasher
	preHooks  []Hook
	postHooks []Hook
}

func NewLoginManager(users domain.UserStorage, hasher domain.Hasher) *LoginManager {
	return &LoginManager{users: users, hasher: hasher}
}

func (m *LoginManager) AddPreHook(h Hook)  { m.preHooks = append(m.preHooks, h) }
func (m *LoginManager) AddPostHook(h Hook) { m.postHooks = append(m.postHooks, h) }

// Authenticate resolves the user and verifies the password. Unknown users and
// wrong passwords fail identically with ErrInvalidCredentials.
func (m *LoginManager) Authenticate(ctx context.Context, login, password string) (*identity.User, error) {
	for _, h := range m.preHooks {
		if err := h(ctx, nil); err != nil {
			return nil, err
		}
	}

	user, err := m.users.GetUserByLogin(ctx, login)
	if err != nil {
		if errors.Is(err, oauth2.ErrNotFound) {
			return nil, oauth2.ErrInvalidCredentials
		}
		return nil, err
	}
	if !m.hasher.Compare(password, user.PasswordHash) {
		return nil, oauth2.ErrInvalidCredentials
	}

	for _, h := range m.postHooks {
		if err := h(ctx, user); err != nil {
			return nil, err
		}
	}

	return user, nil
}
