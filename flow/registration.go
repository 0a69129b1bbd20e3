// Package flow implements the authentication flows in front of the grant
// engine: user registration and login, and client-secret verification. The
// api package invokes these before any grant call.
package flow

import (
	"context"
	"errors"
	"time"

	"github.com/authgate/authgate/domain"
	"github.com/authgate/authgate/identity"
	"github.com/google/uuid"
)

// MinPasswordLength matches the validation applied to the password trait.
const MinPasswordLength = 8

var ErrPasswordTooShort = errors.New("flow: password too short")

// Registration carries the traits of a new user.
type Registration struct {
	Username  string
	Email     string
	FirstName string
	LastName  string
	Password  string
}

// RegistrationManager creates user identities. Setting the password recomputes
// the stored hash and stamps PasswordChanged.
type RegistrationManager struct {
	users  domain.UserStorage
	hasher domain.Hasher
}

func NewRegistrationManager(users domain.UserStorage, hasher domain.Hasher) *RegistrationManager {
	return &RegistrationManager{users: users, hasher: hasher}
}

func (m *RegistrationManager) Submit(ctx context.Context, reg Registration) (*identity.User, error) {
	if len(reg.Password) < MinPasswordLength {
		return nil, ErrPasswordTooShort
	}

	hash, err := m.hasher.Hash(reg.Password)
	if err != nil {
		return nil, err
	}

	user := &identity.User{
		ID:              uuid.New(),
		Username:        reg.Username,
		Email:           reg.Email,
		FirstName:       reg.FirstName,
		LastName:        reg.LastName,
		PasswordHash:    hash,
		PasswordChanged: time.Now(),
	}
	if err := m.users.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// SetPassword rotates an existing user's password in memory. The caller
// persists the user afterwards.
func (m *RegistrationManager) SetPassword(user *identity.User, password string) error {
	if len(password) < MinPasswordLength {
		return ErrPasswordTooShort
	}
	hash, err := m.hasher.Hash(password)
	if err != nil {
		return err
	}
	user.PasswordHash = hash
	user.PasswordChanged = time.Now()
	return nil
}
