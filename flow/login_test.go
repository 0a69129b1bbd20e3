package flow

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/authgate/authgate/identity"
	"github.com/authgate/authgate/oauth2"
	"github.com/google/uuid"
)

type mockUserStore struct {
	users map[uuid.UUID]*identity.User
}

func newMockUserStore() *mockUserStore {
	return &mockUserStore{users: make(map[uuid.UUID]*identity.User)}
}

func (m *mockUserStore) CreateUser(ctx context.Context, user *identity.User) error {
	m.users[user.ID] = user
	return nil
}

func (m *mockUserStore) GetUser(ctx context.Context, id uuid.UUID) (*identity.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, oauth2.ErrNotFound
	}
	return u, nil
}

func (m *mockUserStore) GetUserByLogin(ctx context.Context, login string) (*identity.User, error) {
	for _, u := range m.users {
		if strings.EqualFold(u.Username, login) || strings.EqualFold(u.Email, login) {
			return u, nil
		}
	}
	return nil, oauth2.ErrNotFound
}

func TestRegistrationAndLogin(t *testing.T) {
	store := newMockUserStore()
	hasher := NewPBKDF2Hasher(16, 1000, 32, "sha256")
	regMgr := NewRegistrationManager(store, hasher)
	logMgr := NewLoginManager(store, hasher)
	ctx := context.Background()

	user, err := regMgr.Submit(ctx, Registration{
		Username:  "tester",
		Email:     "tester@example.com",
		FirstName: "John",
		LastName:  "Doe",
		Password:  "password123",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if user.PasswordChanged.IsZero() {
		t.Error("PasswordChanged not stamped")
	}
	if user.FullName() != "John Doe" {
		t.Errorf("FullName = %q", user.FullName())
	}

	// By username, by email, and case-insensitively.
	for _, login := range []string{"tester", "tester@example.com", "TESTER"} {
		if _, err := logMgr.Authenticate(ctx, login, "password123"); err != nil {
			t.Errorf("login %q: %v", login, err)
		}
	}

	if _, err := logMgr.Authenticate(ctx, "tester", "wrongpassword"); !errors.Is(err, oauth2.ErrInvalidCredentials) {
		t.Errorf("wrong password: got %v, want ErrInvalidCredentials", err)
	}
	if _, err := logMgr.Authenticate(ctx, "nobody", "password123"); !errors.Is(err, oauth2.ErrInvalidCredentials) {
		t.Errorf("unknown user: got %v, want ErrInvalidCredentials", err)
	}
}

func TestRegistrationRejectsShortPassword(t *testing.T) {
	regMgr := NewRegistrationManager(newMockUserStore(), NewPBKDF2Hasher(16, 1000, 32, "sha256"))

	_, err := regMgr.Submit(context.Background(), Registration{Username: "t", Email: "t@example.com", Password: "short"})
	if !errors.Is(err, ErrPasswordTooShort) {
		t.Errorf("got %v, want ErrPasswordTooShort", err)
	}
}

func TestSetPasswordRotatesHash(t *testing.T) {
	store := newMockUserStore()
	hasher := NewPBKDF2Hasher(16, 1000, 32, "sha256")
	regMgr := NewRegistrationManager(store, hasher)
	ctx := context.Background()

	user, err := regMgr.Submit(ctx, Registration{Username: "t", Email: "t@example.com", Password: "password123"})
	if err != nil {
		t.Fatal(err)
	}
	before := user.PasswordChanged

	if err := regMgr.SetPassword(user, "newpassword456"); err != nil {
		t.Fatal(err)
	}
	if !hasher.Compare("newpassword456", user.PasswordHash) {
		t.Error("new password does not verify")
	}
	if hasher.Compare("password123", user.PasswordHash) {
		t.Error("old password still verifies")
	}
	if user.PasswordChanged.Before(before) {
		t.Error("PasswordChanged moved backwards")
	}
}

type mockClientStore struct {
	clients map[uuid.UUID]*oauth2.Client
}

func (m *mockClientStore) CreateClient(ctx context.Context, c *oauth2.Client) error {
	m.clients[c.ID] = c
	return nil
}

func (m *mockClientStore) GetClient(ctx context.Context, id uuid.UUID) (*oauth2.Client, error) {
	c, ok := m.clients[id]
	if !ok {
		return nil, oauth2.ErrNotFound
	}
	return c, nil
}

func (m *mockClientStore) GetClientByIDAndSecret(ctx context.Context, id uuid.UUID, secret string) (*oauth2.Client, error) {
	c, ok := m.clients[id]
	if !ok || c.Secret != secret {
		return nil, oauth2.ErrNotFound
	}
	return c, nil
}

func TestClientVerifier(t *testing.T) {
	store := &mockClientStore{clients: make(map[uuid.UUID]*oauth2.Client)}
	client := &oauth2.Client{ID: uuid.New(), Secret: "t0p$3cret"}
	store.clients[client.ID] = client

	verifier := NewClientVerifier(store)
	ctx := context.Background()

	got, err := verifier.Verify(ctx, client.ID, "t0p$3cret")
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if got.ID != client.ID {
		t.Error("verifier returned the wrong client")
	}

	if _, err := verifier.Verify(ctx, client.ID, "wrong"); !errors.Is(err, oauth2.ErrInvalidCredentials) {
		t.Errorf("wrong secret: got %v, want ErrInvalidCredentials", err)
	}
	if _, err := verifier.Verify(ctx, uuid.New(), "t0p$3cret"); !errors.Is(err, oauth2.ErrInvalidCredentials) {
		t.Errorf("unknown client: got %v, want ErrInvalidCredentials", err)
	}
}
