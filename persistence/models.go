package persistence

import (
	"time"

	"github.com/authgate/authgate/identity"
	"github.com/authgate/authgate/oauth2"
	"github.com/google/uuid"
)

type gormUser struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey"`
	Username        string    `gorm:"size:255;uniqueIndex"`
	Email           string    `gorm:"size:255;uniqueIndex"`
	FirstName       string    `gorm:"size:255"`
	LastName        string    `gorm:"size:255"`
	PhotoData       []byte
	PasswordHash    []byte `gorm:"not null"`
	PasswordChanged time.Time
}

func (gormUser) TableName() string { return "users" }

func fromCoreUser(u *identity.User) *gormUser {
	return &gormUser{
		ID:              u.ID,
		Username:        u.Username,
		Email:           u.Email,
		FirstName:       u.FirstName,
		LastName:        u.LastName,
		PhotoData:       u.PhotoData,
		PasswordHash:    u.PasswordHash,
		PasswordChanged: u.PasswordChanged,
	}
}

func toCoreUser(u *gormUser) *identity.User {
	return &identity.User{
		ID:              u.ID,
		Username:        u.Username,
		Email:           u.Email,
		FirstName:       u.FirstName,
		LastName:        u.LastName,
		PhotoData:       u.PhotoData,
		PasswordHash:    u.PasswordHash,
		PasswordChanged: u.PasswordChanged,
	}
}

type gormClient struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	Secret       string    `gorm:"size:255;not null"`
	Name         string    `gorm:"size:255;uniqueIndex"`
	Description  string    `gorm:"size:1023"`
	UserID       *uuid.UUID `gorm:"type:uuid;index"`
	Confidential bool
	RedirectURIs []string `gorm:"type:text;serializer:json"`
	Scopes       []string `gorm:"type:text;serializer:json"`
}

func (gormClient) TableName() string { return "clients" }

func fromCoreClient(c *oauth2.Client) *gormClient {
	return &gormClient{
		ID:           c.ID,
		Secret:       c.Secret,
		Name:         c.Name,
		Description:  c.Description,
		UserID:       c.UserID,
		Confidential: c.Confidential,
		RedirectURIs: c.RedirectURIs,
		Scopes:       c.Scopes,
	}
}

func toCoreClient(c *gormClient) *oauth2.Client {
	return &oauth2.Client{
		ID:           c.ID,
		Secret:       c.Secret,
		Name:         c.Name,
		Description:  c.Description,
		UserID:       c.UserID,
		Confidential: c.Confidential,
		RedirectURIs: c.RedirectURIs,
		Scopes:       c.Scopes,
	}
}

type gormAuthorizationCode struct {
	Code        string    `gorm:"size:255;primaryKey"`
	ClientID    uuid.UUID `gorm:"type:uuid;index"`
	UserID      uuid.UUID `gorm:"type:uuid;index"`
	RedirectURI string    `gorm:"size:2047"`
	Scopes      []string  `gorm:"type:text;serializer:json"`
	ExpiresAt   time.Time `gorm:"index"`
}

func (gormAuthorizationCode) TableName() string { return "authorization_codes" }

func fromCoreAuthCode(c *oauth2.AuthorizationCode) *gormAuthorizationCode {
	return &gormAuthorizationCode{
		Code:        c.Code,
		ClientID:    c.ClientID,
		UserID:      c.UserID,
		RedirectURI: c.RedirectURI,
		Scopes:      c.Scopes,
		ExpiresAt:   c.ExpiresAt,
	}
}

func toCoreAuthCode(c *gormAuthorizationCode) *oauth2.AuthorizationCode {
	return &oauth2.AuthorizationCode{
		Code:        c.Code,
		ClientID:    c.ClientID,
		UserID:      c.UserID,
		RedirectURI: c.RedirectURI,
		Scopes:      c.Scopes,
		ExpiresAt:   c.ExpiresAt,
	}
}

type gormToken struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey"`
	AccessToken      string    `gorm:"size:255;uniqueIndex"`
	AccessExpiresAt  time.Time
	RefreshToken     string `gorm:"size:255;uniqueIndex"`
	RefreshExpiresAt time.Time
	ClientID         uuid.UUID  `gorm:"type:uuid;index;not null"`
	UserID           *uuid.UUID `gorm:"type:uuid;index"`
	Scopes           []string   `gorm:"type:text;serializer:json"`
}

func (gormToken) TableName() string { return "tokens" }

func fromCoreToken(t *oauth2.Token) *gormToken {
	return &gormToken{
		ID:               t.ID,
		AccessToken:      t.AccessToken,
		AccessExpiresAt:  t.AccessExpiresAt,
		RefreshToken:     t.RefreshToken,
		RefreshExpiresAt: t.RefreshExpiresAt,
		ClientID:         t.ClientID,
		UserID:           t.UserID,
		Scopes:           t.Scopes,
	}
}

func toCoreToken(t *gormToken) *oauth2.Token {
	return &oauth2.Token{
		ID:               t.ID,
		AccessToken:      t.AccessToken,
		AccessExpiresAt:  t.AccessExpiresAt,
		RefreshToken:     t.RefreshToken,
		RefreshExpiresAt: t.RefreshExpiresAt,
		ClientID:         t.ClientID,
		UserID:           t.UserID,
		Scopes:           t.Scopes,
	}
}
