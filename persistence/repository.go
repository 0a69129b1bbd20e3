// Package persistence implements the domain.Storage contract on GORM, with
// sqlite, postgres, and mysql dialects selectable by name.
package persistence

import (
	"context"
	"errors"

	"github.com/authgate/authgate/identity"
	"github.com/authgate/authgate/oauth2"
	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func init() {
	Register("sqlite", sqlite.Open)
	Register("postgres", postgres.Open)
	Register("mysql", mysql.Open)
}

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) DB() *gorm.DB { return r.db }

func (r *Repository) AutoMigrate() error {
	return r.db.AutoMigrate(
		&gormUser{},
		&gormClient{},
		&gormAuthorizationCode{},
		&gormToken{},
	)
}

// translate maps gorm sentinels onto the storage sentinels the engine
// understands. Anything else passes through as a storage fault.
func translate(err error) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return oauth2.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return oauth2.ErrDuplicate
	}
	return err
}

func (r *Repository) CreateUser(ctx context.Context, user *identity.User) error {
	if err := r.db.WithContext(ctx).Create(fromCoreUser(user)).Error; err != nil {
		return translate(err)
	}
	return nil
}

func (r *Repository) GetUser(ctx context.Context, id uuid.UUID) (*identity.User, error) {
	var gu gormUser
	if err := r.db.WithContext(ctx).First(&gu, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return toCoreUser(&gu), nil
}

func (r *Repository) GetUserByLogin(ctx context.Context, login string) (*identity.User, error) {
	var gu gormUser
	err := r.db.WithContext(ctx).
		Where("lower(username) = lower(?) OR lower(email) = lower(?)", login, login).
		First(&gu).Error
	if err != nil {
		return nil, translate(err)
	}
	return toCoreUser(&gu), nil
}

func (r *Repository) CreateClient(ctx context.Context, client *oauth2.Client) error {
	if err := r.db.WithContext(ctx).Create(fromCoreClient(client)).Error; err != nil {
		return translate(err)
	}
	return nil
}

func (r *Repository) GetClient(ctx context.Context, id uuid.UUID) (*oauth2.Client, error) {
	var gc gormClient
	if err := r.db.WithContext(ctx).First(&gc, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return toCoreClient(&gc), nil
}

func (r *Repository) GetClientByIDAndSecret(ctx context.Context, id uuid.UUID, secret string) (*oauth2.Client, error) {
	var gc gormClient
	err := r.db.WithContext(ctx).
		Where("id = ? AND secret = ?", id, secret).
		First(&gc).Error
	if err != nil {
		return nil, translate(err)
	}
	return toCoreClient(&gc), nil
}
