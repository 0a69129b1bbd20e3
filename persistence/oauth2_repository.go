package persistence

import (
	"context"

	"github.com/authgate/authgate/oauth2"
	"github.com/google/uuid"
)

func (r *Repository) CreateAuthorizationCode(ctx context.Context, code *oauth2.AuthorizationCode) error {
	if err := r.db.WithContext(ctx).Create(fromCoreAuthCode(code)).Error; err != nil {
		return translate(err)
	}
	return nil
}

func (r *Repository) GetAuthorizationCode(ctx context.Context, code string) (*oauth2.AuthorizationCode, error) {
	var gc gormAuthorizationCode
	if err := r.db.WithContext(ctx).First(&gc, "code = ?", code).Error; err != nil {
		return nil, translate(err)
	}
	return toCoreAuthCode(&gc), nil
}

// ConsumeAuthorizationCode reads and deletes the code. The conditional delete
// is the arbiter: of concurrent consumers, exactly one sees RowsAffected == 1
// and every other gets ErrNotFound.
func (r *Repository) ConsumeAuthorizationCode(ctx context.Context, code string) (*oauth2.AuthorizationCode, error) {
	var gc gormAuthorizationCode
	if err := r.db.WithContext(ctx).First(&gc, "code = ?", code).Error; err != nil {
		return nil, translate(err)
	}

	res := r.db.WithContext(ctx).Delete(&gormAuthorizationCode{}, "code = ?", code)
	if res.Error != nil {
		return nil, translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, oauth2.ErrNotFound
	}
	return toCoreAuthCode(&gc), nil
}

func (r *Repository) CreateToken(ctx context.Context, token *oauth2.Token) error {
	if err := r.db.WithContext(ctx).Create(fromCoreToken(token)).Error; err != nil {
		return translate(err)
	}
	return nil
}

func (r *Repository) GetTokenByAccessToken(ctx context.Context, accessToken string) (*oauth2.Token, error) {
	var gt gormToken
	if err := r.db.WithContext(ctx).First(&gt, "access_token = ?", accessToken).Error; err != nil {
		return nil, translate(err)
	}
	return toCoreToken(&gt), nil
}

func (r *Repository) GetTokenByRefreshToken(ctx context.Context, refreshToken string) (*oauth2.Token, error) {
	var gt gormToken
	if err := r.db.WithContext(ctx).First(&gt, "refresh_token = ?", refreshToken).Error; err != nil {
		return nil, translate(err)
	}
	return toCoreToken(&gt), nil
}

// RotateCredentials overwrites both token values and expiries on the existing
// row, conditional on the row still holding staleRefresh. A refresh that lost
// the race updates zero rows and gets ErrNotFound.
func (r *Repository) RotateCredentials(ctx context.Context, token *oauth2.Token, staleRefresh string) error {
	res := r.db.WithContext(ctx).Model(&gormToken{}).
		Where("id = ? AND refresh_token = ?", token.ID, staleRefresh).
		Updates(map[string]any{
			"access_token":       token.AccessToken,
			"access_expires_at":  token.AccessExpiresAt,
			"refresh_token":      token.RefreshToken,
			"refresh_expires_at": token.RefreshExpiresAt,
		})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return oauth2.ErrNotFound
	}
	return nil
}

func (r *Repository) DeleteToken(ctx context.Context, id uuid.UUID) error {
	if err := r.db.WithContext(ctx).Delete(&gormToken{}, "id = ?", id).Error; err != nil {
		return translate(err)
	}
	return nil
}
