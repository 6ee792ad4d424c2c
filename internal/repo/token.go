package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Skotchmaster/storefront/internal/domain"
	"github.com/Skotchmaster/storefront/internal/models"
)

func (r *GormRepo) SaveRefreshToken(ctx context.Context, t *models.RefreshToken) error {
	return r.DB.WithContext(ctx).Create(t).Error
}

// ConsumeRefreshToken locks the token row, checks it is still usable and
// marks it revoked so it cannot be rotated twice.
func (r *GormRepo) ConsumeRefreshToken(ctx context.Context, jti string, now time.Time) (*models.RefreshToken, error) {
	var t models.RefreshToken
	err := r.DB.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("jti = ?", jti).
		First(&t).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: unknown refresh token", domain.ErrUnauthorized)
	}
	if err != nil {
		return nil, err
	}
	if t.Revoked || t.ExpiresAt.Before(now) {
		return nil, fmt.Errorf("%w: refresh token expired or revoked", domain.ErrUnauthorized)
	}
	if err := r.DB.WithContext(ctx).Model(&t).Update("revoked", true).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *GormRepo) RevokeRefreshToken(ctx context.Context, jti string) error {
	return r.DB.WithContext(ctx).
		Model(&models.RefreshToken{}).
		Where("jti = ?", jti).
		Update("revoked", true).Error
}

func (r *GormRepo) RevokeUserRefreshTokens(ctx context.Context, userID uuid.UUID) error {
	return r.DB.WithContext(ctx).
		Model(&models.RefreshToken{}).
		Where("user_id = ? AND revoked = ?", userID, false).
		Update("revoked", true).Error
}

func (r *GormRepo) SaveUserToken(ctx context.Context, t *models.UserToken) error {
	return r.DB.WithContext(ctx).Create(t).Error
}

// ConsumeUserToken locks a one-time token and marks it used. Unknown, used
// and expired tokens are all reported as the same validation error.
func (r *GormRepo) ConsumeUserToken(ctx context.Context, purpose, tokenHash string, now time.Time) (*models.UserToken, error) {
	var t models.UserToken
	err := r.DB.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("purpose = ? AND token_hash = ?", purpose, tokenHash).
		First(&t).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrInvalidToken
	}
	if err != nil {
		return nil, err
	}
	if t.UsedAt != nil || t.ExpiresAt.Before(now) {
		return nil, domain.ErrInvalidToken
	}
	if err := r.DB.WithContext(ctx).Model(&t).Update("used_at", now).Error; err != nil {
		return nil, err
	}
	t.UsedAt = &now
	return &t, nil
}
