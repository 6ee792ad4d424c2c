package repo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	pkgdb "github.com/Skotchmaster/storefront/pkg/db"

	"github.com/Skotchmaster/storefront/internal/domain"
	"github.com/Skotchmaster/storefront/internal/models"
)

func (r *GormRepo) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var u models.User
	err := r.DB.WithContext(ctx).Where("id = ?", id).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %s", domain.ErrUserNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *GormRepo) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	err := r.DB.WithContext(ctx).Where("email = ?", strings.ToLower(email)).First(&u).Error
	if err != nil {
		return nil, notFound(err, "user "+email)
	}
	return &u, nil
}

func (r *GormRepo) CreateUser(ctx context.Context, u *models.User) error {
	u.Email = strings.ToLower(u.Email)
	if err := r.DB.WithContext(ctx).Create(u).Error; err != nil {
		if pkgdb.IsUniqueViolation(err) {
			return fmt.Errorf("%w: user %s already exists", domain.ErrConflict, u.Email)
		}
		return err
	}
	return nil
}

// UpdateUser writes the editable account columns of u.
func (r *GormRepo) UpdateUser(ctx context.Context, u *models.User) error {
	u.Email = strings.ToLower(u.Email)
	err := r.DB.WithContext(ctx).
		Model(u).
		Select("email", "display_name", "password_hash", "email_verified").
		Updates(u).Error
	if pkgdb.IsUniqueViolation(err) {
		return fmt.Errorf("%w: user %s already exists", domain.ErrConflict, u.Email)
	}
	return err
}

func (r *GormRepo) MarkEmailVerified(ctx context.Context, userID uuid.UUID) error {
	return r.DB.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", userID).
		Update("email_verified", true).Error
}
