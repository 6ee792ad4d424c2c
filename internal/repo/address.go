package repo

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm/clause"

	"github.com/Skotchmaster/storefront/internal/models"
)

func (r *GormRepo) GetAddress(ctx context.Context, userID uuid.UUID) (*models.Address, error) {
	var a models.Address
	if err := r.DB.WithContext(ctx).Where("user_id = ?", userID).First(&a).Error; err != nil {
		return nil, notFound(err, "address")
	}
	return &a, nil
}

// UpsertAddress keeps exactly one address per user.
func (r *GormRepo) UpsertAddress(ctx context.Context, a *models.Address) error {
	return r.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"street", "number", "neighborhood", "city", "state", "postal_code", "phone", "updated_at",
		}),
	}).Create(a).Error
}
