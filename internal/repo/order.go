package repo

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	pkgdb "github.com/Skotchmaster/storefront/pkg/db"

	"github.com/Skotchmaster/storefront/internal/domain"
	"github.com/Skotchmaster/storefront/internal/models"
)

func (r *GormRepo) OrderBySession(ctx context.Context, sessionID string) (*models.Order, error) {
	var o models.Order
	if err := r.DB.WithContext(ctx).Where("payment_session_id = ?", sessionID).First(&o).Error; err != nil {
		return nil, notFound(err, "order for session "+sessionID)
	}
	return &o, nil
}

func (r *GormRepo) OrderByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var o models.Order
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&o).Error; err != nil {
		return nil, notFound(err, "order "+id.String())
	}
	return &o, nil
}

// CreateOrder inserts the order. A second order for the same payment session
// fails with domain.ErrConflict.
func (r *GormRepo) CreateOrder(ctx context.Context, order *models.Order) error {
	if err := r.DB.WithContext(ctx).Create(order).Error; err != nil {
		if pkgdb.IsUniqueViolation(err) {
			return fmt.Errorf("%w: order for session %s exists", domain.ErrConflict, order.PaymentSessionID)
		}
		return err
	}
	return nil
}

func (r *GormRepo) ListOrders(ctx context.Context, userID uuid.UUID, limit, offset int) (int64, []models.Order, error) {
	q := r.DB.WithContext(ctx).Model(&models.Order{}).Where("user_id = ?", userID)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return 0, nil, err
	}

	orders := make([]models.Order, 0, limit)
	if err := q.Order("created_at DESC").Limit(limit).Offset(offset).Find(&orders).Error; err != nil {
		return 0, nil, err
	}
	return total, orders, nil
}

func (r *GormRepo) ListAllOrders(ctx context.Context, status domain.OrderStatus, limit, offset int) (int64, []models.Order, error) {
	q := r.DB.WithContext(ctx).Model(&models.Order{})
	if status != "" {
		q = q.Where("status = ?", status)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return 0, nil, err
	}

	orders := make([]models.Order, 0, limit)
	if err := q.Order("created_at DESC").Limit(limit).Offset(offset).Find(&orders).Error; err != nil {
		return 0, nil, err
	}
	return total, orders, nil
}

// UpdateOrderFulfillment changes only status and shipping metadata.
func (r *GormRepo) UpdateOrderFulfillment(ctx context.Context, order *models.Order, fields map[string]any) error {
	return r.DB.WithContext(ctx).
		Model(order).
		Select("status", "carrier", "tracking_number").
		Updates(fields).Error
}
