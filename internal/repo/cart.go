package repo

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Skotchmaster/storefront/internal/domain"
	"github.com/Skotchmaster/storefront/internal/models"
)

// CartItemForUpdate returns the locked cart row, or domain.ErrNotInCart.
func (r *GormRepo) CartItemForUpdate(ctx context.Context, userID, productID uuid.UUID) (*models.CartItem, error) {
	var item models.CartItem
	err := r.DB.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ? AND product_id = ?", userID, productID).
		First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotInCart
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *GormRepo) CreateCartItem(ctx context.Context, item *models.CartItem) error {
	return r.DB.WithContext(ctx).Create(item).Error
}

func (r *GormRepo) UpdateCartQuantity(ctx context.Context, item *models.CartItem, qty int) error {
	if err := r.DB.WithContext(ctx).Model(item).Update("quantity", qty).Error; err != nil {
		return err
	}
	item.Quantity = qty
	return nil
}

func (r *GormRepo) DeleteCartItem(ctx context.Context, item *models.CartItem) error {
	return r.DB.WithContext(ctx).Delete(item).Error
}

// ClearCart deletes every row of the user's cart and returns how many went.
func (r *GormRepo) ClearCart(ctx context.Context, userID uuid.UUID) (int64, error) {
	res := r.DB.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.CartItem{})
	return res.RowsAffected, res.Error
}

func (r *GormRepo) CartLines(ctx context.Context, userID uuid.UUID) ([]models.CartLine, error) {
	return r.cartLines(ctx, userID, false)
}

// CartLinesForUpdate is CartLines with the user's cart rows locked, so the
// snapshot taken at finalization cannot change before the cart is cleared.
func (r *GormRepo) CartLinesForUpdate(ctx context.Context, userID uuid.UUID) ([]models.CartLine, error) {
	return r.cartLines(ctx, userID, true)
}

func (r *GormRepo) cartLines(ctx context.Context, userID uuid.UUID, lock bool) ([]models.CartLine, error) {
	q := r.DB.WithContext(ctx).
		Table("cart_items AS ci").
		Select("ci.product_id, ci.quantity, ci.created_at, p.name, p.image_url, p.sale_price").
		Joins("JOIN products AS p ON p.id = ci.product_id").
		Where("ci.user_id = ?", userID).
		Order("ci.created_at ASC")
	if lock {
		q = q.Clauses(clause.Locking{Strength: "UPDATE", Table: clause.Table{Name: "ci"}})
	}

	lines := make([]models.CartLine, 0)
	if err := q.Scan(&lines).Error; err != nil {
		return nil, err
	}
	return lines, nil
}
