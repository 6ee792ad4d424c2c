package repo

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Skotchmaster/storefront/internal/domain"
	"github.com/Skotchmaster/storefront/internal/models"
)

// ProductForUpdate loads a product holding an exclusive row lock until the
// surrounding transaction ends.
func (r *GormRepo) ProductForUpdate(ctx context.Context, productID uuid.UUID) (*models.Product, error) {
	var p models.Product
	err := r.DB.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", productID).
		First(&p).Error
	if err != nil {
		return nil, notFound(err, "product "+productID.String())
	}
	return &p, nil
}

// Reserve takes qty units out of the product's stock, or fails with
// *domain.InsufficientStockError reporting what is left.
func (r *GormRepo) Reserve(ctx context.Context, productID uuid.UUID, qty int) error {
	if qty <= 0 {
		return fmt.Errorf("%w: reserve quantity must be > 0", domain.ErrValidation)
	}

	p, err := r.ProductForUpdate(ctx, productID)
	if err != nil {
		return err
	}
	if p.Stock < qty {
		return &domain.InsufficientStockError{ProductID: productID, Requested: qty, Available: p.Stock}
	}

	res := r.DB.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ? AND stock >= ?", productID, qty).
		Update("stock", gorm.Expr("stock - ?", qty))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		current, err := r.ProductForUpdate(ctx, productID)
		if err != nil {
			return err
		}
		return &domain.InsufficientStockError{ProductID: productID, Requested: qty, Available: current.Stock}
	}
	return nil
}

// Release puts qty units back. It never fails on stock level.
func (r *GormRepo) Release(ctx context.Context, productID uuid.UUID, qty int) error {
	if qty < 0 {
		return fmt.Errorf("%w: release quantity must be >= 0", domain.ErrValidation)
	}
	if qty == 0 {
		return nil
	}

	res := r.DB.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ?", productID).
		Update("stock", gorm.Expr("stock + ?", qty))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: product %s", domain.ErrNotFound, productID)
	}
	return nil
}

// SetStock overwrites the stock count under the same row lock used by
// reservations.
func (r *GormRepo) SetStock(ctx context.Context, productID uuid.UUID, stock int) (*models.Product, error) {
	if stock < 0 {
		return nil, fmt.Errorf("%w: stock must be >= 0", domain.ErrValidation)
	}
	p, err := r.ProductForUpdate(ctx, productID)
	if err != nil {
		return nil, err
	}
	if err := r.DB.WithContext(ctx).Model(p).Update("stock", stock).Error; err != nil {
		return nil, err
	}
	p.Stock = stock
	return p, nil
}
