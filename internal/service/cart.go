package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/Skotchmaster/storefront/internal/domain"
	"github.com/Skotchmaster/storefront/internal/metrics"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/mykafka"
	"github.com/Skotchmaster/storefront/internal/repo"
)

// CartService keeps cart quantities and product stock in step. Every
// mutation runs in one transaction that locks the product row first.
type CartService struct {
	Repo    *repo.GormRepo
	Events  EventPublisher
	Metrics *metrics.Metrics
}

type CartItemEvent struct {
	UserID    uuid.UUID `json:"user_id"`
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int       `json:"quantity"`
	Delta     int       `json:"delta"`
}

func (h *CartService) Get(ctx context.Context, userID uuid.UUID) ([]models.CartLine, error) {
	return h.Repo.CartLines(ctx, userID)
}

// Add reserves delta more units and grows the cart row by the same amount.
func (h *CartService) Add(ctx context.Context, userID, productID uuid.UUID, delta int) (*models.CartItem, error) {
	if productID == uuid.Nil {
		return nil, fmt.Errorf("%w: product id is required", domain.ErrValidation)
	}
	if delta <= 0 {
		return nil, fmt.Errorf("%w: quantity must be greater than zero", domain.ErrValidation)
	}

	var item *models.CartItem
	err := h.Repo.Transaction(ctx, func(tx *repo.GormRepo) error {
		p, err := tx.ProductForUpdate(ctx, productID)
		if err != nil {
			return err
		}
		if p.Archived {
			return fmt.Errorf("%w: product %s is not for sale", domain.ErrNotFound, productID)
		}

		existing, err := tx.CartItemForUpdate(ctx, userID, productID)
		if err != nil && !errors.Is(err, domain.ErrNotInCart) {
			return err
		}

		if err := tx.Reserve(ctx, productID, delta); err != nil {
			return err
		}

		if existing == nil {
			item = &models.CartItem{UserID: userID, ProductID: productID, Quantity: delta}
			return tx.CreateCartItem(ctx, item)
		}
		if err := tx.UpdateCartQuantity(ctx, existing, existing.Quantity+delta); err != nil {
			return err
		}
		item = existing
		return nil
	})
	h.observe(err)
	if err != nil {
		return nil, err
	}

	publish(ctx, h.Events, mykafka.TopicCartEvents, userID.String(), mykafka.EventCartItemAdded,
		CartItemEvent{UserID: userID, ProductID: productID, Quantity: item.Quantity, Delta: delta})
	return item, nil
}

// SetQuantity moves the cart row to target, reserving or releasing the
// difference. A target of zero removes the row. The returned item is nil
// when the row was removed.
func (h *CartService) SetQuantity(ctx context.Context, userID, productID uuid.UUID, target int) (*models.CartItem, error) {
	if productID == uuid.Nil {
		return nil, fmt.Errorf("%w: product id is required", domain.ErrValidation)
	}
	if target < 0 {
		return nil, fmt.Errorf("%w: quantity must not be negative", domain.ErrValidation)
	}

	var (
		item  *models.CartItem
		delta int
	)
	err := h.Repo.Transaction(ctx, func(tx *repo.GormRepo) error {
		if _, err := tx.ProductForUpdate(ctx, productID); err != nil {
			// a cart row cannot outlive its product
			if errors.Is(err, domain.ErrNotFound) {
				return domain.ErrNotInCart
			}
			return err
		}

		existing, err := tx.CartItemForUpdate(ctx, userID, productID)
		if err != nil {
			return err
		}

		delta = target - existing.Quantity
		switch {
		case delta > 0:
			if err := tx.Reserve(ctx, productID, delta); err != nil {
				return err
			}
		case delta < 0:
			if err := tx.Release(ctx, productID, -delta); err != nil {
				return err
			}
		}

		if target == 0 {
			return tx.DeleteCartItem(ctx, existing)
		}
		if err := tx.UpdateCartQuantity(ctx, existing, target); err != nil {
			return err
		}
		item = existing
		return nil
	})
	if delta > 0 {
		h.observe(err)
	}
	if err != nil {
		return nil, err
	}

	eventType := mykafka.EventCartItemUpdated
	if item == nil {
		eventType = mykafka.EventCartItemRemoved
	}
	publish(ctx, h.Events, mykafka.TopicCartEvents, userID.String(), eventType,
		CartItemEvent{UserID: userID, ProductID: productID, Quantity: target, Delta: delta})
	return item, nil
}

// Remove deletes the cart row and returns its whole quantity to stock.
// Removing a product that is not in the cart is a no-op.
func (h *CartService) Remove(ctx context.Context, userID, productID uuid.UUID) error {
	if productID == uuid.Nil {
		return fmt.Errorf("%w: product id is required", domain.ErrValidation)
	}

	var released int
	err := h.Repo.Transaction(ctx, func(tx *repo.GormRepo) error {
		if _, err := tx.ProductForUpdate(ctx, productID); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil
			}
			return err
		}

		existing, err := tx.CartItemForUpdate(ctx, userID, productID)
		if errors.Is(err, domain.ErrNotInCart) {
			return nil
		}
		if err != nil {
			return err
		}

		if err := tx.DeleteCartItem(ctx, existing); err != nil {
			return err
		}
		released = existing.Quantity
		return tx.Release(ctx, productID, existing.Quantity)
	})
	if err != nil {
		return err
	}

	if released > 0 {
		publish(ctx, h.Events, mykafka.TopicCartEvents, userID.String(), mykafka.EventCartItemRemoved,
			CartItemEvent{UserID: userID, ProductID: productID, Quantity: 0, Delta: -released})
	}
	return nil
}

// ClearForOrder drops every cart row of userID inside the caller's
// transaction. Stock is not released: the order consumed it.
func (h *CartService) ClearForOrder(ctx context.Context, tx *repo.GormRepo, userID uuid.UUID) (int64, error) {
	return tx.ClearCart(ctx, userID)
}

func (h *CartService) observe(err error) {
	switch {
	case err == nil:
		h.Metrics.Reservation(metrics.OutcomeOK)
	case errors.Is(err, domain.ErrInsufficientStock):
		h.Metrics.Reservation(metrics.OutcomeInsufficient)
	default:
		h.Metrics.Reservation(metrics.OutcomeError)
	}
}
