package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/Skotchmaster/storefront/internal/domain"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/mykafka"
	"github.com/Skotchmaster/storefront/internal/repo"
)

type OrderService struct {
	Repo   *repo.GormRepo
	Events EventPublisher
}

type FulfillmentPatch struct {
	Status         *domain.OrderStatus
	Carrier        *string
	TrackingNumber *string
}

type OrderStatusEvent struct {
	OrderID        uuid.UUID          `json:"order_id"`
	UserID         uuid.UUID          `json:"user_id"`
	Status         domain.OrderStatus `json:"status"`
	Carrier        string             `json:"carrier"`
	TrackingNumber string             `json:"tracking_number"`
}

func (s *OrderService) ListForUser(ctx context.Context, userID uuid.UUID, offset, limit int) (int64, []models.Order, error) {
	return s.Repo.ListOrders(ctx, userID, limit, offset)
}

// Get returns the order when it belongs to userID, or to anyone for admins.
// Other users' orders are reported as not found.
func (s *OrderService) Get(ctx context.Context, id, userID uuid.UUID, isAdmin bool) (*models.Order, error) {
	o, err := s.Repo.OrderByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !isAdmin && o.UserID != userID {
		return nil, fmt.Errorf("%w: order %s", domain.ErrNotFound, id)
	}
	return o, nil
}

func (s *OrderService) ListAll(ctx context.Context, status string, offset, limit int) (int64, []models.Order, error) {
	st := domain.OrderStatus(strings.ToLower(strings.TrimSpace(status)))
	if st != "" && !st.Valid() {
		return 0, nil, fmt.Errorf("%w: unknown status %q", domain.ErrValidation, status)
	}
	return s.Repo.ListAllOrders(ctx, st, limit, offset)
}

// UpdateFulfillment lets an administrator move an order through its
// statuses and attach shipping metadata. Lines and total never change.
func (s *OrderService) UpdateFulfillment(ctx context.Context, id uuid.UUID, patch FulfillmentPatch) (*models.Order, error) {
	fields := map[string]any{}
	if patch.Status != nil {
		if !patch.Status.Valid() {
			return nil, fmt.Errorf("%w: unknown status %q", domain.ErrValidation, *patch.Status)
		}
		fields["status"] = *patch.Status
	}
	if patch.Carrier != nil {
		fields["carrier"] = strings.TrimSpace(*patch.Carrier)
	}
	if patch.TrackingNumber != nil {
		fields["tracking_number"] = strings.TrimSpace(*patch.TrackingNumber)
	}
	if len(fields) == 0 {
		return nil, fmt.Errorf("%w: nothing to update", domain.ErrValidation)
	}

	var o *models.Order
	err := s.Repo.Transaction(ctx, func(tx *repo.GormRepo) error {
		var err error
		if o, err = tx.OrderByID(ctx, id); err != nil {
			return err
		}
		if err := tx.UpdateOrderFulfillment(ctx, o, fields); err != nil {
			return err
		}
		o, err = tx.OrderByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}

	publish(ctx, s.Events, mykafka.TopicOrderEvents, o.ID.String(), mykafka.EventOrderStatusChanged, OrderStatusEvent{
		OrderID:        o.ID,
		UserID:         o.UserID,
		Status:         o.Status,
		Carrier:        o.Carrier,
		TrackingNumber: o.TrackingNumber,
	})
	return o, nil
}
