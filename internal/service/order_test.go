package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/storefront/internal/domain"
	"github.com/Skotchmaster/storefront/internal/mykafka"
)

func TestOrders_OwnershipAndFulfillment(t *testing.T) {
	fx := newFinalizerFixture(t)
	ctx := context.Background()
	fx.paid("sess1", "")
	res, err := fx.f.Finalize(ctx, FinalizeRequest{SessionID: "sess1", UserID: fx.user.ID, Address: shipTo})
	require.NoError(t, err)
	fx.f.Drain()

	pub := &fakePublisher{}
	svc := &OrderService{Repo: fx.f.Repo, Events: pub}

	total, orders, err := svc.ListForUser(ctx, fx.user.ID, 0, 10)
	require.NoError(t, err)
	require.Equal(t, int64(1), total)
	require.Equal(t, res.Order.ID, orders[0].ID)

	_, err = svc.Get(ctx, res.Order.ID, uuid.New(), false)
	require.ErrorIs(t, err, domain.ErrNotFound)
	got, err := svc.Get(ctx, res.Order.ID, uuid.New(), true)
	require.NoError(t, err)
	require.Equal(t, res.Order.ID, got.ID)

	bogus := domain.OrderStatus("lost")
	_, err = svc.UpdateFulfillment(ctx, res.Order.ID, FulfillmentPatch{Status: &bogus})
	require.ErrorIs(t, err, domain.ErrValidation)
	_, err = svc.UpdateFulfillment(ctx, res.Order.ID, FulfillmentPatch{})
	require.ErrorIs(t, err, domain.ErrValidation)

	shipped := domain.OrderStatusShipped
	carrier, tracking := "UPS", "1Z999"
	updated, err := svc.UpdateFulfillment(ctx, res.Order.ID, FulfillmentPatch{
		Status: &shipped, Carrier: &carrier, TrackingNumber: &tracking,
	})
	require.NoError(t, err)
	require.Equal(t, domain.OrderStatusShipped, updated.Status)
	require.Equal(t, "1Z999", updated.TrackingNumber)
	require.True(t, res.Order.Total.Equal(updated.Total))
	require.Equal(t, []string{mykafka.EventOrderStatusChanged}, pub.types())

	n, list, err := svc.ListAll(ctx, "SHIPPED", 0, 10)
	require.NoError(t, err)
	require.Equal(t, int64(1), n)
	require.Len(t, list, 1)

	_, _, err = svc.ListAll(ctx, "lost", 0, 10)
	require.ErrorIs(t, err, domain.ErrValidation)
}
