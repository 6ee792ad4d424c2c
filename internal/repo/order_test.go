package repo

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/storefront/internal/domain"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/testutil"
)

func newOrder(userID uuid.UUID, session string) *models.Order {
	lines := []models.OrderLine{
		{ProductID: uuid.New(), Name: "mug", Quantity: 2, UnitPrice: decimal.RequireFromString("12.50")},
	}
	return &models.Order{
		UserID:           userID,
		PaymentSessionID: session,
		Lines:            lines,
		Total:            models.SumLines(lines),
		CustomerEmail:    "a@b.c",
	}
}

func TestCreateOrder_PersistsSnapshot(t *testing.T) {
	db := testutil.NewDB(t)
	r := New(db)
	ctx := context.Background()

	o := newOrder(uuid.New(), "cs_1")
	require.NoError(t, r.CreateOrder(ctx, o))

	got, err := r.OrderBySession(ctx, "cs_1")
	require.NoError(t, err)
	require.Equal(t, o.ID, got.ID)
	require.Equal(t, domain.OrderStatusPending, got.Status)
	require.Len(t, got.Lines, 1)
	require.Equal(t, "mug", got.Lines[0].Name)
	require.True(t, decimal.RequireFromString("25").Equal(got.Total))

	_, err = r.OrderBySession(ctx, "cs_missing")
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestOrderTotalIsImmutable(t *testing.T) {
	db := testutil.NewDB(t)
	r := New(db)
	ctx := context.Background()

	o := newOrder(uuid.New(), "cs_2")
	require.NoError(t, r.CreateOrder(ctx, o))

	err := db.Model(o).Updates(map[string]any{"total": decimal.NewFromInt(1)}).Error
	require.ErrorIs(t, err, models.ErrOrderImmutable)

	require.NoError(t, r.UpdateOrderFulfillment(ctx, o, map[string]any{
		"status":          domain.OrderStatusShipped,
		"carrier":         "DHL",
		"tracking_number": "TRK1",
	}))

	got, err := r.OrderByID(ctx, o.ID)
	require.NoError(t, err)
	require.Equal(t, domain.OrderStatusShipped, got.Status)
	require.Equal(t, "DHL", got.Carrier)
	require.True(t, decimal.RequireFromString("25").Equal(got.Total))
}

func TestListOrders_NewestFirst(t *testing.T) {
	db := testutil.NewDB(t)
	r := New(db)
	ctx := context.Background()
	userID := uuid.New()

	older := newOrder(userID, "cs_old")
	older.CreatedAt = time.Now().Add(-time.Hour).UTC()
	require.NoError(t, r.CreateOrder(ctx, older))

	newer := newOrder(userID, "cs_new")
	require.NoError(t, r.CreateOrder(ctx, newer))

	require.NoError(t, r.CreateOrder(ctx, newOrder(uuid.New(), "cs_other")))

	total, orders, err := r.ListOrders(ctx, userID, 10, 0)
	require.NoError(t, err)
	require.EqualValues(t, 2, total)
	require.Len(t, orders, 2)
	require.Equal(t, "cs_new", orders[0].PaymentSessionID)
	require.Equal(t, "cs_old", orders[1].PaymentSessionID)

	total, all, err := r.ListAllOrders(ctx, domain.OrderStatusPending, 10, 0)
	require.NoError(t, err)
	require.EqualValues(t, 3, total)
	require.Len(t, all, 3)
}
