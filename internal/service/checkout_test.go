package service

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/storefront/internal/domain"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/testutil"
)

func TestLineItems_MinorUnits(t *testing.T) {
	items := LineItems([]models.CartLine{
		{Name: "mug", Quantity: 2, SalePrice: decimal.RequireFromString("19.99")},
		{Name: "pin", Quantity: 1, SalePrice: decimal.RequireFromString("0.015")},
	})
	require.Equal(t, int64(1999), items[0].UnitAmount)
	require.Equal(t, int64(2), items[0].Quantity)
	require.Equal(t, int64(2), items[1].UnitAmount)
}

func TestCheckout_CreateSession(t *testing.T) {
	db := testutil.NewDB(t)
	r := repo.New(db)
	gw := newFakeGateway()
	svc := &CheckoutService{Repo: r, Gateway: gw}
	ctx := context.Background()
	u := testutil.SeedUser(t, db, "buyer@example.com")

	_, err := svc.CreateSession(ctx, u.ID, "")
	require.ErrorIs(t, err, domain.ErrValidation)

	p := testutil.SeedProduct(t, db, "mug", 5, "12.50")
	_, err = (&CartService{Repo: r}).Add(ctx, u.ID, p.ID, 2)
	require.NoError(t, err)

	s, err := svc.CreateSession(ctx, u.ID, "")
	require.NoError(t, err)
	require.NotEmpty(t, s.ID)
	require.Len(t, gw.created, 1)
	require.Equal(t, "buyer@example.com", gw.created[0].CustomerEmail)
	require.Equal(t, u.ID.String(), gw.created[0].ClientReferenceID)
	require.Equal(t, int64(1250), gw.created[0].LineItems[0].UnitAmount)
}
