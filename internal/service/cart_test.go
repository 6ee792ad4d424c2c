package service

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/domain"
	"github.com/Skotchmaster/storefront/internal/metrics"
	"github.com/Skotchmaster/storefront/internal/mykafka"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/testutil"
)

func newCartService(t *testing.T) (*CartService, *gorm.DB, *fakePublisher) {
	t.Helper()
	db := testutil.NewDB(t)
	pub := &fakePublisher{}
	return &CartService{Repo: repo.New(db), Events: pub}, db, pub
}

func TestCart_AddUntilSoldOut(t *testing.T) {
	svc, db, _ := newCartService(t)
	ctx := context.Background()
	u := testutil.SeedUser(t, db, "a@example.com")
	p := testutil.SeedProduct(t, db, "lamp", 5, "20.00")

	item, err := svc.Add(ctx, u.ID, p.ID, 5)
	require.NoError(t, err)
	require.Equal(t, 5, item.Quantity)
	require.Equal(t, 0, testutil.Stock(t, db, p.ID))

	_, err = svc.Add(ctx, u.ID, p.ID, 1)
	require.ErrorIs(t, err, domain.ErrInsufficientStock)
	available, ok := domain.AvailableStock(err)
	require.True(t, ok)
	require.Equal(t, 0, available)

	lines, err := svc.Get(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	require.Equal(t, 5, lines[0].Quantity)
}

func TestCart_SetQuantityReservesAndReleasesDelta(t *testing.T) {
	svc, db, pub := newCartService(t)
	ctx := context.Background()
	u := testutil.SeedUser(t, db, "a@example.com")
	p := testutil.SeedProduct(t, db, "lamp", 10, "20.00")

	_, err := svc.Add(ctx, u.ID, p.ID, 4)
	require.NoError(t, err)
	require.Equal(t, 6, testutil.Stock(t, db, p.ID))

	item, err := svc.SetQuantity(ctx, u.ID, p.ID, 2)
	require.NoError(t, err)
	require.Equal(t, 2, item.Quantity)
	require.Equal(t, 8, testutil.Stock(t, db, p.ID))

	item, err = svc.SetQuantity(ctx, u.ID, p.ID, 0)
	require.NoError(t, err)
	require.Nil(t, item)
	require.Equal(t, 10, testutil.Stock(t, db, p.ID))
	require.Equal(t, int64(0), testutil.CountCartRows(t, db, u.ID))

	require.Equal(t, []string{
		mykafka.EventCartItemAdded,
		mykafka.EventCartItemUpdated,
		mykafka.EventCartItemRemoved,
	}, pub.types())
}

func TestCart_SetQuantityIncreaseBeyondStock(t *testing.T) {
	svc, db, _ := newCartService(t)
	ctx := context.Background()
	u := testutil.SeedUser(t, db, "a@example.com")
	p := testutil.SeedProduct(t, db, "lamp", 3, "20.00")

	_, err := svc.Add(ctx, u.ID, p.ID, 2)
	require.NoError(t, err)

	_, err = svc.SetQuantity(ctx, u.ID, p.ID, 5)
	require.ErrorIs(t, err, domain.ErrInsufficientStock)
	available, _ := domain.AvailableStock(err)
	require.Equal(t, 1, available)

	require.Equal(t, 1, testutil.Stock(t, db, p.ID))
	lines, err := svc.Get(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, 2, lines[0].Quantity)

	item, err := svc.SetQuantity(ctx, u.ID, p.ID, 3)
	require.NoError(t, err)
	require.Equal(t, 3, item.Quantity)
	require.Equal(t, 0, testutil.Stock(t, db, p.ID))
}

func TestCart_SetQuantityRequiresCartRow(t *testing.T) {
	svc, db, _ := newCartService(t)
	u := testutil.SeedUser(t, db, "a@example.com")
	p := testutil.SeedProduct(t, db, "lamp", 3, "20.00")

	_, err := svc.SetQuantity(context.Background(), u.ID, p.ID, 1)
	require.ErrorIs(t, err, domain.ErrNotInCart)

	_, err = svc.SetQuantity(context.Background(), u.ID, uuid.New(), 1)
	require.ErrorIs(t, err, domain.ErrNotInCart)

	_, err = svc.SetQuantity(context.Background(), u.ID, p.ID, -1)
	require.ErrorIs(t, err, domain.ErrValidation)
	require.Equal(t, 3, testutil.Stock(t, db, p.ID))
}

func TestCart_AddThenRemoveRestoresStock(t *testing.T) {
	svc, db, _ := newCartService(t)
	ctx := context.Background()
	u := testutil.SeedUser(t, db, "a@example.com")
	p := testutil.SeedProduct(t, db, "lamp", 7, "20.00")

	_, err := svc.Add(ctx, u.ID, p.ID, 3)
	require.NoError(t, err)
	require.NoError(t, svc.Remove(ctx, u.ID, p.ID))

	require.Equal(t, 7, testutil.Stock(t, db, p.ID))
	require.Equal(t, int64(0), testutil.CountCartRows(t, db, u.ID))

	require.NoError(t, svc.Remove(ctx, u.ID, p.ID))
	require.NoError(t, svc.Remove(ctx, u.ID, uuid.New()))
	require.Equal(t, 7, testutil.Stock(t, db, p.ID))
}

func TestCart_AddBeyondStockChangesNothing(t *testing.T) {
	svc, db, pub := newCartService(t)
	ctx := context.Background()
	u := testutil.SeedUser(t, db, "a@example.com")
	p := testutil.SeedProduct(t, db, "lamp", 4, "20.00")

	_, err := svc.Add(ctx, u.ID, p.ID, 5)
	require.ErrorIs(t, err, domain.ErrInsufficientStock)
	available, ok := domain.AvailableStock(err)
	require.True(t, ok)
	require.Equal(t, 4, available)

	require.Equal(t, 4, testutil.Stock(t, db, p.ID))
	require.Equal(t, int64(0), testutil.CountCartRows(t, db, u.ID))
	require.Empty(t, pub.types())
}

func TestCart_AddAccumulatesOnExistingRow(t *testing.T) {
	svc, db, _ := newCartService(t)
	ctx := context.Background()
	u := testutil.SeedUser(t, db, "a@example.com")
	p := testutil.SeedProduct(t, db, "lamp", 10, "20.00")

	_, err := svc.Add(ctx, u.ID, p.ID, 2)
	require.NoError(t, err)
	item, err := svc.Add(ctx, u.ID, p.ID, 3)
	require.NoError(t, err)

	require.Equal(t, 5, item.Quantity)
	require.Equal(t, 5, testutil.Stock(t, db, p.ID))
	require.Equal(t, int64(1), testutil.CountCartRows(t, db, u.ID))
}

func TestCart_AddValidation(t *testing.T) {
	svc, db, _ := newCartService(t)
	ctx := context.Background()
	u := testutil.SeedUser(t, db, "a@example.com")
	p := testutil.SeedProduct(t, db, "lamp", 10, "20.00")

	_, err := svc.Add(ctx, u.ID, p.ID, 0)
	require.ErrorIs(t, err, domain.ErrValidation)
	_, err = svc.Add(ctx, u.ID, uuid.Nil, 1)
	require.ErrorIs(t, err, domain.ErrValidation)
	_, err = svc.Add(ctx, u.ID, uuid.New(), 1)
	require.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, db.Model(p).Update("archived", true).Error)
	_, err = svc.Add(ctx, u.ID, p.ID, 1)
	require.ErrorIs(t, err, domain.ErrNotFound)
	require.Equal(t, 10, testutil.Stock(t, db, p.ID))
}

func TestCart_ConcurrentAddsNeverOversell(t *testing.T) {
	svc, db, _ := newCartService(t)
	ctx := context.Background()
	p := testutil.SeedProduct(t, db, "lamp", 6, "20.00")

	users := make([]uuid.UUID, 8)
	for i := range users {
		users[i] = testutil.SeedUser(t, db, uuid.NewString()+"@example.com").ID
	}

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
	)
	for _, u := range users {
		wg.Add(1)
		go func(u uuid.UUID) {
			defer wg.Done()
			if _, err := svc.Add(ctx, u, p.ID, 2); err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}(u)
	}
	wg.Wait()

	require.Equal(t, 3, succeeded)
	require.Equal(t, 0, testutil.Stock(t, db, p.ID))
}

func TestCart_ReservationMetrics(t *testing.T) {
	svc, db, _ := newCartService(t)
	svc.Metrics = metrics.New(prometheus.NewRegistry())
	ctx := context.Background()
	u := testutil.SeedUser(t, db, "a@example.com")
	p := testutil.SeedProduct(t, db, "lamp", 1, "20.00")

	_, err := svc.Add(ctx, u.ID, p.ID, 1)
	require.NoError(t, err)
	_, err = svc.Add(ctx, u.ID, p.ID, 1)
	require.Error(t, err)

	require.Equal(t, 1.0, promtest.ToFloat64(svc.Metrics.ReservationCounter(metrics.OutcomeOK)))
	require.Equal(t, 1.0, promtest.ToFloat64(svc.Metrics.ReservationCounter(metrics.OutcomeInsufficient)))
}

func TestCart_PublishFailureDoesNotFailMutation(t *testing.T) {
	svc, db, pub := newCartService(t)
	pub.err = context.DeadlineExceeded
	u := testutil.SeedUser(t, db, "a@example.com")
	p := testutil.SeedProduct(t, db, "lamp", 2, "20.00")

	_, err := svc.Add(context.Background(), u.ID, p.ID, 2)
	require.NoError(t, err)
	require.Equal(t, 0, testutil.Stock(t, db, p.ID))
}
