package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Skotchmaster/storefront/internal/domain"
	"github.com/Skotchmaster/storefront/internal/metrics"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/mykafka"
	"github.com/Skotchmaster/storefront/internal/payment"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

const sideEffectTimeout = 30 * time.Second

type PaymentGateway interface {
	CreateSession(ctx context.Context, req payment.SessionRequest) (*payment.Session, error)
	RetrieveSession(ctx context.Context, sessionID string) (*payment.Session, error)
}

// IdempotencyCache maps a payment session to the order it produced.
type IdempotencyCache interface {
	Get(ctx context.Context, sessionID string) (uuid.UUID, bool, error)
	Set(ctx context.Context, sessionID string, orderID uuid.UUID) error
}

// OrderNotifier is told about every newly created order after commit.
type OrderNotifier interface {
	OrderFinalized(ctx context.Context, o *models.Order) error
}

type RequestedLine struct {
	ProductID uuid.UUID
	Quantity  int
}

type FinalizeRequest struct {
	SessionID string
	UserID    uuid.UUID
	// Items is what the client believes it paid for. When set it must
	// match the server-side cart.
	Items   []RequestedLine
	Address *models.AddressSnapshot
	Email   string
}

type FinalizeResult struct {
	Order *models.Order
	// Created is false when the session had already been finalized.
	Created bool
}

// Finalizer turns one paid payment session into exactly one order.
type Finalizer struct {
	Repo     *repo.GormRepo
	Cart     *CartService
	Gateway  PaymentGateway
	Cache    IdempotencyCache
	Notifier OrderNotifier
	Events   EventPublisher
	Metrics  *metrics.Metrics

	wg sync.WaitGroup
}

func (f *Finalizer) Finalize(ctx context.Context, req FinalizeRequest) (*FinalizeResult, error) {
	l := logging.FromContext(ctx).With("svc", "order.finalize", "session_id", req.SessionID)

	req.SessionID = strings.TrimSpace(req.SessionID)
	if req.SessionID == "" {
		return nil, fmt.Errorf("%w: session_id is required", domain.ErrValidation)
	}
	if req.UserID == uuid.Nil {
		return nil, fmt.Errorf("%w: user id is required", domain.ErrValidation)
	}

	if order, ok := f.cached(ctx, req); ok {
		f.Metrics.Finalization(metrics.OutcomeReplayed)
		return &FinalizeResult{Order: order}, nil
	}

	existing, err := f.Repo.OrderBySession(ctx, req.SessionID)
	if err == nil {
		return f.replay(ctx, req, existing)
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, f.failed(err)
	}

	// No row lock may be held across the gateway call.
	sess, err := f.confirmedSession(ctx, req)
	if err != nil {
		return nil, f.failed(err)
	}

	var (
		order    *models.Order
		created  bool
		lostRace bool
	)
	err = f.Repo.Transaction(ctx, func(tx *repo.GormRepo) error {
		cart, err := tx.CartLinesForUpdate(ctx, req.UserID)
		if err != nil {
			return err
		}

		// A concurrent finalize of the same session may have committed
		// while this one waited for the cart lock.
		existing, err := tx.OrderBySession(ctx, req.SessionID)
		if err == nil {
			order = existing
			return nil
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return err
		}

		user, err := tx.GetUser(ctx, req.UserID)
		if err != nil {
			return err
		}

		lines, err := snapshotLines(cart, req.Items)
		if err != nil {
			return err
		}
		if paid, due := sess.AmountTotal, amountDue(cart); paid != due {
			return fmt.Errorf("%w: session %s paid %d, cart totals %d", domain.ErrConflict, req.SessionID, paid, due)
		}

		addr, err := resolveAddress(ctx, tx, req)
		if err != nil {
			return err
		}

		order = &models.Order{
			UserID:           req.UserID,
			PaymentSessionID: req.SessionID,
			Lines:            lines,
			Total:            models.SumLines(lines),
			ShippingAddress:  addr,
			CustomerEmail:    firstNonEmpty(req.Email, sess.CustomerEmail, user.Email),
			Status:           domain.OrderStatusPending,
		}
		if err := tx.CreateOrder(ctx, order); err != nil {
			lostRace = errors.Is(err, domain.ErrConflict)
			return err
		}
		if _, err := f.Cart.ClearForOrder(ctx, tx, req.UserID); err != nil {
			return err
		}
		created = true
		return nil
	})

	if lostRace {
		winner, rerr := f.Repo.OrderBySession(ctx, req.SessionID)
		if rerr != nil {
			return nil, f.failed(rerr)
		}
		return f.replay(ctx, req, winner)
	}
	if err != nil {
		return nil, f.failed(err)
	}
	if !created {
		return f.replay(ctx, req, order)
	}

	f.Metrics.Finalization(metrics.OutcomeCreated)
	l.Info("order_created", "order_id", order.ID, "total", order.Total.StringFixed(2))
	f.afterCommit(ctx, order)
	return &FinalizeResult{Order: order, Created: true}, nil
}

// confirmedSession fetches the payment session and checks that it is paid
// and was opened by the requesting user.
func (f *Finalizer) confirmedSession(ctx context.Context, req FinalizeRequest) (*payment.Session, error) {
	sess, err := f.Gateway.RetrieveSession(ctx, req.SessionID)
	if errors.Is(err, payment.ErrSessionNotFound) {
		return nil, fmt.Errorf("%w: payment session %s", domain.ErrNotFound, req.SessionID)
	}
	if err != nil {
		return nil, fmt.Errorf("retrieve payment session: %w", err)
	}
	if !sess.Paid() {
		return nil, &domain.PaymentNotConfirmedError{SessionID: req.SessionID, Status: sess.PaymentStatus}
	}
	if sess.ClientReferenceID != req.UserID.String() {
		return nil, fmt.Errorf("%w: session %s belongs to another user", domain.ErrConflict, req.SessionID)
	}
	return sess, nil
}

func (f *Finalizer) replay(ctx context.Context, req FinalizeRequest, order *models.Order) (*FinalizeResult, error) {
	if order.UserID != req.UserID {
		return nil, f.failed(fmt.Errorf("%w: session %s belongs to another user", domain.ErrConflict, req.SessionID))
	}
	f.Metrics.Finalization(metrics.OutcomeReplayed)
	f.remember(ctx, order)
	return &FinalizeResult{Order: order}, nil
}

func (f *Finalizer) failed(err error) error {
	if errors.Is(err, domain.ErrPaymentNotConfirmed) {
		f.Metrics.Finalization(metrics.OutcomeUnpaid)
	} else {
		f.Metrics.Finalization(metrics.OutcomeError)
	}
	return err
}

// Drain blocks until all post-commit side effects have finished.
func (f *Finalizer) Drain() {
	f.wg.Wait()
}

func (f *Finalizer) cached(ctx context.Context, req FinalizeRequest) (*models.Order, bool) {
	if f.Cache == nil {
		return nil, false
	}
	l := logging.FromContext(ctx)

	orderID, ok, err := f.Cache.Get(ctx, req.SessionID)
	if err != nil {
		l.Warn("idempotency_cache_get_failed", "session_id", req.SessionID, "error", err)
		return nil, false
	}
	if !ok {
		return nil, false
	}
	order, err := f.Repo.OrderByID(ctx, orderID)
	if err != nil || order.UserID != req.UserID || order.PaymentSessionID != req.SessionID {
		return nil, false
	}
	return order, true
}

func (f *Finalizer) remember(ctx context.Context, order *models.Order) {
	if f.Cache == nil {
		return
	}
	if err := f.Cache.Set(ctx, order.PaymentSessionID, order.ID); err != nil {
		logging.FromContext(ctx).Warn("idempotency_cache_set_failed", "session_id", order.PaymentSessionID, "error", err)
	}
}

// afterCommit runs the best-effort side effects of a new order in the
// background. Their failures are logged and never reach the caller.
func (f *Finalizer) afterCommit(ctx context.Context, order *models.Order) {
	snapshot := *order
	bg := context.WithoutCancel(ctx)

	f.wg.Add(1)
	go func() {
		defer f.wg.Done()
		ctx, cancel := context.WithTimeout(bg, sideEffectTimeout)
		defer cancel()
		l := logging.FromContext(ctx).With("order_id", snapshot.ID)

		f.remember(ctx, &snapshot)
		publish(ctx, f.Events, mykafka.TopicOrderEvents, snapshot.ID.String(), mykafka.EventOrderFinalized, snapshot)
		if f.Notifier != nil {
			if err := f.Notifier.OrderFinalized(ctx, &snapshot); err != nil {
				l.Error("order_notify_failed", "error", err)
			}
		}
	}()
}

// snapshotLines copies the cart into order lines. Client lines, when given,
// must name exactly the products and quantities in the cart.
func snapshotLines(cart []models.CartLine, requested []RequestedLine) ([]models.OrderLine, error) {
	if len(cart) == 0 {
		return nil, fmt.Errorf("%w: cart is empty", domain.ErrValidation)
	}

	if len(requested) > 0 {
		want := make(map[uuid.UUID]int, len(requested))
		for _, r := range requested {
			if r.Quantity <= 0 {
				return nil, fmt.Errorf("%w: item quantity must be greater than zero", domain.ErrValidation)
			}
			want[r.ProductID] += r.Quantity
		}
		if len(want) != len(cart) {
			return nil, fmt.Errorf("%w: items do not match cart", domain.ErrValidation)
		}
		for _, c := range cart {
			if want[c.ProductID] != c.Quantity {
				return nil, fmt.Errorf("%w: items do not match cart", domain.ErrValidation)
			}
		}
	}

	lines := make([]models.OrderLine, 0, len(cart))
	for _, c := range cart {
		lines = append(lines, models.OrderLine{
			ProductID: c.ProductID,
			Name:      c.Name,
			Quantity:  c.Quantity,
			UnitPrice: c.SalePrice,
		})
	}
	return lines, nil
}

// amountDue is the cart total in minor units, priced the same way as the
// checkout session's line items.
func amountDue(cart []models.CartLine) int64 {
	var total int64
	for _, li := range LineItems(cart) {
		total += li.UnitAmount * li.Quantity
	}
	return total
}

func resolveAddress(ctx context.Context, tx *repo.GormRepo, req FinalizeRequest) (models.AddressSnapshot, error) {
	if req.Address != nil {
		if !req.Address.Complete() {
			return models.AddressSnapshot{}, fmt.Errorf("%w: street, city and postal_code are required", domain.ErrValidation)
		}
		return *req.Address, nil
	}

	stored, err := tx.GetAddress(ctx, req.UserID)
	if errors.Is(err, domain.ErrNotFound) {
		return models.AddressSnapshot{}, fmt.Errorf("%w: shipping address is required", domain.ErrValidation)
	}
	if err != nil {
		return models.AddressSnapshot{}, err
	}
	return stored.Snapshot(), nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
