package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/storefront/internal/domain"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/payment"
	"github.com/Skotchmaster/storefront/internal/repo"
)

var hundred = decimal.NewFromInt(100)

// CheckoutService opens a hosted payment session for the current cart.
type CheckoutService struct {
	Repo    *repo.GormRepo
	Gateway PaymentGateway
}

func (s *CheckoutService) CreateSession(ctx context.Context, userID uuid.UUID, email string) (*payment.Session, error) {
	user, err := s.Repo.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	lines, err := s.Repo.CartLines(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, fmt.Errorf("%w: cart is empty", domain.ErrValidation)
	}

	return s.Gateway.CreateSession(ctx, payment.SessionRequest{
		LineItems:         LineItems(lines),
		CustomerEmail:     firstNonEmpty(email, user.Email),
		ClientReferenceID: userID.String(),
	})
}

// LineItems converts cart lines to gateway line items priced in minor units.
func LineItems(lines []models.CartLine) []payment.LineItem {
	items := make([]payment.LineItem, 0, len(lines))
	for _, l := range lines {
		items = append(items, payment.LineItem{
			Name:       l.Name,
			UnitAmount: l.SalePrice.Mul(hundred).Round(0).IntPart(),
			Quantity:   int64(l.Quantity),
		})
	}
	return items
}
