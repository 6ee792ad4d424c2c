package payment

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/client"
)

type StripeConfig struct {
	SecretKey string
	// BaseURL overrides the API host, e.g. for stripe-mock.
	BaseURL    string
	SuccessURL string
	CancelURL  string
	Currency   string
}

// StripeGateway creates and retrieves Checkout Sessions through stripe-go.
// Failures are returned as is; nothing is retried.
type StripeGateway struct {
	cfg StripeConfig
	api *client.API
}

func NewStripeGateway(cfg StripeConfig, httpClient *http.Client) *StripeGateway {
	if cfg.Currency == "" {
		cfg.Currency = string(stripe.CurrencyUSD)
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}

	backendCfg := &stripe.BackendConfig{
		HTTPClient:        httpClient,
		MaxNetworkRetries: stripe.Int64(0),
		EnableTelemetry:   stripe.Bool(false),
		LeveledLogger:     &stripe.LeveledLogger{Level: stripe.LevelNull},
	}
	if cfg.BaseURL != "" {
		backendCfg.URL = stripe.String(cfg.BaseURL)
	}

	api := &client.API{}
	api.Init(cfg.SecretKey, &stripe.Backends{
		API: stripe.GetBackendWithConfig(stripe.APIBackend, backendCfg),
	})
	return &StripeGateway{cfg: cfg, api: api}
}

func (g *StripeGateway) CreateSession(ctx context.Context, req SessionRequest) (*Session, error) {
	if len(req.LineItems) == 0 {
		return nil, fmt.Errorf("stripe: no line items")
	}

	params := &stripe.CheckoutSessionParams{
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL: stripe.String(g.cfg.SuccessURL),
		CancelURL:  stripe.String(g.cfg.CancelURL),
	}
	params.Context = ctx
	if req.CustomerEmail != "" {
		params.CustomerEmail = stripe.String(req.CustomerEmail)
	}
	if req.ClientReferenceID != "" {
		params.ClientReferenceID = stripe.String(req.ClientReferenceID)
	}
	for _, li := range req.LineItems {
		params.LineItems = append(params.LineItems, &stripe.CheckoutSessionLineItemParams{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency: stripe.String(g.cfg.Currency),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(li.Name),
				},
				UnitAmount: stripe.Int64(li.UnitAmount),
			},
			Quantity: stripe.Int64(li.Quantity),
		})
	}

	cs, err := g.api.CheckoutSessions.New(params)
	if err != nil {
		return nil, wrapStripeError(err)
	}
	return fromCheckoutSession(cs), nil
}

func (g *StripeGateway) RetrieveSession(ctx context.Context, sessionID string) (*Session, error) {
	if sessionID == "" {
		return nil, ErrSessionNotFound
	}
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx

	cs, err := g.api.CheckoutSessions.Get(sessionID, params)
	if err != nil {
		return nil, wrapStripeError(err)
	}
	return fromCheckoutSession(cs), nil
}

func fromCheckoutSession(cs *stripe.CheckoutSession) *Session {
	s := &Session{
		ID:                cs.ID,
		URL:               cs.URL,
		PaymentStatus:     string(cs.PaymentStatus),
		CustomerEmail:     cs.CustomerEmail,
		AmountTotal:       cs.AmountTotal,
		Currency:          string(cs.Currency),
		ClientReferenceID: cs.ClientReferenceID,
	}
	if s.CustomerEmail == "" && cs.CustomerDetails != nil {
		s.CustomerEmail = cs.CustomerDetails.Email
	}
	return s
}

func wrapStripeError(err error) error {
	var se *stripe.Error
	if errors.As(err, &se) {
		if se.HTTPStatusCode == http.StatusNotFound || se.Code == stripe.ErrorCodeResourceMissing {
			return ErrSessionNotFound
		}
		return fmt.Errorf("stripe: %d %s: %s", se.HTTPStatusCode, se.Type, se.Msg)
	}
	return fmt.Errorf("stripe: %w", err)
}
