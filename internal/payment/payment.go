// Package payment talks to the hosted checkout provider.
package payment

import "errors"

const (
	StatusPaid              = "paid"
	StatusUnpaid            = "unpaid"
	StatusNoPaymentRequired = "no_payment_required"
)

var ErrSessionNotFound = errors.New("payment session not found")

type LineItem struct {
	Name string
	// UnitAmount is in the currency's minor unit.
	UnitAmount int64
	Quantity   int64
}

type SessionRequest struct {
	LineItems         []LineItem
	CustomerEmail     string
	ClientReferenceID string
}

type Session struct {
	ID            string `json:"id"`
	URL           string `json:"url"`
	PaymentStatus string `json:"payment_status"`
	CustomerEmail string `json:"customer_email"`
	// AmountTotal is in the currency's minor unit.
	AmountTotal int64  `json:"amount_total"`
	Currency    string `json:"currency"`
	// ClientReferenceID carries the id of the user who opened the session.
	ClientReferenceID string `json:"client_reference_id"`
}

func (s *Session) Paid() bool {
	return s != nil && s.PaymentStatus == StatusPaid
}
