package models

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/domain"
)

var ErrOrderImmutable = errors.New("order lines and total are immutable")

// OrderLine is the product snapshot captured at finalization.
type OrderLine struct {
	ProductID uuid.UUID       `json:"product_id"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

func (l OrderLine) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

type Order struct {
	ID               uuid.UUID          `gorm:"type:uuid;primaryKey"                         json:"id"`
	UserID           uuid.UUID          `gorm:"type:uuid;index;not null"                     json:"user_id"`
	PaymentSessionID string             `gorm:"uniqueIndex;not null"                         json:"payment_session_id"`
	Lines            []OrderLine        `gorm:"type:jsonb;serializer:json;not null"          json:"lines"`
	Total            decimal.Decimal    `gorm:"type:numeric(12,2);not null"                  json:"total"`
	ShippingAddress  AddressSnapshot    `gorm:"type:jsonb;serializer:json"                   json:"shipping_address"`
	CustomerEmail    string             `gorm:"not null;default:''"                          json:"customer_email"`
	Carrier          string             `gorm:"not null;default:''"                          json:"carrier"`
	TrackingNumber   string             `gorm:"not null;default:''"                          json:"tracking_number"`
	Status           domain.OrderStatus `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	CreatedAt        time.Time          `gorm:"index"                                        json:"created_at"`
	UpdatedAt        time.Time          `json:"updated_at"`
}

func (o *Order) BeforeCreate(tx *gorm.DB) error {
	ensureID(&o.ID)
	if o.Status == "" {
		o.Status = domain.OrderStatusPending
	}
	return nil
}

func (o *Order) BeforeUpdate(tx *gorm.DB) error {
	if tx.Statement.Changed("Lines", "Total", "PaymentSessionID", "UserID") {
		return ErrOrderImmutable
	}
	return nil
}

func (Order) TableName() string {
	return "orders"
}

// SumLines returns the total of all line subtotals.
func SumLines(lines []OrderLine) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.Subtotal())
	}
	return total
}
