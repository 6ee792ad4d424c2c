package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CartItem is one reserved (user, product) pair. A row never holds quantity 0.
type CartItem struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"                           json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_user_product;not null" json:"user_id"`
	ProductID uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_user_product;not null" json:"product_id"`
	Quantity  int       `gorm:"not null;check:quantity > 0"                    json:"quantity"`
	CreatedAt time.Time `                                                      json:"created_at"`
	UpdatedAt time.Time `                                                      json:"updated_at"`
}

func (c *CartItem) BeforeCreate(tx *gorm.DB) error {
	ensureID(&c.ID)
	return nil
}

func (CartItem) TableName() string {
	return "cart_items"
}

// CartLine is a cart row joined with the product fields shown to the customer.
type CartLine struct {
	ProductID uuid.UUID       `json:"product_id"`
	Quantity  int             `json:"quantity"`
	Name      string          `json:"name"`
	ImageURL  string          `json:"image_url"`
	SalePrice decimal.Decimal `json:"sale_price"`
	CreatedAt time.Time       `json:"created_at"`
}

func (l CartLine) LineTotal() decimal.Decimal {
	return l.SalePrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}
