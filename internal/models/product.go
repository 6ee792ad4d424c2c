package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Product struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey"                      json:"id"`
	Name          string          `gorm:"not null"                                  json:"name"`
	Description   string          `gorm:"not null;default:''"                       json:"description"`
	Stock         int             `gorm:"not null;default:0;check:stock >= 0"       json:"stock"`
	PurchasePrice decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0"     json:"purchase_price"`
	SalePrice     decimal.Decimal `gorm:"type:numeric(12,2);not null"               json:"sale_price"`
	ImageURL      string          `gorm:"not null;default:''"                       json:"image_url"`
	CategoryID    *uuid.UUID      `gorm:"type:uuid;index"                           json:"category_id,omitempty"`
	Archived      bool            `gorm:"not null;default:false;index"              json:"archived"`
	CreatedAt     time.Time       `                                                 json:"created_at"`
	UpdatedAt     time.Time       `                                                 json:"updated_at"`
}

func (p *Product) BeforeCreate(tx *gorm.DB) error {
	ensureID(&p.ID)
	return nil
}

func (Product) TableName() string {
	return "products"
}
