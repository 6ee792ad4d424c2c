package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Address struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"          json:"id"`
	UserID       uuid.UUID `gorm:"type:uuid;uniqueIndex;not null" json:"user_id"`
	Street       string    `gorm:"not null"                      json:"street"`
	Number       string    `gorm:"not null;default:''"           json:"number"`
	Neighborhood string    `gorm:"not null;default:''"           json:"neighborhood"`
	City         string    `gorm:"not null"                      json:"city"`
	State        string    `gorm:"not null;default:''"           json:"state"`
	PostalCode   string    `gorm:"not null"                      json:"postal_code"`
	Phone        string    `gorm:"not null;default:''"           json:"phone"`
	CreatedAt    time.Time `                                     json:"created_at"`
	UpdatedAt    time.Time `                                     json:"updated_at"`
}

func (a *Address) BeforeCreate(tx *gorm.DB) error {
	ensureID(&a.ID)
	return nil
}

// AddressSnapshot is the copy of an address stored on an order.
type AddressSnapshot struct {
	Street       string `json:"street"`
	Number       string `json:"number"`
	Neighborhood string `json:"neighborhood"`
	City         string `json:"city"`
	State        string `json:"state"`
	PostalCode   string `json:"postal_code"`
	Phone        string `json:"phone"`
}

func (a Address) Snapshot() AddressSnapshot {
	return AddressSnapshot{
		Street:       a.Street,
		Number:       a.Number,
		Neighborhood: a.Neighborhood,
		City:         a.City,
		State:        a.State,
		PostalCode:   a.PostalCode,
		Phone:        a.Phone,
	}
}

func (s AddressSnapshot) Complete() bool {
	return s.Street != "" && s.City != "" && s.PostalCode != ""
}
