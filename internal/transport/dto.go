package transport

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/util"
)

type RegisterRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	IsAdmin bool `json:"is_admin"`
}

type EmailRequest struct {
	Email string `json:"email"`
}

type ResetPasswordRequest struct {
	Email       string `json:"email"`
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

type ProfileRequest struct {
	DisplayName     *string `json:"display_name"`
	Email           *string `json:"email"`
	CurrentPassword string  `json:"current_password"`
	NewPassword     string  `json:"new_password"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type AddToCartRequest struct {
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int       `json:"quantity"`
}

type SetQuantityRequest struct {
	Quantity *int `json:"quantity"`
}

type CartResponse struct {
	Items []models.CartLine `json:"items"`
	Total decimal.Decimal   `json:"total"`
}

func NewCartResponse(lines []models.CartLine) CartResponse {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.LineTotal())
	}
	return CartResponse{Items: lines, Total: total}
}

type AddressRequest struct {
	Street       string `json:"street"`
	Number       string `json:"number"`
	Neighborhood string `json:"neighborhood"`
	City         string `json:"city"`
	State        string `json:"state"`
	PostalCode   string `json:"postal_code"`
	Phone        string `json:"phone"`
}

func (a AddressRequest) Snapshot() models.AddressSnapshot {
	return models.AddressSnapshot(a)
}

type CheckoutSessionRequest struct {
	Email string `json:"email"`
}

type CheckoutSessionResponse struct {
	SessionID string `json:"session_id"`
	URL       string `json:"url"`
}

type FinalizeItem struct {
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int       `json:"quantity"`
}

type FinalizeRequest struct {
	SessionID string          `json:"session_id"`
	Items     []FinalizeItem  `json:"items"`
	Address   *AddressRequest `json:"address"`
	Email     string          `json:"email"`
}

type FinalizeResponse struct {
	Order   *models.Order `json:"order"`
	Created bool          `json:"created"`
}

type CreateProductRequest struct {
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	Stock         int             `json:"stock"`
	PurchasePrice decimal.Decimal `json:"purchase_price"`
	SalePrice     decimal.Decimal `json:"sale_price"`
	ImageURL      string          `json:"image_url"`
	CategoryID    *uuid.UUID      `json:"category_id"`
}

type PatchProductRequest struct {
	Name          *string          `json:"name"`
	Description   *string          `json:"description"`
	Stock         *int             `json:"stock"`
	PurchasePrice *decimal.Decimal `json:"purchase_price"`
	SalePrice     *decimal.Decimal `json:"sale_price"`
	ImageURL      *string          `json:"image_url"`
	CategoryID    *uuid.UUID       `json:"category_id"`
}

type PatchOrderRequest struct {
	Status         *string `json:"status"`
	Carrier        *string `json:"carrier"`
	TrackingNumber *string `json:"tracking_number"`
}

type Page[T any] struct {
	Data []T       `json:"data"`
	Meta util.Meta `json:"meta"`
}
