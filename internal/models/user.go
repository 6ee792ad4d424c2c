package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

const (
	TokenPurposeVerifyEmail   = "verify_email"
	TokenPurposeResetPassword = "reset_password"
)

type User struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey"     json:"id"`
	Email         string    `gorm:"uniqueIndex;not null"     json:"email"`
	DisplayName   string    `gorm:"not null;default:''"      json:"display_name"`
	PasswordHash  string    `gorm:"not null"                 json:"-"`
	EmailVerified bool      `gorm:"not null;default:false"   json:"email_verified"`
	Role          string    `gorm:"not null;default:'user'"  json:"role"`
	CreatedAt     time.Time `                                json:"created_at"`
	UpdatedAt     time.Time `                                json:"updated_at"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	ensureID(&u.ID)
	return nil
}

type RefreshToken struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"  json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;index;not null" json:"user_id"`
	JTI       string    `gorm:"uniqueIndex;not null"  json:"jti"`
	TokenHash string    `gorm:"uniqueIndex;not null"  json:"-"`
	ExpiresAt time.Time `gorm:"not null"              json:"expires_at"`
	Revoked   bool      `gorm:"not null;default:false" json:"revoked"`
	CreatedAt time.Time `                             json:"created_at"`
}

func (t *RefreshToken) BeforeCreate(tx *gorm.DB) error {
	ensureID(&t.ID)
	return nil
}

// UserToken is a one-time token mailed to a user to verify an email address
// or reset a password. Only its hash is stored.
type UserToken struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey"     json:"id"`
	UserID    uuid.UUID  `gorm:"type:uuid;index;not null" json:"user_id"`
	Purpose   string     `gorm:"not null"                 json:"purpose"`
	TokenHash string     `gorm:"uniqueIndex;not null"     json:"-"`
	ExpiresAt time.Time  `gorm:"not null"                 json:"expires_at"`
	UsedAt    *time.Time `                                json:"used_at,omitempty"`
	CreatedAt time.Time  `                                json:"created_at"`
}

func (t *UserToken) BeforeCreate(tx *gorm.DB) error {
	ensureID(&t.ID)
	return nil
}
