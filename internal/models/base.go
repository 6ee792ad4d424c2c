package models

import (
	"github.com/google/uuid"
)

func ensureID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}

// All lists every model for AutoMigrate.
func All() []any {
	return []any{
		&User{},
		&RefreshToken{},
		&UserToken{},
		&Address{},
		&Product{},
		&CartItem{},
		&Order{},
	}
}
