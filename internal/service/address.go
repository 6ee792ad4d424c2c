package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/Skotchmaster/storefront/internal/domain"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
)

type AddressService struct {
	Repo *repo.GormRepo
}

func (s *AddressService) Get(ctx context.Context, userID uuid.UUID) (*models.Address, error) {
	return s.Repo.GetAddress(ctx, userID)
}

func (s *AddressService) Put(ctx context.Context, userID uuid.UUID, in models.AddressSnapshot) (*models.Address, error) {
	in = trimAddress(in)
	if !in.Complete() {
		return nil, fmt.Errorf("%w: street, city and postal_code are required", domain.ErrValidation)
	}

	a := &models.Address{
		UserID:       userID,
		Street:       in.Street,
		Number:       in.Number,
		Neighborhood: in.Neighborhood,
		City:         in.City,
		State:        in.State,
		PostalCode:   in.PostalCode,
		Phone:        in.Phone,
	}
	if err := s.Repo.UpsertAddress(ctx, a); err != nil {
		return nil, err
	}
	return s.Repo.GetAddress(ctx, userID)
}

func trimAddress(a models.AddressSnapshot) models.AddressSnapshot {
	return models.AddressSnapshot{
		Street:       strings.TrimSpace(a.Street),
		Number:       strings.TrimSpace(a.Number),
		Neighborhood: strings.TrimSpace(a.Neighborhood),
		City:         strings.TrimSpace(a.City),
		State:        strings.TrimSpace(a.State),
		PostalCode:   strings.TrimSpace(a.PostalCode),
		Phone:        strings.TrimSpace(a.Phone),
	}
}
