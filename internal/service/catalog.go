package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/storefront/internal/domain"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/mykafka"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

// ProductIndex is satisfied by *search.Index.
type ProductIndex interface {
	IndexProduct(ctx context.Context, p *models.Product) error
	Search(ctx context.Context, query string, from, size int) (int64, []uuid.UUID, error)
}

type CatalogService struct {
	Repo   *repo.GormRepo
	Index  ProductIndex
	Events EventPublisher
}

type ProductInput struct {
	Name          string
	Description   string
	Stock         int
	PurchasePrice decimal.Decimal
	SalePrice     decimal.Decimal
	ImageURL      string
	CategoryID    *uuid.UUID
}

type ProductPatch struct {
	Name          *string
	Description   *string
	Stock         *int
	PurchasePrice *decimal.Decimal
	SalePrice     *decimal.Decimal
	ImageURL      *string
	CategoryID    *uuid.UUID
}

// GetProduct hides archived products.
func (s *CatalogService) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	p, err := s.Repo.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.Archived {
		return nil, fmt.Errorf("%w: product %s", domain.ErrNotFound, id)
	}
	return p, nil
}

func (s *CatalogService) GetProducts(ctx context.Context, offset, limit int) (int64, []models.Product, error) {
	return s.Repo.GetProducts(ctx, false, offset, limit)
}

func (s *CatalogService) GetArchived(ctx context.Context, offset, limit int) (int64, []models.Product, error) {
	return s.Repo.GetProducts(ctx, true, offset, limit)
}

func (s *CatalogService) TopProducts(ctx context.Context, limit int) ([]models.Product, error) {
	if limit <= 0 || limit > 50 {
		limit = 8
	}
	return s.Repo.TopProducts(ctx, limit)
}

// Search asks the index when there is one and falls back to SQL otherwise
// or when the index is unavailable.
func (s *CatalogService) Search(ctx context.Context, q string, offset, limit int) (int64, []models.Product, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return 0, []models.Product{}, nil
	}

	if s.Index != nil {
		total, ids, err := s.Index.Search(ctx, q, offset, limit)
		if err == nil {
			items, err := s.Repo.ProductsByIDs(ctx, ids)
			return total, items, err
		}
		logging.FromContext(ctx).Warn("search_index_failed", "reason", "falling back to sql", "error", err)
	}
	return s.Repo.SearchProducts(ctx, q, offset, limit)
}

func (s *CatalogService) CreateProduct(ctx context.Context, in ProductInput) (*models.Product, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return nil, fmt.Errorf("%w: name is required", domain.ErrValidation)
	}
	if in.Stock < 0 {
		return nil, fmt.Errorf("%w: stock must not be negative", domain.ErrValidation)
	}
	if in.SalePrice.IsNegative() || in.PurchasePrice.IsNegative() {
		return nil, fmt.Errorf("%w: price must not be negative", domain.ErrValidation)
	}

	p := &models.Product{
		Name:          in.Name,
		Description:   in.Description,
		Stock:         in.Stock,
		PurchasePrice: in.PurchasePrice.Round(2),
		SalePrice:     in.SalePrice.Round(2),
		ImageURL:      in.ImageURL,
		CategoryID:    in.CategoryID,
	}
	if err := s.Repo.CreateProduct(ctx, p); err != nil {
		return nil, err
	}

	s.afterWrite(ctx, p, mykafka.EventProductCreated)
	return p, nil
}

// PatchProduct applies the non-nil fields. A stock change takes the same
// row lock as cart reservations.
func (s *CatalogService) PatchProduct(ctx context.Context, id uuid.UUID, patch ProductPatch) (*models.Product, error) {
	fields := map[string]any{}
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: name must not be empty", domain.ErrValidation)
		}
		fields["name"] = name
	}
	if patch.Description != nil {
		fields["description"] = *patch.Description
	}
	if patch.PurchasePrice != nil {
		if patch.PurchasePrice.IsNegative() {
			return nil, fmt.Errorf("%w: price must not be negative", domain.ErrValidation)
		}
		fields["purchase_price"] = patch.PurchasePrice.Round(2)
	}
	if patch.SalePrice != nil {
		if patch.SalePrice.IsNegative() {
			return nil, fmt.Errorf("%w: price must not be negative", domain.ErrValidation)
		}
		fields["sale_price"] = patch.SalePrice.Round(2)
	}
	if patch.ImageURL != nil {
		fields["image_url"] = *patch.ImageURL
	}
	if patch.CategoryID != nil {
		fields["category_id"] = *patch.CategoryID
	}

	var p *models.Product
	err := s.Repo.Transaction(ctx, func(tx *repo.GormRepo) error {
		var err error
		if p, err = tx.ProductForUpdate(ctx, id); err != nil {
			return err
		}
		if patch.Stock != nil {
			if p, err = tx.SetStock(ctx, id, *patch.Stock); err != nil {
				return err
			}
		}
		return tx.PatchProduct(ctx, p, fields)
	})
	if err != nil {
		return nil, err
	}

	s.afterWrite(ctx, p, mykafka.EventProductUpdated)
	return p, nil
}

func (s *CatalogService) SetArchived(ctx context.Context, id uuid.UUID, archived bool) (*models.Product, error) {
	p, err := s.Repo.SetArchived(ctx, id, archived)
	if err != nil {
		return nil, err
	}
	s.afterWrite(ctx, p, mykafka.EventProductArchived)
	return p, nil
}

func (s *CatalogService) afterWrite(ctx context.Context, p *models.Product, eventType string) {
	if s.Index != nil {
		if err := s.Index.IndexProduct(ctx, p); err != nil {
			logging.FromContext(ctx).Warn("search_index_failed", "product_id", p.ID, "error", err)
		}
	}
	publish(ctx, s.Events, mykafka.TopicProductEvents, p.ID.String(), eventType, p)
}
