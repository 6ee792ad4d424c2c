package repo

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/Skotchmaster/storefront/internal/models"
)

func (r *GormRepo) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var p models.Product
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&p).Error; err != nil {
		return nil, notFound(err, "product "+id.String())
	}
	return &p, nil
}

func (r *GormRepo) GetProducts(ctx context.Context, archived bool, offset, limit int) (int64, []models.Product, error) {
	q := r.DB.WithContext(ctx).Model(&models.Product{}).Where("archived = ?", archived)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return 0, nil, err
	}

	items := make([]models.Product, 0, limit)
	if err := q.Order("created_at DESC").Offset(offset).Limit(limit).Find(&items).Error; err != nil {
		return 0, nil, err
	}
	return total, items, nil
}

// ProductsByIDs returns the non-archived products among ids in the order given.
func (r *GormRepo) ProductsByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Product, error) {
	if len(ids) == 0 {
		return []models.Product{}, nil
	}
	var found []models.Product
	if err := r.DB.WithContext(ctx).Where("id IN ? AND archived = ?", ids, false).Find(&found).Error; err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]models.Product, len(found))
	for _, p := range found {
		byID[p.ID] = p
	}
	items := make([]models.Product, 0, len(found))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			items = append(items, p)
		}
	}
	return items, nil
}

func (r *GormRepo) TopProducts(ctx context.Context, limit int) ([]models.Product, error) {
	items := make([]models.Product, 0, limit)
	err := r.DB.WithContext(ctx).
		Where("archived = ?", false).
		Order("stock DESC").
		Limit(limit).
		Find(&items).Error
	return items, err
}

func (r *GormRepo) CreateProduct(ctx context.Context, p *models.Product) error {
	return r.DB.WithContext(ctx).Create(p).Error
}

// PatchProduct applies fields by column name. Stock is never patched here.
func (r *GormRepo) PatchProduct(ctx context.Context, p *models.Product, fields map[string]any) error {
	delete(fields, "stock")
	if len(fields) == 0 {
		return nil
	}
	if err := r.DB.WithContext(ctx).Model(p).Updates(fields).Error; err != nil {
		return err
	}
	return r.DB.WithContext(ctx).Where("id = ?", p.ID).First(p).Error
}

func (r *GormRepo) SetArchived(ctx context.Context, id uuid.UUID, archived bool) (*models.Product, error) {
	p, err := r.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := r.DB.WithContext(ctx).Model(p).Update("archived", archived).Error; err != nil {
		return nil, err
	}
	p.Archived = archived
	return p, nil
}

// SearchProducts is the SQL fallback used when no search index is configured.
func (r *GormRepo) SearchProducts(ctx context.Context, q string, offset, limit int) (int64, []models.Product, error) {
	pattern := "%" + strings.ToLower(q) + "%"
	query := r.DB.WithContext(ctx).
		Model(&models.Product{}).
		Where("archived = ?", false).
		Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", pattern, pattern)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return 0, nil, err
	}

	items := make([]models.Product, 0, limit)
	if err := query.Order("name ASC").Offset(offset).Limit(limit).Find(&items).Error; err != nil {
		return 0, nil, err
	}
	return total, items, nil
}
