package repository

import (
	"context"
	"errors"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"gorm.io/gorm"
)

type ProductGormRepository struct {
	db *gorm.DB
}

func NewProductGormRepository(db *gorm.DB) *ProductGormRepository {
	return &ProductGormRepository{db: db}
}

// 検索条件を組み立てる（title/description/categoryのOR部分一致）
func (r *ProductGormRepository) applyFilter(ctx context.Context, f repo.ProductFilter) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&model.Product{})

	if f.Search != "" {
		pat := "%" + f.Search + "%"
		q = q.Where(
			"title ILIKE ? OR description ILIKE ? OR category ILIKE ?",
			pat, pat, pat,
		)
	}

	if f.Email != "" {
		q = q.Where("creator_email = ?", f.Email)
	}

	return q
}

func (r *ProductGormRepository) List(ctx context.Context, f repo.ProductFilter) ([]model.Product, error) {
	var items []model.Product
	err := r.applyFilter(ctx, f).
		Order("created_at desc").
		Find(&items).Error
	if err != nil {
		return []model.Product{}, err
	}
	return items, nil
}

func (r *ProductGormRepository) ListPaged(ctx context.Context, f repo.ProductFilter) ([]model.Product, int64, error) {
	q := r.applyFilter(ctx, f)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return []model.Product{}, 0, err
	}

	var items []model.Product
	offset := (f.Page - 1) * f.Limit
	err := q.Order("created_at desc").
		Limit(f.Limit).
		Offset(offset).
		Find(&items).Error
	if err != nil {
		return []model.Product{}, 0, err
	}

	return items, total, nil
}

func (r *ProductGormRepository) ListHome(ctx context.Context, limit int) ([]model.Product, error) {
	var items []model.Product
	err := r.db.WithContext(ctx).
		Where("show_on_home = ?", true).
		Order("created_at desc").
		Limit(limit).
		Find(&items).Error
	if err != nil {
		return []model.Product{}, err
	}
	return items, nil
}

func (r *ProductGormRepository) FindByID(ctx context.Context, id int64) (model.Product, error) {
	var p model.Product
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Product{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Product{}, err
	}
	return p, nil
}

func (r *ProductGormRepository) Create(ctx context.Context, p model.Product) (model.Product, error) {
	if err := r.db.WithContext(ctx).Create(&p).Error; err != nil {
		return model.Product{}, err
	}
	return p, nil
}

func (r *ProductGormRepository) Update(ctx context.Context, id int64, fields map[string]interface{}) error {
	res := r.db.WithContext(ctx).Model(&model.Product{}).
		Where("id = ?", id).
		Updates(fields)

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *ProductGormRepository) Delete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Product{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}
