package repository

import (
	"context"
	"errors"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"gorm.io/gorm"
)

type UserGormRepository struct {
	db *gorm.DB
}

func NewUserGormRepository(db *gorm.DB) *UserGormRepository {
	return &UserGormRepository{db: db}
}

func (r *UserGormRepository) FindByEmail(ctx context.Context, email string) (model.User, error) {
	var u model.User
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.User{}, repo.ErrNotFound
	}
	if err != nil {
		return model.User{}, err
	}
	return u, nil
}

func (r *UserGormRepository) Create(ctx context.Context, u model.User) (model.User, error) {
	if err := r.db.WithContext(ctx).Create(&u).Error; err != nil {
		if isUniqueViolation(err) {
			return model.User{}, repo.ErrDuplicate
		}
		return model.User{}, err
	}
	return u, nil
}

func (r *UserGormRepository) List(ctx context.Context, f repo.UserFilter) ([]model.User, error) {
	q := r.db.WithContext(ctx).Model(&model.User{})

	//free-text検索（display_name/role/emailのOR部分一致）
	if f.Search != "" {
		pat := "%" + f.Search + "%"
		q = q.Where(
			"display_name ILIKE ? OR role ILIKE ? OR email ILIKE ?",
			pat, pat, pat,
		)
	}

	//role絞り込み（"all"はsentinel）
	if f.Role != "" && f.Role != "all" {
		q = q.Where("role = ?", f.Role)
	}

	var items []model.User
	if err := q.Find(&items).Error; err != nil {
		return []model.User{}, err
	}
	return items, nil
}

func (r *UserGormRepository) UpdateByEmail(ctx context.Context, email string, fields map[string]interface{}) error {
	res := r.db.WithContext(ctx).Model(&model.User{}).
		Where("email = ?", email).
		Updates(fields)

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}
