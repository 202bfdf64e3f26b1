package repository

import (
	"context"
	"errors"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"gorm.io/gorm"
)

type PaymentGormRepository struct {
	db *gorm.DB
}

func NewPaymentGormRepository(db *gorm.DB) *PaymentGormRepository {
	return &PaymentGormRepository{db: db}
}

func (r *PaymentGormRepository) FindByTransactionID(ctx context.Context, txID string) (model.Payment, error) {
	var p model.Payment
	err := r.db.WithContext(ctx).Where("transaction_id = ?", txID).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Payment{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Payment{}, err
	}
	return p, nil
}

func (r *PaymentGormRepository) Create(ctx context.Context, p model.Payment) (model.Payment, error) {
	if err := r.db.WithContext(ctx).Create(&p).Error; err != nil {
		//transaction_idのユニーク違反は冪等パスに倒す
		if isUniqueViolation(err) {
			return model.Payment{}, repo.ErrDuplicate
		}
		return model.Payment{}, err
	}
	return p, nil
}
