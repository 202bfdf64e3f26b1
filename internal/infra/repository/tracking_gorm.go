package repository

import (
	"context"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"gorm.io/gorm"
)

type TrackingGormRepository struct {
	db *gorm.DB
}

func NewTrackingGormRepository(db *gorm.DB) *TrackingGormRepository {
	return &TrackingGormRepository{db: db}
}

func (r *TrackingGormRepository) Append(ctx context.Context, ev model.TrackingEvent) (model.TrackingEvent, error) {
	if err := r.db.WithContext(ctx).Create(&ev).Error; err != nil {
		//(tracking_id, status)の複合ユニーク違反
		if isUniqueViolation(err) {
			return model.TrackingEvent{}, repo.ErrDuplicate
		}
		return model.TrackingEvent{}, err
	}
	return ev, nil
}

func (r *TrackingGormRepository) ListByTrackingID(ctx context.Context, trackingID string) ([]model.TrackingEvent, error) {
	var items []model.TrackingEvent
	err := r.db.WithContext(ctx).
		Where("tracking_id = ?", trackingID).
		Order("created_at asc").
		Find(&items).Error
	if err != nil {
		return []model.TrackingEvent{}, err
	}
	return items, nil
}
