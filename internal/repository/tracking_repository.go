package repository

import (
	"context"

	"app/internal/domain/model"
)

type TrackingRepository interface {
	// 複合ユニーク違反は ErrDuplicate を返す
	Append(ctx context.Context, ev model.TrackingEvent) (model.TrackingEvent, error)
	ListByTrackingID(ctx context.Context, trackingID string) ([]model.TrackingEvent, error)
}
