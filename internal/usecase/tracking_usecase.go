package usecase

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"app/internal/domain/model"
	"app/internal/metrics"
	repo "app/internal/repository"

	"go.uber.org/zap"
)

// ステータスコード→表示文言。未知のコードは受け付けない。
var trackingDetails = map[model.TrackingStatus]string{
	model.TrackingOrderCreated:        "Order has been placed",
	model.TrackingOrderApproved:       "Order has been approved by the seller",
	model.TrackingOrderRejected:       "Order has been rejected by the seller",
	model.TrackingOrderCancelled:      "Order has been cancelled",
	model.TrackingOrderPaid:           "Payment has been completed",
	model.TrackingOrderPacked:         "Order has been packed",
	model.TrackingOrderShipped:        "Order has been shipped",
	model.TrackingOrderOutForDelivery: "Order is out for delivery",
	model.TrackingOrderDelivered:      "Order has been delivered",
}

func trackingDetail(s model.TrackingStatus) string {
	return trackingDetails[s]
}

type TrackingUsecase struct {
	tracking repo.TrackingRepository
}

// DI
func NewTrackingUsecase(tracking repo.TrackingRepository) *TrackingUsecase {
	return &TrackingUsecase{tracking: tracking}
}

type AddTrackingInput struct {
	TrackingID string
	Status     string
	Location   string
	Note       string
}

// Add は手動のトラッキングイベント追加。
// 同じ(trackingId, status)の組は409で弾く。
func (u *TrackingUsecase) Add(ctx context.Context, in AddTrackingInput) (model.TrackingEvent, error) {
	trackingID := strings.TrimSpace(in.TrackingID)
	if trackingID == "" {
		return model.TrackingEvent{}, NewHTTPError(http.StatusBadRequest, "trackingId is required")
	}

	status := model.TrackingStatus(strings.TrimSpace(in.Status))
	detail, ok := trackingDetails[status]
	if !ok {
		return model.TrackingEvent{}, NewHTTPError(http.StatusBadRequest, "invalid status")
	}

	ev, err := u.tracking.Append(ctx, model.TrackingEvent{
		TrackingID: trackingID,
		Status:     status,
		Detail:     detail,
		Location:   strings.TrimSpace(in.Location),
		Note:       strings.TrimSpace(in.Note),
	})
	if errors.Is(err, repo.ErrDuplicate) {
		return model.TrackingEvent{}, NewHTTPError(http.StatusConflict, "duplicate tracking status")
	}
	if err != nil {
		zap.L().Error("tracking append failed", zap.String("trackingId", trackingID), zap.Error(err))
		metrics.OperationErrorsTotal.WithLabelValues("tracking_append").Inc()
		return model.TrackingEvent{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	metrics.TrackingEventsTotal.Inc()
	return ev, nil
}

// 履歴は古い順
func (u *TrackingUsecase) History(ctx context.Context, trackingID string) ([]model.TrackingEvent, error) {
	if strings.TrimSpace(trackingID) == "" {
		return []model.TrackingEvent{}, NewHTTPError(http.StatusBadRequest, "trackingId is required")
	}

	items, err := u.tracking.ListByTrackingID(ctx, trackingID)
	if err != nil {
		zap.L().Error("tracking history failed", zap.String("trackingId", trackingID), zap.Error(err))
		return []model.TrackingEvent{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return items, nil
}
