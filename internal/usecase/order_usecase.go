package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"app/internal/domain/model"
	"app/internal/metrics"
	repo "app/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type OrderUsecase struct {
	tx       repo.TransactionManager
	orders   repo.OrderRepository
	products repo.ProductRepository
}

// DI
func NewOrderUsecase(tx repo.TransactionManager, orders repo.OrderRepository, products repo.ProductRepository) *OrderUsecase {
	return &OrderUsecase{tx: tx, orders: orders, products: products}
}

type PlaceOrderInput struct {
	ProductID int64
	Note      string
}

// Place は注文を作成する。
// オーダー番号はカウンタの原子インクリメントで採番し（ORD001, ORD002, ...）、
// tracking IDはUUID。作成と同時にOrder_Createdイベントを1件積む。
func (u *OrderUsecase) Place(ctx context.Context, email string, in PlaceOrderInput) (model.Order, error) {
	if strings.TrimSpace(email) == "" {
		return model.Order{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if in.ProductID <= 0 {
		return model.Order{}, NewHTTPError(http.StatusBadRequest, "productId is required")
	}

	//商品スナップショット
	p, err := u.products.FindByID(ctx, in.ProductID)
	if errors.Is(err, repo.ErrNotFound) {
		return model.Order{}, NewHTTPError(http.StatusBadRequest, "invalid productId")
	}
	if err != nil {
		zap.L().Error("product lookup failed", zap.Int64("productId", in.ProductID), zap.Error(err))
		return model.Order{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	seq, err := u.orders.NextOrderNumber(ctx)
	if err != nil {
		zap.L().Error("order number generation failed", zap.Error(err))
		metrics.OperationErrorsTotal.WithLabelValues("order_create").Inc()
		return model.Order{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	order := model.Order{
		//%03dなので999を超えたら自然に桁が増える
		OrderNumber:  fmt.Sprintf("ORD%03d", seq),
		TrackingID:   uuid.NewString(),
		Email:        email,
		ProductID:    p.ID,
		ProductTitle: p.Title,
		Price:        p.Price,
		Note:         in.Note,
		Status:       model.OrderStatusPending,
	}

	//注文行とOrder_Createdイベントは同一トランザクション。
	//イベント追記に失敗したら注文行ごと巻き戻す。
	var created model.Order
	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		c, err := r.Orders().Create(ctx, order)
		if err != nil {
			zap.L().Error("order create failed", zap.String("orderNumber", order.OrderNumber), zap.Error(err))
			metrics.OperationErrorsTotal.WithLabelValues("order_create").Inc()
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		created = c
		return appendEvent(ctx, r.Tracking(), created.TrackingID, model.TrackingOrderCreated)
	})
	if err != nil {
		return model.Order{}, err
	}

	metrics.OrdersCreatedTotal.Inc()
	return created, nil
}

// 見つからなければnilを返す（404にしない）。
func (u *OrderUsecase) Get(ctx context.Context, id int64) (*model.Order, error) {
	if id <= 0 {
		return nil, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	o, err := u.orders.FindByID(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		zap.L().Error("order lookup failed", zap.Int64("id", id), zap.Error(err))
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return &o, nil
}

func (u *OrderUsecase) List(ctx context.Context, f repo.OrderFilter) ([]model.Order, error) {
	items, err := u.orders.List(ctx, f)
	if err != nil {
		zap.L().Error("order list failed", zap.Error(err))
		return []model.Order{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return items, nil
}

// 購入者本人の注文一覧
func (u *OrderUsecase) ListByEmail(ctx context.Context, email, search string) ([]model.Order, error) {
	if strings.TrimSpace(email) == "" {
		return []model.Order{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	return u.List(ctx, repo.OrderFilter{Email: email, Search: search})
}

// 出品者視点の注文一覧（自分の商品に入った注文をstatusで絞る）
func (u *OrderUsecase) ListBySeller(ctx context.Context, sellerEmail string, status model.OrderStatus) ([]model.Order, error) {
	if strings.TrimSpace(sellerEmail) == "" {
		return []model.Order{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	return u.List(ctx, repo.OrderFilter{SellerEmail: sellerEmail, Status: string(status)})
}

func (u *OrderUsecase) Approve(ctx context.Context, id int64) (model.Order, error) {
	now := time.Now()
	return u.transition(ctx, id, model.OrderStatusApproved, model.TrackingOrderApproved, map[string]interface{}{
		"status":      model.OrderStatusApproved,
		"approved_at": &now,
	})
}

func (u *OrderUsecase) Reject(ctx context.Context, id int64) (model.Order, error) {
	return u.transition(ctx, id, model.OrderStatusRejected, model.TrackingOrderRejected, map[string]interface{}{
		"status": model.OrderStatusRejected,
	})
}

func (u *OrderUsecase) Cancel(ctx context.Context, id int64) (model.Order, error) {
	now := time.Now()
	return u.transition(ctx, id, model.OrderStatusCancelled, model.TrackingOrderCancelled, map[string]interface{}{
		"status":       model.OrderStatusCancelled,
		"cancelled_at": &now,
	})
}

// transition はpending→終端の一方向遷移。pending以外からは400。
// WHERE status='pending' 付きUPDATEなので同時リクエストでも遷移は一度だけ通る。
func (u *OrderUsecase) transition(ctx context.Context, id int64, to model.OrderStatus, ev model.TrackingStatus, fields map[string]interface{}) (model.Order, error) {
	if id <= 0 {
		return model.Order{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	o, err := u.orders.FindByID(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return model.Order{}, NewHTTPError(http.StatusBadRequest, "order not found")
	}
	if err != nil {
		zap.L().Error("order lookup failed", zap.Int64("id", id), zap.Error(err))
		return model.Order{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	if o.Status != model.OrderStatusPending {
		return model.Order{}, NewHTTPError(http.StatusBadRequest, "invalid status transition")
	}

	//遷移とイベント追記は同一トランザクション。片方だけ残る状態を作らない。
	var updated model.Order
	txErr := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		err := r.Orders().UpdateStatus(ctx, id, model.OrderStatusPending, fields)
		if errors.Is(err, repo.ErrNotFound) {
			// read後に他のリクエストが先に遷移させたケース
			return NewHTTPError(http.StatusBadRequest, "invalid status transition")
		}
		if err != nil {
			zap.L().Error("order transition failed", zap.Int64("id", id), zap.String("to", string(to)), zap.Error(err))
			metrics.OperationErrorsTotal.WithLabelValues("order_transition").Inc()
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		if err := appendEvent(ctx, r.Tracking(), o.TrackingID, ev); err != nil {
			return err
		}

		reloaded, err := r.Orders().FindByID(ctx, id)
		if err != nil {
			zap.L().Error("order reload failed", zap.Int64("id", id), zap.Error(err))
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		updated = reloaded
		return nil
	})
	if txErr != nil {
		return model.Order{}, txErr
	}
	return updated, nil
}

// ライフサイクル由来のイベント追記。重複は既に記録済みとして握る。
func appendEvent(ctx context.Context, tracking repo.TrackingRepository, trackingID string, status model.TrackingStatus) error {
	_, err := tracking.Append(ctx, model.TrackingEvent{
		TrackingID: trackingID,
		Status:     status,
		Detail:     trackingDetail(status),
	})
	if err != nil && !errors.Is(err, repo.ErrDuplicate) {
		zap.L().Error("tracking append failed", zap.String("trackingId", trackingID), zap.String("status", string(status)), zap.Error(err))
		metrics.OperationErrorsTotal.WithLabelValues("tracking_append").Inc()
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if err == nil {
		metrics.TrackingEventsTotal.Inc()
	}
	return nil
}
