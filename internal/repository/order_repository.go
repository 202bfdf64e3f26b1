package repository

import (
	"context"

	"app/internal/domain/model"
)

// 一覧検索。Statusが"all"または空なら絞り込みなし。
type OrderFilter struct {
	Search      string
	Status      string
	Email       string
	SellerEmail string
}

type OrderRepository interface {
	FindByID(ctx context.Context, id int64) (model.Order, error)
	FindByTrackingID(ctx context.Context, trackingID string) (model.Order, error)
	List(ctx context.Context, f OrderFilter) ([]model.Order, error)
	Create(ctx context.Context, o model.Order) (model.Order, error)
	// fromに一致する行だけ更新する（遷移の原子ガード）。一致なしはErrNotFound。
	UpdateStatus(ctx context.Context, id int64, from model.OrderStatus, fields map[string]interface{}) error
	SetPaymentStatus(ctx context.Context, trackingID string, status model.PaymentStatus) error

	// 採番カウンタの原子インクリメント
	NextOrderNumber(ctx context.Context) (int64, error)
}
