package repository

import (
	"context"

	"app/internal/domain/model"
)

// 一覧検索
type ProductFilter struct {
	Search string
	Email  string
	Page   int
	Limit  int
}

// 商品の永続化（保存・取得）だけを約束。
type ProductRepository interface {
	List(ctx context.Context, f ProductFilter) ([]model.Product, error)
	ListPaged(ctx context.Context, f ProductFilter) ([]model.Product, int64, error)
	ListHome(ctx context.Context, limit int) ([]model.Product, error)
	FindByID(ctx context.Context, id int64) (model.Product, error)

	Create(ctx context.Context, p model.Product) (model.Product, error)
	Update(ctx context.Context, id int64, fields map[string]interface{}) error
	Delete(ctx context.Context, id int64) error
}
