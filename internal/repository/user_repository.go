package repository

import (
	"context"

	"app/internal/domain/model"
)

// 一覧検索。Roleが"all"または空なら絞り込みなし。
type UserFilter struct {
	Search string
	Role   string
}

type UserRepository interface {
	FindByEmail(ctx context.Context, email string) (model.User, error)
	Create(ctx context.Context, u model.User) (model.User, error)
	List(ctx context.Context, f UserFilter) ([]model.User, error)
	UpdateByEmail(ctx context.Context, email string, fields map[string]interface{}) error
}
