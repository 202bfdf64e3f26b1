package repository

import (
	"context"

	"app/internal/domain/model"
)

type PaymentRepository interface {
	FindByTransactionID(ctx context.Context, txID string) (model.Payment, error)
	// transaction_idのユニーク違反は ErrDuplicate を返す
	Create(ctx context.Context, p model.Payment) (model.Payment, error)
}
