package contract

import (
	"context"

	"stewardship-be/internal/entity"
	"stewardship-be/internal/repository/specification"
)

// PaymentTransactionRepository is append-only: ledger rows are never
// updated or deleted once written.
type PaymentTransactionRepository interface {
	Create(ctx context.Context, tx *entity.PaymentTransaction) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.PaymentTransaction, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
