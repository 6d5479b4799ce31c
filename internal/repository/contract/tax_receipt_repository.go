package contract

import (
	"context"

	"stewardship-be/internal/entity"
	"stewardship-be/internal/repository/specification"
)

type TaxReceiptRepository interface {
	Create(ctx context.Context, receipt *entity.TaxReceipt) error
	Update(ctx context.Context, receipt *entity.TaxReceipt) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.TaxReceipt, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.TaxReceipt, error)
}

// ReceiptSequenceRepository allocates receipt numbers. NextNumber must be
// atomic: two concurrent issuances for the same (year, partition) must
// never observe the same value.
type ReceiptSequenceRepository interface {
	NextNumber(ctx context.Context, taxYear int, partition entity.ReceiptPartition) (int, error)
}
