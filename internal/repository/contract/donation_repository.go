package contract

import (
	"context"

	"stewardship-be/internal/entity"
	"stewardship-be/internal/repository/specification"
)

type DonationRepository interface {
	Create(ctx context.Context, donation *entity.Donation) error
	Update(ctx context.Context, donation *entity.Donation) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Donation, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Donation, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
