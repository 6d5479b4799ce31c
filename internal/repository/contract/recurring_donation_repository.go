package contract

import (
	"context"

	"stewardship-be/internal/entity"
	"stewardship-be/internal/repository/specification"
)

type RecurringDonationRepository interface {
	Create(ctx context.Context, pledge *entity.RecurringDonation) error
	Update(ctx context.Context, pledge *entity.RecurringDonation) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.RecurringDonation, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.RecurringDonation, error)
}
