package contract

import (
	"context"

	"stewardship-be/internal/entity"
	"stewardship-be/internal/repository/specification"

	"github.com/google/uuid"
)

// MemberRepository is the read-only contributor directory. Member CRUD is
// owned by another subsystem.
type MemberRepository interface {
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Member, error)
}

// DesignationRepository reads designation labels and applies roll-up
// increments to running totals.
type DesignationRepository interface {
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Designation, error)
	IncrementRaised(ctx context.Context, id uuid.UUID, amountCents int64) error
}
