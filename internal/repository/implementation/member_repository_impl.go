package implementation

import (
	"context"
	"errors"

	"stewardship-be/internal/entity"
	"stewardship-be/internal/mapper"
	"stewardship-be/internal/model"
	"stewardship-be/internal/repository/contract"
	"stewardship-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type MemberRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.MemberMapper
}

func NewMemberRepository(db *gorm.DB) contract.MemberRepository {
	return &MemberRepositoryImpl{
		db:     db,
		mapper: mapper.NewMemberMapper(),
	}
}

func (r *MemberRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Member, error) {
	var m model.Member
	query := r.db.WithContext(ctx)
	for _, spec := range specs {
		query = spec.Apply(query)
	}
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

type DesignationRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.MemberMapper
}

func NewDesignationRepository(db *gorm.DB) contract.DesignationRepository {
	return &DesignationRepositoryImpl{
		db:     db,
		mapper: mapper.NewMemberMapper(),
	}
}

func (r *DesignationRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Designation, error) {
	var m model.Designation
	query := r.db.WithContext(ctx)
	for _, spec := range specs {
		query = spec.Apply(query)
	}
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.DesignationToEntity(&m), nil
}

func (r *DesignationRepositoryImpl) IncrementRaised(ctx context.Context, id uuid.UUID, amountCents int64) error {
	return r.db.WithContext(ctx).Model(&model.Designation{}).
		Where("id = ?", id).
		UpdateColumn("raised_cents", gorm.Expr("raised_cents + ?", amountCents)).Error
}
