package implementation

import (
	"context"
	"errors"

	"stewardship-be/internal/entity"
	"stewardship-be/internal/mapper"
	"stewardship-be/internal/model"
	"stewardship-be/internal/repository/contract"
	"stewardship-be/internal/repository/specification"

	"gorm.io/gorm"
)

type RecurringDonationRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.RecurringDonationMapper
}

func NewRecurringDonationRepository(db *gorm.DB) contract.RecurringDonationRepository {
	return &RecurringDonationRepositoryImpl{
		db:     db,
		mapper: mapper.NewRecurringDonationMapper(),
	}
}

func (r *RecurringDonationRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *RecurringDonationRepositoryImpl) Create(ctx context.Context, pledge *entity.RecurringDonation) error {
	m := r.mapper.ToModel(pledge)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*pledge = *r.mapper.ToEntity(m)
	return nil
}

func (r *RecurringDonationRepositoryImpl) Update(ctx context.Context, pledge *entity.RecurringDonation) error {
	m := r.mapper.ToModel(pledge)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	*pledge = *r.mapper.ToEntity(m)
	return nil
}

func (r *RecurringDonationRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.RecurringDonation, error) {
	var m model.RecurringDonation
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *RecurringDonationRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.RecurringDonation, error) {
	var models []*model.RecurringDonation
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.RecurringDonation, len(models))
	for i, m := range models {
		entities[i] = r.mapper.ToEntity(m)
	}
	return entities, nil
}
