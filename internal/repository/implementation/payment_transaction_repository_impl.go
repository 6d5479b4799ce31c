package implementation

import (
	"context"

	"stewardship-be/internal/entity"
	"stewardship-be/internal/mapper"
	"stewardship-be/internal/model"
	"stewardship-be/internal/repository/contract"
	"stewardship-be/internal/repository/specification"

	"gorm.io/gorm"
)

type PaymentTransactionRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.PaymentTransactionMapper
}

func NewPaymentTransactionRepository(db *gorm.DB) contract.PaymentTransactionRepository {
	return &PaymentTransactionRepositoryImpl{
		db:     db,
		mapper: mapper.NewPaymentTransactionMapper(),
	}
}

func (r *PaymentTransactionRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *PaymentTransactionRepositoryImpl) Create(ctx context.Context, tx *entity.PaymentTransaction) error {
	m := r.mapper.ToModel(tx)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*tx = *r.mapper.ToEntity(m)
	return nil
}

func (r *PaymentTransactionRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.PaymentTransaction, error) {
	var models []*model.PaymentTransaction
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.PaymentTransaction, len(models))
	for i, m := range models {
		entities[i] = r.mapper.ToEntity(m)
	}
	return entities, nil
}

func (r *PaymentTransactionRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.PaymentTransaction{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
