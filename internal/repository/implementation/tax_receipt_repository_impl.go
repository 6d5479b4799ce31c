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

type TaxReceiptRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.TaxReceiptMapper
}

func NewTaxReceiptRepository(db *gorm.DB) contract.TaxReceiptRepository {
	return &TaxReceiptRepositoryImpl{
		db:     db,
		mapper: mapper.NewTaxReceiptMapper(),
	}
}

func (r *TaxReceiptRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *TaxReceiptRepositoryImpl) Create(ctx context.Context, receipt *entity.TaxReceipt) error {
	m := r.mapper.ToModel(receipt)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*receipt = *r.mapper.ToEntity(m)
	return nil
}

func (r *TaxReceiptRepositoryImpl) Update(ctx context.Context, receipt *entity.TaxReceipt) error {
	m := r.mapper.ToModel(receipt)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	*receipt = *r.mapper.ToEntity(m)
	return nil
}

func (r *TaxReceiptRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.TaxReceipt, error) {
	var m model.TaxReceipt
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *TaxReceiptRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.TaxReceipt, error) {
	var models []*model.TaxReceipt
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.TaxReceipt, len(models))
	for i, m := range models {
		entities[i] = r.mapper.ToEntity(m)
	}
	return entities, nil
}

type ReceiptSequenceRepositoryImpl struct {
	db *gorm.DB
}

func NewReceiptSequenceRepository(db *gorm.DB) contract.ReceiptSequenceRepository {
	return &ReceiptSequenceRepositoryImpl{db: db}
}

// NextNumber advances the (tax_year, partition) counter in one atomic
// statement so concurrent issuances always receive distinct numbers.
func (r *ReceiptSequenceRepositoryImpl) NextNumber(ctx context.Context, taxYear int, partition entity.ReceiptPartition) (int, error) {
	var next int
	err := r.db.WithContext(ctx).Raw(`
		INSERT INTO receipt_sequences (tax_year, partition, last_number)
		VALUES (?, ?, 1)
		ON CONFLICT (tax_year, partition)
		DO UPDATE SET last_number = receipt_sequences.last_number + 1
		RETURNING last_number`,
		taxYear, string(partition),
	).Scan(&next).Error
	if err != nil {
		return 0, err
	}
	return next, nil
}
