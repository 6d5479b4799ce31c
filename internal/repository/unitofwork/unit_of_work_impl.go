package unitofwork

import (
	"context"
	"fmt"

	"stewardship-be/internal/repository/contract"
	"stewardship-be/internal/repository/implementation"

	"gorm.io/gorm"
)

type UnitOfWorkImpl struct {
	db *gorm.DB
	tx *gorm.DB // active transaction, nil outside Begin/Commit
}

func NewUnitOfWork(db *gorm.DB) UnitOfWork {
	return &UnitOfWorkImpl{
		db: db,
	}
}

func (u *UnitOfWorkImpl) getDB() *gorm.DB {
	if u.tx != nil {
		return u.tx
	}
	return u.db
}

func (u *UnitOfWorkImpl) Begin(ctx context.Context) error {
	if u.tx != nil {
		return fmt.Errorf("transaction already started")
	}
	u.tx = u.db.WithContext(ctx).Begin()
	return u.tx.Error
}

func (u *UnitOfWorkImpl) Commit() error {
	if u.tx == nil {
		return fmt.Errorf("no transaction to commit")
	}
	err := u.tx.Commit().Error
	u.tx = nil
	return err
}

func (u *UnitOfWorkImpl) Rollback() error {
	if u.tx == nil {
		return fmt.Errorf("no transaction to rollback")
	}
	err := u.tx.Rollback().Error
	u.tx = nil
	return err
}

// Repository Accessors

func (u *UnitOfWorkImpl) DonationRepository() contract.DonationRepository {
	return implementation.NewDonationRepository(u.getDB())
}

func (u *UnitOfWorkImpl) RecurringDonationRepository() contract.RecurringDonationRepository {
	return implementation.NewRecurringDonationRepository(u.getDB())
}

func (u *UnitOfWorkImpl) PaymentTransactionRepository() contract.PaymentTransactionRepository {
	return implementation.NewPaymentTransactionRepository(u.getDB())
}

func (u *UnitOfWorkImpl) TaxReceiptRepository() contract.TaxReceiptRepository {
	return implementation.NewTaxReceiptRepository(u.getDB())
}

func (u *UnitOfWorkImpl) ReceiptSequenceRepository() contract.ReceiptSequenceRepository {
	return implementation.NewReceiptSequenceRepository(u.getDB())
}

func (u *UnitOfWorkImpl) MemberRepository() contract.MemberRepository {
	return implementation.NewMemberRepository(u.getDB())
}

func (u *UnitOfWorkImpl) DesignationRepository() contract.DesignationRepository {
	return implementation.NewDesignationRepository(u.getDB())
}
