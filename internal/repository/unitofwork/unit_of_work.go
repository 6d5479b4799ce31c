package unitofwork

import (
	"context"

	"stewardship-be/internal/repository/contract"
)

// UnitOfWork scopes a set of repositories to one logical operation. After
// Begin, all accessors return repositories bound to the same database
// transaction until Commit or Rollback.
type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	DonationRepository() contract.DonationRepository
	RecurringDonationRepository() contract.RecurringDonationRepository
	PaymentTransactionRepository() contract.PaymentTransactionRepository
	TaxReceiptRepository() contract.TaxReceiptRepository
	ReceiptSequenceRepository() contract.ReceiptSequenceRepository
	MemberRepository() contract.MemberRepository
	DesignationRepository() contract.DesignationRepository
}
