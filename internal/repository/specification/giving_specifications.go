package specification

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DuePledges selects active pledges whose next due date has arrived and
// whose end date (if any) has not passed.
type DuePledges struct {
	Now time.Time
}

func (s DuePledges) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("is_active = ?", true).
		Where("next_due_date <= ?", s.Now).
		Where("end_date IS NULL OR end_date >= ?", s.Now)
}

// ByGatewayTransactionId looks a donation up by the processor-side id.
type ByGatewayTransactionId struct {
	TransactionId string
}

func (s ByGatewayTransactionId) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("gateway_transaction_id = ?", s.TransactionId)
}

// CompletedInYear selects completed donations dated within a tax year.
type CompletedInYear struct {
	Year int
}

func (s CompletedInYear) Apply(db *gorm.DB) *gorm.DB {
	start := time.Date(s.Year, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(1, 0, 0)
	return db.Where("payment_status = ?", "completed").
		Where("donation_date >= ? AND donation_date < ?", start, end)
}

// MemberOwnedBy filters by the contributing member.
type MemberOwnedBy struct {
	MemberID uuid.UUID
}

func (s MemberOwnedBy) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("member_id = ?", s.MemberID)
}
