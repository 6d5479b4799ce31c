package model

import (
	"time"

	"github.com/google/uuid"
)

type TaxReceipt struct {
	Id       uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	MemberId uuid.UUID `gorm:"type:uuid;not null;index"`

	DonationId *uuid.UUID `gorm:"type:uuid;index"`
	IsAnnual   bool       `gorm:"not null;default:false"`

	AmountCents   int64     `gorm:"not null"`
	Currency      string    `gorm:"type:varchar(3);not null"`
	ReceiptNumber string    `gorm:"type:varchar(50);uniqueIndex;not null"`
	TaxYear       int       `gorm:"not null;index"`
	IssueDate     time.Time `gorm:"not null"`
	Status        string    `gorm:"type:varchar(20);not null"`
	VoidReason    string    `gorm:"type:text"`
	FilePath      string    `gorm:"type:varchar(512)"`

	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (TaxReceipt) TableName() string {
	return "tax_receipts"
}

// ReceiptSequence backs receipt-number allocation. One row per
// (tax_year, partition); last_number only ever moves forward, so voided
// numbers are never reused.
type ReceiptSequence struct {
	TaxYear    int    `gorm:"primaryKey"`
	Partition  string `gorm:"type:varchar(20);primaryKey"`
	LastNumber int    `gorm:"not null;default:0"`
}

func (ReceiptSequence) TableName() string {
	return "receipt_sequences"
}
