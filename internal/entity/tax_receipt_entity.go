package entity

import (
	"time"

	"github.com/google/uuid"
)

type ReceiptStatus string

const (
	ReceiptStatusIssued ReceiptStatus = "issued"
	ReceiptStatusSent   ReceiptStatus = "sent"
	ReceiptStatusVoided ReceiptStatus = "voided"
)

// ReceiptPartition is the numbering axis: single-donation receipts and
// annual consolidated receipts draw from independent sequences.
type ReceiptPartition string

const (
	PartitionSingle ReceiptPartition = "single"
	PartitionAnnual ReceiptPartition = "annual"
)

type TaxReceipt struct {
	Id       uuid.UUID
	MemberId uuid.UUID

	// DonationId is set for single-donation receipts only; annual receipts
	// are associated from the donation side instead.
	DonationId *uuid.UUID
	IsAnnual   bool

	AmountCents   int64
	Currency      string
	ReceiptNumber string
	TaxYear       int
	IssueDate     time.Time
	Status        ReceiptStatus
	VoidReason    string
	FilePath      string

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (r *TaxReceipt) Voided() bool {
	return r.Status == ReceiptStatusVoided
}
