package entity

import (
	"time"

	"github.com/google/uuid"
)

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusFailed    PaymentStatus = "failed"
	PaymentStatusRefunded  PaymentStatus = "refunded"
)

// CanTransitionTo enforces the donation status lifecycle:
// pending -> completed|failed, completed -> refunded.
func (s PaymentStatus) CanTransitionTo(target PaymentStatus) bool {
	switch s {
	case PaymentStatusPending:
		return target == PaymentStatusCompleted || target == PaymentStatusFailed
	case PaymentStatusCompleted:
		return target == PaymentStatusRefunded
	default:
		return false
	}
}

type Donation struct {
	Id       uuid.UUID
	MemberId *uuid.UUID // nil for anonymous gifts

	AmountCents int64
	Currency    string

	CategoryId *uuid.UUID
	ProjectId  *uuid.UUID
	CampaignId *uuid.UUID

	DonationDate  time.Time
	PaymentMethod string
	PaymentStatus PaymentStatus

	GatewayName          string
	GatewayTransactionId *string

	RecurringDonationId *uuid.UUID
	TaxReceiptId        *uuid.UUID
	AnnualReceiptId     *uuid.UUID

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Charged reports whether a charge attempt already reached the processor.
func (d *Donation) Charged() bool {
	return d.GatewayTransactionId != nil && *d.GatewayTransactionId != ""
}
