package entity

import (
	"time"

	"github.com/google/uuid"
)

type TransactionType string

const (
	TransactionTypePayment TransactionType = "payment"
	TransactionTypeRefund  TransactionType = "refund"
)

// PaymentTransaction is one append-only ledger row per processor
// interaction. Rows are never updated after creation.
type PaymentTransaction struct {
	Id                   uuid.UUID
	DonationId           uuid.UUID
	GatewayTransactionId string
	GatewayName          string
	AmountCents          int64
	Currency             string
	Status               string
	Type                 TransactionType
	RawResponse          []byte
	CreatedAt            time.Time
}
