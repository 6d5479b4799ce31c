package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateDonationRequest struct {
	MemberId      *uuid.UUID `json:"member_id"`
	AmountCents   int64      `json:"amount_cents" validate:"required,gt=0"`
	Currency      string     `json:"currency" validate:"required,len=3"`
	CategoryId    *uuid.UUID `json:"category_id"`
	ProjectId     *uuid.UUID `json:"project_id"`
	CampaignId    *uuid.UUID `json:"campaign_id"`
	PaymentMethod string     `json:"payment_method" validate:"required"`
	GatewayName   string     `json:"gateway_name"`
	PaymentToken  string     `json:"payment_token"`
}

type DonationResponse struct {
	Id                   uuid.UUID  `json:"id"`
	MemberId             *uuid.UUID `json:"member_id,omitempty"`
	AmountCents          int64      `json:"amount_cents"`
	Currency             string     `json:"currency"`
	DonationDate         time.Time  `json:"donation_date"`
	PaymentStatus        string     `json:"payment_status"`
	GatewayName          string     `json:"gateway_name,omitempty"`
	GatewayTransactionId *string    `json:"gateway_transaction_id,omitempty"`
	TaxReceiptId         *uuid.UUID `json:"tax_receipt_id,omitempty"`
}

type RefundDonationRequest struct {
	AmountCents *int64 `json:"amount_cents" validate:"omitempty,gt=0"`
	Reason      string `json:"reason" validate:"required"`
}

// ChargeContext carries the per-call data a gateway needs for an
// off-session charge, passed explicitly instead of read from ambient
// state.
type ChargeContext struct {
	PaymentMethod string
	PaymentToken  string
	CustomerId    string
	CustomerName  string
	CustomerEmail string
}

type ChargeOutcome struct {
	DonationId    uuid.UUID `json:"donation_id"`
	PaymentStatus string    `json:"payment_status"`
	TransactionId string    `json:"transaction_id,omitempty"`
}
