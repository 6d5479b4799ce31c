package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateRecurringDonationRequest struct {
	MemberId      uuid.UUID  `json:"member_id" validate:"required"`
	AmountCents   int64      `json:"amount_cents" validate:"required,gt=0"`
	Currency      string     `json:"currency" validate:"required,len=3"`
	CategoryId    *uuid.UUID `json:"category_id"`
	ProjectId     *uuid.UUID `json:"project_id"`
	CampaignId    *uuid.UUID `json:"campaign_id"`
	Frequency     string     `json:"frequency" validate:"required,oneof=weekly monthly quarterly yearly"`
	StartDate     time.Time  `json:"start_date" validate:"required"`
	EndDate       *time.Time `json:"end_date"`
	PaymentMethod string     `json:"payment_method" validate:"required"`
	GatewayName   string     `json:"gateway_name"`
}

type UpdateRecurringDonationRequest struct {
	AmountCents   *int64  `json:"amount_cents" validate:"omitempty,gt=0"`
	Frequency     *string `json:"frequency" validate:"omitempty,oneof=weekly monthly quarterly yearly"`
	PaymentMethod *string `json:"payment_method"`
}

type CancelRecurringDonationRequest struct {
	Reason string `json:"reason"`
}

type RecurringDonationResponse struct {
	Id            uuid.UUID  `json:"id"`
	MemberId      uuid.UUID  `json:"member_id"`
	AmountCents   int64      `json:"amount_cents"`
	Currency      string     `json:"currency"`
	Frequency     string     `json:"frequency"`
	NextDueDate   time.Time  `json:"next_due_date"`
	EndDate       *time.Time `json:"end_date,omitempty"`
	IsActive      bool       `json:"is_active"`
	PaymentMethod string     `json:"payment_method"`
}

// BatchSummary reports one scheduler tick over the due pledges.
type BatchSummary struct {
	Total   int       `json:"total"`
	Success int       `json:"success"`
	Failed  int       `json:"failed"`
	Skipped int       `json:"skipped"`
	RanAt   time.Time `json:"ran_at"`
}
