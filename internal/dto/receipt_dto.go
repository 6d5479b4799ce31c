package dto

import (
	"time"

	"github.com/google/uuid"
)

type IssueAnnualReceiptRequest struct {
	MemberId uuid.UUID `json:"member_id" validate:"required"`
	TaxYear  int       `json:"tax_year" validate:"required,gte=2000"`
}

type VoidReceiptRequest struct {
	Reason string `json:"reason" validate:"required"`
}

type ReceiptResponse struct {
	Id            uuid.UUID  `json:"id"`
	MemberId      uuid.UUID  `json:"member_id"`
	DonationId    *uuid.UUID `json:"donation_id,omitempty"`
	IsAnnual      bool       `json:"is_annual"`
	AmountCents   int64      `json:"amount_cents"`
	Currency      string     `json:"currency"`
	ReceiptNumber string     `json:"receipt_number"`
	TaxYear       int        `json:"tax_year"`
	IssueDate     time.Time  `json:"issue_date"`
	Status        string     `json:"status"`
	FilePath      string     `json:"file_path,omitempty"`
}
