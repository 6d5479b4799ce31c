package entity

import (
	"time"

	"github.com/google/uuid"
)

type Frequency string

const (
	FrequencyWeekly    Frequency = "weekly"
	FrequencyMonthly   Frequency = "monthly"
	FrequencyQuarterly Frequency = "quarterly"
	FrequencyYearly    Frequency = "yearly"
)

func (f Frequency) Valid() bool {
	switch f {
	case FrequencyWeekly, FrequencyMonthly, FrequencyQuarterly, FrequencyYearly:
		return true
	}
	return false
}

// RecurringDonation is a standing pledge: a commitment to give a fixed
// amount on a schedule until canceled or expired.
type RecurringDonation struct {
	Id       uuid.UUID
	MemberId uuid.UUID

	AmountCents int64
	Currency    string

	CategoryId *uuid.UUID
	ProjectId  *uuid.UUID
	CampaignId *uuid.UUID

	Frequency     Frequency
	StartDate     time.Time
	EndDate       *time.Time
	NextDueDate   time.Time
	IsActive      bool
	PaymentMethod string
	GatewayName   string

	GatewaySubscriptionId *string
	GatewayCustomerId     *string
	LastDonationId        *uuid.UUID

	Notes string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Expired reports whether the pledge's end date has passed.
func (r *RecurringDonation) Expired(now time.Time) bool {
	return r.EndDate != nil && r.EndDate.Before(now)
}
