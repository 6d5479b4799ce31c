package model

import (
	"time"

	"github.com/google/uuid"
)

type Donation struct {
	Id       uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	MemberId *uuid.UUID `gorm:"type:uuid;index"`

	AmountCents int64  `gorm:"not null"`
	Currency    string `gorm:"type:varchar(3);not null"`

	CategoryId *uuid.UUID `gorm:"type:uuid;index"`
	ProjectId  *uuid.UUID `gorm:"type:uuid;index"`
	CampaignId *uuid.UUID `gorm:"type:uuid;index"`

	DonationDate  time.Time `gorm:"not null;index"`
	PaymentMethod string    `gorm:"type:varchar(50)"`
	PaymentStatus string    `gorm:"type:varchar(20);not null;index"`

	GatewayName          string  `gorm:"type:varchar(50)"`
	GatewayTransactionId *string `gorm:"type:varchar(255);uniqueIndex"`

	RecurringDonationId *uuid.UUID `gorm:"type:uuid;index"`
	TaxReceiptId        *uuid.UUID `gorm:"type:uuid;index"`
	AnnualReceiptId     *uuid.UUID `gorm:"type:uuid;index"`

	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (Donation) TableName() string {
	return "donations"
}
