package model

import (
	"time"

	"github.com/google/uuid"
)

type RecurringDonation struct {
	Id       uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	MemberId uuid.UUID `gorm:"type:uuid;not null;index"`

	AmountCents int64  `gorm:"not null"`
	Currency    string `gorm:"type:varchar(3);not null"`

	CategoryId *uuid.UUID `gorm:"type:uuid"`
	ProjectId  *uuid.UUID `gorm:"type:uuid"`
	CampaignId *uuid.UUID `gorm:"type:uuid"`

	Frequency     string     `gorm:"type:varchar(20);not null"`
	StartDate     time.Time  `gorm:"not null"`
	EndDate       *time.Time `gorm:""`
	NextDueDate   time.Time  `gorm:"not null;index"`
	IsActive      bool       `gorm:"not null;default:true;index"`
	PaymentMethod string     `gorm:"type:varchar(50)"`
	GatewayName   string     `gorm:"type:varchar(50)"`

	GatewaySubscriptionId *string    `gorm:"type:varchar(255)"`
	GatewayCustomerId     *string    `gorm:"type:varchar(255)"`
	LastDonationId        *uuid.UUID `gorm:"type:uuid"`

	Notes string `gorm:"type:text"`

	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (RecurringDonation) TableName() string {
	return "recurring_donations"
}
