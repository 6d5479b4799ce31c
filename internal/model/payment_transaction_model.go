package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type PaymentTransaction struct {
	Id                   uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	DonationId           uuid.UUID      `gorm:"type:uuid;not null;index"`
	GatewayTransactionId string         `gorm:"type:varchar(255);index"`
	GatewayName          string         `gorm:"type:varchar(50);not null"`
	AmountCents          int64          `gorm:"not null"`
	Currency             string         `gorm:"type:varchar(3);not null"`
	Status               string         `gorm:"type:varchar(50);not null"`
	Type                 string         `gorm:"type:varchar(20);not null"`
	RawResponse          datatypes.JSON `gorm:"type:jsonb"`
	CreatedAt            time.Time      `gorm:"autoCreateTime"`
}

func (PaymentTransaction) TableName() string {
	return "payment_transactions"
}
