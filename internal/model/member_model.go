package model

import (
	"time"

	"github.com/google/uuid"
)

type Member struct {
	Id                uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	FullName          string    `gorm:"type:varchar(255);not null"`
	Email             string    `gorm:"type:varchar(255);index"`
	GatewayCustomerId *string   `gorm:"type:varchar(255)"`
	CreatedAt         time.Time `gorm:"autoCreateTime"`
	UpdatedAt         time.Time `gorm:"autoUpdateTime"`
}

func (Member) TableName() string {
	return "members"
}

type Designation struct {
	Id          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Kind        string    `gorm:"type:varchar(20);not null;index"`
	Name        string    `gorm:"type:varchar(255);not null"`
	RaisedCents int64     `gorm:"not null;default:0"`
	CreatedAt   time.Time `gorm:"autoCreateTime"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime"`
}

func (Designation) TableName() string {
	return "designations"
}
