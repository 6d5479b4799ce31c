package entity

import (
	"time"

	"github.com/google/uuid"
)

// Member is the read-only contributor directory entry consumed by the
// giving engine. Member CRUD lives elsewhere.
type Member struct {
	Id                uuid.UUID
	FullName          string
	Email             string
	GatewayCustomerId *string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

type DesignationKind string

const (
	DesignationCategory DesignationKind = "category"
	DesignationProject  DesignationKind = "project"
	DesignationCampaign DesignationKind = "campaign"
)

// Designation is a giving target (category, project or campaign) used for
// receipt labels and running-total roll-ups.
type Designation struct {
	Id          uuid.UUID
	Kind        DesignationKind
	Name        string
	RaisedCents int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
