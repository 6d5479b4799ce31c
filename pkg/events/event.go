package events

import "time"

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g. "DONATION_COMPLETED").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

// Event type codes published by the giving engine.
const (
	TypeDonationCompleted = "DONATION_COMPLETED"
	TypeDonationFailed    = "DONATION_FAILED"
	TypeDonationRefunded  = "DONATION_REFUNDED"
	TypePledgeCanceled    = "PLEDGE_CANCELED"
	TypeReceiptIssued     = "RECEIPT_ISSUED"
)
