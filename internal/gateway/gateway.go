package gateway

import (
	"context"
	"fmt"
)

// ChargeStatus is the gateway-reported outcome of a charge, normalized
// across processors.
type ChargeStatus string

const (
	ChargeStatusSucceeded ChargeStatus = "succeeded"
	ChargeStatusPending   ChargeStatus = "pending"
	ChargeStatusFailed    ChargeStatus = "failed"
)

// CallbackEventType categorizes inbound processor notifications. Anything
// outside the recognized set maps to EventIgnored and is acknowledged
// without state changes.
type CallbackEventType string

const (
	EventPaymentSucceeded CallbackEventType = "payment_succeeded"
	EventPaymentFailed    CallbackEventType = "payment_failed"
	EventRefundSucceeded  CallbackEventType = "refund_succeeded"
	EventRefundPartial    CallbackEventType = "refund_partial"
	EventIgnored          CallbackEventType = "ignored"
)

type ChargeRequest struct {
	OrderId       string // local donation id, echoed back by the processor
	AmountCents   int64
	Currency      string
	Description   string
	PaymentMethod string
	CustomerName  string
	CustomerEmail string
	CustomerId    string // processor-side customer id, if enrolled
	PaymentToken  string // saved instrument token for off-session charges
}

type ChargeResult struct {
	TransactionId string
	Status        ChargeStatus
	Raw           []byte
}

type RefundResult struct {
	RefundId string
	Status   string
	Raw      []byte
}

type StatusSnapshot struct {
	TransactionId string
	Status        ChargeStatus
}

// CallbackEvent is the parsed, already-verified content of a processor
// notification.
type CallbackEvent struct {
	Type          CallbackEventType
	TransactionId string
	OrderId       string
	RawStatus     string

	// RefundedCents is the cumulative refunded amount the processor
	// reports with refund notifications, in minor units. 0 when the
	// notification carries no amount.
	RefundedCents int64
}

// PaymentGateway is implemented once per external processor. Side effects
// are confined to the network call; implementations never touch storage.
type PaymentGateway interface {
	Name() string
	Charge(ctx context.Context, req *ChargeRequest) (*ChargeResult, error)
	Refund(ctx context.Context, transactionId string, amountCents int64, reason string) (*RefundResult, error)

	// VerifyCallback must reject unsigned or mis-signed payloads. No field
	// of the payload may be trusted before this returns true.
	VerifyCallback(rawPayload []byte, signatureHeader string) bool
	ParseCallback(rawPayload []byte) (*CallbackEvent, error)

	FetchStatus(ctx context.Context, transactionId string) (*StatusSnapshot, error)

	// CancelSubscription is best-effort; pledge deactivation does not
	// depend on it succeeding.
	CancelSubscription(ctx context.Context, subscriptionId string) error
}

// GatewayError wraps a processor or network failure. Transient errors are
// retried on the next scheduled cycle; permanent ones are not.
type GatewayError struct {
	Transient bool
	Code      string
	Message   string
}

func (e *GatewayError) Error() string {
	kind := "permanent"
	if e.Transient {
		kind = "transient"
	}
	return fmt.Sprintf("gateway %s error (%s): %s", kind, e.Code, e.Message)
}
