package gateway

import (
	"context"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/coreapi"
)

const GatewayMidtrans = "midtrans"

// MidtransGateway drives charges through the Midtrans Core API.
type MidtransGateway struct {
	client    coreapi.Client
	serverKey string
}

func NewMidtransGateway(serverKey string, isProduction bool) *MidtransGateway {
	env := midtrans.Sandbox
	if isProduction {
		env = midtrans.Production
	}
	var client coreapi.Client
	client.New(serverKey, env)
	return &MidtransGateway{
		client:    client,
		serverKey: serverKey,
	}
}

func (g *MidtransGateway) Name() string {
	return GatewayMidtrans
}

func (g *MidtransGateway) Charge(ctx context.Context, req *ChargeRequest) (*ChargeResult, error) {
	// Midtrans takes whole major units. A fractional major amount would
	// be silently truncated by the division, so it is rejected instead.
	if req.AmountCents%100 != 0 {
		return nil, &GatewayError{
			Code:    "invalid_amount",
			Message: fmt.Sprintf("amount %d minor units is not a whole major unit", req.AmountCents),
		}
	}

	chargeReq := &coreapi.ChargeReq{
		PaymentType: coreapi.CoreapiPaymentType(req.PaymentMethod),
		TransactionDetails: midtrans.TransactionDetails{
			OrderID:  req.OrderId,
			GrossAmt: req.AmountCents / 100,
		},
		CustomerDetails: &midtrans.CustomerDetails{
			FName: req.CustomerName,
			Email: req.CustomerEmail,
		},
	}
	if req.PaymentToken != "" {
		chargeReq.CreditCard = &coreapi.CreditCardDetails{
			TokenID: req.PaymentToken,
		}
	}

	resp, midErr := g.client.ChargeTransaction(chargeReq)
	if midErr != nil {
		return nil, &GatewayError{
			Transient: midErr.StatusCode >= 500,
			Code:      strconv.Itoa(midErr.StatusCode),
			Message:   midErr.GetMessage(),
		}
	}

	raw, _ := json.Marshal(resp)
	return &ChargeResult{
		TransactionId: resp.TransactionID,
		Status:        mapMidtransStatus(resp.TransactionStatus),
		Raw:           raw,
	}, nil
}

func (g *MidtransGateway) Refund(ctx context.Context, transactionId string, amountCents int64, reason string) (*RefundResult, error) {
	// Same whole-major-unit rule as Charge.
	if amountCents%100 != 0 {
		return nil, &GatewayError{
			Code:    "invalid_amount",
			Message: fmt.Sprintf("refund amount %d minor units is not a whole major unit", amountCents),
		}
	}

	resp, midErr := g.client.RefundTransaction(transactionId, &coreapi.RefundReq{
		Amount: amountCents / 100,
		Reason: reason,
	})
	if midErr != nil {
		return nil, &GatewayError{
			Transient: midErr.StatusCode >= 500,
			Code:      strconv.Itoa(midErr.StatusCode),
			Message:   midErr.GetMessage(),
		}
	}

	raw, _ := json.Marshal(resp)
	return &RefundResult{
		RefundId: resp.TransactionID,
		Status:   resp.StatusMessage,
		Raw:      raw,
	}, nil
}

// VerifyCallback checks the Midtrans notification signature:
// SHA512(order_id + status_code + gross_amount + server_key). The
// signature travels inside the payload, not in a header.
func (g *MidtransGateway) VerifyCallback(rawPayload []byte, _ string) bool {
	var body struct {
		OrderId      string `json:"order_id"`
		StatusCode   string `json:"status_code"`
		GrossAmount  string `json:"gross_amount"`
		SignatureKey string `json:"signature_key"`
	}
	if err := json.Unmarshal(rawPayload, &body); err != nil {
		return false
	}
	if body.SignatureKey == "" {
		return false
	}

	input := body.OrderId + body.StatusCode + body.GrossAmount + g.serverKey
	expected := fmt.Sprintf("%x", sha512.Sum512([]byte(input)))
	return subtle.ConstantTimeCompare([]byte(expected), []byte(body.SignatureKey)) == 1
}

func (g *MidtransGateway) ParseCallback(rawPayload []byte) (*CallbackEvent, error) {
	var body struct {
		TransactionId     string `json:"transaction_id"`
		OrderId           string `json:"order_id"`
		TransactionStatus string `json:"transaction_status"`
		RefundAmount      string `json:"refund_amount"`
	}
	if err := json.Unmarshal(rawPayload, &body); err != nil {
		return nil, fmt.Errorf("malformed midtrans notification: %w", err)
	}

	evt := &CallbackEvent{
		TransactionId: body.TransactionId,
		OrderId:       body.OrderId,
		RawStatus:     body.TransactionStatus,
	}
	switch body.TransactionStatus {
	case "capture", "settlement":
		evt.Type = EventPaymentSucceeded
	case "deny", "cancel", "expire":
		evt.Type = EventPaymentFailed
	case "refund":
		evt.Type = EventRefundSucceeded
		evt.RefundedCents = midtransAmountCents(body.RefundAmount)
	case "partial_refund":
		evt.Type = EventRefundPartial
		evt.RefundedCents = midtransAmountCents(body.RefundAmount)
	default:
		// "pending" and anything unrecognized: acknowledge, do nothing.
		evt.Type = EventIgnored
	}
	return evt, nil
}

// midtransAmountCents parses a Midtrans decimal amount string ("40.00")
// into minor units. Missing or unparseable amounts come back as 0.
func midtransAmountCents(s string) int64 {
	if s == "" {
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return int64(math.Round(f * 100))
}

func (g *MidtransGateway) FetchStatus(ctx context.Context, transactionId string) (*StatusSnapshot, error) {
	resp, midErr := g.client.CheckTransaction(transactionId)
	if midErr != nil {
		return nil, &GatewayError{
			Transient: midErr.StatusCode >= 500,
			Code:      strconv.Itoa(midErr.StatusCode),
			Message:   midErr.GetMessage(),
		}
	}
	return &StatusSnapshot{
		TransactionId: resp.TransactionID,
		Status:        mapMidtransStatus(resp.TransactionStatus),
	}, nil
}

func (g *MidtransGateway) CancelSubscription(ctx context.Context, subscriptionId string) error {
	_, midErr := g.client.DisableSubscription(subscriptionId)
	if midErr != nil {
		return &GatewayError{
			Transient: midErr.StatusCode >= 500,
			Code:      strconv.Itoa(midErr.StatusCode),
			Message:   midErr.GetMessage(),
		}
	}
	return nil
}

func mapMidtransStatus(status string) ChargeStatus {
	switch status {
	case "capture", "settlement":
		return ChargeStatusSucceeded
	case "pending":
		return ChargeStatusPending
	default:
		return ChargeStatusFailed
	}
}
