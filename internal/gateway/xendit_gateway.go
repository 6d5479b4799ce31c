package gateway

import (
	"bytes"
	"context"
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const GatewayXendit = "xendit"

// XenditGateway drives e-wallet charges through the Xendit REST API.
type XenditGateway struct {
	httpClient    *http.Client
	secretKey     string
	baseURL       string
	callbackToken string
}

func NewXenditGateway(secretKey, baseURL, callbackToken string) *XenditGateway {
	return &XenditGateway{
		httpClient:    &http.Client{Timeout: 10 * time.Second},
		secretKey:     secretKey,
		baseURL:       baseURL,
		callbackToken: callbackToken,
	}
}

func (g *XenditGateway) Name() string {
	return GatewayXendit
}

type xenditChargeRequest struct {
	ReferenceID    string  `json:"reference_id"`
	Currency       string  `json:"currency"`
	Amount         float64 `json:"amount"`
	CheckoutMethod string  `json:"checkout_method"`
	ChannelCode    string  `json:"channel_code"`
}

type xenditChargeResponse struct {
	ID          string `json:"id"`
	ReferenceID string `json:"reference_id"`
	Status      string `json:"status"`
}

func (g *XenditGateway) Charge(ctx context.Context, req *ChargeRequest) (*ChargeResult, error) {
	body := xenditChargeRequest{
		ReferenceID:    req.OrderId,
		Currency:       req.Currency,
		Amount:         float64(req.AmountCents) / 100, // Xendit takes major units
		CheckoutMethod: "ONE_TIME_PAYMENT",
		ChannelCode:    req.PaymentMethod,
	}

	var resp xenditChargeResponse
	if err := g.post(ctx, "/ewallets/charges", body, &resp); err != nil {
		return nil, err
	}

	raw, _ := json.Marshal(resp)
	return &ChargeResult{
		TransactionId: resp.ID,
		Status:        mapXenditStatus(resp.Status),
		Raw:           raw,
	}, nil
}

func (g *XenditGateway) Refund(ctx context.Context, transactionId string, amountCents int64, reason string) (*RefundResult, error) {
	body := map[string]interface{}{
		"amount": float64(amountCents) / 100,
		"reason": reason,
	}

	var resp struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	path := fmt.Sprintf("/ewallets/charges/%s/refunds", transactionId)
	if err := g.post(ctx, path, body, &resp); err != nil {
		return nil, err
	}

	raw, _ := json.Marshal(resp)
	return &RefundResult{
		RefundId: resp.ID,
		Status:   resp.Status,
		Raw:      raw,
	}, nil
}

// VerifyCallback compares the x-callback-token header Xendit sends with
// every webhook against the configured verification token.
func (g *XenditGateway) VerifyCallback(_ []byte, signatureHeader string) bool {
	if g.callbackToken == "" || signatureHeader == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(g.callbackToken), []byte(signatureHeader)) == 1
}

func (g *XenditGateway) ParseCallback(rawPayload []byte) (*CallbackEvent, error) {
	var body struct {
		Event string `json:"event"`
		Data  struct {
			ID          string `json:"id"`
			ReferenceID string `json:"reference_id"`
			Status      string `json:"status"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rawPayload, &body); err != nil {
		return nil, fmt.Errorf("malformed xendit callback: %w", err)
	}

	evt := &CallbackEvent{
		TransactionId: body.Data.ID,
		OrderId:       body.Data.ReferenceID,
		RawStatus:     body.Data.Status,
	}
	switch body.Data.Status {
	case "SUCCEEDED":
		evt.Type = EventPaymentSucceeded
	case "FAILED", "VOIDED":
		evt.Type = EventPaymentFailed
	case "REFUNDED":
		evt.Type = EventRefundSucceeded
	default:
		evt.Type = EventIgnored
	}
	return evt, nil
}

func (g *XenditGateway) FetchStatus(ctx context.Context, transactionId string) (*StatusSnapshot, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"/ewallets/charges/"+transactionId, nil)
	if err != nil {
		return nil, err
	}
	req.SetBasicAuth(g.secretKey, "")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, &GatewayError{Transient: true, Code: "network", Message: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, g.apiError(resp)
	}

	var status xenditChargeResponse
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return nil, err
	}
	return &StatusSnapshot{
		TransactionId: status.ID,
		Status:        mapXenditStatus(status.Status),
	}, nil
}

func (g *XenditGateway) CancelSubscription(ctx context.Context, subscriptionId string) error {
	path := fmt.Sprintf("/recurring_payments/%s/cancel", subscriptionId)
	return g.post(ctx, path, map[string]interface{}{}, &struct{}{})
}

func (g *XenditGateway) post(ctx context.Context, path string, body interface{}, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+path, bytes.NewBuffer(payload))
	if err != nil {
		return err
	}
	req.SetBasicAuth(g.secretKey, "")
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return &GatewayError{Transient: true, Code: "network", Message: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return g.apiError(resp)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (g *XenditGateway) apiError(resp *http.Response) error {
	msg, _ := io.ReadAll(resp.Body)
	return &GatewayError{
		Transient: resp.StatusCode >= 500,
		Code:      fmt.Sprintf("http_%d", resp.StatusCode),
		Message:   string(msg),
	}
}

func mapXenditStatus(status string) ChargeStatus {
	switch status {
	case "SUCCEEDED":
		return ChargeStatusSucceeded
	case "PENDING":
		return ChargeStatusPending
	default:
		return ChargeStatusFailed
	}
}
