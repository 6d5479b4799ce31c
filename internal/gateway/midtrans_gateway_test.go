package gateway

import (
	"context"
	"crypto/sha512"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func midtransNotification(t *testing.T, serverKey, orderId, status string) []byte {
	t.Helper()
	statusCode := "200"
	grossAmount := "50.00"
	signature := fmt.Sprintf("%x", sha512.Sum512([]byte(orderId+statusCode+grossAmount+serverKey)))

	payload, err := json.Marshal(map[string]string{
		"transaction_id":     "mt-123",
		"order_id":           orderId,
		"status_code":        statusCode,
		"gross_amount":       grossAmount,
		"transaction_status": status,
		"signature_key":      signature,
	})
	require.NoError(t, err)
	return payload
}

func TestMidtransVerifyCallback(t *testing.T) {
	g := NewMidtransGateway("server-key", false)

	valid := midtransNotification(t, "server-key", "order-1", "settlement")
	assert.True(t, g.VerifyCallback(valid, ""))

	forged := midtransNotification(t, "wrong-key", "order-1", "settlement")
	assert.False(t, g.VerifyCallback(forged, ""))

	assert.False(t, g.VerifyCallback([]byte(`{"order_id":"x"}`), ""), "missing signature is rejected")
	assert.False(t, g.VerifyCallback([]byte(`not json`), ""))
}

func TestMidtransParseCallbackStatusMapping(t *testing.T) {
	g := NewMidtransGateway("server-key", false)

	cases := []struct {
		status string
		want   CallbackEventType
	}{
		{"capture", EventPaymentSucceeded},
		{"settlement", EventPaymentSucceeded},
		{"deny", EventPaymentFailed},
		{"cancel", EventPaymentFailed},
		{"expire", EventPaymentFailed},
		{"refund", EventRefundSucceeded},
		{"partial_refund", EventRefundPartial},
		{"pending", EventIgnored},
		{"something_new", EventIgnored},
	}

	for _, tc := range cases {
		t.Run(tc.status, func(t *testing.T) {
			payload := midtransNotification(t, "server-key", "order-1", tc.status)
			event, err := g.ParseCallback(payload)
			require.NoError(t, err)
			assert.Equal(t, tc.want, event.Type)
			assert.Equal(t, "mt-123", event.TransactionId)
			assert.Equal(t, "order-1", event.OrderId)
			assert.Equal(t, tc.status, event.RawStatus)
		})
	}
}

func TestMidtransParseCallbackRefundAmount(t *testing.T) {
	g := NewMidtransGateway("server-key", false)

	payload, err := json.Marshal(map[string]string{
		"transaction_id":     "mt-123",
		"order_id":           "order-1",
		"transaction_status": "partial_refund",
		"refund_amount":      "40.00",
	})
	require.NoError(t, err)

	event, err := g.ParseCallback(payload)
	require.NoError(t, err)
	assert.Equal(t, EventRefundPartial, event.Type)
	assert.Equal(t, int64(4000), event.RefundedCents)
}

func TestMidtransRejectsFractionalMajorAmounts(t *testing.T) {
	g := NewMidtransGateway("server-key", false)

	_, err := g.Charge(context.Background(), &ChargeRequest{
		OrderId:     "order-1",
		AmountCents: 12345,
		Currency:    "IDR",
	})
	var gwErr *GatewayError
	require.ErrorAs(t, err, &gwErr)
	assert.Equal(t, "invalid_amount", gwErr.Code)
	assert.False(t, gwErr.Transient)

	_, err = g.Refund(context.Background(), "mt-123", 2050, "overpayment")
	require.ErrorAs(t, err, &gwErr)
	assert.Equal(t, "invalid_amount", gwErr.Code)
}

func TestMidtransParseCallbackMalformed(t *testing.T) {
	g := NewMidtransGateway("server-key", false)
	_, err := g.ParseCallback([]byte(`{broken`))
	assert.Error(t, err)
}
