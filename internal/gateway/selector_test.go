package gateway

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectorClosedSet(t *testing.T) {
	selector := NewSelector(
		NewMidtransGateway("key", false),
		NewXenditGateway("key", "https://api.xendit.co", "token"),
	)

	g, err := selector.Select(GatewayMidtrans)
	require.NoError(t, err)
	assert.Equal(t, GatewayMidtrans, g.Name())

	g, err = selector.Select(GatewayXendit)
	require.NoError(t, err)
	assert.Equal(t, GatewayXendit, g.Name())

	_, err = selector.Select("paypal")
	assert.ErrorIs(t, err, ErrUnsupportedGateway)

	assert.ElementsMatch(t, []string{GatewayMidtrans, GatewayXendit}, selector.Names())
}

func TestXenditVerifyCallbackToken(t *testing.T) {
	g := NewXenditGateway("secret", "https://api.xendit.co", "cb-token")

	assert.True(t, g.VerifyCallback(nil, "cb-token"))
	assert.False(t, g.VerifyCallback(nil, "wrong"))
	assert.False(t, g.VerifyCallback(nil, ""))

	unconfigured := NewXenditGateway("secret", "https://api.xendit.co", "")
	assert.False(t, unconfigured.VerifyCallback(nil, ""), "no configured token rejects everything")
}
