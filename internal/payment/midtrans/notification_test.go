package midtrans

import (
	"crypto/sha512"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"

	"podcast-storefront/internal/payment"
)

func signed(n Notification, key string) Notification {
	sum := sha512.Sum512([]byte(n.OrderID + n.StatusCode + n.GrossAmount + key))
	n.SignatureKey = hex.EncodeToString(sum[:])
	return n
}

func TestNotificationVerify(t *testing.T) {
	n := signed(Notification{OrderID: "FB-1", StatusCode: "200", GrossAmount: "255300.00"}, "server-key")
	assert.NoError(t, n.Verify("server-key"))
	assert.ErrorIs(t, n.Verify("other-key"), ErrBadSignature)

	n.GrossAmount = "1.00"
	assert.ErrorIs(t, n.Verify("server-key"), ErrBadSignature)
}

func TestNotificationResult(t *testing.T) {
	cases := []struct {
		status, fraud string
		want          payment.Outcome
		ok            bool
	}{
		{"settlement", "", payment.OutcomeSettled, true},
		{"capture", "accept", payment.OutcomeSettled, true},
		{"capture", "challenge", "", false},
		{"pending", "", payment.OutcomePending, true},
		{"deny", "", payment.OutcomeError, true},
		{"cancel", "", payment.OutcomeError, true},
		{"expire", "", payment.OutcomeError, true},
		{"failure", "", payment.OutcomeError, true},
		{"authorize", "", "", false},
	}
	for _, tc := range cases {
		res, ok := Notification{TransactionStatus: tc.status, FraudStatus: tc.fraud}.Result()
		assert.Equal(t, tc.ok, ok, tc.status)
		if tc.ok {
			assert.Equal(t, tc.want, res.Outcome, tc.status)
			assert.Equal(t, tc.status, res.TransactionStatus)
		}
	}
}
