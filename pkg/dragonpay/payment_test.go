package dragonpay

import (
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPaymentURL(t *testing.T) {
	trx := newTestTransaction(WithSandbox())

	raw, err := trx.PaymentURL(PaymentRequest{
		TransactionID: "TXN1",
		Amount:        1500,
		Description:   "Order #1",
		Email:         "buyer@example.com",
	})
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(raw, SandboxBaseURL+"Pay.aspx?"))

	u, err := url.Parse(raw)
	require.NoError(t, err)
	q := u.Query()
	require.Equal(t, "1500.00", q.Get("amount"))
	require.Equal(t, "PHP", q.Get("ccy"))
	require.Equal(t, "Order #1", q.Get("description"))
	require.Equal(t,
		sha1hex("MERCHANT1:TXN1:1500.00:PHP:Order #1:buyer@example.com:s3cret"),
		q.Get("digest"),
	)
	require.Empty(t, q.Get("merchantpwd"))
}

func TestPaymentURLValidation(t *testing.T) {
	trx := newTestTransaction()
	cases := []PaymentRequest{
		{Amount: 1, Email: "a@b.c"},
		{TransactionID: "T", Amount: 0, Email: "a@b.c"},
		{TransactionID: "T", Amount: -5, Email: "a@b.c"},
		{TransactionID: "T", Amount: 1},
	}
	for _, req := range cases {
		_, err := trx.PaymentURL(req)
		require.ErrorIs(t, err, ErrInvalidPaymentRequest)
	}
}

func TestPostbackVerification(t *testing.T) {
	trx := newTestTransaction()
	p := Postback{TxnID: "TXN1", RefNo: "REF9", Status: "S", Message: "paid"}
	p.Digest = sha1hex("TXN1:REF9:S:paid:s3cret")

	require.Equal(t, "TXN1:REF9:S:paid:s3cret", trx.SignedMessage(p))
	require.True(t, trx.VerifyPostback(p))
	require.True(t, trx.IsSuccessfulPostback(p))

	pending := p
	pending.Status = "P"
	pending.Digest = sha1hex("TXN1:REF9:P:paid:s3cret")
	require.True(t, trx.VerifyPostback(pending))
	require.False(t, trx.IsSuccessfulPostback(pending))

	tampered := p
	tampered.Message = "changed"
	require.False(t, trx.VerifyPostback(tampered))
	require.False(t, trx.IsSuccessfulPostback(tampered))
}

func TestStatusClassification(t *testing.T) {
	require.True(t, IsSuccessStatus(StatusSuccess))
	require.True(t, IsPendingStatus(StatusPending))
	require.True(t, IsPendingStatus(StatusAuthorized))
	require.False(t, IsPendingStatus(StatusVoid))
	require.True(t, IsFinalStatus(StatusVoid))
	require.True(t, IsFinalStatus(StatusRefund))
	require.False(t, IsFinalStatus(StatusPending))
	require.False(t, IsFinalStatus(""))
	require.False(t, IsFinalStatus("bogus"))
}
