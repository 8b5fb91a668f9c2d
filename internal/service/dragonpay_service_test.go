package service

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/GTDGit/gtd_dragonpay/internal/cache"
	"github.com/GTDGit/gtd_dragonpay/internal/utils"
	"github.com/GTDGit/gtd_dragonpay/pkg/dragonpay"
)

type gatewayStub struct {
	mu     sync.Mutex
	status string
	void   string
	calls  atomic.Int32
}

func (g *gatewayStub) set(status, void string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.status, g.void = status, void
}

func (g *gatewayStub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	g.calls.Add(1)
	g.mu.Lock()
	status, void := g.status, g.void
	g.mu.Unlock()
	switch r.URL.Query().Get("op") {
	case dragonpay.OpGetStatus:
		_, _ = w.Write([]byte(status))
	case dragonpay.OpVoid:
		_, _ = w.Write([]byte(void))
	default:
		http.Error(w, "bad op", http.StatusBadRequest)
	}
}

type serviceFixture struct {
	svc       *DragonpayService
	trx       *fakeTrxStore
	postbacks *fakePostbackStore
	cache     *fakeCache
	stub      *gatewayStub
}

func newServiceFixture(t *testing.T) *serviceFixture {
	t.Helper()
	stub := &gatewayStub{status: "P", void: "0"}
	srv := httptest.NewServer(stub)
	t.Cleanup(srv.Close)

	gw := dragonpay.NewTransaction(dragonpay.NewClient("MERCHANT1", "s3cret", dragonpay.WithBaseURL(srv.URL)))
	f := &serviceFixture{
		trx:       newFakeTrxStore(),
		postbacks: &fakePostbackStore{},
		cache:     newFakeCache(),
		stub:      stub,
	}
	f.svc = NewDragonpayService(gw, f.trx, f.postbacks, f.cache, true)
	return f
}

func (f *serviceFixture) createPayment(t *testing.T, txnID string) {
	t.Helper()
	_, _, err := f.svc.CreatePayment(context.Background(), dragonpay.PaymentRequest{
		TransactionID: txnID,
		Amount:        250.5,
		Description:   "Test order",
		Email:         "buyer@example.com",
	})
	require.NoError(t, err)
}

func sign(parts string) string {
	sum := sha1.Sum([]byte(parts))
	return hex.EncodeToString(sum[:])
}

func TestCreatePayment(t *testing.T) {
	f := newServiceFixture(t)

	trx, payURL, err := f.svc.CreatePayment(context.Background(), dragonpay.PaymentRequest{
		TransactionID: "TXN1",
		Amount:        100,
		Email:         "buyer@example.com",
	})
	require.NoError(t, err)
	require.Contains(t, payURL, "Pay.aspx?")
	require.Equal(t, "pending", trx.Status)
	require.Equal(t, "PHP", trx.Currency)
	require.True(t, trx.IsSandbox)

	_, _, err = f.svc.CreatePayment(context.Background(), dragonpay.PaymentRequest{
		TransactionID: "TXN1",
		Amount:        100,
		Email:         "buyer@example.com",
	})
	require.ErrorIs(t, err, utils.ErrDuplicateTransactionID)

	_, _, err = f.svc.CreatePayment(context.Background(), dragonpay.PaymentRequest{TransactionID: "TXN2"})
	require.ErrorIs(t, err, dragonpay.ErrInvalidPaymentRequest)
}

func TestCheckStatusUsesCache(t *testing.T) {
	f := newServiceFixture(t)
	f.createPayment(t, "TXN1")
	f.stub.set("S", "0")

	res, err := f.svc.CheckStatus(context.Background(), "TXN1")
	require.NoError(t, err)
	require.Equal(t, "success", res.Status)
	require.EqualValues(t, 1, f.stub.calls.Load())

	res, err = f.svc.CheckStatus(context.Background(), "TXN1")
	require.NoError(t, err)
	require.Equal(t, "success", res.Status)
	require.EqualValues(t, 1, f.stub.calls.Load())

	stored, err := f.svc.GetTransaction("TXN1")
	require.NoError(t, err)
	require.Equal(t, "success", stored.Status)
	require.Equal(t, 1, stored.CheckCount)
}

func TestRefreshStatusUnrecognizedCode(t *testing.T) {
	f := newServiceFixture(t)
	f.createPayment(t, "TXN1")
	f.stub.set("Q", "0")

	res, err := f.svc.RefreshStatus(context.Background(), "TXN1")
	require.NoError(t, err)
	require.Equal(t, "Q", res.Code)
	require.Empty(t, res.Status)

	stored, err := f.svc.GetTransaction("TXN1")
	require.NoError(t, err)
	require.Equal(t, "pending", stored.Status)
	_, err = f.cache.Get(context.Background(), "TXN1")
	require.Error(t, err)
}

func TestCancel(t *testing.T) {
	f := newServiceFixture(t)
	f.createPayment(t, "TXN1")

	res, err := f.svc.Cancel(context.Background(), "TXN1")
	require.NoError(t, err)
	require.Equal(t, "success", res.Status)

	stored, err := f.svc.GetTransaction("TXN1")
	require.NoError(t, err)
	require.Equal(t, "void", stored.Status)

	_, err = f.svc.Cancel(context.Background(), "TXN1")
	require.ErrorIs(t, err, utils.ErrTransactionFinal)

	_, err = f.svc.Cancel(context.Background(), "MISSING")
	require.ErrorIs(t, err, utils.ErrTransactionNotFound)
}

func TestCancelRejectedByGateway(t *testing.T) {
	f := newServiceFixture(t)
	f.createPayment(t, "TXN1")
	f.stub.set("P", "-1")

	res, err := f.svc.Cancel(context.Background(), "TXN1")
	require.NoError(t, err)
	require.Equal(t, "failed", res.Status)

	stored, err := f.svc.GetTransaction("TXN1")
	require.NoError(t, err)
	require.Equal(t, "pending", stored.Status)
}

func TestHandlePostback(t *testing.T) {
	f := newServiceFixture(t)
	f.createPayment(t, "TXN1")
	require.NoError(t, f.cache.Set(context.Background(), &cache.StatusEntry{TransactionID: "TXN1", Code: "P", Status: "pending"}))

	p := dragonpay.Postback{TxnID: "TXN1", RefNo: "REF1", Status: "S", Message: "paid"}
	p.Digest = sign("TXN1:REF1:S:paid:s3cret")

	require.NoError(t, f.svc.HandlePostback(context.Background(), p))

	stored, err := f.svc.GetTransaction("TXN1")
	require.NoError(t, err)
	require.Equal(t, "success", stored.Status)
	require.Equal(t, "REF1", *stored.RefNo)

	_, err = f.cache.Get(context.Background(), "TXN1")
	require.Error(t, err)

	logged, err := f.svc.ListPostbacks("TXN1")
	require.NoError(t, err)
	require.Len(t, logged, 1)
	require.True(t, logged[0].IsValid)
}

func TestHandlePostbackInvalidDigest(t *testing.T) {
	f := newServiceFixture(t)
	f.createPayment(t, "TXN1")

	p := dragonpay.Postback{TxnID: "TXN1", RefNo: "REF1", Status: "S", Message: "paid", Digest: "wrongdigest"}
	require.ErrorIs(t, f.svc.HandlePostback(context.Background(), p), utils.ErrInvalidDigest)

	stored, err := f.svc.GetTransaction("TXN1")
	require.NoError(t, err)
	require.Equal(t, "pending", stored.Status)

	logged, err := f.svc.ListPostbacks("TXN1")
	require.NoError(t, err)
	require.Len(t, logged, 1)
	require.False(t, logged[0].IsValid)
}

func TestHandlePostbackUnknownTransaction(t *testing.T) {
	f := newServiceFixture(t)

	p := dragonpay.Postback{TxnID: "NOPE", RefNo: "REF1", Status: "F", Message: "x"}
	p.Digest = sign("NOPE:REF1:F:x:s3cret")
	require.ErrorIs(t, f.svc.HandlePostback(context.Background(), p), utils.ErrTransactionNotFound)
}

func TestHandlePostbackUnrecognizedStatus(t *testing.T) {
	f := newServiceFixture(t)
	f.createPayment(t, "TXN1")

	p := dragonpay.Postback{TxnID: "TXN1", RefNo: "REF1", Status: "Z", Message: "x"}
	p.Digest = sign("TXN1:REF1:Z:x:s3cret")
	require.NoError(t, f.svc.HandlePostback(context.Background(), p))

	stored, err := f.svc.GetTransaction("TXN1")
	require.NoError(t, err)
	require.Equal(t, "pending", stored.Status)
}

func TestExpireTransaction(t *testing.T) {
	f := newServiceFixture(t)
	f.createPayment(t, "TXN1")

	require.NoError(t, f.svc.ExpireTransaction(context.Background(), "TXN1"))
	stored, err := f.svc.GetTransaction("TXN1")
	require.NoError(t, err)
	require.Equal(t, "failure", stored.Status)
	require.Equal(t, expiredMessage, *stored.Message)
}

func TestNotifierReceivesChanges(t *testing.T) {
	f := newServiceFixture(t)
	n := &recordingNotifier{}
	f.svc.SetNotifier(n)

	f.createPayment(t, "TXN1")

	// Unchanged pending status is not announced.
	_, err := f.svc.RefreshStatus(context.Background(), "TXN1")
	require.NoError(t, err)

	f.stub.set("S", "0")
	_, err = f.svc.RefreshStatus(context.Background(), "TXN1")
	require.NoError(t, err)

	require.Equal(t, []string{"TXN1"}, n.created)
	require.Equal(t, []string{"TXN1:success"}, n.changed)
}

func TestLatePostbackKeepsSettledStatus(t *testing.T) {
	f := newServiceFixture(t)
	n := &recordingNotifier{}
	f.svc.SetNotifier(n)
	f.createPayment(t, "TXN1")

	paid := dragonpay.Postback{TxnID: "TXN1", RefNo: "REF1", Status: "S", Message: "paid"}
	paid.Digest = sign("TXN1:REF1:S:paid:s3cret")
	require.NoError(t, f.svc.HandlePostback(context.Background(), paid))

	late := dragonpay.Postback{TxnID: "TXN1", RefNo: "REF1", Status: "P", Message: "waiting"}
	late.Digest = sign("TXN1:REF1:P:waiting:s3cret")
	require.NoError(t, f.svc.HandlePostback(context.Background(), late))

	stored, err := f.svc.GetTransaction("TXN1")
	require.NoError(t, err)
	require.Equal(t, "success", stored.Status)
	require.Equal(t, "paid", *stored.Message)
	require.Equal(t, []string{"TXN1:success"}, n.changed)

	refund := dragonpay.Postback{TxnID: "TXN1", RefNo: "REF1", Status: "R", Message: "refunded"}
	refund.Digest = sign("TXN1:REF1:R:refunded:s3cret")
	require.NoError(t, f.svc.HandlePostback(context.Background(), refund))

	stored, err = f.svc.GetTransaction("TXN1")
	require.NoError(t, err)
	require.Equal(t, "refund", stored.Status)
}

func TestExpireTransactionSkipsSettled(t *testing.T) {
	f := newServiceFixture(t)
	n := &recordingNotifier{}
	f.svc.SetNotifier(n)
	f.createPayment(t, "TXN1")

	paid := dragonpay.Postback{TxnID: "TXN1", RefNo: "REF1", Status: "S", Message: "paid"}
	paid.Digest = sign("TXN1:REF1:S:paid:s3cret")
	require.NoError(t, f.svc.HandlePostback(context.Background(), paid))

	require.NoError(t, f.svc.ExpireTransaction(context.Background(), "TXN1"))

	stored, err := f.svc.GetTransaction("TXN1")
	require.NoError(t, err)
	require.Equal(t, "success", stored.Status)
	require.Equal(t, []string{"TXN1:success"}, n.changed)
}

func TestRefreshStatusKeepsSettledStatus(t *testing.T) {
	f := newServiceFixture(t)
	f.createPayment(t, "TXN1")
	f.stub.set("S", "0")
	_, err := f.svc.RefreshStatus(context.Background(), "TXN1")
	require.NoError(t, err)

	f.stub.set("F", "0")
	res, err := f.svc.RefreshStatus(context.Background(), "TXN1")
	require.NoError(t, err)
	require.Equal(t, "failure", res.Status)

	stored, err := f.svc.GetTransaction("TXN1")
	require.NoError(t, err)
	require.Equal(t, "success", stored.Status)
}
