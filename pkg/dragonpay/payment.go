package dragonpay

import (
	"fmt"
	"net/url"
	"strings"
)

// DefaultCurrency is the only currency most Dragonpay merchants are enabled for.
const DefaultCurrency = "PHP"

// PaymentRequest describes a Pay.aspx redirect.
type PaymentRequest struct {
	TransactionID string
	Amount        float64
	Currency      string
	Description   string
	Email         string
}

func (r PaymentRequest) validate() error {
	switch {
	case strings.TrimSpace(r.TransactionID) == "":
		return fmt.Errorf("%w: transaction id is required", ErrInvalidPaymentRequest)
	case r.Amount <= 0:
		return fmt.Errorf("%w: amount must be positive", ErrInvalidPaymentRequest)
	case strings.TrimSpace(r.Email) == "":
		return fmt.Errorf("%w: email is required", ErrInvalidPaymentRequest)
	}
	return nil
}

// PaymentURL builds the signed Pay.aspx URL the customer is redirected to.
// digest = sha1(merchantid:txnid:amount:ccy:description:email:password)
func (t *Transaction) PaymentURL(req PaymentRequest) (string, error) {
	if err := req.validate(); err != nil {
		return "", err
	}
	ccy := req.Currency
	if ccy == "" {
		ccy = DefaultCurrency
	}
	amount := fmt.Sprintf("%.2f", req.Amount)

	q := url.Values{}
	q.Set("merchantid", t.client.MerchantID())
	q.Set("txnid", req.TransactionID)
	q.Set("amount", amount)
	q.Set("ccy", ccy)
	q.Set("description", req.Description)
	q.Set("email", req.Email)
	q.Set("digest", Digest(
		t.client.MerchantID(),
		req.TransactionID,
		amount,
		ccy,
		req.Description,
		req.Email,
		t.client.MerchantPassword(),
	))
	return t.client.BaseURL() + paymentPath + "?" + q.Encode(), nil
}

// Postback is the set of fields Dragonpay sends to the merchant's postback URL.
type Postback struct {
	TxnID   string `form:"txnid" json:"txnid"`
	RefNo   string `form:"refno" json:"refno"`
	Status  string `form:"status" json:"status"`
	Message string `form:"message" json:"message"`
	Digest  string `form:"digest" json:"digest"`
}

// SignedMessage returns the string the gateway hashes for the postback digest.
func (t *Transaction) SignedMessage(p Postback) string {
	return strings.Join([]string{p.TxnID, p.RefNo, p.Status, p.Message, t.client.MerchantPassword()}, ":")
}

// VerifyPostback checks the postback digest only; the status is not considered.
func (t *Transaction) VerifyPostback(p Postback) bool {
	return digestMatches(t.SignedMessage(p), p.Digest)
}

// IsSuccessfulPostback reports whether the postback is authentic and settled.
func (t *Transaction) IsSuccessfulPostback(p Postback) bool {
	return t.IsSuccessful(t.SignedMessage(p), p.Digest, t.Status(p.Status))
}
