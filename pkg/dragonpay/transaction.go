package dragonpay

import (
	"context"
	"crypto/subtle"
	"fmt"
	"strconv"
)

// Transaction builds merchant request URLs for a client and decodes gateway codes.
// All lookups are total: unrecognized codes yield "" instead of an error.
type Transaction struct {
	client       *Client
	urlGenerator *URLGenerator
}

// NewTransaction creates a helper bound to client.
func NewTransaction(client *Client) *Transaction {
	return &Transaction{
		client:       client,
		urlGenerator: NewURLGenerator(client.BaseURL()),
	}
}

// InquiryURL returns the GETSTATUS URL for txnID.
func (t *Transaction) InquiryURL(txnID string) string {
	return t.urlGenerator.GenerateTransactionQueryURL(
		t.client.MerchantID(),
		t.client.MerchantPassword(),
		txnID,
		OpGetStatus,
	)
}

// CancellationURL returns the VOID URL for txnID.
func (t *Transaction) CancellationURL(txnID string) string {
	return t.urlGenerator.GenerateTransactionQueryURL(
		t.client.MerchantID(),
		t.client.MerchantPassword(),
		txnID,
		OpVoid,
	)
}

// Status decodes a single-character status code.
func (t *Transaction) Status(code string) string {
	return StatusDescription(code)
}

// CancellationStatus decodes a VOID result code.
func (t *Transaction) CancellationStatus(code int) string {
	return CancellationDescription(code)
}

// Error decodes a gateway error code.
func (t *Transaction) Error(code int) string {
	return ErrorDescription(code)
}

// IsSuccessful reports whether sha1(message) equals digest and status is "success".
func (t *Transaction) IsSuccessful(message, digest, status string) bool {
	return digestMatches(message, digest) && status == StatusSuccess
}

func digestMatches(message, digest string) bool {
	return subtle.ConstantTimeCompare([]byte(sha1Hex(message)), []byte(digest)) == 1
}

// InquiryResult is the decoded GETSTATUS answer.
type InquiryResult struct {
	TransactionID string `json:"transactionId"`
	Code          string `json:"code"`
	Status        string `json:"status"`
}

// CancellationResult is the decoded VOID answer.
type CancellationResult struct {
	TransactionID string `json:"transactionId"`
	Code          int    `json:"code"`
	Status        string `json:"status"`
}

// Inquire performs GETSTATUS for txnID.
func (t *Transaction) Inquire(ctx context.Context, txnID string) (*InquiryResult, error) {
	body, err := t.client.doGet(ctx, t.InquiryURL(txnID))
	if err != nil {
		return nil, err
	}
	return &InquiryResult{
		TransactionID: txnID,
		Code:          body,
		Status:        t.Status(body),
	}, nil
}

// Cancel performs VOID for txnID. A non-numeric answer is an ErrUnexpectedResponse.
func (t *Transaction) Cancel(ctx context.Context, txnID string) (*CancellationResult, error) {
	body, err := t.client.doGet(ctx, t.CancellationURL(txnID))
	if err != nil {
		return nil, err
	}
	code, err := strconv.Atoi(body)
	if err != nil {
		return nil, fmt.Errorf("%w: non-numeric VOID result %q", ErrUnexpectedResponse, body)
	}
	return &CancellationResult{
		TransactionID: txnID,
		Code:          code,
		Status:        t.CancellationStatus(code),
	}, nil
}
