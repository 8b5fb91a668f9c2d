package dragonpay

import (
	"crypto/sha1"
	"encoding/hex"
	"net/url"
	"strings"
)

// Merchant request operations.
const (
	OpGetStatus = "GETSTATUS"
	OpVoid      = "VOID"
)

const (
	merchantRequestPath = "MerchantRequest.aspx"
	paymentPath         = "Pay.aspx"
)

// URLGenerator assembles gateway URLs. It holds no credentials of its own.
type URLGenerator struct {
	baseURL string
}

// NewURLGenerator creates a generator for the given base URL.
func NewURLGenerator(baseURL string) *URLGenerator {
	if baseURL == "" {
		baseURL = ProductionBaseURL
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	return &URLGenerator{baseURL: baseURL}
}

// GenerateTransactionQueryURL builds a MerchantRequest URL for op on txnID.
// digest = sha1(merchantid:txnid:password)
func (g *URLGenerator) GenerateTransactionQueryURL(merchantID, merchantPassword, txnID, op string) string {
	q := url.Values{}
	q.Set("op", op)
	q.Set("merchantid", merchantID)
	q.Set("merchantpwd", merchantPassword)
	q.Set("txnid", txnID)
	q.Set("digest", Digest(merchantID, txnID, merchantPassword))
	return g.baseURL + merchantRequestPath + "?" + q.Encode()
}

// Digest joins parts with ':' and returns the lowercase hex SHA-1 of the result.
func Digest(parts ...string) string {
	return sha1Hex(strings.Join(parts, ":"))
}

func sha1Hex(s string) string {
	sum := sha1.Sum([]byte(s))
	return hex.EncodeToString(sum[:])
}
