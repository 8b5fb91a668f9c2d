package dragonpay

import "errors"

// Errors returned by the transport and payment helpers. Code lookups never fail.
var (
	ErrInvalidPaymentRequest = errors.New("INVALID_PAYMENT_REQUEST")
	ErrUnexpectedResponse    = errors.New("UNEXPECTED_RESPONSE")
)
