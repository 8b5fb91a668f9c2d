package utils

import "errors"

// Common application errors used across services.
var (
	ErrInvalidToken           = errors.New("INVALID_TOKEN")
	ErrInvalidCredentials     = errors.New("INVALID_CREDENTIALS")
	ErrAccountInactive        = errors.New("ACCOUNT_INACTIVE")
	ErrAdminNotFound          = errors.New("ADMIN_NOT_FOUND")
	ErrTransactionNotFound    = errors.New("TRANSACTION_NOT_FOUND")
	ErrDuplicateTransactionID = errors.New("DUPLICATE_TRANSACTION_ID")
	ErrInvalidDigest          = errors.New("INVALID_DIGEST")
	ErrTransactionFinal       = errors.New("TRANSACTION_FINAL")
	ErrGatewayUnavailable     = errors.New("GATEWAY_UNAVAILABLE")
)
