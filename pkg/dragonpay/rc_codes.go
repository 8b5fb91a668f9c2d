package dragonpay

// Transaction status codes returned by GETSTATUS and postbacks.
const (
	StatusCodeSuccess    = "S"
	StatusCodeFailure    = "F"
	StatusCodePending    = "P"
	StatusCodeUnknown    = "U"
	StatusCodeRefund     = "R"
	StatusCodeChargeback = "K"
	StatusCodeVoid       = "V"
	StatusCodeAuthorized = "A"
)

// Decoded status values.
const (
	StatusSuccess    = "success"
	StatusFailure    = "failure"
	StatusPending    = "pending"
	StatusUnknown    = "unknown"
	StatusRefund     = "refund"
	StatusChargeback = "chargeback"
	StatusVoid       = "void"
	StatusAuthorized = "authorized"
)

// Cancellation outcomes.
const (
	CancellationSuccess = "success"
	CancellationFailed  = "failed"
)

// Error codes returned by the gateway.
const (
	ErrCodeSuccess                  = 0
	ErrCodeInvalidGatewayID         = 101
	ErrCodeIncorrectSecretKey       = 102
	ErrCodeInvalidReferenceNumber   = 103
	ErrCodeUnauthorizedAccess       = 104
	ErrCodeInvalidToken             = 105
	ErrCodeCurrencyNotSupported     = 106
	ErrCodeTransactionCancelled     = 107
	ErrCodeInsufficientFunds        = 108
	ErrCodeTransactionLimitExceeded = 109
	ErrCodeErrorInOperation         = 110
	ErrCodeInvalidParameters        = 111
	ErrCodeInvalidMerchantID        = 201
	ErrCodeInvalidMerchantPassword  = 202
)

var statusDescriptions = map[string]string{
	StatusCodeSuccess:    StatusSuccess,
	StatusCodeFailure:    StatusFailure,
	StatusCodePending:    StatusPending,
	StatusCodeUnknown:    StatusUnknown,
	StatusCodeRefund:     StatusRefund,
	StatusCodeChargeback: StatusChargeback,
	StatusCodeVoid:       StatusVoid,
	StatusCodeAuthorized: StatusAuthorized,
}

var errorDescriptions = map[int]string{
	ErrCodeSuccess:                  "success",
	ErrCodeInvalidGatewayID:         "invalid payment gateway id",
	ErrCodeIncorrectSecretKey:       "incorrect secret key",
	ErrCodeInvalidReferenceNumber:   "invalid reference number",
	ErrCodeUnauthorizedAccess:       "unauthorized access",
	ErrCodeInvalidToken:             "invalid token",
	ErrCodeCurrencyNotSupported:     "currency not supported",
	ErrCodeTransactionCancelled:     "transaction cancelled",
	ErrCodeInsufficientFunds:        "insufficient funds",
	ErrCodeTransactionLimitExceeded: "transaction limit exceeded",
	ErrCodeErrorInOperation:         "error in operation",
	ErrCodeInvalidParameters:        "invalid parameters",
	ErrCodeInvalidMerchantID:        "invalid merchant id",
	ErrCodeInvalidMerchantPassword:  "invalid merchant password",
}

// pendingStatuses may still change on the gateway side.
var pendingStatuses = map[string]bool{
	StatusPending:    true,
	StatusUnknown:    true,
	StatusAuthorized: true,
}

// StatusDescription returns the decoded status for code, or "" if unrecognized.
func StatusDescription(code string) string {
	return statusDescriptions[code]
}

// ErrorDescription returns the description for code, or "" if unrecognized.
func ErrorDescription(code int) string {
	return errorDescriptions[code]
}

// CancellationDescription maps a VOID result code to success/failed.
func CancellationDescription(code int) string {
	if code == 0 {
		return CancellationSuccess
	}
	return CancellationFailed
}

// IsSuccessStatus returns true if the decoded status is success.
func IsSuccessStatus(status string) bool {
	return status == StatusSuccess
}

// IsPendingStatus returns true if the decoded status may still change.
func IsPendingStatus(status string) bool {
	return pendingStatuses[status]
}

// IsFinalStatus returns true for recognized statuses that will not change without
// merchant action.
func IsFinalStatus(status string) bool {
	switch status {
	case StatusSuccess, StatusFailure, StatusRefund, StatusChargeback, StatusVoid:
		return true
	}
	return false
}

// IsReversalStatus returns true for statuses that may follow a final status.
func IsReversalStatus(status string) bool {
	switch status {
	case StatusRefund, StatusChargeback, StatusVoid:
		return true
	}
	return false
}

// CanTransition reports whether a stored status from may be replaced by to.
// Once final, a transaction only moves to a reversal status.
func CanTransition(from, to string) bool {
	if to == "" {
		return false
	}
	if from == to || !IsFinalStatus(from) {
		return true
	}
	return IsReversalStatus(to)
}
