package models

import "time"

// Transaction is a Dragonpay payment created by this merchant.
// Status holds the decoded gateway status ("pending", "success", ...).
type Transaction struct {
	ID            int        `db:"id" json:"-"`
	TransactionID string     `db:"txn_id" json:"transactionId"`
	RefNo         *string    `db:"ref_no" json:"refNo,omitempty"`
	Amount        float64    `db:"amount" json:"amount"`
	Currency      string     `db:"currency" json:"currency"`
	Description   string     `db:"description" json:"description"`
	Email         string     `db:"email" json:"email"`
	IsSandbox     bool       `db:"is_sandbox" json:"isSandbox"`
	StatusCode    string     `db:"status_code" json:"statusCode"`
	Status        string     `db:"status" json:"status"`
	Message       *string    `db:"message" json:"message,omitempty"`
	CheckCount    int        `db:"check_count" json:"checkCount"`
	LastCheckedAt *time.Time `db:"last_checked_at" json:"lastCheckedAt,omitempty"`
	SettledAt     *time.Time `db:"settled_at" json:"settledAt,omitempty"`
	CreatedAt     time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt     time.Time  `db:"updated_at" json:"updatedAt"`
}

// TransactionFilter narrows transaction listings.
type TransactionFilter struct {
	Status string
	Page   int
	Limit  int
}

// Postback stores a raw postback received from Dragonpay.
type Postback struct {
	ID            int       `db:"id" json:"id"`
	TransactionID string    `db:"txn_id" json:"transactionId"`
	RefNo         string    `db:"ref_no" json:"refNo"`
	StatusCode    string    `db:"status_code" json:"statusCode"`
	Message       string    `db:"message" json:"message"`
	Digest        string    `db:"digest" json:"digest"`
	IsValid       bool      `db:"is_valid" json:"isValid"`
	CreatedAt     time.Time `db:"created_at" json:"createdAt"`
}
