package sse

import (
	"time"

	"github.com/GTDGit/gtd_dragonpay/internal/models"
)

// TransactionNotifier is the interface services use to emit transaction events.
type TransactionNotifier interface {
	NotifyTransactionCreated(trx *models.Transaction)
	NotifyStatusChanged(txnID, statusCode, status string)
}

// HubNotifier implements TransactionNotifier using the SSE Hub.
type HubNotifier struct {
	hub *Hub
}

// NewHubNotifier creates a notifier backed by the given Hub.
func NewHubNotifier(hub *Hub) *HubNotifier {
	return &HubNotifier{hub: hub}
}

func (n *HubNotifier) NotifyTransactionCreated(trx *models.Transaction) {
	if n.hub.ClientCount() == 0 {
		return
	}
	amount := trx.Amount
	n.hub.Broadcast(&TransactionEvent{
		Event:         EventTransactionCreated,
		TransactionID: trx.TransactionID,
		StatusCode:    trx.StatusCode,
		Status:        trx.Status,
		Amount:        &amount,
		Currency:      trx.Currency,
		Timestamp:     time.Now(),
	})
}

func (n *HubNotifier) NotifyStatusChanged(txnID, statusCode, status string) {
	if n.hub.ClientCount() == 0 {
		return
	}
	n.hub.Broadcast(&TransactionEvent{
		Event:         EventTransactionStatusChanged,
		TransactionID: txnID,
		StatusCode:    statusCode,
		Status:        status,
		Timestamp:     time.Now(),
	})
}

// NopNotifier is a no-op implementation for when SSE is not needed.
type NopNotifier struct{}

func (n *NopNotifier) NotifyTransactionCreated(trx *models.Transaction)     {}
func (n *NopNotifier) NotifyStatusChanged(txnID, statusCode, status string) {}
