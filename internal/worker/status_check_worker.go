package worker

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/GTDGit/gtd_dragonpay/internal/models"
	"github.com/GTDGit/gtd_dragonpay/pkg/dragonpay"
)

// batchSize caps how many transactions one run re-checks.
const batchSize = 50

// StatusChecker is the part of DragonpayService the worker drives.
type StatusChecker interface {
	StalePending(staleAfter time.Duration, limit int) ([]models.Transaction, error)
	RefreshStatus(ctx context.Context, txnID string) (*dragonpay.InquiryResult, error)
	ExpireTransaction(ctx context.Context, txnID string) error
}

// StatusCheckWorker re-checks pending Dragonpay transactions with GETSTATUS in case
// a postback was lost.
type StatusCheckWorker struct {
	svc        StatusChecker
	interval   time.Duration
	staleAfter time.Duration // wait this long since the last check before asking again
	maxAge     time.Duration // give up and mark failed after this age
	now        func() time.Time
}

// NewStatusCheckWorker constructs a StatusCheckWorker.
func NewStatusCheckWorker(svc StatusChecker, interval, staleAfter, maxAge time.Duration) *StatusCheckWorker {
	return &StatusCheckWorker{
		svc:        svc,
		interval:   interval,
		staleAfter: staleAfter,
		maxAge:     maxAge,
		now:        time.Now,
	}
}

// Start begins the periodic status check loop until context is canceled.
func (w *StatusCheckWorker) Start(ctx context.Context) {
	log.Info().
		Dur("interval", w.interval).
		Dur("stale_after", w.staleAfter).
		Dur("max_age", w.maxAge).
		Msg("Starting status check worker")

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.run(ctx)
		case <-ctx.Done():
			log.Info().Msg("Status check worker stopped")
			return
		}
	}
}

func (w *StatusCheckWorker) run(ctx context.Context) {
	stale, err := w.svc.StalePending(w.staleAfter, batchSize)
	if err != nil {
		log.Error().Err(err).Msg("Failed to get stale pending transactions")
		return
	}
	if len(stale) == 0 {
		return
	}

	log.Info().Int("count", len(stale)).Msg("Re-checking stale pending transactions")

	for i := range stale {
		select {
		case <-ctx.Done():
			return
		default:
			w.checkTransaction(ctx, &stale[i])
		}
	}
}

func (w *StatusCheckWorker) checkTransaction(ctx context.Context, trx *models.Transaction) {
	res, err := w.svc.RefreshStatus(ctx, trx.TransactionID)
	if err != nil {
		log.Warn().
			Err(err).
			Str("txn_id", trx.TransactionID).
			Msg("Network error checking transaction status, will retry later")
		return
	}

	log.Info().
		Str("txn_id", trx.TransactionID).
		Str("code", res.Code).
		Str("status", res.Status).
		Msg("Status check response from Dragonpay")

	if dragonpay.IsFinalStatus(res.Status) {
		return
	}

	// Expire only after the gateway itself still reports a non-final status.
	age := w.now().Sub(trx.CreatedAt)
	if age > w.maxAge {
		log.Warn().
			Str("txn_id", trx.TransactionID).
			Dur("age", age).
			Msg("Transaction too old, marking as failed")
		if err := w.svc.ExpireTransaction(ctx, trx.TransactionID); err != nil {
			log.Error().Err(err).Str("txn_id", trx.TransactionID).Msg("Failed to expire transaction")
		}
	}
}
