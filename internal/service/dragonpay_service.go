package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/GTDGit/gtd_dragonpay/internal/cache"
	"github.com/GTDGit/gtd_dragonpay/internal/metrics"
	"github.com/GTDGit/gtd_dragonpay/internal/models"
	"github.com/GTDGit/gtd_dragonpay/internal/sse"
	"github.com/GTDGit/gtd_dragonpay/internal/utils"
	"github.com/GTDGit/gtd_dragonpay/pkg/dragonpay"
)

// TransactionStore persists Dragonpay transactions.
type TransactionStore interface {
	Create(trx *models.Transaction) error
	GetByTxnID(txnID string) (*models.Transaction, error)
	UpdateStatus(txnID, statusCode, status string, refNo, message *string) error
	ExpirePending(txnID, message string) (bool, error)
	MarkChecked(txnID string) error
	GetStalePending(staleAfter time.Duration, limit int) ([]models.Transaction, error)
	List(filter models.TransactionFilter) ([]models.Transaction, int, error)
}

// PostbackStore persists raw postbacks.
type PostbackStore interface {
	Create(p *models.Postback) error
	ListByTxnID(txnID string) ([]models.Postback, error)
}

// StatusCacher caches GETSTATUS answers.
type StatusCacher interface {
	Get(ctx context.Context, txnID string) (*cache.StatusEntry, error)
	Set(ctx context.Context, entry *cache.StatusEntry) error
	Invalidate(ctx context.Context, txnID string) error
}

// expiredMessage is stored on transactions the gateway never settled.
const expiredMessage = "no final status from gateway within max age"

// DragonpayService coordinates the gateway helper with storage and cache.
type DragonpayService struct {
	gateway   *dragonpay.Transaction
	trxRepo   TransactionStore
	postbacks PostbackStore
	cache     StatusCacher
	notifier  sse.TransactionNotifier
	sandbox   bool
}

// NewDragonpayService constructs a DragonpayService. statusCache may be nil.
func NewDragonpayService(gateway *dragonpay.Transaction, trxRepo TransactionStore, postbacks PostbackStore, statusCache StatusCacher, sandbox bool) *DragonpayService {
	return &DragonpayService{
		gateway:   gateway,
		trxRepo:   trxRepo,
		postbacks: postbacks,
		cache:     statusCache,
		notifier:  &sse.NopNotifier{},
		sandbox:   sandbox,
	}
}

// SetNotifier wires a notifier for transaction events.
func (s *DragonpayService) SetNotifier(n sse.TransactionNotifier) {
	if n != nil {
		s.notifier = n
	}
}

// Gateway exposes the underlying helper for URL generation and code lookups.
func (s *DragonpayService) Gateway() *dragonpay.Transaction {
	return s.gateway
}

// CreatePayment stores a pending transaction and returns it with its Pay URL.
func (s *DragonpayService) CreatePayment(ctx context.Context, req dragonpay.PaymentRequest) (*models.Transaction, string, error) {
	payURL, err := s.gateway.PaymentURL(req)
	if err != nil {
		return nil, "", err
	}

	ccy := req.Currency
	if ccy == "" {
		ccy = dragonpay.DefaultCurrency
	}
	trx := &models.Transaction{
		TransactionID: req.TransactionID,
		Amount:        req.Amount,
		Currency:      ccy,
		Description:   req.Description,
		Email:         req.Email,
		IsSandbox:     s.sandbox,
		StatusCode:    dragonpay.StatusCodePending,
		Status:        dragonpay.StatusPending,
	}
	if err := s.trxRepo.Create(trx); err != nil {
		return nil, "", err
	}

	log.Info().
		Str("txn_id", trx.TransactionID).
		Float64("amount", trx.Amount).
		Str("currency", trx.Currency).
		Msg("Dragonpay payment created")
	s.notifier.NotifyTransactionCreated(trx)

	return trx, payURL, nil
}

// GetTransaction returns a stored transaction.
func (s *DragonpayService) GetTransaction(txnID string) (*models.Transaction, error) {
	return s.trxRepo.GetByTxnID(txnID)
}

// ListTransactions returns a page of stored transactions.
func (s *DragonpayService) ListTransactions(filter models.TransactionFilter) ([]models.Transaction, int, error) {
	return s.trxRepo.List(filter)
}

// ListPostbacks returns the postbacks received for txnID.
func (s *DragonpayService) ListPostbacks(txnID string) ([]models.Postback, error) {
	return s.postbacks.ListByTxnID(txnID)
}

// CheckStatus answers from cache when possible, otherwise asks the gateway.
func (s *DragonpayService) CheckStatus(ctx context.Context, txnID string) (*dragonpay.InquiryResult, error) {
	if s.cache != nil {
		entry, err := s.cache.Get(ctx, txnID)
		if err == nil {
			return &dragonpay.InquiryResult{
				TransactionID: entry.TransactionID,
				Code:          entry.Code,
				Status:        entry.Status,
			}, nil
		}
		if !errors.Is(err, cache.ErrMiss) {
			log.Warn().Err(err).Str("txn_id", txnID).Msg("status cache read failed")
		}
	}
	return s.RefreshStatus(ctx, txnID)
}

// RefreshStatus performs GETSTATUS, records the answer and refreshes the cache.
func (s *DragonpayService) RefreshStatus(ctx context.Context, txnID string) (*dragonpay.InquiryResult, error) {
	start := time.Now()
	res, err := s.gateway.Inquire(ctx, txnID)
	if err != nil {
		metrics.ObserveGatewayRequest(dragonpay.OpGetStatus, "error", time.Since(start).Seconds())
		return nil, fmt.Errorf("%w: %v", utils.ErrGatewayUnavailable, err)
	}
	metrics.ObserveGatewayRequest(dragonpay.OpGetStatus, "ok", time.Since(start).Seconds())

	if err := s.trxRepo.MarkChecked(txnID); err != nil {
		log.Warn().Err(err).Str("txn_id", txnID).Msg("failed to mark transaction checked")
	}

	if res.Status == "" {
		log.Warn().
			Str("txn_id", txnID).
			Str("code", res.Code).
			Msg("Unrecognized Dragonpay status code")
		return res, nil
	}

	prev, err := s.trxRepo.GetByTxnID(txnID)
	switch {
	case err == nil && prev.Status != res.Status:
		err := s.trxRepo.UpdateStatus(txnID, res.Code, res.Status, nil, nil)
		switch {
		case err == nil:
			s.notifier.NotifyStatusChanged(txnID, res.Code, res.Status)
		case errors.Is(err, utils.ErrTransactionFinal):
			log.Warn().
				Str("txn_id", txnID).
				Str("stored", prev.Status).
				Str("gateway", res.Status).
				Msg("Gateway status would replace a final status, keeping stored status")
		default:
			log.Error().Err(err).Str("txn_id", txnID).Msg("failed to store transaction status")
		}
	case err != nil && !errors.Is(err, utils.ErrTransactionNotFound):
		log.Error().Err(err).Str("txn_id", txnID).Msg("failed to load transaction")
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, &cache.StatusEntry{TransactionID: txnID, Code: res.Code, Status: res.Status}); err != nil {
			log.Warn().Err(err).Str("txn_id", txnID).Msg("status cache write failed")
		}
	}

	return res, nil
}

// Cancel voids a transaction that has not reached a final status.
func (s *DragonpayService) Cancel(ctx context.Context, txnID string) (*dragonpay.CancellationResult, error) {
	trx, err := s.trxRepo.GetByTxnID(txnID)
	if err != nil {
		return nil, err
	}
	if dragonpay.IsFinalStatus(trx.Status) {
		return nil, utils.ErrTransactionFinal
	}

	start := time.Now()
	res, err := s.gateway.Cancel(ctx, txnID)
	if err != nil {
		metrics.ObserveGatewayRequest(dragonpay.OpVoid, "error", time.Since(start).Seconds())
		return nil, fmt.Errorf("%w: %v", utils.ErrGatewayUnavailable, err)
	}
	metrics.ObserveGatewayRequest(dragonpay.OpVoid, res.Status, time.Since(start).Seconds())

	log.Info().
		Str("txn_id", txnID).
		Int("code", res.Code).
		Str("status", res.Status).
		Msg("Dragonpay cancellation result")

	if res.Status != dragonpay.CancellationSuccess {
		return res, nil
	}

	if err := s.trxRepo.UpdateStatus(txnID, dragonpay.StatusCodeVoid, dragonpay.StatusVoid, nil, nil); err != nil {
		return nil, err
	}
	s.invalidate(ctx, txnID)
	s.notifier.NotifyStatusChanged(txnID, dragonpay.StatusCodeVoid, dragonpay.StatusVoid)
	return res, nil
}

// HandlePostback records a postback, verifies its digest and applies the status.
func (s *DragonpayService) HandlePostback(ctx context.Context, p dragonpay.Postback) error {
	valid := s.gateway.VerifyPostback(p)
	status := s.gateway.Status(p.Status)
	metrics.IncPostback(status, valid)

	record := &models.Postback{
		TransactionID: p.TxnID,
		RefNo:         p.RefNo,
		StatusCode:    p.Status,
		Message:       p.Message,
		Digest:        p.Digest,
		IsValid:       valid,
	}
	if err := s.postbacks.Create(record); err != nil {
		log.Error().Err(err).Str("txn_id", p.TxnID).Msg("failed to store postback")
	}

	if !valid {
		log.Warn().
			Str("txn_id", p.TxnID).
			Str("refno", p.RefNo).
			Msg("Dragonpay postback digest mismatch")
		return utils.ErrInvalidDigest
	}

	if status == "" {
		log.Warn().
			Str("txn_id", p.TxnID).
			Str("status", p.Status).
			Msg("Unrecognized Dragonpay postback status, ignoring")
		return nil
	}

	refNo, message := p.RefNo, p.Message
	err := s.trxRepo.UpdateStatus(p.TxnID, p.Status, status, &refNo, &message)
	if errors.Is(err, utils.ErrTransactionFinal) {
		log.Warn().
			Str("txn_id", p.TxnID).
			Str("refno", p.RefNo).
			Str("status", status).
			Msg("Postback would replace a final status, ignoring")
		return nil
	}
	if err != nil {
		return err
	}
	s.invalidate(ctx, p.TxnID)
	s.notifier.NotifyStatusChanged(p.TxnID, p.Status, status)

	log.Info().
		Str("txn_id", p.TxnID).
		Str("refno", p.RefNo).
		Str("status", status).
		Bool("settled", s.gateway.IsSuccessfulPostback(p)).
		Msg("Dragonpay postback applied")
	return nil
}

// ExpireTransaction marks a transaction failed after the gateway never settled it.
// Transactions that already left the pending states are left untouched.
func (s *DragonpayService) ExpireTransaction(ctx context.Context, txnID string) error {
	expired, err := s.trxRepo.ExpirePending(txnID, expiredMessage)
	if err != nil {
		return err
	}
	if !expired {
		log.Info().Str("txn_id", txnID).Msg("Transaction no longer pending, not expiring")
		return nil
	}
	s.invalidate(ctx, txnID)
	s.notifier.NotifyStatusChanged(txnID, dragonpay.StatusCodeFailure, dragonpay.StatusFailure)
	return nil
}

// StalePending returns pending transactions due for a re-check.
func (s *DragonpayService) StalePending(staleAfter time.Duration, limit int) ([]models.Transaction, error) {
	return s.trxRepo.GetStalePending(staleAfter, limit)
}

func (s *DragonpayService) invalidate(ctx context.Context, txnID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, txnID); err != nil {
		log.Warn().Err(err).Str("txn_id", txnID).Msg("status cache invalidate failed")
	}
}
