package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/GTDGit/gtd_dragonpay/internal/models"
	"github.com/GTDGit/gtd_dragonpay/internal/utils"
	"github.com/GTDGit/gtd_dragonpay/pkg/dragonpay"
)

// DragonpayService is the service surface used by the HTTP handlers.
type DragonpayService interface {
	Gateway() *dragonpay.Transaction
	CreatePayment(ctx context.Context, req dragonpay.PaymentRequest) (*models.Transaction, string, error)
	GetTransaction(txnID string) (*models.Transaction, error)
	ListTransactions(filter models.TransactionFilter) ([]models.Transaction, int, error)
	ListPostbacks(txnID string) ([]models.Postback, error)
	CheckStatus(ctx context.Context, txnID string) (*dragonpay.InquiryResult, error)
	RefreshStatus(ctx context.Context, txnID string) (*dragonpay.InquiryResult, error)
	Cancel(ctx context.Context, txnID string) (*dragonpay.CancellationResult, error)
	HandlePostback(ctx context.Context, p dragonpay.Postback) error
}

// writeServiceError maps service errors onto the response envelope.
func writeServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, utils.ErrTransactionNotFound):
		utils.Error(c, http.StatusNotFound, "TRANSACTION_NOT_FOUND", "Transaction not found")
	case errors.Is(err, utils.ErrDuplicateTransactionID):
		utils.Error(c, http.StatusConflict, "DUPLICATE_TRANSACTION_ID", "Transaction ID already used")
	case errors.Is(err, utils.ErrTransactionFinal):
		utils.Error(c, http.StatusConflict, "TRANSACTION_FINAL", "Transaction already has a final status")
	case errors.Is(err, utils.ErrInvalidDigest):
		utils.Error(c, http.StatusUnauthorized, "INVALID_DIGEST", "Digest verification failed")
	case errors.Is(err, dragonpay.ErrInvalidPaymentRequest):
		utils.Error(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
	case errors.Is(err, utils.ErrGatewayUnavailable):
		utils.Error(c, http.StatusBadGateway, "GATEWAY_UNAVAILABLE", "Dragonpay did not answer")
	default:
		log.Error().Err(err).Str("path", c.FullPath()).Msg("Unhandled service error")
		utils.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error")
	}
}
