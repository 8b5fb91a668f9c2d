package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/GTDGit/gtd_dragonpay/internal/utils"
	"github.com/GTDGit/gtd_dragonpay/pkg/dragonpay"
)

// WebhookHandler handles Dragonpay postbacks.
type WebhookHandler struct {
	svc DragonpayService
}

// NewWebhookHandler constructs a WebhookHandler.
func NewWebhookHandler(svc DragonpayService) *WebhookHandler {
	return &WebhookHandler{svc: svc}
}

// HandleDragonpayPostback handles GET/POST /webhook/dragonpay.
// Dragonpay sends the fields either as query string or form body and expects a
// plain "result=OK" answer.
func (h *WebhookHandler) HandleDragonpayPostback(c *gin.Context) {
	var p dragonpay.Postback
	if err := c.ShouldBind(&p); err != nil || p.TxnID == "" {
		c.String(http.StatusBadRequest, "result=FAIL_INVALID_REQUEST")
		return
	}

	err := h.svc.HandlePostback(c.Request.Context(), p)
	switch {
	case err == nil:
		c.String(http.StatusOK, "result=OK")
	case errors.Is(err, utils.ErrInvalidDigest):
		c.String(http.StatusUnauthorized, "result=FAIL_DIGEST_MISMATCH")
	case errors.Is(err, utils.ErrTransactionNotFound):
		c.String(http.StatusNotFound, "result=FAIL_UNKNOWN_TXNID")
	default:
		log.Error().Err(err).Str("txn_id", p.TxnID).Msg("Failed to process Dragonpay postback")
		c.String(http.StatusInternalServerError, "result=FAIL_PROCESSING")
	}
}
