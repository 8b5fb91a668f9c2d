package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/GTDGit/gtd_dragonpay/internal/models"
	"github.com/GTDGit/gtd_dragonpay/internal/utils"
	"github.com/GTDGit/gtd_dragonpay/pkg/dragonpay"
)

// AdminTransactionHandler handles admin Dragonpay transaction endpoints.
type AdminTransactionHandler struct {
	svc DragonpayService
}

// NewAdminTransactionHandler constructs an AdminTransactionHandler.
func NewAdminTransactionHandler(svc DragonpayService) *AdminTransactionHandler {
	return &AdminTransactionHandler{svc: svc}
}

type createPaymentRequest struct {
	TransactionID string  `json:"transactionId" binding:"required,max=40"`
	Amount        float64 `json:"amount" binding:"required,gt=0"`
	Currency      string  `json:"currency" binding:"omitempty,len=3"`
	Description   string  `json:"description" binding:"max=128"`
	Email         string  `json:"email" binding:"required,email"`
}

// CreatePayment handles POST /v1/admin/payments
func (h *AdminTransactionHandler) CreatePayment(c *gin.Context) {
	var req createPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
		return
	}

	trx, payURL, err := h.svc.CreatePayment(c.Request.Context(), dragonpay.PaymentRequest{
		TransactionID: req.TransactionID,
		Amount:        req.Amount,
		Currency:      req.Currency,
		Description:   req.Description,
		Email:         req.Email,
	})
	if err != nil {
		writeServiceError(c, err)
		return
	}

	utils.Success(c, http.StatusCreated, "Payment created", gin.H{
		"transaction": trx,
		"paymentUrl":  payURL,
	})
}

// ListTransactions handles GET /v1/admin/transactions
func (h *AdminTransactionHandler) ListTransactions(c *gin.Context) {
	filter := models.TransactionFilter{Status: c.Query("status")}
	if page, err := strconv.Atoi(c.Query("page")); err == nil {
		filter.Page = page
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if limit, err := strconv.Atoi(c.Query("limit")); err == nil {
		filter.Limit = limit
	}
	if filter.Limit < 1 || filter.Limit > 100 {
		filter.Limit = 50
	}

	list, total, err := h.svc.ListTransactions(filter)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	if list == nil {
		list = []models.Transaction{}
	}
	utils.SuccessWithPagination(c, http.StatusOK, "Transactions retrieved", list, filter.Page, filter.Limit, total)
}

// GetTransaction handles GET /v1/admin/transactions/:txnid
func (h *AdminTransactionHandler) GetTransaction(c *gin.Context) {
	trx, err := h.svc.GetTransaction(c.Param("txnid"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	utils.Success(c, http.StatusOK, "Transaction retrieved", trx)
}

// GetPostbacks handles GET /v1/admin/transactions/:txnid/postbacks
func (h *AdminTransactionHandler) GetPostbacks(c *gin.Context) {
	list, err := h.svc.ListPostbacks(c.Param("txnid"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	if list == nil {
		list = []models.Postback{}
	}
	utils.Success(c, http.StatusOK, "Postbacks retrieved", list)
}

// GetURLs handles GET /v1/admin/transactions/:txnid/urls
// Returns the signed MerchantRequest URLs without calling the gateway.
func (h *AdminTransactionHandler) GetURLs(c *gin.Context) {
	txnID := c.Param("txnid")
	gw := h.svc.Gateway()
	utils.Success(c, http.StatusOK, "URLs generated", gin.H{
		"transactionId":   txnID,
		"inquiryUrl":      gw.InquiryURL(txnID),
		"cancellationUrl": gw.CancellationURL(txnID),
	})
}

// Inquire handles POST /v1/admin/transactions/:txnid/inquire
// ?fresh=true bypasses the status cache.
func (h *AdminTransactionHandler) Inquire(c *gin.Context) {
	txnID := c.Param("txnid")

	var (
		res *dragonpay.InquiryResult
		err error
	)
	if c.Query("fresh") == "true" {
		res, err = h.svc.RefreshStatus(c.Request.Context(), txnID)
	} else {
		res, err = h.svc.CheckStatus(c.Request.Context(), txnID)
	}
	if err != nil {
		writeServiceError(c, err)
		return
	}
	utils.Success(c, http.StatusOK, "Status retrieved", res)
}

// Cancel handles POST /v1/admin/transactions/:txnid/cancel
func (h *AdminTransactionHandler) Cancel(c *gin.Context) {
	res, err := h.svc.Cancel(c.Request.Context(), c.Param("txnid"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	utils.Success(c, http.StatusOK, "Cancellation processed", res)
}
