package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/GTDGit/gtd_dragonpay/internal/utils"
)

// DragonpayHandler exposes the gateway code tables and digest check.
type DragonpayHandler struct {
	svc DragonpayService
}

// NewDragonpayHandler creates a new DragonpayHandler.
func NewDragonpayHandler(svc DragonpayService) *DragonpayHandler {
	return &DragonpayHandler{svc: svc}
}

// GetStatus handles GET /v1/dragonpay/codes/status/:code
// Unrecognized codes answer 200 with an empty status.
func (h *DragonpayHandler) GetStatus(c *gin.Context) {
	code := c.Param("code")
	status := h.svc.Gateway().Status(code)
	utils.Success(c, http.StatusOK, "Status decoded", gin.H{
		"code":       code,
		"status":     status,
		"recognized": status != "",
	})
}

// GetError handles GET /v1/dragonpay/codes/error/:code
func (h *DragonpayHandler) GetError(c *gin.Context) {
	code, err := strconv.Atoi(c.Param("code"))
	if err != nil {
		utils.Error(c, http.StatusBadRequest, "INVALID_CODE", "Error code must be an integer")
		return
	}
	desc := h.svc.Gateway().Error(code)
	utils.Success(c, http.StatusOK, "Error decoded", gin.H{
		"code":        code,
		"description": desc,
		"recognized":  desc != "",
	})
}

// GetCancellationStatus handles GET /v1/dragonpay/codes/cancellation/:code
func (h *DragonpayHandler) GetCancellationStatus(c *gin.Context) {
	code, err := strconv.Atoi(c.Param("code"))
	if err != nil {
		utils.Error(c, http.StatusBadRequest, "INVALID_CODE", "Cancellation code must be an integer")
		return
	}
	utils.Success(c, http.StatusOK, "Cancellation status decoded", gin.H{
		"code":   code,
		"status": h.svc.Gateway().CancellationStatus(code),
	})
}

// Verify handles POST /v1/dragonpay/verify
func (h *DragonpayHandler) Verify(c *gin.Context) {
	var req struct {
		Message string `json:"message"`
		Digest  string `json:"digest" binding:"required"`
		Status  string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
		return
	}
	utils.Success(c, http.StatusOK, "Verification complete", gin.H{
		"successful": h.svc.Gateway().IsSuccessful(req.Message, req.Digest, req.Status),
	})
}
