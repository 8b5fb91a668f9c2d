package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/GTDGit/gtd_dragonpay/internal/service"
	"github.com/GTDGit/gtd_dragonpay/internal/utils"
)

// AuthHandler issues admin tokens.
type AuthHandler struct {
	authService *service.AdminAuthService
}

func NewAuthHandler(authService *service.AdminAuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Login handles POST /v1/admin/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 400, "INVALID_REQUEST", "Invalid request body")
		return
	}

	token, err := h.authService.Login(req.Email, req.Password)
	if errors.Is(err, utils.ErrAccountInactive) {
		utils.Error(c, 403, "ACCOUNT_INACTIVE", "Account is inactive")
		return
	}
	if err != nil {
		utils.Error(c, 401, "INVALID_CREDENTIALS", "Invalid email or password")
		return
	}

	utils.Success(c, 200, "Login successful", gin.H{
		"token": token,
	})
}
