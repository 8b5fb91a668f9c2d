package service

import (
	"errors"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/GTDGit/gtd_dragonpay/internal/models"
	"github.com/GTDGit/gtd_dragonpay/internal/utils"
)

// AdminUserStore persists admin users.
type AdminUserStore interface {
	GetByEmail(email string) (*models.AdminUser, error)
	Create(user *models.AdminUser) error
	TouchLastLogin(id int) error
}

// AdminAuthService authenticates dashboard admins.
type AdminAuthService struct {
	adminRepo AdminUserStore
}

func NewAdminAuthService(adminRepo AdminUserStore) *AdminAuthService {
	return &AdminAuthService{adminRepo: adminRepo}
}

// Login verifies credentials and returns a signed admin token.
func (s *AdminAuthService) Login(email, password string) (string, error) {
	user, err := s.adminRepo.GetByEmail(email)
	if err != nil {
		log.Warn().Err(err).Str("email", email).Msg("Admin lookup failed")
		return "", utils.ErrInvalidCredentials
	}

	if !user.IsActive {
		log.Warn().Str("email", email).Msg("Account is inactive")
		return "", utils.ErrAccountInactive
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		log.Warn().Str("email", email).Msg("Password verification failed")
		return "", utils.ErrInvalidCredentials
	}

	if err := s.adminRepo.TouchLastLogin(user.ID); err != nil {
		log.Warn().Err(err).Int("user_id", user.ID).Msg("failed to update last login")
	}

	log.Info().Str("email", email).Msg("Login successful")
	return utils.GenerateJWT(user.ID, user.Email)
}

// CreateAdmin stores a new active admin with a bcrypt password hash.
func (s *AdminAuthService) CreateAdmin(email, password, name string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	user := &models.AdminUser{
		Email:        email,
		PasswordHash: string(hashedPassword),
		Name:         name,
		IsActive:     true,
	}

	return s.adminRepo.Create(user)
}

// EnsureAdmin creates the bootstrap admin when no account with email exists yet.
func (s *AdminAuthService) EnsureAdmin(email, password, name string) error {
	if email == "" || password == "" {
		return nil
	}
	_, err := s.adminRepo.GetByEmail(email)
	if err == nil {
		return nil
	}
	if !errors.Is(err, utils.ErrAdminNotFound) {
		return err
	}
	if err := s.CreateAdmin(email, password, name); err != nil {
		return err
	}
	log.Info().Str("email", email).Msg("Bootstrap admin created")
	return nil
}
