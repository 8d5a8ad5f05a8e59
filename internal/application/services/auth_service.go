package services

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/risingpath/pulse-go/internal/infrastructure/observability/logging"
	"github.com/risingpath/pulse-go/internal/infrastructure/security"
	"github.com/risingpath/pulse-go/pkg/config"
)

// AuthService issues and validates admin dashboard tokens.
type AuthService struct {
	jwtSecret    string
	passwordHash []byte
	logger       *logging.ChanneledLogger
}

// NewAuthService creates the auth service. The admin password from config
// is hashed once at startup; a missing JWT secret gets a generated one,
// which invalidates outstanding tokens on restart.
func NewAuthService(logger *logging.ChanneledLogger) (*AuthService, error) {
	secret := config.JWTSecret
	if secret == "" {
		generated, err := security.GenerateSecureKey(64)
		if err != nil {
			return nil, fmt.Errorf("failed to generate jwt secret: %w", err)
		}
		secret = generated
		logger.Auth().Warn("JWT_SECRET not configured; generated an ephemeral secret")
	}

	var passwordHash []byte
	if config.AdminPassword != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(config.AdminPassword), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash admin password: %w", err)
		}
		passwordHash = hash
	}

	return &AuthService{
		jwtSecret:    secret,
		passwordHash: passwordHash,
		logger:       logger,
	}, nil
}

// Login exchanges the admin password for a bearer token.
func (s *AuthService) Login(password string) (string, error) {
	if len(s.passwordHash) == 0 {
		return "", fmt.Errorf("admin access is not configured")
	}
	if err := bcrypt.CompareHashAndPassword(s.passwordHash, []byte(password)); err != nil {
		s.logger.Auth().Warn("Admin login rejected")
		return "", fmt.Errorf("invalid credentials")
	}

	token, err := security.GenerateAdminToken(s.jwtSecret, config.TokenLifetime)
	if err != nil {
		return "", fmt.Errorf("failed to issue token: %w", err)
	}
	s.logger.Auth().Info("Admin login succeeded")
	return token, nil
}

// Validate checks a bearer token and confirms the admin role.
func (s *AuthService) Validate(token string) error {
	claims, err := security.ValidateJWT(token, s.jwtSecret)
	if err != nil {
		return err
	}
	if !security.IsAdmin(claims) {
		return fmt.Errorf("token lacks admin role")
	}
	return nil
}
