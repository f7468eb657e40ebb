package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/marcosaureliofarias/convite-aniversario/config"
	"github.com/marcosaureliofarias/convite-aniversario/internal/dto"
	"github.com/marcosaureliofarias/convite-aniversario/pkg/jwt"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrAuthDisabled       = errors.New("admin authentication is disabled")
)

// TokenBlacklist revokes access tokens until they expire
type TokenBlacklist interface {
	BlacklistToken(ctx context.Context, jti string, ttl time.Duration) error
}

// AuthService admin login / logout
type AuthService interface {
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error)
	Logout(ctx context.Context, jti string, expiresAt time.Time) error
}

type authService struct {
	cfg       *config.AuthConfig
	jwtMgr    *jwt.Manager
	blacklist TokenBlacklist
	logger    *zap.Logger
}

// NewAuthService creates an AuthService. blacklist may be nil, in which case
// logout only succeeds client-side and tokens live until they expire.
func NewAuthService(
	cfg *config.AuthConfig,
	jwtMgr *jwt.Manager,
	blacklist TokenBlacklist,
	logger *zap.Logger,
) AuthService {
	return &authService{
		cfg:       cfg,
		jwtMgr:    jwtMgr,
		blacklist: blacklist,
		logger:    logger,
	}
}

func (s *authService) Login(_ context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error) {
	if !s.cfg.Enabled {
		return nil, ErrAuthDisabled
	}

	// 1. username
	if subtle.ConstantTimeCompare([]byte(req.Username), []byte(s.cfg.AdminUsername)) != 1 {
		s.logger.Warn("admin login rejected", zap.String("username", req.Username))
		return nil, ErrInvalidCredentials
	}

	// 2. password (bcrypt)
	if err := bcrypt.CompareHashAndPassword([]byte(s.cfg.AdminPasswordHash), []byte(req.Password)); err != nil {
		s.logger.Warn("admin login rejected", zap.String("username", req.Username))
		return nil, ErrInvalidCredentials
	}

	// 3. token
	accessToken, err := s.jwtMgr.GenerateAccessToken(req.Username)
	if err != nil {
		s.logger.Error("generate access token failed", zap.Error(err))
		return nil, err
	}

	s.logger.Info("admin logged in", zap.String("username", req.Username))
	return &dto.TokenResponse{
		AccessToken: accessToken,
		TokenType:   "Bearer",
		ExpiresIn:   int(s.jwtMgr.TTL().Seconds()),
	}, nil
}

func (s *authService) Logout(ctx context.Context, jti string, expiresAt time.Time) error {
	if s.blacklist == nil || jti == "" {
		return nil
	}
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}
	if err := s.blacklist.BlacklistToken(ctx, jti, ttl); err != nil {
		s.logger.Error("revoke token failed", zap.String("jti", jti), zap.Error(err))
		return err
	}
	return nil
}

// HashPassword bcrypt hash for auth.admin_password_hash
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", errors.New("password must not be empty")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
