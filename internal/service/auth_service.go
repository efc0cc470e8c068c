package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"time"

	"github.com/OffCmfrt/exchange-return-tracking/internal/config"
	"github.com/OffCmfrt/exchange-return-tracking/internal/dto"

	"github.com/golang-jwt/jwt/v5"
)

type IAuthService interface {
	LoginAdmin(ctx context.Context, req *dto.AdminLoginRequest) (*dto.AdminLoginResponse, error)
}

type authService struct {
	cfg config.AdminConfig
}

func NewAuthService(cfg config.AdminConfig) IAuthService {
	return &authService{cfg: cfg}
}

// LoginAdmin exchanges the shared admin secret for a bearer token. The
// comparison is constant-time so the secret cannot be probed byte by byte.
func (s *authService) LoginAdmin(ctx context.Context, req *dto.AdminLoginRequest) (*dto.AdminLoginResponse, error) {
	if s.cfg.Secret == "" {
		return nil, errors.New("admin login disabled: no secret configured")
	}
	if s.cfg.JWTSecret == "" {
		return nil, errors.New("admin login disabled: no JWT secret configured")
	}
	if subtle.ConstantTimeCompare([]byte(req.Secret), []byte(s.cfg.Secret)) != 1 {
		return nil, errors.New("invalid credentials")
	}

	expiresAt := time.Now().Add(24 * time.Hour)
	claims := jwt.MapClaims{
		"role": "admin",
		"exp":  expiresAt.Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return nil, err
	}

	return &dto.AdminLoginResponse{
		Token:     signedToken,
		ExpiresAt: expiresAt,
	}, nil
}
