package service

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/OffCmfrt/exchange-return-tracking/internal/config"
	"github.com/OffCmfrt/exchange-return-tracking/internal/dto"
	"github.com/OffCmfrt/exchange-return-tracking/internal/pkg/serverutils"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
)

func TestIssuedTokenPassesJwtMiddleware(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-signing-secret")

	svc := NewAuthService(config.AdminConfig{
		Secret:    "letmein",
		JWTSecret: "test-signing-secret",
	})
	res, err := svc.LoginAdmin(context.Background(), &dto.AdminLoginRequest{Secret: "letmein"})
	require.NoError(t, err)
	require.NotEmpty(t, res.Token)

	// The token must be accepted by the same middleware chain the admin
	// routes are registered behind.
	app := fiber.New()
	app.Get("/guarded", serverutils.JwtMiddleware, serverutils.AdminMiddleware, func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	req := httptest.NewRequest("GET", "/guarded", nil)
	req.Header.Set("Authorization", "Bearer "+res.Token)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestLoginRefusesWithoutJWTSecret(t *testing.T) {
	svc := NewAuthService(config.AdminConfig{Secret: "letmein", JWTSecret: ""})
	_, err := svc.LoginAdmin(context.Background(), &dto.AdminLoginRequest{Secret: "letmein"})
	require.Error(t, err)
}

func TestLoginRejectsWrongSecret(t *testing.T) {
	svc := NewAuthService(config.AdminConfig{Secret: "letmein", JWTSecret: "test-signing-secret"})
	_, err := svc.LoginAdmin(context.Background(), &dto.AdminLoginRequest{Secret: "wrong"})
	require.Error(t, err)
}
