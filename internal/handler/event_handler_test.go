package handler

import (
	"net/http/httptest"
	"testing"

	"pattern-sphere-be/internal/pkg/logger"
	internalWS "pattern-sphere-be/internal/websocket"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServeWsAuth(t *testing.T) {
	const secret = "test-secret"
	hub := internalWS.NewHub(nil, logger.NewNopLogger())
	app := fiber.New()
	NewEventHandler(hub, secret, logger.NewNopLogger()).RegisterRoutes(app)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "reader"})
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)

	tests := []struct {
		name   string
		target string
		status int
	}{
		{"missing token", "/events/v1/ws", fiber.StatusUnauthorized},
		{"bad token", "/events/v1/ws?token=garbage", fiber.StatusUnauthorized},
		// A plain GET with a valid token is not an upgrade.
		{"no upgrade", "/events/v1/ws?token=" + signed, fiber.StatusUpgradeRequired},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := app.Test(httptest.NewRequest("GET", tt.target, nil))
			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode)
		})
	}
}
