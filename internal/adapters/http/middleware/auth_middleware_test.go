package middleware

import (
	"net/http/httptest"
	"testing"

	"agricredit/internal/config"
	"agricredit/internal/pkg/jwt"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{
		AppMode: "dev",
		JWT: config.JWTConfig{
			Secret:           "test_secret",
			RefreshSecret:    "test_refresh_secret",
			AccessTokenMins:  15,
			RefreshTokenDays: 7,
		},
	}
}

func testApp(cfg *config.Config, roleGate fiber.Handler) *fiber.App {
	app := fiber.New()
	group := app.Group("/protected", AuthMiddleware(cfg))
	if roleGate != nil {
		group.Use(roleGate)
	}
	group.Get("/", func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})
	return app
}

func bearerToken(t *testing.T, cfg *config.Config, role string) string {
	t.Helper()
	token, err := jwt.GenerateAccessToken(1, "someone", role, cfg.JWT.Secret, cfg.JWT.AccessTokenMins)
	require.NoError(t, err)
	return "Bearer " + token
}

func TestAuthMiddlewareRequiresToken(t *testing.T) {
	cfg := testConfig()
	app := testApp(cfg, nil)

	req := httptest.NewRequest("GET", "/protected/", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestAuthMiddlewareAcceptsBearer(t *testing.T) {
	cfg := testConfig()
	app := testApp(cfg, nil)

	req := httptest.NewRequest("GET", "/protected/", nil)
	req.Header.Set("Authorization", bearerToken(t, cfg, "FARMER"))
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestAuthMiddlewareRejectsBadToken(t *testing.T) {
	cfg := testConfig()
	app := testApp(cfg, nil)

	req := httptest.NewRequest("GET", "/protected/", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestRoleGates(t *testing.T) {
	cfg := testConfig()

	tests := []struct {
		name     string
		gate     fiber.Handler
		role     string
		wantCode int
	}{
		{"farmer passes FarmerOnly", FarmerOnly(), "FARMER", fiber.StatusOK},
		{"lender blocked by FarmerOnly", FarmerOnly(), "LENDER", fiber.StatusForbidden},
		{"lender passes LenderOrAdmin", LenderOrAdmin(), "LENDER", fiber.StatusOK},
		{"admin passes LenderOrAdmin", LenderOrAdmin(), "ADMIN", fiber.StatusOK},
		{"farmer blocked by LenderOrAdmin", LenderOrAdmin(), "FARMER", fiber.StatusForbidden},
		{"admin passes AdminOnly", AdminOnly(), "ADMIN", fiber.StatusOK},
		{"lender blocked by AdminOnly", AdminOnly(), "LENDER", fiber.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := testApp(cfg, tt.gate)
			req := httptest.NewRequest("GET", "/protected/", nil)
			req.Header.Set("Authorization", bearerToken(t, cfg, tt.role))
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.wantCode, resp.StatusCode)
		})
	}
}
