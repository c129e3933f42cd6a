package auth

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newApp(cfg Config) *fiber.App {
	app := fiber.New()
	app.Use(New(cfg))
	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString(Author(c, "anonymous"))
	})
	return app
}

func sign(t *testing.T, secret, subject string, method jwt.SigningMethod) string {
	token := jwt.NewWithClaims(method, jwt.MapClaims{
		"sub": subject,
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	s, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return s
}

func TestNew(t *testing.T) {
	app := newApp(Config{ApiKey: "secret-key", JWTSecret: "jwt-secret"})

	tests := []struct {
		name   string
		header map[string]string
		status int
	}{
		{"No credentials", nil, fiber.StatusUnauthorized},
		{"Wrong API key", map[string]string{HeaderAPIKey: "nope"}, fiber.StatusUnauthorized},
		{"API key", map[string]string{HeaderAPIKey: "secret-key"}, fiber.StatusOK},
		{"Bearer", map[string]string{"Authorization": "Bearer " + sign(t, "jwt-secret", "timing-station-1", jwt.SigningMethodHS256)}, fiber.StatusOK},
		{"Bearer wrong secret", map[string]string{"Authorization": "Bearer " + sign(t, "other", "x", jwt.SigningMethodHS256)}, fiber.StatusUnauthorized},
		{"Bearer wrong alg", map[string]string{"Authorization": "Bearer " + sign(t, "jwt-secret", "x", jwt.SigningMethodHS512)}, fiber.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/", nil)
			for k, v := range tt.header {
				req.Header.Set(k, v)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode)
		})
	}
}

func TestNew_BearerSetsAuthor(t *testing.T) {
	app := newApp(Config{JWTSecret: "jwt-secret"})

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer "+sign(t, "jwt-secret", "station-2", jwt.SigningMethodHS256))
	resp, err := app.Test(req)
	require.NoError(t, err)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "station-2", string(body))
}

func TestNew_Disabled(t *testing.T) {
	resp, err := newApp(Config{}).Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}
