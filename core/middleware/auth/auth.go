package auth

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

// HeaderAPIKey carries the static API key.
const HeaderAPIKey = "X-API-Key"

// LocalsAuthor holds the identity recorded as author of audit entries.
const LocalsAuthor = "author"

// Config selects the accepted credentials. Empty values disable that method.
type Config struct {
	ApiKey    string
	JWTSecret string
}

// New protects routes with an API key header or an HS256 bearer token.
// With no credential configured every request passes.
func New(cfg Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if cfg.ApiKey == "" && cfg.JWTSecret == "" {
			return c.Next()
		}

		if cfg.ApiKey != "" && c.Get(HeaderAPIKey) == cfg.ApiKey {
			return c.Next()
		}

		if cfg.JWTSecret != "" {
			if raw, ok := strings.CutPrefix(c.Get(fiber.HeaderAuthorization), "Bearer "); ok {
				subject, err := verify(raw, cfg.JWTSecret)
				if err == nil {
					if subject != "" {
						c.Locals(LocalsAuthor, subject)
					}
					return c.Next()
				}
			}
		}

		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
	}
}

func verify(raw, secret string) (string, error) {
	token, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return "", err
	}
	if !token.Valid {
		return "", errors.New("invalid token")
	}
	return token.Claims.GetSubject()
}

// Author returns the authenticated identity, or fallback when there is none.
func Author(c *fiber.Ctx, fallback string) string {
	if a, ok := c.Locals(LocalsAuthor).(string); ok && a != "" {
		return a
	}
	return fallback
}
