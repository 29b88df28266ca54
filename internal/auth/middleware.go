package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

type Claims struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}

// Identity resolves the request owner. A valid bearer token yields a
// user_id local; without an Authorization header an X-Guest-ID header yields
// a guest_id local. Requests with neither, or with an invalid token, are
// rejected.
func Identity(secret string) fiber.Handler {
	secretBytes := []byte(secret)
	return func(c *fiber.Ctx) error {
		header := c.Get("Authorization")
		if header == "" {
			if guestID := c.Get("X-Guest-ID"); guestID != "" {
				c.Locals("guest_id", guestID)
				return c.Next()
			}
			return fiber.NewError(fiber.StatusUnauthorized, "missing identity")
		}

		token := bearerFromHeader(header)
		if token == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "malformed authorization header")
		}

		parsed, err := parseClaimsFn(token, &Claims{}, func(_ *jwt.Token) (interface{}, error) {
			return secretBytes, nil
		})
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, err.Error())
		}

		claims, ok := parsed.Claims.(*Claims)
		if !ok || !parsed.Valid {
			return fiber.NewError(fiber.StatusUnauthorized, "token invalid")
		}

		c.Locals("user_id", claims.UserID)
		return c.Next()
	}
}

var parseClaimsFn = jwt.ParseWithClaims

func bearerFromHeader(header string) string {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return parts[1]
}
