package middleware

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"

	"github.com/arka-labs/gradeflow-api/internal/utils"
)

// JWTProtected returns a middleware that validates JWT bearer tokens issued
// by the external auth service and stores the subject in request locals.
func JWTProtected(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authorization := c.Get("Authorization")

		const bearer = "Bearer "
		if !strings.HasPrefix(authorization, bearer) {
			return utils.SendError(c, fiber.StatusUnauthorized, "missing bearer token")
		}

		tokenString := strings.TrimSpace(authorization[len(bearer):])
		token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method")
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid token")
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid token claims")
		}

		if userID, ok := subjectID(claims); ok {
			c.Locals("user_id", userID)
		}

		return c.Next()
	}
}

func subjectID(claims jwt.MapClaims) (uint, bool) {
	for _, key := range []string{"sub", "user_id"} {
		switch value := claims[key].(type) {
		case float64:
			if value >= 0 {
				return uint(value), true
			}
		case string:
			if parsed, err := strconv.ParseUint(value, 10, 64); err == nil {
				return uint(parsed), true
			}
		}
	}

	return 0, false
}
