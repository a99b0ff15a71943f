package middleware

import (
	"fmt"
	"os"
	"strings"

	"cylinder-booking/constants"
	"cylinder-booking/types"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

// VerifyJWT parses and validates an HS256 token signed with JWT_SECRET.
func VerifyJWT(tokenString string) (jwt.MapClaims, error) {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return nil, fmt.Errorf("JWT_SECRET environment variable is not set")
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse JWT: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid JWT token")
	}

	return claims, nil
}

// extractToken pulls the JWT from the Authorization header, falling back to
// the access cookie set at login.
func extractToken(c *fiber.Ctx) (string, error) {
	authHeader := c.Get("Authorization")
	if authHeader != "" {
		tokenParts := strings.Split(authHeader, " ")
		if len(tokenParts) != 2 || tokenParts[0] != "Bearer" {
			return "", fmt.Errorf("invalid authorization header format")
		}
		return tokenParts[1], nil
	}

	token := c.Cookies("access")
	if token == "" {
		return "", fmt.Errorf("authorization token missing")
	}
	return token, nil
}

// RequireRoles returns a middleware that authenticates the request and
// checks the JWT role claim against the allowed set. constants.RoleAny
// accepts any authenticated user.
func RequireRoles(roles ...string) fiber.Handler {
	allowed := make(map[string]bool, len(roles))
	any := false
	for _, r := range roles {
		if r == constants.RoleAny {
			any = true
		}
		allowed[r] = true
	}

	return func(c *fiber.Ctx) error {
		token, err := extractToken(c)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(types.ApiResponse{
				Status:  fiber.StatusUnauthorized,
				Message: err.Error(),
			})
		}

		claims, err := VerifyJWT(token)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(types.ApiResponse{
				Status:  fiber.StatusUnauthorized,
				Message: "Session expired. Login again.",
			})
		}

		role, _ := claims["role"].(string)
		if !any && !allowed[role] {
			return c.Status(fiber.StatusForbidden).JSON(types.ApiResponse{
				Status:  fiber.StatusForbidden,
				Message: "Insufficient permissions",
			})
		}

		c.Locals("user", claims)
		c.Locals("role", role)
		return c.Next()
	}
}

// RequireAuthentication only requires a valid token without a role check.
func RequireAuthentication() fiber.Handler {
	return RequireRoles(constants.RoleAny)
}

// RequireAdmin gates a route group to administrators.
func RequireAdmin() fiber.Handler {
	return RequireRoles(constants.RoleAdmin)
}
