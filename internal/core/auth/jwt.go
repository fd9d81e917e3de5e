package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"storefront/internal/core/httperror"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

// LocalsUserID is the fiber Locals key holding the authenticated user id.
const LocalsUserID = "user_id"

// RoleAdmin is the role claim required by admin routes.
const RoleAdmin = "admin"

var errMissingBearer = errors.New("missing bearer token")

// Claims are the token claims understood by the storefront.
type Claims struct {
	// Role is "admin" for back-office users and empty for customers.
	Role string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// IssueToken signs an HS256 token for userID with the given role.
func IssueToken(secret, userID, role string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// Parse validates a raw token and returns its claims.
func Parse(secret, raw string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}
	if !token.Valid || claims.Subject == "" {
		return nil, errors.New("invalid token: missing subject")
	}
	return claims, nil
}

// Required rejects requests without a valid bearer token and stores the subject
// under LocalsUserID.
func Required(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, err := claimsFromHeader(c, secret)
		if err != nil {
			return httperror.Abort(c, http.StatusUnauthorized, "Token verification failed, access denied")
		}
		c.Locals(LocalsUserID, claims.Subject)
		return c.Next()
	}
}

// Admin behaves like Required and additionally demands the admin role.
func Admin(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, err := claimsFromHeader(c, secret)
		if err != nil {
			return httperror.Abort(c, http.StatusUnauthorized, "Token verification failed, access denied")
		}
		if claims.Role != RoleAdmin {
			return httperror.Abort(c, http.StatusForbidden, "Admin role required")
		}
		c.Locals(LocalsUserID, claims.Subject)
		return c.Next()
	}
}

// UserID returns the authenticated user id stored by Required/Admin.
func UserID(c *fiber.Ctx) string {
	id, _ := c.Locals(LocalsUserID).(string)
	return id
}

func claimsFromHeader(c *fiber.Ctx, secret string) (*Claims, error) {
	header := c.Get(fiber.HeaderAuthorization)
	raw, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || raw == "" {
		return nil, errMissingBearer
	}
	return Parse(secret, raw)
}

