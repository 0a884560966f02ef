package auth

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"
)

// Role grants access to the analytics API.
type Role string

const (
	RoleAnalyst Role = "analyst"
	RoleAdmin   Role = "admin"
)

// ErrUnknownRole rejects roles outside the known set.
var ErrUnknownRole = errors.New("unknown role")

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleAnalyst || r == RoleAdmin
}

// RequireRole ensures the principal holds one of the allowed roles. It is a
// no-op when the middleware chain runs without authentication.
func RequireRole(allowed ...Role) fiber.Handler {
	allowedSet := make(map[Role]struct{}, len(allowed))
	for _, role := range allowed {
		allowedSet[role] = struct{}{}
	}

	return func(c *fiber.Ctx) error {
		if disabled, _ := c.Locals(authDisabledKey).(bool); disabled {
			return c.Next()
		}
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return fiber.NewError(http.StatusUnauthorized, http.StatusText(http.StatusUnauthorized))
		}
		if len(allowedSet) == 0 {
			return c.Next()
		}
		if _, exists := allowedSet[principal.Role]; !exists {
			return fiber.NewError(http.StatusForbidden, "insufficient role")
		}
		return c.Next()
	}
}
