package auth

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	apperrors "github.com/spec-kit/bearer-auth/pkg/util"
)

// AuthMiddleware validates bearer tokens and loads principals.
type AuthMiddleware struct {
	authenticator *Authenticator
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(authenticator *Authenticator) *AuthMiddleware {
	return &AuthMiddleware{authenticator: authenticator}
}

// Handle authenticates the request when it carries a bearer token. Requests
// without one continue anonymously; route guards decide whether that is allowed.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	principal, err := m.authenticator.Authenticate(c.UserContext(), c.Get(fiber.HeaderAuthorization))
	switch {
	case errors.Is(err, ErrInvalidToken):
		return apperrors.Respond(c, apperrors.NewInvalidToken())
	case errors.Is(err, ErrSubjectNotFound):
		return apperrors.Respond(c, apperrors.NewUnauthorized("user not found"))
	case err != nil:
		return apperrors.NewInternalError(err)
	}

	if principal != nil {
		c.Locals(principalKey, principal)
		c.SetUserContext(WithPrincipal(c.UserContext(), principal))
	}
	return c.Next()
}

// RemoveTokenFromCookie instructs the client to drop its Authorization cookie.
func RemoveTokenFromCookie(c *fiber.Ctx) {
	// fiber.Cookie cannot carry Max-Age=0.
	c.Response().Header.Add(fiber.HeaderSetCookie, fiber.HeaderAuthorization+"=; Max-Age=0; Path=/")
}
