package handlers

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/bearer-auth/internal/api/dto"
	"github.com/spec-kit/bearer-auth/internal/auth"
	"github.com/spec-kit/bearer-auth/internal/service"
	apperrors "github.com/spec-kit/bearer-auth/pkg/util"
)

// AuthHandler exposes signup, login, logout and identity endpoints.
type AuthHandler struct {
	auth  *service.AuthService
	users *service.UserDetailsService
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService, users *service.UserDetailsService) *AuthHandler {
	return &AuthHandler{auth: authService, users: users}
}

// Signup handles POST /auth/signup.
func (h *AuthHandler) Signup(c *fiber.Ctx) error {
	var req dto.SignupRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload")
	}
	if req.Username == "" || req.Password == "" {
		return apperrors.NewValidationError("username and password required")
	}

	user, err := h.auth.Signup(c.UserContext(), req.Username, req.Password, req.Role)
	if errors.Is(err, service.ErrUsernameTaken) {
		return apperrors.NewConflict(err.Error())
	}
	if err != nil {
		return apperrors.NewValidationError(err.Error())
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewUserResponse(user)})
}

// Login handles POST /auth/login. The token is returned in the Authorization
// response header as well as the body.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload")
	}
	if req.Username == "" || req.Password == "" {
		return apperrors.NewValidationError("username and password required")
	}

	user, token, err := h.auth.Login(c.UserContext(), req.Username, req.Password)
	if errors.Is(err, auth.ErrInvalidCredentials) {
		return apperrors.NewUnauthorized(err.Error())
	}
	if err != nil {
		return apperrors.NewInternalError(err)
	}

	c.Set(fiber.HeaderAuthorization, token)
	return c.JSON(fiber.Map{
		"data": fiber.Map{
			"user": dto.NewUserResponse(user),
			"auth": dto.AuthResponse{Token: token, ExpiresIn: int(auth.TokenTTL.Seconds())},
		},
	})
}

// Logout handles POST /auth/logout: revokes the presented token and clears
// the Authorization cookie.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized(http.StatusText(http.StatusUnauthorized))
	}
	token, ok := auth.ResolveToken(c.Get(fiber.HeaderAuthorization))
	if !ok {
		return apperrors.NewUnauthorized(http.StatusText(http.StatusUnauthorized))
	}

	if err := h.auth.Logout(c.UserContext(), principal.Subject(), token); err != nil {
		return apperrors.NewInternalError(err)
	}
	auth.RemoveTokenFromCookie(c)
	return c.SendStatus(http.StatusNoContent)
}

// Me handles GET /auth/me.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized(http.StatusText(http.StatusUnauthorized))
	}
	return c.JSON(fiber.Map{"data": dto.NewUserResponse(principal.User)})
}

// GetUser handles GET /admin/users/:username.
func (h *AuthHandler) GetUser(c *fiber.Ctx) error {
	user, err := h.users.ByUsername(c.UserContext(), c.Params("username"))
	if errors.Is(err, auth.ErrSubjectNotFound) {
		return apperrors.NewNotFound("user")
	}
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	return c.JSON(fiber.Map{"data": dto.NewUserResponse(user)})
}
