package dto

import "github.com/spec-kit/bearer-auth/internal/domain"

// SignupRequest payload for new accounts.
type SignupRequest struct {
	Username string      `json:"username"`
	Password string      `json:"password"`
	Role     domain.Role `json:"role"`
}

// LoginRequest payload for login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// UserResponse is the public view of a user.
type UserResponse struct {
	ID          string      `json:"id"`
	Username    string      `json:"username"`
	Role        domain.Role `json:"role"`
	Authorities []string    `json:"authorities"`
}

// AuthResponse standard response for login.
type AuthResponse struct {
	Token     string `json:"token"`
	ExpiresIn int    `json:"expires_in"`
}

// NewUserResponse builds the response view of user.
func NewUserResponse(user *domain.User) UserResponse {
	return UserResponse{
		ID:          user.ID,
		Username:    user.Username,
		Role:        user.Role,
		Authorities: user.Role.Authorities(),
	}
}
