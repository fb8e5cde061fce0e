package auth

import "github.com/cineshelf/cineshelf/internal/types"

// LoginRequest represents the login request body
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterRequest represents the register request body
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse is returned by both login and register. The user field is
// the response DTO, which carries no password hash by construction.
type AuthResponse struct {
	AccessToken string             `json:"access_token"`
	User        types.UserResponse `json:"user"`
}
