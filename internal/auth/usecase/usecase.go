package usecase

import (
	authdomain "taskpulse-backend/internal/auth/domain"
	authdto "taskpulse-backend/internal/auth/dto"
)

// AuthUsecase defines the interface for authentication business logic
type AuthUsecase interface {
	// Register creates a new account and returns a token pair
	Register(req *authdto.RegisterRequest) (*authdto.TokenResponse, error)

	// Login checks credentials and returns a token pair
	Login(req *authdto.LoginRequest) (*authdto.TokenResponse, error)

	// RefreshToken exchanges a valid refresh token for a fresh pair
	RefreshToken(refreshToken string) (*authdto.TokenResponse, error)

	// Logout invalidates a refresh token
	Logout(refreshToken string) error

	// ValidateToken resolves an access token to its user
	ValidateToken(tokenString string) (*authdomain.User, error)
}
