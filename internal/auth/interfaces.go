package auth

import (
	"context"

	"github.com/google/uuid"

	"github.com/hugh/buildtrack/internal/database/models"
)

// Authenticator defines the registration and credential-verification surface.
type Authenticator interface {
	RegisterCompany(ctx context.Context, input RegisterInput) (*models.User, error)
	Authenticate(ctx context.Context, email, password string) (*models.User, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// TokenService defines signed session token operations.
type TokenService interface {
	GenerateToken(user *models.User) (string, error)
	ParseToken(tokenString string) (*Claims, error)
	ValidateToken(tokenString string) bool
	GetUserIDFromToken(tokenString string) (uuid.UUID, error)
}

// Compile-time interface satisfaction checks
var (
	_ Authenticator = (*Service)(nil)
	_ TokenService  = (*JWTService)(nil)
)
