package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/hugh/buildtrack/internal/api/dto"
	"github.com/hugh/buildtrack/internal/api/middleware"
	"github.com/hugh/buildtrack/internal/auth"
)

type AuthHandler struct {
	authService *auth.Service
	jwtService  *auth.JWTService
	logger      *slog.Logger
}

func NewAuthHandler(authService *auth.Service, jwtService *auth.JWTService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{authService: authService, jwtService: jwtService, logger: logger}
}

// Register creates a tenant with its first admin user and returns the token
// envelope.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if fieldErrs := req.Validate(); len(fieldErrs) > 0 {
		writeError(w, http.StatusBadRequest, "Validation failed", fieldErrs)
		return
	}

	user, err := h.authService.RegisterCompany(r.Context(), auth.RegisterInput{
		CompanyName:  req.CompanyName,
		Subdomain:    req.Subdomain,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Email:        req.Email,
		Password:     req.Password,
		ContactPhone: req.ContactPhone,
	})
	if err != nil {
		if errors.Is(err, auth.ErrDuplicateIdentity) {
			h.logger.Warn("registration rejected", "subdomain", req.Subdomain, "error", err)
			writeError(w, http.StatusBadRequest, err.Error(), nil)
			return
		}
		h.logger.Error("registration failed", "subdomain", req.Subdomain, "error", err)
		writeError(w, http.StatusInternalServerError, "An error occurred during registration", nil)
		return
	}

	token, err := h.jwtService.GenerateToken(user)
	if err != nil {
		h.logger.Error("token generation failed", "user_id", user.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "An error occurred during registration", nil)
		return
	}

	h.logger.Info("registration successful", "email", user.Email, "tenant_id", user.TenantID)

	writeJSON(w, http.StatusCreated, dto.AuthResponse{
		Token:       token,
		ExpiresAt:   time.Now().Add(h.jwtService.Expiry()),
		UserID:      user.ID.String(),
		Email:       user.Email,
		FullName:    user.FullName(),
		Role:        user.Role,
		TenantID:    user.TenantID.String(),
		CompanyName: user.Tenant.CompanyName,
	})
}

// Login verifies credentials and returns the token envelope. Unknown email
// and wrong password get the same answer.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if fieldErrs := req.Validate(); len(fieldErrs) > 0 {
		writeError(w, http.StatusBadRequest, "Validation failed", fieldErrs)
		return
	}

	user, err := h.authService.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrInvalidCredentials):
			writeError(w, http.StatusUnauthorized, "Invalid email or password", nil)
		case errors.Is(err, auth.ErrAccountInactive):
			writeError(w, http.StatusUnauthorized, "Account is inactive", nil)
		default:
			h.logger.Error("login failed", "error", err)
			writeError(w, http.StatusInternalServerError, "An error occurred during login", nil)
		}
		return
	}

	token, err := h.jwtService.GenerateToken(user)
	if err != nil {
		h.logger.Error("token generation failed", "user_id", user.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "An error occurred during login", nil)
		return
	}

	h.logger.Info("login successful", "email", user.Email, "tenant_id", user.TenantID)

	writeJSON(w, http.StatusOK, dto.AuthResponse{
		Token:       token,
		ExpiresAt:   time.Now().Add(h.jwtService.Expiry()),
		UserID:      user.ID.String(),
		Email:       user.Email,
		FullName:    user.FullName(),
		Role:        user.Role,
		TenantID:    user.TenantID.String(),
		CompanyName: user.Tenant.CompanyName,
	})
}

// Me reads identity from the validated token's claims; no storage access.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaims(r.Context())
	if claims == nil {
		writeError(w, http.StatusUnauthorized, "Unauthorized", nil)
		return
	}

	writeJSON(w, http.StatusOK, dto.CurrentUserResponse{
		UserID:   claims.UserID.String(),
		Email:    claims.Email,
		FullName: claims.FullName,
		Role:     claims.Role,
		TenantID: claims.TenantID.String(),
	})
}
