package dto

import (
	"time"

	"github.com/hugh/buildtrack/internal/api/validation"
)

type RegisterRequest struct {
	CompanyName  string `json:"companyName"`
	Subdomain    string `json:"subdomain"`
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`
	Email        string `json:"email"`
	Password     string `json:"password"`
	ContactPhone string `json:"contactPhone,omitempty"`
}

func (r RegisterRequest) Validate() []FieldError {
	var errs []FieldError

	if r.CompanyName == "" {
		errs = append(errs, FieldError{Field: "companyName", Message: "Company name is required"})
	} else if len(r.CompanyName) > 200 {
		errs = append(errs, FieldError{Field: "companyName", Message: "Company name cannot exceed 200 characters"})
	}

	if ok, msg := validation.IsValidSubdomain(r.Subdomain); !ok {
		errs = append(errs, FieldError{Field: "subdomain", Message: msg})
	}

	if r.FirstName == "" {
		errs = append(errs, FieldError{Field: "firstName", Message: "First name is required"})
	} else if len(r.FirstName) > 100 {
		errs = append(errs, FieldError{Field: "firstName", Message: "First name cannot exceed 100 characters"})
	}

	if r.LastName == "" {
		errs = append(errs, FieldError{Field: "lastName", Message: "Last name is required"})
	} else if len(r.LastName) > 100 {
		errs = append(errs, FieldError{Field: "lastName", Message: "Last name cannot exceed 100 characters"})
	}

	if r.Email == "" {
		errs = append(errs, FieldError{Field: "email", Message: "Email is required"})
	} else if !validation.IsValidEmail(r.Email) {
		errs = append(errs, FieldError{Field: "email", Message: "Invalid email address"})
	}

	if ok, msg := validation.IsValidPassword(r.Password); !ok {
		errs = append(errs, FieldError{Field: "password", Message: msg})
	}

	if r.ContactPhone != "" && !validation.IsValidPhone(r.ContactPhone) {
		errs = append(errs, FieldError{Field: "contactPhone", Message: "Invalid phone number"})
	}

	return errs
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r LoginRequest) Validate() []FieldError {
	var errs []FieldError
	if r.Email == "" {
		errs = append(errs, FieldError{Field: "email", Message: "Email is required"})
	}
	if r.Password == "" {
		errs = append(errs, FieldError{Field: "password", Message: "Password is required"})
	}
	return errs
}

// AuthResponse is the token envelope returned by register and login.
type AuthResponse struct {
	Token       string    `json:"token"`
	ExpiresAt   time.Time `json:"expiresAt"`
	UserID      string    `json:"userId"`
	Email       string    `json:"email"`
	FullName    string    `json:"fullName"`
	Role        string    `json:"role"`
	TenantID    string    `json:"tenantId"`
	CompanyName string    `json:"companyName"`
}

// CurrentUserResponse is built from token claims alone.
type CurrentUserResponse struct {
	UserID   string `json:"userId"`
	Email    string `json:"email"`
	FullName string `json:"fullName"`
	Role     string `json:"role"`
	TenantID string `json:"tenantId"`
}
