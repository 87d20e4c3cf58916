package models

import (
	"time"

	"github.com/google/uuid"
)

// User roles, least to most privileged.
const (
	RoleViewer     = "Viewer"
	RoleWorker     = "Worker"
	RoleManager    = "Manager"
	RoleAdmin      = "Admin"
	RoleSuperAdmin = "SuperAdmin"
)

type User struct {
	Base
	// TenantID is assigned once at creation and frozen; the write path refuses
	// to update it.
	TenantID uuid.UUID `gorm:"type:uuid;index;not null;uniqueIndex:idx_users_tenant_email" json:"tenant_id"`
	// Email is globally unique so login can resolve the tenant from the email
	// alone; the composite index mirrors the declared per-tenant constraint.
	Email         string     `gorm:"uniqueIndex;uniqueIndex:idx_users_tenant_email;not null" json:"email"`
	FirstName     string     `gorm:"not null" json:"first_name"`
	LastName      string     `gorm:"not null" json:"last_name"`
	PasswordHash  string     `gorm:"not null" json:"-"`
	Role          string     `gorm:"default:'Viewer'" json:"role"`
	IsActive      bool       `gorm:"default:true" json:"is_active"`
	EmailVerified bool       `gorm:"default:false" json:"email_verified"`
	LastLoginAt   *time.Time `json:"last_login_at,omitempty"`

	// Relationships
	Tenant *Tenant `gorm:"foreignKey:TenantID" json:"tenant,omitempty"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}
