package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hugh/buildtrack/internal/database/models"
	"github.com/hugh/buildtrack/internal/store"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountInactive    = errors.New("account is inactive")

	// Duplicate identity errors. Both surface as a 400 at the boundary.
	ErrDuplicateIdentity  = errors.New("duplicate identity")
	ErrDuplicateEmail     = fmt.Errorf("%w: a user with this email already exists", ErrDuplicateIdentity)
	ErrDuplicateSubdomain = fmt.Errorf("%w: this subdomain is already taken", ErrDuplicateIdentity)
)

// dummyHash absorbs a bcrypt comparison when the email is unknown, so the
// response time does not reveal whether the email or the password was wrong.
var dummyHash, _ = HashPassword("timing-equalizer")

// VerificationEnqueuer hands off a verification email job after registration.
type VerificationEnqueuer interface {
	EnqueueVerificationEmail(ctx context.Context, tenantID, userID uuid.UUID, email string) error
}

// Service orchestrates company registration and credential verification.
// Both operations search across all tenants by email or subdomain before any
// tenant scope exists, so their queries run through store.CrossTenant — the
// one sanctioned bypass of the scoping filter.
type Service struct {
	db       *gorm.DB
	jwt      *JWTService
	enqueuer VerificationEnqueuer // nil when no queue is configured
	log      *slog.Logger
}

func NewService(db *gorm.DB, jwt *JWTService, enqueuer VerificationEnqueuer, log *slog.Logger) *Service {
	return &Service{db: db, jwt: jwt, enqueuer: enqueuer, log: log}
}

type RegisterInput struct {
	CompanyName  string
	Subdomain    string
	FirstName    string
	LastName     string
	Email        string
	Password     string
	ContactPhone string
}

// RegisterCompany creates a tenant and its first admin user as one atomic
// unit. The email check is global: every email resolves to exactly one tenant
// so login can work from the email alone. The pre-checks give friendly errors
// for the common case; the unique indexes on subdomain and email decide races,
// and a constraint violation at commit maps to the same duplicate errors.
func (s *Service) RegisterCompany(ctx context.Context, input RegisterInput) (*models.User, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	subdomain := strings.ToLower(strings.TrimSpace(input.Subdomain))
	unscoped := store.CrossTenant(ctx)

	var existingUser models.User
	err := s.db.WithContext(unscoped).Where("email = ?", email).First(&existingUser).Error
	if err == nil {
		return nil, ErrDuplicateEmail
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	var existingTenant models.Tenant
	err = s.db.WithContext(unscoped).Where("subdomain = ?", subdomain).First(&existingTenant).Error
	if err == nil {
		return nil, ErrDuplicateSubdomain
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hash, err := HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	tenant := models.Tenant{
		Base:             models.Base{ID: uuid.New()},
		CompanyName:      input.CompanyName,
		Subdomain:        subdomain,
		ContactEmail:     email,
		ContactPhone:     input.ContactPhone,
		SubscriptionPlan: "free",
		IsActive:         true,
	}

	user := models.User{
		Base:          models.Base{ID: uuid.New()},
		TenantID:      tenant.ID,
		Email:         email,
		FirstName:     input.FirstName,
		LastName:      input.LastName,
		PasswordHash:  hash,
		Role:          models.RoleAdmin,
		IsActive:      true,
		EmailVerified: false,
	}

	err = s.db.WithContext(unscoped).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&tenant).Error; err != nil {
			return err
		}
		return tx.Create(&user).Error
	})
	if err != nil {
		return nil, translateConstraint(err)
	}

	user.Tenant = &tenant

	if s.enqueuer != nil {
		if err := s.enqueuer.EnqueueVerificationEmail(ctx, tenant.ID, user.ID, user.Email); err != nil {
			// Registration already committed; verification can be re-sent later.
			s.log.Warn("failed to enqueue verification email", "user_id", user.ID, "error", err)
		}
	}

	return &user, nil
}

// Authenticate verifies credentials and returns the user with its tenant
// loaded. Unknown email and wrong password produce the identical error, and
// the unknown-email path still burns a hash comparison to keep the timing
// indistinguishable.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	unscoped := store.CrossTenant(ctx)

	var user models.User
	err := s.db.WithContext(unscoped).
		Preload("Tenant").
		Where("email = ?", email).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			CheckPassword(password, dummyHash)
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !user.IsActive {
		return nil, ErrAccountInactive
	}
	if user.Tenant == nil || !user.Tenant.IsActive {
		return nil, ErrAccountInactive
	}

	if !CheckPassword(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	now := time.Now().UTC()
	user.LastLoginAt = &now
	if err := s.db.WithContext(unscoped).
		Model(&user).
		Update("last_login_at", now).Error; err != nil {
		return nil, err
	}

	return &user, nil
}

// GetUserByID loads a user with its tenant, independent of scope. Used by
// admin tooling and tests; request handlers read identity from token claims.
func (s *Service) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(store.CrossTenant(ctx)).
		Preload("Tenant").
		First(&user, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// translateConstraint maps a unique-index violation raised at commit time to
// the same duplicate errors the pre-checks produce, so a racing registration
// loses cleanly instead of surfacing a storage error.
func translateConstraint(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicateIdentity
	}
	return err
}
