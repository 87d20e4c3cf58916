package auth_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/hugh/buildtrack/internal/auth"
	"github.com/hugh/buildtrack/internal/database/models"
	"github.com/hugh/buildtrack/internal/store"
	"github.com/hugh/buildtrack/internal/testutil"
)

func setupService(t *testing.T) (*auth.Service, *gorm.DB) {
	t.Helper()
	db, _ := testutil.SetupTestDB(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := auth.NewService(db, testutil.CreateTestJWTService(), nil, logger)
	return svc, db
}

func registerInput(subdomain, email string) auth.RegisterInput {
	return auth.RegisterInput{
		CompanyName: "Acme Construction",
		Subdomain:   subdomain,
		FirstName:   "Ada",
		LastName:    "Mason",
		Email:       email,
		Password:    "Abc12345!",
	}
}

func TestService_RegisterCompany(t *testing.T) {
	svc, db := setupService(t)
	ctx := context.Background()

	t.Run("creates tenant and admin user atomically", func(t *testing.T) {
		user, err := svc.RegisterCompany(ctx, registerInput("acme", "admin@acme.com"))
		require.NoError(t, err)

		assert.Equal(t, models.RoleAdmin, user.Role)
		assert.True(t, user.IsActive)
		assert.False(t, user.EmailVerified)
		require.NotNil(t, user.Tenant)
		assert.Equal(t, user.TenantID, user.Tenant.ID)
		assert.Equal(t, "Acme Construction", user.Tenant.CompanyName)
		assert.Equal(t, "free", user.Tenant.SubscriptionPlan)
		assert.True(t, user.Tenant.IsActive)

		// Both rows persisted
		var tenantCount, userCount int64
		db.Model(&models.Tenant{}).Where("subdomain = ?", "acme").Count(&tenantCount)
		db.WithContext(store.CrossTenant(ctx)).Model(&models.User{}).Where("email = ?", "admin@acme.com").Count(&userCount)
		assert.EqualValues(t, 1, tenantCount)
		assert.EqualValues(t, 1, userCount)
	})

	t.Run("normalizes subdomain and email to lowercase", func(t *testing.T) {
		input := registerInput("mixedcase", "Admin@MixedCase.com")
		input.Subdomain = "mixedcase"
		user, err := svc.RegisterCompany(ctx, input)
		require.NoError(t, err)

		assert.Equal(t, "admin@mixedcase.com", user.Email)
		assert.Equal(t, "mixedcase", user.Tenant.Subdomain)
	})

	t.Run("password is stored hashed", func(t *testing.T) {
		user, err := svc.RegisterCompany(ctx, registerInput("hashing", "admin@hashing.com"))
		require.NoError(t, err)

		assert.NotEqual(t, "Abc12345!", user.PasswordHash)
		assert.True(t, auth.CheckPassword("Abc12345!", user.PasswordHash))
	})

	t.Run("rejects duplicate email across tenants", func(t *testing.T) {
		_, err := svc.RegisterCompany(ctx, registerInput("first-co", "dup@example.com"))
		require.NoError(t, err)

		_, err = svc.RegisterCompany(ctx, registerInput("second-co", "dup@example.com"))
		assert.ErrorIs(t, err, auth.ErrDuplicateIdentity)
		assert.ErrorIs(t, err, auth.ErrDuplicateEmail)

		// No partially created tenant
		var count int64
		db.Model(&models.Tenant{}).Where("subdomain = ?", "second-co").Count(&count)
		assert.EqualValues(t, 0, count)
	})

	t.Run("rejects duplicate subdomain with different email", func(t *testing.T) {
		_, err := svc.RegisterCompany(ctx, registerInput("taken", "one@taken.com"))
		require.NoError(t, err)

		_, err = svc.RegisterCompany(ctx, registerInput("taken", "two@taken.com"))
		assert.ErrorIs(t, err, auth.ErrDuplicateIdentity)
		assert.ErrorIs(t, err, auth.ErrDuplicateSubdomain)
	})

	t.Run("subdomain check is case-insensitive", func(t *testing.T) {
		_, err := svc.RegisterCompany(ctx, registerInput("casecheck", "one@casecheck.com"))
		require.NoError(t, err)

		input := registerInput("CaseCheck", "two@casecheck.com")
		_, err = svc.RegisterCompany(ctx, input)
		assert.ErrorIs(t, err, auth.ErrDuplicateSubdomain)
	})

	t.Run("storage constraint decides a race the pre-check missed", func(t *testing.T) {
		// Simulate the loser of a concurrent registration: the subdomain row
		// appears after the pre-check would have passed.
		_, err := svc.RegisterCompany(ctx, registerInput("raced", "one@raced.com"))
		require.NoError(t, err)

		duplicate := &models.Tenant{
			CompanyName:  "Raced Twice",
			Subdomain:    "raced",
			ContactEmail: "two@raced.com",
			IsActive:     true,
		}
		err = db.Create(duplicate).Error
		assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)
	})
}

func TestService_Authenticate(t *testing.T) {
	svc, db := setupService(t)
	ctx := context.Background()

	register := func(t *testing.T, subdomain, email string) *models.User {
		t.Helper()
		user, err := svc.RegisterCompany(ctx, registerInput(subdomain, email))
		require.NoError(t, err)
		return user
	}

	t.Run("returns user with tenant on valid credentials", func(t *testing.T) {
		register(t, "login-ok", "admin@login-ok.com")

		user, err := svc.Authenticate(ctx, "admin@login-ok.com", "Abc12345!")
		require.NoError(t, err)
		require.NotNil(t, user.Tenant)
		assert.Equal(t, "login-ok", user.Tenant.Subdomain)
	})

	t.Run("email lookup is case-insensitive", func(t *testing.T) {
		register(t, "login-case", "admin@login-case.com")

		user, err := svc.Authenticate(ctx, "Admin@Login-Case.COM", "Abc12345!")
		require.NoError(t, err)
		assert.Equal(t, "admin@login-case.com", user.Email)
	})

	t.Run("unknown email and wrong password return the same error", func(t *testing.T) {
		register(t, "login-same", "admin@login-same.com")

		_, errUnknown := svc.Authenticate(ctx, "nobody@example.com", "Abc12345!")
		_, errWrongPw := svc.Authenticate(ctx, "admin@login-same.com", "Wrong12345!")

		assert.ErrorIs(t, errUnknown, auth.ErrInvalidCredentials)
		assert.ErrorIs(t, errWrongPw, auth.ErrInvalidCredentials)
		assert.Equal(t, errUnknown, errWrongPw)
	})

	t.Run("inactive user cannot log in", func(t *testing.T) {
		user := register(t, "login-inactive", "admin@login-inactive.com")

		err := db.WithContext(store.CrossTenant(ctx)).
			Model(&models.User{}).
			Where("id = ?", user.ID).
			Update("is_active", false).Error
		require.NoError(t, err)

		_, err = svc.Authenticate(ctx, "admin@login-inactive.com", "Abc12345!")
		assert.ErrorIs(t, err, auth.ErrAccountInactive)
	})

	t.Run("inactive tenant blocks the whole company", func(t *testing.T) {
		user := register(t, "login-frozen", "admin@login-frozen.com")

		err := db.Model(&models.Tenant{}).
			Where("id = ?", user.TenantID).
			Update("is_active", false).Error
		require.NoError(t, err)

		_, err = svc.Authenticate(ctx, "admin@login-frozen.com", "Abc12345!")
		assert.ErrorIs(t, err, auth.ErrAccountInactive)
	})

	t.Run("successful login records LastLoginAt", func(t *testing.T) {
		user := register(t, "login-stamp", "admin@login-stamp.com")
		assert.Nil(t, user.LastLoginAt)

		before := time.Now().Add(-time.Second)
		_, err := svc.Authenticate(ctx, "admin@login-stamp.com", "Abc12345!")
		require.NoError(t, err)

		var reloaded models.User
		err = db.WithContext(store.CrossTenant(ctx)).First(&reloaded, "id = ?", user.ID).Error
		require.NoError(t, err)
		require.NotNil(t, reloaded.LastLoginAt)
		assert.True(t, reloaded.LastLoginAt.After(before))
	})
}

func TestService_GetUserByID(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	t.Run("loads user with tenant", func(t *testing.T) {
		created, err := svc.RegisterCompany(ctx, registerInput("byid", "admin@byid.com"))
		require.NoError(t, err)

		user, err := svc.GetUserByID(ctx, created.ID)
		require.NoError(t, err)
		require.NotNil(t, user.Tenant)
		assert.Equal(t, created.TenantID, user.Tenant.ID)
	})

	t.Run("unknown id", func(t *testing.T) {
		created, err := svc.RegisterCompany(ctx, registerInput("byid-miss", "admin@byid-miss.com"))
		require.NoError(t, err)
		_ = created

		_, err = svc.GetUserByID(ctx, uuid.New())
		assert.ErrorIs(t, err, auth.ErrUserNotFound)
	})
}
