package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/hugh/buildtrack/internal/auth"
	"github.com/hugh/buildtrack/internal/database"
	"github.com/hugh/buildtrack/internal/database/models"
	"github.com/hugh/buildtrack/internal/store"
	"github.com/hugh/buildtrack/internal/tenant"
)

// SetupTestDB creates an in-memory SQLite database and returns two handles to
// it: the write side with the tenant scoping callbacks installed, and a plain
// read side, mirroring the production wiring. The shared-cache DSN keeps both
// handles on the same database.
func SetupTestDB(t *testing.T) (write, read *gorm.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.New().String())

	write, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	if err := database.AutoMigrate(write); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	registry := store.NewRegistry(database.ScopedTables()...)
	if err := registry.Install(write); err != nil {
		t.Fatalf("failed to install tenant scoping: %v", err)
	}

	read, err = gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open read handle: %v", err)
	}

	t.Cleanup(func() {
		if sqlDB, err := read.DB(); err == nil {
			sqlDB.Close()
		}
		if sqlDB, err := write.DB(); err == nil {
			sqlDB.Close()
		}
	})

	return write, read
}

// ScopedContext returns a context carrying the tenant's scope, as the auth
// middleware would have set it.
func ScopedContext(tenantID, userID uuid.UUID) context.Context {
	return tenant.NewContext(context.Background(), tenant.Scope{
		TenantID: tenantID,
		UserID:   userID,
	})
}

// CreateTestTenant creates a tenant with a unique subdomain.
func CreateTestTenant(t *testing.T, db *gorm.DB) *models.Tenant {
	t.Helper()

	suffix := uuid.New().String()[:8]
	tn := &models.Tenant{
		Base:             models.Base{ID: uuid.New()},
		CompanyName:      "Test Construction Co",
		Subdomain:        "test-" + suffix,
		ContactEmail:     "contact-" + suffix + "@example.com",
		SubscriptionPlan: "free",
		IsActive:         true,
	}

	if err := db.Create(tn).Error; err != nil {
		t.Fatalf("failed to create test tenant: %v", err)
	}

	return tn
}

// CreateTestUser creates an active admin user in the given tenant. The insert
// goes through the cross-tenant path because no request scope exists yet.
func CreateTestUser(t *testing.T, db *gorm.DB, tn *models.Tenant) *models.User {
	t.Helper()

	hash, err := auth.HashPassword("Testpass1!")
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &models.User{
		Base:         models.Base{ID: uuid.New()},
		TenantID:     tn.ID,
		Email:        "user-" + uuid.New().String()[:8] + "@example.com",
		FirstName:    "Test",
		LastName:     "User",
		PasswordHash: hash,
		Role:         models.RoleAdmin,
		IsActive:     true,
	}

	if err := db.WithContext(store.CrossTenant(context.Background())).Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}

	user.Tenant = tn
	return user
}

// CreateTestProject creates a project owned by the given tenant.
func CreateTestProject(t *testing.T, db *gorm.DB, tenantID uuid.UUID, name string) *models.Project {
	t.Helper()

	project := &models.Project{
		Base:     models.Base{ID: uuid.New()},
		TenantID: tenantID,
		Name:     name,
		Status:   models.ProjectStatusPlanning,
	}

	if err := db.WithContext(store.CrossTenant(context.Background())).Create(project).Error; err != nil {
		t.Fatalf("failed to create test project: %v", err)
	}

	return project
}

// CreateTestJWTService creates a JWT service for testing
func CreateTestJWTService() *auth.JWTService {
	return auth.NewJWTService("test-secret-key-for-testing", "buildtrack", "buildtrack-api", 24*time.Hour)
}

// GenerateTestToken generates a valid JWT token for the given user
func GenerateTestToken(t *testing.T, jwtService *auth.JWTService, user *models.User) string {
	t.Helper()

	token, err := jwtService.GenerateToken(user)
	if err != nil {
		t.Fatalf("failed to generate test token: %v", err)
	}

	return token
}

// AuthenticatedRequest creates an HTTP request with authentication
func AuthenticatedRequest(t *testing.T, method, path string, body interface{}, token string) *http.Request {
	t.Helper()

	var reqBody *bytes.Buffer
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal request body: %v", err)
		}
		reqBody = bytes.NewBuffer(jsonData)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	return req
}

// UnauthenticatedRequest creates an HTTP request without authentication
func UnauthenticatedRequest(t *testing.T, method, path string, body interface{}) *http.Request {
	t.Helper()
	return AuthenticatedRequest(t, method, path, body, "")
}

// AssertStatus checks if the response has the expected status code
func AssertStatus(t *testing.T, rr *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if rr.Code != expected {
		t.Errorf("expected status %d, got %d. Body: %s", expected, rr.Code, rr.Body.String())
	}
}
