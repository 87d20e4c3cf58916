package api

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/hugh/buildtrack/internal/api/handlers"
	"github.com/hugh/buildtrack/internal/api/middleware"
	"github.com/hugh/buildtrack/internal/auth"
	"github.com/hugh/buildtrack/internal/database/models"
	"github.com/hugh/buildtrack/internal/store"
)

type Router struct {
	chi.Router
}

type RouterConfig struct {
	DB             *gorm.DB // write side, scoping callbacks installed
	ReadDB         *gorm.DB // read side, explicit tenant filtering
	Redis          *redis.Client
	Logger         *slog.Logger
	JWTService     *auth.JWTService
	AuthService    *auth.Service
	AllowedOrigins []string
	RateLimitReqs  int
	RateLimitSecs  int
}

func NewRouter(cfg RouterConfig) *Router {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.Logging(cfg.Logger))

	allowedOrigins := cfg.AllowedOrigins
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"http://localhost:3000", "http://localhost:8080"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Token-Expired", "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Stores for the tenant-scoped domain entity
	projectWrites := store.NewWriteStore[models.Project](cfg.DB)
	projectReads := store.NewReadStore[models.Project](cfg.ReadDB, models.Project{}.TableName())

	// Handlers
	healthHandler := handlers.NewHealthHandler(cfg.DB, cfg.Redis)
	authHandler := handlers.NewAuthHandler(cfg.AuthService, cfg.JWTService, cfg.Logger)
	projectHandler := handlers.NewProjectHandler(projectWrites, projectReads, cfg.Logger)

	// Health endpoints (no auth required)
	r.Get("/health", healthHandler.Health)
	r.Get("/ready", healthHandler.Ready)

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		// Public auth endpoints, rate limited by client IP
		r.Group(func(r chi.Router) {
			if cfg.RateLimitReqs > 0 {
				r.Use(middleware.RateLimit(cfg.RateLimitReqs, cfg.RateLimitSecs))
			}
			r.Post("/auth/register", authHandler.Register)
			r.Post("/auth/login", authHandler.Login)
		})

		// Protected routes, rate limited per tenant
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWTService))
			if cfg.RateLimitReqs > 0 {
				r.Use(middleware.RateLimitByTenant(cfg.RateLimitReqs, cfg.RateLimitSecs))
			}

			r.Get("/auth/me", authHandler.Me)

			r.Route("/projects", func(r chi.Router) {
				r.Get("/", projectHandler.List)
				r.Get("/{id}", projectHandler.Get)

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireRole(models.RoleManager, models.RoleAdmin, models.RoleSuperAdmin))
					r.Post("/", projectHandler.Create)
					r.Put("/{id}", projectHandler.Update)
					r.Delete("/{id}", projectHandler.Delete)
				})

				r.With(middleware.RequireRole(models.RoleAdmin, models.RoleSuperAdmin)).
					Get("/admin", projectHandler.Admin)
			})
		})
	})

	return &Router{r}
}
