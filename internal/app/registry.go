package app

import (
	"database/sql"
	"os"

	"spa-portal/internal/auth"
	"spa-portal/internal/employee"
	"spa-portal/internal/messaging/kafka"
	"spa-portal/internal/middleware"
	"spa-portal/internal/rbac"
	"spa-portal/internal/rbac/infra"
	"spa-portal/internal/request"
	"spa-portal/internal/shared/counter"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func registerModules(
	router *gin.Engine,
	db *sql.DB,
	gormDB *gorm.DB,
	rdb *redis.Client,
) error {
	// --- Repositories ---
	authRepo := auth.NewRepository(gormDB)
	counterRepo := counter.NewRepository(gormDB)
	employeeRepo := employee.NewRepository(gormDB)
	requestRepo := request.NewRepository(gormDB)
	outboxRepo := kafka.NewOutboxRepository(db)

	// --- RBAC core ---
	enforcer, err := infra.NewEnforcer()
	if err != nil {
		return err
	}
	rbacService := rbac.NewService(enforcer)

	defaultSecret := os.Getenv("DEFAULT_STAFF_PASSWORD")
	if defaultSecret == "" {
		defaultSecret = "spa2024"
	}

	// --- Services ---
	authService := auth.NewService(authRepo, employeeRepo, rdb)
	employeeService := employee.NewService(db, employeeRepo, authRepo, counterRepo, outboxRepo, rdb, defaultSecret)
	notifier := request.NewRedisNotifier(rdb)
	requestService := request.NewService(db, requestRepo, outboxRepo, notifier)
	watcher := request.NewWatcher(requestRepo, rdb)

	// --- Handlers ---
	authHandler := auth.NewHandler(authService)
	employeeHandler := employee.NewHandler(employeeService)
	requestHandler := request.NewHandler(requestService, watcher, rdb)

	authMW := middleware.AuthMiddleware(authService)

	router.Use(middleware.RequestID())
	router.Use(middleware.ContextLogger(zap.L()))

	// --- Routes ---
	api := router.Group("/api/v1")
	{
		auth.RegisterRoutes(api, authHandler, authMW)
		employee.RegisterRoutes(api, employeeHandler, rbacService, authMW)
		request.RegisterRoutes(api, requestHandler, rbacService, authMW, rdb)
	}

	return nil
}
