package main

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/random"

	"oficinagil/internal/adminstats"
	"oficinagil/internal/caching"
	"oficinagil/internal/entitlement"
	"oficinagil/internal/handlers"
	"oficinagil/internal/jobs/background"
	"oficinagil/internal/middleware"
	"oficinagil/internal/repositories"
	"oficinagil/internal/services"
	"oficinagil/pkg/database"
)

const version = "1.0.0"

const (
	accessTokenTTLSeconds  = 15 * 60
	refreshTokenTTLSeconds = 30 * 24 * 60 * 60
)

func main() {
	// Database connection
	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}

	pool, err := database.NewPool(databaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	// JWT configuration
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		jwtSecret = random.String(32) // Generate random secret for development
		log.Printf("WARNING: JWT_SECRET not set, using generated development secret")
	}

	// Redis configuration
	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}
	redisPassword := os.Getenv("REDIS_PASSWORD")
	redisDB := 0
	if redisDBStr := os.Getenv("REDIS_DB"); redisDBStr != "" {
		if db, err := strconv.Atoi(redisDBStr); err == nil {
			redisDB = db
		}
	}

	// Create repositories
	userRepo := repositories.NewUserRepo(pool)
	workshopRepo := repositories.NewWorkshopRepo(pool)
	subscriptionRepo := repositories.NewSubscriptionRepo(pool)
	clientRepo := repositories.NewClientRepo(pool)
	budgetRepo := repositories.NewBudgetRepo(pool)

	// Cache and auth services
	cacheSvc := caching.NewRedisCacheService(redisAddr, redisPassword, redisDB)
	authSvc := services.NewAuthService(cacheSvc, jwtSecret, accessTokenTTLSeconds, refreshTokenTTLSeconds)

	// Entitlement engine
	resolver := entitlement.NewResolver(subscriptionRepo, workshopRepo)
	gate := entitlement.NewGate()
	entitlementMW := middleware.NewEntitlementMiddleware(resolver, gate)

	// Admin stats reporter and background jobs
	reporter := adminstats.NewReporter(userRepo, subscriptionRepo)
	scheduler, err := background.NewJobScheduler(reporter, subscriptionRepo)
	if err != nil {
		log.Fatalf("Failed to create job scheduler: %v", err)
	}
	scheduler.Start()
	defer func() {
		if err := scheduler.Stop(); err != nil {
			log.Printf("Failed to stop job scheduler: %v", err)
		}
	}()

	// Create handlers
	authHandlers := handlers.NewAuthHandlers(authSvc, userRepo, workshopRepo, subscriptionRepo, cacheSvc)
	entitlementHandlers := handlers.NewEntitlementHandlers(resolver, gate)
	subscriptionHandlers := handlers.NewSubscriptionHandlers(subscriptionRepo)
	adminHandlers := handlers.NewAdminHandlers(reporter)
	clientHandlers := handlers.NewClientHandlers(clientRepo)
	budgetHandlers := handlers.NewBudgetHandlers(budgetRepo, clientRepo)

	// Create Echo instance
	e := echo.New()

	// Global middleware
	e.Use(echoMiddleware.Logger())
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.CORS())
	e.Use(echoMiddleware.RemoveTrailingSlash())

	// Health endpoints (no auth required)
	e.GET("/health", handlers.HealthCheck)
	e.GET("/health/ready", func(c echo.Context) error {
		return handlers.ReadinessCheck(c, pool)
	})

	// API routes
	v1 := e.Group("/v1")

	// Authentication routes (no JWT required for signup/login)
	auth := v1.Group("/auth")
	auth.POST("/signup", authHandlers.Signup)
	auth.POST("/login", authHandlers.Login)
	auth.POST("/refresh", authHandlers.Refresh)

	// Public plan catalog
	v1.GET("/plans", entitlementHandlers.ListPlans)

	// Protected routes
	protected := v1.Group("")
	protected.Use(middleware.JWTMiddleware(jwtSecret))

	// Entitlement routes
	protected.GET("/me/plan", entitlementHandlers.GetPlan)
	protected.GET("/me/features/:name", entitlementHandlers.CheckFeature)
	protected.GET("/subscriptions", subscriptionHandlers.ListSubscriptions)

	// Client routes (baseline feature, reachable even on a lapsed plan)
	clients := protected.Group("/clients", entitlementMW.RequireFeature(entitlement.FeatureClientes))
	clients.GET("", clientHandlers.ListClients)
	clients.POST("", clientHandlers.CreateClient)
	clients.GET("/:id", clientHandlers.GetClient)
	clients.PUT("/:id", clientHandlers.UpdateClient)
	clients.DELETE("/:id", clientHandlers.DeleteClient)

	// Budget routes (baseline feature)
	budgets := protected.Group("/budgets", entitlementMW.RequireFeature(entitlement.FeatureOrcamentos))
	budgets.GET("", budgetHandlers.ListBudgets)
	budgets.POST("", budgetHandlers.CreateBudget)
	budgets.GET("/:id", budgetHandlers.GetBudget)
	budgets.PUT("/:id", budgetHandlers.UpdateBudget)
	budgets.DELETE("/:id", budgetHandlers.DeleteBudget)

	// Back-office routes (admin only)
	admin := protected.Group("/admin", middleware.RequireAdmin())
	admin.GET("/stats", adminHandlers.GetStats)
	admin.POST("/stats/refresh", adminHandlers.RefreshStats)
	admin.POST("/subscriptions/grant", subscriptionHandlers.Grant)

	// Start server
	portStr := os.Getenv("PORT")
	if portStr == "" {
		portStr = "8080"
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		log.Fatalf("Invalid port %s: %v", portStr, err)
	}

	log.Printf("Oficina Ágil server v%s starting on port %d", version, port)

	e.Logger.Fatal(e.Start(fmt.Sprintf(":%d", port)))
}
