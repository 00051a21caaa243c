package main

import (
	"log"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/pranavk/go-superadmin-service/shared/bootstrap"
	"github.com/pranavk/go-superadmin-service/shared/config"
	"github.com/pranavk/go-superadmin-service/shared/events"
	"github.com/pranavk/go-superadmin-service/shared/middleware"
	"github.com/pranavk/go-superadmin-service/shared/provider"
	"github.com/pranavk/go-superadmin-service/shared/store"
	"github.com/pranavk/go-superadmin-service/shared/utils"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		logrus.Warn("No .env file found, using environment variables")
	}

	// Redis caches provider management tokens; the service works without it
	if err := utils.InitRedis(); err != nil {
		logrus.Warnf("Failed to connect to Redis, token caching disabled: %v", err)
	}
	defer utils.CloseRedis()

	// Initialize database-backed tenant store
	db, err := config.ConnectDatabase()
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	tenantStore := store.NewPostgresStore(db)

	// Build the identity provider behind a circuit breaker
	// (max 5 failures, 30 second reset)
	idp, err := provider.FromConfig(config.GetIdentityProviderConfig())
	if err != nil {
		log.Fatal("Failed to initialize identity provider:", err)
	}
	idp = provider.WithCircuitBreaker(idp, utils.NewCircuitBreaker(5, 30*time.Second))

	orchestrator := bootstrap.NewOrchestrator(idp, tenantStore, config.GetTenantConfig())
	orchestrator.Events = events.NewPublisher(config.GetKafkaBroker(), config.GetAuditTopic())

	authMiddleware := middleware.NewAuthMiddleware(os.Getenv("AUTH_JWKS_URL"))

	// Initialize Gin router
	router := gin.Default()

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		utils.OKResponse(c, "Admin service is healthy", nil)
	})

	// One-time bootstrap trigger, gated by the setup key
	router.POST("/setup", middleware.RequireSetupKey(config.GetSetupKey()), handleSetup(orchestrator))

	// Administrative read surface (super admin only)
	admin := router.Group("/admin")
	admin.Use(authMiddleware.RequireAuth(), authMiddleware.RequireRole(bootstrap.SuperAdminRole))
	{
		admin.GET("/tenants/:id", handleGetTenant(tenantStore, config.GetTenantConfig()))
		admin.GET("/tenants/:id/users", handleGetTenantUsers(tenantStore))
		admin.GET("/tenants/:id/users/:user_id", handleGetMembership(tenantStore))
		admin.GET("/users/by-email", handleGetUserByEmail(tenantStore))
	}

	// Start server
	port := os.Getenv("ADMIN_SERVICE_PORT")
	if port == "" {
		port = "8001"
	}

	logrus.Infof("Admin service starting on port %s", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatal("Failed to start admin service:", err)
	}
}
