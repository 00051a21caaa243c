package main

import (
	"log"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/pranavk/go-superadmin-service/shared/authn"
	"github.com/pranavk/go-superadmin-service/shared/config"
	"github.com/pranavk/go-superadmin-service/shared/events"
	"github.com/pranavk/go-superadmin-service/shared/provider"
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

	// Build the identity provider behind a circuit breaker
	// (max 5 failures, 30 second reset)
	idp, err := provider.FromConfig(config.GetIdentityProviderConfig())
	if err != nil {
		log.Fatal("Failed to initialize identity provider:", err)
	}
	idp = provider.WithCircuitBreaker(idp, utils.NewCircuitBreaker(5, 30*time.Second))

	gateway := authn.NewGateway(idp)
	gateway.Events = events.NewPublisher(config.GetKafkaBroker(), config.GetAuditTopic())

	// Initialize Gin router
	router := gin.Default()

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		utils.OKResponse(c, "Auth service is healthy", nil)
	})

	router.POST("/login", handleLogin(gateway))

	// Start server
	port := os.Getenv("AUTH_SERVICE_PORT")
	if port == "" {
		port = "8002"
	}

	logrus.Infof("Auth service starting on port %s", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatal("Failed to start auth service:", err)
	}
}
