package main

import (
	"log"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		logrus.Warn("No .env file found, using environment variables")
	}

	adminURL := os.Getenv("ADMIN_SERVICE_URL")
	if adminURL == "" {
		adminURL = "http://localhost:8001"
	}
	authURL := os.Getenv("AUTH_SERVICE_URL")
	if authURL == "" {
		authURL = "http://localhost:8002"
	}

	serviceClients := &ServiceClients{
		AdminService: NewServiceClient(adminURL),
		AuthService:  NewServiceClient(authURL),
	}

	// Initialize Gin router
	router := gin.Default()

	// Aggregated health of both downstream services
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"gateway":  "healthy",
			"services": serviceClients.GetServiceStatus(),
		})
	})

	router.POST("/setup", serviceClients.AdminService.ProxyRequest)
	router.POST("/login", serviceClients.AuthService.ProxyRequest)
	router.GET("/admin/*path", serviceClients.AdminService.ProxyRequest)

	// Start server
	port := os.Getenv("GATEWAY_PORT")
	if port == "" {
		port = "8000"
	}

	logrus.Infof("Gateway starting on port %s", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatal("Failed to start gateway:", err)
	}
}
