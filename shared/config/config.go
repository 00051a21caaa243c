package config

import (
	"fmt"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// IdentityProviderConfig holds configuration for the external identity provider.
// Backend selects the implementation: "auth0" (OIDC management API over HTTP)
// or "cognito" (AWS Cognito user pools).
type IdentityProviderConfig struct {
	Backend string

	// Auth0-style OIDC settings
	Domain       string
	ClientID     string
	ClientSecret string
	Audience     string
	Connection   string

	// Cognito settings
	AWSRegion       string
	UserPoolID      string
	AppClientID     string
	AppClientSecret string
}

// GetIdentityProviderConfig returns identity provider configuration from environment variables.
func GetIdentityProviderConfig() *IdentityProviderConfig {
	domain := getEnv("AUTH0_DOMAIN", "")
	return &IdentityProviderConfig{
		Backend:         getEnv("IDP_BACKEND", "auth0"),
		Domain:          domain,
		ClientID:        getEnv("AUTH0_CLIENT_ID", ""),
		ClientSecret:    getEnv("AUTH0_CLIENT_SECRET", ""),
		Audience:        getEnv("AUTH0_AUDIENCE", fmt.Sprintf("https://%s/api/v2/", domain)),
		Connection:      getEnv("AUTH0_CONNECTION", "Username-Password-Authentication"),
		AWSRegion:       getEnv("AWS_REGION", "us-east-1"),
		UserPoolID:      getEnv("COGNITO_USER_POOL_ID", ""),
		AppClientID:     getEnv("COGNITO_CLIENT_ID", ""),
		AppClientSecret: getEnv("COGNITO_CLIENT_SECRET", ""),
	}
}

// TenantConfig holds the reserved system-tenant identity shared by all components.
// The sentinel tenant id keys every record written during bootstrap.
type TenantConfig struct {
	SentinelTenantID   string
	SentinelTenantName string
}

// GetTenantConfig returns the sentinel tenant configuration from environment variables.
func GetTenantConfig() *TenantConfig {
	return &TenantConfig{
		SentinelTenantID:   getEnv("SUPER_ADMIN_TENANT_ID", "SUPER_ADMIN"),
		SentinelTenantName: getEnv("SUPER_ADMIN_TENANT_NAME", "SuperAdmin"),
	}
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// GetDatabaseConfig returns database configuration from environment variables
func GetDatabaseConfig() *DatabaseConfig {
	return &DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     getEnv("DB_PORT", "5432"),
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", "password"),
		DBName:   getEnv("DB_NAME", "superadmin_db"),
		SSLMode:  getEnv("DB_SSL_MODE", "disable"),
	}
}

// GetDSN returns the database connection string
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

// ConnectDatabase establishes a connection to the database with pooled settings
func ConnectDatabase() (*gorm.DB, error) {
	config := GetDatabaseConfig()

	db, err := gorm.Open(postgres.Open(config.GetDSN()), &gorm.Config{
		PrepareStmt: true,
		Logger:      logger.Default.LogMode(logger.Error),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying SQL DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	sqlDB.SetConnMaxIdleTime(10 * time.Minute)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// GetKafkaBroker returns the Kafka broker address, empty when audit events are disabled.
func GetKafkaBroker() string {
	return getEnv("KAFKA_BROKER", "")
}

// GetAuditTopic returns the Kafka topic for provisioning audit events.
func GetAuditTopic() string {
	return getEnv("AUDIT_TOPIC", "superadmin-audit-events")
}

// GetSetupKey returns the shared secret required by the /setup endpoint.
func GetSetupKey() string {
	return getEnv("SETUP_KEY", "")
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
