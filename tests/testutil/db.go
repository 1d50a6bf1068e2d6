package testutil

import (
	"fmt"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/wm-metals/trade-api/internal/domain"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// SetupTestDB creates a connection to the test PostgreSQL database
// It uses environment variables or falls back to docker-compose defaults
func SetupTestDB(t *testing.T) *gorm.DB {
	host := getEnvOrDefault("DATABASE_HOST", "localhost")
	port := getEnvOrDefault("DATABASE_PORT", "5432")
	user := getEnvOrDefault("DATABASE_USER", "trade_user")
	password := getEnvOrDefault("DATABASE_PASSWORD", "trade_password")
	dbname := getEnvOrDefault("DATABASE_NAME", "trade")

	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable TimeZone=UTC",
		host, port, user, password, dbname)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:                                   logger.Default.LogMode(logger.Silent),
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	require.NoError(t, err, "Failed to connect to test database. Ensure PostgreSQL is running.")

	return db
}

// CleanupTestData cleans up test data from all tables
// This should be called after tests to ensure a clean state
func CleanupTestData(t *testing.T, db *gorm.DB) {
	// Delete in order to respect foreign key constraints
	tables := []string{
		"uploaded_files",
		"notifications",
		"tasks",
		"quote_items",
		"quotes",
		"transactions",
		"deals",
		"opportunities",
		"customers",
		"users",
		"number_sequences",
	}

	for _, table := range tables {
		err := db.Exec(fmt.Sprintf("DELETE FROM %s WHERE id IS NOT NULL", table)).Error
		if err != nil {
			// Table might not exist, that's ok
			t.Logf("Note: Could not clean table %s: %v", table, err)
		}
	}
}

// CreateTestCustomer creates a test customer and returns it
func CreateTestCustomer(t *testing.T, db *gorm.DB, name string) *domain.Customer {
	customer := &domain.Customer{
		Name:    name,
		Email:   "test@example.com",
		Phone:   "12345678",
		Status:  domain.CustomerStatusProspect,
		Segment: domain.CustomerSegmentSteel,
	}
	// Omit associations to avoid GORM trying to create related records
	err := db.Omit(clause.Associations).Create(customer).Error
	require.NoError(t, err)
	return customer
}

// CreateTestUser creates a test user and returns it
func CreateTestUser(t *testing.T, db *gorm.DB, name, role string) *domain.User {
	user := &domain.User{
		DisplayName: name,
		Email:       fmt.Sprintf("%s@example.com", name),
		Role:        role,
		IsActive:    true,
	}
	err := db.Create(user).Error
	require.NoError(t, err)
	return user
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
