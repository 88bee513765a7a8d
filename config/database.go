package config

import (
	"fmt"

	"github.com/proplayhub/backend/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// DB is the shared database handle
var DB *gorm.DB

// InitDB initializes the database connection and runs migrations
func InitDB() {
	config, err := LoadConfig()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		config.DBHost, config.DBPort, config.DBUser, config.DBPassword, config.DBName)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		panic(fmt.Sprintf("Failed to connect to database: %v", err))
	}

	DB = db

	if err := Migrate(DB); err != nil {
		panic(fmt.Sprintf("Failed to migrate database: %v", err))
	}

	ensureActiveSubscriptionIndex()
}

// Migrate runs the schema migration for every model
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Session{},
		&models.SubscriptionPackage{},
		&models.PackageAddon{},
		&models.DiscountCode{},
		&models.Subscription{},
		&models.SubscriptionAddon{},
		&models.CartItem{},
		&models.Notification{},
		&models.Message{},
	)
}

// ensureActiveSubscriptionIndex installs the partial unique index that backs
// the one-active-subscription-per-package-per-user invariant. The pre-insert
// existence check alone is a check-then-act race; the index makes the loser
// of two concurrent checkouts fail at insert time.
func ensureActiveSubscriptionIndex() {
	err := DB.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS ux_subscriptions_user_slug_active
		ON subscriptions (user_id, package_slug)
		WHERE status = 'active' AND deleted_at IS NULL
	`).Error
	if err != nil {
		panic(fmt.Sprintf("Failed to create active subscription index: %v", err))
	}
}
