package database

import (
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/spf13/viper"
	"github.com/tillpoint/fiscal-api/internal/config"
	"github.com/tillpoint/fiscal-api/internal/domain/entity"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewPostgresDB creates a new PostgreSQL database connection
func NewPostgresDB(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	logLevel := logger.Warn

	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  cfg.DSN(),
		PreferSimpleProtocol: true, // disables implicit prepared statement usage
	}), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
		// Duplicate-key violations surface as gorm.ErrDuplicatedKey so the
		// finalize path can detect a lost idempotency race portably.
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Get underlying SQL DB to set connection pool settings
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)

	log.Println("Successfully connected to PostgreSQL database")
	return db, nil
}

// AutoMigrate runs GORM auto-migration for all entities
func AutoMigrate(db *gorm.DB) error {
	log.Println("Running database migrations...")

	err := db.AutoMigrate(
		// Accounts
		&entity.User{},

		// Collaborator read models
		&entity.WorkPeriod{},
		&entity.SalesTransaction{},
		&entity.CashMovement{},

		// Fiscal closing
		&entity.FiscalSequence{},
		&entity.ZReport{},
		&entity.ZReportPayment{},
		&entity.ZReportSource{},
		&entity.VarianceThreshold{},
		&entity.ZReportSchedule{},

		// System entities
		&entity.AuditLog{},
		&entity.ReportOutbox{},
		&entity.IdempotencyKey{},
	)

	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	log.Println("Database migrations completed successfully")
	return nil
}

// SeedDefaultData seeds the database with the system scheduler user and an
// optional admin account from environment variables
func SeedDefaultData(db *gorm.DB) error {
	log.Println("Seeding default data...")

	// The scheduler needs an attributable actor for autonomous reports.
	var systemUser entity.User
	if err := db.Where("email = ?", entity.SystemUserEmail).First(&systemUser).Error; err != nil {
		systemUser = entity.User{
			ID:        uuid.New(),
			FirstName: "Schedule",
			LastName:  "Trigger",
			Email:     entity.SystemUserEmail,
			Role:      entity.RoleSystem,
		}
		if err := db.Create(&systemUser).Error; err != nil {
			return fmt.Errorf("failed to create system user: %w", err)
		}
		log.Println("System scheduler user created")
	}

	// Create admin user if configured via environment variables
	adminEmail := viper.GetString("ADMIN_EMAIL")
	adminPassword := viper.GetString("ADMIN_PASSWORD")
	adminName := viper.GetString("ADMIN_NAME")

	if adminEmail != "" && adminPassword != "" {
		var existingAdmin entity.User
		if err := db.Where("email = ?", adminEmail).First(&existingAdmin).Error; err != nil {
			hashedPassword, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
			if err != nil {
				log.Printf("Warning: failed to hash admin password: %v", err)
			} else {
				if adminName == "" {
					adminName = "Back Office"
				}
				firstName := adminName
				lastName := ""
				for i, c := range adminName {
					if c == ' ' {
						firstName = adminName[:i]
						lastName = adminName[i+1:]
						break
					}
				}
				adminUser := entity.User{
					ID:        uuid.New(),
					FirstName: firstName,
					LastName:  lastName,
					Email:     adminEmail,
					Password:  string(hashedPassword),
					Role:      entity.RoleManager,
				}
				if err := db.Create(&adminUser).Error; err != nil {
					log.Printf("Warning: failed to create admin user: %v", err)
				} else {
					log.Printf("Admin user created: %s", adminEmail)
				}
			}
		} else {
			log.Printf("Admin user already exists: %s", adminEmail)
		}
	}

	// A default variance policy for the demo store keeps a fresh install
	// usable without configuration.
	demoStore := viper.GetString("DEFAULT_STORE_ID")
	if demoStore != "" {
		if storeID, err := uuid.Parse(demoStore); err == nil {
			var existing entity.VarianceThreshold
			if err := db.Where("store_id = ?", storeID).First(&existing).Error; err != nil {
				threshold := entity.DefaultVarianceThreshold(storeID)
				if err := db.Create(threshold).Error; err != nil {
					log.Printf("Warning: failed to create default variance threshold: %v", err)
				}
			}
		}
	}

	log.Println("Default data seeding completed")
	return nil
}
