package database

import (
	"log"
	"os"
	"time"

	"github.com/OffCmfrt/exchange-return-tracking/internal/config"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// getLogger builds the gorm logger. Parameterized queries keep customer
// emails and addresses out of the SQL log.
func getLogger() logger.Interface {
	return logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Info,
			IgnoreRecordNotFoundError: true,
			ParameterizedQueries:      true,
			Colorful:                  true,
		},
	)
}

func configureConnectionPool(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	return nil
}

// NewGormDB connects using the application's database configuration.
func NewGormDB(cfg config.DatabaseConfig) (*gorm.DB, error) {
	return NewGormDBFromDSN(cfg.Connection)
}

// NewGormDBFromDSN connects from a raw DSN. Used by cmd/migrate and the
// integration tests, which read DB_CONNECTION_STRING directly.
func NewGormDBFromDSN(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: getLogger(),
	})
	if err != nil {
		return nil, err
	}

	if err := configureConnectionPool(db); err != nil {
		return nil, err
	}

	return db, nil
}
