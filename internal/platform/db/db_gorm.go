package db

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	authentity "blog_backend/internal/feature/auth/domain/entity"
	postentity "blog_backend/internal/feature/posts/domain/entity"
	"blog_backend/internal/platform/config"
)

// retryInterval is the pause between connection attempts.
var retryInterval = 3 * time.Second

// Opener opens a gorm connection for a DSN.
type Opener func(dsn string) (*gorm.DB, error)

// BuildDSN returns the connection string for cfg.Driver.
func BuildDSN(cfg config.DatabaseConfig) string {
	if cfg.Driver == "sqlite" {
		if strings.Contains(cfg.SQLitePath, "?") {
			return cfg.SQLitePath
		}
		return cfg.SQLitePath + "?_foreign_keys=on"
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Name, cfg.SSLMode)
}

// Dialector returns the gorm dialector for cfg.Driver.
func Dialector(cfg config.DatabaseConfig, dsn string) gorm.Dialector {
	if cfg.Driver == "sqlite" {
		return sqlite.Open(dsn)
	}
	return postgres.Open(dsn)
}

// GormConfig is shared by every connection. TranslateError makes unique
// violations surface as gorm.ErrDuplicatedKey.
func GormConfig() *gorm.Config {
	return &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Warn),
	}
}

// ConnectWithRetry calls opener until it succeeds or timeout elapses.
func ConnectWithRetry(dsn string, timeout time.Duration, opener Opener) (*gorm.DB, error) {
	deadline := time.Now().Add(timeout)
	for {
		db, err := opener(dsn)
		if err == nil {
			return db, nil
		}
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("DB connect failed after %s: %w", timeout, err)
		}
		time.Sleep(retryInterval)
	}
}

// Open connects to the configured database, retrying until the connect
// timeout, and runs migrations when enabled.
func Open(cfg config.DatabaseConfig, l *zap.Logger) (*gorm.DB, error) {
	dsn := BuildDSN(cfg)
	opener := func(dsn string) (*gorm.DB, error) {
		db, err := gorm.Open(Dialector(cfg, dsn), GormConfig())
		if err != nil {
			l.Warn("DB connect failed, retrying", zap.String("driver", cfg.Driver), zap.Error(err))
		}
		return db, err
	}

	db, err := ConnectWithRetry(dsn, cfg.ConnectTimeout, opener)
	if err != nil {
		return nil, err
	}
	l.Info("DB connection successful", zap.String("driver", cfg.Driver))

	if cfg.RunMigrations {
		if err := Migrate(db); err != nil {
			return nil, err
		}
		l.Info("DB migrations applied")
	}
	return db, nil
}

// Migrate creates or updates the users and post tables.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&authentity.User{}, &postentity.Post{}); err != nil {
		return fmt.Errorf("failed to migrate: %w", err)
	}
	return nil
}
