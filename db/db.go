// db/db.go
package db

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/ucook/accessflow/audit"
	"github.com/ucook/accessflow/config"
	logger "github.com/ucook/accessflow/logging"
	"github.com/ucook/accessflow/model"
)

// zapWriter routes gorm's printf-style logger into zap.
type zapWriter struct{}

func (zapWriter) Printf(format string, args ...interface{}) {
	logger.Log.Sugar().Warnf(format, args...)
}

func newGormLogger() gormlogger.Interface {
	return gormlogger.New(zapWriter{}, gormlogger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  gormlogger.Warn,
		IgnoreRecordNotFoundError: true,
	})
}

// Connect opens the relational store selected by cfg.Driver.
func Connect(cfg config.DatabaseConfiguration) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case config.DriverPostgres:
		dialector = postgres.Open(cfg.DSN)
	case config.DriverSQLite:
		dialector = sqlite.Open(cfg.DSN)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	logger.Info("Connecting to database", zap.String("driver", cfg.Driver))
	gdb, err := gorm.Open(dialector, &gorm.Config{
		Logger:         newGormLogger(),
		TranslateError: true,
		NowFunc:        func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, err
	}
	if cfg.Driver == config.DriverSQLite {
		// sqlite serialises writers; one connection avoids SQLITE_BUSY
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(25)
		sqlDB.SetConnMaxLifetime(30 * time.Minute)
	}
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("database ping failed: %w", err)
	}

	logger.Info("Successfully connected to database")
	return gdb, nil
}

// Models lists every table the service owns, in dependency order.
func Models() []interface{} {
	return []interface{}{
		&model.User{},
		&model.UserRole{},
		&model.System{},
		&model.SystemInstance{},
		&model.AccessTier{},
		&model.SystemOwner{},
		&model.AccessGrant{},
		&model.AccessRequest{},
		&model.AccessRequestItem{},
		&audit.AuditLog{},
	}
}

// Migrate creates or updates the schema, including the partial unique index
// idx_active_grant that guarantees a single active grant per triple.
func Migrate(gdb *gorm.DB) error {
	start := time.Now()
	if err := gdb.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	if !gdb.Migrator().HasIndex(&model.AccessGrant{}, "idx_active_grant") {
		return fmt.Errorf("partial unique index idx_active_grant was not created")
	}
	logger.Info("Database migrated", zap.Duration("duration", time.Since(start)))
	return nil
}

func Close(gdb *gorm.DB) {
	sqlDB, err := gdb.DB()
	if err != nil {
		return
	}
	if err := sqlDB.Close(); err != nil {
		logger.Error("Error closing database connection", zap.Error(err))
	} else {
		logger.Info("Database connection closed successfully")
	}
}

// IsUniqueViolation covers drivers that do not translate constraint errors.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "sqlstate 23505")
}
