package db

import (
	"fmt"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"fleet/internal/models"
)

// Open подключает БД по driver/dsn.
// Поддержка: "postgres" | "mysql" | "sqlite".
func Open(driver, dsn string) (*gorm.DB, error) {
	cfg := &gorm.Config{Logger: logger.Default.LogMode(logger.Warn)}
	switch driver {
	case "postgres":
		// Пример DSN:
		// host=localhost port=5432 user=fleet password=secret dbname=fleet sslmode=disable
		return gorm.Open(postgres.Open(dsn), cfg)
	case "mysql":
		// Пример DSN:
		// user:pass@tcp(127.0.0.1:3306)/fleet?parseTime=true&charset=utf8mb4&loc=UTC
		return gorm.Open(mysql.Open(dsn), cfg)
	case "sqlite":
		// Пример DSN: database.db или ":memory:"
		d, err := gorm.Open(sqlite.Open(dsn), cfg)
		if err != nil {
			return nil, err
		}
		// у sqlite один писатель; для :memory: ещё и одна БД на соединение
		sqlDB, err := d.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
		return d, nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %q", driver)
	}
}

// Migrate создаёт/дополняет таблицы схемы. В проде схема уже есть,
// команда нужна для dev-окружения и тестов.
func Migrate(d *gorm.DB) error {
	if d == nil {
		return fmt.Errorf("db not configured")
	}
	if err := d.AutoMigrate(models.Schema()...); err != nil {
		return fmt.Errorf("db migrate: %w", err)
	}
	return nil
}

// Ping — проверка соединения (readiness).
func Ping(d *gorm.DB) error {
	if d == nil {
		return fmt.Errorf("db not configured")
	}
	sqlDB, err := d.DB()
	if err != nil {
		return fmt.Errorf("db handle: %w", err)
	}
	return sqlDB.Ping()
}

func Close(d *gorm.DB) error {
	if d == nil {
		return nil
	}
	sqlDB, err := d.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
