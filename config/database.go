package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"synca/migrations"
	"synca/services/logger"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// databaseDSN ưu tiên DB_DSN, nếu không thì ghép từ bộ biến DEV_/QC_/PROD_
func databaseDSN(env string) (string, error) {
	if dsn := strings.TrimSpace(os.Getenv("DB_DSN")); dsn != "" {
		return dsn, nil
	}

	var prefix string
	switch env {
	case "dev":
		prefix = "DEV_"
	case "qc":
		prefix = "QC_"
	case "prod":
		prefix = "PROD_"
	default:
		return "", fmt.Errorf("unknown environment: %s", env)
	}

	host := os.Getenv(prefix + "DB_HOST")
	if host == "" {
		return "", fmt.Errorf("%sDB_HOST is required", prefix)
	}
	sslmode := getEnvDefault(prefix+"DB_SSLMODE", "require")

	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=%s",
		host,
		os.Getenv(prefix+"DB_USER"),
		os.Getenv(prefix+"DB_PASSWORD"),
		os.Getenv(prefix+"DB_NAME"),
		getEnvDefault(prefix+"DB_PORT", "5432"),
		sslmode,
		getEnvDefault("TIMEZONE", "Asia/Kolkata"),
	), nil
}

// ConnectDB mở kết nối postgres và chạy migration nếu được bật
func ConnectDB(ctx context.Context, cfg *Config, log logger.Logger) (*gorm.DB, error) {
	level := gormlogger.Warn
	if cfg.Env == "dev" {
		level = gormlogger.Info
	}

	db, err := gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(level),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("connect db: %w", err)
	}

	if cfg.RunMigrations {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("get sql db: %w", err)
		}
		if err := migrations.Up(ctx, sqlDB); err != nil {
			return nil, err
		}
		version, err := migrations.Version(ctx, sqlDB)
		if err != nil {
			return nil, err
		}
		log.Info("Database schema at migration version %d", version)
	}
	return db, nil
}
