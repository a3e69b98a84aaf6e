package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config cấu hình đọc từ biến môi trường (.env nếu có)
type Config struct {
	Env      string
	Port     string
	Store    string
	LogLevel string

	DatabaseDSN   string
	RunMigrations bool

	RedisAddr     string
	RedisUser     string
	RedisPassword string

	CloudinaryURL string

	TokenSecret string
	TokenTTL    time.Duration

	Location        *time.Location
	StatusSweepCron string
	CORSOrigins     []string
}

// Load nạp .env rồi đọc cấu hình, thiếu file .env thì dùng biến môi trường hệ thống
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Env:             getEnvDefault("ENV", "dev"),
		Port:            getEnvDefault("PORT", "8083"),
		Store:           strings.ToLower(getEnvDefault("STORE", "postgres")),
		LogLevel:        getEnvDefault("LOG_LEVEL", "info"),
		RunMigrations:   getEnvDefault("RUN_MIGRATIONS", "true") == "true",
		RedisAddr:       GetEnv("REDIS_ADDR"),
		RedisUser:       GetEnv("REDIS_USER"),
		RedisPassword:   GetEnv("REDIS_PASSWORD"),
		CloudinaryURL:   GetEnv("CLOUDINARY_URL"),
		TokenSecret:     GetEnv("SECRET_KEY_ACCESS_TOKEN"),
		StatusSweepCron: lookupEnvDefault("STATUS_SWEEP_CRON", "5 0 * * *"),
		CORSOrigins:     splitList(GetEnv("CORS_ORIGINS")),
	}

	if cfg.TokenSecret == "" {
		return nil, fmt.Errorf("SECRET_KEY_ACCESS_TOKEN is required")
	}

	minutes, err := strconv.Atoi(getEnvDefault("ACCESS_TOKEN_TTL_MINUTES", "1440"))
	if err != nil || minutes <= 0 {
		return nil, fmt.Errorf("invalid ACCESS_TOKEN_TTL_MINUTES")
	}
	cfg.TokenTTL = time.Duration(minutes) * time.Minute

	loc, err := time.LoadLocation(getEnvDefault("TIMEZONE", "Asia/Kolkata"))
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE: %w", err)
	}
	cfg.Location = loc

	switch cfg.Store {
	case "postgres":
		dsn, err := databaseDSN(cfg.Env)
		if err != nil {
			return nil, err
		}
		cfg.DatabaseDSN = dsn
	case "memory":
	default:
		return nil, fmt.Errorf("unknown STORE: %s", cfg.Store)
	}

	return cfg, nil
}

func GetEnv(key string) string {
	return os.Getenv(key)
}

func getEnvDefault(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

// lookupEnvDefault chỉ dùng fallback khi biến chưa được đặt, giá trị rỗng vẫn được giữ
func lookupEnvDefault(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return strings.TrimSpace(v)
	}
	return fallback
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
