package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// ============================================================
// Configuration
// ============================================================

type Config struct {
	Port         string
	Environment  string
	ReadTimeout  int
	WriteTimeout int
	LogLevel     string

	// Адреса соседних сервисов
	CatalogURL   string
	PlanogramURL string

	// Catalog storage
	DBPath         string
	MigrationsPath string

	// Planogram defaults
	DefaultScale     float64
	FetchTimeout     int
	WatchMinInterval int
}

// Load загружает конфигурацию из .env (если есть) и переменных окружения
func Load() *Config {
	// .env опционален, переменные окружения имеют приоритет
	_ = godotenv.Load()

	return &Config{
		Port:             getEnv("PORT", "3000"),
		Environment:      getEnv("ENV", "development"),
		ReadTimeout:      getEnvAsInt("READ_TIMEOUT", 10),
		WriteTimeout:     getEnvAsInt("WRITE_TIMEOUT", 10),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		CatalogURL:       getEnv("CATALOG_URL", "http://localhost:3002"),
		PlanogramURL:     getEnv("PLANOGRAM_URL", "http://localhost:3001"),
		DBPath:           getEnv("CATALOG_DB_PATH", "data/db/catalog.db"),
		MigrationsPath:   getEnv("CATALOG_MIGRATIONS", "migrations/001_init_catalog.sql"),
		DefaultScale:     getEnvAsFloat("DEFAULT_SCALE", 3),
		FetchTimeout:     getEnvAsInt("FETCH_TIMEOUT", 15),
		WatchMinInterval: getEnvAsInt("WATCH_MIN_INTERVAL", 5),
	}
}

// PortOr возвращает порт из окружения или значение по умолчанию для сервиса
func (c *Config) PortOr(defaultPort string) string {
	if os.Getenv("PORT") == "" {
		return defaultPort
	}
	return c.Port
}

func getEnv(key, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvAsFloat(key string, defaultVal float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil && f > 0 {
			return f
		}
	}
	return defaultVal
}
