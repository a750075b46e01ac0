package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/yeremiapane/cohee-app/utils"
)

type Config struct {
	Port     string
	GinMode  string
	LogLevel string

	DBDriver string
	DBDSN    string

	JWTSecret string
	JWTTTL    time.Duration

	RedisAddr       string
	SessionCacheTTL time.Duration

	RequireTableToken bool
	QRScheme          string

	OrderPersistFailure string

	SessionMaxAge        time.Duration
	SessionSweepInterval time.Duration
	DeviceIdleTTL        time.Duration

	PaymentDelay time.Duration

	CORSOrigin string
}

// Load membaca .env (jika ada) lalu environment.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		utils.InfoLogger.Printf("Warning: .env file not found or error loading: %v", err)
	}

	cfg := &Config{
		Port:     getEnv("PORT", "8080"),
		GinMode:  getEnv("GIN_MODE", "debug"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		DBDriver: strings.ToLower(getEnv("DB_DRIVER", "sqlite")),
		DBDSN:    getEnv("DB_DSN", "cohee.db"),

		JWTSecret: getEnv("JWT_SECRET", ""),
		JWTTTL:    getDuration("JWT_TTL", 24*time.Hour),

		RedisAddr:       getEnv("REDIS_ADDR", ""),
		SessionCacheTTL: getDuration("SESSION_CACHE_TTL", 30*time.Minute),

		RequireTableToken: getBool("TABLE_REQUIRE_TOKEN", false),
		QRScheme:          getEnv("QR_SCHEME", "coheeapp"),

		OrderPersistFailure: getEnv("ORDER_PERSIST_FAILURE", "drop_locally"),

		SessionMaxAge:        getDuration("SESSION_MAX_AGE", 6*time.Hour),
		SessionSweepInterval: getDuration("SESSION_SWEEP_INTERVAL", 10*time.Minute),
		DeviceIdleTTL:        getDuration("DEVICE_IDLE_TTL", 12*time.Hour),

		PaymentDelay: getDuration("PAYMENT_DELAY", 2*time.Second),

		CORSOrigin: getEnv("CORS_ORIGIN", "*"),
	}

	if cfg.JWTSecret == "" {
		utils.ErrorLogger.Println("Warning: JWT_SECRET not set, using development secret")
		cfg.JWTSecret = "cohee-dev-secret"
	}

	return cfg
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	v, err := strconv.ParseBool(getEnv(key, strconv.FormatBool(fallback)))
	if err != nil {
		utils.ErrorLogger.Printf("Invalid boolean for %s, using %v", key, fallback)
		return fallback
	}
	return v
}

func getDuration(key string, fallback time.Duration) time.Duration {
	raw := getEnv(key, "")
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		utils.ErrorLogger.Printf("Invalid duration for %s (%q), using %s", key, raw, fallback)
		return fallback
	}
	return d
}
