package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const PROD_STRING = "prod"

// Config holds all application configuration loaded from environment.
type Config struct {
	IsProduction bool
	ProdOrigins  string
	HTTPAddr     string
	LogLevel     string

	DBDSN         string
	DBMaxConns    int
	DBAutoMigrate bool

	JWTSecret         string
	JWTAccessTokenTTL time.Duration
	BcryptCost        int

	// ShopLocation is the single reference timezone for working windows and slots.
	ShopLocation *time.Location

	RedisAddr            string
	RedisPassword        string
	RedisDB              int
	AvailabilityCacheTTL time.Duration
	EventsRedisChannel   string

	KafkaBrokers        string
	EventPublishTimeout time.Duration

	OTELEnabled     bool
	OTELEndpoint    string
	OTELSampleRatio float64

	StorageDir          string
	CompletionSweepSpec string
}

// Load loads configuration from .env (optional) and environment variables.
// A missing .env file is not an error; the returned warning says so.
func Load() (*Config, []string, error) {
	var warnings []string
	if err := godotenv.Load(); err != nil {
		warnings = append(warnings, fmt.Sprintf("failed to load .env file: %v", err))
	}

	cfg := &Config{}
	var err error

	cfg.ProdOrigins = getEnv("PROD_ORIGINS", "")
	cfg.IsProduction = getEnv("APP_ENV", "dev") == PROD_STRING
	cfg.HTTPAddr = getEnv("HTTP_ADDR", ":8080")
	cfg.LogLevel = getEnv("LOG_LEVEL", "info")

	// Database DSN is required
	cfg.DBDSN = os.Getenv("DB_DSN")
	if cfg.DBDSN == "" {
		return nil, warnings, fmt.Errorf("DB_DSN is required")
	}
	if cfg.DBMaxConns, err = getEnvAsInt("DB_MAX_CONNS", 10); err != nil {
		return nil, warnings, fmt.Errorf("invalid DB_MAX_CONNS: %w", err)
	}
	if cfg.DBAutoMigrate, err = getEnvAsBool("DB_AUTO_MIGRATE", true); err != nil {
		return nil, warnings, fmt.Errorf("invalid DB_AUTO_MIGRATE: %w", err)
	}

	// JWT secret is required for signing tokens
	cfg.JWTSecret = os.Getenv("JWT_SECRET")
	if cfg.JWTSecret == "" {
		return nil, warnings, fmt.Errorf("JWT_SECRET is required")
	}
	if cfg.JWTAccessTokenTTL, err = getEnvAsDuration("JWT_ACCESS_TOKEN_TTL", 15*time.Minute); err != nil {
		return nil, warnings, fmt.Errorf("invalid JWT_ACCESS_TOKEN_TTL: %w", err)
	}
	if cfg.BcryptCost, err = getEnvAsInt("BCRYPT_COST", 12); err != nil {
		return nil, warnings, fmt.Errorf("invalid BCRYPT_COST: %w", err)
	}

	tz := getEnv("SHOP_TIMEZONE", "UTC")
	if cfg.ShopLocation, err = time.LoadLocation(tz); err != nil {
		return nil, warnings, fmt.Errorf("invalid SHOP_TIMEZONE %q: %w", tz, err)
	}

	// Redis is optional; an empty address disables the cache and the redis event channel.
	cfg.RedisAddr = getEnv("REDIS_ADDR", "")
	cfg.RedisPassword = getEnv("REDIS_PASSWORD", "")
	if cfg.RedisDB, err = getEnvAsInt("REDIS_DB", 0); err != nil {
		return nil, warnings, fmt.Errorf("invalid REDIS_DB: %w", err)
	}
	if cfg.AvailabilityCacheTTL, err = getEnvAsDuration("AVAILABILITY_CACHE_TTL", 30*time.Second); err != nil {
		return nil, warnings, fmt.Errorf("invalid AVAILABILITY_CACHE_TTL: %w", err)
	}
	cfg.EventsRedisChannel = getEnv("EVENTS_REDIS_CHANNEL", "barbershop.bookings")

	cfg.KafkaBrokers = getEnv("KAFKA_BROKERS", "")
	if cfg.EventPublishTimeout, err = getEnvAsDuration("EVENT_PUBLISH_TIMEOUT", 5*time.Second); err != nil {
		return nil, warnings, fmt.Errorf("invalid EVENT_PUBLISH_TIMEOUT: %w", err)
	}

	if cfg.OTELEnabled, err = getEnvAsBool("OTEL_ENABLED", false); err != nil {
		return nil, warnings, fmt.Errorf("invalid OTEL_ENABLED: %w", err)
	}
	cfg.OTELEndpoint = getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317")
	cfg.OTELSampleRatio = 1.0
	if v := getEnv("OTEL_SAMPLING_RATIO", ""); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || f < 0 || f > 1 {
			return nil, warnings, fmt.Errorf("OTEL_SAMPLING_RATIO must be within [0,1], got %q", v)
		}
		cfg.OTELSampleRatio = f
	}

	cfg.StorageDir = getEnv("STORAGE_DIR", "./data")
	cfg.CompletionSweepSpec = getEnv("COMPLETION_SWEEP_SPEC", "@every 5m")

	return cfg, warnings, nil
}

// getEnv returns the value of the environment variable if set,
// otherwise returns the provided default value.
func getEnv(key, defaultValue string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer.
// It returns the default value if the variable is not set.
// It returns an error if the variable is set but is not a valid integer.
func getEnvAsInt(key string, defaultValue int) (int, error) {
	valStr := getEnv(key, "")
	if valStr == "" {
		return defaultValue, nil
	}

	val, err := strconv.Atoi(valStr)
	if err != nil {
		return 0, fmt.Errorf("env %s value %q is not a valid integer: %w", key, valStr, err)
	}

	return val, nil
}

func getEnvAsBool(key string, defaultValue bool) (bool, error) {
	valStr := getEnv(key, "")
	if valStr == "" {
		return defaultValue, nil
	}
	val, err := strconv.ParseBool(valStr)
	if err != nil {
		return false, fmt.Errorf("env %s value %q is not a valid bool: %w", key, valStr, err)
	}
	return val, nil
}

// getEnvAsDuration parses values such as "15m" or "1h".
func getEnvAsDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	valStr := getEnv(key, "")
	if valStr == "" {
		return defaultValue, nil
	}
	val, err := time.ParseDuration(valStr)
	if err != nil {
		return 0, fmt.Errorf("env %s value %q is not a valid duration: %w", key, valStr, err)
	}
	return val, nil
}
