package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Store drivers accepted in STORE_DRIVER.
const (
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// DefaultJWTSecret is the development fallback for JWT_SECRET.
const DefaultJWTSecret = "change-me-in-production"

// Config holds application configuration loaded from environment.
type Config struct {
	Server ServerConfig
	Store  StoreConfig
	Redis  RedisConfig
	JWT    JWTConfig
	AWS    AWSConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port               string
	ReadTimeout        int
	WriteTimeout       int
	CORSAllowedOrigins string // comma-separated, or "*" for all
	APIPrefix          string
	ListLimit          int
}

// StoreConfig selects and addresses the entity store.
type StoreConfig struct {
	Driver      string
	MongoURL    string
	DBName      string
	PostgresURL string
}

// RedisConfig holds Redis connection settings. An empty Addr disables the
// repair queue.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// Enabled reports whether a Redis address is configured.
func (c RedisConfig) Enabled() bool { return c.Addr != "" }

// JWTConfig holds JWT signing settings.
type JWTConfig struct {
	Secret string
}

// AWSConfig holds AWS credentials and the business images bucket.
type AWSConfig struct {
	Region               string
	AccessKeyID          string
	SecretAccessKey      string
	ImagesBucket         string
	PresignExpireMinutes int
}

// Load reads configuration from environment, with optional .env file.
func Load() (*Config, error) {
	_ = godotenv.Load()      // .env
	_ = godotenv.Load("env") // env (no leading dot)

	var errs []string
	intVar := func(key string, fallback int) int {
		v := os.Getenv(key)
		if v == "" {
			return fallback
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, fmt.Sprintf("%s: not an integer: %q", key, v))
			return fallback
		}
		return n
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:               getEnv("PORT", "8000"),
			ReadTimeout:        intVar("READ_TIMEOUT_SEC", 30),
			WriteTimeout:       intVar("WRITE_TIMEOUT_SEC", 30),
			CORSAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "*"),
			APIPrefix:          normalizePrefix(getEnv("API_PREFIX", "/api")),
			ListLimit:          intVar("LIST_LIMIT", 1000),
		},
		Store: StoreConfig{
			Driver:      strings.ToLower(getEnv("STORE_DRIVER", DriverMongo)),
			MongoURL:    getEnv("MONGO_URL", "mongodb://localhost:27017"),
			DBName:      getEnv("DB_NAME", "csr_platform"),
			PostgresURL: getEnv("DATABASE_URL", "postgres://localhost:5432/csr_platform?sslmode=disable"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       intVar("REDIS_DB", 0),
		},
		JWT: JWTConfig{
			Secret: getEnv("JWT_SECRET", DefaultJWTSecret),
		},
		AWS: AWSConfig{
			Region:               getEnv("AWS_REGION", ""),
			AccessKeyID:          getEnv("AWS_ACCESS_KEY_ID", ""),
			SecretAccessKey:      getEnv("AWS_SECRET_ACCESS_KEY", ""),
			ImagesBucket:         getEnv("AWS_S3_IMAGES_BUCKET", ""),
			PresignExpireMinutes: intVar("AWS_PRESIGN_EXPIRE_MINUTES", 15),
		},
	}

	switch cfg.Store.Driver {
	case DriverMongo, DriverPostgres, DriverMemory:
	default:
		errs = append(errs, fmt.Sprintf("STORE_DRIVER: must be mongo, postgres or memory, got %q", cfg.Store.Driver))
	}
	if cfg.Server.ListLimit <= 0 {
		errs = append(errs, "LIST_LIMIT: must be positive")
	}
	if cfg.Server.ReadTimeout <= 0 || cfg.Server.WriteTimeout <= 0 {
		errs = append(errs, "READ_TIMEOUT_SEC/WRITE_TIMEOUT_SEC: must be positive")
	}
	if cfg.AWS.PresignExpireMinutes <= 0 {
		errs = append(errs, "AWS_PRESIGN_EXPIRE_MINUTES: must be positive")
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("invalid config: %s", strings.Join(errs, "; "))
	}
	return cfg, nil
}

// normalizePrefix makes p start with a slash and drop any trailing one.
// "/" and "" both mean no prefix.
func normalizePrefix(p string) string {
	p = strings.Trim(strings.TrimSpace(p), "/")
	if p == "" {
		return ""
	}
	return "/" + p
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
