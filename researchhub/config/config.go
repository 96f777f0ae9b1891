package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"

	defaultJWTSecret = "your-secret-key-change-this-in-production"
)

type Config struct {
	Env  string
	Port string

	StoreDriver string
	MongoURL    string
	MongoDB     string

	DBUser     string
	DBPassword string
	DBHost     string
	DBPort     string
	DBName     string

	JWTSecret    string
	JWTExpiresIn time.Duration

	CORSOrigins []string

	FrontendDir    string
	FrontendBucket string
	MinIOEndpoint  string
	MinIOAccessKey string
	MinIOSecretKey string
	MinIOUseSSL    bool

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	AuthRateLimit int

	LogDir string
}

func LoadConfig() Config {
	// a missing .env is fine, the process env still applies
	_ = godotenv.Load()

	ttl, err := ParseTTL(getEnv("JWT_EXPIRES_IN", "7d"))
	if err != nil {
		ttl = 7 * 24 * time.Hour
	}

	return Config{
		Env:  getEnv("ENV", "development"),
		Port: getEnv("PORT", "8001"),

		StoreDriver: strings.ToLower(getEnv("STORE_DRIVER", DriverMongo)),
		MongoURL:    getEnv("MONGO_URL", "mongodb://localhost:27017/langgraph_research"),
		MongoDB:     getEnv("MONGO_DB", "langgraph_research"),

		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBName:     getEnv("DB_NAME", "langgraph_research"),

		JWTSecret:    getEnv("JWT_SECRET", defaultJWTSecret),
		JWTExpiresIn: ttl,

		CORSOrigins: getEnvList("CORS_ORIGINS", []string{
			"http://localhost:3000",
			"http://localhost:5173",
			"http://localhost:2024",
		}),

		FrontendDir:    getEnv("FRONTEND_DIR", "../frontend/dist"),
		FrontendBucket: getEnv("FRONTEND_BUCKET", ""),
		MinIOEndpoint:  getEnv("MINIO_ENDPOINT", "localhost:9000"),
		MinIOAccessKey: getEnv("MINIO_ACCESS_KEY", ""),
		MinIOSecretKey: getEnv("MINIO_SECRET_KEY", ""),
		MinIOUseSSL:    getEnvBool("MINIO_USE_SSL", false),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),
		AuthRateLimit: getEnvInt("AUTH_RATE_LIMIT", 20),

		LogDir: getEnv("LOG_DIR", "./logs"),
	}
}

// Validate rejects configurations the server cannot run with.
func (c Config) Validate() error {
	switch c.StoreDriver {
	case DriverMongo, DriverPostgres, DriverMemory:
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver)
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET must not be empty")
	}
	if c.IsProduction() && c.JWTSecret == defaultJWTSecret {
		return fmt.Errorf("JWT_SECRET must be changed in production")
	}
	if c.JWTExpiresIn <= 0 {
		return fmt.Errorf("JWT_EXPIRES_IN must be positive")
	}
	return nil
}

func (c Config) IsProduction() bool {
	return c.Env == "production"
}

func (c Config) PostgresDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.DBHost,
		c.DBPort,
		c.DBUser,
		c.DBPassword,
		c.DBName,
	)
}

// ParseTTL accepts Go durations plus a day suffix ("7d").
func ParseTTL(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if strings.HasSuffix(s, "d") {
		days, err := strconv.Atoi(strings.TrimSuffix(s, "d"))
		if err != nil {
			return 0, fmt.Errorf("invalid day duration %q: %w", s, err)
		}
		return time.Duration(days) * 24 * time.Hour, nil
	}
	return time.ParseDuration(s)
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return n
}

func getEnvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return b
}

func getEnvList(key string, fallback []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
