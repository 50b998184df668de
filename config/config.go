package config

import (
	"errors"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTPHost string
	HTTPPort string

	MySQLDSN string

	JWTAccessTokenSecret  string
	JWTAccessTokenTTL     time.Duration
	JWTRefreshTokenSecret string
	JWTRefreshTokenTTL    time.Duration

	S3Bucket    string
	S3Region    string
	S3Endpoint  string
	S3AccessKey string
	S3SecretKey string
	S3PublicURL string

	LogLevel  string
	LogFormat string
}

func Load() (*Config, error) {
	// Load .env file if it exists (ignores error if not found)
	_ = godotenv.Load()

	mysqlDSN := os.Getenv("MYSQL_DSN")
	if mysqlDSN == "" {
		return nil, errors.New("MYSQL_DSN environment variable is required")
	}

	accessSecret := os.Getenv("JWT_ACCESS_TOKEN_SECRET")
	if accessSecret == "" {
		return nil, errors.New("JWT_ACCESS_TOKEN_SECRET environment variable is required")
	}

	refreshSecret := os.Getenv("JWT_REFRESH_TOKEN_SECRET")
	if refreshSecret == "" {
		return nil, errors.New("JWT_REFRESH_TOKEN_SECRET environment variable is required")
	}

	return &Config{
		HTTPHost: getEnv("HTTP_HOST", ""),
		HTTPPort: getEnv("HTTP_PORT", "8080"),

		MySQLDSN: mysqlDSN,

		JWTAccessTokenSecret:  accessSecret,
		JWTAccessTokenTTL:     getDurationEnv("JWT_ACCESS_TOKEN_EXPIRATION_TIME", 15*time.Minute),
		JWTRefreshTokenSecret: refreshSecret,
		JWTRefreshTokenTTL:    getDurationEnv("JWT_REFRESH_TOKEN_EXPIRATION_TIME", 7*24*time.Hour),

		S3Bucket:    getEnv("S3_BUCKET", "avatars"),
		S3Region:    getEnv("S3_REGION", "us-east-1"),
		S3Endpoint:  getEnv("S3_ENDPOINT", ""),
		S3AccessKey: getEnv("S3_ACCESS_KEY", ""),
		S3SecretKey: getEnv("S3_SECRET_KEY", ""),
		S3PublicURL: getEnv("S3_PUBLIC_URL", ""),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),
	}, nil
}

func (c *Config) DSN() string {
	return c.MySQLDSN
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getDurationEnv reads a TTL expressed in seconds, matching the cookie
// Max-Age values derived from it.
func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if seconds, err := strconv.Atoi(value); err == nil {
			return time.Duration(seconds) * time.Second
		}
	}
	return defaultValue
}
