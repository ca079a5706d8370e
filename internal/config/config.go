package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// Create a new instance of the logger
// Configure it to log at the desired level
// and format it as JSON for structured logging
var log = logrus.New()

func init() {
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetLevel(LevelForEnvironment(os.Getenv("APP_ENV")))
}

// Config used for the application configuration, loading the input from environment variables
type Config struct {
	// Server Configuration
	Port        int      `json:"port"`
	Host        string   `json:"host"`
	Environment string   `json:"environment"`
	CORSOrigins []string `json:"cors_origins"`

	// Database configuration
	DBDriver   string `json:"db_driver"`
	DBHost     string `json:"db_host"`
	DBPort     string `json:"db_port"`
	DBName     string `json:"db_name"`
	DBUser     string `json:"db_user"`
	DBPassword string `json:"db_password"`
	DBSSLMode  string `json:"db_sslmode"`
	DBPath     string `json:"db_path"`

	// Logging configuration
	LogLevel string `json:"log_level"`

	// Security Configuration
	JWTSecret    string        `json:"jwt_secret"`
	TokenTTL     time.Duration `json:"token_ttl"`
	RefreshTTL   time.Duration `json:"refresh_ttl"`
	CookieSecure bool          `json:"cookie_secure"`

	// Rate limiting, requests per second and burst size
	RateLimit      float64 `json:"rate_limit"`
	RateLimitBurst int     `json:"rate_limit_burst"`

	// Image storage
	StorageDriver string `json:"storage_driver"`
	UploadDir     string `json:"upload_dir"`
	PublicBaseURL string `json:"public_base_url"`
	S3Bucket      string `json:"s3_bucket"`
	S3Region      string `json:"s3_region"`
	ImageMaxWidth int    `json:"image_max_width"`

	// Google OAuth2 login
	GoogleClientID     string `json:"google_client_id"`
	GoogleClientSecret string `json:"google_client_secret"`
	GoogleRedirectURL  string `json:"google_redirect_url"`
}

// String returns a string representation of Config with sensitive data masked
func (c *Config) String() string {
	return fmt.Sprintf("Config{Port: %d, Host: %s, Environment: %s, DBDriver: %s, DBHost: %s, DBName: %s, DBUser: %s, DBPassword: [REDACTED], DBPath: %s, LogLevel: %s, JWTSecret: [REDACTED], StorageDriver: %s, S3Bucket: %s, GoogleClientID: %s, GoogleClientSecret: [REDACTED]}",
		c.Port, c.Host, c.Environment, c.DBDriver, c.DBHost, c.DBName, c.DBUser, c.DBPath, c.LogLevel, c.StorageDriver, c.S3Bucket, c.GoogleClientID)
}

// GoogleEnabled reports whether both Google OAuth2 credentials are configured.
func (c *Config) GoogleEnabled() bool {
	return c.GoogleClientID != "" && c.GoogleClientSecret != ""
}

// LoadConfig read the proper configuration from environment variables and returns a Config struct
// It also validates the database and storage drivers and the JWT secret
// Returns an error if any required environment variable is missing or invalid
func LoadConfig() (*Config, error) {
	log.Info("Loading configuration from environment variables")
	port, err := strconv.Atoi(GetEnvWithDefault("APP_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}

	config := &Config{
		Port:        port,
		Host:        GetEnvWithDefault("APP_HOST", "localhost"),
		Environment: GetEnvWithDefault("APP_ENV", "development"),
		CORSOrigins: splitList(GetEnvWithDefault("CORS_ORIGINS", "http://localhost:3000")),

		DBDriver:   strings.ToLower(GetEnvWithDefault("DB_DRIVER", "sqlite")),
		DBHost:     GetEnvWithDefault("DB_HOST", "localhost"),
		DBPort:     GetEnvWithDefault("DB_PORT", "5432"),
		DBName:     GetEnvWithDefault("DB_NAME", "foodie_love"),
		DBUser:     GetEnvWithDefault("DB_USER", "postgres"),
		DBPassword: GetEnvWithDefault("DB_PASSWORD", "password"),
		DBSSLMode:  GetEnvWithDefault("DB_SSLMODE", "disable"),
		DBPath:     GetEnvWithDefault("DB_PATH", "recipes.sqlite"),

		LogLevel: GetEnvWithDefault("LOG_LEVEL", "info"),

		JWTSecret:    GetEnvWithDefault("JWT_SECRET", "secret"),
		TokenTTL:     GetEnvAsType("TOKEN_TTL", 15*time.Minute),
		RefreshTTL:   GetEnvAsType("REFRESH_TTL", 7*24*time.Hour),
		CookieSecure: GetEnvAsType("COOKIE_SECURE", false),

		RateLimit:      GetEnvAsType("RATE_LIMIT", 50.0),
		RateLimitBurst: GetEnvAsType("RATE_LIMIT_BURST", 100),

		StorageDriver: strings.ToLower(GetEnvWithDefault("STORAGE_DRIVER", "local")),
		UploadDir:     GetEnvWithDefault("UPLOAD_DIR", "uploads"),
		PublicBaseURL: GetEnvWithDefault("PUBLIC_BASE_URL", "http://localhost:8080"),
		S3Bucket:      os.Getenv("S3_BUCKET"),
		S3Region:      GetEnvWithDefault("S3_REGION", "us-east-1"),
		ImageMaxWidth: GetEnvAsType("IMAGE_MAX_WIDTH", 800),

		GoogleClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
		GoogleClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
		GoogleRedirectURL:  GetEnvWithDefault("GOOGLE_REDIRECT_URL", "http://localhost:8080/auth/google/redirect"),
	}

	if err := config.validate(); err != nil {
		return nil, err
	}

	log.Infof("Configuration loaded: %s", config.String())
	return config, nil
}

// validate checks combinations of settings that cannot work together
func (c *Config) validate() error {
	switch c.DBDriver {
	case "sqlite", "postgres", "postgresql":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q (supported: postgres, sqlite)", c.DBDriver)
	}

	switch c.StorageDriver {
	case "local":
	case "s3":
		if c.S3Bucket == "" {
			return errors.New("S3_BUCKET environment variable is required when STORAGE_DRIVER is s3")
		}
	default:
		return fmt.Errorf("unsupported STORAGE_DRIVER %q (supported: local, s3)", c.StorageDriver)
	}

	if c.Environment == "production" && (c.JWTSecret == "" || c.JWTSecret == "secret") {
		return errors.New("JWT_SECRET must be set to a non-default value in production")
	}

	if c.TokenTTL <= 0 || c.RefreshTTL <= 0 {
		return errors.New("TOKEN_TTL and REFRESH_TTL must be positive durations")
	}
	return nil
}

// LevelForEnvironment maps APP_ENV to the logrus level used across the app
func LevelForEnvironment(environment string) logrus.Level {
	switch environment {
	case "", "development":
		return logrus.DebugLevel
	case "production":
		return logrus.ErrorLevel
	default:
		// Default to info level for other environments
		return logrus.InfoLevel
	}
}

// Helper to get environment with default values
func GetEnvWithDefault(key, defaultValue string) string {
	log.Tracef("Getting environment variable: %s", key)
	value := os.Getenv(key)
	if value == "" {
		log.Debugf("Environment variable %s not set, using default value: %s", key, defaultValue)
		return defaultValue
	}
	return value
}

// GetEnvAsType retrieves an environment variable and converts it to the specified type
// using generic type handling.
func GetEnvAsType[T any](key string, defaultValue T) T {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	var result T
	switch any(result).(type) {
	case int:
		intValue, err := strconv.Atoi(value)
		if err != nil {
			return defaultValue
		}
		return any(intValue).(T)
	case float64:
		floatValue, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return defaultValue
		}
		return any(floatValue).(T)
	case string:
		return any(value).(T)
	case bool:
		boolValue, err := strconv.ParseBool(value)
		if err != nil {
			return defaultValue
		}
		return any(boolValue).(T)
	case time.Duration:
		duration, err := time.ParseDuration(value)
		if err != nil {
			return defaultValue
		}
		return any(duration).(T)
	default:
		return defaultValue // Fallback for unsupported types
	}
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
