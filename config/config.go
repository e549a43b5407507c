package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kendall-kelly/estate-market-api/logger"
	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	DatabaseURL            string
	DatabaseDriver         string
	Port                   string
	GoEnv                  string
	JWTSecret              string
	JWTIssuer              string
	JWTAudience            string
	AccessTokenTTL         time.Duration
	RefreshTokenTTL        time.Duration
	RedisURL               string
	AWSRegion              string
	AWSS3Bucket            string
	AWSS3Endpoint          string
	AWSAccessKeyID         string
	AWSSecretAccessKey     string
	UploadDir              string
	CORSAllowedOrigins     []string
	AuthRateLimitPerMinute int
	LogLevel               string
	LogPretty              bool
}

var current *Config

// Load loads the configuration from environment variables
// It automatically determines which .env file to load based on GO_ENV
func Load() (*Config, error) {
	env := os.Getenv("GO_ENV")
	if env == "" {
		env = "development"
	}

	// Try to load environment-specific file first
	envFile := fmt.Sprintf(".env.%s", env)
	if err := godotenv.Load(envFile); err != nil {
		if err := godotenv.Load(); err != nil {
			// In production the variables are set directly
			logger.L().Debug().Msg("no .env file found, using system environment variables")
		}
	} else {
		logger.L().Debug().Str("file", envFile).Msg("loaded configuration file")
	}

	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("DATABASE_DRIVER", "postgres")
	v.SetDefault("PORT", "8080")
	v.SetDefault("GO_ENV", "development")
	v.SetDefault("JWT_SECRET", "dev-secret-change-me")
	v.SetDefault("JWT_ISSUER", "estate-market-api")
	v.SetDefault("JWT_AUDIENCE", "estate-market-clients")
	v.SetDefault("ACCESS_TOKEN_TTL", "50h")
	v.SetDefault("REFRESH_TOKEN_TTL", "168h")
	v.SetDefault("AWS_REGION", "us-east-1")
	v.SetDefault("UPLOAD_DIR", "./uploads")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")
	v.SetDefault("AUTH_RATE_LIMIT_PER_MINUTE", 30)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_PRETTY", false)

	config := &Config{
		DatabaseURL:            v.GetString("DATABASE_URL"),
		DatabaseDriver:         strings.ToLower(v.GetString("DATABASE_DRIVER")),
		Port:                   v.GetString("PORT"),
		GoEnv:                  v.GetString("GO_ENV"),
		JWTSecret:              v.GetString("JWT_SECRET"),
		JWTIssuer:              v.GetString("JWT_ISSUER"),
		JWTAudience:            v.GetString("JWT_AUDIENCE"),
		AccessTokenTTL:         v.GetDuration("ACCESS_TOKEN_TTL"),
		RefreshTokenTTL:        v.GetDuration("REFRESH_TOKEN_TTL"),
		RedisURL:               v.GetString("REDIS_URL"),
		AWSRegion:              v.GetString("AWS_REGION"),
		AWSS3Bucket:            v.GetString("AWS_S3_BUCKET"),
		AWSS3Endpoint:          v.GetString("AWS_S3_ENDPOINT"),
		AWSAccessKeyID:         v.GetString("AWS_ACCESS_KEY_ID"),
		AWSSecretAccessKey:     v.GetString("AWS_SECRET_ACCESS_KEY"),
		UploadDir:              v.GetString("UPLOAD_DIR"),
		CORSAllowedOrigins:     splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
		AuthRateLimitPerMinute: v.GetInt("AUTH_RATE_LIMIT_PER_MINUTE"),
		LogLevel:               v.GetString("LOG_LEVEL"),
		LogPretty:              v.GetBool("LOG_PRETTY"),
	}

	// Validate required configuration
	if err := config.Validate(); err != nil {
		return nil, err
	}

	current = config
	return config, nil
}

// Validate checks that all required configuration values are set
func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.DatabaseDriver != "postgres" && c.DatabaseDriver != "sqlite" {
		return fmt.Errorf("DATABASE_DRIVER must be postgres or sqlite, got %q", c.DatabaseDriver)
	}
	if c.IsProduction() && (c.JWTSecret == "" || c.JWTSecret == "dev-secret-change-me") {
		return fmt.Errorf("JWT_SECRET must be set in production")
	}
	if c.AccessTokenTTL <= 0 || c.RefreshTokenTTL <= 0 {
		return fmt.Errorf("token lifetimes must be positive")
	}
	return nil
}

// IsProduction returns true if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.GoEnv == "production"
}

// IsTest returns true if the application is running in test mode
func (c *Config) IsTest() bool {
	return c.GoEnv == "test"
}

// IsDevelopment returns true if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.GoEnv == "development"
}

// UsesS3 reports whether property images go to S3 rather than the local upload dir
func (c *Config) UsesS3() bool {
	return c.AWSS3Bucket != ""
}

// GetConfig returns the configuration loaded by Load or installed by SetConfig
func GetConfig() *Config {
	return current
}

// SetConfig sets the configuration instance (primarily for testing)
func SetConfig(cfg *Config) {
	current = cfg
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
