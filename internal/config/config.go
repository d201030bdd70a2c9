package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"hesabu-service/internal/mpesa"
)

type AppConfig struct {
	// Server
	HTTPAddr   string
	CORSOrigin string

	// PostgreSQL
	DatabaseURL string

	// Redis
	RedisAddr string
	RedisPass string
	RedisDB   int

	// JWT
	JWTSecret string
	JWTIssuer string
	JWTTTL    time.Duration

	// M-Pesa (Daraja)
	Mpesa mpesa.Config
}

// Load loads environment variables into AppConfig.
func Load() AppConfig {
	return AppConfig{
		HTTPAddr:   getEnv("HTTP_ADDR", ":8000"),
		CORSOrigin: getEnv("CORS_ORIGIN", "*"),

		DatabaseURL: getEnv("DATABASE_URL", ""),

		RedisAddr: getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPass: getEnv("REDIS_PASSWORD", ""),
		RedisDB:   getEnvInt("REDIS_DB", 0),

		JWTSecret: getEnv("JWT_SECRET", ""),
		JWTIssuer: getEnv("JWT_ISSUER", "hesabu"),
		JWTTTL:    getEnvDuration("JWT_TTL", 72*time.Hour),

		Mpesa: mpesa.Config{
			BaseURL:        getEnv("MPESA_BASE_URL", "https://sandbox.safaricom.co.ke"),
			ConsumerKey:    getEnv("MPESA_CONSUMER_KEY", ""),
			ConsumerSecret: getEnv("MPESA_CONSUMER_SECRET", ""),
			Shortcode:      getEnv("MPESA_SHORTCODE", ""),
			Passkey:        getEnv("MPESA_PASSKEY", ""),
			CallbackURL:    getEnv("MPESA_CALLBACK_URL", ""),
		},
	}
}

// Validate fails fast when a required secret is missing. A server that boots
// half-configured and then 500s on the first payment is worse than one that
// refuses to start.
func (c AppConfig) Validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if err := c.Mpesa.Validate(); err != nil {
		return err
	}
	return nil
}

// --- Helper functions ---

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
