package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds all runtime configuration, loaded from the environment.
// main.go loads .env via godotenv before calling New.
type Config struct {
	// Server
	Port string
	Env  string

	// Database
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// Redis (optional; rate limiting is bypassed when unset)
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// JWT
	JWTSecret               string
	JWTAccessTokenDuration  time.Duration
	JWTRefreshTokenDuration time.Duration

	// SMS delivery. When SMSEnabled is true missing Twilio credentials
	// are fatal at startup; when false every send is simulated and a
	// synthetic delivery id is returned.
	SMSEnabled        bool
	TwilioAccountSID  string
	TwilioAuthToken   string
	TwilioPhoneNumber string
	SMSCountryCode    string
	SMSTimeout        time.Duration

	// Rate limiting (per client IP, OTP endpoints)
	RateLimitRequests int
	RateLimitDuration time.Duration

	// RabbitMQ (optional; booking events are skipped when unset)
	RabbitURL      string
	RabbitExchange string
}

func New() *Config {
	return &Config{
		Port: getEnv("PORT", "8080"),
		Env:  getEnv("ENV", "development"),

		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASS", ""),
		DBName:     getEnv("DB_NAME", "fleet"),
		DBSSLMode:  getEnv("DB_SSL_MODE", "disable"),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvAsInt("REDIS_DB", 0),

		JWTSecret:               getEnv("JWT_SECRET", "dev-secret-change-me"),
		JWTAccessTokenDuration:  getEnvAsDuration("JWT_ACCESS_TOKEN_DURATION", "1h"),
		JWTRefreshTokenDuration: getEnvAsDuration("JWT_REFRESH_TOKEN_DURATION", "168h"),

		SMSEnabled:        getEnv("SMS_ENABLED", "true") == "true",
		TwilioAccountSID:  getEnv("TWILIO_ACCOUNT_SID", ""),
		TwilioAuthToken:   getEnv("TWILIO_AUTH_TOKEN", ""),
		TwilioPhoneNumber: getEnv("TWILIO_PHONE_NUMBER", ""),
		SMSCountryCode:    getEnv("SMS_COUNTRY_CODE", "+91"),
		SMSTimeout:        getEnvAsDuration("SMS_TIMEOUT", "10s"),

		RateLimitRequests: getEnvAsInt("RATE_LIMIT_REQUESTS", 20),
		RateLimitDuration: getEnvAsDuration("RATE_LIMIT_DURATION", "1m"),

		RabbitURL:      getEnv("RABBIT_URL", ""),
		RabbitExchange: getEnv("RABBIT_EXCHANGE", "fleet.bookings"),
	}
}

// IsDevelopment gates OTP console logging and other dev-only behavior
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, err := strconv.Atoi(getEnv(key, "")); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	if duration, err := time.ParseDuration(getEnv(key, defaultValue)); err == nil {
		return duration
	}
	duration, _ := time.ParseDuration(defaultValue)
	return duration
}
