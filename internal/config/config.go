package config

import (
	"errors"
	"os"
	"time"
)

// app config, loaded from environment variables
type Config struct {
	Port     string
	Provider string

	PostgresHost     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresPort     string
	PostgresSSLMode  string

	RedisAddr  string
	SessionTTL time.Duration

	MongoURI   string
	BankDBName string

	JWTSecret   string
	FrontendURL string

	SpeechServiceURL string

	ExpirySweepSchedule string
	ExpireAfter         time.Duration
}

// LoadConfig reads configuration from environment variables.
func LoadConfig() (*Config, error) {
	config := &Config{
		Port:     getEnvOrDefault("PORT", "8080"),
		Provider: getEnvOrDefault("AI_PROVIDER", "gemini"),

		PostgresHost:     getEnvOrDefault("POSTGRES_HOST", "localhost"),
		PostgresUser:     getEnvOrDefault("POSTGRES_USER", "postgres"),
		PostgresPassword: getEnvOrDefault("POSTGRES_PASSWORD", "postgres"),
		PostgresDB:       getEnvOrDefault("POSTGRES_DB", "hireez"),
		PostgresPort:     getEnvOrDefault("POSTGRES_PORT", "5432"),
		PostgresSSLMode:  getEnvOrDefault("POSTGRES_SSLMODE", "disable"),

		RedisAddr:  getEnvOrDefault("REDIS_ADDR", "localhost:6379"),
		SessionTTL: getEnvDuration("SESSION_TTL", 2*time.Hour),

		MongoURI:   os.Getenv("MONGO_URI"),
		BankDBName: getEnvOrDefault("BANK_DB_NAME", "hireez"),

		JWTSecret:   os.Getenv("JWT_SECRET"),
		FrontendURL: getEnvOrDefault("FRONTEND_URL", "http://localhost:5173"),

		SpeechServiceURL: os.Getenv("SPEECH_SERVICE_URL"),

		ExpirySweepSchedule: getEnvOrDefault("EXPIRY_SWEEP_SCHEDULE", "*/30 * * * *"),
		ExpireAfter:         getEnvDuration("EXPIRE_SCHEDULED_AFTER", 24*time.Hour),
	}
	if err := validateConfig(config); err != nil {
		return nil, err
	}
	return config, nil
}

func validateConfig(config *Config) error {
	if config.Provider != "gemini" {
		return errors.New("unsupported AI provider: " + config.Provider + ". Currently supported: gemini")
	}
	if config.JWTSecret == "" {
		return errors.New("JWT_SECRET environment variable is required")
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
