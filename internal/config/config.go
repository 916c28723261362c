package config

import (
	"fmt"
	"os"
	"strconv"
)

type Config struct {
	Env  string
	Port string

	// Separate port for /metrics and /healthz
	MetricsPort string

	RedisURL  string
	RedisPass string
	RedisDB   int

	JWTSecret string

	// SMS gateway used for OTP delivery
	SMSGatewayURL string
	SMSAPIKey     string
	SMSSenderID   string

	// Seed credentials for the admin account created on first boot
	AdminMobile string
	AdminPIN    string
}

func Load() (*Config, error) {
	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %v", err)
	}

	cfg := &Config{
		Env:         getEnv("ENV", "development"),
		Port:        getEnv("PORT", "8080"),
		MetricsPort: getEnv("METRICS_PORT", "9090"),

		RedisURL:  getEnv("REDIS_URL", "localhost:6379"),
		RedisPass: getEnv("REDIS_PASS", ""),
		RedisDB:   redisDB,

		JWTSecret: getEnv("JWT_SECRET", ""),

		SMSGatewayURL: getEnv("SMS_GATEWAY_URL", ""),
		SMSAPIKey:     getEnv("SMS_API_KEY", ""),
		SMSSenderID:   getEnv("SMS_SENDER_ID", "MATKA"),

		AdminMobile: getEnv("ADMIN_MOBILE", ""),
		AdminPIN:    getEnv("ADMIN_PIN", ""),
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	return cfg, nil
}

func getEnv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return def
}
