package config

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Port              string
	DBUrl             string
	JWTSecret         string
	AppEnv            string
	RTCAppID          string
	RTCAppCertificate string
	RTCAPIBase        string
}

func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	jwtSecret, exists := os.LookupEnv("JWT_SECRET")
	if !exists || jwtSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	return &Config{
		Port:              getEnv("PORT", "8080"),
		DBUrl:             getEnv("DB_URL", ""),
		JWTSecret:         jwtSecret,
		AppEnv:            normalizeEnv(getEnv("APP_ENV", "production")),
		RTCAppID:          getEnv("RTC_APP_ID", ""),
		RTCAppCertificate: getEnv("RTC_APP_CERTIFICATE", ""),
		RTCAPIBase:        getEnv("RTC_API_BASE", "https://api.rtc.example.com"),
	}, nil
}

// IsDevelopment reports whether the server runs in a development
// environment. Request logging is only enabled there.
func (c *Config) IsDevelopment() bool {
	return c != nil && c.AppEnv == "development"
}

// RTCConfigured reports whether real RTC credentials are present. When false
// the stream layer hands out placeholder credentials instead of failing.
func (c *Config) RTCConfigured() bool {
	return c != nil && c.RTCAppID != "" && c.RTCAppCertificate != ""
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func normalizeEnv(value string) string {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "dev", "develop", "development", "local":
		return "development"
	case "prod", "production":
		return "production"
	case "stage", "staging":
		return "staging"
	case "test", "testing":
		return "test"
	default:
		return strings.ToLower(strings.TrimSpace(value))
	}
}
