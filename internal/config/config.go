package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"stufflending/internal/calendar"
)

// Config holds all configuration for the application
type Config struct {
	AppMode       string
	SeedDemoData  bool
	Admin         AdminConfig
	ClockStart    calendar.Date
	LoginsPerMin  int
	AdminHTTPAddr string
	OTLPEndpoint  string
}

// AdminConfig holds the administrator account created at startup
type AdminConfig struct {
	Username string
	Password string
	Email    string
	Phone    string
}

// Load reads configuration from .env file and environment variables
func Load() (*Config, error) {
	// .env is optional
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using environment variables")
	}

	appMode := strings.TrimSpace(getEnv("APP_MODE", "dev"))
	if appMode != "dev" && appMode != "prod" {
		return nil, fmt.Errorf("invalid APP_MODE: '%s' (must be 'dev' or 'prod')", appMode)
	}

	clockStart := calendar.FromTime(time.Now())
	if raw := getEnv("CLOCK_START", ""); raw != "" {
		d, err := calendar.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid CLOCK_START: %w", err)
		}
		clockStart = d
	}

	logins, err := strconv.Atoi(getEnv("LOGIN_ATTEMPTS_PER_MINUTE", "0"))
	if err != nil || logins < 0 {
		return nil, fmt.Errorf("invalid LOGIN_ATTEMPTS_PER_MINUTE: '%s'", os.Getenv("LOGIN_ATTEMPTS_PER_MINUTE"))
	}

	seed, err := strconv.ParseBool(getEnv("SEED_DEMO_DATA", strconv.FormatBool(appMode == "dev")))
	if err != nil {
		return nil, fmt.Errorf("invalid SEED_DEMO_DATA: %w", err)
	}

	config := &Config{
		AppMode:       appMode,
		SeedDemoData:  seed,
		Admin:         loadAdminConfig(),
		ClockStart:    clockStart,
		LoginsPerMin:  logins,
		AdminHTTPAddr: getEnv("ADMIN_HTTP_ADDR", ""),
		OTLPEndpoint:  getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
	}

	log.Printf("Configuration loaded [MODE: %s, clock starts %s]", appMode, clockStart)
	return config, nil
}

func loadAdminConfig() AdminConfig {
	return AdminConfig{
		Username: getEnv("ADMIN_USERNAME", "admin"),
		Password: getEnv("ADMIN_PASSWORD", "aaaaaaaa"),
		Email:    getEnv("ADMIN_EMAIL", "admin@mail.com"),
		Phone:    getEnv("ADMIN_PHONE", "0701234777"),
	}
}

// getEnv gets environment variable with default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// IsDev returns true if running in development mode
func (c *Config) IsDev() bool {
	return c.AppMode == "dev"
}
