package config

import (
	"fmt"
	"time"
)

type AppConfig struct {
	HTTPAddr        string
	GRPCAddr        string
	ShutdownTimeout time.Duration

	JWTSecret string
	JWTTTL    time.Duration

	// Locale the parks operate in; decides what "today" is for visit dates.
	ParkTimezone *time.Location

	LogLevel  string
	LogFormat string // text | json

	CORSOrigins []string

	// Bootstrap super-admin, created on start when both are set.
	AdminEmail    string
	AdminPassword string
}

func LoadAppConfig() (*AppConfig, error) {
	tzName := getEnv("PARK_TIMEZONE", "Asia/Kolkata")
	loc, err := time.LoadLocation(tzName)
	if err != nil {
		return nil, fmt.Errorf("invalid PARK_TIMEZONE %q: %w", tzName, err)
	}

	cfg := &AppConfig{
		HTTPAddr:        getEnv("HTTP_ADDR", ":5001"),
		GRPCAddr:        getEnv("GRPC_ADDR", ":50051"),
		ShutdownTimeout: getEnvDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		JWTSecret:       getEnv("JWT_SECRET", ""),
		JWTTTL:          getEnvDuration("JWT_TTL", 24*time.Hour),
		ParkTimezone:    loc,
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		LogFormat:       getEnv("LOG_FORMAT", "text"),
		CORSOrigins:     getEnvList("CORS_ORIGINS", []string{"http://localhost:3000"}),
		AdminEmail:      getEnv("ADMIN_EMAIL", ""),
		AdminPassword:   getEnv("ADMIN_PASSWORD", ""),
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("invalid app config: JWT_SECRET must be set")
	}
	if cfg.JWTTTL <= 0 {
		return nil, fmt.Errorf("invalid app config: JWT_TTL must be positive")
	}

	return cfg, nil
}
