package config

import (
	"os"
	"strconv"

	"pulsegrid/engine/anomaly"
	"pulsegrid/engine/causality"
	"pulsegrid/engine/forecast"
	"pulsegrid/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Server   ServerConfig
	Ops      OpsConfig
	Database DatabaseConfig
	Data     DataConfig
	Engine   EngineConfig
}

// ServerConfig holds API server settings
type ServerConfig struct {
	Port    string
	GinMode string
}

// OpsConfig holds the health/metrics/pprof listener settings
type OpsConfig struct {
	Port    string
	Enabled bool
}

// DatabaseConfig holds the optional Postgres settings. An empty URL disables
// persistence entirely.
type DatabaseConfig struct {
	URL string
}

// DataConfig holds data import settings
type DataConfig struct {
	File string // Excel/CSV indicator workbook
}

// EngineConfig carries the analytics defaults. Every field has a default and
// none is required; request payloads may override per call.
type EngineConfig struct {
	Forecast  forecast.Config
	Anomaly   anomaly.Config
	Causality causality.Config
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:    getEnvOrDefault("PORT", "8080"),
			GinMode: getEnvOrDefault("GIN_MODE", "debug"),
		},
		Ops: OpsConfig{
			Port:    getEnvOrDefault("OPS_PORT", "6060"),
			Enabled: getEnvBoolOrDefault("OPS_ENABLED", true),
		},
		Database: DatabaseConfig{
			URL: getEnvOrDefault("DATABASE_URL", ""),
		},
		Data: DataConfig{
			File: getEnvOrDefault("DATA_FILE", ""),
		},
		Engine: EngineConfig{
			Forecast: forecast.Config{
				Alpha:           getEnvFloatOrDefault("FORECAST_ALPHA", 0.3),
				Beta:            getEnvFloatOrDefault("FORECAST_BETA", 0.1),
				Horizon:         getEnvIntOrDefault("FORECAST_HORIZON", 5),
				ConfidenceLevel: getEnvIntOrDefault("FORECAST_CONFIDENCE", 95),
			},
			Anomaly: anomaly.Config{
				Method:    anomaly.Method(getEnvOrDefault("ANOMALY_METHOD", "both")),
				Threshold: getEnvFloatOrDefault("ANOMALY_THRESHOLD", 2.5),
			},
			Causality: causality.Config{
				MaxLag: getEnvIntOrDefault("CAUSALITY_MAX_LAG", 3),
			},
		},
	}

	if err := validate(cfg); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}
	return cfg, nil
}

func validate(cfg *Config) error {
	if cfg.Server.Port == "" {
		return errors.ConfigInvalid("server port is required")
	}
	if cfg.Engine.Forecast.Alpha <= 0 || cfg.Engine.Forecast.Alpha > 1 {
		return errors.ConfigInvalid("FORECAST_ALPHA must be in (0,1]")
	}
	if cfg.Engine.Forecast.Beta <= 0 || cfg.Engine.Forecast.Beta > 1 {
		return errors.ConfigInvalid("FORECAST_BETA must be in (0,1]")
	}
	if cfg.Engine.Forecast.Horizon <= 0 {
		return errors.ConfigInvalid("FORECAST_HORIZON must be positive")
	}
	if cfg.Engine.Anomaly.Threshold <= 0 {
		return errors.ConfigInvalid("ANOMALY_THRESHOLD must be positive")
	}
	if cfg.Engine.Causality.MaxLag <= 0 {
		return errors.ConfigInvalid("CAUSALITY_MAX_LAG must be positive")
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
