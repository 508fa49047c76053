package config

import (
	"os"
	"strconv"

	"gospc/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Server   ServerConfig
	Data     DataConfig
	Database DatabaseConfig
	Display  DisplayConfig
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port string
}

// DataConfig holds measurement data source settings
type DataConfig struct {
	FilePath string // Optional startup file; sessions can load their own
	Sheet    string // Optional sheet name, empty selects the first sheet
}

// DatabaseConfig holds optional saved-analysis persistence settings
type DatabaseConfig struct {
	URL     string // Empty disables persistence
	Enabled bool
}

// DisplayConfig holds numeric formatting settings for the summary display
type DisplayConfig struct {
	StatPrecision  int // Decimal places for mean and dispersion values
	IndexPrecision int // Decimal places for capability indices
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Server: ServerConfig{
			Port: getEnvOrDefault("PORT", "8080"),
		},
		Data: DataConfig{
			FilePath: getEnvOrDefault("DATA_FILE", ""),
			Sheet:    getEnvOrDefault("DATA_SHEET", ""),
		},
		Database: DatabaseConfig{
			URL: getEnvOrDefault("DATABASE_URL", ""),
		},
		Display: DisplayConfig{
			StatPrecision:  getEnvIntOrDefault("STAT_PRECISION", 4),
			IndexPrecision: getEnvIntOrDefault("INDEX_PRECISION", 2),
		},
	}
	config.Database.Enabled = config.Database.URL != ""

	if err := validate(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}
	return config, nil
}

func validate(config *Config) error {
	if config.Server.Port == "" {
		return errors.ConfigInvalid("PORT cannot be empty")
	}
	if _, err := strconv.Atoi(config.Server.Port); err != nil {
		return errors.ConfigInvalid("PORT must be numeric")
	}
	if config.Display.StatPrecision < 0 || config.Display.StatPrecision > 12 {
		return errors.ConfigInvalid("STAT_PRECISION must be between 0 and 12")
	}
	if config.Display.IndexPrecision < 0 || config.Display.IndexPrecision > 12 {
		return errors.ConfigInvalid("INDEX_PRECISION must be between 0 and 12")
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}
