package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"invoicedesk/internal/logger"
)

// Sync modes.
const (
	SyncNone       = "none"
	SyncAppsScript = "appsscript"
	SyncSheets     = "sheets"
)

type Config struct {
	// Local persistence
	DataDir       string
	StorageDriver string
	DatabaseDSN   string

	// Spreadsheet sync
	SyncMode     string
	SyncTimeout  time.Duration
	SyncRetryMax int

	// Apps Script web app
	AppsScriptURL string

	// Google Sheets Configuration
	GoogleSheetURL        string
	GoogleSheetWorksheet  string
	GoogleCredentialsFile string
	GoogleCredentialsJSON string

	// Business details printed on invoices
	BusinessName    string
	BusinessAddress string
	DefaultPAN      string

	// Logging Configuration
	LogLevel      string
	LogFormat     string
	LogTimeFormat string
	LogOutput     string
}

func Load() (*Config, error) {
	config := &Config{
		DataDir:               getEnv("DATA_DIR", "./data"),
		StorageDriver:         strings.ToLower(getEnv("STORAGE_DRIVER", "file")),
		DatabaseDSN:           getEnv("DATABASE_DSN", ""),
		SyncMode:              strings.ToLower(getEnv("SYNC_MODE", SyncNone)),
		AppsScriptURL:         getEnv("APPS_SCRIPT_URL", ""),
		GoogleSheetURL:        getEnv("GOOGLE_SHEET_URL", ""),
		GoogleSheetWorksheet:  getEnv("GOOGLE_SHEET_WORKSHEET", "Invoices"),
		GoogleCredentialsFile: getEnv("GOOGLE_APPLICATION_CREDENTIALS", ""),
		GoogleCredentialsJSON: getEnv("GOOGLE_CREDENTIALS", ""),
		BusinessName:          getEnv("BUSINESS_NAME", "AbroadDesk Consultancy Pvt. Ltd."),
		BusinessAddress:       getEnv("BUSINESS_ADDRESS", "Newroad, Pokhara"),
		DefaultPAN:            getEnv("DEFAULT_PAN", "51825823"),
		LogLevel:              getEnv("LOG_LEVEL", "info"),
		LogFormat:             getEnv("LOG_FORMAT", "console"),
		LogTimeFormat:         getEnv("LOG_TIME_FORMAT", "2006-01-02T15:04:05Z07:00"),
		LogOutput:             getEnv("LOG_OUTPUT", "stderr"),
	}

	var err error
	if config.SyncTimeout, err = time.ParseDuration(getEnv("SYNC_TIMEOUT", "30s")); err != nil {
		return nil, fmt.Errorf("config validation failed: SYNC_TIMEOUT: %w", err)
	}
	if config.SyncRetryMax, err = strconv.Atoi(getEnv("SYNC_RETRY_MAX", "3")); err != nil {
		return nil, fmt.Errorf("config validation failed: SYNC_RETRY_MAX: %w", err)
	}

	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

func (c *Config) validate() error {
	switch c.StorageDriver {
	case "file", "sqlite":
	case "postgres":
		if c.DatabaseDSN == "" {
			return fmt.Errorf("DATABASE_DSN is required for STORAGE_DRIVER=postgres")
		}
	default:
		return fmt.Errorf("STORAGE_DRIVER must be file, sqlite or postgres, got %q", c.StorageDriver)
	}

	switch c.SyncMode {
	case SyncNone:
	case SyncAppsScript:
		if c.AppsScriptURL == "" {
			return fmt.Errorf("APPS_SCRIPT_URL is required for SYNC_MODE=appsscript")
		}
	case SyncSheets:
		if c.GoogleSheetURL == "" {
			return fmt.Errorf("GOOGLE_SHEET_URL is required for SYNC_MODE=sheets")
		}
		if c.GoogleCredentialsFile == "" && c.GoogleCredentialsJSON == "" {
			return fmt.Errorf("GOOGLE_APPLICATION_CREDENTIALS or GOOGLE_CREDENTIALS is required for SYNC_MODE=sheets")
		}
	default:
		return fmt.Errorf("SYNC_MODE must be none, appsscript or sheets, got %q", c.SyncMode)
	}

	if c.SyncTimeout <= 0 {
		return fmt.Errorf("SYNC_TIMEOUT must be positive")
	}
	if c.SyncRetryMax < 0 {
		return fmt.Errorf("SYNC_RETRY_MAX must not be negative")
	}
	return nil
}

// GoogleCredentials returns the service account key, read from the file
// when one is configured.
func (c *Config) GoogleCredentials() ([]byte, error) {
	if c.GoogleCredentialsFile != "" {
		creds, err := os.ReadFile(c.GoogleCredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read credentials file: %w", err)
		}
		return creds, nil
	}
	return []byte(c.GoogleCredentialsJSON), nil
}

// GetLoggerConfig returns a logger configuration from the main config
func (c *Config) GetLoggerConfig() logger.LogConfig {
	return logger.LogConfig{
		Level:      c.LogLevel,
		Format:     c.LogFormat,
		TimeFormat: c.LogTimeFormat,
		Output:     c.LogOutput,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
