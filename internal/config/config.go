package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// Config represents the full application configuration surface.
type Config struct {
	Server  ServerConfig
	MongoDB MongoDBConfig
	Mail    MailConfig
	Sheets  SheetsConfig
	Report  ReportConfig
}

// ServerConfig holds HTTP server related options.
type ServerConfig struct {
	Port string
}

// MongoDBConfig holds settings for MongoDB. Issuance and stock operations
// use multi-document transactions, so the target deployment must be a
// replica set.
type MongoDBConfig struct {
	URI    string
	DBName string
}

// MailConfig carries notifier settings: the HTTP mail API endpoint, the
// sender identity and the address of the stockroom head who receives the
// events. Notifications are disabled when no API key is set.
type MailConfig struct {
	BaseURL     string
	APIKey      string
	Sender      string
	HeadAddress string
}

// Enabled reports whether outbound mail is configured.
func (m MailConfig) Enabled() bool {
	return m.APIKey != ""
}

// SheetsConfig contains configuration required to read the import
// spreadsheet from Google Sheets. Import stays disabled when unset.
type SheetsConfig struct {
	CredentialsPath string
	SpreadsheetID   string
}

// Enabled reports whether the bulk import source is configured.
func (s SheetsConfig) Enabled() bool {
	return s.CredentialsPath != "" && s.SpreadsheetID != ""
}

// ReportConfig holds the low-stock report schedule.
type ReportConfig struct {
	CronSchedule string
}

// Load reads environment variables (optionally from the provided file) and
// materializes a Config instance.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("failed loading env file %s: %w", envFile, err)
			}
		}
	} else {
		// Ignore the returned error here; missing .env files are acceptable when
		// configuration comes from the environment directly.
		_ = godotenv.Load()
	}

	cfg := &Config{
		Server: ServerConfig{
			Port: getenvWithDefault("APP_PORT", "8080"),
		},
		MongoDB: MongoDBConfig{
			URI:    getenvWithDefault("MONGODB_URI", "mongodb://localhost:27017"),
			DBName: getenvWithDefault("MONGODB_DB_NAME", "stockroom"),
		},
		Mail: MailConfig{
			BaseURL:     getenvWithDefault("MAIL_BASE_URL", "https://api.mailgun.net/v3/stockroom.example"),
			APIKey:      os.Getenv("MAIL_API_KEY"),
			Sender:      getenvWithDefault("MAIL_SENDER", "stockroom@stockroom.example"),
			HeadAddress: os.Getenv("MAIL_HEAD_ADDRESS"),
		},
		Sheets: SheetsConfig{
			CredentialsPath: os.Getenv("GOOGLE_SHEETS_CREDENTIALS_PATH"),
			SpreadsheetID:   os.Getenv("GOOGLE_SHEET_IMPORT_ID"),
		},
		Report: ReportConfig{
			CronSchedule: getenvWithDefault("LOW_STOCK_CRON_SCHEDULE", "0 8 * * *"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate ensures that required configuration fields are populated.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}

	if c.Server.Port == "" {
		return errors.New("APP_PORT must be provided")
	}

	if c.MongoDB.URI == "" {
		return errors.New("MONGODB_URI must be provided")
	}
	if c.MongoDB.DBName == "" {
		return errors.New("MONGODB_DB_NAME must be provided")
	}

	if c.Mail.Enabled() {
		switch {
		case c.Mail.BaseURL == "":
			return errors.New("MAIL_BASE_URL must be provided when mail is enabled")
		case c.Mail.Sender == "":
			return errors.New("MAIL_SENDER must be provided when mail is enabled")
		case c.Mail.HeadAddress == "":
			return errors.New("MAIL_HEAD_ADDRESS must be provided when mail is enabled")
		}
	}

	if c.Report.CronSchedule == "" {
		return errors.New("LOW_STOCK_CRON_SCHEDULE must be provided")
	}

	return nil
}

func getenvWithDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
