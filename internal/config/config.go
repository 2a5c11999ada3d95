package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	App        AppConfig        `yaml:"app"`
	Database   DatabaseConfig   `yaml:"database"`
	Redis      RedisConfig      `yaml:"redis"`
	Geocoder   GeocoderConfig   `yaml:"geocoder"`
	Catalog    CatalogConfig    `yaml:"catalog"`
	Owners     []OwnerProfile   `yaml:"owners"`
	API        APIConfig        `yaml:"api"`
	Ledger     LedgerConfig     `yaml:"ledger"`
	Exports    ExportConfig     `yaml:"exports"`
	Logging    LoggingConfig    `yaml:"logging"`
	Monitoring MonitoringConfig `yaml:"monitoring"`
}

type AppConfig struct {
	Name        string `yaml:"name"`
	Environment string `yaml:"environment"`
	Version     string `yaml:"version"`
}

type DatabaseConfig struct {
	Path string `yaml:"path"`
}

type RedisConfig struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"pool_size"`
}

type GeocoderConfig struct {
	BaseURL        string `yaml:"base_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

type CatalogConfig struct {
	URL            string `yaml:"url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// OwnerProfile associates supplementary profile data with an identity.
// Owners absent from the list simply have no photo.
type OwnerProfile struct {
	Email string `yaml:"email"`
	Photo string `yaml:"photo"`
}

type APIConfig struct {
	Enabled   bool               `yaml:"enabled"`
	HTTP      APIHTTPConfig      `yaml:"http"`
	Auth      APIAuthConfig      `yaml:"auth"`
	RateLimit APIRateLimitConfig `yaml:"rate_limit"`
}

type APIHTTPConfig struct {
	Enabled bool `yaml:"enabled"`
	Port    int  `yaml:"port"`
}

type APIAuthConfig struct {
	Enabled      bool           `yaml:"enabled"`
	HeaderAPIKey string         `yaml:"header_api_key"`
	HeaderExtra  string         `yaml:"header_extra"`
	APIKeys      []APIClientKey `yaml:"api_keys"`
}

// APIClientKey maps an API key to an authenticated user. User is the
// email-like identity all write operations are scoped to.
type APIClientKey struct {
	Key         string   `yaml:"key"`
	Extra       string   `yaml:"extra"`
	User        string   `yaml:"user"`
	Permissions []string `yaml:"permissions"`
}

type APIRateLimitConfig struct {
	RPS   float64 `yaml:"rps"`
	Burst int     `yaml:"burst"`
}

type LedgerConfig struct {
	Enabled          bool   `yaml:"enabled"`
	CredentialsFile  string `yaml:"credentials_file"`
	SpreadsheetID    string `yaml:"spreadsheet_id"`
	MaxRetries       int    `yaml:"max_retries"`
	PollIntervalSecs int    `yaml:"poll_interval_seconds"`
}

type ExportConfig struct {
	Path string `yaml:"path"`
}

type LoggingConfig struct {
	Level    string `yaml:"level"`
	Format   string `yaml:"format"`
	Output   string `yaml:"output"`
	FilePath string `yaml:"file_path"`
}

type MonitoringConfig struct {
	PrometheusEnabled bool `yaml:"prometheus_enabled"`
	PrometheusPort    int  `yaml:"prometheus_port"`
}

func Load(configPath string) (*Config, error) {
	// .env is optional; ignore a missing file but expand what it provides.
	_ = godotenv.Load(".env")

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	expandedData := []byte(os.ExpandEnv(string(data)))

	var config Config
	if err := yaml.Unmarshal(expandedData, &config); err != nil {
		return nil, err
	}

	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

func (c *Config) Validate() error {
	if c.Database.Path == "" {
		return errors.New("database path is required")
	}

	if c.Geocoder.BaseURL == "" {
		return errors.New("geocoder base_url is required")
	}

	return ValidateOwners(c.Owners)
}

// ValidateOwners rejects duplicate or empty owner identities.
func ValidateOwners(owners []OwnerProfile) error {
	seen := make(map[string]bool, len(owners))
	for _, o := range owners {
		email := strings.ToLower(strings.TrimSpace(o.Email))
		if email == "" {
			return errors.New("owner with empty email in owners list")
		}
		if seen[email] {
			return fmt.Errorf("duplicate owner email found: %s", email)
		}
		seen[email] = true
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.API.HTTP.Port == 0 {
		c.API.HTTP.Port = 8080
	}
	if !c.API.HTTP.Enabled && c.API.Enabled {
		c.API.HTTP.Enabled = true
	}
	// auth enabled by default when API is enabled
	if !c.API.Auth.Enabled {
		c.API.Auth.Enabled = true
	}
	if c.API.Auth.HeaderAPIKey == "" {
		c.API.Auth.HeaderAPIKey = "x-api-key"
	}
	if c.API.Auth.HeaderExtra == "" {
		c.API.Auth.HeaderExtra = "x-api-extra"
	}

	if c.Monitoring.PrometheusEnabled && c.Monitoring.PrometheusPort == 0 {
		c.Monitoring.PrometheusPort = 9090
	}

	if c.Geocoder.TimeoutSeconds == 0 {
		c.Geocoder.TimeoutSeconds = 10
	}
	if c.Catalog.TimeoutSeconds == 0 {
		c.Catalog.TimeoutSeconds = 10
	}

	if c.Ledger.MaxRetries == 0 {
		c.Ledger.MaxRetries = 5
	}
	if c.Ledger.PollIntervalSecs == 0 {
		c.Ledger.PollIntervalSecs = 2
	}

	if c.Exports.Path == "" {
		c.Exports.Path = "exports"
	}
}
