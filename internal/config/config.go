package config

import (
	"errors"
	"fmt"
	"os"

	"ivyresort/internal/models"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	App        AppConfig        `yaml:"app"`
	Database   DatabaseConfig   `yaml:"database"`
	Redis      RedisConfig      `yaml:"redis"`
	API        APIConfig        `yaml:"api"`
	Mail       MailConfig       `yaml:"mail"`
	Sync       SyncConfig       `yaml:"sync"`
	Retention  RetentionConfig  `yaml:"retention"`
	Sheets     SheetsConfig     `yaml:"sheets"`
	Monitoring MonitoringConfig `yaml:"monitoring"`
	Logging    LoggingConfig    `yaml:"logging"`
	Exports    ExportConfig     `yaml:"exports"`
	RoomTypes  []models.RoomType `yaml:"room_types"`
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

type APIConfig struct {
	Port        int                `yaml:"port"`
	CORSOrigins []string           `yaml:"cors_origins"`
	Auth        APIAuthConfig      `yaml:"auth"`
	RateLimit   APIRateLimitConfig `yaml:"rate_limit"`
}

type APIAuthConfig struct {
	Enabled      bool           `yaml:"enabled"`
	HeaderAPIKey string         `yaml:"header_api_key"`
	APIKeys      []APIClientKey `yaml:"api_keys"`
}

type APIClientKey struct {
	Key         string   `yaml:"key"`
	Name        string   `yaml:"name"`
	Permissions []string `yaml:"permissions"`
}

type APIRateLimitConfig struct {
	RPS   float64 `yaml:"rps"`
	Burst int     `yaml:"burst"`
}

type MailConfig struct {
	FromName    string     `yaml:"from_name"`
	WebhookURL  string     `yaml:"webhook_url"`
	WebhookToken string    `yaml:"webhook_token"`
	SMTP        SMTPConfig `yaml:"smtp"`
}

type SMTPConfig struct {
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

type SyncConfig struct {
	Enabled         bool   `yaml:"enabled"`
	PeerURL         string `yaml:"peer_url"`
	IntervalSeconds int    `yaml:"interval_seconds"`
	MirrorKey       string `yaml:"mirror_key"`
	Channel         string `yaml:"channel"`
}

type RetentionConfig struct {
	WindowDays           int `yaml:"window_days"`
	SweepIntervalMinutes int `yaml:"sweep_interval_minutes"`
}

type SheetsConfig struct {
	CredentialsFile string `yaml:"credentials_file"`
	SpreadsheetID   string `yaml:"spreadsheet_id"`
}

type MonitoringConfig struct {
	PrometheusEnabled bool `yaml:"prometheus_enabled"`
	PrometheusPort    int  `yaml:"prometheus_port"`
}

type LoggingConfig struct {
	Level    string `yaml:"level"`
	Format   string `yaml:"format"`
	Output   string `yaml:"output"`
	FilePath string `yaml:"file_path"`
}

type ExportConfig struct {
	Path string `yaml:"path"`
}

func Load(configPath string) (*Config, error) {
	// .env is optional; environment variables win either way.
	_ = godotenv.Load(".env")

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	// Expand ${VAR} placeholders before parsing so secrets stay out of YAML.
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

	if c.Sync.Enabled && c.Redis.Address == "" && c.Sync.PeerURL == "" {
		return errors.New("sync requires a redis address or a peer url")
	}

	if c.Sheets.SpreadsheetID != "" && c.Sheets.CredentialsFile == "" {
		return errors.New("sheets.spreadsheet_id requires sheets.credentials_file")
	}

	return ValidateRoomTypes(c.RoomTypes)
}

func ValidateRoomTypes(roomTypes []models.RoomType) error {
	names := make(map[string]bool)
	for _, rt := range roomTypes {
		if rt.Name == "" {
			return fmt.Errorf("room type %d has an empty name", rt.ID)
		}
		if names[rt.Name] {
			return fmt.Errorf("duplicate room type name: %s", rt.Name)
		}
		names[rt.Name] = true
		if rt.Capacity <= 0 {
			return fmt.Errorf("room type '%s' has invalid capacity %d", rt.Name, rt.Capacity)
		}
		if rt.Price < 0 {
			return fmt.Errorf("room type '%s' has negative price", rt.Name)
		}
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.API.Port == 0 {
		c.API.Port = 8080
	}
	if len(c.API.CORSOrigins) == 0 {
		c.API.CORSOrigins = []string{"*"}
	}
	if c.API.Auth.HeaderAPIKey == "" {
		c.API.Auth.HeaderAPIKey = "x-api-key"
	}
	if c.Monitoring.PrometheusEnabled && c.Monitoring.PrometheusPort == 0 {
		c.Monitoring.PrometheusPort = 9090
	}
	if c.Sync.IntervalSeconds == 0 {
		c.Sync.IntervalSeconds = models.DefaultSyncIntervalSeconds
	}
	if c.Sync.MirrorKey == "" {
		c.Sync.MirrorKey = "reservations:mirror"
	}
	if c.Sync.Channel == "" {
		c.Sync.Channel = "reservations:updates"
	}
	if c.Retention.WindowDays == 0 {
		c.Retention.WindowDays = models.DefaultRetentionDays
	}
	if c.Retention.SweepIntervalMinutes == 0 {
		c.Retention.SweepIntervalMinutes = models.DefaultSweepIntervalMinutes
	}
	if c.Mail.FromName == "" {
		c.Mail.FromName = "Ivy Resort Reservations"
	}
	if c.Exports.Path == "" {
		c.Exports.Path = "exports"
	}
}
