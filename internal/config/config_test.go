package config

import (
	"os"
	"path/filepath"
	"testing"

	"ivyresort/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
app:
  name: ivyresort
  environment: test
database:
  path: data/reservations.db
api:
  port: 9000
  cors_origins:
    - https://dashboard.ivyresort.example
redis:
  address: localhost:6379
sync:
  enabled: true
  peer_url: http://peer:8080
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "ivyresort", cfg.App.Name)
	assert.Equal(t, 9000, cfg.API.Port)
	assert.Equal(t, []string{"https://dashboard.ivyresort.example"}, cfg.API.CORSOrigins)
	assert.True(t, cfg.Sync.Enabled)
}

func TestLoad_ExpandsEnvPlaceholders(t *testing.T) {
	t.Setenv("TEST_REDIS_PASSWORD", "s3cret")
	path := writeConfig(t, `
database:
  path: data/reservations.db
redis:
  address: localhost:6379
  password: ${TEST_REDIS_PASSWORD}
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "s3cret", cfg.Redis.Password)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoad_AppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
database:
  path: data/reservations.db
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.API.Port)
	assert.Equal(t, []string{"*"}, cfg.API.CORSOrigins)
	assert.Equal(t, "x-api-key", cfg.API.Auth.HeaderAPIKey)
	assert.Equal(t, models.DefaultSyncIntervalSeconds, cfg.Sync.IntervalSeconds)
	assert.Equal(t, "reservations:mirror", cfg.Sync.MirrorKey)
	assert.Equal(t, "reservations:updates", cfg.Sync.Channel)
	assert.Equal(t, models.DefaultRetentionDays, cfg.Retention.WindowDays)
	assert.Equal(t, models.DefaultSweepIntervalMinutes, cfg.Retention.SweepIntervalMinutes)
	assert.Equal(t, "Ivy Resort Reservations", cfg.Mail.FromName)
	assert.Equal(t, "exports", cfg.Exports.Path)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "missing database path",
			mutate:  func(c *Config) { c.Database.Path = "" },
			wantErr: "database path",
		},
		{
			name: "sync without redis or peer",
			mutate: func(c *Config) {
				c.Sync.Enabled = true
				c.Redis.Address = ""
				c.Sync.PeerURL = ""
			},
			wantErr: "sync requires",
		},
		{
			name: "sheets without credentials",
			mutate: func(c *Config) {
				c.Sheets.SpreadsheetID = "abc"
				c.Sheets.CredentialsFile = ""
			},
			wantErr: "credentials_file",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{Database: DatabaseConfig{Path: "data/db"}}
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidateRoomTypes(t *testing.T) {
	valid := []models.RoomType{
		{ID: 1, Name: "Standard Twin", Price: 120, Capacity: 2},
		{ID: 2, Name: "Family Suite", Price: 260, Capacity: 4},
	}
	assert.NoError(t, ValidateRoomTypes(valid))
	assert.NoError(t, ValidateRoomTypes(nil))

	assert.Error(t, ValidateRoomTypes([]models.RoomType{{ID: 1, Name: ""}}))
	assert.Error(t, ValidateRoomTypes([]models.RoomType{
		{ID: 1, Name: "Standard Twin", Capacity: 2},
		{ID: 2, Name: "Standard Twin", Capacity: 2},
	}))
	assert.Error(t, ValidateRoomTypes([]models.RoomType{{ID: 1, Name: "Standard Twin", Capacity: 0}}))
	assert.Error(t, ValidateRoomTypes([]models.RoomType{{ID: 1, Name: "Standard Twin", Capacity: 2, Price: -1}}))
}
