package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Server:    ServerConfig{Mode: "debug"},
		Database:  DatabaseConfig{Driver: "memory"},
		JWT:       JWTConfig{Secret: "dev-secret"},
		Promotion: PromotionConfig{CompletionThreshold: 0.8},
	}
}

func TestValidate(t *testing.T) {
	require.NoError(t, validConfig().Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing secret", func(c *Config) { c.JWT.Secret = "" }},
		{"short release secret", func(c *Config) { c.Server.Mode = "release" }},
		{"threshold above one", func(c *Config) { c.Promotion.CompletionThreshold = 1.5 }},
		{"negative threshold", func(c *Config) { c.Promotion.CompletionThreshold = -0.1 }},
		{"unknown driver", func(c *Config) { c.Database.Driver = "sqlite" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}

	release := validConfig()
	release.Server.Mode = "release"
	release.JWT.Secret = strings.Repeat("k", 32)
	assert.NoError(t, release.Validate())
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	uploads := filepath.Join(dir, "uploads")
	yaml := `
server:
  port: "9090"
database:
  driver: memory
jwt:
  secret: file-secret
  expire_hours: 2
storage:
  type: local
  local_path: ` + uploads + `
promotion:
  require_completion: true
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, 2*time.Hour, cfg.JWT.ExpireTime)
	assert.Equal(t, 15*time.Second, cfg.Server.RequestTimeout)
	assert.True(t, cfg.Promotion.RequireCompletion)
	assert.Equal(t, 0.8, cfg.Promotion.CompletionThreshold)
	assert.True(t, cfg.Promotion.ArchiveProgress)
	assert.False(t, cfg.Enrollment.BootstrapAttendance)
	assert.Equal(t, filepath.Join(dir, "config.yaml"), cfg.ConfigFile)
	assert.DirExists(t, uploads)
}
