package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeEnvFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.DBType)
	assert.Equal(t, "local", cfg.StorageType)
	assert.Equal(t, 7*24*time.Hour, cfg.LifecycleGracePeriod)
	assert.Equal(t, "@every 1h", cfg.LifecycleSweepSchedule)
	assert.Equal(t, 50*time.Minute, cfg.LifecycleMaxSweepDuration)
	assert.Equal(t, 1000, cfg.StorageDeleteBatchSize)
	assert.Equal(t, 1, cfg.LifecyclePurgeWorkers)
	assert.True(t, cfg.LifecycleSweepOnStart)
}

func TestLoad_FromFile(t *testing.T) {
	path := writeEnvFile(t, "LIFECYCLE_GRACE_PERIOD=48h\nSTORAGE_DELETE_BATCH_SIZE=200\nSERVER_PORT=9090\n")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 48*time.Hour, cfg.LifecycleGracePeriod)
	assert.Equal(t, 200, cfg.StorageDeleteBatchSize)
	assert.Equal(t, "127.0.0.1:9090", cfg.Addr())
}

func TestLoad_ZeroGraceAllowed(t *testing.T) {
	path := writeEnvFile(t, "LIFECYCLE_GRACE_PERIOD=0s\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, time.Duration(0), cfg.LifecycleGracePeriod)
}

func TestValidate(t *testing.T) {
	base := func() Config {
		return Config{
			StorageDeleteBatchSize: 1000,
			AlbumDefaultExpiry:     time.Hour,
			AlbumMaxExpiry:         2 * time.Hour,
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "negative grace", mutate: func(c *Config) { c.LifecycleGracePeriod = -time.Second }, wantErr: true},
		{name: "zero batch", mutate: func(c *Config) { c.StorageDeleteBatchSize = 0 }, wantErr: true},
		{name: "negative rps", mutate: func(c *Config) { c.StorageDeleteRPS = -1 }, wantErr: true},
		{name: "max below default", mutate: func(c *Config) { c.AlbumMaxExpiry = time.Minute }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, 1, cfg.LifecyclePurgeWorkers)
		})
	}
}

func TestBaseURL(t *testing.T) {
	cfg := &Config{ServerHost: "0.0.0.0", ServerPort: 8080}
	assert.Equal(t, "http://localhost:8080", cfg.BaseURL())

	cfg.ServerDomain = "https://pics.example.com/"
	assert.Equal(t, "https://pics.example.com", cfg.BaseURL())
}
