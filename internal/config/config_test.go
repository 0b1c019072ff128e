package config_test

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/Aleut-Geoff-Vaughan/myScheduling-sub003/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := config.Default()
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.False(t, cfg.OpenFGA.Enabled)
	assert.False(t, cfg.Keycloak.Enabled)
	assert.Equal(t, 3, cfg.Events.MaxRetries)
	assert.Equal(t, 2*time.Second, cfg.Events.PollInterval)
	assert.Equal(t, "myscheduling", cfg.Tracing.ServiceName)
}

func TestLoadFromFile(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	content := `
server:
  port: 9091
database:
  driver: sqlite
  path: ":memory:"
events:
  webhooks:
    - http://hooks.local/history
  poll_interval: 500ms
`
	require.NoError(t, os.WriteFile(configPath, []byte(content), 0644))

	cfg, err := config.Load(configPath)
	require.NoError(t, err)
	assert.Equal(t, 9091, cfg.Server.Port)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, ":memory:", cfg.Database.Path)
	assert.Equal(t, []string{"http://hooks.local/history"}, cfg.Events.Webhooks)
	assert.Equal(t, 500*time.Millisecond, cfg.Events.PollInterval)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("APP_SERVER_PORT", "7070")
	t.Setenv("APP_DATABASE_DRIVER", "sqlite")

	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
}

func TestLoadRejectsInvalidConfig(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("database:\n  driver: oracle\n"), 0644))

	_, err := config.Load(configPath)
	assert.Error(t, err)

	require.NoError(t, os.WriteFile(configPath, []byte("openfga:\n  enabled: true\n"), 0644))
	_, err = config.Load(configPath)
	assert.Error(t, err, "store id is required when openfga is enabled")
}

func TestProductionDefaults(t *testing.T) {
	t.Setenv("APP_ENV", "production")

	cfg := config.Default()
	assert.True(t, config.IsProduction(cfg))
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 200, cfg.Database.MaxOpenConns)
	assert.True(t, cfg.RateLimit.Enabled)
}

func TestValidateRequiresAuthInProduction(t *testing.T) {
	cfg := config.Default()
	cfg.Env = "production"
	assert.ErrorContains(t, cfg.Validate(), "keycloak")

	cfg.Keycloak.Enabled = true
	cfg.Keycloak.Issuer = "https://sso.example.com/realms/myscheduling"
	assert.ErrorContains(t, cfg.Validate(), "openfga")

	cfg.OpenFGA.Enabled = true
	cfg.OpenFGA.StoreID = "store-1"
	assert.NoError(t, cfg.Validate())

	cfg.Env = "development"
	cfg.Keycloak.Enabled = false
	cfg.OpenFGA.Enabled = false
	assert.NoError(t, cfg.Validate())
}

func TestConfigWatcherReload(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("log:\n  level: info\n"), 0644))

	cfg, err := config.Load(configPath)
	require.NoError(t, err)

	watcher := config.NewConfigWatcher(cfg, configPath, nil)
	var mu sync.Mutex
	var reloaded *config.Config
	watcher.OnConfigChange(func(c *config.Config) {
		mu.Lock()
		defer mu.Unlock()
		reloaded = c
	})
	require.NoError(t, watcher.Start())
	defer watcher.Stop()

	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(configPath, []byte("log:\n  level: warn\n"), 0644))

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return reloaded != nil && reloaded.Log.Level == "warn"
	}, 3*time.Second, 50*time.Millisecond)
	assert.Eventually(t, func() bool {
		return watcher.GetConfig().Log.Level == "warn"
	}, time.Second, 20*time.Millisecond)
}
