package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadAppliesDefaultsWhenConfigFileAbsent(t *testing.T) {
	tmpDir := t.TempDir()
	cfg, err := Load(filepath.Join(tmpDir, "does-not-exist.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "INFO", cfg.Logging.Level)
	assert.Equal(t, 8080, cfg.NM.SSPort)
	assert.Equal(t, 8081, cfg.NM.ClientPort)
	assert.Equal(t, 8082, cfg.NM.HeartbeatPort)
	assert.Equal(t, 5, cfg.Lock.MaxWriteAttempts)
}

func TestLoadUnmarshalsConfigFileOverDefaults(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	content := `
logging:
  level: DEBUG
  format: json
  output: stdout

nm:
  ss_port: 9080
  client_port: 9081
  heartbeat_port: 9082
  heartbeat_interval: 2s
  heartbeat_timeout: 6s
  registration_grace: 20s

cache:
  capacity: 2048

lock:
  max_write_attempts: 3
  retry_backoff: 100ms

shutdown_timeout: 5s
`
	require.NoError(t, os.WriteFile(configPath, []byte(content), 0o644))

	cfg, err := Load(configPath)
	require.NoError(t, err)

	assert.Equal(t, "DEBUG", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, 9080, cfg.NM.SSPort)
	assert.Equal(t, 2*time.Second, cfg.NM.HeartbeatInterval)
	assert.Equal(t, 2048, cfg.Cache.Capacity)
	assert.Equal(t, 3, cfg.Lock.MaxWriteAttempts)
	assert.Equal(t, 100*time.Millisecond, cfg.Lock.RetryBackoff)
	assert.Equal(t, 5*time.Second, cfg.ShutdownTimeout)
}

func TestLoadInvalidYAMLReturnsError(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("logging: [this is not valid: yaml"), 0o644))

	_, err := Load(configPath)
	assert.Error(t, err)
}

func TestEnvironmentVariableOverridesConfigFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("logging:\n  level: INFO\n"), 0o644))

	t.Setenv("DFS_LOGGING_LEVEL", "WARN")

	cfg, err := Load(configPath)
	require.NoError(t, err)
	assert.Equal(t, "WARN", cfg.Logging.Level)
}

func TestSaveConfigRoundTrips(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "nested", "config.yaml")

	cfg := GetDefaultConfig()
	cfg.NM.SSPort = 7000
	require.NoError(t, SaveConfig(cfg, path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 7000, loaded.NM.SSPort)
}

func TestGetDefaultConfigPathHonorsXDGConfigHome(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", tmpDir)

	assert.Equal(t, filepath.Join(tmpDir, "docsplusplus", "config.yaml"), GetDefaultConfigPath())
}

func TestDefaultConfigExistsReflectsFilePresence(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", tmpDir)

	assert.False(t, DefaultConfigExists())

	require.NoError(t, os.MkdirAll(filepath.Join(tmpDir, "docsplusplus"), 0o755))
	require.NoError(t, os.WriteFile(GetDefaultConfigPath(), []byte("logging:\n  level: INFO\n"), 0o644))

	assert.True(t, DefaultConfigExists())
}
