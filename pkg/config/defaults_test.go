package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestApplyDefaultsLogging(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)

	assert.Equal(t, "INFO", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format)
	assert.Equal(t, "stdout", cfg.Logging.Output)
}

func TestApplyDefaultsNormalizesLogLevelCase(t *testing.T) {
	cfg := &Config{Logging: LoggingConfig{Level: "debug"}}
	ApplyDefaults(cfg)

	assert.Equal(t, "DEBUG", cfg.Logging.Level)
}

func TestApplyDefaultsNMPorts(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)

	assert.Equal(t, 8080, cfg.NM.SSPort)
	assert.Equal(t, 8081, cfg.NM.ClientPort)
	assert.Equal(t, 8082, cfg.NM.HeartbeatPort)
	assert.Equal(t, 5*time.Second, cfg.NM.HeartbeatInterval)
	assert.Equal(t, 15*time.Second, cfg.NM.HeartbeatTimeout)
	assert.Equal(t, 60*time.Second, cfg.NM.RegistrationGrace)
}

func TestApplyDefaultsPreservesExplicitValues(t *testing.T) {
	cfg := &Config{NM: NMConfig{SSPort: 1234}}
	ApplyDefaults(cfg)

	assert.Equal(t, 1234, cfg.NM.SSPort)
	// Untouched sibling fields still get their defaults.
	assert.Equal(t, 8081, cfg.NM.ClientPort)
}

func TestApplyDefaultsShutdownTimeout(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
}

func TestGetDefaultConfigIsValid(t *testing.T) {
	cfg := GetDefaultConfig()
	assert.NoError(t, Validate(cfg))
}
