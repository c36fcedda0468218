package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateValidConfigPasses(t *testing.T) {
	cfg := GetDefaultConfig()
	assert.NoError(t, Validate(cfg))
}

func TestValidateRejectsInvalidLogLevel(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Logging.Level = "VERBOSE"
	assert.Error(t, Validate(cfg))
}

func TestValidateRejectsInvalidLogFormat(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Logging.Format = "xml"
	assert.Error(t, Validate(cfg))
}

func TestValidateRejectsOutOfRangeMetricsPort(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Metrics.Port = 70000
	assert.Error(t, Validate(cfg))
}

func TestValidateRejectsZeroShutdownTimeout(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.ShutdownTimeout = 0
	assert.Error(t, Validate(cfg))
}

func TestValidateRejectsAuditEnabledWithoutDSN(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Audit.Enabled = true
	cfg.Audit.DSN = ""
	assert.Error(t, Validate(cfg))
}

func TestValidateRejectsAdminEnabledWithoutJWTSecret(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Admin.Enabled = true
	cfg.Admin.JWTSecret = ""
	assert.Error(t, Validate(cfg))
}

func TestValidateRejectsSSClientPortEqualToNMPort(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.SS.NMPort = 9000
	cfg.SS.ClientPort = 9000
	assert.Error(t, Validate(cfg))
}

func TestValidateRejectsAdminEnabledWithoutCredentials(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Admin.Enabled = true
	cfg.Admin.JWTSecret = "this-is-a-long-enough-secret-value"
	cfg.Admin.Username = ""
	cfg.Admin.PasswordHash = ""
	assert.Error(t, Validate(cfg))
}

func TestValidateRejectsShortAdminJWTSecret(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Admin.Enabled = true
	cfg.Admin.JWTSecret = "too-short"
	cfg.Admin.Username = "admin"
	cfg.Admin.PasswordHash = "$2a$10$examplehash"
	assert.Error(t, Validate(cfg))
}
