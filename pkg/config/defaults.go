package config

import (
	"strings"
	"time"
)

// ApplyDefaults sets default values for any unspecified configuration
// fields after loading from file and environment.
//
// Default strategy: zero values (0, "", false) are replaced with
// defaults; explicit values are preserved.
func ApplyDefaults(cfg *Config) {
	applyLoggingDefaults(&cfg.Logging)
	applyNMDefaults(&cfg.NM)
	applySSDefaults(&cfg.SS)
	applyCacheDefaults(&cfg.Cache)
	applyLockDefaults(&cfg.Lock)
	applyTelemetryDefaults(&cfg.Telemetry)
	applyMetricsDefaults(&cfg.Metrics)
	applySnapshotDefaults(&cfg.Snapshot)
	applyAuditDefaults(&cfg.Audit)
	applyAdminDefaults(&cfg.Admin)

	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = 10 * time.Second
	}
}

func applyLoggingDefaults(cfg *LoggingConfig) {
	if cfg.Level == "" {
		cfg.Level = "INFO"
	}
	cfg.Level = strings.ToUpper(cfg.Level)

	if cfg.Format == "" {
		cfg.Format = "text"
	}
	if cfg.Output == "" {
		cfg.Output = "stdout"
	}
}

func applyNMDefaults(cfg *NMConfig) {
	if cfg.SSPort == 0 {
		cfg.SSPort = 8080
	}
	if cfg.ClientPort == 0 {
		cfg.ClientPort = 8081
	}
	if cfg.HeartbeatPort == 0 {
		cfg.HeartbeatPort = 8082
	}
	if cfg.HeartbeatInterval == 0 {
		cfg.HeartbeatInterval = 5 * time.Second
	}
	if cfg.HeartbeatTimeout == 0 {
		cfg.HeartbeatTimeout = 15 * time.Second
	}
	if cfg.RegistrationGrace == 0 {
		cfg.RegistrationGrace = 60 * time.Second
	}
	if cfg.DataDir == "" {
		cfg.DataDir = "/var/lib/docsplusplus/nm"
	}
}

func applySSDefaults(cfg *SSConfig) {
	if cfg.CommandTimeout == 0 {
		cfg.CommandTimeout = 30 * time.Second
	}
	if cfg.HeartbeatInterval == 0 {
		cfg.HeartbeatInterval = 5 * time.Second
	}
	if cfg.StorageRoot == "" {
		cfg.StorageRoot = "/var/lib/docsplusplus/ss"
	}
	if cfg.TempDir == "" {
		cfg.TempDir = "/var/lib/docsplusplus/ss/tmp"
	}
	applyArchiveDefaults(&cfg.Archive)
}

func applyArchiveDefaults(cfg *ArchiveConfig) {
	if cfg.UploadTimeout == 0 {
		cfg.UploadTimeout = 30 * time.Second
	}
}

func applyCacheDefaults(cfg *CacheConfig) {
	if cfg.Capacity == 0 {
		cfg.Capacity = 1024
	}
}

func applyLockDefaults(cfg *LockConfig) {
	if cfg.MaxWriteAttempts == 0 {
		cfg.MaxWriteAttempts = 5
	}
	if cfg.RetryBackoff == 0 {
		cfg.RetryBackoff = 200 * time.Millisecond
	}
}

func applyTelemetryDefaults(cfg *TelemetryConfig) {
	if cfg.Endpoint == "" {
		cfg.Endpoint = "localhost:4317"
	}
	if cfg.SampleRate == 0 {
		cfg.SampleRate = 1.0
	}
	applyProfilingDefaults(&cfg.Profiling)
}

func applyProfilingDefaults(cfg *ProfilingConfig) {
	if cfg.Endpoint == "" {
		cfg.Endpoint = "http://localhost:4040"
	}
}

func applyMetricsDefaults(cfg *MetricsConfig) {
	if cfg.Port == 0 {
		cfg.Port = 9090
	}
}

func applySnapshotDefaults(cfg *SnapshotConfig) {
	if cfg.Interval == 0 {
		cfg.Interval = 5 * time.Minute
	}
}

func applyAuditDefaults(cfg *AuditConfig) {
	if cfg.Driver == "" {
		cfg.Driver = "sqlite"
	}
	if cfg.DSN == "" && cfg.Driver == "sqlite" {
		cfg.DSN = "/var/lib/docsplusplus/audit.db"
	}
	if cfg.QueueCapacity == 0 {
		cfg.QueueCapacity = 256
	}
}

func applyAdminDefaults(cfg *AdminConfig) {
	if cfg.Port == 0 {
		cfg.Port = 9443
	}
}

// GetDefaultConfig returns a fully defaulted Config, used when no config
// file is present (Load) and as the seed init writes to disk.
func GetDefaultConfig() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}
