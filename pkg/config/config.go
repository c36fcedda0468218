// Package config loads the name server, storage server, and client
// configuration.
//
// Configuration sources, in order of precedence:
//  1. CLI flags (bound by cmd/nmd, cmd/ssd, cmd/dctl)
//  2. Environment variables (DFS_* prefix)
//  3. YAML configuration file
//  4. Built-in defaults
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
	"github.com/shraw06/docsplusplus/internal/bytesize"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config is the top-level configuration shared by nmd and ssd; individual
// sections are only meaningful to the process that uses them (an ssd
// process ignores NM and vice versa), the way the teacher's single Config
// struct covers every adapter even though one process only ever enables a
// subset.
//
// Configuration precedence (highest to lowest):
//  1. Environment variables (DFS_*)
//  2. Configuration file
//  3. Default values
type Config struct {
	// Logging controls log output behavior
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`

	// NM configures the name server's three wire-protocol ports and
	// health-monitor timing. Unused by ssd and dctl.
	NM NMConfig `mapstructure:"nm" yaml:"nm"`

	// SS configures a single storage server instance. Unused by nmd and dctl.
	SS SSConfig `mapstructure:"ss" yaml:"ss"`

	// Cache is the NM file/folder metadata LRU front cache.
	Cache CacheConfig `mapstructure:"cache" yaml:"cache"`

	// Lock bounds the client write-retry loop.
	Lock LockConfig `mapstructure:"lock" yaml:"lock"`

	// Telemetry controls OpenTelemetry distributed tracing
	Telemetry TelemetryConfig `mapstructure:"telemetry" yaml:"telemetry"`

	// Metrics contains Prometheus metrics server configuration
	Metrics MetricsConfig `mapstructure:"metrics" yaml:"metrics"`

	// Snapshot controls the NM's Badger-backed pre-warm snapshot.
	Snapshot SnapshotConfig `mapstructure:"snapshot" yaml:"snapshot"`

	// Audit controls the GORM-backed ACL/access-request audit log.
	Audit AuditConfig `mapstructure:"audit" yaml:"audit"`

	// Admin contains the read-only admin HTTP API and JWT configuration.
	Admin AdminConfig `mapstructure:"admin" yaml:"admin"`

	// ShutdownTimeout is the maximum time to wait for graceful shutdown
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"required,gt=0" yaml:"shutdown_timeout"`
}

// NMConfig configures the name server's three wire-protocol ports plus SS
// health-monitor timing and the optional snapshot data directory.
type NMConfig struct {
	// SSPort is the port storage servers register and send commands on.
	SSPort int `mapstructure:"ss_port" validate:"required,min=1,max=65535" yaml:"ss_port"`
	// ClientPort is the only port clients may connect to.
	ClientPort int `mapstructure:"client_port" validate:"required,min=1,max=65535" yaml:"client_port"`
	// HeartbeatPort is the dedicated SS heartbeat socket port.
	HeartbeatPort int `mapstructure:"heartbeat_port" validate:"required,min=1,max=65535" yaml:"heartbeat_port"`

	// HeartbeatInterval is how often a registered SS is expected to send
	// a heartbeat.
	HeartbeatInterval time.Duration `mapstructure:"heartbeat_interval" validate:"required,gt=0" yaml:"heartbeat_interval"`
	// HeartbeatTimeout marks an SS inactive once this long has elapsed
	// since its last heartbeat, outside the registration grace window.
	HeartbeatTimeout time.Duration `mapstructure:"heartbeat_timeout" validate:"required,gt=0" yaml:"heartbeat_timeout"`
	// RegistrationGrace suppresses eviction for this long after an SS
	// (re)registers, even if no heartbeat has arrived yet.
	RegistrationGrace time.Duration `mapstructure:"registration_grace" validate:"required,gt=0" yaml:"registration_grace"`

	// DataDir holds the Badger snapshot of user sessions and the
	// file/folder trie; see SnapshotConfig for the enable/interval knobs.
	DataDir string `mapstructure:"data_dir" yaml:"data_dir"`
}

// SSConfig configures a single storage server instance. Most of these
// fields are ordinarily supplied positionally on the command line per the
// documented "legacy positional form" (nm-ip nm-port client-port ss-id),
// but a config file or environment variable may set them instead.
type SSConfig struct {
	ID         int    `mapstructure:"id" yaml:"id"`
	NMIP       string `mapstructure:"nm_ip" yaml:"nm_ip"`
	NMPort     int    `mapstructure:"nm_port" validate:"omitempty,min=1,max=65535" yaml:"nm_port"`
	ClientPort int    `mapstructure:"client_port" validate:"omitempty,min=1,max=65535,nefield=NMPort" yaml:"client_port"`

	// StorageRoot is the parent directory under which ss_storage_<id> lives.
	StorageRoot string `mapstructure:"storage_root" yaml:"storage_root"`

	// TempDir holds per-writer staged-edit temp files.
	TempDir string `mapstructure:"temp_dir" yaml:"temp_dir"`

	// CommandTimeout bounds a receive on the SS-to-NM command socket.
	CommandTimeout time.Duration `mapstructure:"command_timeout" yaml:"command_timeout"`
	// HeartbeatInterval is how often this SS pings the NM heartbeat port.
	HeartbeatInterval time.Duration `mapstructure:"heartbeat_interval" yaml:"heartbeat_interval"`

	// Archive controls optional off-box S3 upload of named checkpoints.
	Archive ArchiveConfig `mapstructure:"archive" yaml:"archive"`
}

// ArchiveConfig configures best-effort S3 upload of checkpoint bytes,
// keyed as "<ss-id>/<file>/<tag>". A disabled or misconfigured archive
// never fails the checkpoint RPC that triggers an upload.
type ArchiveConfig struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	Bucket string `mapstructure:"bucket" validate:"required_if=Enabled true" yaml:"bucket"`
	Region string `mapstructure:"region" yaml:"region"`

	// Endpoint overrides the default AWS endpoint, for S3-compatible
	// object stores (MinIO, etc.). Empty uses AWS's own resolution.
	Endpoint string `mapstructure:"endpoint" yaml:"endpoint"`
	// UsePathStyle is required by most non-AWS S3-compatible endpoints.
	UsePathStyle bool `mapstructure:"use_path_style" yaml:"use_path_style"`

	// AccessKeyID/SecretAccessKey are optional static credentials; when
	// empty the default AWS credential chain (env, shared config, IMDS) is
	// used instead.
	AccessKeyID     string `mapstructure:"access_key_id" yaml:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key" yaml:"secret_access_key"`

	// UploadTimeout bounds a single checkpoint upload attempt.
	UploadTimeout time.Duration `mapstructure:"upload_timeout" yaml:"upload_timeout"`
}

// CacheConfig is the NM file/folder metadata front cache.
type CacheConfig struct {
	Capacity int `mapstructure:"capacity" validate:"required,gt=0" yaml:"capacity"`
}

// LockConfig bounds the client write-retry loop triggered by a broken
// connection mid-write.
type LockConfig struct {
	// MaxWriteAttempts bounds the client's reconnect/relock/retry loop on
	// a transport failure mid-write.
	MaxWriteAttempts int `mapstructure:"max_write_attempts" validate:"required,gt=0" yaml:"max_write_attempts"`
	// RetryBackoff is the base delay between write retry attempts; the
	// actual delay scales with attempt number.
	RetryBackoff time.Duration `mapstructure:"retry_backoff" validate:"required,gt=0" yaml:"retry_backoff"`
}

// LoggingConfig controls logging behavior, mirrored onto internal/logger.Config.
type LoggingConfig struct {
	// Level is the minimum log level to output.
	// Valid values: DEBUG, INFO, WARN, ERROR (case-insensitive).
	Level string `mapstructure:"level" validate:"required,oneof=DEBUG INFO WARN ERROR debug info warn error" yaml:"level"`

	// Format specifies the log output format.
	// Valid values: text, json, color-text.
	Format string `mapstructure:"format" validate:"required,oneof=text json color-text" yaml:"format"`

	// Output specifies where logs are written: stdout, stderr, or a file path.
	Output string `mapstructure:"output" validate:"required" yaml:"output"`
}

// TelemetryConfig controls OpenTelemetry distributed tracing over an
// OTLP/gRPC exporter. This is the one legitimate use of a gRPC dependency
// in this codebase: it carries telemetry, never the NM/SS/client protocol.
type TelemetryConfig struct {
	// Enabled controls whether distributed tracing is active.
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	// Endpoint is the OTLP collector endpoint (host:port).
	Endpoint string `mapstructure:"endpoint" yaml:"endpoint"`

	// Insecure controls whether to use a non-TLS connection to the collector.
	Insecure bool `mapstructure:"insecure" yaml:"insecure"`

	// SampleRate controls the trace sampling rate (0.0 to 1.0).
	SampleRate float64 `mapstructure:"sample_rate" validate:"omitempty,gte=0,lte=1" yaml:"sample_rate"`

	// Profiling contains Pyroscope continuous profiling configuration.
	Profiling ProfilingConfig `mapstructure:"profiling" yaml:"profiling"`
}

// ProfilingConfig controls the optional Pyroscope continuous profiler.
type ProfilingConfig struct {
	// Enabled controls whether continuous profiling is active.
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	// Endpoint is the Pyroscope server endpoint (URL).
	Endpoint string `mapstructure:"endpoint" yaml:"endpoint"`
}

// MetricsConfig configures the Prometheus /metrics HTTP server.
// When Enabled is false, no metrics are collected.
type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	// Port is the HTTP port for the metrics endpoint.
	Port int `mapstructure:"port" validate:"omitempty,min=1,max=65535" yaml:"port"`
}

// SnapshotConfig controls the NM's periodic (and on-shutdown) Badger
// snapshot of the registered-user set and the file/folder trie.
type SnapshotConfig struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	// Interval between automatic snapshots, in addition to the final
	// snapshot taken on graceful shutdown.
	Interval time.Duration `mapstructure:"interval" validate:"omitempty,gt=0" yaml:"interval"`

	// MaxSize bounds the on-disk size of the snapshot database, expressed
	// as a human-readable size ("256Mi", "1GB", ...).
	MaxSize bytesize.ByteSize `mapstructure:"max_size" yaml:"max_size,omitempty"`
}

// AuditConfig configures the GORM-backed audit log of ACL grant/revoke and
// access-request approve/deny decisions.
type AuditConfig struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	// Driver is "sqlite" (default, zero-config) or "postgres".
	Driver string `mapstructure:"driver" validate:"omitempty,oneof=sqlite postgres" yaml:"driver"`

	// DSN is the SQLite file path or Postgres connection string.
	DSN string `mapstructure:"dsn" yaml:"dsn"`

	// QueueCapacity bounds the fire-and-forget audit-write channel; a full
	// channel drops the oldest pending record rather than blocking the
	// RPC that produced it.
	QueueCapacity int `mapstructure:"queue_capacity" validate:"omitempty,gt=0" yaml:"queue_capacity"`
}

// AdminConfig configures the read-only admin HTTP API and its JWT auth.
type AdminConfig struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	// Port is the HTTP port for the admin API, separate from the three
	// wire-protocol ports.
	Port int `mapstructure:"port" validate:"omitempty,min=1,max=65535" yaml:"port"`

	// JWTSecret signs and verifies the bearer tokens dctl presents.
	JWTSecret string `mapstructure:"jwt_secret" yaml:"jwt_secret"`

	// Username is the single admin login accepted by POST /api/v1/auth/login.
	Username string `mapstructure:"username" yaml:"username"`

	// PasswordHash is a bcrypt hash of the admin password; never the
	// plaintext password itself.
	PasswordHash string `mapstructure:"password_hash" yaml:"password_hash"`
}

// Load loads configuration from file, environment, and defaults. When no
// config file is found, Load returns GetDefaultConfig() without consulting
// environment variables.
//
// Parameters:
//   - configPath: path to config file (empty string uses default location)
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setupViper(v, configPath)

	configFileFound, err := readConfigFile(v)
	if err != nil {
		return nil, err
	}

	if !configFileFound {
		return GetDefaultConfig(), nil
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, viper.DecodeHook(configDecodeHooks())); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// MustLoad loads configuration with helpful error messages, the way
// cmd/nmd and cmd/ssd report a missing config file to an operator.
func MustLoad(configPath string) (*Config, error) {
	if configPath == "" {
		if !DefaultConfigExists() {
			return nil, fmt.Errorf("no configuration file found at default location: %s\n\n"+
				"Please initialize a configuration file first:\n"+
				"  dctl init\n\n"+
				"Or specify a custom config file:\n"+
				"  nmd --config /path/to/config.yaml",
				GetDefaultConfigPath())
		}
		configPath = GetDefaultConfigPath()
	} else if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("configuration file not found: %s", configPath)
	}

	cfg, err := Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, nil
}

// SaveConfig saves the configuration to path in YAML, using yaml tags.
func SaveConfig(cfg *Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// 0600: the admin JWT secret and audit DSN may carry credentials.
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// setupViper configures viper with environment variables and config file settings.
func setupViper(v *viper.Viper, configPath string) {
	// DFS_LOGGING_LEVEL, DFS_NM_SS_PORT, etc.
	v.SetEnvPrefix("DFS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		configDir := getConfigDir()
		v.AddConfigPath(configDir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
}

// readConfigFile reads the configuration file if it exists.
// Returns (fileFound, error); a missing config file is not an error.
func readConfigFile(v *viper.Viper) (bool, error) {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return false, nil
		}
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to read config file: %w", err)
	}
	return true, nil
}

// configDecodeHooks returns a combined decode hook for ByteSize and
// time.Duration parsing.
func configDecodeHooks() mapstructure.DecodeHookFunc {
	return mapstructure.ComposeDecodeHookFunc(
		byteSizeDecodeHook(),
		durationDecodeHook(),
	)
}

// byteSizeDecodeHook converts strings and integers to bytesize.ByteSize,
// so config files can use human-readable sizes like "1Gi" or "500MB".
func byteSizeDecodeHook() mapstructure.DecodeHookFunc {
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if to != reflect.TypeOf(bytesize.ByteSize(0)) {
			return data, nil
		}

		switch v := data.(type) {
		case string:
			return bytesize.ParseByteSize(v)
		case int:
			return bytesize.ByteSize(v), nil
		case int64:
			return bytesize.ByteSize(v), nil
		case uint64:
			return bytesize.ByteSize(v), nil
		case float64:
			return bytesize.ByteSize(v), nil
		default:
			return data, nil
		}
	}
}

// durationDecodeHook converts strings to time.Duration so config files can
// use human-readable durations like "30s" or "5m".
func durationDecodeHook() mapstructure.DecodeHookFunc {
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if to != reflect.TypeOf(time.Duration(0)) {
			return data, nil
		}

		switch v := data.(type) {
		case string:
			return time.ParseDuration(v)
		case int:
			return time.Duration(v), nil
		case int64:
			return time.Duration(v), nil
		case float64:
			return time.Duration(v), nil
		default:
			return data, nil
		}
	}
}

// getConfigDir returns the configuration directory path, preferring
// XDG_CONFIG_HOME, then ~/.config, then the current directory.
func getConfigDir() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "docsplusplus")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}

	return filepath.Join(home, ".config", "docsplusplus")
}

// GetDefaultConfigPath returns the default configuration file path.
func GetDefaultConfigPath() string {
	return filepath.Join(getConfigDir(), "config.yaml")
}

// DefaultConfigExists reports whether a config file exists at the default location.
func DefaultConfigExists() bool {
	_, err := os.Stat(GetDefaultConfigPath())
	return err == nil
}

// GetConfigDir returns the configuration directory path (exposed for the
// dctl init command).
func GetConfigDir() string {
	return getConfigDir()
}

// Validate runs struct-tag validation over cfg, then the cross-field checks
// tags alone can't express.
func Validate(cfg *Config) error {
	v := validator.New()
	if err := v.Struct(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if cfg.Audit.Enabled && cfg.Audit.DSN == "" {
		return fmt.Errorf("audit.dsn is required when audit.enabled is true")
	}

	if cfg.Admin.Enabled {
		if cfg.Admin.JWTSecret == "" {
			return fmt.Errorf("admin.jwt_secret is required when admin.enabled is true")
		}
		if len(cfg.Admin.JWTSecret) < 32 {
			return fmt.Errorf("admin.jwt_secret must be at least 32 characters")
		}
		if cfg.Admin.Username == "" || cfg.Admin.PasswordHash == "" {
			return fmt.Errorf("admin.username and admin.password_hash are required when admin.enabled is true")
		}
	}

	return nil
}
