package config

import "time"

// Default values for configuration fields.
const (
	// Server defaults
	DefaultListenAddress   = "127.0.0.1:8080"
	DefaultReadTimeout     = 30 * time.Second
	DefaultWriteTimeout    = 30 * time.Second
	DefaultIdleTimeout     = 120 * time.Second
	DefaultShutdownTimeout = 30 * time.Second
	DefaultMaxHeaderBytes  = 1048576  // 1MB
	DefaultMaxUploadBytes  = 10485760 // 10MB

	// TLS defaults
	DefaultTLSMinVersion     = "1.3"
	DefaultTLSReloadInterval = 5 * time.Minute
	DefaultTLSClientAuth     = "require"
	DefaultTLSIdentitySource = "subject.CN"

	// Logging defaults
	DefaultLoggingLevel  = "info"
	DefaultLoggingFormat = "json"

	// Scrubbing defaults
	DefaultScrubbingEnabled     = true
	DefaultScrubbingReplacement = "xxxxx"

	// Metrics defaults
	DefaultMetricsEnabled   = true
	DefaultMetricsPath      = "/metrics"
	DefaultMetricsNamespace = "wiretap"
	DefaultMaxCardinality   = 10000

	// Watch defaults
	DefaultWatchEnabled  = false
	DefaultWatchDebounce = 100 * time.Millisecond

	// Users defaults
	DefaultUsersDatabasePath = "data/users.db"
	DefaultUsersSeed         = true
)

// Defaults returns a Config populated with every default value. Loading
// decodes YAML on top of it, so boolean fields absent from the file keep
// their defaults.
func Defaults() *Config {
	cfg := &Config{
		Scrubbing: ScrubbingConfig{Enabled: DefaultScrubbingEnabled},
		Metrics:   MetricsConfig{Enabled: DefaultMetricsEnabled},
		Watch:     WatchConfig{Enabled: DefaultWatchEnabled},
		Users:     UsersConfig{Seed: DefaultUsersSeed},
	}
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults applies default values to a Config struct.
// It sets defaults for any fields that have zero values.
// This function is idempotent and safe to call multiple times.
func ApplyDefaults(cfg *Config) {
	// Server defaults
	if cfg.Server.ListenAddress == "" {
		cfg.Server.ListenAddress = DefaultListenAddress
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = DefaultReadTimeout
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = DefaultWriteTimeout
	}
	if cfg.Server.IdleTimeout == 0 {
		cfg.Server.IdleTimeout = DefaultIdleTimeout
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = DefaultShutdownTimeout
	}
	if cfg.Server.MaxHeaderBytes == 0 {
		cfg.Server.MaxHeaderBytes = DefaultMaxHeaderBytes
	}
	if cfg.Server.MaxUploadBytes == 0 {
		cfg.Server.MaxUploadBytes = DefaultMaxUploadBytes
	}
	if cfg.Server.TLS.MinVersion == "" {
		cfg.Server.TLS.MinVersion = DefaultTLSMinVersion
	}
	if cfg.Server.TLS.ReloadInterval == 0 {
		cfg.Server.TLS.ReloadInterval = DefaultTLSReloadInterval
	}
	if cfg.Server.TLS.ClientAuth == "" {
		cfg.Server.TLS.ClientAuth = DefaultTLSClientAuth
	}
	if cfg.Server.TLS.IdentitySource == "" {
		cfg.Server.TLS.IdentitySource = DefaultTLSIdentitySource
	}

	// Logging defaults
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = DefaultLoggingLevel
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = DefaultLoggingFormat
	}

	// Scrubbing defaults; Enabled is seeded by Defaults
	if cfg.Scrubbing.Replacement == "" {
		cfg.Scrubbing.Replacement = DefaultScrubbingReplacement
	}

	// Metrics defaults
	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = DefaultMetricsPath
	}
	if cfg.Metrics.Namespace == "" {
		cfg.Metrics.Namespace = DefaultMetricsNamespace
	}
	if cfg.Metrics.MaxCardinality == 0 {
		cfg.Metrics.MaxCardinality = DefaultMaxCardinality
	}

	// Watch defaults
	if cfg.Watch.Debounce == 0 {
		cfg.Watch.Debounce = DefaultWatchDebounce
	}

	// Users defaults
	if cfg.Users.DatabasePath == "" {
		cfg.Users.DatabasePath = DefaultUsersDatabasePath
	}
}
