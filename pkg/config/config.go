package config

import "time"

// Config is the root configuration structure for wiretap.
type Config struct {
	// Server contains HTTP and gRPC listener configuration.
	Server ServerConfig `yaml:"server"`

	// Logging configures the log sink the interceptor writes to.
	Logging LoggingConfig `yaml:"logging"`

	// Scrubbing configures redaction of sensitive argument values.
	Scrubbing ScrubbingConfig `yaml:"scrubbing"`

	// Metrics configures the Prometheus collector.
	Metrics MetricsConfig `yaml:"metrics"`

	// Watch configures hot reload of this file.
	Watch WatchConfig `yaml:"watch"`

	// Users configures the demo user service.
	Users UsersConfig `yaml:"users"`
}

// ServerConfig contains configuration for the HTTP and gRPC listeners.
type ServerConfig struct {
	// ListenAddress is the HTTP listen address.
	// Default: "127.0.0.1:8080"
	ListenAddress string `yaml:"listen_address"`

	// GRPCAddress is the gRPC listen address. Empty disables gRPC.
	// Default: ""
	GRPCAddress string `yaml:"grpc_address"`

	// ReadTimeout is the maximum duration for reading the entire request.
	// Default: 30s
	ReadTimeout time.Duration `yaml:"read_timeout"`

	// WriteTimeout is the maximum duration before timing out writes of the
	// response.
	// Default: 30s
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// IdleTimeout is the keep-alive idle timeout.
	// Default: 120s
	IdleTimeout time.Duration `yaml:"idle_timeout"`

	// ShutdownTimeout bounds graceful shutdown.
	// Default: 30s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// MaxHeaderBytes limits request header size.
	// Default: 1048576 (1MB)
	MaxHeaderBytes int `yaml:"max_header_bytes"`

	// MaxUploadBytes limits multipart uploads held in memory.
	// Default: 10485760 (10MB)
	MaxUploadBytes int64 `yaml:"max_upload_bytes"`

	// TLS configures TLS for both listeners.
	TLS TLSConfig `yaml:"tls"`
}

// TLSConfig configures TLS and optional client certificates.
type TLSConfig struct {
	// Enabled turns TLS on for the HTTP and gRPC listeners.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// CertFile and KeyFile are the PEM-encoded certificate and key.
	CertFile string `yaml:"cert_file"`
	KeyFile  string `yaml:"key_file"`

	// MinVersion is "1.2" or "1.3".
	// Default: "1.3"
	MinVersion string `yaml:"min_version"`

	// ReloadInterval is how often the certificate files are checked for
	// changes.
	// Default: 5m
	ReloadInterval time.Duration `yaml:"reload_interval"`

	// ClientCAFile enables client certificates when set.
	ClientCAFile string `yaml:"client_ca_file"`

	// ClientAuth is require, request or verify_if_given.
	// Default: "require"
	ClientAuth string `yaml:"client_auth"`

	// IdentitySource selects the certificate field used as the username:
	// subject.CN, subject.OU, subject.O or SAN.
	// Default: "subject.CN"
	IdentitySource string `yaml:"identity_source"`
}

// LoggingConfig configures the structured logger.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn or error.
	// "returned:" records are only written at debug.
	// Default: "info"
	Level string `yaml:"level"`

	// Format is json, text or console.
	// Default: "json"
	Format string `yaml:"format"`

	// AddSource includes file and line in each record.
	// Default: false
	AddSource bool `yaml:"add_source"`
}

// ScrubbingConfig configures argument redaction.
type ScrubbingConfig struct {
	// Enabled turns scrubbing on.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Replacement is logged in place of scrubbed values.
	// Default: "xxxxx"
	Replacement string `yaml:"replacement"`

	// BlacklistPattern is a regular expression; parameters whose whole name
	// matches it are scrubbed.
	// Default: ""
	BlacklistPattern string `yaml:"blacklist_pattern"`

	// BlacklistNames are merged into the built-in blacklist.
	BlacklistNames []string `yaml:"blacklist_names"`
}

// MetricsConfig configures Prometheus metrics.
type MetricsConfig struct {
	// Enabled turns metrics collection on.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Path is where the metrics handler is mounted.
	// Default: "/metrics"
	Path string `yaml:"path"`

	// Namespace prefixes every metric name.
	// Default: "wiretap"
	Namespace string `yaml:"namespace"`

	// Subsystem is inserted between namespace and metric name.
	// Default: ""
	Subsystem string `yaml:"subsystem"`

	// DurationBuckets are the invocation duration histogram buckets in
	// seconds.
	DurationBuckets []float64 `yaml:"duration_buckets"`

	// MaxCardinality caps distinct label sets per collector.
	// Default: 10000
	MaxCardinality int `yaml:"max_cardinality"`
}

// WatchConfig configures reloading the configuration file on change.
type WatchConfig struct {
	// Enabled turns the file watcher on.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Debounce delays a reload until the file has been quiet this long.
	// Default: 100ms
	Debounce time.Duration `yaml:"debounce"`
}

// UsersConfig configures the demo user service.
type UsersConfig struct {
	// DatabasePath is the SQLite database file.
	// Default: "data/users.db"
	DatabasePath string `yaml:"database_path"`

	// Seed inserts sample users on startup when the table is empty.
	// Default: true
	Seed bool `yaml:"seed"`
}
