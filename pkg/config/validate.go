package config

import (
	"fmt"
	"net"
	"regexp"
	"strings"

	"mercator-hq/wiretap/pkg/telemetry/logging"
)

// FieldError represents a validation error for a specific configuration field.
type FieldError struct {
	// Field is the dotted path to the configuration field (e.g., "server.listen_address").
	Field string

	// Message is a human-readable error message.
	Message string
}

// Error returns the error message for this field error.
func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError represents one or more validation errors in a configuration.
// It implements the error interface and provides access to all field errors.
type ValidationError struct {
	// Errors contains all validation errors found in the configuration.
	Errors []FieldError
}

// Error returns a formatted string containing all validation errors.
func (e ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "configuration validation failed"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration validation failed: %s", e.Errors[0].Error())
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("configuration validation failed with %d errors:\n", len(e.Errors)))
	for _, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  - %s\n", err.Error()))
	}
	return sb.String()
}

// Validate validates the entire configuration and returns a ValidationError
// if any validation rules fail. It returns nil if the configuration is valid.
// All validation errors are collected and returned together.
func Validate(cfg *Config) error {
	var errs []FieldError

	errs = append(errs, validateServer(&cfg.Server)...)
	errs = append(errs, validateLogging(&cfg.Logging)...)
	errs = append(errs, validateScrubbing(&cfg.Scrubbing)...)
	errs = append(errs, validateMetrics(&cfg.Metrics)...)
	errs = append(errs, validateWatch(&cfg.Watch)...)

	if cfg.Users.DatabasePath == "" {
		errs = append(errs, FieldError{
			Field:   "users.database_path",
			Message: "database path is required",
		})
	}

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}

	return nil
}

// validateServer validates listener configuration.
func validateServer(cfg *ServerConfig) []FieldError {
	var errs []FieldError

	if cfg.ListenAddress == "" {
		errs = append(errs, FieldError{
			Field:   "server.listen_address",
			Message: "listen address is required",
		})
	} else if _, _, err := net.SplitHostPort(cfg.ListenAddress); err != nil {
		errs = append(errs, FieldError{
			Field:   "server.listen_address",
			Message: fmt.Sprintf("invalid address: %v", err),
		})
	}

	if cfg.GRPCAddress != "" {
		if _, _, err := net.SplitHostPort(cfg.GRPCAddress); err != nil {
			errs = append(errs, FieldError{
				Field:   "server.grpc_address",
				Message: fmt.Sprintf("invalid address: %v", err),
			})
		}
	}

	if cfg.ReadTimeout < 0 {
		errs = append(errs, FieldError{
			Field:   "server.read_timeout",
			Message: "read timeout must be positive",
		})
	}
	if cfg.WriteTimeout < 0 {
		errs = append(errs, FieldError{
			Field:   "server.write_timeout",
			Message: "write timeout must be positive",
		})
	}
	if cfg.IdleTimeout < 0 {
		errs = append(errs, FieldError{
			Field:   "server.idle_timeout",
			Message: "idle timeout must be positive",
		})
	}
	if cfg.ShutdownTimeout < 0 {
		errs = append(errs, FieldError{
			Field:   "server.shutdown_timeout",
			Message: "shutdown timeout must be positive",
		})
	}
	if cfg.MaxHeaderBytes < 0 {
		errs = append(errs, FieldError{
			Field:   "server.max_header_bytes",
			Message: "max header bytes must be non-negative",
		})
	}
	if cfg.MaxUploadBytes < 0 {
		errs = append(errs, FieldError{
			Field:   "server.max_upload_bytes",
			Message: "max upload bytes must be non-negative",
		})
	}

	errs = append(errs, validateTLS(&cfg.TLS)...)

	return errs
}

// validateTLS validates the TLS section. File existence is checked when the
// certificates are loaded.
func validateTLS(cfg *TLSConfig) []FieldError {
	if !cfg.Enabled {
		return nil
	}

	var errs []FieldError
	if cfg.CertFile == "" {
		errs = append(errs, FieldError{
			Field:   "server.tls.cert_file",
			Message: "cert_file is required when TLS is enabled",
		})
	}
	if cfg.KeyFile == "" {
		errs = append(errs, FieldError{
			Field:   "server.tls.key_file",
			Message: "key_file is required when TLS is enabled",
		})
	}
	switch cfg.MinVersion {
	case "1.2", "1.3":
	default:
		errs = append(errs, FieldError{
			Field:   "server.tls.min_version",
			Message: fmt.Sprintf("unsupported TLS version %q (want 1.2 or 1.3)", cfg.MinVersion),
		})
	}
	if cfg.ReloadInterval < 0 {
		errs = append(errs, FieldError{
			Field:   "server.tls.reload_interval",
			Message: "reload interval must be positive",
		})
	}
	switch cfg.ClientAuth {
	case "require", "request", "verify_if_given":
	default:
		errs = append(errs, FieldError{
			Field:   "server.tls.client_auth",
			Message: fmt.Sprintf("unknown client auth %q", cfg.ClientAuth),
		})
	}
	switch cfg.IdentitySource {
	case "subject.CN", "subject.OU", "subject.O", "SAN":
	default:
		errs = append(errs, FieldError{
			Field:   "server.tls.identity_source",
			Message: fmt.Sprintf("unknown identity source %q", cfg.IdentitySource),
		})
	}
	return errs
}

// validateLogging validates logger configuration.
func validateLogging(cfg *LoggingConfig) []FieldError {
	var errs []FieldError

	if _, err := logging.ParseLevel(cfg.Level); err != nil {
		errs = append(errs, FieldError{
			Field:   "logging.level",
			Message: "must be one of: debug, info, warn, error",
		})
	}

	switch strings.ToLower(cfg.Format) {
	case "json", "text", "console":
	default:
		errs = append(errs, FieldError{
			Field:   "logging.format",
			Message: "must be one of: json, text, console",
		})
	}

	return errs
}

// validateScrubbing validates scrubbing configuration.
func validateScrubbing(cfg *ScrubbingConfig) []FieldError {
	var errs []FieldError

	if cfg.BlacklistPattern != "" {
		if _, err := regexp.Compile(cfg.BlacklistPattern); err != nil {
			errs = append(errs, FieldError{
				Field:   "scrubbing.blacklist_pattern",
				Message: fmt.Sprintf("invalid regular expression: %v", err),
			})
		}
	}

	for i, name := range cfg.BlacklistNames {
		if strings.TrimSpace(name) == "" {
			errs = append(errs, FieldError{
				Field:   fmt.Sprintf("scrubbing.blacklist_names[%d]", i),
				Message: "name must not be empty",
			})
		}
	}

	return errs
}

// validateMetrics validates metrics configuration.
func validateMetrics(cfg *MetricsConfig) []FieldError {
	var errs []FieldError

	if cfg.Enabled && !strings.HasPrefix(cfg.Path, "/") {
		errs = append(errs, FieldError{
			Field:   "metrics.path",
			Message: "path must start with /",
		})
	}

	for i := 1; i < len(cfg.DurationBuckets); i++ {
		if cfg.DurationBuckets[i] <= cfg.DurationBuckets[i-1] {
			errs = append(errs, FieldError{
				Field:   "metrics.duration_buckets",
				Message: "buckets must be strictly increasing",
			})
			break
		}
	}

	if cfg.MaxCardinality < 0 {
		errs = append(errs, FieldError{
			Field:   "metrics.max_cardinality",
			Message: "max cardinality must be non-negative",
		})
	}

	return errs
}

// validateWatch validates watcher configuration.
func validateWatch(cfg *WatchConfig) []FieldError {
	if cfg.Debounce < 0 {
		return []FieldError{{
			Field:   "watch.debounce",
			Message: "debounce must be non-negative",
		}}
	}
	return nil
}
