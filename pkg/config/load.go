package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// EnvPrefix starts every environment variable override.
const EnvPrefix = "WIRETAP_"

// LoadConfig loads configuration from a YAML file at the specified path.
// The document is checked against the embedded JSON schema, decoded on top
// of Defaults and validated. Environment variables are not consulted; use
// LoadConfigWithEnvOverrides for that.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration file %q: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes and validates a YAML document.
func Parse(data []byte) (*Config, error) {
	if err := ValidateWithSchema(data); err != nil {
		return nil, err
	}

	cfg := Defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	ApplyDefaults(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// LoadConfigWithEnvOverrides loads configuration from a YAML file and applies
// environment variable overrides. Environment variables follow the naming
// convention WIRETAP_SECTION_FIELD (e.g., WIRETAP_SERVER_LISTEN_ADDRESS).
// Environment variables always take precedence over file-based configuration.
//
// The loading sequence is:
// 1. Load YAML from file
// 2. Apply default values
// 3. Apply environment variable overrides
// 4. Validate final configuration
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed after environment overrides: %w", err)
	}

	return cfg, nil
}

// LoadFromEnv builds a configuration from defaults and environment variable
// overrides alone, for running without a configuration file.
func LoadFromEnv() (*Config, error) {
	cfg := Defaults()
	applyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides to the configuration.
func applyEnvOverrides(cfg *Config) {
	// Server overrides
	envString("SERVER_LISTEN_ADDRESS", &cfg.Server.ListenAddress)
	envString("SERVER_GRPC_ADDRESS", &cfg.Server.GRPCAddress)
	envDuration("SERVER_READ_TIMEOUT", &cfg.Server.ReadTimeout)
	envDuration("SERVER_WRITE_TIMEOUT", &cfg.Server.WriteTimeout)
	envDuration("SERVER_IDLE_TIMEOUT", &cfg.Server.IdleTimeout)
	envDuration("SERVER_SHUTDOWN_TIMEOUT", &cfg.Server.ShutdownTimeout)
	if val := os.Getenv(EnvPrefix + "SERVER_MAX_HEADER_BYTES"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Server.MaxHeaderBytes = i
		}
	}
	if val := os.Getenv(EnvPrefix + "SERVER_MAX_UPLOAD_BYTES"); val != "" {
		if i, err := strconv.ParseInt(val, 10, 64); err == nil {
			cfg.Server.MaxUploadBytes = i
		}
	}

	envBool("SERVER_TLS_ENABLED", &cfg.Server.TLS.Enabled)
	envString("SERVER_TLS_CERT_FILE", &cfg.Server.TLS.CertFile)
	envString("SERVER_TLS_KEY_FILE", &cfg.Server.TLS.KeyFile)
	envString("SERVER_TLS_CLIENT_CA_FILE", &cfg.Server.TLS.ClientCAFile)

	// Logging overrides
	envString("LOGGING_LEVEL", &cfg.Logging.Level)
	envString("LOGGING_FORMAT", &cfg.Logging.Format)
	envBool("LOGGING_ADD_SOURCE", &cfg.Logging.AddSource)

	// Scrubbing overrides
	envBool("SCRUBBING_ENABLED", &cfg.Scrubbing.Enabled)
	envString("SCRUBBING_REPLACEMENT", &cfg.Scrubbing.Replacement)
	envString("SCRUBBING_BLACKLIST_PATTERN", &cfg.Scrubbing.BlacklistPattern)
	if val := os.Getenv(EnvPrefix + "SCRUBBING_BLACKLIST_NAMES"); val != "" {
		for _, name := range strings.Split(val, ",") {
			if name = strings.TrimSpace(name); name != "" {
				cfg.Scrubbing.BlacklistNames = append(cfg.Scrubbing.BlacklistNames, name)
			}
		}
	}

	// Metrics overrides
	envBool("METRICS_ENABLED", &cfg.Metrics.Enabled)
	envString("METRICS_PATH", &cfg.Metrics.Path)
	envString("METRICS_NAMESPACE", &cfg.Metrics.Namespace)

	// Watch overrides
	envBool("WATCH_ENABLED", &cfg.Watch.Enabled)
	envDuration("WATCH_DEBOUNCE", &cfg.Watch.Debounce)

	// Users overrides
	envString("USERS_DATABASE_PATH", &cfg.Users.DatabasePath)
	envBool("USERS_SEED", &cfg.Users.Seed)
}

func envString(name string, dst *string) {
	if val := os.Getenv(EnvPrefix + name); val != "" {
		*dst = val
	}
}

func envBool(name string, dst *bool) {
	if val := os.Getenv(EnvPrefix + name); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			*dst = b
		}
	}
}

func envDuration(name string, dst *time.Duration) {
	if val := os.Getenv(EnvPrefix + name); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			*dst = d
		}
	}
}
