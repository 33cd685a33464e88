package config

import (
	"errors"
	"strings"
	"testing"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name       string
		modify     func(*Config)
		wantFields []string
	}{
		{
			name:   "defaults are valid",
			modify: func(*Config) {},
		},
		{
			name: "missing listen address",
			modify: func(c *Config) {
				c.Server.ListenAddress = ""
			},
			wantFields: []string{"server.listen_address"},
		},
		{
			name: "bad grpc address",
			modify: func(c *Config) {
				c.Server.GRPCAddress = "nonsense"
			},
			wantFields: []string{"server.grpc_address"},
		},
		{
			name: "tls without files",
			modify: func(c *Config) {
				c.Server.TLS.Enabled = true
			},
			wantFields: []string{"server.tls.cert_file", "server.tls.key_file"},
		},
		{
			name: "tls bad options",
			modify: func(c *Config) {
				c.Server.TLS = TLSConfig{
					Enabled:        true,
					CertFile:       "server.pem",
					KeyFile:        "server.key",
					MinVersion:     "1.1",
					ClientAuth:     "sometimes",
					IdentitySource: "subject.CN",
				}
			},
			wantFields: []string{"server.tls.min_version", "server.tls.client_auth"},
		},
		{
			name: "tls options ignored when disabled",
			modify: func(c *Config) {
				c.Server.TLS.MinVersion = "1.1"
			},
		},
		{
			name: "negative timeouts",
			modify: func(c *Config) {
				c.Server.ReadTimeout = -1
				c.Server.ShutdownTimeout = -1
			},
			wantFields: []string{"server.read_timeout", "server.shutdown_timeout"},
		},
		{
			name: "bad logging",
			modify: func(c *Config) {
				c.Logging.Level = "loud"
				c.Logging.Format = "xml"
			},
			wantFields: []string{"logging.level", "logging.format"},
		},
		{
			name: "bad scrubbing",
			modify: func(c *Config) {
				c.Scrubbing.BlacklistPattern = "("
				c.Scrubbing.BlacklistNames = []string{"ok", " "}
			},
			wantFields: []string{"scrubbing.blacklist_pattern", "scrubbing.blacklist_names[1]"},
		},
		{
			name: "bad metrics",
			modify: func(c *Config) {
				c.Metrics.Path = "metrics"
				c.Metrics.DurationBuckets = []float64{1, 0.5}
			},
			wantFields: []string{"metrics.path", "metrics.duration_buckets"},
		},
		{
			name: "metrics path ignored when disabled",
			modify: func(c *Config) {
				c.Metrics.Enabled = false
				c.Metrics.Path = "metrics"
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.modify(cfg)

			err := Validate(cfg)
			if len(tt.wantFields) == 0 {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}

			var verr ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if len(verr.Errors) != len(tt.wantFields) {
				t.Fatalf("got %d errors (%v), want %d", len(verr.Errors), verr, len(tt.wantFields))
			}
			for i, field := range tt.wantFields {
				if verr.Errors[i].Field != field {
					t.Errorf("error %d field = %q, want %q", i, verr.Errors[i].Field, field)
				}
			}
		})
	}
}

func TestValidationError_Error(t *testing.T) {
	single := ValidationError{Errors: []FieldError{{Field: "a", Message: "bad"}}}
	if got := single.Error(); got != "configuration validation failed: a: bad" {
		t.Errorf("single error = %q", got)
	}

	multi := ValidationError{Errors: []FieldError{{Field: "a", Message: "bad"}, {Field: "b", Message: "worse"}}}
	if got := multi.Error(); !strings.Contains(got, "2 errors") || !strings.Contains(got, "  - b: worse") {
		t.Errorf("multi error = %q", got)
	}
}

func TestValidateWithSchema(t *testing.T) {
	tests := []struct {
		name      string
		doc       string
		wantErr   bool
		wantField string
	}{
		{name: "empty", doc: ""},
		{name: "valid", doc: "scrubbing:\n  enabled: true\n  blacklist_names: [a, b]\n"},
		{name: "unknown section", doc: "proxy:\n  listen_address: x\n", wantErr: true},
		{name: "unknown field", doc: "scrubbing:\n  replace: x\n", wantErr: true, wantField: "scrubbing"},
		{name: "wrong item type", doc: "scrubbing:\n  blacklist_names: [1]\n", wantErr: true, wantField: "scrubbing.blacklist_names.0"},
		{name: "negative cardinality", doc: "metrics:\n  max_cardinality: -1\n", wantErr: true, wantField: "metrics.max_cardinality"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateWithSchema([]byte(tt.doc))
			if !tt.wantErr {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}

			var verr ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if tt.wantField == "" {
				return
			}
			found := false
			for _, fe := range verr.Errors {
				if fe.Field == tt.wantField {
					found = true
				}
			}
			if !found {
				t.Errorf("expected error on %q, got %v", tt.wantField, verr.Errors)
			}
		})
	}
}
