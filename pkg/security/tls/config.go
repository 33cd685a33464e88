package tls

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"

	"mercator-hq/wiretap/pkg/config"
)

// ServerConfig builds the tls.Config shared by the HTTP and gRPC listeners.
// The serving certificate comes from certs, so renewed files are picked up
// without a restart. It returns nil when TLS is disabled.
func ServerConfig(c config.TLSConfig, certs *CertificateReloader) (*tls.Config, error) {
	if !c.Enabled {
		return nil, nil
	}
	if certs == nil {
		return nil, fmt.Errorf("certificate reloader is required when TLS is enabled")
	}

	// #nosec G402 - MinVersion is validated to 1.2 or 1.3
	tlsConfig := &tls.Config{
		GetCertificate: certs.GetCertificateFunc(),
		MinVersion:     parseTLSVersion(c.MinVersion),
	}

	if c.ClientCAFile != "" {
		pool, err := loadCertPool(c.ClientCAFile)
		if err != nil {
			return nil, fmt.Errorf("failed to configure client certificates: %w", err)
		}
		tlsConfig.ClientCAs = pool
		tlsConfig.ClientAuth = parseClientAuth(c.ClientAuth)
	}

	return tlsConfig, nil
}

func parseTLSVersion(v string) uint16 {
	if v == "1.2" {
		return tls.VersionTLS12
	}
	return tls.VersionTLS13
}

func parseClientAuth(s string) tls.ClientAuthType {
	switch s {
	case "request":
		return tls.RequestClientCert
	case "verify_if_given":
		return tls.VerifyClientCertIfGiven
	default:
		return tls.RequireAndVerifyClientCert
	}
}

func loadCertPool(path string) (*x509.CertPool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read client CA: %w", err)
	}
	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(data) {
		return nil, fmt.Errorf("no certificates found in %s", path)
	}
	return pool, nil
}
