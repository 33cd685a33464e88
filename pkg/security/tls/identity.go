package tls

import (
	"crypto/x509"
	"net/http"

	"mercator-hq/wiretap/pkg/telemetry/logging"
)

// ExtractClientIdentity reads the identity of a client certificate from
// source: subject.CN (default), subject.OU, subject.O or SAN (first DNS
// name). It returns "" when the field is empty.
func ExtractClientIdentity(cert *x509.Certificate, source string) string {
	if cert == nil {
		return ""
	}

	switch source {
	case "subject.CN", "":
		return cert.Subject.CommonName
	case "subject.OU":
		if len(cert.Subject.OrganizationalUnit) > 0 {
			return cert.Subject.OrganizationalUnit[0]
		}
	case "subject.O":
		if len(cert.Subject.Organization) > 0 {
			return cert.Subject.Organization[0]
		}
	case "SAN":
		if len(cert.DNSNames) > 0 {
			return cert.DNSNames[0]
		}
	}
	return ""
}

// ClientIdentity returns the identity of the verified client certificate of
// r, or "" for plain HTTP, anonymous clients and unverified certificates.
func ClientIdentity(r *http.Request, source string) string {
	if r.TLS == nil || len(r.TLS.VerifiedChains) == 0 || len(r.TLS.VerifiedChains[0]) == 0 {
		return ""
	}
	return ExtractClientIdentity(r.TLS.VerifiedChains[0][0], source)
}

// ClientIdentityMiddleware stores the identity of a verified client
// certificate with logging.WithUser. Placed before the basic auth
// middleware, valid basic credentials take precedence.
func ClientIdentityMiddleware(source string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if id := ClientIdentity(r, source); id != "" {
				r = r.WithContext(logging.WithUser(r.Context(), id))
			}
			next.ServeHTTP(w, r)
		})
	}
}
