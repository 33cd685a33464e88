// Package tls serves the wiretap listeners over TLS.
//
// ServerConfig turns the server.tls configuration section into a
// crypto/tls configuration whose certificate is supplied by a
// CertificateReloader, which polls the certificate and key files and swaps
// in renewed certificates without a restart.
//
// When client_ca_file is set, clients present certificates verified against
// that CA. ClientIdentityMiddleware records the identity of a verified
// certificate as the request's user, so the interceptor logs it as the
// username of HTTP calls.
package tls
