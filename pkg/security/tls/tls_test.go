package tls

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mercator-hq/wiretap/pkg/config"
	"mercator-hq/wiretap/pkg/telemetry/logging"
	"mercator-hq/wiretap/pkg/telemetry/logging/logtest"
)

func TestValidateCertificate(t *testing.T) {
	ca := newTestCA(t)
	_, certPEM, keyPEM := ca.issue(t, leafOptions{commonName: "localhost"})
	valid := keyPair(t, certPEM, keyPEM)

	assert.NoError(t, ValidateCertificate(&valid))
	assert.Error(t, ValidateCertificate(nil))
	assert.Error(t, ValidateCertificate(&tls.Certificate{}))

	expired := *ca.cert
	expired.NotAfter = time.Now().Add(-time.Minute)
	assert.ErrorContains(t, ValidateX509Certificate(&expired), "expired")

	future := *ca.cert
	future.NotBefore = time.Now().Add(time.Hour)
	assert.ErrorContains(t, ValidateX509Certificate(&future), "not yet valid")
}

func TestCheckCertificateExpiration(t *testing.T) {
	ca := newTestCA(t)

	soon, _, _ := ca.issue(t, leafOptions{commonName: "soon", notAfter: time.Now().Add(10 * 24 * time.Hour)})
	days, warning := CheckCertificateExpiration(soon)
	assert.InDelta(t, 9, days, 1)
	assert.Contains(t, warning, "certificate expires in")

	later, _, _ := ca.issue(t, leafOptions{commonName: "later"})
	_, warning = CheckCertificateExpiration(later)
	assert.Empty(t, warning)
}

func TestExtractClientIdentity(t *testing.T) {
	ca := newTestCA(t)
	cert, _, _ := ca.issue(t, leafOptions{
		commonName: "picard",
		org:        "starfleet",
		dnsNames:   []string{"enterprise.example.com"},
		client:     true,
	})

	tests := []struct {
		source string
		want   string
	}{
		{"", "picard"},
		{"subject.CN", "picard"},
		{"subject.O", "starfleet"},
		{"subject.OU", ""},
		{"SAN", "enterprise.example.com"},
		{"serial", ""},
	}
	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractClientIdentity(cert, tt.source))
		})
	}
	assert.Empty(t, ExtractClientIdentity(nil, "subject.CN"))
}

func TestClientIdentityMiddleware(t *testing.T) {
	ca := newTestCA(t)
	cert, _, _ := ca.issue(t, leafOptions{commonName: "riker", client: true})

	var got string
	h := ClientIdentityMiddleware("subject.CN")(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		got = logging.GetUser(r.Context())
	}))

	plain := httptest.NewRequest(http.MethodGet, "/", nil)
	h.ServeHTTP(httptest.NewRecorder(), plain)
	assert.Empty(t, got)

	unverified := httptest.NewRequest(http.MethodGet, "/", nil)
	unverified.TLS = &tls.ConnectionState{PeerCertificates: []*x509.Certificate{cert}}
	h.ServeHTTP(httptest.NewRecorder(), unverified)
	assert.Empty(t, got, "unverified certificates carry no identity")

	verified := httptest.NewRequest(http.MethodGet, "/", nil)
	verified.TLS = &tls.ConnectionState{VerifiedChains: [][]*x509.Certificate{{cert, ca.cert}}}
	h.ServeHTTP(httptest.NewRecorder(), verified)
	assert.Equal(t, "riker", got)
}

func TestCertificateReloader_StartAndReload(t *testing.T) {
	ca := newTestCA(t)
	dir := t.TempDir()
	_, certPEM, keyPEM := ca.issue(t, leafOptions{commonName: "first"})
	certFile, keyFile := writePair(t, dir, "server", certPEM, keyPEM)

	rec := logtest.NewRecorder(slog.LevelInfo)
	r := NewCertificateReloader(certFile, keyFile, 10*time.Millisecond, rec.Logger())
	assert.Nil(t, r.GetCertificate())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, r.Start(ctx))
	assert.True(t, rec.Contains("certificate loaded"))

	leaf, err := x509.ParseCertificate(r.GetCertificate().Certificate[0])
	require.NoError(t, err)
	assert.Equal(t, "first", leaf.Subject.CommonName)

	_, certPEM, keyPEM = ca.issue(t, leafOptions{commonName: "second"})
	writePair(t, dir, "server", certPEM, keyPEM)
	future := time.Now().Add(time.Minute)
	require.NoError(t, os.Chtimes(certFile, future, future))
	require.NoError(t, os.Chtimes(keyFile, future, future))

	assert.Eventually(t, func() bool {
		leaf, err := x509.ParseCertificate(r.GetCertificate().Certificate[0])
		return err == nil && leaf.Subject.CommonName == "second"
	}, 2*time.Second, 10*time.Millisecond)
}

func TestCertificateReloader_InvalidFiles(t *testing.T) {
	dir := t.TempDir()
	r := NewCertificateReloader(filepath.Join(dir, "missing.pem"), filepath.Join(dir, "missing-key.pem"), 0, nil)
	assert.Error(t, r.Start(context.Background()))

	certFile, keyFile := writePair(t, dir, "junk", []byte("not a cert"), []byte("not a key"))
	r = NewCertificateReloader(certFile, keyFile, 0, nil)
	assert.Error(t, r.Start(context.Background()))

	_, err := r.GetCertificateFunc()(nil)
	assert.Error(t, err)
}

func TestServerConfig(t *testing.T) {
	cfg, err := ServerConfig(config.TLSConfig{}, nil)
	require.NoError(t, err)
	assert.Nil(t, cfg)

	_, err = ServerConfig(config.TLSConfig{Enabled: true}, nil)
	assert.Error(t, err)

	ca := newTestCA(t)
	dir := t.TempDir()
	caFile := filepath.Join(dir, "ca.pem")
	require.NoError(t, os.WriteFile(caFile, ca.pem, 0o600))

	cfg, err = ServerConfig(config.TLSConfig{
		Enabled:      true,
		MinVersion:   "1.2",
		ClientCAFile: caFile,
		ClientAuth:   "verify_if_given",
	}, NewCertificateReloader("", "", 0, nil))
	require.NoError(t, err)
	assert.Equal(t, uint16(tls.VersionTLS12), cfg.MinVersion)
	assert.Equal(t, tls.VerifyClientCertIfGiven, cfg.ClientAuth)
	assert.NotNil(t, cfg.ClientCAs)

	badCA := filepath.Join(dir, "bad.pem")
	require.NoError(t, os.WriteFile(badCA, []byte("nothing"), 0o600))
	_, err = ServerConfig(config.TLSConfig{Enabled: true, ClientCAFile: badCA}, NewCertificateReloader("", "", 0, nil))
	assert.Error(t, err)
}

// TestServerConfig_MutualTLS serves HTTPS with a required client
// certificate and checks the client identity reaches the handler.
func TestServerConfig_MutualTLS(t *testing.T) {
	ca := newTestCA(t)
	dir := t.TempDir()
	_, certPEM, keyPEM := ca.issue(t, leafOptions{commonName: "localhost", dnsNames: []string{"localhost"}})
	certFile, keyFile := writePair(t, dir, "server", certPEM, keyPEM)
	caFile := filepath.Join(dir, "ca.pem")
	require.NoError(t, os.WriteFile(caFile, ca.pem, 0o600))

	reloader := NewCertificateReloader(certFile, keyFile, time.Minute, slog.New(slog.NewTextHandler(io.Discard, nil)))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, reloader.Start(ctx))

	serverTLS, err := ServerConfig(config.TLSConfig{
		Enabled:      true,
		MinVersion:   "1.3",
		ClientCAFile: caFile,
		ClientAuth:   "require",
	}, reloader)
	require.NoError(t, err)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	srv := &http.Server{Handler: ClientIdentityMiddleware("subject.CN")(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = io.WriteString(w, logging.GetUser(r.Context()))
		}))}
	go func() { _ = srv.Serve(tls.NewListener(ln, serverTLS)) }()
	defer srv.Close()
	url := "https://" + ln.Addr().String()

	_, clientCertPEM, clientKeyPEM := ca.issue(t, leafOptions{commonName: "data", client: true})
	roots := x509.NewCertPool()
	roots.AddCert(ca.cert)

	client := &http.Client{Transport: &http.Transport{TLSClientConfig: &tls.Config{
		RootCAs:      roots,
		Certificates: []tls.Certificate{keyPair(t, clientCertPEM, clientKeyPEM)},
		MinVersion:   tls.VersionTLS13,
	}}}
	resp, err := client.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "data", string(body))

	anonymous := &http.Client{Transport: &http.Transport{TLSClientConfig: &tls.Config{RootCAs: roots}}}
	_, err = anonymous.Get(url)
	assert.Error(t, err, "client certificate is required")
}
