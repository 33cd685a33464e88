package server

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"

	"mercator-hq/wiretap/pkg/config"
	"mercator-hq/wiretap/pkg/endpoint"
	"mercator-hq/wiretap/pkg/grpclog"
	"mercator-hq/wiretap/pkg/interceptor"
	wiretls "mercator-hq/wiretap/pkg/security/tls"
	"mercator-hq/wiretap/pkg/middleware"
	"mercator-hq/wiretap/pkg/telemetry/health"
	"mercator-hq/wiretap/pkg/telemetry/metrics"
)

// Routes is a controller and the endpoints mounted under it.
type Routes struct {
	Controller endpoint.Controller
	Endpoints  []endpoint.Endpoint
}

// Options holds the components the server wires together.
type Options struct {
	// Logger receives access and lifecycle logs. Defaults to the
	// interceptor's logger.
	Logger *slog.Logger

	// Interceptor logs endpoint and gRPC calls. Required.
	Interceptor *interceptor.Interceptor

	// Metrics is served on the configured metrics path when set.
	Metrics *metrics.Collector

	// Health serves /health and /ready when set.
	Health  *health.Checker
	Version health.VersionInfo

	// Authenticator checks HTTP basic credentials. Nil leaves every
	// request anonymous.
	Authenticator middleware.Authenticator

	// Routes are mounted in order.
	Routes []Routes

	// GRPCServices register services on the gRPC server. They are only
	// used when a gRPC address is configured.
	GRPCServices []func(grpc.ServiceRegistrar)

	// GRPCLogging configures which gRPC methods are logged.
	GRPCLogging []grpclog.Option

	// TLS serves both listeners over TLS when set.
	TLS *tls.Config

	// ClientIdentitySource selects the client certificate field recorded
	// as the username when TLS verifies client certificates.
	ClientIdentitySource string
}

// Server runs the HTTP listener and, when configured, the gRPC listener.
type Server struct {
	config       *config.ServerConfig
	metricsPath  string
	opts         Options
	logger       *slog.Logger
	httpServer   *http.Server
	grpcServer   *grpc.Server
	httpAddr     net.Addr
	grpcAddr     net.Addr
	ready        chan struct{}
	shutdownOnce sync.Once
	mu           sync.RWMutex
	isRunning    bool
}

// NewServer creates a server from the server and metrics sections of cfg.
func NewServer(cfg *config.Config, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = opts.Interceptor.Logger()
	}

	metricsPath := ""
	if opts.Metrics != nil && cfg.Metrics.Enabled {
		metricsPath = cfg.Metrics.Path
	}

	return &Server{
		config:      &cfg.Server,
		metricsPath: metricsPath,
		opts:        opts,
		logger:      logger,
		ready:       make(chan struct{}),
	}
}

// Start listens on the configured addresses and serves until ctx is
// canceled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return fmt.Errorf("server is already running")
	}

	httpLis, err := net.Listen("tcp", s.config.ListenAddress)
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("failed to listen on %s: %w", s.config.ListenAddress, err)
	}

	var grpcLis net.Listener
	if s.config.GRPCAddress != "" {
		grpcLis, err = net.Listen("tcp", s.config.GRPCAddress)
		if err != nil {
			httpLis.Close()
			s.mu.Unlock()
			return fmt.Errorf("failed to listen on %s: %w", s.config.GRPCAddress, err)
		}
	}

	s.httpServer = &http.Server{
		Handler:        s.Handler(),
		ReadTimeout:    s.config.ReadTimeout,
		WriteTimeout:   s.config.WriteTimeout,
		IdleTimeout:    s.config.IdleTimeout,
		MaxHeaderBytes: s.config.MaxHeaderBytes,
		TLSConfig:      s.opts.TLS,
	}
	s.httpAddr = httpLis.Addr()
	if grpcLis != nil {
		s.grpcServer = s.newGRPCServer()
		s.grpcAddr = grpcLis.Addr()
	}
	s.isRunning = true
	s.mu.Unlock()

	errChan := make(chan error, 2)
	go func() {
		s.logger.Info("starting http server", "address", httpLis.Addr().String(), "tls", s.opts.TLS != nil)
		if err := s.serveHTTP(httpLis); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("http server error: %w", err)
		}
	}()
	if grpcLis != nil {
		go func() {
			s.logger.Info("starting grpc server", "address", grpcLis.Addr().String())
			if err := s.grpcServer.Serve(grpcLis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
				errChan <- fmt.Errorf("grpc server error: %w", err)
			}
		}()
	}
	close(s.ready)

	select {
	case <-ctx.Done():
		s.logger.Info("context cancelled, initiating shutdown")
		return s.Shutdown(context.Background())
	case err := <-errChan:
		_ = s.Shutdown(context.Background())
		return err
	}
}

// Ready is closed once the listeners are bound.
func (s *Server) Ready() <-chan struct{} {
	return s.ready
}

// HTTPAddr returns the bound HTTP address, or nil before Start.
func (s *Server) HTTPAddr() net.Addr {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.httpAddr
}

// GRPCAddr returns the bound gRPC address, or nil when gRPC is disabled.
func (s *Server) GRPCAddr() net.Addr {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.grpcAddr
}

// Shutdown stops both listeners, waiting up to the configured shutdown
// timeout for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.mu.Lock()
		if !s.isRunning {
			s.mu.Unlock()
			return
		}
		s.mu.Unlock()

		s.logger.Info("initiating graceful shutdown", "timeout", s.config.ShutdownTimeout.String())

		shutdownCtx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
		defer cancel()

		if s.grpcServer != nil {
			stopped := make(chan struct{})
			go func() {
				s.grpcServer.GracefulStop()
				close(stopped)
			}()
			select {
			case <-stopped:
			case <-shutdownCtx.Done():
				s.grpcServer.Stop()
			}
		}

		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("error during server shutdown", "error", err)
			shutdownErr = fmt.Errorf("server shutdown error: %w", err)
		}

		s.mu.Lock()
		s.isRunning = false
		s.mu.Unlock()

		s.logger.Info("server stopped")
	})

	return shutdownErr
}

// IsRunning reports whether the server is serving.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// Handler builds the HTTP handler: the middleware chain around the router.
//
//	Recovery -> RequestID -> [ClientCert] -> Identity -> Logging -> RequestContext -> router
//
// ClientCert is only installed when TLS verifies client certificates.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.RecoveryMiddleware(s.logger),
		middleware.RequestIDMiddleware,
	)
	if s.opts.TLS != nil && s.opts.TLS.ClientCAs != nil {
		r.Use(wiretls.ClientIdentityMiddleware(s.opts.ClientIdentitySource))
	}
	r.Use(
		middleware.IdentityMiddleware(s.opts.Authenticator, s.logger),
		middleware.LoggingMiddleware(s.logger),
		middleware.RequestContextMiddleware,
	)

	if s.opts.Health != nil {
		health.Mount(r, s.opts.Health, s.opts.Version)
	}
	if s.metricsPath != "" {
		r.Method(http.MethodGet, s.metricsPath, s.opts.Metrics.Handler())
	}

	for _, routes := range s.opts.Routes {
		ctrl := routes.Controller
		if ctrl.MaxUploadBytes == 0 {
			ctrl.MaxUploadBytes = s.config.MaxUploadBytes
		}
		endpoint.Mount(r, s.opts.Interceptor, ctrl, routes.Endpoints...)
	}

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		middleware.WriteError(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		middleware.WriteError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	return r
}

func (s *Server) serveHTTP(lis net.Listener) error {
	if s.opts.TLS == nil {
		return s.httpServer.Serve(lis)
	}
	return s.httpServer.ServeTLS(lis, "", "")
}

func (s *Server) newGRPCServer() *grpc.Server {
	opts := []grpc.ServerOption{grpc.ChainUnaryInterceptor(
		grpclog.UnaryServerInterceptor(s.opts.Interceptor, s.opts.GRPCLogging...),
	)}
	if s.opts.TLS != nil {
		opts = append(opts, grpc.Creds(credentials.NewTLS(s.opts.TLS)))
	}
	srv := grpc.NewServer(opts...)
	for _, register := range s.opts.GRPCServices {
		register(srv)
	}
	return srv
}
