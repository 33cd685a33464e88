package main

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"
	"google.golang.org/grpc"

	"mercator-hq/wiretap/internal/users"
	"mercator-hq/wiretap/pkg/config"
	"mercator-hq/wiretap/pkg/grpclog"
	"mercator-hq/wiretap/pkg/interceptor"
	"mercator-hq/wiretap/pkg/reqctx"
	"mercator-hq/wiretap/pkg/scrub"
	wiretls "mercator-hq/wiretap/pkg/security/tls"
	"mercator-hq/wiretap/pkg/server"
	"mercator-hq/wiretap/pkg/telemetry/health"
	"mercator-hq/wiretap/pkg/telemetry/logging"
	"mercator-hq/wiretap/pkg/telemetry/metrics"
)

// app is a fully wired wiretap process.
type app struct {
	cfg      *config.Config
	logger   *slog.Logger
	level    *slog.LevelVar
	scrubber *scrub.Scrubber
	store    *users.Store
	server   *server.Server
}

// newApp builds every component from cfg. Logs are written to w.
func newApp(ctx context.Context, cfg *config.Config, w io.Writer) (*app, error) {
	level := new(slog.LevelVar)
	logger, err := logging.New(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		AddSource: cfg.Logging.AddSource,
		Writer:    w,
		LevelVar:  level,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	scrubber, err := config.NewScrubber(cfg.Scrubbing)
	if err != nil {
		return nil, fmt.Errorf("failed to create scrubber: %w", err)
	}

	collector := metrics.NewCollector(&cfg.Metrics, prometheus.NewRegistry())

	ic := interceptor.New(interceptor.Options{
		Logger:   logger,
		Scrubber: scrubber,
		Context:  reqctx.First(reqctx.HTTPProvider{}, grpclog.MetadataProvider{IdentitySource: cfg.Server.TLS.IdentitySource}),
		Metrics:  collector,
	})

	tlsConfig, err := loadTLS(ctx, cfg.Server.TLS, logger)
	if err != nil {
		return nil, err
	}

	store, err := openUsers(ctx, cfg.Users, logger)
	if err != nil {
		return nil, err
	}

	checker := health.New(0)
	checker.Register("users_db", store.Ping)

	svc := users.NewService(store)
	srv := server.NewServer(cfg, server.Options{
		Logger:        logger,
		Interceptor:   ic,
		Metrics:       collector,
		Health:        checker,
		Version:       buildInfo(),
		Authenticator: svc,
		Routes: []server.Routes{{
			Controller: svc.Controller(cfg.Server.MaxUploadBytes),
			Endpoints:  svc.Endpoints(),
		}},
		GRPCServices: []func(grpc.ServiceRegistrar){func(r grpc.ServiceRegistrar) {
			users.RegisterGRPC(r, store)
		}},
		GRPCLogging:          []grpclog.Option{grpclog.WithDefaultLogging(interceptor.Enabled)},
		TLS:                  tlsConfig,
		ClientIdentitySource: cfg.Server.TLS.IdentitySource,
	})

	return &app{
		cfg:      cfg,
		logger:   logger,
		level:    level,
		scrubber: scrubber,
		store:    store,
		server:   srv,
	}, nil
}

// loadTLS starts the certificate reloader and builds the listener TLS
// configuration. It returns nil when TLS is disabled. The reloader stops
// with ctx.
func loadTLS(ctx context.Context, cfg config.TLSConfig, logger *slog.Logger) (*tls.Config, error) {
	if !cfg.Enabled {
		return nil, nil
	}

	reloader := wiretls.NewCertificateReloader(cfg.CertFile, cfg.KeyFile, cfg.ReloadInterval, logger)
	if err := reloader.Start(ctx); err != nil {
		return nil, fmt.Errorf("failed to load TLS certificate: %w", err)
	}
	tlsConfig, err := wiretls.ServerConfig(cfg, reloader)
	if err != nil {
		return nil, fmt.Errorf("failed to configure TLS: %w", err)
	}
	return tlsConfig, nil
}

func openUsers(ctx context.Context, cfg config.UsersConfig, logger *slog.Logger) (*users.Store, error) {
	if dir := filepath.Dir(cfg.DatabasePath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	store, err := users.Open(cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open user store: %w", err)
	}

	if cfg.Seed {
		n, err := store.Seed(ctx, users.DefaultSeed)
		if err != nil {
			store.Close()
			return nil, fmt.Errorf("failed to seed user store: %w", err)
		}
		if n > 0 {
			logger.Info("seeded user store", "users", n, "path", cfg.DatabasePath)
		}
	}
	return store, nil
}

// run serves until ctx is canceled. When watching is enabled, changes to
// the configuration file update the log level and scrubbing policy.
func (a *app) run(ctx context.Context) error {
	path := config.ConfigPath()
	if a.cfg.Watch.Enabled && path != "" {
		watcher, err := config.NewWatcher(path, a.cfg.Watch.Debounce, a.logger, a.reload)
		if err != nil {
			return fmt.Errorf("failed to create config watcher: %w", err)
		}
		defer watcher.Stop()

		go func() {
			if err := watcher.Watch(ctx); err != nil {
				a.logger.Error("config watcher failed", "error", err)
			}
		}()
	}

	go func() {
		select {
		case <-a.server.Ready():
			attrs := []any{"http", a.server.HTTPAddr().String()}
			if addr := a.server.GRPCAddr(); addr != nil {
				attrs = append(attrs, "grpc", addr.String())
			}
			a.logger.Info("wiretap ready", attrs...)
		case <-ctx.Done():
		}
	}()

	return a.server.Start(ctx)
}

// reload applies the parts of cfg that can change while running.
func (a *app) reload(cfg *config.Config) {
	if level, err := logging.ParseLevel(cfg.Logging.Level); err == nil {
		a.level.Set(level)
	}
	if err := config.ApplyScrubbing(a.scrubber, cfg.Scrubbing); err != nil {
		a.logger.Error("failed to apply scrubbing configuration", "error", err)
		return
	}
	a.logger.Info("applied configuration",
		"log_level", cfg.Logging.Level,
		"scrubbing", cfg.Scrubbing.Enabled,
	)
}

func (a *app) close() error {
	return a.store.Close()
}
