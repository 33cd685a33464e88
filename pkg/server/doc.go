// Package server wires the wiretap HTTP and gRPC listeners.
//
// The HTTP handler is a chi router behind the middleware chain
//
//	Recovery -> RequestID -> Identity -> Logging -> RequestContext -> router
//
// Identity resolves the caller from basic auth before the access log and the
// interceptor run, so both carry the username. RequestContext makes the
// request visible to reqctx.HTTPProvider for the " called via" clause.
//
// The router serves the health probes, the Prometheus metrics endpoint when
// metrics are enabled, and every mounted controller. When a gRPC address is
// configured the same interceptor wraps the registered gRPC services.
//
// # Basic Usage
//
//	srv := server.NewServer(cfg, server.Options{
//		Interceptor:   ic,
//		Metrics:       collector,
//		Health:        checker,
//		Authenticator: svc,
//		Routes:        []server.Routes{{Controller: svc.Controller(0), Endpoints: svc.Endpoints()}},
//	})
//	if err := srv.Start(ctx); err != nil {
//		log.Fatal(err)
//	}
//
// Start blocks until ctx is canceled and then shuts down gracefully within
// the configured shutdown timeout.
package server
