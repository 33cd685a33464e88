// Package logging builds the structured logger used as the interceptor's sink.
//
// # Overview
//
// The logging package wraps Go's standard log/slog package to provide:
//   - Structured logging with JSON, text, and console formats
//   - Context-aware records carrying request IDs and the authenticated user
//   - Configurable log levels (debug, info, warn, error)
//
// # Usage
//
//	logger, err := logging.New(logging.Config{
//	    Level:  "debug",
//	    Format: "json",
//	})
//
//	ctx = logging.WithRequestID(ctx, "req-123")
//	logger.InfoContext(ctx, "getUser() took [3 ms] to complete")
//	// {"level":"INFO","msg":"getUser() took [3 ms] to complete","request_id":"req-123"}
//
// # Levels and the interceptor
//
// The interceptor writes every line at INFO, WARN or ERROR. The
// "returned: [...]" line is only produced when the logger is enabled for
// DEBUG, so running at "info" keeps response payloads out of the logs.
//
// Records are written synchronously on the calling goroutine.
package logging
