package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"mercator-hq/wiretap/pkg/reqctx"
	"mercator-hq/wiretap/pkg/telemetry/logging"
)

// Authenticator checks HTTP basic credentials.
type Authenticator interface {
	Authenticate(ctx context.Context, username, password string) (bool, error)
}

// AuthenticatorFunc adapts a function to Authenticator.
type AuthenticatorFunc func(ctx context.Context, username, password string) (bool, error)

// Authenticate implements Authenticator.
func (f AuthenticatorFunc) Authenticate(ctx context.Context, username, password string) (bool, error) {
	return f(ctx, username, password)
}

// IdentityMiddleware resolves the caller from HTTP basic auth and stores the
// username with logging.WithUser. Requests without credentials pass through
// anonymously. Wrong credentials are answered with 401.
//
// Example usage:
//
//	handler = IdentityMiddleware(store, logger)(handler)
func IdentityMiddleware(auth Authenticator, logger *slog.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			username, password, ok := r.BasicAuth()
			if !ok || auth == nil {
				next.ServeHTTP(w, r)
				return
			}

			valid, err := auth.Authenticate(r.Context(), username, password)
			if err != nil {
				logger.ErrorContext(r.Context(), "authentication failed", "error", err)
				WriteError(w, http.StatusInternalServerError, "authentication unavailable")
				return
			}
			if !valid {
				logger.WarnContext(r.Context(), "invalid credentials",
					"path", r.URL.Path,
					"remote_addr", r.RemoteAddr,
				)
				w.Header().Set("WWW-Authenticate", `Basic realm="wiretap"`)
				WriteError(w, http.StatusUnauthorized, "invalid credentials")
				return
			}

			next.ServeHTTP(w, r.WithContext(logging.WithUser(r.Context(), username)))
		})
	}
}

// RequestContextMiddleware makes the request visible to reqctx.HTTPProvider.
func RequestContextMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r.WithContext(reqctx.WithRequest(r.Context(), r)))
	})
}
