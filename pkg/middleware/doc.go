// Package middleware provides HTTP middleware for cross-cutting concerns:
// request IDs, caller identity, access logging and panic recovery.
//
// # Middleware Chain
//
// The server applies the middleware outermost first:
//
//	Recovery -> RequestID -> Identity -> Logging -> RequestContext -> router
//
// RequestID and Identity store their results in the request context with
// logging.WithRequestID and logging.WithUser, so every record logged further
// in (access log lines and interceptor records alike) carries request_id and
// user attributes. RequestContext stores the request itself so that
// reqctx.HTTPProvider can render "url: [...], username: [...]".
//
// # Identity
//
// IdentityMiddleware reads HTTP basic credentials and checks them with an
// Authenticator. Requests without credentials are anonymous; the interceptor
// logs their username as null.
//
// # Errors
//
// Middleware failures are answered with a JSON body:
//
//	{"error":{"status":401,"message":"invalid credentials"}}
package middleware
