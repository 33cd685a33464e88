package reqctx

import (
	"context"
	"net/http"

	"mercator-hq/wiretap/pkg/telemetry/logging"
)

type requestKey struct{}

// WithRequest stores r in ctx so HTTPProvider can describe it.
func WithRequest(ctx context.Context, r *http.Request) context.Context {
	return context.WithValue(ctx, requestKey{}, r)
}

// RequestFrom returns the request stored by WithRequest.
func RequestFrom(ctx context.Context) (*http.Request, bool) {
	r, ok := ctx.Value(requestKey{}).(*http.Request)
	return r, ok && r != nil
}

// HTTPProvider describes the active HTTP request as
// "url: [<url>], username: [<user>]". The username comes from the identity
// stored with logging.WithUser and is null when nobody is authenticated.
// Without an active request it yields an empty context.
type HTTPProvider struct{}

// RequestContext implements Provider.
func (HTTPProvider) RequestContext(ctx context.Context) (RequestContext, error) {
	r, ok := RequestFrom(ctx)
	if !ok {
		return RequestContext{}, nil
	}

	var username any
	if user := logging.GetUser(ctx); user != "" {
		username = user
	}

	return New(
		"url", requestURL(r),
		"username", username,
	), nil
}

// requestURL rebuilds the URL the client asked for, including the query
// string. It is absolute when the host is known.
func requestURL(r *http.Request) string {
	u := *r.URL
	if u.Host == "" && r.Host != "" {
		u.Host = r.Host
		u.Scheme = "http"
		if r.TLS != nil {
			u.Scheme = "https"
		}
	}
	return u.String()
}
