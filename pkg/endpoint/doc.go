// Package endpoint binds HTTP routes to handler functions and runs them
// through the logging interceptor.
//
// A Controller carries class-level declarations (logging eligibility and
// media types) and every Endpoint may override them. Mount resolves both
// once and registers the endpoints on a chi router:
//
//	endpoint.Mount(r, ic, endpoint.Controller{
//		Name:     "users",
//		Logging:  interceptor.Enabled,
//		Produces: []string{"application/json"},
//	}, endpoint.Endpoint{
//		Name:    "getUser",
//		Method:  http.MethodGet,
//		Pattern: "/getUser",
//		Params:  []endpoint.ParamSpec{{Name: "userId", Source: endpoint.SourceQuery, Parse: endpoint.Int, Required: true}},
//		Returns: interceptor.Typed("User"),
//		Handle:  svc.getUser,
//	})
//
// Parameters are bound before interception, so a request with a malformed
// parameter is answered with 400 and produces no log records. Body and raw
// body parameters are payloads; they are serialized as JSON in the
// argument list only when the endpoint consumes a structured media type.
package endpoint
